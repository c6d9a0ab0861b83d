package cmd

import (
	"context"
	"fmt"
	"strings"

	elastica "github.com/analogrelay/elastica-interop"
	"github.com/analogrelay/elastica-interop/boundary"
	"github.com/analogrelay/elastica-interop/wasmhost"
)

// adder is one way of reaching the add function.
type adder func(ctx context.Context, a, b int32) (int32, error)

const (
	viaNative   = "native"
	viaCgo      = "cgo"
	viaBoundary = "boundary"
	viaWasm     = "wasm"
)

var callPaths = []string{viaNative, viaCgo, viaBoundary, viaWasm}

// newAdder builds the call path named by via. The returned close function
// releases whatever the path holds and is always non-nil.
func newAdder(ctx context.Context, via string) (adder, func(), error) {
	noop := func() {}
	switch via {
	case viaNative:
		return func(_ context.Context, a, b int32) (int32, error) {
			return elastica.SumTwo(a, b), nil
		}, noop, nil

	case viaCgo:
		add, ok := cgoAdder()
		if !ok {
			return nil, noop, fmt.Errorf("call path %q is not available: built without cgo", via)
		}
		return add, noop, nil

	case viaBoundary:
		m := boundary.NewElasticaModule(boundary.WithLogger(logger))
		return func(ctx context.Context, a, b int32) (int32, error) {
			return boundary.Add(ctx, m, a, b)
		}, noop, nil

	case viaWasm:
		h, err := wasmhost.New(ctx, wasmhost.WithLogger(logger))
		if err != nil {
			return nil, noop, err
		}
		return h.Add, func() {
			if err := h.Close(ctx); err != nil {
				logger.Warn("failed to close wasm host", "err", err)
			}
		}, nil

	default:
		return nil, noop, fmt.Errorf("unknown call path %q, expected one of: %s", via, strings.Join(callPaths, ", "))
	}
}

func availablePaths() []string {
	var paths []string
	for _, p := range callPaths {
		if p == viaCgo && !elastica.CgoEnabled {
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
