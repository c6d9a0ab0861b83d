//go:build cgo

package cmd

import (
	"context"

	elastica "github.com/analogrelay/elastica-interop"
)

func cgoAdder() (adder, bool) {
	return func(_ context.Context, a, b int32) (int32, error) {
		return elastica.AddCgo(a, b), nil
	}, true
}
