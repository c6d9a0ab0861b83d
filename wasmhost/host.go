// Package wasmhost exposes the elastica add function to WebAssembly guests
// through the wazero runtime. The host module exports "add" with the wasm
// signature (i32, i32) -> i32; guests import it like any other function.
package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	elastica "github.com/analogrelay/elastica-interop"
	"github.com/analogrelay/elastica-interop/boundary"
)

const (
	// DefaultModuleName is the import module guests use for the host
	// functions.
	DefaultModuleName = "elastica"
	// HostFuncName is the export name of the add function.
	HostFuncName = "add"

	guestModuleName = "elastica_guest"
)

// ErrUnknownModule is returned by Call for a module name the runtime has not
// instantiated.
var ErrUnknownModule = errors.New("unknown module")

type config struct {
	moduleName    string
	logger        *slog.Logger
	runtimeConfig wazero.RuntimeConfig
}

type Option func(*config)

// WithModuleName changes the import module name guests link against.
func WithModuleName(name string) Option {
	return func(c *config) {
		c.moduleName = name
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithRuntimeConfig selects the wazero engine, e.g.
// wazero.NewRuntimeConfigInterpreter().
func WithRuntimeConfig(rc wazero.RuntimeConfig) Option {
	return func(c *config) {
		c.runtimeConfig = rc
	}
}

// Host owns a wazero runtime with the elastica host module instantiated.
type Host struct {
	runtime    wazero.Runtime
	moduleName string
	logger     *slog.Logger
}

// New creates a runtime, instantiates the host module and the trampoline
// guest used by Add.
func New(ctx context.Context, opts ...Option) (*Host, error) {
	cfg := config{
		moduleName:    DefaultModuleName,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		runtimeConfig: wazero.NewRuntimeConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.moduleName == guestModuleName {
		return nil, fmt.Errorf("module name %q is reserved", guestModuleName)
	}

	h := &Host{
		runtime:    wazero.NewRuntimeWithConfig(ctx, cfg.runtimeConfig),
		moduleName: cfg.moduleName,
		logger:     cfg.logger,
	}

	_, err := h.runtime.NewHostModuleBuilder(cfg.moduleName).
		NewFunctionBuilder().
		WithGoFunction(api.GoFunc(addGo), []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}, []api.ValueType{api.ValueTypeI32}).
		WithParameterNames("a", "b").
		WithResultNames("sum").
		Export(HostFuncName).
		Instantiate(ctx)
	if err != nil {
		h.runtime.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate host module %s: %w", cfg.moduleName, err)
	}

	if _, err := h.InstantiateGuest(ctx, guestModuleName, AddGuest(cfg.moduleName)); err != nil {
		h.runtime.Close(ctx)
		return nil, err
	}

	h.logger.Debug("wasm host ready", "module", cfg.moduleName, "func", HostFuncName)
	return h, nil
}

// addGo is the host side of the wasm call: both parameters and the result
// travel as the low 32 bits of a uint64 stack slot.
func addGo(_ context.Context, stack []uint64) {
	a, b := api.DecodeI32(stack[0]), api.DecodeI32(stack[1])
	stack[0] = api.EncodeI32(elastica.SumTwo(a, b))
}

// ModuleName is the import module guests link against.
func (h *Host) ModuleName() string {
	return h.moduleName
}

// Add calls the host function from inside wasm, through the trampoline
// guest's "sum" export.
func (h *Host) Add(ctx context.Context, a, b int32) (int32, error) {
	res, err := h.Call(ctx, h.moduleName, HostFuncName, api.EncodeI32(a), api.EncodeI32(b))
	if err != nil {
		return 0, err
	}
	return api.DecodeI32(res[0]), nil
}

// InstantiateGuest instantiates a guest module under name. The guest may
// import the host functions from ModuleName.
func (h *Host) InstantiateGuest(ctx context.Context, name string, wasm []byte) (api.Module, error) {
	mod, err := h.runtime.InstantiateWithConfig(ctx, wasm, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate guest %s: %w", name, err)
	}
	h.logger.Debug("guest instantiated", "module", name)
	return mod, nil
}

// Call invokes an exported function of any instantiated module. Existence
// and parameter counts are checked against the export definitions before
// entering the runtime, so a mismatch surfaces as a *boundary.ArityError.
//
// Functions of the host module cannot be called from Go directly; they are
// entered through the trampoline guest that imports them.
func (h *Host) Call(ctx context.Context, module, fn string, params ...uint64) ([]uint64, error) {
	mod := h.runtime.Module(module)
	if mod == nil {
		return nil, fmt.Errorf("%s: %w", module, ErrUnknownModule)
	}
	def, ok := mod.ExportedFunctionDefinitions()[fn]
	if !ok {
		return nil, fmt.Errorf("module %s has no export %q: %w", module, fn, boundary.ErrUnknownFunction)
	}

	if want := len(def.ParamTypes()); len(params) != want {
		return nil, &boundary.ArityError{
			Func:      module + "." + fn,
			Signature: signature(def),
			Want:      want,
			Got:       len(params),
		}
	}

	target, export := mod, fn
	if module == h.moduleName {
		if fn != HostFuncName {
			return nil, fmt.Errorf("host function %s.%s has no guest entry point: %w", module, fn, boundary.ErrUnknownFunction)
		}
		target, export = h.runtime.Module(guestModuleName), GuestSum
		if target == nil {
			return nil, fmt.Errorf("%s: %w", guestModuleName, ErrUnknownModule)
		}
	}

	res, err := target.ExportedFunction(export).Call(ctx, params...)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", module, fn, err)
	}
	return res, nil
}

// Close releases the runtime and every module instantiated in it.
func (h *Host) Close(ctx context.Context) error {
	return h.runtime.Close(ctx)
}

func signature(def api.FunctionDefinition) string {
	names := def.ParamNames()
	parts := make([]string, len(def.ParamTypes()))
	for i, t := range def.ParamTypes() {
		if i < len(names) && names[i] != "" {
			parts[i] = names[i] + ": " + api.ValueTypeName(t)
		} else {
			parts[i] = api.ValueTypeName(t)
		}
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
