// Package boundary is the marshaling layer between native functions and a
// dynamically typed host. Host values arrive as Go interface values, are
// checked against each parameter's Kind and only then reach the native
// implementation. Conversion failures come back as *MarshalError or
// *ArityError, both of which match ErrMarshal.
package boundary

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	elastica "github.com/analogrelay/elastica-interop"
)

// Func is a native callable bound into a Module. Impl receives arguments
// already converted to the native type named by the matching Param. A
// non-zero Result is checked against what Impl returns.
type Func struct {
	Name   string
	Params []Param
	Result Kind
	Impl   func(ctx context.Context, args []any) (any, error)
}

// Signature renders the callable the way it appears in error messages,
// e.g. "(a: i32, b: i32)".
func (f Func) Signature() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, p.Kind)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Module is a named set of callables exposed to a host.
type Module struct {
	name   string
	logger *slog.Logger

	mu    sync.RWMutex
	funcs map[string]Func
}

type ModuleOption func(*Module)

// WithLogger sets the logger used for call tracing. Calls are logged at
// debug level.
func WithLogger(logger *slog.Logger) ModuleOption {
	return func(m *Module) {
		m.logger = logger
	}
}

func NewModule(name string, opts ...ModuleOption) *Module {
	m := &Module{
		name:   name,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		funcs:  map[string]Func{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) Name() string {
	return m.name
}

// AddFunction registers fn. Names must be unique within the module.
func (m *Module) AddFunction(fn Func) error {
	if fn.Name == "" {
		return fmt.Errorf("module %s: function name is empty", m.name)
	}
	if fn.Impl == nil {
		return fmt.Errorf("module %s: function %s has no implementation", m.name, fn.Name)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.funcs[fn.Name]; ok {
		return fmt.Errorf("module %s: %s: %w", m.name, fn.Name, ErrDuplicateFunction)
	}
	m.funcs[fn.Name] = fn
	return nil
}

// Functions returns the registered names in sorted order.
func (m *Module) Functions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.funcs))
	for name := range m.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the callable registered under name.
func (m *Module) Lookup(name string) (Func, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	fn, ok := m.funcs[name]
	return fn, ok
}

// Call marshals args into the parameter types of the named function and
// invokes it.
func (m *Module) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := m.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("module %s has no attribute %q: %w", m.name, name, ErrUnknownFunction)
	}

	native, err := Marshal(fn, args)
	if err != nil {
		m.logger.DebugContext(ctx, "call rejected", "module", m.name, "func", name, "err", err)
		return nil, err
	}

	res, err := fn.Impl(ctx, native)
	if err != nil {
		return nil, fmt.Errorf("%s.%s: %w", m.name, name, err)
	}
	if fn.Result != 0 && !fn.Result.holds(res) {
		return nil, fmt.Errorf("%s.%s returned %s, declared %s: %w", m.name, name, describe(res), fn.Result, ErrResultType)
	}
	m.logger.DebugContext(ctx, "call", "module", m.name, "func", name, "args", native, "result", res)
	return res, nil
}

// Marshal converts host values into the native arguments of fn.
func Marshal(fn Func, args []any) ([]any, error) {
	if len(args) != len(fn.Params) {
		return nil, &ArityError{
			Func:      fn.Name,
			Signature: fn.Signature(),
			Want:      len(fn.Params),
			Got:       len(args),
		}
	}
	native := make([]any, len(args))
	for i, p := range fn.Params {
		v, reason, ok := p.Kind.marshal(args[i])
		if !ok {
			return nil, &MarshalError{
				Func:     fn.Name,
				Index:    i,
				Param:    p.Name,
				Expected: p.Kind,
				Got:      args[i],
				Reason:   reason,
			}
		}
		native[i] = v
	}
	return native, nil
}

// AddFunctionName is the name AddFunction is exported under.
const AddFunctionName = "add_py"

// AddFunc binds elastica.SumTwo as add_py(a: i32, b: i32) -> i32.
func AddFunc() Func {
	return Func{
		Name:   AddFunctionName,
		Params: []Param{{Name: "a", Kind: I32}, {Name: "b", Kind: I32}},
		Result: I32,
		Impl: func(_ context.Context, args []any) (any, error) {
			return elastica.SumTwo(args[0].(int32), args[1].(int32)), nil
		},
	}
}

// NewElasticaModule returns the elastica_rust module with add_py registered.
func NewElasticaModule(opts ...ModuleOption) *Module {
	m := NewModule(elastica.ModuleName, opts...)
	if err := m.AddFunction(AddFunc()); err != nil {
		// cannot happen on a fresh module
		panic(err)
	}
	return m
}

// Add calls add_py on m and returns the typed result.
func Add(ctx context.Context, m *Module, a, b any) (int32, error) {
	res, err := m.Call(ctx, AddFunctionName, a, b)
	if err != nil {
		return 0, err
	}
	sum, ok := res.(int32)
	if !ok {
		return 0, fmt.Errorf("%s.%s returned %s, want i32: %w", m.name, AddFunctionName, describe(res), ErrResultType)
	}
	return sum, nil
}
