package boundary

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	ctx := context.Background()
	m := NewElasticaModule()

	res, err := Add(ctx, m, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(5), res)

	res, err = Add(ctx, m, int64(math.MaxInt32), uint8(1))
	require.NoError(t, err)
	assert.Equal(t, int32(math.MinInt32), res)

	res, err = Add(ctx, m, json.Number("-4"), int16(-6))
	require.NoError(t, err)
	assert.Equal(t, int32(-10), res)
}

func TestModule(t *testing.T) {
	m := NewElasticaModule()
	assert.Equal(t, "elastica_rust", m.Name())
	assert.Equal(t, []string{"add_py"}, m.Functions())

	err := m.AddFunction(AddFunc())
	require.ErrorIs(t, err, ErrDuplicateFunction)

	err = m.AddFunction(Func{Name: "nothing"})
	require.Error(t, err)

	_, err = m.Call(context.Background(), "sub_py", 1, 2)
	require.ErrorIs(t, err, ErrUnknownFunction)
	assert.NotErrorIs(t, err, ErrMarshal)
}

func TestMarshalErrors(t *testing.T) {
	ctx := context.Background()
	m := NewElasticaModule()

	for _, tc := range []struct {
		name string
		args []any
		msg  string
	}{
		{
			name: "string",
			args: []any{2, "x"},
			msg:  `add_py() argument 2 (b): expected i32, got string "x"`,
		},
		{
			name: "float",
			args: []any{2.0, 3},
			msg:  "add_py() argument 1 (a): expected i32, got float64 2",
		},
		{
			name: "bool",
			args: []any{true, 3},
			msg:  "add_py() argument 1 (a): expected i32, got bool true",
		},
		{
			name: "nil",
			args: []any{1, nil},
			msg:  "add_py() argument 2 (b): expected i32, got nil",
		},
		{
			name: "too large",
			args: []any{int64(math.MaxInt32) + 1, 0},
			msg:  "add_py() argument 1 (a): expected i32, got int64 2147483648: out of range for i32",
		},
		{
			name: "too small",
			args: []any{0, int64(math.MinInt32) - 1},
			msg:  "add_py() argument 2 (b): expected i32, got int64 -2147483649: out of range for i32",
		},
		{
			name: "large unsigned",
			args: []any{uint64(math.MaxUint64), 0},
			msg:  "add_py() argument 1 (a): expected i32, got uint64 18446744073709551615: out of range for i32",
		},
		{
			name: "fractional number",
			args: []any{json.Number("1.5"), 0},
			msg:  "add_py() argument 1 (a): expected i32, got json.Number 1.5: not an integer literal",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Call(ctx, AddFunctionName, tc.args...)
			require.ErrorIs(t, err, ErrMarshal)

			var merr *MarshalError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, I32, merr.Expected)
			assert.EqualError(t, err, tc.msg)
		})
	}
}

func TestArityErrors(t *testing.T) {
	ctx := context.Background()
	m := NewElasticaModule()

	for _, args := range [][]any{nil, {1}, {1, 2, 3}} {
		_, err := m.Call(ctx, AddFunctionName, args...)
		require.ErrorIs(t, err, ErrMarshal)

		var aerr *ArityError
		require.True(t, errors.As(err, &aerr))
		assert.Equal(t, 2, aerr.Want)
		assert.Equal(t, len(args), aerr.Got)
		assert.Contains(t, err.Error(), "add_py(a: i32, b: i32) takes exactly 2 arguments")
	}
}

func TestImplErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	m := NewModule("test")
	require.NoError(t, m.AddFunction(Func{
		Name:   "fail",
		Params: []Param{{Name: "a", Kind: I32}},
		Result: I32,
		Impl: func(context.Context, []any) (any, error) {
			return nil, boom
		},
	}))

	_, err := m.Call(context.Background(), "fail", 1)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMarshal)
	assert.EqualError(t, err, "test.fail: boom")
}

func TestResultTypeChecked(t *testing.T) {
	ctx := context.Background()
	wide := func(_ context.Context, args []any) (any, error) {
		return int64(args[0].(int32)) + int64(args[1].(int32)), nil
	}

	m := NewModule("wide")
	require.NoError(t, m.AddFunction(Func{
		Name:   AddFunctionName,
		Params: []Param{{Name: "a", Kind: I32}, {Name: "b", Kind: I32}},
		Result: I32,
		Impl:   wide,
	}))

	_, err := m.Call(ctx, AddFunctionName, 1, 2)
	require.ErrorIs(t, err, ErrResultType)
	assert.EqualError(t, err, "wide.add_py returned int64 3, declared i32: result type mismatch")

	// without a declared result Call passes the value through and Add rejects it
	untyped := NewModule("untyped")
	require.NoError(t, untyped.AddFunction(Func{
		Name:   AddFunctionName,
		Params: []Param{{Name: "a", Kind: I32}, {Name: "b", Kind: I32}},
		Impl:   wide,
	}))

	res, err := untyped.Call(ctx, AddFunctionName, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res)

	_, err = Add(ctx, untyped, 1, 2)
	require.ErrorIs(t, err, ErrResultType)
	assert.NotErrorIs(t, err, ErrMarshal)
}

func TestConcurrentCalls(t *testing.T) {
	ctx := context.Background()
	m := NewElasticaModule()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		w := w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				res, err := Add(ctx, m, w, i)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, int32(w+i), res)
			}
		}()
	}
	wg.Wait()
}

func BenchmarkBoundaryCall(b *testing.B) {
	ctx := context.Background()
	m := NewElasticaModule()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := m.Call(ctx, AddFunctionName, 1, 2); err != nil {
			b.Fatal(err)
		}
	}
}
