package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	elastica "github.com/analogrelay/elastica-interop"
	"github.com/analogrelay/elastica-interop/boundary"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := execute(context.Background(), root, args)
	return stdout.String(), err
}

func TestAdd(t *testing.T) {
	for _, via := range availablePaths() {
		t.Run(via, func(t *testing.T) {
			out, err := run(t, "add", "2", "3", "--via", via)
			require.NoError(t, err)
			assert.Equal(t, "5\n", out)

			out, err = run(t, "add", "--via", via, "--", "2147483647", "1")
			require.NoError(t, err)
			assert.Equal(t, "-2147483648\n", out)
		})
	}
}

func TestAddNegativeOperands(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{args: []string{"add", "-2", "3"}, want: "1\n"},
		{args: []string{"add", "3", "-2"}, want: "1\n"},
		{args: []string{"add", "-2147483648", "-1", "--via", "boundary"}, want: "2147483647\n"},
		{args: []string{"add", "--via", "wasm", "-2147483648", "0"}, want: "-2147483648\n"},
		{args: []string{"--log-level", "warn", "add", "-7", "--via=native", "-8"}, want: "-15\n"},
		{args: []string{"add", "--", "-2", "3"}, want: "1\n"},
	} {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			out, err := run(t, tc.args...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}

	_, err := run(t, "add", "-2.5", "1")
	require.ErrorIs(t, err, boundary.ErrMarshal)
}

func TestEscapeOperands(t *testing.T) {
	root := newRootCmd()
	for _, tc := range []struct {
		in, want []string
	}{
		{
			in:   []string{"add", "-2", "3"},
			want: []string{"add", "--", "-2", "3"},
		},
		{
			in:   []string{"--log-level", "debug", "add", "-2", "--via", "cgo", "-3"},
			want: []string{"add", "--log-level", "debug", "--via", "cgo", "--", "-2", "-3"},
		},
		{
			in:   []string{"add", "--no-color", "1", "-1"},
			want: []string{"add", "--no-color", "--", "1", "-1"},
		},
		{
			in:   []string{"add", "--", "-2", "3"},
			want: []string{"add", "--", "-2", "3"},
		},
		{
			in:   []string{"bench", "--workers", "2"},
			want: []string{"bench", "--workers", "2"},
		},
	} {
		assert.Equal(t, tc.want, escapeOperands(root, tc.in), tc.in)
	}
}

func TestAddRejectsNonIntegers(t *testing.T) {
	_, err := run(t, "add", "2", "x")
	require.ErrorIs(t, err, boundary.ErrMarshal)
	assert.EqualError(t, err, "add_py() argument 2 (b): expected i32, got json.Number x: not an integer literal")

	_, err = run(t, "add", "2.5", "1")
	require.ErrorIs(t, err, boundary.ErrMarshal)

	_, err = run(t, "add", "2147483648", "1")
	require.ErrorIs(t, err, boundary.ErrMarshal)
	assert.Contains(t, err.Error(), "out of range for i32")

	_, err = run(t, "add", "2")
	require.Error(t, err)
}

func TestAddUnknownPath(t *testing.T) {
	_, err := run(t, "add", "2", "3", "--via", "grpc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid argument "grpc" for "--via" flag: must be one of: native, cgo, boundary, wasm`)

	_, _, err = newAdder(context.Background(), "grpc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown call path "grpc"`)
}

func TestCgoPathAvailability(t *testing.T) {
	_, err := run(t, "add", "2", "3", "--via", "cgo")
	if elastica.CgoEnabled {
		require.NoError(t, err)
	} else {
		require.Error(t, err)
		assert.Contains(t, err.Error(), "built without cgo")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "add", "2", "3", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid argument "loud" for "--log-level" flag`)
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "Module: elastica_rust")
	assert.Contains(t, out, "Function: add_py(a: i32, b: i32) -> i32")
	assert.Contains(t, out, "Wasm import: elastica.add")
	assert.Contains(t, out, "native, ")
}

func TestBench(t *testing.T) {
	for _, via := range []string{viaNative, viaBoundary, viaWasm} {
		t.Run(via, func(t *testing.T) {
			out, err := run(t, "bench", "--via", via, "--duration", "50ms", "--workers", "2", "--progress", "0")
			require.NoError(t, err)
			assert.Contains(t, out, "Call path: "+via)
			assert.Contains(t, out, "| "+via+" | ")
		})
	}
}

func TestBenchValidation(t *testing.T) {
	_, err := run(t, "bench", "--workers", "0")
	require.Error(t, err)

	_, err = run(t, "bench", "--duration", "0s")
	require.Error(t, err)
}

func TestExecuteBenchmarkCountsErrors(t *testing.T) {
	failing := func(context.Context, int32, int32) (int32, error) {
		return 0, assert.AnError
	}
	_, err := executeBenchmark(context.Background(), failing, benchConfig{
		via:      "failing",
		duration: 20 * time.Millisecond,
		workers:  1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no operations completed")
}

func TestSummarize(t *testing.T) {
	res := summarize(viaWasm, 300, 100, 8000, 2*time.Second)
	assert.Equal(t, int64(300), res.TotalOps)
	assert.Equal(t, int64(100), res.Errors)
	assert.Equal(t, 150.0, res.OpsPerSecond)
	assert.Equal(t, 20.0, res.LatencyNs)

	empty := summarize(viaNative, 0, 0, 0, 0)
	assert.Zero(t, empty.OpsPerSecond)
	assert.Zero(t, empty.LatencyNs)
}
