// Package elastica holds the native arithmetic exposed by the elastica
// extension module. The host-facing surfaces live in the boundary, capi and
// wasmhost packages.
package elastica

const (
	// ModuleName is the name the extension module registers under.
	ModuleName = "elastica_rust"
	Version    = "0.1.0"
)

// SumTwo returns a + b. Overflow wraps using two's-complement arithmetic.
func SumTwo(a, b int32) int32 {
	return a + b
}
