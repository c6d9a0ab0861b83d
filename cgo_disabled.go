//go:build !cgo

package elastica

// CgoEnabled reports whether AddCgo was compiled in.
const CgoEnabled = false
