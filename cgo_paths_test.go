//go:build cgo

package elastica

import "testing"

func init() {
	callPaths = append(callPaths, callPath{
		name: "cgo",
		open: func(testing.TB) func(a, b int32) int32 { return AddCgo },
	})
}
