//go:build cgo

package elastica

/*
#include <stdint.h>

static inline int32_t elastica_add_c(int32_t a, int32_t b) {
    return (int32_t)((uint32_t)a + (uint32_t)b);
}
*/
// #cgo nocallback elastica_add_c
// #cgo noescape elastica_add_c
import "C"

// CgoEnabled reports whether AddCgo was compiled in.
const CgoEnabled = true

// AddCgo computes the same sum as SumTwo through a C function.
func AddCgo(a, b int32) int32 {
	return int32(C.elastica_add_c(C.int32_t(a), C.int32_t(b)))
}
