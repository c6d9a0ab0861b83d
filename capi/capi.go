//go:build cgo

// Command capi builds the elastica C ABI library:
//
//	go build -buildmode=c-shared -o libelastica.so ./capi
//
// Hosts either call elastica_add directly or go through elastica_call, which
// accepts tagged values and reports marshaling failures in an
// elastica_error.
package main

/*
#include <stdlib.h>
#include "elastica.h"
*/
import "C"
import (
	"context"
	"unsafe"

	elastica "github.com/analogrelay/elastica-interop"
	"github.com/analogrelay/elastica-interop/boundary"
)

var (
	module = boundary.NewElasticaModule()

	// never freed, handed out as static strings
	cModuleName = C.CString(elastica.ModuleName)
	cVersion    = C.CString(elastica.Version)
)

//export elastica_add
func elastica_add(a, b C.int32_t) C.int32_t {
	return C.int32_t(elastica.SumTwo(int32(a), int32(b)))
}

//export elastica_call
func elastica_call(name *C.char, args *C.elastica_value, nargs C.size_t, out *C.int32_t, cerr *C.elastica_error) C.int32_t {
	if name == nil || out == nil || (args == nil && nargs > 0) {
		return setError(cerr, codeInvalidArgument, "name, out and args must not be null")
	}

	values := make([]any, int(nargs))
	if nargs > 0 {
		for i, v := range unsafe.Slice(args, int(nargs)) {
			var s string
			if v.s != nil {
				s = C.GoString(v.s)
			}
			values[i] = hostValue(valueKind(v.kind), int64(v.i), float64(v.f), s)
		}
	}

	res, err := module.Call(context.Background(), C.GoString(name), values...)
	if err != nil {
		return setError(cerr, errorCode(err), err.Error())
	}
	sum, ok := res.(int32)
	if !ok {
		return setError(cerr, codeInternal, "unexpected result type")
	}

	*out = C.int32_t(sum)
	if cerr != nil {
		cerr.code = C.int32_t(codeOK)
		cerr.message = nil
	}
	return C.int32_t(codeOK)
}

//export elastica_error_free
func elastica_error_free(cerr *C.elastica_error) {
	if cerr == nil || cerr.message == nil {
		return
	}
	C.free(unsafe.Pointer(cerr.message))
	cerr.message = nil
}

//export elastica_module_name
func elastica_module_name() *C.char {
	return cModuleName
}

//export elastica_version
func elastica_version() *C.char {
	return cVersion
}

func setError(cerr *C.elastica_error, code int32, msg string) C.int32_t {
	if cerr != nil {
		cerr.code = C.int32_t(code)
		cerr.message = C.CString(msg)
	}
	return C.int32_t(code)
}
