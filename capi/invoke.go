//go:build cgo

package main

/*
#include <stdlib.h>
#include "elastica.h"
*/
import "C"
import "unsafe"

// cArg is the Go side of one elastica_value.
type cArg struct {
	kind valueKind
	i    int64
	f    float64
	s    string
}

// cCall describes an elastica_call invocation the way a C host makes it:
// arguments and strings in C memory, any pointer optionally NULL.
type cCall struct {
	name     *string
	args     []cArg
	nargs    int // passed alongside a NULL args pointer
	nullArgs bool
	nullOut  bool
	nullErr  bool
}

// cResult is what the host observes after elastica_call returns.
type cResult struct {
	code    int32
	out     int32
	errCode int32
	message string
	// freed reports whether elastica_error_free cleared the message.
	freed bool
}

func (c cCall) invoke() cResult {
	var name *C.char
	if c.name != nil {
		name = C.CString(*c.name)
		defer C.free(unsafe.Pointer(name))
	}

	nargs := len(c.args)
	var args *C.elastica_value
	if c.nullArgs {
		nargs = c.nargs
	} else if nargs > 0 {
		args = (*C.elastica_value)(C.calloc(C.size_t(nargs), C.size_t(unsafe.Sizeof(C.elastica_value{}))))
		defer C.free(unsafe.Pointer(args))
		values := unsafe.Slice(args, nargs)
		for i := range values {
			v := &values[i]
			v.kind = C.int32_t(c.args[i].kind)
			v.i = C.int64_t(c.args[i].i)
			v.f = C.double(c.args[i].f)
			if c.args[i].kind == kindString {
				v.s = C.CString(c.args[i].s)
				defer C.free(unsafe.Pointer(v.s))
			}
		}
	}

	out := (*C.int32_t)(C.malloc(C.size_t(unsafe.Sizeof(C.int32_t(0)))))
	defer C.free(unsafe.Pointer(out))
	*out = -1
	cerr := (*C.elastica_error)(C.calloc(1, C.size_t(unsafe.Sizeof(C.elastica_error{}))))
	defer C.free(unsafe.Pointer(cerr))
	cerr.code = -1

	outArg, errArg := out, cerr
	if c.nullOut {
		outArg = nil
	}
	if c.nullErr {
		errArg = nil
	}

	res := cResult{
		code: int32(elastica_call(name, args, C.size_t(nargs), outArg, errArg)),
		out:  int32(*out),
	}
	res.errCode = int32(cerr.code)
	if cerr.message != nil {
		res.message = C.GoString(cerr.message)
	}
	elastica_error_free(cerr)
	res.freed = cerr.message == nil
	return res
}

func addC(a, b int32) int32 {
	return int32(elastica_add(C.int32_t(a), C.int32_t(b)))
}

func moduleNameC() string {
	return C.GoString(elastica_module_name())
}

func versionC() string {
	return C.GoString(elastica_version())
}
