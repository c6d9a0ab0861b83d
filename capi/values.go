package main

import (
	"errors"
	"fmt"

	"github.com/analogrelay/elastica-interop/boundary"
)

// Mirrors the ELASTICA_* constants in elastica.h.
const (
	codeOK              int32 = 0
	codeArity           int32 = 1
	codeType            int32 = 2
	codeUnknownFunction int32 = 3
	codeInvalidArgument int32 = 4
	codeInternal        int32 = 5
)

type valueKind int32

const (
	kindNone valueKind = iota
	kindInt
	kindFloat
	kindString
	kindBool
)

// unknownKind stands in for a tag the library does not know. It never
// marshals to a native type.
type unknownKind int32

func (k unknownKind) String() string {
	return fmt.Sprintf("elastica_value kind %d", int32(k))
}

// hostValue turns the payload of an elastica_value into the Go value the
// boundary layer marshals from.
func hostValue(kind valueKind, i int64, f float64, s string) any {
	switch kind {
	case kindNone:
		return nil
	case kindInt:
		return i
	case kindFloat:
		return f
	case kindString:
		return s
	case kindBool:
		return i != 0
	default:
		return unknownKind(kind)
	}
}

func errorCode(err error) int32 {
	var (
		aerr *boundary.ArityError
		merr *boundary.MarshalError
	)
	switch {
	case err == nil:
		return codeOK
	case errors.As(err, &aerr):
		return codeArity
	case errors.As(err, &merr):
		return codeType
	case errors.Is(err, boundary.ErrUnknownFunction):
		return codeUnknownFunction
	default:
		return codeInternal
	}
}
