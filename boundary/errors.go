package boundary

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMarshal matches every failure to convert host arguments into native
	// values, whether the count or the type is wrong.
	ErrMarshal = errors.New("marshaling error")

	// ErrUnknownFunction is returned when a module has no callable by the
	// requested name.
	ErrUnknownFunction = errors.New("unknown function")

	// ErrResultType is returned when an implementation produces a value that
	// does not match the declared result Kind.
	ErrResultType = errors.New("result type mismatch")

	// ErrDuplicateFunction is returned by AddFunction for a name that is
	// already registered.
	ErrDuplicateFunction = errors.New("function already registered")
)

// MarshalError reports a single argument that could not be converted to its
// native parameter type.
type MarshalError struct {
	Func     string
	Index    int
	Param    string
	Expected Kind
	Got      any
	Reason   string
}

func (e *MarshalError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s() argument %d", e.Func, e.Index+1)
	if e.Param != "" {
		fmt.Fprintf(&sb, " (%s)", e.Param)
	}
	fmt.Fprintf(&sb, ": expected %s, got %s", e.Expected, describe(e.Got))
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

func (e *MarshalError) Is(target error) bool {
	return target == ErrMarshal
}

// ArityError reports a call with the wrong number of arguments.
type ArityError struct {
	Func      string
	Signature string
	Want      int
	Got       int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s%s takes exactly %d arguments (%d given)", e.Func, e.Signature, e.Want, e.Got)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrMarshal
}

func describe(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case string:
		return fmt.Sprintf("string %q", v)
	default:
		return fmt.Sprintf("%T %v", v, v)
	}
}
