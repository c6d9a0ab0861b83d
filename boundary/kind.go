package boundary

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Kind is the native type a host value is marshaled into.
type Kind int

const (
	I32 Kind = iota + 1
)

func (k Kind) String() string {
	switch k {
	case I32:
		return "i32"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Param names one parameter of a bound callable.
type Param struct {
	Name string
	Kind Kind
}

// holds reports whether v is already the native representation of k.
func (k Kind) holds(v any) bool {
	switch k {
	case I32:
		_, ok := v.(int32)
		return ok
	default:
		return false
	}
}

// marshal converts v into the native representation of k. The returned
// reason is empty when v has the wrong type entirely and set when the type is
// right but the value is not representable.
func (k Kind) marshal(v any) (any, string, bool) {
	switch k {
	case I32:
		return toI32(v)
	default:
		return nil, fmt.Sprintf("unsupported parameter kind %s", k), false
	}
}

func toI32(v any) (any, string, bool) {
	var n int64
	switch v := v.(type) {
	case int32:
		return v, "", true
	case int:
		n = int64(v)
	case int8:
		n = int64(v)
	case int16:
		n = int64(v)
	case int64:
		n = v
	case uint8:
		n = int64(v)
	case uint16:
		n = int64(v)
	case uint32:
		n = int64(v)
	case uint:
		if uint64(v) > math.MaxInt32 {
			return nil, "out of range for i32", false
		}
		n = int64(v)
	case uint64:
		if v > math.MaxInt32 {
			return nil, "out of range for i32", false
		}
		n = int64(v)
	case json.Number:
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if errors.Is(err, strconv.ErrRange) {
			return nil, "out of range for i32", false
		}
		if err != nil {
			return nil, "not an integer literal", false
		}
		n = parsed
	default:
		// bool, floats, strings and everything else are never coerced.
		return nil, "", false
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, "out of range for i32", false
	}
	return int32(n), "", true
}
