package scalarir

import "fmt"

// ElemType identifies the element type of a device array or scalar value.
//
// The compiler supports exactly four element kinds. The type is an open
// integer rather than a closed enum so that a host can hand the compiler
// an unknown type and get a typed UnsupportedTypeError back instead of a
// silent misrender.
type ElemType uint8

const (
	// Int32 is a 32-bit signed integer element.
	Int32 ElemType = iota
	// Float32 is a single-precision float element.
	Float32
	// Float64 is a double-precision float element.
	// NOTE: float64 renders with the single-precision kernel token,
	// silently narrowing precision. Reproduced as observed upstream.
	Float64
	// Byte is an unsigned 8-bit element.
	Byte
)

// String returns a diagnostic name for the element type.
func (t ElemType) String() string {
	switch t {
	case Int32:
		return "int32"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Byte:
		return "byte"
	default:
		return fmt.Sprintf("ElemType(%d)", uint8(t))
	}
}

// Size returns the element byte size on the host side.
// Returns 0 for unknown types; the compiler rejects those separately.
func (t ElemType) Size() int {
	switch t {
	case Int32, Float32:
		return 4
	case Float64:
		return 8
	case Byte:
		return 1
	default:
		return 0
	}
}

// ParseElemType maps a textual type name (as used in pipeline files) to
// an ElemType. The boolean is false for unknown names.
func ParseElemType(name string) (ElemType, bool) {
	switch name {
	case "int32":
		return Int32, true
	case "float32":
		return Float32, true
	case "float64":
		return Float64, true
	case "byte":
		return Byte, true
	default:
		return 0, false
	}
}
