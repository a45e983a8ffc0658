package kernelgen

import "github.com/quarrylabs/quarry/internal/scalarir"

// TypeToken maps an element type to its kernel-language type token.
//
// Both float widths render to the single-precision token. This is a
// documented lossy simplification carried over from the source system:
// float64 elements silently narrow to single precision in the kernel.
func TypeToken(t scalarir.ElemType) (string, error) {
	switch t {
	case scalarir.Int32:
		return "int", nil
	case scalarir.Float32, scalarir.Float64:
		return "float", nil
	case scalarir.Byte:
		return "byte", nil
	default:
		return "", &UnsupportedTypeError{Type: t}
	}
}
