package scalarir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElemType_String(t *testing.T) {
	assert.Equal(t, "int32", Int32.String())
	assert.Equal(t, "float32", Float32.String())
	assert.Equal(t, "float64", Float64.String())
	assert.Equal(t, "byte", Byte.String())
	assert.Equal(t, "ElemType(42)", ElemType(42).String())
}

func TestElemType_Size(t *testing.T) {
	tests := []struct {
		elem ElemType
		size int
	}{
		{Int32, 4},
		{Float32, 4},
		{Float64, 8},
		{Byte, 1},
		{ElemType(42), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.size, tt.elem.Size(), "size of %s", tt.elem)
	}
}

func TestParseElemType(t *testing.T) {
	for _, name := range []string{"int32", "float32", "float64", "byte"} {
		elem, ok := ParseElemType(name)
		assert.True(t, ok, "parse %q", name)
		assert.Equal(t, name, elem.String())
	}

	for _, name := range []string{"", "int", "INT32", "double", "uint8"} {
		_, ok := ParseElemType(name)
		assert.False(t, ok, "parse %q should fail", name)
	}
}

func TestBinOpKind_Token(t *testing.T) {
	tests := []struct {
		op    BinOpKind
		token string
	}{
		{Plus, "+"},
		{Times, "*"},
		{Modulo, "%"},
		{Equal, "=="},
	}
	for _, tt := range tests {
		token, ok := tt.op.Token()
		assert.True(t, ok)
		assert.Equal(t, tt.token, token)
	}

	_, ok := BinOpKind(99).Token()
	assert.False(t, ok)
}

func TestVariable_PointerIdentity(t *testing.T) {
	// Two declarations with identical label and type are still distinct
	// variables; only the same pointer is the same variable.
	a := &Variable{Label: "x", Type: Int32}
	b := &Variable{Label: "x", Type: Int32}
	assert.NotSame(t, a, b)
	assert.Equal(t, *a, *b)
}
