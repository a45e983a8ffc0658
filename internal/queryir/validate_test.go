package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// fakeArray satisfies Array for tests without any device machinery.
type fakeArray struct {
	elem   scalarir.ElemType
	length int
	handle string
}

func (a *fakeArray) Elem() scalarir.ElemType { return a.elem }
func (a *fakeArray) Len() int                { return a.length }
func (a *fakeArray) ElemSize() int           { return a.elem.Size() }
func (a *fakeArray) Handle() any             { return a.handle }

func intArray(n int) *fakeArray {
	return &fakeArray{elem: scalarir.Int32, length: n, handle: "arr"}
}

func identity(label string, elem scalarir.ElemType) Lambda {
	param := &scalarir.Variable{Label: label, Type: elem}
	return Lambda{Param: param, Body: param}
}

func TestValidate_AcceptsWellFormedChains(t *testing.T) {
	src := NewSource(intArray(8))

	queries := map[string]Expr{
		"source":           src,
		"transform":        Transform{Lambda: identity("x", scalarir.Int32), Inner: src, Elem: scalarir.Int32},
		"filter":           Filter{Predicate: identity("x", scalarir.Int32), Inner: src},
		"sum":              Sum{Inner: src},
		"count":            Count{Inner: src},
		"toarray at root":  ToArray{Inner: Transform{Lambda: identity("x", scalarir.Int32), Inner: src, Elem: scalarir.Int32}},
		"nested operators": Sum{Inner: Filter{Predicate: identity("x", scalarir.Int32), Inner: Transform{Lambda: identity("y", scalarir.Int32), Inner: src, Elem: scalarir.Int32}}},
		"zip": ZipWith{
			ArrA: intArray(4), ArrB: intArray(4),
			Lambda: Lambda2{
				ParamA: &scalarir.Variable{Label: "a", Type: scalarir.Int32},
				ParamB: &scalarir.Variable{Label: "b", Type: scalarir.Int32},
				Body:   scalarir.Constant{Value: 0, Type: scalarir.Int32},
			},
			Elem: scalarir.Int32,
		},
	}

	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, Validate(q))
		})
	}
}

func TestValidate_RejectsMalformedChains(t *testing.T) {
	src := NewSource(intArray(8))

	tests := []struct {
		name    string
		query   Expr
		message string
	}{
		{"nil query", nil, "query is nil"},
		{"source without array", Source{Elem: scalarir.Int32}, "Source has no array"},
		{"transform without inner", Transform{Lambda: identity("x", scalarir.Int32)}, "Transform has no inner query"},
		{"transform without lambda body", Transform{Lambda: Lambda{Param: &scalarir.Variable{Label: "x"}}, Inner: src}, "Transform lambda is incomplete"},
		{"filter without predicate", Filter{Inner: src}, "Filter predicate is incomplete"},
		{"sum without inner", Sum{}, "Sum has no inner query"},
		{"count without inner", Count{}, "Count has no inner query"},
		{"toarray without inner", ToArray{}, "ToArray has no inner query"},
		{"toarray mid-chain", Sum{Inner: ToArray{Inner: src}}, "ToArray is only valid at the root"},
		{"nested toarray", ToArray{Inner: ToArray{Inner: src}}, "ToArray is only valid at the root"},
		{"zip without arrays", ZipWith{}, "ZipWith needs two arrays"},
		{
			"zip without lambda",
			ZipWith{ArrA: intArray(1), ArrB: intArray(1)},
			"ZipWith lambda is incomplete",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			require.Error(t, err)

			var shapeErr *ShapeError
			require.ErrorAs(t, err, &shapeErr)
			assert.Equal(t, tt.message, shapeErr.Message)
		})
	}
}

func TestValidate_WalksTheWholeChain(t *testing.T) {
	// The defect sits three operators deep.
	broken := Sum{Inner: Filter{
		Predicate: identity("x", scalarir.Int32),
		Inner:     Transform{Lambda: identity("y", scalarir.Int32), Inner: Source{}, Elem: scalarir.Int32},
	}}

	err := Validate(broken)
	require.Error(t, err)

	var shapeErr *ShapeError
	require.ErrorAs(t, err, &shapeErr)
	assert.Equal(t, "Source has no array", shapeErr.Message)
}
