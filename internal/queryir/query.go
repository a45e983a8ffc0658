package queryir

import "github.com/quarrylabs/quarry/internal/scalarir"

// Array is the minimal capability the compiler requires from a
// GPU-resident array. The handle is opaque: the compiler never touches
// device memory, it only threads the handle through to the argument list
// consumed by the execution layer.
//
// Element type, length and byte size are always taken from the array's
// own metadata, never recomputed.
type Array interface {
	// Elem returns the element type of the array.
	Elem() scalarir.ElemType
	// Len returns the logical element count.
	Len() int
	// ElemSize returns the element byte size.
	ElemSize() int
	// Handle returns the opaque device handle passed to the execution layer.
	Handle() any
}

// Lambda is a one-parameter element function. Body references Param by
// pointer identity.
type Lambda struct {
	Param *scalarir.Variable
	Body  scalarir.Expr
}

// Lambda2 is a two-parameter element function used by ZipWith. Body
// references ParamA and ParamB by pointer identity.
type Lambda2 struct {
	ParamA *scalarir.Variable
	ParamB *scalarir.Variable
	Body   scalarir.Expr
}

// Expr represents a pipeline query expression.
//
// This is a sealed interface - only types in this package implement it.
type Expr interface {
	queryNode() // Marker method - seals interface to this package
	// Type returns the element type of the query's result.
	Type() scalarir.ElemType
}

// Source is the single-array leaf of a chain.
type Source struct {
	// Arr is the device array the kernel reads from.
	Arr Array
	// Elem is the element type the chain is compiled against. It mirrors
	// the array's metadata and is carried here so the leaf is
	// self-describing.
	Elem scalarir.ElemType
}

func (Source) queryNode() {}

// Type returns the source element type.
func (s Source) Type() scalarir.ElemType { return s.Elem }

// NewSource builds a Source leaf over an array, taking the element type
// from the array's metadata.
func NewSource(arr Array) Source {
	return Source{Arr: arr, Elem: arr.Elem()}
}

// Transform applies a per-element mapping to the inner chain.
type Transform struct {
	// Lambda computes the mapped value from the inner element.
	Lambda Lambda
	// Inner is the upstream query.
	Inner Expr
	// Elem is the element type of the mapped values.
	Elem scalarir.ElemType
}

func (Transform) queryNode() {}

// Type returns the mapped element type.
func (t Transform) Type() scalarir.ElemType { return t.Elem }

// Filter keeps inner elements for which the predicate holds.
type Filter struct {
	// Predicate decides element survival. Its body must evaluate to a
	// truth value in the kernel language.
	Predicate Lambda
	// Inner is the upstream query.
	Inner Expr
}

func (Filter) queryNode() {}

// Type returns the inner element type; filtering does not change it.
func (f Filter) Type() scalarir.ElemType {
	if f.Inner == nil {
		return 0
	}
	return f.Inner.Type()
}

// Sum reduces the inner chain by addition.
type Sum struct {
	Inner Expr
}

func (Sum) queryNode() {}

// Type returns the inner element type; the sum is accumulated in it.
func (s Sum) Type() scalarir.ElemType {
	if s.Inner == nil {
		return 0
	}
	return s.Inner.Type()
}

// Count reduces the inner chain to the number of surviving elements.
//
// The compiler desugars Count(q) to Sum(Transform(_ => 1, q)) with the
// constant typed as q's element type; only the reported reduction kind
// differs. The result type therefore matches the inner element type.
type Count struct {
	Inner Expr
}

func (Count) queryNode() {}

// Type returns the inner element type (see the desugaring note above).
func (c Count) Type() scalarir.ElemType {
	if c.Inner == nil {
		return 0
	}
	return c.Inner.Type()
}

// ZipWith is the two-array leaf: elements of ArrA and ArrB at the same
// index are combined by Lambda.
type ZipWith struct {
	// ArrA is the left array; its argument tuple is emitted first.
	ArrA Array
	// ArrB is the right array.
	ArrB Array
	// Lambda combines one element from each array.
	Lambda Lambda2
	// Elem is the element type of the combined values.
	Elem scalarir.ElemType
}

func (ZipWith) queryNode() {}

// Type returns the combined element type.
func (z ZipWith) Type() scalarir.ElemType { return z.Elem }

// ToArray marks the chain result as materialized. It is a transparent
// passthrough and is only valid at the root of a query.
type ToArray struct {
	Inner Expr
}

func (ToArray) queryNode() {}

// Type returns the inner element type.
func (t ToArray) Type() scalarir.ElemType {
	if t.Inner == nil {
		return 0
	}
	return t.Inner.Type()
}
