package kernelgen

import (
	"errors"
	"fmt"

	"github.com/quarrylabs/quarry/internal/queryir"
	"github.com/quarrylabs/quarry/internal/scalarir"
)

// UnsupportedTypeError reports an element type outside the four supported
// kinds (int32, float32, float64, byte).
type UnsupportedTypeError struct {
	// Type is the rejected element type.
	Type scalarir.ElemType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported element type: %s", e.Type)
}

// UnsupportedExpressionError reports a scalar expression shape outside the
// renderer's closed grammar, or a constant whose value cannot represent
// its declared type.
type UnsupportedExpressionError struct {
	// Expr is the offending expression.
	Expr scalarir.Expr
	// Message describes what was rejected.
	Message string
}

func (e *UnsupportedExpressionError) Error() string {
	return fmt.Sprintf("unsupported scalar expression %T: %s", e.Expr, e.Message)
}

// UnsupportedQueryShapeError reports a query shape outside the compiler's
// grammar, including Sum/Count directly over a ZipWith leaf.
type UnsupportedQueryShapeError struct {
	// Query is the offending node.
	Query queryir.Expr
	// Message describes what was rejected.
	Message string
}

func (e *UnsupportedQueryShapeError) Error() string {
	return fmt.Sprintf("unsupported query shape %T: %s", e.Query, e.Message)
}

// InternalError reports a compiler bookkeeping defect - most notably a
// variable reference that was never declared in the compilation context.
// It is never caused by valid input.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %s", e.Message)
}

// IsUnsupportedType returns true if the error is an UnsupportedTypeError.
// Uses errors.As to handle wrapped errors.
func IsUnsupportedType(err error) bool {
	var te *UnsupportedTypeError
	return errors.As(err, &te)
}

// IsUnsupportedExpression returns true if the error is an
// UnsupportedExpressionError.
func IsUnsupportedExpression(err error) bool {
	var ee *UnsupportedExpressionError
	return errors.As(err, &ee)
}

// IsUnsupportedQueryShape returns true if the error is an
// UnsupportedQueryShapeError.
func IsUnsupportedQueryShape(err error) bool {
	var qe *UnsupportedQueryShapeError
	return errors.As(err, &qe)
}

// IsInternal returns true if the error is an InternalError.
func IsInternal(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}
