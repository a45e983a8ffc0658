package queryir

import "fmt"

// ShapeError reports a structural defect in a query expression.
type ShapeError struct {
	// Node is the offending expression, nil when a required child is
	// missing entirely.
	Node Expr
	// Message describes the violated invariant.
	Message string
}

func (e *ShapeError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("invalid query shape: %s (%T)", e.Message, e.Node)
	}
	return fmt.Sprintf("invalid query shape: %s", e.Message)
}

// Validate checks the structural invariants of a query expression before
// compilation:
//
//  1. Source and ZipWith are leaves with non-nil arrays.
//  2. Transform and Filter have exactly one non-nil inner query and a
//     lambda with a non-nil parameter and body.
//  3. Every chain terminates at a leaf.
//  4. ToArray appears only at the root.
//
// Validate is a pure function with no side effects. The compiler enforces
// the same invariants during descent; running Validate first gives hosts
// a cheap pre-flight check with precise messages.
func Validate(q Expr) error {
	if q == nil {
		return &ShapeError{Message: "query is nil"}
	}
	if root, ok := q.(ToArray); ok {
		if root.Inner == nil {
			return &ShapeError{Node: root, Message: "ToArray has no inner query"}
		}
		q = root.Inner
	}
	return validateNode(q)
}

func validateNode(q Expr) error {
	switch node := q.(type) {
	case Source:
		if node.Arr == nil {
			return &ShapeError{Node: node, Message: "Source has no array"}
		}
		return nil
	case ZipWith:
		if node.ArrA == nil || node.ArrB == nil {
			return &ShapeError{Node: node, Message: "ZipWith needs two arrays"}
		}
		if node.Lambda.ParamA == nil || node.Lambda.ParamB == nil || node.Lambda.Body == nil {
			return &ShapeError{Node: node, Message: "ZipWith lambda is incomplete"}
		}
		return nil
	case Transform:
		if node.Lambda.Param == nil || node.Lambda.Body == nil {
			return &ShapeError{Node: node, Message: "Transform lambda is incomplete"}
		}
		if node.Inner == nil {
			return &ShapeError{Node: node, Message: "Transform has no inner query"}
		}
		return validateNode(node.Inner)
	case Filter:
		if node.Predicate.Param == nil || node.Predicate.Body == nil {
			return &ShapeError{Node: node, Message: "Filter predicate is incomplete"}
		}
		if node.Inner == nil {
			return &ShapeError{Node: node, Message: "Filter has no inner query"}
		}
		return validateNode(node.Inner)
	case Sum:
		if node.Inner == nil {
			return &ShapeError{Node: node, Message: "Sum has no inner query"}
		}
		return validateNode(node.Inner)
	case Count:
		if node.Inner == nil {
			return &ShapeError{Node: node, Message: "Count has no inner query"}
		}
		return validateNode(node.Inner)
	case ToArray:
		return &ShapeError{Node: node, Message: "ToArray is only valid at the root"}
	default:
		return &ShapeError{Node: q, Message: fmt.Sprintf("unknown query node %T", q)}
	}
}
