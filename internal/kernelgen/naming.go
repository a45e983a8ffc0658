package kernelgen

import (
	"fmt"

	"github.com/quarrylabs/quarry/internal/scalarir"
)

// varName resolves a variable's generated kernel identifier:
// "<label><index>", where index is the variable's position (by pointer
// identity) in the declared-variable list.
//
// Distinct declarations always get distinct indices, so generated names
// are collision-free even when labels repeat.
//
// A miss is an InternalError: the compiler pushed a statement referencing
// a variable it never declared. Valid input cannot trigger this.
//
// The lookup is linear; fusion depths are small enough that a
// precomputed index map is not worth the bookkeeping.
func varName(v *scalarir.Variable, vars []*scalarir.Variable) (string, error) {
	for i, declared := range vars {
		if declared == v {
			return fmt.Sprintf("%s%d", v.Label, i), nil
		}
	}
	return "", &InternalError{
		Message: fmt.Sprintf("variable %q (%s) referenced but never declared", v.Label, v.Type),
	}
}
