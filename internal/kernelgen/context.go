package kernelgen

import "github.com/quarrylabs/quarry/internal/scalarir"

// ReductionKind is the aggregate shape of a generated kernel.
type ReductionKind uint8

const (
	// Map is an element-wise kernel writing one output per input.
	Map ReductionKind = iota
	// FilterKind is an element-wise kernel that additionally writes a
	// per-element keep/skip flag for downstream compaction.
	FilterKind
	// SumKind is a reduction by addition.
	SumKind
	// CountKind is a reduction counting surviving elements. It is never
	// active during descent - Count desugars to Sum - and appears only in
	// the reported result metadata.
	CountKind
)

// String returns the metadata name of the reduction kind.
func (k ReductionKind) String() string {
	switch k {
	case Map:
		return "map"
	case FilterKind:
		return "filter"
	case SumKind:
		return "sum"
	case CountKind:
		return "count"
	default:
		return "unknown"
	}
}

// Labels for the compiler-introduced variables and the skeleton jump
// targets. User lambda parameters keep their own labels; collision
// freedom comes from the positional index, not the label.
const (
	resultLabel   = "final"
	accLabel      = "acc"
	flagLabel     = "flag"
	continueLabel = "fuse_continue"
	breakLabel    = "fuse_break"
)

// context is the state threaded through fusion descent.
//
// A context value is never mutated once passed down: every step derives a
// new value via with* helpers, which copy the accumulator slices before
// appending. That keeps recursive branches (and concurrent compilations)
// free of aliasing.
type context struct {
	// current is the variable holding the value flowing through the fused
	// body at this point of descent. It starts as the result variable and
	// is rebound to each consumed lambda's parameter.
	current *scalarir.Variable
	// result is the root value variable the kernel skeleton writes out.
	result *scalarir.Variable
	// acc is the reduction accumulator, set only for Sum/Count chains.
	acc *scalarir.Variable
	// flag is the per-element keep/skip flag, created by the first fused
	// filter that needs one.
	flag *scalarir.Variable

	// continueLabel and breakLabel are the skeleton's loop jump targets.
	continueLabel string
	breakLabel    string

	// vars is the declared-variable list in introduction order. A
	// variable's position here is its generated name index.
	vars []*scalarir.Variable
	// stmts accumulates fused statements in visit (root-to-leaf) order;
	// the leaf reverses them into execution order before rendering.
	stmts []scalarir.Expr

	// kind is the active reduction kind.
	kind ReductionKind
	// resultType is the element type of the chain's result.
	resultType scalarir.ElemType
}

// newContext builds the initial context for a chain with the given
// reduction kind and result type. The result variable is always the
// first declaration; reductions declare their accumulator second.
func newContext(kind ReductionKind, resultType scalarir.ElemType) context {
	final := &scalarir.Variable{Label: resultLabel, Type: resultType}
	ctx := context{
		current:       final,
		result:        final,
		continueLabel: continueLabel,
		breakLabel:    breakLabel,
		vars:          []*scalarir.Variable{final},
		kind:          kind,
		resultType:    resultType,
	}
	if kind == SumKind {
		acc := &scalarir.Variable{Label: accLabel, Type: resultType}
		ctx.acc = acc
		ctx = ctx.withVar(acc)
	}
	return ctx
}

// withVar returns a copy of the context with v appended to the
// declared-variable list.
func (c context) withVar(v *scalarir.Variable) context {
	vars := make([]*scalarir.Variable, len(c.vars), len(c.vars)+1)
	copy(vars, c.vars)
	c.vars = append(vars, v)
	return c
}

// withStmt returns a copy of the context with stmt appended to the
// statement accumulator.
func (c context) withStmt(stmt scalarir.Expr) context {
	stmts := make([]scalarir.Expr, len(c.stmts), len(c.stmts)+1)
	copy(stmts, c.stmts)
	c.stmts = append(stmts, stmt)
	return c
}

// withFlag returns a copy of the context that has a flag variable,
// creating and declaring one if this is the first filter to need it.
func (c context) withFlag() context {
	if c.flag != nil {
		return c
	}
	flag := &scalarir.Variable{Label: flagLabel, Type: scalarir.Int32}
	c.flag = flag
	return c.withVar(flag)
}
