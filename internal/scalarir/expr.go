package scalarir

// Expr represents a scalar (element-level) expression.
//
// This is a sealed interface - only types in this package implement it.
// The marker method pattern prevents external implementations and enables
// exhaustive type switches in the kernel renderer.
type Expr interface {
	scalarExpr() // Marker method - seals interface to this package
}

// Constant is a typed literal value.
//
// Value holds the literal; the renderer accepts the Go numeric kinds that
// can represent the declared Type (int/int32/int64 for Int32, float32/
// float64 for the float types, byte/int for Byte). A value the declared
// type cannot represent is an UnsupportedExpressionError at render time.
type Constant struct {
	Value any
	Type  ElemType
}

func (Constant) scalarExpr() {}

// Variable is a declared kernel variable.
//
// Identity is pointer identity: every occurrence of the same declaration
// must reference the same *Variable. The generated kernel identifier is
// "<label><index>" where index is the variable's position in the
// compilation context's declared-variable list.
type Variable struct {
	// Label is the identifier stem, e.g. "x" or "final".
	Label string
	// Type is the variable's element type.
	Type ElemType
}

func (*Variable) scalarExpr() {}

// Assign stores the value of an expression into a variable.
// Renders as "<ident> = <rhs>".
type Assign struct {
	Target *Variable
	Value  Expr
}

func (Assign) scalarExpr() {}

// BinOpKind enumerates the supported infix operators.
type BinOpKind uint8

const (
	// Plus is addition.
	Plus BinOpKind = iota
	// Times is multiplication.
	Times
	// Modulo is integer remainder.
	Modulo
	// Equal is equality comparison.
	Equal
)

// Token returns the kernel-language operator token.
// The boolean is false for kinds outside the closed set.
func (k BinOpKind) Token() (string, bool) {
	switch k {
	case Plus:
		return "+", true
	case Times:
		return "*", true
	case Modulo:
		return "%", true
	case Equal:
		return "==", true
	default:
		return "", false
	}
}

// BinaryOp is a parenthesized infix operation.
// Renders as "(<left> <op> <right>)".
type BinaryOp struct {
	Op    BinOpKind
	Left  Expr
	Right Expr
}

func (BinaryOp) scalarExpr() {}

// Conditional is an if/else statement.
// Renders as "if (<test>) { <then> } else { <else> }".
// Either branch may be Empty.
type Conditional struct {
	Test Expr
	Then Expr
	Else Expr
}

func (Conditional) scalarExpr() {}

// ContinueJump jumps to the enclosing loop's continue label.
// The label itself is owned by the compilation context and placed by the
// kernel skeleton.
type ContinueJump struct{}

func (ContinueJump) scalarExpr() {}

// Block is an ordered sequence of statements.
// Renders children joined by ";" and newline; an empty block renders to
// the empty string.
type Block struct {
	Exprs []Expr
}

func (Block) scalarExpr() {}

// Convert is a C-style cast to a target element type.
// Renders as "((<token>)<expr>)".
type Convert struct {
	Value Expr
	Type  ElemType
}

func (Convert) scalarExpr() {}

// Empty renders to nothing. Used as the no-op branch of a guard.
type Empty struct{}

func (Empty) scalarExpr() {}
