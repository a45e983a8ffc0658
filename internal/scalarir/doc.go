// Package scalarir defines the element-level intermediate representation
// for quarry kernels.
//
// A scalar expression describes the per-element computation inside a
// generated kernel body: constants, variable references, assignments,
// arithmetic, guards and jumps. It is the IR that operator fusion
// accumulates while walking a query chain, and the input to the kernel
// text renderer.
//
// SEALED INTERFACE:
//
// Expr is a sealed interface using the marker method pattern. Only types
// in this package implement Expr. This enables exhaustive type switches
// in the renderer and keeps the expression grammar closed: a shape the
// renderer does not know is a compile error, never silently emitted text.
//
// Variants:
//   - Constant      - typed literal
//   - *Variable     - reference to a declared kernel variable
//   - Assign        - variable = expression
//   - BinaryOp      - parenthesized infix (+, *, %, ==)
//   - Conditional   - if/else statement
//   - ContinueJump  - jump to the enclosing loop's continue label
//   - Block         - ordered statement sequence
//   - Convert       - C-style cast
//   - Empty         - renders to nothing
//
// IDENTITY:
//
// Variable is always used through its pointer. Two variables are the same
// declaration exactly when their pointers are equal; labels may repeat
// freely. The compiler derives collision-free kernel identifiers from the
// declaration order, not from the label.
//
// Expressions are immutable once constructed. They are built upstream
// (by a host query surface or the pipeline loader) and only read here.
package scalarir
