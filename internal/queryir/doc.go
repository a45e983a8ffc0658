// Package queryir defines the collection-pipeline query representation
// consumed by the quarry kernel compiler.
//
// A query expression is a chain of pipeline operators over GPU-resident
// arrays:
//
//	Source(xs).Transform(f).Filter(p).Sum()
//
// nests as
//
//	Sum(Filter(p, Transform(f, Source(xs))))
//
// with the last operator at the root and the array access at the leaf.
// The kernel compiler walks the chain root-to-leaf and fuses consecutive
// Transform/Filter stages into a single kernel body.
//
// SEALED INTERFACE:
//
// Expr is a sealed interface using the marker method pattern. Only types
// in this package implement it, which keeps the operator grammar closed
// and lets the compiler type-switch exhaustively.
//
// Variants:
//   - Source    - leaf: one device array
//   - Transform - per-element mapping (one inner query)
//   - Filter    - per-element predicate (one inner query)
//   - Sum       - reduction over the inner chain
//   - Count     - reduction over the inner chain
//   - ZipWith   - leaf: two device arrays combined element-wise
//   - ToArray   - transparent passthrough, valid only at the root
//
// SHAPE INVARIANTS:
//
// Source and ZipWith are leaves. Transform and Filter have exactly one
// inner query, and every chain terminates at a leaf. Validate checks
// these invariants structurally; the compiler enforces them again during
// descent and reports the offending node.
//
// Expressions are immutable and constructed upstream (host query surface
// or the pipeline loader); this package and the compiler only read them.
package queryir
