// Package kernelgen compiles query expressions to device kernel source.
//
// The compiler is the fusion pass of quarry: it walks a queryir chain
// root-to-leaf and merges consecutive Transform/Filter stages into one
// kernel body, so a pipeline like
//
//	Filter(p, Transform(f, Source(xs)))
//
// becomes a single kernel instead of one kernel (and one intermediate
// array) per operator.
//
// COMPILATION MODEL:
//
// Descent threads an immutable compilation context. Each consumed stage
// produces a fresh context - statements and declared variables are
// accumulated by copy, the "current value" variable is rebound to the
// stage's lambda parameter, and the reduction kind tracks what shape of
// kernel the chain needs (map, map+filter, reduce). Contexts are never
// shared across branches or calls, so concurrent compilations of
// independent queries need no locking.
//
// Descent terminates at a Source or ZipWith leaf. The leaf renders the
// accumulated declarations and statements through the scalar renderer,
// selects one of five host-supplied kernel skeletons by (leaf kind,
// reduction kind), and assembles the Result: kernel source
// text, the reported reduction kind, and the ordered kernel argument
// list taken from the leaf array metadata.
//
// Count(q) is desugared to Sum(Transform(_ => 1, q)) with the constant
// typed as q's element type; the two compile to byte-identical source and
// differ only in the reported reduction kind.
//
// ERRORS:
//
// Compilation either fully succeeds with exactly one result or fails with
// exactly one error carrying the offending node: UnsupportedTypeError,
// UnsupportedExpressionError, UnsupportedQueryShapeError, or (for
// compiler bookkeeping defects) InternalError. All failures are detected
// before any template is invoked or any device-side resource is touched.
package kernelgen
