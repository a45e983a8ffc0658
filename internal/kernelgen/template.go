package kernelgen

// TemplateParams carries the pre-rendered fragments a kernel skeleton is
// parameterized over. The compiler fills every field relevant to the
// selected skeleton; fields outside a skeleton's contract are empty.
//
// The skeletons' exact wording is outside the compiler's contract - only
// the parameter semantics below must hold.
type TemplateParams struct {
	// SourceToken is the type token of the (left) input array elements.
	SourceToken string
	// SourceTokenB is the right input's type token. Zip skeletons only.
	SourceTokenB string
	// ResultToken is the type token of the result elements.
	ResultToken string

	// Decls is the rendered variable-declaration text.
	Decls string
	// Current is the identifier the skeleton assigns each (left) input
	// element to before running the body.
	Current string
	// CurrentB is the right input's element identifier. Zip skeletons only.
	CurrentB string
	// Body is the rendered fused statement text.
	Body string
	// Result is the identifier holding the per-element result after the
	// body has run.
	Result string

	// Acc is the accumulator identifier. Reduce skeleton only.
	Acc string
	// Identity is the reduction's identity literal. Reduce skeleton only.
	Identity string
	// Combine is the reduction's combining operator token. Reduce
	// skeleton only.
	Combine string

	// Flag is the per-element keep/skip flag identifier. Filter
	// skeletons only.
	Flag string

	// ContinueLabel is the label a fused continue jumps to; the skeleton
	// must place it where skipping the rest of the element's work is
	// correct.
	ContinueLabel string
}

// Templates is the five-skeleton contract a host supplies to the
// compiler. Each function is pure: same params, same text.
//
// Selection is keyed by (leaf kind, reduction kind):
//
//	Source  x Map        -> Map
//	Source  x Filter     -> MapFilter
//	Source  x Sum/Count  -> Reduce
//	ZipWith x Map        -> ZipMap
//	ZipWith x Filter     -> ZipMapFilter
//
// The rendered text is opaque to the compiler; it is handed to the
// device toolchain untouched.
type Templates interface {
	Map(p TemplateParams) string
	MapFilter(p TemplateParams) string
	Reduce(p TemplateParams) string
	ZipMap(p TemplateParams) string
	ZipMapFilter(p TemplateParams) string
}
