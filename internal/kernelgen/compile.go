package kernelgen

import (
	"github.com/quarrylabs/quarry/internal/queryir"
	"github.com/quarrylabs/quarry/internal/scalarir"
)

// KernelArg is one entry of the ordered argument list handed to the
// execution layer alongside the kernel source. All fields are taken from
// the leaf array's own metadata, never recomputed.
type KernelArg struct {
	// Handle is the opaque device handle of the array.
	Handle any
	// Elem is the array's element type.
	Elem scalarir.ElemType
	// Len is the logical element count.
	Len int
	// Size is the element byte size.
	Size int
}

// Result is the sole terminal output of a compilation: the kernel source
// text, the reported reduction kind, and the ordered kernel arguments.
// Nothing is mutated after it is returned.
type Result struct {
	Source string
	Kind   ReductionKind
	Args   []KernelArg
}

// Compiler fuses query chains into single-kernel source using a
// host-supplied template library.
//
// The compiler is purely functional: it holds no mutable state beyond
// the template library reference, performs no I/O and never touches the
// device. Concurrent Compile calls on independent queries are safe.
type Compiler struct {
	templates Templates
}

// NewCompiler creates a Compiler rendering through the given template
// library.
func NewCompiler(tpl Templates) *Compiler {
	return &Compiler{templates: tpl}
}

// Compile translates a query expression into exactly one Result or
// exactly one error - never both, never neither. Compiling the same
// query twice yields byte-identical source text and identical argument
// order.
//
// The initial reduction kind is chosen from the outermost operator:
// Transform and ZipWith start a map chain, Filter a filter chain, Sum a
// reduction. Count desugars to Sum over a constant-1 transform and only
// the reported kind differs. ToArray is transparent and re-enters on its
// inner query.
func (c *Compiler) Compile(q queryir.Expr) (*Result, error) {
	if c.templates == nil {
		return nil, &InternalError{Message: "compiler has no template library"}
	}
	if q == nil {
		return nil, &UnsupportedQueryShapeError{Message: "query is nil"}
	}

	switch root := q.(type) {
	case queryir.ToArray:
		if root.Inner == nil {
			return nil, &UnsupportedQueryShapeError{Query: root, Message: "ToArray has no inner query"}
		}
		if _, nested := root.Inner.(queryir.ToArray); nested {
			return nil, &UnsupportedQueryShapeError{Query: root.Inner, Message: "ToArray is only valid at the root"}
		}
		return c.Compile(root.Inner)
	case queryir.Transform:
		return c.descend(root, newContext(Map, root.Type()))
	case queryir.Filter:
		return c.descend(root, newContext(FilterKind, root.Type()))
	case queryir.ZipWith:
		return c.descend(root, newContext(Map, root.Type()))
	case queryir.Sum:
		if root.Inner == nil {
			return nil, &UnsupportedQueryShapeError{Query: root, Message: "Sum has no inner query"}
		}
		return c.descend(root.Inner, newContext(SumKind, root.Type()))
	case queryir.Count:
		return c.compileCount(root)
	default:
		return nil, &UnsupportedQueryShapeError{Query: q, Message: "operator not recognized at the root"}
	}
}

// compileCount desugars Count(q) to Sum(Transform(_ => 1, q)) with the
// constant typed as q's element type, then reports the kind as Count.
// The desugared form and a hand-written equivalent produce identical
// source text; this equivalence is load-bearing and covered by tests.
func (c *Compiler) compileCount(root queryir.Count) (*Result, error) {
	if root.Inner == nil {
		return nil, &UnsupportedQueryShapeError{Query: root, Message: "Count has no inner query"}
	}
	elem := root.Inner.Type()
	param := &scalarir.Variable{Label: "x", Type: elem}
	desugared := queryir.Sum{Inner: queryir.Transform{
		Lambda: queryir.Lambda{Param: param, Body: scalarir.Constant{Value: 1, Type: elem}},
		Inner:  root.Inner,
		Elem:   elem,
	}}

	res, err := c.Compile(desugared)
	if err != nil {
		return nil, err
	}
	res.Kind = CountKind
	return res, nil
}

// descend consumes fusable stages until it reaches a leaf.
func (c *Compiler) descend(q queryir.Expr, ctx context) (*Result, error) {
	switch node := q.(type) {
	case queryir.Transform:
		if node.Lambda.Param == nil || node.Lambda.Body == nil {
			return nil, &UnsupportedQueryShapeError{Query: node, Message: "Transform lambda is incomplete"}
		}
		if node.Inner == nil {
			return nil, &UnsupportedQueryShapeError{Query: node, Message: "Transform has no inner query"}
		}
		next := ctx.
			withStmt(scalarir.Assign{Target: ctx.current, Value: node.Lambda.Body}).
			withVar(node.Lambda.Param)
		next.current = node.Lambda.Param
		return c.descend(node.Inner, next)

	case queryir.Filter:
		return c.descendFilter(node, ctx)

	case queryir.Source:
		return c.emitSource(node, ctx)

	case queryir.ZipWith:
		return c.emitZip(node, ctx)

	default:
		return nil, &UnsupportedQueryShapeError{Query: q, Message: "operator not recognized mid-chain"}
	}
}

// descendFilter fuses a Filter stage. The guard's form depends on whether
// an element-wise stage is already active:
//
//   - Under Map/Filter the kernel writes per-element output, so the guard
//     maintains the keep/skip flag: success clears a possibly-stale flag,
//     failure sets it and skips the element. The chain's kind becomes
//     Filter.
//
//   - Under a reduction nothing has produced element output, so a plain
//     skip suffices and the reduction kind is left intact.
//
// This asymmetry is load-bearing; both arms assign the upstream current
// variable from the predicate parameter so the surviving element's value
// still reaches the result variable.
func (c *Compiler) descendFilter(node queryir.Filter, ctx context) (*Result, error) {
	param, pred := node.Predicate.Param, node.Predicate.Body
	if param == nil || pred == nil {
		return nil, &UnsupportedQueryShapeError{Query: node, Message: "Filter predicate is incomplete"}
	}
	if node.Inner == nil {
		return nil, &UnsupportedQueryShapeError{Query: node, Message: "Filter has no inner query"}
	}

	next := ctx.withVar(param)
	switch ctx.kind {
	case Map, FilterKind:
		next = next.withFlag()
		keep := scalarir.Assign{Target: next.flag, Value: scalarir.Constant{Value: 0, Type: scalarir.Int32}}
		skip := scalarir.Block{Exprs: []scalarir.Expr{
			scalarir.Assign{Target: next.flag, Value: scalarir.Constant{Value: 1, Type: scalarir.Int32}},
			scalarir.ContinueJump{},
		}}
		next = next.
			withStmt(scalarir.Assign{Target: ctx.current, Value: param}).
			withStmt(scalarir.Conditional{Test: pred, Then: keep, Else: skip})
		next.kind = FilterKind
	case SumKind, CountKind:
		next = next.
			withStmt(scalarir.Assign{Target: ctx.current, Value: param}).
			withStmt(scalarir.Conditional{Test: pred, Then: scalarir.Empty{}, Else: scalarir.ContinueJump{}})
	default:
		return nil, &InternalError{Message: "filter reached with unknown reduction kind"}
	}
	next.current = param
	return c.descend(node.Inner, next)
}

// fragments holds everything the leaf renders before template selection.
type fragments struct {
	decls       string
	body        string
	resultToken string
	resultName  string
	accName     string
	flagName    string
}

// renderFragments reverses the accumulated statements into execution
// order and renders declarations and body. Every failure here (including
// unsupported element types) strictly precedes template invocation.
func renderFragments(ctx context) (*fragments, error) {
	r := &renderer{vars: ctx.vars, continueLabel: ctx.continueLabel}

	decls, err := r.renderDecls()
	if err != nil {
		return nil, err
	}

	ordered := make([]scalarir.Expr, len(ctx.stmts))
	for i, stmt := range ctx.stmts {
		ordered[len(ctx.stmts)-1-i] = stmt
	}
	body, err := r.renderStatements(ordered)
	if err != nil {
		return nil, err
	}

	resultToken, err := TypeToken(ctx.resultType)
	if err != nil {
		return nil, err
	}
	resultName, err := varName(ctx.result, ctx.vars)
	if err != nil {
		return nil, err
	}

	frag := &fragments{
		decls:       decls,
		body:        body,
		resultToken: resultToken,
		resultName:  resultName,
	}
	if ctx.acc != nil {
		if frag.accName, err = varName(ctx.acc, ctx.vars); err != nil {
			return nil, err
		}
	}
	if ctx.flag != nil {
		if frag.flagName, err = varName(ctx.flag, ctx.vars); err != nil {
			return nil, err
		}
	}
	return frag, nil
}

// emitSource terminates descent at a single-array leaf. Valid for every
// reduction kind.
func (c *Compiler) emitSource(leaf queryir.Source, ctx context) (*Result, error) {
	if leaf.Arr == nil {
		return nil, &UnsupportedQueryShapeError{Query: leaf, Message: "Source has no array"}
	}

	srcToken, err := TypeToken(leaf.Elem)
	if err != nil {
		return nil, err
	}
	frag, err := renderFragments(ctx)
	if err != nil {
		return nil, err
	}
	currentName, err := varName(ctx.current, ctx.vars)
	if err != nil {
		return nil, err
	}

	params := TemplateParams{
		SourceToken:   srcToken,
		ResultToken:   frag.resultToken,
		Decls:         frag.decls,
		Current:       currentName,
		Body:          frag.body,
		Result:        frag.resultName,
		ContinueLabel: ctx.continueLabel,
	}

	var source string
	switch ctx.kind {
	case Map:
		source = c.templates.Map(params)
	case FilterKind:
		params.Flag = frag.flagName
		source = c.templates.MapFilter(params)
	case SumKind, CountKind:
		identity, err := identityLiteral(ctx.resultType)
		if err != nil {
			return nil, err
		}
		params.Acc = frag.accName
		params.Identity = identity
		params.Combine = "+"
		source = c.templates.Reduce(params)
	default:
		return nil, &InternalError{Message: "source leaf reached with unknown reduction kind"}
	}

	args := []KernelArg{{
		Handle: leaf.Arr.Handle(),
		Elem:   leaf.Arr.Elem(),
		Len:    leaf.Arr.Len(),
		Size:   leaf.Arr.ElemSize(),
	}}
	return &Result{Source: source, Kind: ctx.kind, Args: args}, nil
}

// emitZip terminates descent at a two-array leaf. Valid only for
// element-wise chains: a reduction over a zip leaf is not supported.
// Arguments are emitted left array first, right array second.
func (c *Compiler) emitZip(leaf queryir.ZipWith, ctx context) (*Result, error) {
	if ctx.kind != Map && ctx.kind != FilterKind {
		return nil, &UnsupportedQueryShapeError{Query: leaf, Message: "reduction over a zip leaf is not supported"}
	}
	if leaf.ArrA == nil || leaf.ArrB == nil {
		return nil, &UnsupportedQueryShapeError{Query: leaf, Message: "ZipWith needs two arrays"}
	}
	pa, pb := leaf.Lambda.ParamA, leaf.Lambda.ParamB
	if pa == nil || pb == nil || leaf.Lambda.Body == nil {
		return nil, &UnsupportedQueryShapeError{Query: leaf, Message: "ZipWith lambda is incomplete"}
	}

	tokenA, err := TypeToken(leaf.ArrA.Elem())
	if err != nil {
		return nil, err
	}
	tokenB, err := TypeToken(leaf.ArrB.Elem())
	if err != nil {
		return nil, err
	}

	next := ctx.
		withVar(pa).
		withVar(pb).
		withStmt(scalarir.Assign{Target: ctx.current, Value: leaf.Lambda.Body})

	frag, err := renderFragments(next)
	if err != nil {
		return nil, err
	}
	nameA, err := varName(pa, next.vars)
	if err != nil {
		return nil, err
	}
	nameB, err := varName(pb, next.vars)
	if err != nil {
		return nil, err
	}

	params := TemplateParams{
		SourceToken:   tokenA,
		SourceTokenB:  tokenB,
		ResultToken:   frag.resultToken,
		Decls:         frag.decls,
		Current:       nameA,
		CurrentB:      nameB,
		Body:          frag.body,
		Result:        frag.resultName,
		ContinueLabel: ctx.continueLabel,
	}

	var source string
	if ctx.kind == Map {
		source = c.templates.ZipMap(params)
	} else {
		params.Flag = frag.flagName
		source = c.templates.ZipMapFilter(params)
	}

	args := []KernelArg{
		{Handle: leaf.ArrA.Handle(), Elem: leaf.ArrA.Elem(), Len: leaf.ArrA.Len(), Size: leaf.ArrA.ElemSize()},
		{Handle: leaf.ArrB.Handle(), Elem: leaf.ArrB.Elem(), Len: leaf.ArrB.Len(), Size: leaf.ArrB.ElemSize()},
	}
	return &Result{Source: source, Kind: ctx.kind, Args: args}, nil
}

// identityLiteral renders the additive identity in the result type's
// literal syntax.
func identityLiteral(t scalarir.ElemType) (string, error) {
	r := &renderer{}
	return r.renderExpr(scalarir.Constant{Value: 0, Type: t})
}
