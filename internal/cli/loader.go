package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/quarrylabs/quarry/internal/queryir"
	"github.com/quarrylabs/quarry/internal/scalarir"
)

//go:embed schema.cue
var pipelineSchema string

// PipelineFile mirrors the YAML pipeline description.
type PipelineFile struct {
	Name     string      `yaml:"name"`
	Arrays   []ArrayDecl `yaml:"arrays"`
	Pipeline ChainDecl   `yaml:"pipeline"`
}

// ArrayDecl declares one device array by name, element type and length.
type ArrayDecl struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length int    `yaml:"length"`
}

// ChainDecl declares the operator chain: exactly one of From or Zip as
// the leaf, a list of fused ops, and a terminal operator.
type ChainDecl struct {
	From     string   `yaml:"from,omitempty"`
	Zip      *ZipDecl `yaml:"zip,omitempty"`
	Ops      []OpDecl `yaml:"ops,omitempty"`
	Terminal string   `yaml:"terminal,omitempty"`
}

// ZipDecl declares a two-array leaf.
type ZipDecl struct {
	Left  string   `yaml:"left"`
	Right string   `yaml:"right"`
	As    []string `yaml:"as"`
	Expr  string   `yaml:"expr"`
}

// OpDecl declares one fused stage: exactly one of Map or Filter, with As
// naming the stage's lambda parameter.
type OpDecl struct {
	Map    string `yaml:"map,omitempty"`
	Filter string `yaml:"filter,omitempty"`
	As     string `yaml:"as"`
}

// LoadError represents an error that occurred during pipeline loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadResult contains the loaded pipeline and the IR built from it.
type LoadResult struct {
	File  PipelineFile
	Query queryir.Expr
	// Arrays holds the declared arrays in declaration order.
	Arrays []*HostArray
	// LeafArrays holds the arrays read by the kernel, in kernel
	// argument order (one for a source leaf, left then right for zip).
	LeafArrays []*HostArray
}

// LoadPipeline reads, schema-checks and lowers a pipeline file.
//
// Loading is three stages, each with its own error code:
//  1. read + YAML decode (PIPELINE_NOT_FOUND / PIPELINE_PARSE)
//  2. CUE schema unification (PIPELINE_SCHEMA)
//  3. semantic lowering to queryir (PIPELINE_INVALID / EXPR_PARSE)
func LoadPipeline(path string) (*LoadResult, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("cannot read pipeline file: %v", err)}
	}

	// Decode twice: once untyped for schema validation, once typed for
	// lowering. yaml.v3 guarantees map[string]any for string-keyed maps,
	// which is what cue's Encode expects.
	var untyped map[string]any
	if err := yaml.Unmarshal(raw, &untyped); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}
	if err := validateSchema(untyped); err != nil {
		return nil, &LoadError{Code: ErrCodeSchema, Message: err.Error()}
	}

	var file PipelineFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("invalid YAML: %v", err)}
	}

	return lowerPipeline(file)
}

// validateSchema unifies the decoded document with the embedded CUE
// schema. Unification failures carry the offending field path.
func validateSchema(doc map[string]any) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(pipelineSchema)
	if schema.Err() != nil {
		return fmt.Errorf("internal schema error: %w", schema.Err())
	}
	def := schema.LookupPath(cue.ParsePath("#Pipeline"))
	if def.Err() != nil {
		return fmt.Errorf("internal schema error: %w", def.Err())
	}

	value := ctx.Encode(doc)
	if value.Err() != nil {
		return fmt.Errorf("cannot encode document: %w", value.Err())
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return nil
}

// lowerPipeline builds query IR from a schema-valid pipeline file.
func lowerPipeline(file PipelineFile) (*LoadResult, error) {
	result := &LoadResult{File: file}

	arrays := make(map[string]*HostArray, len(file.Arrays))
	for _, decl := range file.Arrays {
		elem, ok := scalarir.ParseElemType(decl.Type)
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("array %q has unknown type %q", decl.Name, decl.Type)}
		}
		if _, dup := arrays[decl.Name]; dup {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("array %q declared twice", decl.Name)}
		}
		arr := NewHostArray(decl.Name, elem, decl.Length)
		arrays[decl.Name] = arr
		result.Arrays = append(result.Arrays, arr)
	}

	q, err := lowerLeaf(file.Pipeline, arrays, result)
	if err != nil {
		return nil, err
	}

	for i, op := range file.Pipeline.Ops {
		q, err = lowerOp(op, i, q)
		if err != nil {
			return nil, err
		}
	}

	switch file.Pipeline.Terminal {
	case "sum":
		q = queryir.Sum{Inner: q}
	case "count":
		q = queryir.Count{Inner: q}
	case "toarray", "":
		if _, bare := q.(queryir.Source); bare {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: "a toarray pipeline over a single array needs at least one op"}
		}
		q = queryir.ToArray{Inner: q}
	default:
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("unknown terminal %q", file.Pipeline.Terminal)}
	}

	if err := queryir.Validate(q); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: err.Error()}
	}
	result.Query = q
	return result, nil
}

func lowerLeaf(chain ChainDecl, arrays map[string]*HostArray, result *LoadResult) (queryir.Expr, error) {
	switch {
	case chain.From != "" && chain.Zip != nil:
		return nil, &LoadError{Code: ErrCodeInvalid, Message: "pipeline has both from and zip; pick one leaf"}

	case chain.From != "":
		arr, ok := arrays[chain.From]
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("pipeline reads undeclared array %q", chain.From)}
		}
		result.LeafArrays = []*HostArray{arr}
		return queryir.NewSource(arr), nil

	case chain.Zip != nil:
		z := chain.Zip
		left, ok := arrays[z.Left]
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("zip reads undeclared array %q", z.Left)}
		}
		right, ok := arrays[z.Right]
		if !ok {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("zip reads undeclared array %q", z.Right)}
		}
		if len(z.As) != 2 {
			return nil, &LoadError{Code: ErrCodeInvalid, Message: "zip needs exactly two parameter names"}
		}
		pa := &scalarir.Variable{Label: z.As[0], Type: left.Elem()}
		pb := &scalarir.Variable{Label: z.As[1], Type: right.Elem()}
		body, err := ParseLambdaBody(z.Expr, pa, pb)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeExpr, Message: err.Error()}
		}
		result.LeafArrays = []*HostArray{left, right}
		// The combined element type follows the left array.
		return queryir.ZipWith{
			ArrA:   left,
			ArrB:   right,
			Lambda: queryir.Lambda2{ParamA: pa, ParamB: pb, Body: body},
			Elem:   left.Elem(),
		}, nil

	default:
		return nil, &LoadError{Code: ErrCodeInvalid, Message: "pipeline needs a from or zip leaf"}
	}
}

func lowerOp(op OpDecl, index int, inner queryir.Expr) (queryir.Expr, error) {
	if (op.Map == "") == (op.Filter == "") {
		return nil, &LoadError{Code: ErrCodeInvalid, Message: fmt.Sprintf("op %d needs exactly one of map or filter", index)}
	}

	param := &scalarir.Variable{Label: op.As, Type: inner.Type()}
	if op.Map != "" {
		body, err := ParseLambdaBody(op.Map, param)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeExpr, Message: err.Error()}
		}
		// Arithmetic over one element type stays in that type; casts in
		// the body do not change the declared chain type.
		return queryir.Transform{
			Lambda: queryir.Lambda{Param: param, Body: body},
			Inner:  inner,
			Elem:   inner.Type(),
		}, nil
	}

	body, err := ParseLambdaBody(op.Filter, param)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeExpr, Message: err.Error()}
	}
	return queryir.Filter{
		Predicate: queryir.Lambda{Param: param, Body: body},
		Inner:     inner,
	}, nil
}
