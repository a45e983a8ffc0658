// Package cltpl is the OpenCL rendering of the five kernel skeletons the
// quarry compiler selects from.
//
// The compiler treats skeleton wording as opaque; only the parameter
// semantics are contractual. Hosts targeting a different kernel dialect
// can supply their own kernelgen.Templates implementation.
package cltpl

import (
	"fmt"

	"github.com/quarrylabs/quarry/internal/kernelgen"
)

// Prelude is prepended by hosts before handing kernel source to the
// device toolchain. The compiler's "byte" type token is not an OpenCL
// builtin, so it is typedef'd here rather than special-cased in every
// skeleton.
const Prelude = "typedef uchar byte;\n"

// Library renders the five skeletons in OpenCL C.
//
// Every method is pure; the zero value is ready to use.
type Library struct{}

// Map renders the element-wise skeleton: one work item per element, one
// output per input.
func (Library) Map(p kernelgen.TemplateParams) string {
	return fmt.Sprintf(`__kernel void quarry_map(__global %s* input, __global %s* output)
{
%s
int i = get_global_id(0);
%s = input[i];
%s
output[i] = %s;
}
`, p.SourceToken, p.ResultToken, p.Decls, p.Current, p.Body, p.Result)
}

// MapFilter renders the element-wise skeleton with a keep/skip flag
// array. A skipped element jumps over the output write but still records
// its flag for downstream compaction.
func (Library) MapFilter(p kernelgen.TemplateParams) string {
	return fmt.Sprintf(`__kernel void quarry_map_filter(__global %s* input, __global %s* output, __global int* flags)
{
%s
int i = get_global_id(0);
%s = input[i];
%s
output[i] = %s;
%s: ;
flags[i] = %s;
}
`, p.SourceToken, p.ResultToken, p.Decls, p.Current, p.Body, p.Result, p.ContinueLabel, p.Flag)
}

// Reduce renders the single-array reduction skeleton: a grid-stride loop
// accumulating into a per-work-item partial. The continue label sits at
// the bottom of the loop body, so a fused filter's skip jumps past the
// combine step. The execution layer reduces the partials.
func (Library) Reduce(p kernelgen.TemplateParams) string {
	return fmt.Sprintf(`__kernel void quarry_reduce(__global %s* input, __global %s* partials, const int n)
{
%s
%s = %s;
for (int i = get_global_id(0); i < n; i += get_global_size(0)) {
%s = input[i];
%s
%s = (%s %s %s);
%s: ;
}
partials[get_global_id(0)] = %s;
}
`, p.SourceToken, p.ResultToken, p.Decls, p.Acc, p.Identity, p.Current, p.Body,
		p.Acc, p.Acc, p.Combine, p.Result, p.ContinueLabel, p.Acc)
}

// ZipMap renders the two-array element-wise skeleton.
func (Library) ZipMap(p kernelgen.TemplateParams) string {
	return fmt.Sprintf(`__kernel void quarry_zip_map(__global %s* left, __global %s* right, __global %s* output)
{
%s
int i = get_global_id(0);
%s = left[i];
%s = right[i];
%s
output[i] = %s;
}
`, p.SourceToken, p.SourceTokenB, p.ResultToken, p.Decls, p.Current, p.CurrentB, p.Body, p.Result)
}

// ZipMapFilter renders the two-array element-wise skeleton with a
// keep/skip flag array.
func (Library) ZipMapFilter(p kernelgen.TemplateParams) string {
	return fmt.Sprintf(`__kernel void quarry_zip_map_filter(__global %s* left, __global %s* right, __global %s* output, __global int* flags)
{
%s
int i = get_global_id(0);
%s = left[i];
%s = right[i];
%s
output[i] = %s;
%s: ;
flags[i] = %s;
}
`, p.SourceToken, p.SourceTokenB, p.ResultToken, p.Decls, p.Current, p.CurrentB,
		p.Body, p.Result, p.ContinueLabel, p.Flag)
}
