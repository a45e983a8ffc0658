package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/cache"
	"github.com/quarrylabs/quarry/internal/cltpl"
	"github.com/quarrylabs/quarry/internal/kernelgen"
	"github.com/quarrylabs/quarry/internal/queryir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	Output    string
	CachePath string
	Watch     bool
}

// ArgInfo is the JSON/text projection of one kernel argument.
type ArgInfo struct {
	Array  string `json:"array"`
	Handle any    `json:"handle"`
	Elem   string `json:"elem"`
	Len    int    `json:"len"`
	Size   int    `json:"size"`
}

// CompileOutput is the success payload of the compile command.
type CompileOutput struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Hash   string    `json:"hash"`
	Cached bool      `json:"cached"`
	Source string    `json:"source"`
	Args   []ArgInfo `json:"args"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <pipeline.yaml>",
		Short: "Compile a pipeline file into kernel source",
		Long: `Load a declarative pipeline file, fuse its operator chain into a
single kernel, and print the source together with the ordered kernel
argument plan. With --cache, previously compiled pipelines are served
from a local SQLite cache keyed by the pipeline's content hash.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}
			if opts.Watch {
				return watchCompile(cmd, args[0], opts, formatter)
			}
			return runCompile(args[0], opts, formatter)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write kernel source (with prelude) to a file")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "path to a kernel cache database")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "recompile whenever the pipeline file changes")

	return cmd
}

func runCompile(path string, opts *CompileOptions, formatter *OutputFormatter) error {
	out, err := compilePipeline(path, opts, formatter)
	if err != nil {
		return reportError(formatter, err)
	}

	if opts.Output != "" {
		src := cltpl.Prelude + out.Source
		if err := os.WriteFile(opts.Output, []byte(src), 0o644); err != nil {
			werr := &LoadError{Code: ErrCodeWriteFailed, Message: fmt.Sprintf("cannot write %s: %v", opts.Output, err)}
			return reportError(formatter, werr)
		}
		formatter.VerboseLog("wrote kernel source to %s", opts.Output)
	}

	if formatter.Format == "json" {
		return formatter.JSON(out)
	}

	formatter.Text("pipeline: %s", out.Name)
	formatter.Text("kind:     %s", out.Kind)
	formatter.Text("hash:     %s", out.Hash)
	if out.Cached {
		formatter.Text("cache:    hit")
	}
	formatter.Text("args:")
	for i, arg := range out.Args {
		formatter.Text("  [%d] %s %s len=%d elemsize=%d handle=%v",
			i, arg.Array, arg.Elem, arg.Len, arg.Size, arg.Handle)
	}
	formatter.Text("")
	formatter.Text("%s", out.Source)
	return nil
}

// compilePipeline runs load, hash, cache lookup and (on a miss) fusion.
func compilePipeline(path string, opts *CompileOptions, formatter *OutputFormatter) (*CompileOutput, error) {
	loaded, err := LoadPipeline(path)
	if err != nil {
		return nil, err
	}

	hash, err := queryir.Hash(loaded.Query)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCompile, Message: err.Error()}
	}

	var db *cache.Cache
	if opts.CachePath != "" {
		db, err = cache.Open(opts.CachePath)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		defer db.Close()

		entry, err := db.Get(context.Background(), hash)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		if entry != nil {
			// Source depends only on structure and types, so a hit is
			// safe; the argument plan is rebuilt from this run's arrays.
			formatter.VerboseLog("cache hit for %s", hash)
			return &CompileOutput{
				Name:   loaded.File.Name,
				Kind:   entry.Kind,
				Hash:   hash,
				Cached: true,
				Source: entry.Source,
				Args:   argInfos(loaded.LeafArrays),
			}, nil
		}
	}

	compiler := kernelgen.NewCompiler(cltpl.Library{})
	result, err := compiler.Compile(loaded.Query)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeCompile, Message: err.Error()}
	}

	if db != nil {
		put := cache.Entry{Hash: hash, Kind: result.Kind.String(), Source: result.Source}
		if err := db.Put(context.Background(), put); err != nil {
			return nil, &LoadError{Code: ErrCodeCache, Message: err.Error()}
		}
		formatter.VerboseLog("cached kernel %s", hash)
	}

	args := make([]ArgInfo, len(result.Args))
	for i, arg := range result.Args {
		args[i] = ArgInfo{
			Array:  loaded.LeafArrays[i].Name(),
			Handle: arg.Handle,
			Elem:   arg.Elem.String(),
			Len:    arg.Len,
			Size:   arg.Size,
		}
	}

	return &CompileOutput{
		Name:   loaded.File.Name,
		Kind:   result.Kind.String(),
		Hash:   hash,
		Source: result.Source,
		Args:   args,
	}, nil
}

// argInfos rebuilds the argument plan from leaf arrays, used on cache
// hits where no compiler Result exists.
func argInfos(leaves []*HostArray) []ArgInfo {
	infos := make([]ArgInfo, len(leaves))
	for i, arr := range leaves {
		infos[i] = ArgInfo{
			Array:  arr.Name(),
			Handle: arr.Handle(),
			Elem:   arr.Elem().String(),
			Len:    arr.Len(),
			Size:   arr.ElemSize(),
		}
	}
	return infos
}

// reportError prints the error through the formatter and wraps it in an
// ExitError so main can pick the right exit code.
func reportError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	exit := ExitFailure

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
		if code == ErrCodeNotFound || code == ErrCodeWriteFailed || code == ErrCodeWatch {
			exit = ExitCommandError
		}
	}
	var exprErr *ExprError
	if errors.As(err, &exprErr) {
		code = ErrCodeExpr
	}

	if ferr := formatter.Error(code, err.Error(), nil); ferr != nil {
		return ferr
	}
	return &ExitError{Code: exit, Message: err.Error(), Err: err}
}
