package cli

import (
	"github.com/spf13/cobra"

	"github.com/quarrylabs/quarry/internal/queryir"
)

// ValidateOutput is the success payload of the validate command.
type ValidateOutput struct {
	Name   string   `json:"name"`
	Hash   string   `json:"hash"`
	Arrays []string `json:"arrays"`
	Ops    int      `json:"ops"`
}

// NewValidateCommand creates the validate command. It runs the loader
// and the IR validator but never the compiler, so it is the cheap way to
// check a pipeline file in CI.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pipeline.yaml>",
		Short: "Validate a pipeline file without compiling it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
			}

			loaded, err := LoadPipeline(args[0])
			if err != nil {
				return reportError(formatter, err)
			}

			hash, err := queryir.Hash(loaded.Query)
			if err != nil {
				return reportError(formatter, &LoadError{Code: ErrCodeInvalid, Message: err.Error()})
			}

			names := make([]string, len(loaded.Arrays))
			for i, arr := range loaded.Arrays {
				names[i] = arr.Name()
			}
			out := ValidateOutput{
				Name:   loaded.File.Name,
				Hash:   hash,
				Arrays: names,
				Ops:    len(loaded.File.Pipeline.Ops),
			}

			if formatter.Format == "json" {
				return formatter.JSON(out)
			}
			formatter.Text("pipeline %s is valid", out.Name)
			formatter.Text("hash: %s", out.Hash)
			return nil
		},
	}
}
