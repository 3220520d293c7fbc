package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Patches int                        `json:"patches"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <patch-dir>",
		Short: "Validate patches without generating code",
		Long: `Validate CUE patches without lowering them.

Checks names, operations, operand kinds, arity, source forms, the result
node and dependency cycles, reporting every problem found. Faster than
compile for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, patchDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadPatches(patchDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, patchDir)

	errs := ValidatePatches(loaded.Patches, formatter)
	if len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Patches: len(loaded.Patches)})
	}
	fmt.Fprintf(formatter.Writer, "✓ All %d patch(es) valid\n", len(loaded.Patches))
	return nil
}

// ValidatePatches validates every patch against the default registry.
// Fields are prefixed with the patch name.
func ValidatePatches(patches []*compiler.Patch, formatter *OutputFormatter) []compiler.ValidationError {
	reg := codegen.Default()
	var all []compiler.ValidationError
	for _, p := range patches {
		formatter.VerboseLog("Validating patch: %s", p.Name)
		for _, e := range compiler.Validate(p, reg) {
			e.Field = p.Name + "." + e.Field
			all = append(all, e)
		}
	}
	return all
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	summary := fmt.Sprintf("validation failed with %d error(s)", len(errs))
	if formatter.Format == "json" {
		// Validation failures = exit code 1 (test/validation failure)
		return formatter.Failure(ExitFailure,
			CLIError{Code: errs[0].Code, Message: errs[0].Message},
			ValidationResult{Valid: false, Errors: errs},
			summary)
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
	}
	return NewExitError(ExitFailure, summary)
}
