package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/compiler"
	"github.com/roach88/synthgen/internal/store"
)

// Function verification states.
const (
	VerifyUnchanged = "unchanged"
	VerifyChanged   = "changed"
	VerifyNew       = "new"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Database   string
	Fixed      bool // recompile with a baked transport, as compile --fixed
	Tempo      float64
	SampleRate float64
}

// FunctionVerdict compares one recompiled function with its last record.
type FunctionVerdict struct {
	Name       string `json:"name"`
	Status     string `json:"status"`
	ID         string `json:"id"`
	RecordedID string `json:"recorded_id,omitempty"`
	BuildID    string `json:"build_id,omitempty"`
}

// VerifyResult holds the overall verification result.
type VerifyResult struct {
	Functions []FunctionVerdict `json:"functions"`
	Changed   int               `json:"changed"`
	New       int               `json:"new"`
	Unchanged bool              `json:"unchanged"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify <patch-dir>",
		Short: "Recompile patches and compare with recorded builds",
		Long: `Recompile every patch and compare each function's content hash with
the most recently recorded function of the same name.

Generated code is deterministic: a patch whose source and compiler are
unchanged must hash identically. Functions never recorded are reported
as new and do not fail the check.

Exit codes:
  0 - No recorded function changed
  1 - At least one function differs from its record
  2 - Command error (database not found, etc.)

Examples:
  synthgen verify ./patches --db builds.db
  synthgen verify ./patches --db builds.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Fixed, "fixed", false, "recompile with tempo and sample rate baked in")
	cmd.Flags().Float64Var(&opts.Tempo, "tempo", rootOpts.Config.Tempo, "tempo in BPM for --fixed")
	cmd.Flags().Float64Var(&opts.SampleRate, "sample-rate", rootOpts.Config.SampleRate, "sample rate in Hz for --fixed")

	return cmd
}

func runVerify(opts *VerifyOptions, patchDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Database == "" {
		return outputCompileError(formatter, ErrCodeStore, "--db is required", nil)
	}

	loaded, err := LoadPatches(patchDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	copts := compiler.Options{}
	if opts.Fixed {
		copts.Transport = codegen.FixedTransport{BPM: opts.Tempo, SampleRate: opts.SampleRate}
	}
	m, _, err := compiler.CompileModule(moduleName(patchDir), loaded.Patches, copts)
	if err != nil {
		var verrs compiler.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()

	result := VerifyResult{Functions: make([]FunctionVerdict, 0, len(m.Functions)), Unchanged: true}
	for _, f := range m.Functions {
		rec, err := store.NewFunctionRecord(f)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		verdict := FunctionVerdict{Name: f.Name, ID: rec.ID, Status: VerifyNew}

		recorded, build, err := st.LatestByName(cmd.Context(), f.Name)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			result.New++
		case err != nil:
			return outputCompileError(formatter, ErrCodeStore, err.Error(), nil)
		default:
			verdict.RecordedID = recorded.ID
			verdict.BuildID = build.ID
			verdict.Status = VerifyUnchanged
			if recorded.ID != rec.ID {
				verdict.Status = VerifyChanged
				result.Changed++
				result.Unchanged = false
			}
		}
		result.Functions = append(result.Functions, verdict)
	}

	return outputVerify(formatter, result)
}

func outputVerify(formatter *OutputFormatter, result VerifyResult) error {
	msg := fmt.Sprintf("%d function(s) differ from their recorded builds", result.Changed)
	if formatter.Format == "json" {
		if !result.Unchanged {
			return formatter.Failure(ExitFailure, CLIError{Code: "E_DRIFT", Message: msg}, result, msg)
		}
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, v := range result.Functions {
		status := "✓"
		if v.Status == VerifyChanged {
			status = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s\n", status, v.Name, v.Status)
	}
	fmt.Fprintln(w)
	if !result.Unchanged {
		fmt.Fprintf(w, "✗ %s\n", msg)
		return NewExitError(ExitFailure, msg)
	}
	fmt.Fprintln(w, "✓ All recorded functions unchanged")
	return nil
}
