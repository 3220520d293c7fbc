package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/compiler"
	"github.com/roach88/synthgen/internal/ir"
	"github.com/roach88/synthgen/internal/store"
	"github.com/roach88/synthgen/internal/target"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output     string // listing file path
	Database   string // store path; empty skips recording
	Module     string // module name; defaults to the directory name
	Fixed      bool   // bake the transport into the code
	Tempo      float64
	SampleRate float64
}

// CompilationResult summarises one compiled module.
type CompilationResult struct {
	Module     string             `json:"module"`
	ModuleHash string             `json:"module_hash"`
	Target     string             `json:"target"`
	Functions  []FunctionSummary  `json:"functions"`
	Warnings   []compiler.Warning `json:"warnings,omitempty"`
	Build      *store.Build       `json:"build,omitempty"`
}

// FunctionSummary describes one generated function.
type FunctionSummary struct {
	Name       string   `json:"name"`
	ID         string   `json:"id"`
	Params     []string `json:"params"`
	InstrCount int      `json:"instr_count"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <patch-dir>",
		Short: "Compile CUE patches to vector IR",
		Long: `Compile every patch in a CUE package into one IR module.

Each patch becomes a function taking one pointer per param plus a trailing
result pointer. With --db the module is recorded as a build, stamped with
the host target; unchanged functions are shared between builds.

Examples:
  synthgen compile ./patches
  synthgen compile ./patches -o voices.ir
  synthgen compile ./patches --db builds.db
  synthgen compile ./patches --fixed --tempo 90`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the module listing to a file")
	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "record the build in this SQLite database")
	cmd.Flags().StringVar(&opts.Module, "module", "", "module name (default: directory name)")
	cmd.Flags().BoolVar(&opts.Fixed, "fixed", false, "bake tempo and sample rate into the code")
	cmd.Flags().Float64Var(&opts.Tempo, "tempo", rootOpts.Config.Tempo, "tempo in BPM for --fixed")
	cmd.Flags().Float64Var(&opts.SampleRate, "sample-rate", rootOpts.Config.SampleRate, "sample rate in Hz for --fixed")

	return cmd
}

func runCompile(opts *CompileOptions, patchDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadPatches(patchDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Found %d CUE file(s) in %s", loaded.FileCount, patchDir)

	name := opts.Module
	if name == "" {
		name = moduleName(patchDir)
	}

	copts := compiler.Options{}
	if opts.Fixed {
		if !(opts.Tempo > 0) || !(opts.SampleRate > 0) {
			return outputCompileError(formatter, ErrCodeGeneric, "--tempo and --sample-rate must be positive", nil)
		}
		copts.Transport = codegen.FixedTransport{BPM: opts.Tempo, SampleRate: opts.SampleRate}
	}
	for _, p := range loaded.Patches {
		formatter.VerboseLog("Compiling patch: %s", p.Name)
	}

	m, warnings, err := compiler.CompileModule(name, loaded.Patches, copts)
	if err != nil {
		var verrs compiler.ValidationErrors
		if errors.As(err, &verrs) {
			return outputValidationErrors(formatter, verrs)
		}
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	result, err := summarise(m, warnings)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, []byte(ir.Print(m)), 0o644); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
		}
		defer st.Close()
		build, err := st.WriteBuild(cmd.Context(), m, result.Target)
		if err != nil {
			return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("recording build: %v", err), nil)
		}
		result.Build = &build
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarise computes the ids and counts reported for a module.
func summarise(m *ir.Module, warnings []compiler.Warning) (*CompilationResult, error) {
	hash, err := ir.ModuleID(m)
	if err != nil {
		return nil, err
	}
	result := &CompilationResult{
		Module:     m.Name,
		ModuleHash: hash,
		Target:     target.Host().String(),
		Functions:  make([]FunctionSummary, 0, len(m.Functions)),
		Warnings:   warnings,
	}
	for _, f := range m.Functions {
		rec, err := store.NewFunctionRecord(f)
		if err != nil {
			return nil, err
		}
		result.Functions = append(result.Functions, FunctionSummary{
			Name:       rec.Name,
			ID:         rec.ID,
			Params:     rec.Params,
			InstrCount: rec.InstrCount,
		})
	}
	return result, nil
}

func moduleName(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d patch(es) into module %s\n\n", len(result.Functions), result.Module)
	for _, f := range result.Functions {
		fmt.Fprintf(w, "  %s(%d param(s)): %d instruction(s)\n", f.Name, len(f.Params)-1, f.InstrCount)
	}
	fmt.Fprintln(w)

	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "warning: patch %s: %s\n", warn.Patch, warn.Message)
	}
	if outputFile != "" {
		fmt.Fprintf(w, "Wrote listing to %s\n", outputFile)
	}
	if result.Build != nil {
		fmt.Fprintf(w, "Recorded build %s (seq %d) for %s\n", result.Build.ID, result.Build.Seq, result.Build.Target)
	}
	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details any) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputLoadError reports a LoadPatches failure with its position.
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	if formatter.Format != "json" && loadErr.Pos.IsValid() {
		fmt.Fprintf(formatter.Writer, "%s:%d:%d\n", loadErr.Pos.Filename(), loadErr.Pos.Line(), loadErr.Pos.Column())
	}
	return outputCompileError(formatter, loadErr.Code, loadErr.Message, nil)
}
