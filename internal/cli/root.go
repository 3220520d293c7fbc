package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Config holds environment defaults. Command flags override it.
	Config config.Config

	configErr error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the synthgen CLI.
func NewRootCommand() *cobra.Command {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}
	opts := &RootOptions{Config: cfg, configErr: err}

	cmd := &cobra.Command{
		Use:   "synthgen",
		Short: "synthgen - audio patch code generator",
		Long:  "Compile CUE audio patches into two-lane vector IR, evaluate them and record builds.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.configErr != nil {
				return WrapExitError(ExitCommandError, "invalid environment", opts.configErr)
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", cfg.Format, "output format (json|text)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewOpsCommand(opts))
	cmd.AddCommand(NewBuildsCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))

	return cmd
}

// Logger returns the logger commands hand to the compiler and interpreter.
// Output goes to stderr so JSON on stdout stays parseable.
func (o *RootOptions) Logger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelWarn
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
