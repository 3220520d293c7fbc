package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/store"
)

// BuildsOptions holds flags for the builds command.
type BuildsOptions struct {
	*RootOptions
	Database string
	Listing  bool // print function listings when showing one build
	Filter   store.BuildFilter
}

// BuildDetail is one build with its functions.
type BuildDetail struct {
	Build     store.Build            `json:"build"`
	Functions []store.FunctionRecord `json:"functions"`
}

// NewBuildsCommand creates the builds command.
func NewBuildsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "builds [build-id]",
		Short: "List recorded builds or show one build",
		Long: `List the builds recorded by compile --db, oldest first.

With a build id, show that build's functions in module order. Without
one, --module, --target and --function narrow the list.

Examples:
  synthgen builds --db builds.db
  synthgen builds --db builds.db --function tone --target amd64/avx2/256
  synthgen builds --db builds.db 0192c1d0-... --listing`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuilds(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", rootOpts.Config.DB, "path to SQLite database (required)")
	cmd.Flags().BoolVar(&opts.Listing, "listing", false, "print each function's IR listing")
	cmd.Flags().StringVar(&opts.Filter.Module, "module", "", "only builds of this module")
	cmd.Flags().StringVar(&opts.Filter.Target, "target", "", "only builds for this target")
	cmd.Flags().StringVar(&opts.Filter.Function, "function", "", "only builds containing this function")

	return cmd
}

func runBuilds(opts *BuildsOptions, args []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Database == "" {
		return outputCompileError(formatter, ErrCodeStore, "--db is required", nil)
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, fmt.Sprintf("opening database: %v", err), nil)
	}
	defer st.Close()
	ctx := cmd.Context()

	if len(args) == 0 {
		builds, err := st.FindBuilds(ctx, opts.Filter)
		if err != nil {
			return outputCompileError(formatter, ErrCodeStore, err.Error(), nil)
		}
		if formatter.Format == "json" {
			return formatter.Success(builds)
		}
		if len(builds) == 0 {
			fmt.Fprintln(formatter.Writer, "No builds recorded.")
			return nil
		}
		for _, b := range builds {
			fmt.Fprintf(formatter.Writer, "%4d  %s  %s  %s\n", b.Seq, b.ID, b.Module, b.Target)
		}
		return nil
	}

	build, err := st.ReadBuild(ctx, args[0])
	if errors.Is(err, sql.ErrNoRows) {
		return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("no build %s", args[0]), nil)
	}
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, err.Error(), nil)
	}
	fns, err := st.ListFunctions(ctx, build.ID)
	if err != nil {
		return outputCompileError(formatter, ErrCodeStore, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(BuildDetail{Build: build, Functions: fns})
	}
	w := formatter.Writer
	fmt.Fprintf(w, "Build %s (seq %d)\n", build.ID, build.Seq)
	fmt.Fprintf(w, "  module:   %s (%s)\n", build.Module, build.ModuleHash)
	fmt.Fprintf(w, "  target:   %s\n", build.Target)
	fmt.Fprintf(w, "  compiler: %s, IR %s\n\n", build.CompilerVersion, build.IRVersion)
	for _, f := range fns {
		fmt.Fprintf(w, "  %s  %s  %d instruction(s)\n", shortID(f.ID), f.Name, f.InstrCount)
		if opts.Listing {
			fmt.Fprintln(w)
			fmt.Fprintln(w, f.Listing)
		}
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
