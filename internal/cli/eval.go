package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/compiler"
	"github.com/roach88/synthgen/internal/engine"
	"github.com/roach88/synthgen/internal/ir"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Args       []string // name=value pairs
	Tempo      float64
	SampleRate float64
	MaxSteps   int
	Trace      bool
}

// EvalResult is the outcome of one call.
type EvalResult struct {
	Patch  string     `json:"patch"`
	Lanes  [2]float64 `json:"lanes"`
	Form   string     `json:"form"`
	Steps  int        `json:"steps"`
	Blocks []string   `json:"blocks,omitempty"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <patch-dir> <patch>",
		Short: "Compile a patch and run it in the reference interpreter",
		Long: `Compile the patches in a directory and call one of them.

Each param takes one --arg. A num is written as one or two lane values
with an optional form; an array is a bracketed list of slots separated by
"|", where "_" is an inactive slot and "_:form" keeps a form tag:

  --arg pitch=69:note
  --arg position=-0.5,0.5
  --arg voices=[0.5,0.25:amplitude|_|0.25:amplitude]

Examples:
  synthgen eval ./patches tone --arg pitch=69:note --arg position=0
  synthgen eval ./patches pulse --arg n=1:beats --tempo 90 --trace`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Args, "arg", nil, "param value as name=value (repeatable)")
	cmd.Flags().Float64Var(&opts.Tempo, "tempo", rootOpts.Config.Tempo, "tempo in BPM")
	cmd.Flags().Float64Var(&opts.SampleRate, "sample-rate", rootOpts.Config.SampleRate, "sample rate in Hz")
	cmd.Flags().IntVar(&opts.MaxSteps, "max-steps", rootOpts.Config.MaxSteps, "interpreter step quota")
	cmd.Flags().BoolVar(&opts.Trace, "trace", false, "report the blocks entered")

	return cmd
}

func runEval(opts *EvalOptions, patchDir, patchName string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := opts.Logger(cmd)

	loaded, err := LoadPatches(patchDir)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	var patch *compiler.Patch
	for _, p := range loaded.Patches {
		if p.Name == patchName {
			patch = p
		}
	}
	if patch == nil {
		return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("no patch %q in %s", patchName, patchDir), nil)
	}

	m, _, err := compiler.CompileModule(moduleName(patchDir), loaded.Patches, compiler.Options{})
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	cells, err := buildEvalArgs(patch, opts.Args)
	if err != nil {
		return outputCompileError(formatter, ErrCodeBadArg, err.Error(), nil)
	}
	result := engine.ResultCell()
	cells = append(cells, result)

	interpOpts := []engine.Option{engine.WithLogger(logger), engine.WithMaxSteps(opts.MaxSteps)}
	if opts.Trace {
		interpOpts = append(interpOpts, engine.WithTrace())
	}
	tr := engine.Transport{Tempo: opts.Tempo, SampleRate: opts.SampleRate}
	stats, err := engine.New(m, interpOpts...).Call(cmd.Context(), patch.Name, tr, cells...)
	if err != nil {
		return outputEvalFault(formatter, err)
	}
	got, err := engine.ReadNum(result)
	if err != nil {
		return outputEvalFault(formatter, err)
	}

	out := EvalResult{
		Patch:  patch.Name,
		Lanes:  got.Vec,
		Form:   got.Form.String(),
		Steps:  stats.Steps,
		Blocks: stats.Blocks,
	}
	if formatter.Format == "json" {
		return formatter.Success(out)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s = %s\n", out.Patch, got)
	formatter.VerboseLog("%d instruction(s) executed", out.Steps)
	if opts.Trace {
		fmt.Fprintf(w, "blocks: %s\n", strings.Join(out.Blocks, " → "))
	}
	return nil
}

func outputEvalFault(formatter *OutputFormatter, err error) error {
	details := map[string]string{}
	if code := engine.ErrorCode(err); code != "" {
		details["runtime_code"] = string(code)
	}
	_ = formatter.Error(ErrCodeRuntime, err.Error(), details)
	return WrapExitError(ExitFailure, "evaluation failed", err)
}

// buildEvalArgs parses --arg values into cells in param order.
func buildEvalArgs(p *compiler.Patch, raw []string) ([]*engine.Cell, error) {
	values := make(map[string]string, len(raw))
	for _, a := range raw {
		name, value, ok := strings.Cut(a, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("--arg %q: want name=value", a)
		}
		if _, ok := p.Param(name); !ok {
			return nil, fmt.Errorf("--arg %q: patch %s has no param %q", a, p.Name, name)
		}
		if _, dup := values[name]; dup {
			return nil, fmt.Errorf("--arg %q: %s given twice", a, name)
		}
		values[name] = value
	}

	cells := make([]*engine.Cell, 0, len(p.Params)+1)
	for _, prm := range p.Params {
		value, ok := values[prm.Name]
		if !ok {
			return nil, fmt.Errorf("missing --arg for param %q", prm.Name)
		}
		var (
			cell *engine.Cell
			err  error
		)
		if prm.Kind == codegen.ArgArray {
			cell, err = parseArrayArg(value)
		} else {
			var n engine.Num
			n, err = parseNumArg(value)
			cell = engine.NumCell(n)
		}
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", prm.Name, err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

// parseNumArg parses "l0[,l1][:form]".
func parseNumArg(s string) (engine.Num, error) {
	lanesText, formText, _ := strings.Cut(s, ":")
	form, err := ir.ParseForm(formText)
	if err != nil {
		return engine.Num{}, err
	}
	parts := strings.Split(lanesText, ",")
	if len(parts) > 2 {
		return engine.Num{}, fmt.Errorf("%q: at most two lanes", s)
	}
	var vec [2]float64
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return engine.Num{}, fmt.Errorf("%q: %w", s, err)
		}
		vec[i] = v
	}
	if len(parts) == 1 {
		vec[1] = vec[0]
	}
	return engine.Num{Vec: vec, Form: form}, nil
}

// parseArrayArg parses "[slot|slot|...]" where a slot is a num, "_" or
// "_:form".
func parseArrayArg(s string) (*engine.Cell, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("%q: an array is written [slot|slot|...]", s)
	}
	body := s[1 : len(s)-1]
	var slots []engine.Slot
	if body != "" {
		for _, text := range strings.Split(body, "|") {
			if rest, ok := strings.CutPrefix(text, "_"); ok {
				form, err := ir.ParseForm(strings.TrimPrefix(rest, ":"))
				if err != nil {
					return nil, err
				}
				slots = append(slots, engine.Slot{Num: engine.Num{Form: form}})
				continue
			}
			n, err := parseNumArg(text)
			if err != nil {
				return nil, err
			}
			slots = append(slots, engine.Slot{Num: n, Active: true})
		}
	}
	return engine.ArrayCell(slots...)
}
