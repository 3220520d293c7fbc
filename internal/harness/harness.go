package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/compiler"
	"github.com/roach88/synthgen/internal/engine"
	"github.com/roach88/synthgen/internal/ir"
)

// Harness is the test execution engine.
type Harness struct {
	logger   *slog.Logger
	maxSteps int
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger used for the harness and the interpreter.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithMaxSteps sets the per-call interpreter step quota.
func WithMaxSteps(n int) Option {
	return func(h *Harness) {
		h.maxSteps = n
	}
}

// New creates a harness. Logs are discarded unless WithLogger is given.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:   slog.New(slog.DiscardHandler),
		maxSteps: engine.DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	return New().Run(ctx, scenario)
}

// Run executes a test scenario and returns the result.
//
// Execution flow:
//  1. Load and compile every patch in the specs directory
//  2. Build argument cells for each case in param order
//  3. Call the patch function in the interpreter
//  4. Compare lanes, form or error code with the expectation
//
// The returned error covers problems that stop the whole scenario (patches
// that fail to load or compile, an unknown patch). Case failures are
// reported in the result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	patches, err := compiler.LoadDir(scenario.Specs)
	if err != nil {
		return nil, fmt.Errorf("failed to load patches: %w", err)
	}

	var patch *compiler.Patch
	for _, p := range patches {
		if p.Name == scenario.Patch {
			patch = p
		}
	}
	if patch == nil {
		return nil, fmt.Errorf("patch %q not found in %s", scenario.Patch, scenario.Specs)
	}

	opts := compiler.Options{}
	transport := engine.DefaultTransport
	if scenario.Transport.Tempo > 0 {
		transport.Tempo = scenario.Transport.Tempo
	}
	if scenario.Transport.SampleRate > 0 {
		transport.SampleRate = scenario.Transport.SampleRate
	}
	if scenario.Transport.Fixed {
		opts.Transport = codegen.FixedTransport{BPM: transport.Tempo, SampleRate: transport.SampleRate}
	}

	m, warnings, err := compiler.CompileModule(scenario.Name, patches, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to compile patches: %w", err)
	}
	for _, w := range warnings {
		h.logger.Warn("unreachable node", "patch", w.Patch, "node", w.Node)
	}
	fn, _ := m.Function(patch.Name)

	interp := engine.New(m,
		engine.WithLogger(h.logger),
		engine.WithMaxSteps(h.maxSteps),
	)

	result := NewResult(patch.Name)
	result.Listing = ir.PrintFunction(fn)
	for _, c := range scenario.Cases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tr := transport
		if c.Tempo > 0 {
			tr.Tempo = c.Tempo
		}
		cr := h.runCase(ctx, interp, patch, c, tr)
		result.AddCase(cr)

		h.logger.Debug("case completed",
			"scenario", scenario.Name,
			"case", c.Name,
			"pass", cr.Pass,
			"steps", cr.Steps,
		)
	}
	return result, nil
}

func (h *Harness) runCase(ctx context.Context, interp *engine.Interpreter, p *compiler.Patch, c Case, tr engine.Transport) CaseResult {
	cr := CaseResult{Name: c.Name}

	args, err := buildArgs(p, c.Args)
	if err != nil {
		cr.Errors = []string{err.Error()}
		return cr
	}
	result := engine.ResultCell()
	args = append(args, result)

	stats, callErr := interp.Call(ctx, p.Name, tr, args...)
	var got engine.Num
	if callErr == nil {
		cr.Steps = stats.Steps
		got, callErr = engine.ReadNum(result)
	}
	if callErr == nil {
		cr.Lanes = got.Vec
		cr.Form = got.Form.String()
	} else {
		cr.ErrorCode = string(engine.ErrorCode(callErr))
	}

	for _, e := range checkCase(c.Expect, got, callErr) {
		cr.Errors = append(cr.Errors, e.Error())
	}
	cr.Pass = len(cr.Errors) == 0
	return cr
}

// buildArgs turns case args into cells in the patch's param order.
func buildArgs(p *compiler.Patch, args map[string]Arg) ([]*engine.Cell, error) {
	for name := range args {
		if _, ok := p.Param(name); !ok {
			return nil, fmt.Errorf("patch %s has no param %q", p.Name, name)
		}
	}

	cells := make([]*engine.Cell, 0, len(p.Params)+1)
	for _, prm := range p.Params {
		arg, ok := args[prm.Name]
		if !ok {
			return nil, fmt.Errorf("missing arg %q", prm.Name)
		}
		if arg.IsArray() != (prm.Kind == codegen.ArgArray) {
			return nil, fmt.Errorf("arg %q: param is %s", prm.Name, prm.Kind)
		}

		if !arg.IsArray() {
			n, err := numOf(arg)
			if err != nil {
				return nil, fmt.Errorf("arg %q: %w", prm.Name, err)
			}
			cells = append(cells, engine.NumCell(n))
			continue
		}

		slots := make([]engine.Slot, len(arg.Slots))
		for i, s := range arg.Slots {
			if s == nil {
				continue
			}
			n, err := numOf(*s)
			if err != nil {
				return nil, fmt.Errorf("arg %q slot %d: %w", prm.Name, i, err)
			}
			slots[i] = engine.Slot{Num: n, Active: !s.Inactive}
		}
		cell, err := engine.ArrayCell(slots...)
		if err != nil {
			return nil, fmt.Errorf("arg %q: %w", prm.Name, err)
		}
		cells = append(cells, cell)
	}
	return cells, nil
}

func numOf(a Arg) (engine.Num, error) {
	form, err := ir.ParseForm(a.Form)
	if err != nil {
		return engine.Num{}, err
	}
	if len(a.Lanes) == 0 {
		return engine.Num{Form: form}, nil
	}
	return engine.Num{Vec: lanes(a.Lanes), Form: form}, nil
}
