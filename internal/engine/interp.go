package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/synthgen/internal/ir"
)

// DefaultMaxSteps is the default instruction budget per call.
// A mixdown over a full array executes a few hundred instructions, so the
// default leaves ample room for large patches.
const DefaultMaxSteps = 100000

// Transport is the tempo and sample rate visible to one call. It
// initialises the module's transport globals and is discarded afterwards;
// nothing carries over from one call to the next.
type Transport struct {
	Tempo      float64 // beats per minute
	SampleRate float64 // samples per second
}

// DefaultTransport is 120 BPM at 48 kHz.
var DefaultTransport = Transport{Tempo: 120, SampleRate: 48000}

// Interpreter executes the functions of one module.
//
// Thread-safety: an Interpreter holds no per-call state and may be used
// from several goroutines at once, provided the module is not mutated and
// concurrent calls do not share argument cells.
type Interpreter struct {
	module   *ir.Module
	maxSteps int
	logger   *slog.Logger
	trace    bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithMaxSteps sets the per-call instruction budget. Zero disables it.
func WithMaxSteps(maxSteps int) Option {
	return func(in *Interpreter) {
		in.maxSteps = maxSteps
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(in *Interpreter) {
		in.logger = l
	}
}

// WithTrace records the sequence of entered blocks in Stats.Blocks.
func WithTrace() Option {
	return func(in *Interpreter) {
		in.trace = true
	}
}

// New creates an interpreter for m.
func New(m *ir.Module, opts ...Option) *Interpreter {
	in := &Interpreter{
		module:   m,
		maxSteps: DefaultMaxSteps,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Stats describes one completed call.
type Stats struct {
	Steps  int      // instructions executed
	Blocks []string // entered blocks in order; only with WithTrace
}

// Call runs the named function with one cell per parameter.
//
// Context cancellation is checked each time control enters a block.
func (in *Interpreter) Call(ctx context.Context, name string, tr Transport, args ...*Cell) (*Stats, error) {
	fn, ok := in.module.Function(name)
	if !ok {
		return nil, errorf(ErrCodeBadArgument, "no function @%s in module %s", name, in.module.Name)
	}
	if len(args) != len(fn.Params) {
		return nil, &RuntimeError{
			Code:     ErrCodeBadArgument,
			Message:  fmt.Sprintf("got %d arguments, want %d", len(args), len(fn.Params)),
			Function: name,
		}
	}
	for i, a := range args {
		if a == nil {
			return nil, &RuntimeError{
				Code:     ErrCodeBadArgument,
				Message:  fmt.Sprintf("argument %%%s is nil", fn.Params[i].Name),
				Function: name,
			}
		}
	}

	fr := &frame{
		fn:      fn,
		args:    args,
		globals: in.globalCells(tr),
		regs:    make(map[*ir.Instr]value),
		quota:   NewQuotaEnforcer(in.maxSteps),
	}
	stats := &Stats{}

	in.logger.Debug("call",
		"func", name,
		"tempo", tr.Tempo,
		"sample_rate", tr.SampleRate,
	)

	blk := fn.Entry()
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("call @%s: %w", name, err)
		}
		if in.trace {
			stats.Blocks = append(stats.Blocks, blk.Name)
		}
		next, err := fr.runBlock(blk)
		stats.Steps = fr.quota.Current()
		if err != nil {
			in.logger.Warn("runtime fault",
				"func", name,
				"block", blk.Name,
				"steps", stats.Steps,
				"error", err,
			)
			return stats, err
		}
		if next == nil {
			break
		}
		blk = next
	}

	in.logger.Debug("call complete", "func", name, "steps", stats.Steps)
	return stats, nil
}

// globalCells materialises the module's globals for one call. The
// transport globals hold the call's tempo and sample rate in every lane;
// any other global starts zeroed.
func (in *Interpreter) globalCells(tr Transport) map[*ir.Global]*Cell {
	cells := make(map[*ir.Global]*Cell, len(in.module.Globals))
	for _, g := range in.module.Globals {
		c := newCell(g.Elem)
		switch g.Name {
		case ir.GlobalTempo:
			c.val = splatValue(g.Elem, tr.Tempo)
		case ir.GlobalSampleRate:
			c.val = splatValue(g.Elem, tr.SampleRate)
		}
		cells[g] = c
	}
	return cells
}

func splatValue(t *ir.Type, v float64) value {
	if !t.IsFloat() {
		return value{typ: t}
	}
	lanes := make([]float64, t.LaneCount())
	for i := range lanes {
		lanes[i] = v
	}
	return vecValue(t, lanes...)
}

// frame is the state of one call.
type frame struct {
	fn      *ir.Function
	args    []*Cell
	globals map[*ir.Global]*Cell
	regs    map[*ir.Instr]value
	quota   *QuotaEnforcer
}

// runBlock executes blk and returns the successor, or nil after ret.
func (fr *frame) runBlock(blk *ir.Block) (*ir.Block, error) {
	for _, instr := range blk.Instrs {
		if err := fr.quota.Check(fr.fn.Name); err != nil {
			return nil, err
		}
		next, done, err := fr.exec(instr)
		if err != nil {
			var re *RuntimeError
			if errors.As(err, &re) && re.Function == "" {
				re.Function = fr.fn.Name
				re.Block = blk.Name
				re.Instr = ir.FormatInstr(instr)
			}
			return nil, err
		}
		if done {
			return next, nil
		}
	}
	return nil, &RuntimeError{
		Code:     ErrCodeMalformedFunction,
		Message:  "block has no terminator",
		Function: fr.fn.Name,
		Block:    blk.Name,
	}
}

func (fr *frame) operand(v ir.Value) (value, error) {
	switch v := v.(type) {
	case *ir.Const:
		return constValue(v), nil
	case *ir.Param:
		if v.Index >= len(fr.args) {
			return value{}, errorf(ErrCodeMalformedFunction, "parameter %%%s out of range", v.Name)
		}
		return ptrValue(fr.args[v.Index]), nil
	case *ir.Global:
		c, ok := fr.globals[v]
		if !ok {
			return value{}, errorf(ErrCodeMalformedFunction, "global @%s not declared in module", v.Name)
		}
		return ptrValue(c), nil
	case *ir.Instr:
		r, ok := fr.regs[v]
		if !ok {
			return value{}, errorf(ErrCodeMalformedFunction, "use of %s before definition", v.Ref())
		}
		return r, nil
	default:
		return value{}, errorf(ErrCodeMalformedFunction, "unsupported operand %T", v)
	}
}

func (fr *frame) operands(vs []ir.Value) ([]value, error) {
	out := make([]value, len(vs))
	for i, v := range vs {
		r, err := fr.operand(v)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	return out, nil
}

func (fr *frame) deref(v ir.Value) (*Cell, error) {
	p, err := fr.operand(v)
	if err != nil {
		return nil, err
	}
	if p.ptr == nil {
		return nil, errorf(ErrCodeBadArgument, "dereference of nil pointer %s", v.Ref())
	}
	return p.ptr, nil
}

// exec runs one instruction. For terminators it reports done and the
// successor block (nil for ret).
func (fr *frame) exec(instr *ir.Instr) (next *ir.Block, done bool, err error) {
	switch instr.Op {
	case ir.OpAlloca:
		fr.regs[instr] = ptrValue(newCell(instr.Elem))
		return nil, false, nil

	case ir.OpLoad:
		c, err := fr.deref(instr.Args[0])
		if err != nil {
			return nil, false, err
		}
		v, err := c.load(instr.Typ)
		if err != nil {
			return nil, false, err
		}
		fr.regs[instr] = v
		return nil, false, nil

	case ir.OpStore:
		v, err := fr.operand(instr.Args[0])
		if err != nil {
			return nil, false, err
		}
		c, err := fr.deref(instr.Args[1])
		if err != nil {
			return nil, false, err
		}
		return nil, false, c.store(v)

	case ir.OpFieldPtr:
		c, err := fr.deref(instr.Args[0])
		if err != nil {
			return nil, false, err
		}
		if !c.typ.Equal(instr.Elem) {
			return nil, false, errorf(ErrCodeTypeMismatch, "fieldptr %s on %s cell", instr.Elem, c.typ)
		}
		fr.regs[instr] = ptrValue(c.fields[instr.Index])
		return nil, false, nil

	case ir.OpElemPtr:
		c, err := fr.deref(instr.Args[0])
		if err != nil {
			return nil, false, err
		}
		if !c.typ.Equal(instr.Elem) {
			return nil, false, errorf(ErrCodeTypeMismatch, "elemptr %s on %s cell", instr.Elem, c.typ)
		}
		idx, err := fr.operand(instr.Args[1])
		if err != nil {
			return nil, false, err
		}
		i := idx.i[0]
		if i < 0 || i >= int64(len(c.fields)) {
			return nil, false, errorf(ErrCodeIndexOutOfRange, "index %d outside %s", i, c.typ)
		}
		fr.regs[instr] = ptrValue(c.fields[i])
		return nil, false, nil

	case ir.OpBr:
		return instr.Targets[0], true, nil

	case ir.OpCondBr:
		cond, err := fr.operand(instr.Args[0])
		if err != nil {
			return nil, false, err
		}
		if cond.i[0] != 0 {
			return instr.Targets[0], true, nil
		}
		return instr.Targets[1], true, nil

	case ir.OpRet:
		return nil, true, nil
	}

	args, err := fr.operands(instr.Args)
	if err != nil {
		return nil, false, err
	}
	var out value
	switch instr.Op {
	case ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		out = floatBinary(instr.Op, args[0], args[1])
	case ir.OpAdd, ir.OpLShr, ir.OpAnd:
		out = intBinary(instr.Op, args[0], args[1])
	case ir.OpICmp:
		out = boolValue(icmp(instr.Pred, args[0], args[1]))
	case ir.OpFPToSI:
		out, err = fpToSI(args[0], instr.Typ)
	case ir.OpFPTrunc, ir.OpFPExt:
		out = convertFloat(args[0], instr.Typ)
	case ir.OpExtractElement:
		out = extractElement(args[0], instr.Index)
	case ir.OpInsertElement:
		out = insertElement(args[0], args[1], instr.Index)
	case ir.OpShuffleVector:
		out = shuffleVector(args[0], args[1], instr.Mask)
	case ir.OpCall:
		fn, ok := lookupIntrinsic(instr.Callee.Name)
		if !ok {
			return nil, false, errorf(ErrCodeUnknownIntrinsic, "no implementation for @%s", instr.Callee.Name)
		}
		out, err = fn(instr.Typ, args)
	default:
		return nil, false, errorf(ErrCodeMalformedFunction, "unsupported opcode %s", instr.Op)
	}
	if err != nil {
		return nil, false, err
	}
	fr.regs[instr] = out
	return nil, false, nil
}
