package codegen_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/engine"
	"github.com/roach88/synthgen/internal/ir"
)

// builtinCall lowers a single builtin into a fresh function and runs it.
type builtinCall struct {
	op    codegen.Op
	args  []*engine.Cell
	items []*engine.Cell // variadic items; nil for fixed-arity ops
	trace bool
}

type builtinResult struct {
	num   engine.Num
	stats *engine.Stats
	fn    *ir.Function
}

func (c builtinCall) run(t *testing.T) builtinResult {
	t.Helper()
	m := ir.NewModule("test")

	var params []string
	for i := range c.args {
		params = append(params, fmt.Sprintf("a%d", i))
	}
	for i := range c.items {
		params = append(params, fmt.Sprintf("v%d", i))
	}
	params = append(params, "result")

	f, err := m.NewFunction(c.op.String(), params...)
	require.NoError(t, err)
	fc := codegen.NewFunctionContext(f)

	call := codegen.Call{Result: f.Params[len(f.Params)-1]}
	for i := range c.args {
		call.Args = append(call.Args, f.Params[i])
	}
	if c.items != nil {
		var items []ir.Value
		for i := range c.items {
			items = append(items, f.Params[len(c.args)+i])
		}
		call.VarArgs = codegen.BuildVarArgs(fc, items)
	}
	require.NoError(t, codegen.Default().Emit(fc, c.op, call))
	fc.B.Ret()

	result := engine.ResultCell()
	cells := append(append(append([]*engine.Cell{}, c.args...), c.items...), result)
	stats, err := newInterpreter(m, c.trace).Call(context.Background(), f.Name, engine.DefaultTransport, cells...)
	require.NoError(t, err)

	got, err := engine.ReadNum(result)
	require.NoError(t, err)
	return builtinResult{num: got, stats: stats, fn: f}
}

func newInterpreter(m *ir.Module, trace bool) *engine.Interpreter {
	opts := []engine.Option{engine.WithLogger(slog.New(slog.DiscardHandler))}
	if trace {
		opts = append(opts, engine.WithTrace())
	}
	return engine.New(m, opts...)
}

// convert lowers one frequency conversion and runs it under tr.
func convert(t *testing.T, source ir.Form, val engine.Num, tr engine.Transport, transport codegen.Transport) (engine.Num, *ir.Module) {
	t.Helper()
	m := ir.NewModule("test")
	f, err := m.NewFunction("convert", "x", "result")
	require.NoError(t, err)
	fc := codegen.NewFunctionContext(f)
	if transport != nil {
		fc.Transport = transport
	}
	require.NoError(t, codegen.Default().EmitConvert(fc, codegen.OpFrequency, source, f.Params[0], f.Params[1]))
	fc.B.Ret()

	result := engine.ResultCell()
	_, err = newInterpreter(m, false).Call(context.Background(), "convert", tr, engine.NumCell(val), result)
	require.NoError(t, err)
	got, err := engine.ReadNum(result)
	require.NoError(t, err)
	return got, m
}

func num(v float64) *engine.Cell {
	return engine.NumCell(engine.Mono(v, ir.FormNone))
}

func stereo(l, r float64, form ir.Form) *engine.Cell {
	return engine.NumCell(engine.Stereo(l, r, form))
}

func array(t *testing.T, slots ...engine.Slot) *engine.Cell {
	t.Helper()
	c, err := engine.ArrayCell(slots...)
	require.NoError(t, err)
	return c
}
