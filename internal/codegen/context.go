package codegen

import "github.com/roach88/synthgen/internal/ir"

// FunctionContext carries everything a generator needs to emit into one
// function body.
type FunctionContext struct {
	Module *ir.Module
	Func   *ir.Function

	// B is the body builder. Generators that create blocks leave it
	// positioned at the block where straight-line code continues.
	B *ir.Builder

	// Alloc places loop-local temporaries in the entry block.
	Alloc *ir.Builder

	Transport Transport
}

// NewFunctionContext returns a context positioned at the end of f's entry
// block, reading transport state from the module globals.
func NewFunctionContext(f *ir.Function) *FunctionContext {
	return &FunctionContext{
		Module:    f.Module(),
		Func:      f,
		B:         ir.NewBuilder(f.Entry()),
		Alloc:     ir.NewEntryBuilder(f),
		Transport: GlobalTransport{},
	}
}

// Transport supplies tempo and sample rate as v2f32 vectors.
// Implementations must produce a fresh value at every call; results are
// never reused across points of use.
type Transport interface {
	Tempo(fc *FunctionContext) ir.Value
	SampleRate(fc *FunctionContext) ir.Value
}

// GlobalTransport loads the transport globals at the point of use, so the
// generated code observes tempo or sample-rate changes between invocations.
type GlobalTransport struct{}

// Tempo implements Transport.
func (GlobalTransport) Tempo(fc *FunctionContext) ir.Value {
	g := fc.Module.Global(ir.GlobalTempo, ir.V2F32)
	return fc.B.Load(g, ir.V2F32)
}

// SampleRate implements Transport.
func (GlobalTransport) SampleRate(fc *FunctionContext) ir.Value {
	g := fc.Module.Global(ir.GlobalSampleRate, ir.V2F32)
	return fc.B.Load(g, ir.V2F32)
}

// FixedTransport bakes tempo and sample rate into the code as constants.
// Used for offline rendering where the transport cannot change.
type FixedTransport struct {
	BPM        float64
	SampleRate float64
}

// Tempo implements Transport.
func (t FixedTransport) Tempo(*FunctionContext) ir.Value {
	return ir.Splat(ir.V2F32, t.BPM)
}

// SampleRate implements Transport.
func (t FixedTransport) SampleRate(*FunctionContext) ir.Value {
	return ir.Splat(ir.V2F32, t.SampleRate)
}
