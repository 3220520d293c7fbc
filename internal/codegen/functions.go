package codegen

import (
	"math"

	"github.com/roach88/synthgen/internal/ir"
)

// RegisterBuiltins registers every builtin function generator.
func RegisterBuiltins(r *Registry) error {
	builtins := []Function{
		angleFunction{op: OpToRadians, factor: math.Pi / 180},
		angleFunction{op: OpToDegrees, factor: 180 / math.Pi},
		clampFunction{},
		panFunction{},
		combineFunction{},
		mixFunction{},
		sequenceFunction{},
		mixdownFunction{},
	}
	for _, fn := range builtins {
		if err := r.RegisterFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

var (
	unarySig   = Signature{Args: []ArgKind{ArgNum}}
	binarySig  = Signature{Args: []ArgKind{ArgNum, ArgNum}}
	ternarySig = Signature{Args: []ArgKind{ArgNum, ArgNum, ArgNum}}
)

// angleFunction scales by a constant. The form tag is copied unchanged:
// a geometric conversion does not change the value's unit.
type angleFunction struct {
	op     Op
	factor float64
}

func (f angleFunction) Op() Op               { return f.op }
func (f angleFunction) Signature() Signature { return unarySig }

func (f angleFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	arg := NewNumValue(call.Args[0])
	result := NewNumValue(call.Result)
	vec := arg.Vec(b)
	result.SetForm(b, arg.Form(b))
	result.SetVec(b, b.FMul(vec, ir.Splat(ir.V2F64, f.factor)))
}

// clampFunction computes max(min(x, hi), lo) in that order, so inverted
// bounds (lo > hi) yield lo.
type clampFunction struct{}

func (clampFunction) Op() Op               { return OpClamp }
func (clampFunction) Signature() Signature { return ternarySig }

func (clampFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	x := NewNumValue(call.Args[0])
	lo := NewNumValue(call.Args[1]).Vec(b)
	hi := NewNumValue(call.Args[2]).Vec(b)
	result := NewNumValue(call.Result)
	result.SetForm(b, x.Form(b))

	vec := b.Call(minV2F64(fc.Module), x.Vec(b), hi)
	vec = b.Call(maxV2F64(fc.Module), vec, lo)
	result.SetVec(b, vec)
}

// panFunction applies equal-power panning.
//
// The pan operand carries one scalar broadcast to both lanes; lane 0 is
// read as "pan for left" and lane 1 as "pan for right". The output lanes
// are real per-channel gains:
//
//	angle = (pi/4)*(pan+1) + <pi/2, 0>
//	gain  = sqrt(<1-pan.l, 1+pan.r> * sin(angle) / 2)
//	out   = x * gain
type panFunction struct{}

func (panFunction) Op() Op               { return OpPan }
func (panFunction) Signature() Signature { return binarySig }

func (panFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	m := fc.Module
	x := NewNumValue(call.Args[0])
	pan := NewNumValue(call.Args[1])
	result := NewNumValue(call.Result)
	result.SetForm(b, x.Form(b))

	xVec := x.Vec(b)
	clamped := b.Call(minV2F64(m), pan.Vec(b), ir.Splat(ir.V2F64, 1))
	clamped = b.Call(maxV2F64(m), clamped, ir.Splat(ir.V2F64, -1))
	panLeft := b.ExtractElement(clamped, 0)
	panRight := b.ExtractElement(clamped, 1)

	angle := b.FAdd(
		b.FMul(ir.Splat(ir.V2F64, math.Pi/4), b.FAdd(clamped, ir.Splat(ir.V2F64, 1))),
		ir.ConstFloat(ir.V2F64, math.Pi/2, 0),
	)
	sine := b.Call(sinV2F64(m), angle)

	one := ir.ConstFloat(ir.F64, 1)
	weights := b.InsertElement(ir.Undef(ir.V2F64), b.FSub(one, panLeft), 0)
	weights = b.InsertElement(weights, b.FAdd(one, panRight), 1)
	power := b.FMul(weights, sine)

	gain := b.Call(sqrtV2F64(m), b.FDiv(power, ir.Splat(ir.V2F64, 2)))
	result.SetVec(b, b.FMul(xVec, gain))
}

// combineFunction takes lane 0 from left and lane 1 from right.
type combineFunction struct{}

func (combineFunction) Op() Op               { return OpCombine }
func (combineFunction) Signature() Signature { return binarySig }

func (combineFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	left := NewNumValue(call.Args[0])
	right := NewNumValue(call.Args[1])
	result := NewNumValue(call.Result)
	result.SetForm(b, left.Form(b))

	result.SetVec(b, b.ShuffleVector(left.Vec(b), right.Vec(b), [2]int{0, 3}))
}

// mixFunction interpolates linearly: a + (b - a) * t.
type mixFunction struct{}

func (mixFunction) Op() Op               { return OpMix }
func (mixFunction) Signature() Signature { return ternarySig }

func (mixFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	aNum := NewNumValue(call.Args[0])
	bNum := NewNumValue(call.Args[1])
	tNum := NewNumValue(call.Args[2])
	result := NewNumValue(call.Result)
	result.SetForm(b, aNum.Form(b))

	aVec := aNum.Vec(b)
	bVec := bNum.Vec(b)
	tVec := tNum.Vec(b)
	result.SetVec(b, b.FAdd(b.FMul(b.FSub(bVec, aVec), tVec), aVec))
}
