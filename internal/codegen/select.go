package codegen

import "github.com/roach88/synthgen/internal/ir"

// sequenceFunction selects items by a runtime index.
//
// The index operand is a packed pair of independent selectors, not a
// stereo signal: lane 0 picks the item whose left lane becomes the result's
// left lane, lane 1 picks the item supplying the right lane. Each selector
// is truncated toward zero and reduced modulo the list length with a
// euclidean remainder, so it always lands in [0, len). The list must not be
// empty; that is the caller's guarantee.
type sequenceFunction struct{}

func (sequenceFunction) Op() Op { return OpSequence }

func (sequenceFunction) Signature() Signature {
	return Signature{Args: []ArgKind{ArgNum}, Variadic: true}
}

func (sequenceFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	items := call.VarArgs
	index := NewNumValue(call.Args[0])
	result := NewNumValue(call.Result)

	first := NewNumValue(items.At(b, ir.ConstInt(ir.I32, 0)))
	result.SetForm(b, first.Form(b))

	count := items.Len(b)
	countVec := b.InsertElement(ir.Undef(ir.V2I32), count, 0)
	countVec = b.InsertElement(countVec, count, 1)

	raw := b.FPToSI(index.Vec(b), ir.V2I32)
	wrapped := b.Call(eucremV2I32(fc.Module), raw, countVec)

	left := NewNumValue(items.At(b, b.ExtractElement(wrapped, 0)))
	right := NewNumValue(items.At(b, b.ExtractElement(wrapped, 1)))
	result.SetVec(b, b.ShuffleVector(left.Vec(b), right.Vec(b), [2]int{0, 3}))
}

// mixdownFunction sums every active slot of a sparse array.
//
// The result form is slot 0's form tag whether or not slot 0 is active.
// The loop visits each index below ir.ArrayCapacity once and reads a
// slot's vector only when its presence bit is set:
//
//	check:  index < capacity ? run : done
//	run:    index' = index + 1; bit set ? active : check
//	active: acc += slot[index].vec; -> check
//	done:   result.vec = acc
//
// fc.B is left positioned at the done block.
type mixdownFunction struct{}

func (mixdownFunction) Op() Op { return OpMixdown }

func (mixdownFunction) Signature() Signature {
	return Signature{Args: []ArgKind{ArgArray}}
}

func (mixdownFunction) GenCall(fc *FunctionContext, call Call) {
	b := fc.B
	f := fc.Func
	in := NewArrayValue(call.Args[0])
	result := NewNumValue(call.Result)

	bitmap := in.Bitmap(b)
	first := NewNumValue(in.ItemPtr(b, ir.ConstInt(ir.I32, 0)))
	result.SetForm(b, first.Form(b))

	check := f.NewBlock("mixdown.check")
	run := f.NewBlock("mixdown.run")
	active := f.NewBlock("mixdown.active")
	done := f.NewBlock("mixdown.done")

	acc := fc.Alloc.Alloca(ir.V2F64)
	b.Store(acc, ir.Splat(ir.V2F64, 0))
	indexPtr := fc.Alloc.Alloca(ir.I32)
	b.Store(indexPtr, ir.ConstInt(ir.I32, 0))
	b.Br(check)

	b.PositionAtEnd(check)
	index := b.Load(indexPtr, ir.I32)
	inRange := b.ICmp(ir.PredULT, index, ir.ConstInt(ir.I32, ir.ArrayCapacity))
	b.CondBr(inRange, run, done)

	b.PositionAtEnd(run)
	b.Store(indexPtr, b.Add(index, ir.ConstInt(ir.I32, 1)))
	b.CondBr(testBit(b, bitmap, index), active, check)

	b.PositionAtEnd(active)
	item := NewNumValue(in.ItemPtr(b, index))
	sum := b.FAdd(b.Load(acc, ir.V2F64), item.Vec(b))
	b.Store(acc, sum)
	b.Br(check)

	b.PositionAtEnd(done)
	result.SetVec(b, b.Load(acc, ir.V2F64))
}
