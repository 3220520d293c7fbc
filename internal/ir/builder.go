package ir

import "fmt"

// Builder appends instructions to a block. Misuse (operand type mismatches,
// emitting after a terminator) is a generator bug and panics.
type Builder struct {
	fn    *Function
	block *Block
	entry bool // insert after the leading allocas instead of at the end
}

// NewBuilder returns a builder positioned at the end of b.
func NewBuilder(b *Block) *Builder {
	return &Builder{fn: b.fn, block: b}
}

// NewEntryBuilder returns a builder that places stack allocations at the top
// of the function's entry block, ahead of any code already emitted there.
func NewEntryBuilder(f *Function) *Builder {
	return &Builder{fn: f, block: f.Entry(), entry: true}
}

// PositionAtEnd moves the insertion point to the end of b.
func (b *Builder) PositionAtEnd(blk *Block) {
	if blk.fn != b.fn {
		panic("ir: PositionAtEnd across functions")
	}
	b.block = blk
	b.entry = false
}

// Block returns the current insertion block.
func (b *Builder) Block() *Block { return b.block }

// Function returns the function being built.
func (b *Builder) Function() *Function { return b.fn }

func (b *Builder) insert(in *Instr) *Instr {
	in.block = b.block
	if in.Typ == nil {
		in.Typ = Void
	}
	if in.Typ.Kind == KindVoid {
		in.ID = -1
	} else {
		in.ID = b.fn.newID()
	}
	if b.entry {
		pos := 0
		for pos < len(b.block.Instrs) && b.block.Instrs[pos].Op == OpAlloca {
			pos++
		}
		b.block.Instrs = append(b.block.Instrs, nil)
		copy(b.block.Instrs[pos+1:], b.block.Instrs[pos:])
		b.block.Instrs[pos] = in
		return in
	}
	if b.block.Terminated() {
		panic(fmt.Sprintf("ir: %s emitted after terminator in block %s", in.Op, b.block.Name))
	}
	b.block.Instrs = append(b.block.Instrs, in)
	return in
}

func (b *Builder) floatBinary(op Opcode, x, y Value) Value {
	if !x.Type().IsFloat() || !x.Type().Equal(y.Type()) {
		panic(fmt.Sprintf("ir: %s on %s and %s", op, x.Type(), y.Type()))
	}
	return b.insert(&Instr{Op: op, Typ: x.Type(), Args: []Value{x, y}})
}

func (b *Builder) intBinary(op Opcode, x, y Value) Value {
	if !x.Type().IsInt() || !x.Type().Equal(y.Type()) {
		panic(fmt.Sprintf("ir: %s on %s and %s", op, x.Type(), y.Type()))
	}
	return b.insert(&Instr{Op: op, Typ: x.Type(), Args: []Value{x, y}})
}

// FAdd emits x + y lane-wise.
func (b *Builder) FAdd(x, y Value) Value { return b.floatBinary(OpFAdd, x, y) }

// FSub emits x - y lane-wise.
func (b *Builder) FSub(x, y Value) Value { return b.floatBinary(OpFSub, x, y) }

// FMul emits x * y lane-wise.
func (b *Builder) FMul(x, y Value) Value { return b.floatBinary(OpFMul, x, y) }

// FDiv emits x / y lane-wise.
func (b *Builder) FDiv(x, y Value) Value { return b.floatBinary(OpFDiv, x, y) }

// Add emits an integer add that must not wrap.
func (b *Builder) Add(x, y Value) Value { return b.intBinary(OpAdd, x, y) }

// LShr emits a logical shift right.
func (b *Builder) LShr(x, y Value) Value { return b.intBinary(OpLShr, x, y) }

// And emits a bitwise and.
func (b *Builder) And(x, y Value) Value { return b.intBinary(OpAnd, x, y) }

// ICmp emits an integer comparison producing an i1.
func (b *Builder) ICmp(pred Predicate, x, y Value) Value {
	if !x.Type().IsInt() || x.Type().IsVector() || !x.Type().Equal(y.Type()) {
		panic(fmt.Sprintf("ir: icmp on %s and %s", x.Type(), y.Type()))
	}
	return b.insert(&Instr{Op: OpICmp, Typ: I1, Pred: pred, Args: []Value{x, y}})
}

// FPToSI truncates floats toward zero into signed integers.
func (b *Builder) FPToSI(v Value, to *Type) Value {
	if !v.Type().IsFloat() || !to.IsInt() || v.Type().LaneCount() != to.LaneCount() {
		panic(fmt.Sprintf("ir: fptosi %s to %s", v.Type(), to))
	}
	return b.insert(&Instr{Op: OpFPToSI, Typ: to, Args: []Value{v}})
}

// FPTrunc narrows a float value.
func (b *Builder) FPTrunc(v Value, to *Type) Value {
	if !v.Type().IsFloat() || !to.IsFloat() || to.Scalar().Bits >= v.Type().Scalar().Bits {
		panic(fmt.Sprintf("ir: fptrunc %s to %s", v.Type(), to))
	}
	return b.insert(&Instr{Op: OpFPTrunc, Typ: to, Args: []Value{v}})
}

// FPExt widens a float value.
func (b *Builder) FPExt(v Value, to *Type) Value {
	if !v.Type().IsFloat() || !to.IsFloat() || to.Scalar().Bits <= v.Type().Scalar().Bits {
		panic(fmt.Sprintf("ir: fpext %s to %s", v.Type(), to))
	}
	return b.insert(&Instr{Op: OpFPExt, Typ: to, Args: []Value{v}})
}

// ExtractElement reads one lane of a vector.
func (b *Builder) ExtractElement(vec Value, lane int) Value {
	t := vec.Type()
	if !t.IsVector() || lane < 0 || lane >= t.Lanes {
		panic(fmt.Sprintf("ir: extractelement lane %d of %s", lane, t))
	}
	return b.insert(&Instr{Op: OpExtractElement, Typ: t.Elem, Index: lane, Args: []Value{vec}})
}

// InsertElement returns vec with one lane replaced by val.
func (b *Builder) InsertElement(vec, val Value, lane int) Value {
	t := vec.Type()
	if !t.IsVector() || lane < 0 || lane >= t.Lanes || !t.Elem.Equal(val.Type()) {
		panic(fmt.Sprintf("ir: insertelement %s into lane %d of %s", val.Type(), lane, t))
	}
	return b.insert(&Instr{Op: OpInsertElement, Typ: t, Index: lane, Args: []Value{vec, val}})
}

// ShuffleVector builds a two-lane vector from the concatenation of x and y:
// mask values 0 and 1 pick x's lanes, 2 and 3 pick y's.
func (b *Builder) ShuffleVector(x, y Value, mask [2]int) Value {
	t := x.Type()
	if !t.IsVector() || t.Lanes != 2 || !t.Equal(y.Type()) {
		panic(fmt.Sprintf("ir: shufflevector on %s and %s", x.Type(), y.Type()))
	}
	for _, m := range mask {
		if m < 0 || m > 3 {
			panic(fmt.Sprintf("ir: shufflevector mask %v", mask))
		}
	}
	return b.insert(&Instr{Op: OpShuffleVector, Typ: t, Mask: mask, Args: []Value{x, y}})
}

// Call emits a call to a declared intrinsic.
func (b *Builder) Call(fn *Intrinsic, args ...Value) Value {
	if len(args) != len(fn.Params) {
		panic(fmt.Sprintf("ir: call @%s with %d args, want %d", fn.Name, len(args), len(fn.Params)))
	}
	for i, a := range args {
		if !a.Type().Equal(fn.Params[i]) {
			panic(fmt.Sprintf("ir: call @%s arg %d is %s, want %s", fn.Name, i, a.Type(), fn.Params[i]))
		}
	}
	return b.insert(&Instr{Op: OpCall, Typ: fn.Ret, Callee: fn, Args: args})
}

// Alloca reserves a call-scoped stack cell of type t.
func (b *Builder) Alloca(t *Type) Value {
	return b.insert(&Instr{Op: OpAlloca, Typ: Ptr, Elem: t})
}

// Load reads a value of type t through ptr.
func (b *Builder) Load(ptr Value, t *Type) Value {
	if ptr.Type().Kind != KindPointer {
		panic(fmt.Sprintf("ir: load through %s", ptr.Type()))
	}
	return b.insert(&Instr{Op: OpLoad, Typ: t, Elem: t, Args: []Value{ptr}})
}

// Store writes val through ptr.
func (b *Builder) Store(ptr, val Value) {
	if ptr.Type().Kind != KindPointer {
		panic(fmt.Sprintf("ir: store through %s", ptr.Type()))
	}
	b.insert(&Instr{Op: OpStore, Elem: val.Type(), Args: []Value{val, ptr}})
}

// FieldPtr addresses field i of the struct at ptr.
func (b *Builder) FieldPtr(ptr Value, agg *Type, field int) Value {
	if agg.Kind != KindStruct || field < 0 || field >= len(agg.Fields) {
		panic(fmt.Sprintf("ir: fieldptr %d of %s", field, agg))
	}
	return b.insert(&Instr{Op: OpFieldPtr, Typ: Ptr, Elem: agg, Index: field, Args: []Value{ptr}})
}

// ElemPtr addresses element index of the array at ptr. The index is
// range-checked when the code runs.
func (b *Builder) ElemPtr(ptr Value, arr *Type, index Value) Value {
	if arr.Kind != KindArray || !index.Type().Equal(I32) {
		panic(fmt.Sprintf("ir: elemptr %s of %s", index.Type(), arr))
	}
	return b.insert(&Instr{Op: OpElemPtr, Typ: Ptr, Elem: arr, Args: []Value{ptr, index}})
}

// Br jumps unconditionally.
func (b *Builder) Br(target *Block) {
	b.insert(&Instr{Op: OpBr, Targets: []*Block{target}})
}

// CondBr jumps to then when cond is true, otherwise to els.
func (b *Builder) CondBr(cond Value, then, els *Block) {
	if !cond.Type().Equal(I1) {
		panic(fmt.Sprintf("ir: condbr on %s", cond.Type()))
	}
	b.insert(&Instr{Op: OpCondBr, Args: []Value{cond}, Targets: []*Block{then, els}})
}

// Ret returns from the function.
func (b *Builder) Ret() {
	b.insert(&Instr{Op: OpRet})
}
