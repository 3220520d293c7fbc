package codegen

import (
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

// NumValue wraps a pointer to a num cell.
type NumValue struct {
	ptr ir.Value
}

// NewNumValue wraps ptr.
func NewNumValue(ptr ir.Value) NumValue {
	return NumValue{ptr: ptr}
}

// Ptr returns the wrapped pointer.
func (n NumValue) Ptr() ir.Value { return n.ptr }

// Vec loads the vector field.
func (n NumValue) Vec(b *ir.Builder) ir.Value {
	return b.Load(b.FieldPtr(n.ptr, ir.NumType, ir.NumVec), ir.V2F64)
}

// SetVec stores the vector field.
func (n NumValue) SetVec(b *ir.Builder, vec ir.Value) {
	b.Store(b.FieldPtr(n.ptr, ir.NumType, ir.NumVec), vec)
}

// Form loads the form tag.
func (n NumValue) Form(b *ir.Builder) ir.Value {
	return b.Load(b.FieldPtr(n.ptr, ir.NumType, ir.NumForm), ir.I8)
}

// SetForm stores the form tag.
func (n NumValue) SetForm(b *ir.Builder, form ir.Value) {
	b.Store(b.FieldPtr(n.ptr, ir.NumType, ir.NumForm), form)
}

// FormConst returns the i8 constant for a form tag.
func FormConst(f ir.Form) ir.Value {
	return ir.ConstInt(ir.I8, int64(f))
}

// ArrayValue wraps a pointer to a sparse array cell.
type ArrayValue struct {
	ptr ir.Value
}

// NewArrayValue wraps ptr.
func NewArrayValue(ptr ir.Value) ArrayValue {
	return ArrayValue{ptr: ptr}
}

// Bitmap loads the presence bitmap.
func (a ArrayValue) Bitmap(b *ir.Builder) ir.Value {
	return b.Load(b.FieldPtr(a.ptr, ir.ArrayType, ir.ArrayBitmap), ir.I32)
}

// ItemPtr addresses slot index. Reading through it is only valid when the
// slot's presence bit is set.
func (a ArrayValue) ItemPtr(b *ir.Builder, index ir.Value) ir.Value {
	items := b.FieldPtr(a.ptr, ir.ArrayType, ir.ArrayItems)
	return b.ElemPtr(items, ir.ArrayItemsType, index)
}

// VarArgs wraps a pointer to a varargs list built at the call site.
type VarArgs struct {
	ptr ir.Value
}

// NewVarArgs wraps ptr.
func NewVarArgs(ptr ir.Value) *VarArgs {
	return &VarArgs{ptr: ptr}
}

// Ptr returns the wrapped pointer.
func (v *VarArgs) Ptr() ir.Value { return v.ptr }

// Len loads the runtime item count as an i32.
func (v *VarArgs) Len(b *ir.Builder) ir.Value {
	return b.Load(b.FieldPtr(v.ptr, ir.VarArgsType, ir.VarArgsLen), ir.I32)
}

// At loads the pointer to item index. The index is range-checked at run
// time against the list storage.
func (v *VarArgs) At(b *ir.Builder, index ir.Value) ir.Value {
	items := b.FieldPtr(v.ptr, ir.VarArgsType, ir.VarArgsItems)
	return b.Load(b.ElemPtr(items, ir.VarArgsItemsType, index), ir.Ptr)
}

// BuildVarArgs allocates a varargs list in the entry block and fills it
// with the given num pointers at the current insertion point.
func BuildVarArgs(fc *FunctionContext, items []ir.Value) *VarArgs {
	if len(items) > ir.MaxVarArgs {
		panic(fmt.Sprintf("codegen: %d varargs exceeds limit %d", len(items), ir.MaxVarArgs))
	}
	list := fc.Alloc.Alloca(ir.VarArgsType)
	fc.B.Store(fc.B.FieldPtr(list, ir.VarArgsType, ir.VarArgsLen), ir.ConstInt(ir.I32, int64(len(items))))
	slots := fc.B.FieldPtr(list, ir.VarArgsType, ir.VarArgsItems)
	for i, item := range items {
		fc.B.Store(fc.B.ElemPtr(slots, ir.VarArgsItemsType, ir.ConstInt(ir.I32, int64(i))), item)
	}
	return NewVarArgs(list)
}

// testBit emits (bitmap >> index) & 1 != 0.
func testBit(b *ir.Builder, bitmap, index ir.Value) ir.Value {
	one := ir.ConstInt(ir.I32, 1)
	bit := b.And(b.LShr(bitmap, index), one)
	return b.ICmp(ir.PredNE, bit, ir.ConstInt(ir.I32, 0))
}
