package engine

import (
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

// Cell is one addressable memory location. Aggregate cells (structs and
// arrays) own a child cell per field or element; leaf cells hold a scalar,
// vector or pointer payload.
//
// A poisoned leaf cannot be loaded until something stores to it.
type Cell struct {
	typ    *ir.Type
	val    value
	fields []*Cell
	poison bool
}

func newCell(t *ir.Type) *Cell {
	c := &Cell{typ: t, val: value{typ: t}}
	switch t.Kind {
	case ir.KindStruct:
		c.fields = make([]*Cell, len(t.Fields))
		for i, ft := range t.Fields {
			c.fields[i] = newCell(ft)
		}
	case ir.KindArray:
		c.fields = make([]*Cell, t.Len)
		for i := range c.fields {
			c.fields[i] = newCell(t.Elem)
		}
	}
	return c
}

// Type returns the cell's type.
func (c *Cell) Type() *ir.Type { return c.typ }

// Poisoned reports whether the cell is currently unreadable.
func (c *Cell) Poisoned() bool { return c.poison }

func (c *Cell) load(t *ir.Type) (value, error) {
	if c.typ.Kind == ir.KindStruct || c.typ.Kind == ir.KindArray {
		return value{}, errorf(ErrCodeTypeMismatch, "load %s from aggregate %s", t, c.typ)
	}
	if !c.typ.Equal(t) {
		return value{}, errorf(ErrCodeTypeMismatch, "load %s from %s cell", t, c.typ)
	}
	if c.poison {
		return value{}, errorf(ErrCodePoisonRead, "load %s from poisoned cell", t)
	}
	return c.val, nil
}

func (c *Cell) store(v value) error {
	if c.typ.Kind == ir.KindStruct || c.typ.Kind == ir.KindArray {
		return errorf(ErrCodeTypeMismatch, "store %s to aggregate %s", v.typ, c.typ)
	}
	if !c.typ.Equal(v.typ) {
		return errorf(ErrCodeTypeMismatch, "store %s to %s cell", v.typ, c.typ)
	}
	c.val = v
	c.val.typ = c.typ
	c.poison = false
	return nil
}

// Num is a host-side numeric value: a stereo vector and its form.
type Num struct {
	Vec  [2]float64
	Form ir.Form
}

// Mono returns a Num with v in both lanes.
func Mono(v float64, form ir.Form) Num {
	return Num{Vec: [2]float64{v, v}, Form: form}
}

// Stereo returns a Num with distinct left and right lanes.
func Stereo(left, right float64, form ir.Form) Num {
	return Num{Vec: [2]float64{left, right}, Form: form}
}

// String formats the num as "<l, r> form".
func (n Num) String() string {
	return fmt.Sprintf("<%g, %g> %s", n.Vec[0], n.Vec[1], n.Form)
}

// NumCell allocates a num cell holding n.
func NumCell(n Num) *Cell {
	c := newCell(ir.NumType)
	writeNum(c, n)
	return c
}

// ResultCell allocates a num cell for a function to write its result into.
// Both fields start poisoned, so a body that forgets to write one is caught
// when the caller reads it back.
func ResultCell() *Cell {
	c := newCell(ir.NumType)
	c.fields[ir.NumVec].poison = true
	c.fields[ir.NumForm].poison = true
	return c
}

func writeNum(c *Cell, n Num) {
	c.fields[ir.NumVec].val = vecValue(ir.V2F64, n.Vec[0], n.Vec[1])
	c.fields[ir.NumVec].poison = false
	c.fields[ir.NumForm].val = intValue(ir.I8, int64(n.Form))
	c.fields[ir.NumForm].poison = false
}

// ReadNum reads a num cell back into host form.
func ReadNum(c *Cell) (Num, error) {
	if c == nil || !c.typ.Equal(ir.NumType) {
		return Num{}, errorf(ErrCodeTypeMismatch, "read num from non-num cell")
	}
	vec, err := c.fields[ir.NumVec].load(ir.V2F64)
	if err != nil {
		return Num{}, fmt.Errorf("read num vec: %w", err)
	}
	form, err := c.fields[ir.NumForm].load(ir.I8)
	if err != nil {
		return Num{}, fmt.Errorf("read num form: %w", err)
	}
	return Num{Vec: vec.f, Form: ir.Form(form.i[0])}, nil
}

// Slot is one sparse-array entry. An inactive slot keeps its form tag but
// its vector is poisoned: generated code must test the presence bit
// before reading it.
type Slot struct {
	Num    Num
	Active bool
}

// ArrayCell allocates a sparse array cell. Slots beyond len(slots) are
// inactive with no form.
func ArrayCell(slots ...Slot) (*Cell, error) {
	if len(slots) > ir.ArrayCapacity {
		return nil, errorf(ErrCodeBadArgument, "%d slots exceeds array capacity %d", len(slots), ir.ArrayCapacity)
	}
	c := newCell(ir.ArrayType)
	items := c.fields[ir.ArrayItems]
	var bitmap int64
	for i := range ir.ArrayCapacity {
		slot := Slot{}
		if i < len(slots) {
			slot = slots[i]
		}
		item := items.fields[i]
		writeNum(item, slot.Num)
		if slot.Active {
			bitmap |= 1 << i
		} else {
			item.fields[ir.NumVec].poison = true
		}
	}
	c.fields[ir.ArrayBitmap].val = intValue(ir.I32, bitmap)
	return c, nil
}

// VarArgsCell allocates a variadic list referencing the given num cells.
func VarArgsCell(items ...*Cell) (*Cell, error) {
	if len(items) > ir.MaxVarArgs {
		return nil, errorf(ErrCodeBadArgument, "%d varargs exceeds limit %d", len(items), ir.MaxVarArgs)
	}
	c := newCell(ir.VarArgsType)
	c.fields[ir.VarArgsLen].val = intValue(ir.I32, int64(len(items)))
	slots := c.fields[ir.VarArgsItems]
	for i, item := range items {
		if item == nil || !item.typ.Equal(ir.NumType) {
			return nil, errorf(ErrCodeBadArgument, "vararg %d is not a num cell", i)
		}
		slots.fields[i].val = ptrValue(item)
	}
	return c, nil
}
