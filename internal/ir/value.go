package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is anything that can appear as an instruction operand.
// Only Const, Param, Global and Instr implement it.
type Value interface {
	// Type is the type of the value itself (Ptr for params, globals and
	// address-producing instructions).
	Type() *Type

	// Ref is the operand spelling used in listings.
	Ref() string
}

// Const is an immediate scalar or vector constant.
type Const struct {
	typ    *Type
	Floats []float64 // lane values for float types
	Ints   []int64   // lane values for int types
	Undef  bool
}

// Type implements Value.
func (c *Const) Type() *Type { return c.typ }

// Ref implements Value.
func (c *Const) Ref() string {
	if c.Undef {
		return "undef"
	}
	var lanes []string
	if c.typ.IsFloat() {
		for _, f := range c.Floats {
			lanes = append(lanes, strconv.FormatFloat(f, 'g', -1, 64))
		}
	} else {
		for _, n := range c.Ints {
			lanes = append(lanes, strconv.FormatInt(n, 10))
		}
	}
	if c.typ.IsVector() {
		return "<" + strings.Join(lanes, ", ") + ">"
	}
	return lanes[0]
}

// ConstFloat returns a float constant. Scalars take one value, vectors one
// value per lane.
func ConstFloat(t *Type, lanes ...float64) *Const {
	if !t.IsFloat() || len(lanes) != t.LaneCount() {
		panic(fmt.Sprintf("ir: ConstFloat(%s) with %d lanes", t, len(lanes)))
	}
	vals := append([]float64(nil), lanes...)
	if t.Scalar().Bits == 32 {
		for i, f := range vals {
			vals[i] = float64(float32(f))
		}
	}
	return &Const{typ: t, Floats: vals}
}

// ConstInt returns an int constant.
func ConstInt(t *Type, lanes ...int64) *Const {
	if !t.IsInt() || len(lanes) != t.LaneCount() {
		panic(fmt.Sprintf("ir: ConstInt(%s) with %d lanes", t, len(lanes)))
	}
	return &Const{typ: t, Ints: lanes}
}

// Splat returns a float vector constant with v in every lane.
func Splat(t *Type, v float64) *Const {
	lanes := make([]float64, t.LaneCount())
	for i := range lanes {
		lanes[i] = v
	}
	return ConstFloat(t, lanes...)
}

// Undef returns a value whose lanes are unspecified.
func Undef(t *Type) *Const {
	return &Const{typ: t, Undef: true}
}

// Param is a function parameter. All parameters are pointers to
// caller-owned cells.
type Param struct {
	Name  string
	Index int
}

// Type implements Value.
func (p *Param) Type() *Type { return Ptr }

// Ref implements Value.
func (p *Param) Ref() string { return "%" + p.Name }

// Global is a named module-level cell. The value is its address.
type Global struct {
	Name string
	Elem *Type
}

// Type implements Value.
func (g *Global) Type() *Type { return Ptr }

// Ref implements Value.
func (g *Global) Ref() string { return "@" + g.Name }
