package engine

import (
	"math"

	"github.com/roach88/synthgen/internal/ir"
)

// value is a register or leaf-cell payload. Float lanes live in f, int
// lanes in i (sign-extended from the type's width), pointers in ptr.
type value struct {
	typ *ir.Type
	f   [2]float64
	i   [2]int64
	ptr *Cell
}

func vecValue(t *ir.Type, lanes ...float64) value {
	v := value{typ: t}
	for n, f := range lanes {
		v.f[n] = roundTo(t, f)
	}
	return v
}

func intValue(t *ir.Type, lanes ...int64) value {
	v := value{typ: t}
	for n, x := range lanes {
		v.i[n] = truncInt(t, x)
	}
	return v
}

func ptrValue(c *Cell) value {
	return value{typ: ir.Ptr, ptr: c}
}

// roundTo rounds f to the precision of t's lanes.
func roundTo(t *ir.Type, f float64) float64 {
	if t.Scalar().Bits == 32 {
		return float64(float32(f))
	}
	return f
}

// truncInt wraps x to the width of t's lanes, sign-extending back to int64.
func truncInt(t *ir.Type, x int64) int64 {
	switch t.Scalar().Bits {
	case 1:
		return x & 1
	case 8:
		return int64(int8(x))
	case 32:
		return int64(int32(x))
	default:
		return x
	}
}

// unsigned returns x reinterpreted as an unsigned integer of t's width.
func unsigned(t *ir.Type, x int64) uint64 {
	bits := t.Scalar().Bits
	if bits >= 64 {
		return uint64(x)
	}
	return uint64(x) & (1<<uint(bits) - 1)
}

func constValue(c *ir.Const) value {
	v := value{typ: c.Type()}
	if c.Undef {
		return v
	}
	if c.Type().IsFloat() {
		return vecValue(c.Type(), c.Floats...)
	}
	return intValue(c.Type(), c.Ints...)
}

func floatBinary(op ir.Opcode, x, y value) value {
	out := value{typ: x.typ}
	for n := range x.typ.LaneCount() {
		a, b := x.f[n], y.f[n]
		var r float64
		switch op {
		case ir.OpFAdd:
			r = a + b
		case ir.OpFSub:
			r = a - b
		case ir.OpFMul:
			r = a * b
		case ir.OpFDiv:
			r = a / b
		}
		out.f[n] = roundTo(x.typ, r)
	}
	return out
}

func intBinary(op ir.Opcode, x, y value) value {
	out := value{typ: x.typ}
	bits := x.typ.Scalar().Bits
	for n := range x.typ.LaneCount() {
		a, b := unsigned(x.typ, x.i[n]), unsigned(y.typ, y.i[n])
		var r uint64
		switch op {
		case ir.OpAdd:
			r = a + b
		case ir.OpLShr:
			if b < uint64(bits) {
				r = a >> b
			}
		case ir.OpAnd:
			r = a & b
		}
		out.i[n] = truncInt(x.typ, int64(r))
	}
	return out
}

func icmp(pred ir.Predicate, x, y value) bool {
	switch pred {
	case ir.PredEQ:
		return x.i[0] == y.i[0]
	case ir.PredNE:
		return x.i[0] != y.i[0]
	case ir.PredULT:
		return unsigned(x.typ, x.i[0]) < unsigned(y.typ, y.i[0])
	case ir.PredSLT:
		return x.i[0] < y.i[0]
	}
	return false
}

func boolValue(b bool) value {
	if b {
		return intValue(ir.I1, 1)
	}
	return intValue(ir.I1, 0)
}

// fpToSI truncates toward zero. Lanes that do not fit the target width are
// rejected instead of producing an unspecified value.
func fpToSI(x value, to *ir.Type) (value, error) {
	out := value{typ: to}
	lo, hi := intRange(to)
	for n := range to.LaneCount() {
		t := math.Trunc(x.f[n])
		if math.IsNaN(t) || t < lo || t > hi {
			return value{}, errorf(ErrCodeBadArgument, "fptosi of %g overflows %s", x.f[n], to.Scalar())
		}
		out.i[n] = int64(t)
	}
	return out, nil
}

func intRange(t *ir.Type) (float64, float64) {
	switch t.Scalar().Bits {
	case 8:
		return math.MinInt8, math.MaxInt8
	case 32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func convertFloat(x value, to *ir.Type) value {
	out := value{typ: to}
	for n := range to.LaneCount() {
		out.f[n] = roundTo(to, x.f[n])
	}
	return out
}

func extractElement(x value, lane int) value {
	out := value{typ: x.typ.Elem}
	out.f[0] = x.f[lane]
	out.i[0] = x.i[lane]
	return out
}

func insertElement(x, elem value, lane int) value {
	out := x
	out.f[lane] = elem.f[0]
	out.i[lane] = elem.i[0]
	return out
}

func shuffleVector(x, y value, mask [2]int) value {
	out := value{typ: x.typ}
	src := [4]value{x, x, y, y}
	for n, m := range mask {
		out.f[n] = src[m].f[m%2]
		out.i[n] = src[m].i[m%2]
	}
	return out
}
