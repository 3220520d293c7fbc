package engine

import (
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/roach88/synthgen/internal/ir"
)

// intrinsicFunc evaluates one intrinsic call. Arguments have already been
// checked against the declaration.
type intrinsicFunc func(ret *ir.Type, args []value) (value, error)

// intrinsics is keyed by the base name, the part of the declared name
// before the type suffix.
var intrinsics = map[string]intrinsicFunc{
	"pow":    floatLanes2(math.Pow),
	"min":    floatLanes2(math.Min),
	"max":    floatLanes2(math.Max),
	"sqrt":   floatLanes1(math.Sqrt),
	"sin":    floatLanes1(math.Sin),
	"eucrem": eucrem,
}

// IntrinsicNames lists the base names the interpreter can execute, sorted.
func IntrinsicNames() []string {
	return slices.Sorted(maps.Keys(intrinsics))
}

func lookupIntrinsic(name string) (intrinsicFunc, bool) {
	base, _, _ := strings.Cut(name, ".")
	fn, ok := intrinsics[base]
	return fn, ok
}

func floatLanes1(f func(float64) float64) intrinsicFunc {
	return func(ret *ir.Type, args []value) (value, error) {
		out := value{typ: ret}
		for n := range ret.LaneCount() {
			out.f[n] = roundTo(ret, f(args[0].f[n]))
		}
		return out, nil
	}
}

func floatLanes2(f func(float64, float64) float64) intrinsicFunc {
	return func(ret *ir.Type, args []value) (value, error) {
		out := value{typ: ret}
		for n := range ret.LaneCount() {
			out.f[n] = roundTo(ret, f(args[0].f[n], args[1].f[n]))
		}
		return out, nil
	}
}

// eucrem is the euclidean remainder: the result is in [0, |b|) for any
// sign of a.
func eucrem(ret *ir.Type, args []value) (value, error) {
	out := value{typ: ret}
	for n := range ret.LaneCount() {
		a, b := args[0].i[n], args[1].i[n]
		if b == 0 {
			return value{}, errorf(ErrCodeBadArgument, "eucrem by zero")
		}
		r := a % b
		if r < 0 {
			if b < 0 {
				r -= b
			} else {
				r += b
			}
		}
		out.i[n] = truncInt(ret, r)
	}
	return out, nil
}
