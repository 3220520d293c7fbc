package codegen

import "github.com/roach88/synthgen/internal/ir"

// Intrinsic names. The suffix names the operand type; the interpreter and
// target lowering dispatch on the part before the dot.
const (
	IntrinsicPowV2F32    = "pow.v2f32"
	IntrinsicMinV2F64    = "min.v2f64"
	IntrinsicMaxV2F64    = "max.v2f64"
	IntrinsicSqrtV2F64   = "sqrt.v2f64"
	IntrinsicSinV2F64    = "sin.v2f64"
	IntrinsicEucRemV2I32 = "eucrem.v2i32"
)

func powV2F32(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicPowV2F32, ir.V2F32, ir.V2F32, ir.V2F32)
}

func minV2F64(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicMinV2F64, ir.V2F64, ir.V2F64, ir.V2F64)
}

func maxV2F64(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicMaxV2F64, ir.V2F64, ir.V2F64, ir.V2F64)
}

func sqrtV2F64(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicSqrtV2F64, ir.V2F64, ir.V2F64)
}

func sinV2F64(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicSinV2F64, ir.V2F64, ir.V2F64)
}

// eucremV2I32 is the euclidean remainder: always in [0, |divisor|).
func eucremV2I32(m *ir.Module) *ir.Intrinsic {
	return m.Declare(IntrinsicEucRemV2I32, ir.V2I32, ir.V2I32, ir.V2I32)
}
