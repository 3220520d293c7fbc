package ir

// ArrayCapacity is the fixed slot count of a sparse array value.
// The presence bitmap is an i32, so the capacity can never exceed 32.
const ArrayCapacity = 16

// MaxVarArgs bounds the number of items a call site can pass in a
// variadic argument list.
const MaxVarArgs = 16

// Field indices of NumType.
const (
	NumVec  = 0
	NumForm = 1
)

// Field indices of ArrayType.
const (
	ArrayBitmap = 0
	ArrayItems  = 1
)

// Field indices of VarArgsType.
const (
	VarArgsLen   = 0
	VarArgsItems = 1
)

// Memory layouts shared by the generators and the interpreter.
var (
	// NumType is a numeric value: a stereo vector plus its form tag.
	NumType = StructOf("num", V2F64, I8)

	// ArrayItemsType is the slot storage of a sparse array.
	ArrayItemsType = ArrayOf(NumType, ArrayCapacity)

	// ArrayType is a sparse array: bit i of the bitmap marks slot i active.
	ArrayType = StructOf("array", I32, ArrayItemsType)

	// VarArgsItemsType holds pointers to num cells.
	VarArgsItemsType = ArrayOf(Ptr, MaxVarArgs)

	// VarArgsType is a runtime variadic argument list built at a call site.
	VarArgsType = StructOf("varargs", I32, VarArgsItemsType)
)
