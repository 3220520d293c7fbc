package ir

import "fmt"

// Opcode identifies an instruction.
type Opcode uint8

const (
	OpFAdd Opcode = iota
	OpFSub
	OpFMul
	OpFDiv
	OpAdd // integer add, no unsigned wrap
	OpLShr
	OpAnd
	OpICmp
	OpFPToSI
	OpFPTrunc
	OpFPExt
	OpExtractElement
	OpInsertElement
	OpShuffleVector
	OpCall
	OpAlloca
	OpLoad
	OpStore
	OpFieldPtr
	OpElemPtr
	OpBr
	OpCondBr
	OpRet
)

var opcodeNames = [...]string{
	OpFAdd:           "fadd",
	OpFSub:           "fsub",
	OpFMul:           "fmul",
	OpFDiv:           "fdiv",
	OpAdd:            "add nuw",
	OpLShr:           "lshr",
	OpAnd:            "and",
	OpICmp:           "icmp",
	OpFPToSI:         "fptosi",
	OpFPTrunc:        "fptrunc",
	OpFPExt:          "fpext",
	OpExtractElement: "extractelement",
	OpInsertElement:  "insertelement",
	OpShuffleVector:  "shufflevector",
	OpCall:           "call",
	OpAlloca:         "alloca",
	OpLoad:           "load",
	OpStore:          "store",
	OpFieldPtr:       "fieldptr",
	OpElemPtr:        "elemptr",
	OpBr:             "br",
	OpCondBr:         "condbr",
	OpRet:            "ret",
}

// String returns the listing mnemonic.
func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return fmt.Sprintf("Opcode(%d)", op)
}

// IsTerminator reports whether op ends a block.
func (op Opcode) IsTerminator() bool {
	return op == OpBr || op == OpCondBr || op == OpRet
}

// Predicate is an integer comparison predicate.
type Predicate uint8

const (
	PredEQ Predicate = iota
	PredNE
	PredULT
	PredSLT
)

// String returns the listing spelling.
func (p Predicate) String() string {
	switch p {
	case PredEQ:
		return "eq"
	case PredNE:
		return "ne"
	case PredULT:
		return "ult"
	case PredSLT:
		return "slt"
	default:
		return fmt.Sprintf("Predicate(%d)", p)
	}
}
