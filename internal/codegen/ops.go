package codegen

import (
	"fmt"
	"strings"

	"github.com/roach88/synthgen/internal/ir"
)

// Op identifies a lowering operation.
type Op uint8

const (
	OpToRadians Op = iota + 1
	OpToDegrees
	OpClamp
	OpPan
	OpCombine
	OpMix
	OpSequence
	OpMixdown

	// OpFrequency converts a value in some source form to canonical Hz.
	// Its generators are keyed by source form.
	OpFrequency
)

var opNames = map[Op]string{
	OpToRadians: "to_radians",
	OpToDegrees: "to_degrees",
	OpClamp:     "clamp",
	OpPan:       "pan",
	OpCombine:   "combine",
	OpMix:       "mix",
	OpSequence:  "sequence",
	OpMixdown:   "mixdown",
	OpFrequency: "frequency",
}

// String returns the patch-language name of the operation.
func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", op)
}

// IsConversion reports whether op is a form conversion.
func (op Op) IsConversion() bool {
	return op == OpFrequency
}

// TargetForm is the form a conversion produces.
func (op Op) TargetForm() ir.Form {
	switch op {
	case OpFrequency:
		return ir.FormFrequency
	default:
		return ir.FormNone
	}
}

// ParseOp maps a patch-language name to its operation.
func ParseOp(name string) (Op, error) {
	for op, n := range opNames {
		if n == name {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown operation %q", name)
}

// Key identifies one registered generator.
// Builtin functions register under FormNone; conversions register one
// generator per source form.
type Key struct {
	Op   Op
	Form ir.Form
}

// String formats the key as "op" or "op/form".
func (k Key) String() string {
	if k.Op.IsConversion() {
		return fmt.Sprintf("%s/%s", k.Op, k.Form)
	}
	return k.Op.String()
}

// ArgKind is the kind of cell an operand pointer refers to.
type ArgKind uint8

const (
	ArgNum ArgKind = iota
	ArgArray
)

// String returns the patch-language name of the kind.
func (k ArgKind) String() string {
	if k == ArgArray {
		return "array"
	}
	return "num"
}

// Signature describes the operands a generator expects.
type Signature struct {
	Args     []ArgKind
	Variadic bool // trailing num items passed as a VarArgs list
}

// String formats the signature as "[num num]", with "..." appended when
// trailing items are accepted.
func (s Signature) String() string {
	kinds := make([]string, len(s.Args))
	for i, k := range s.Args {
		kinds[i] = k.String()
	}
	out := "[" + strings.Join(kinds, " ") + "]"
	if s.Variadic {
		out += "..."
	}
	return out
}
