package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a fault detected while executing generated code.
//
// Runtime errors include:
//   - Poison read: a load from a cell the caller marked unreadable
//     (the vector of an inactive array slot)
//   - Index out of range: elemptr past the end of an array
//   - Unknown intrinsic: a call the interpreter has no implementation for
//   - Type mismatch: a load or store whose type disagrees with the cell
//
// None of these can be caused by well-formed generated code running on
// well-formed inputs; each one points at a generator or caller bug.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Function is the function being executed.
	Function string

	// Block is the block containing the faulting instruction.
	Block string

	// Instr is the listing of the faulting instruction, if any.
	Instr string
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodePoisonRead indicates a load from a poisoned cell.
	ErrCodePoisonRead RuntimeErrorCode = "POISON_READ"

	// ErrCodeIndexOutOfRange indicates an elemptr index outside the array.
	ErrCodeIndexOutOfRange RuntimeErrorCode = "INDEX_OUT_OF_RANGE"

	// ErrCodeUnknownIntrinsic indicates a call to an unimplemented intrinsic.
	ErrCodeUnknownIntrinsic RuntimeErrorCode = "UNKNOWN_INTRINSIC"

	// ErrCodeTypeMismatch indicates a memory access whose type disagrees
	// with the addressed cell.
	ErrCodeTypeMismatch RuntimeErrorCode = "TYPE_MISMATCH"

	// ErrCodeBadArgument indicates invalid call arguments or operand values
	// (wrong argument count, nil pointer, zero divisor in eucrem).
	ErrCodeBadArgument RuntimeErrorCode = "BAD_ARGUMENT"

	// ErrCodeMalformedFunction indicates a structurally broken body: a
	// value used before definition or a block without a terminator.
	ErrCodeMalformedFunction RuntimeErrorCode = "MALFORMED_FUNCTION"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Function != "" && e.Block != "" {
		return fmt.Sprintf("%s: %s (func=@%s, block=%%%s)", e.Code, e.Message, e.Function, e.Block)
	}
	if e.Function != "" {
		return fmt.Sprintf("%s: %s (func=@%s)", e.Code, e.Message, e.Function)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsPoisonRead returns true if the error is a poisoned-cell read.
// Uses errors.As to handle wrapped errors.
func IsPoisonRead(err error) bool {
	return hasCode(err, ErrCodePoisonRead)
}

// IsIndexOutOfRange returns true if the error is an elemptr range fault.
func IsIndexOutOfRange(err error) bool {
	return hasCode(err, ErrCodeIndexOutOfRange)
}

// ErrorCode returns the RuntimeErrorCode carried by err, or "" if err is
// not a RuntimeError.
func ErrorCode(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func hasCode(err error, code RuntimeErrorCode) bool {
	return ErrorCode(err) == code
}

func errorf(code RuntimeErrorCode, format string, args ...any) *RuntimeError {
	return &RuntimeError{Code: code, Message: fmt.Sprintf(format, args...)}
}
