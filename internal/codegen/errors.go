package codegen

import (
	"errors"
	"fmt"

	"github.com/roach88/synthgen/internal/ir"
)

// InternalError is a compile-time contract violation between the frontend
// and the generators. It is never caused by user input to generated code
// and must abort compilation.
type InternalError struct {
	Code    InternalErrorCode
	Op      Op
	Form    ir.Form
	Message string
}

// InternalErrorCode categorizes internal errors.
type InternalErrorCode string

const (
	// ErrCodeMissingGenerator indicates no generator for an (op, form) pair.
	ErrCodeMissingGenerator InternalErrorCode = "MISSING_GENERATOR"

	// ErrCodeDuplicateGenerator indicates a second registrant for a key.
	ErrCodeDuplicateGenerator InternalErrorCode = "DUPLICATE_GENERATOR"

	// ErrCodeBadArity indicates a call whose operands do not match the
	// generator's signature.
	ErrCodeBadArity InternalErrorCode = "BAD_ARITY"
)

// Error implements the error interface.
func (e *InternalError) Error() string {
	return fmt.Sprintf("internal compiler error: %s: %s (%s)", e.Code, e.Message, Key{Op: e.Op, Form: e.Form})
}

// IsInternalError reports whether err wraps an InternalError.
func IsInternalError(err error) bool {
	var ie *InternalError
	return errors.As(err, &ie)
}

func missingGenerator(key Key) *InternalError {
	return &InternalError{
		Code:    ErrCodeMissingGenerator,
		Op:      key.Op,
		Form:    key.Form,
		Message: "no generator registered",
	}
}

func duplicateGenerator(key Key) *InternalError {
	return &InternalError{
		Code:    ErrCodeDuplicateGenerator,
		Op:      key.Op,
		Form:    key.Form,
		Message: "generator already registered",
	}
}
