package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrNoNodes         = "E101" // patch has no nodes
	ErrDuplicateName   = "E102" // node and param share a name
	ErrInvalidName     = "E103" // name unusable as a function parameter
	ErrUnknownRef      = "E104" // operand names no param or node
	ErrArity           = "E105" // wrong operand count
	ErrKindMismatch    = "E106" // array where num expected or vice versa
	ErrMissingForm     = "E107" // frequency node with no source form
	ErrUnexpectedForm  = "E108" // from on a non-conversion node
	ErrUnsupportedForm = "E109" // no converter for the source form
	ErrUnknownResult   = "E110" // result names no node
	ErrCycle           = "E111" // nodes depend on each other
	ErrTooManyItems    = "E112" // more than ir.MaxVarArgs items
	ErrUnknownOp       = "E113" // no generator registered for the op
)

// ValidationError represents a patch validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// ValidationErrors is every problem Validate found in one patch.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// IsValidationError reports whether err carries validation errors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// Validate checks a patch against the operations available in reg.
// Returns all errors found (does not fail-fast).
func Validate(p *Patch, reg *codegen.Registry) []ValidationError {
	var errs []ValidationError

	if len(p.Nodes) == 0 {
		errs = append(errs, ValidationError{
			Field:   "nodes",
			Message: "at least one node is required",
			Code:    ErrNoNodes,
		})
	}

	names := make(map[string]bool)
	for i, prm := range p.Params {
		field := fmt.Sprintf("params.%s", prm.Name)
		if msg := checkName(prm.Name); msg != "" {
			errs = append(errs, ValidationError{Field: field, Message: msg, Code: ErrInvalidName, Line: prm.Pos.Line()})
		}
		if names[prm.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("params[%d]", i),
				Message: fmt.Sprintf("duplicate name: %q", prm.Name),
				Code:    ErrDuplicateName,
				Line:    prm.Pos.Line(),
			})
		}
		names[prm.Name] = true
	}

	for _, n := range p.Nodes {
		if names[n.Name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("nodes.%s", n.Name),
				Message: fmt.Sprintf("duplicate name: %q is already a param or node", n.Name),
				Code:    ErrDuplicateName,
				Line:    n.Pos.Line(),
			})
		}
		names[n.Name] = true
		errs = append(errs, validateNode(p, n, reg)...)
	}

	if _, ok := p.Node(p.Result); !ok {
		errs = append(errs, ValidationError{
			Field:   "result",
			Message: fmt.Sprintf("result %q is not a node", p.Result),
			Code:    ErrUnknownResult,
			Line:    p.Pos.Line(),
		})
	}

	for _, path := range findCycles(p, buildDependencyGraph(p)) {
		errs = append(errs, ValidationError{
			Field:   fmt.Sprintf("nodes.%s", path[0]),
			Message: fmt.Sprintf("dependency cycle: %s", strings.Join(path, " → ")),
			Code:    ErrCycle,
		})
	}

	return errs
}

// checkName returns a reason the name cannot become a function parameter,
// or "" if it can.
func checkName(name string) string {
	switch {
	case name == "":
		return "name must be non-empty"
	case name == resultParam:
		return fmt.Sprintf("%q is reserved for the result cell", resultParam)
	case strings.ContainsAny(name, " \t,()%@"):
		return fmt.Sprintf("invalid name %q", name)
	}
	return ""
}

func validateNode(p *Patch, n Node, reg *codegen.Registry) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("nodes.%s", n.Name)
	line := n.Pos.Line()
	fail := func(code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
			Line:    line,
		})
	}

	// resolve operand kinds; unknown refs are reported once each
	kinds := func(refs []string) []codegen.ArgKind {
		out := make([]codegen.ArgKind, len(refs))
		for i, ref := range refs {
			k, ok := refKind(p, ref)
			if !ok {
				fail(ErrUnknownRef, "unknown operand %q", ref)
			}
			out[i] = k
		}
		return out
	}
	argKinds := kinds(n.Args)
	itemKinds := kinds(n.Items)

	var sig codegen.Signature
	if n.Op.IsConversion() {
		sig = codegen.Signature{Args: []codegen.ArgKind{codegen.ArgNum}}
		if source, ok := SourceForm(p, n); !ok {
			fail(ErrMissingForm, "%s needs a source form: set from or read a param with a declared form", n.Op)
		} else if _, err := reg.Converter(n.Op, source); err != nil {
			fail(ErrUnsupportedForm, "cannot convert %s to %s", source, n.Op.TargetForm())
		}
	} else {
		fn, err := reg.Function(n.Op)
		if err != nil {
			fail(ErrUnknownOp, "%v", err)
			return errs
		}
		sig = fn.Signature()
		if n.From != ir.FormNone {
			fail(ErrUnexpectedForm, "from is only valid on conversions, not %s", n.Op)
		}
	}

	if len(n.Args) != len(sig.Args) {
		fail(ErrArity, "%s takes %d operands %s, got %d", n.Op, len(sig.Args), sig, len(n.Args))
	} else {
		for i, want := range sig.Args {
			if _, ok := refKind(p, n.Args[i]); ok && argKinds[i] != want {
				fail(ErrKindMismatch, "operand %d (%s) is %s, want %s", i, n.Args[i], argKinds[i], want)
			}
		}
	}

	switch {
	case sig.Variadic && len(n.Items) == 0:
		fail(ErrArity, "%s needs at least one item", n.Op)
	case sig.Variadic && len(n.Items) > ir.MaxVarArgs:
		fail(ErrTooManyItems, "%s takes at most %d items, got %d", n.Op, ir.MaxVarArgs, len(n.Items))
	case !sig.Variadic && len(n.Items) > 0:
		fail(ErrArity, "%s does not take items", n.Op)
	}
	for i, k := range itemKinds {
		if _, ok := refKind(p, n.Items[i]); ok && k != codegen.ArgNum {
			fail(ErrKindMismatch, "item %d (%s) is %s, want num", i, n.Items[i], k)
		}
	}

	return errs
}

// refKind resolves an operand name. Node values are always nums.
func refKind(p *Patch, ref string) (codegen.ArgKind, bool) {
	if prm, ok := p.Param(ref); ok {
		return prm.Kind, true
	}
	if _, ok := p.Node(ref); ok {
		return codegen.ArgNum, true
	}
	return codegen.ArgNum, false
}

// SourceForm is the form a conversion node converts from: its explicit
// from, else the declared form of the param it reads directly.
func SourceForm(p *Patch, n Node) (ir.Form, bool) {
	if n.From != ir.FormNone {
		return n.From, true
	}
	if len(n.Args) == 1 {
		if prm, ok := p.Param(n.Args[0]); ok && prm.Form != ir.FormNone {
			return prm.Form, true
		}
	}
	return ir.FormNone, false
}
