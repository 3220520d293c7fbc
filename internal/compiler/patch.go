package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

// Patch is one parsed patch definition: a named dataflow graph of builtin
// calls over caller-supplied parameters.
type Patch struct {
	Name   string
	Params []Param
	Nodes  []Node // declaration order
	Result string // name of the node whose value the patch returns
	Pos    token.Pos
}

// Param is a patch input.
type Param struct {
	Name string
	Kind codegen.ArgKind

	// Form is the declared unit of a num parameter. It lets frequency nodes
	// reading the parameter directly omit `from`.
	Form ir.Form
	Pos  token.Pos
}

// Node is one builtin call in a patch.
type Node struct {
	Name  string
	Op    codegen.Op
	From  ir.Form  // source form; frequency nodes only
	Args  []string // fixed operands: parameter or node names
	Items []string // variadic operands; sequence only
	Pos   token.Pos
}

// Param returns the named parameter.
func (p *Patch) Param(name string) (Param, bool) {
	for _, prm := range p.Params {
		if prm.Name == name {
			return prm, true
		}
	}
	return Param{}, false
}

// Node returns the named node.
func (p *Patch) Node(name string) (Node, bool) {
	for _, n := range p.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// CompilePatch parses a CUE value into a Patch.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the patch struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`patch: hz: { ... }`)
//	p, err := CompilePatch(v.LookupPath(cue.ParsePath("patch.hz")))
func CompilePatch(v cue.Value) (*Patch, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	p := &Patch{Pos: v.Pos()}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		p.Name = labels[len(labels)-1].String()
	}

	var err error
	p.Params, err = parseParams(v)
	if err != nil {
		return nil, err
	}

	p.Nodes, err = parseNodes(v)
	if err != nil {
		return nil, err
	}
	if len(p.Nodes) == 0 {
		return nil, &CompileError{
			Field:   "nodes",
			Message: "at least one node is required",
			Pos:     v.Pos(),
		}
	}

	resultVal := v.LookupPath(cue.ParsePath("result"))
	if !resultVal.Exists() {
		return nil, &CompileError{
			Field:   "result",
			Message: "result is required",
			Pos:     v.Pos(),
		}
	}
	p.Result, err = resultVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	return p, nil
}

// parseParams reads the params struct. Each entry is either a kind string
// ("num", "array") or a struct {kind, form}.
func parseParams(v cue.Value) ([]Param, error) {
	paramsVal := v.LookupPath(cue.ParsePath("params"))
	if !paramsVal.Exists() {
		return nil, nil // params are optional
	}

	iter, err := paramsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var params []Param
	for iter.Next() {
		pv := iter.Value()
		param := Param{Name: iter.Label(), Kind: codegen.ArgNum, Pos: pv.Pos()}

		kindName, form := "", ""
		if s, err := pv.String(); err == nil {
			kindName = s
		} else {
			kindName, err = optionalString(pv, "kind")
			if err != nil {
				return nil, err
			}
			form, err = optionalString(pv, "form")
			if err != nil {
				return nil, err
			}
		}

		switch kindName {
		case "", "num":
			param.Kind = codegen.ArgNum
		case "array":
			param.Kind = codegen.ArgArray
		default:
			return nil, &CompileError{
				Field:   "params.kind",
				Message: fmt.Sprintf("param %q: unknown kind %q (want num or array)", param.Name, kindName),
				Pos:     pv.Pos(),
			}
		}

		param.Form, err = ir.ParseForm(form)
		if err != nil {
			return nil, &CompileError{
				Field:   "params.form",
				Message: fmt.Sprintf("param %q: %v", param.Name, err),
				Pos:     pv.Pos(),
			}
		}
		params = append(params, param)
	}
	return params, nil
}

// parseNodes reads the nodes struct in declaration order.
func parseNodes(v cue.Value) ([]Node, error) {
	nodesVal := v.LookupPath(cue.ParsePath("nodes"))
	if !nodesVal.Exists() {
		return nil, nil
	}

	iter, err := nodesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []Node
	for iter.Next() {
		nv := iter.Value()
		node := Node{Name: iter.Label(), Pos: nv.Pos()}

		opName, err := optionalString(nv, "op")
		if err != nil {
			return nil, err
		}
		if opName == "" {
			return nil, &CompileError{
				Field:   "nodes.op",
				Message: fmt.Sprintf("node %q: op is required", node.Name),
				Pos:     nv.Pos(),
			}
		}
		node.Op, err = codegen.ParseOp(opName)
		if err != nil {
			return nil, &CompileError{
				Field:   "nodes.op",
				Message: fmt.Sprintf("node %q: %v", node.Name, err),
				Pos:     nv.LookupPath(cue.ParsePath("op")).Pos(),
			}
		}

		from, err := optionalString(nv, "from")
		if err != nil {
			return nil, err
		}
		node.From, err = ir.ParseForm(from)
		if err != nil {
			return nil, &CompileError{
				Field:   "nodes.from",
				Message: fmt.Sprintf("node %q: %v", node.Name, err),
				Pos:     nv.LookupPath(cue.ParsePath("from")).Pos(),
			}
		}

		if node.Args, err = stringList(nv, "args"); err != nil {
			return nil, err
		}
		if node.Items, err = stringList(nv, "items"); err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func stringList(v cue.Value, field string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return nil, nil
	}
	iter, err := fv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
