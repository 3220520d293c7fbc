package compiler

import (
	"fmt"

	"github.com/roach88/synthgen/internal/codegen"
	"github.com/roach88/synthgen/internal/ir"
)

// resultParam names the trailing pointer parameter every lowered patch
// writes its value to.
const resultParam = "result"

// Options configures lowering.
type Options struct {
	// Registry supplies the generators. Nil means codegen.Default().
	Registry *codegen.Registry

	// Transport supplies tempo and sample rate. Nil reads the module
	// globals at each point of use.
	Transport codegen.Transport
}

func (o Options) registry() *codegen.Registry {
	if o.Registry == nil {
		return codegen.Default()
	}
	return o.Registry
}

// Lower validates p and emits it into m as one function named after the
// patch. Parameters follow declaration order, then the result pointer.
//
// Each node writes to an entry-block num cell, except the result node,
// which writes straight into the result parameter.
func Lower(m *ir.Module, p *Patch, opts Options) (*ir.Function, error) {
	reg := opts.registry()
	if errs := Validate(p, reg); len(errs) > 0 {
		return nil, fmt.Errorf("patch %q: %w", p.Name, ValidationErrors(errs))
	}
	order, err := Order(p)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(p.Params)+1)
	for _, prm := range p.Params {
		names = append(names, prm.Name)
	}
	names = append(names, resultParam)
	f, err := m.NewFunction(p.Name, names...)
	if err != nil {
		return nil, fmt.Errorf("patch %q: %w", p.Name, err)
	}

	fc := codegen.NewFunctionContext(f)
	if opts.Transport != nil {
		fc.Transport = opts.Transport
	}

	cells := make(map[string]ir.Value, len(p.Params)+len(p.Nodes))
	for i, prm := range p.Params {
		cells[prm.Name] = f.Params[i]
	}

	for _, n := range order {
		var out ir.Value
		if n.Name == p.Result {
			out = f.Params[len(f.Params)-1]
		} else {
			out = fc.Alloc.Alloca(ir.NumType)
		}
		if err := lowerNode(fc, reg, p, n, cells, out); err != nil {
			return nil, fmt.Errorf("patch %q: node %q: %w", p.Name, n.Name, err)
		}
		cells[n.Name] = out
	}

	fc.B.Ret()
	return f, nil
}

func lowerNode(fc *codegen.FunctionContext, reg *codegen.Registry, p *Patch, n Node, cells map[string]ir.Value, out ir.Value) error {
	lookup := func(refs []string) []ir.Value {
		vals := make([]ir.Value, len(refs))
		for i, ref := range refs {
			vals[i] = cells[ref]
		}
		return vals
	}

	if n.Op.IsConversion() {
		source, _ := SourceForm(p, n)
		return reg.EmitConvert(fc, n.Op, source, cells[n.Args[0]], out)
	}

	call := codegen.Call{Args: lookup(n.Args), Result: out}
	if len(n.Items) > 0 {
		call.VarArgs = codegen.BuildVarArgs(fc, lookup(n.Items))
	}
	return reg.Emit(fc, n.Op, call)
}
