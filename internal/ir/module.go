package ir

import (
	"fmt"
	"strings"
)

// Names of the transport globals read by frequency conversion.
const (
	GlobalTempo      = "transport.bpm"
	GlobalSampleRate = "transport.samplerate"
)

// Intrinsic is a declared math primitive provided by the target.
type Intrinsic struct {
	Name   string
	Params []*Type
	Ret    *Type
}

// Module owns globals, intrinsic declarations and functions.
// Declaration order is preserved so listings are deterministic.
type Module struct {
	Name       string
	Globals    []*Global
	Intrinsics []*Intrinsic
	Functions  []*Function
}

// NewModule creates an empty module.
func NewModule(name string) *Module {
	return &Module{Name: name}
}

// Global returns the named global, declaring it on first use.
// Redeclaring a global with a different type panics.
func (m *Module) Global(name string, elem *Type) *Global {
	if g, ok := m.LookupGlobal(name); ok {
		if !g.Elem.Equal(elem) {
			panic(fmt.Sprintf("ir: global @%s redeclared as %s (was %s)", name, elem, g.Elem))
		}
		return g
	}
	g := &Global{Name: name, Elem: elem}
	m.Globals = append(m.Globals, g)
	return g
}

// LookupGlobal finds a declared global.
func (m *Module) LookupGlobal(name string) (*Global, bool) {
	for _, g := range m.Globals {
		if g.Name == name {
			return g, true
		}
	}
	return nil, false
}

// Declare returns the named intrinsic, declaring it on first use.
func (m *Module) Declare(name string, ret *Type, params ...*Type) *Intrinsic {
	for _, in := range m.Intrinsics {
		if in.Name == name {
			return in
		}
	}
	in := &Intrinsic{Name: name, Params: params, Ret: ret}
	m.Intrinsics = append(m.Intrinsics, in)
	return in
}

// NewFunction adds a function with pointer parameters named by params and
// an empty entry block.
func (m *Module) NewFunction(name string, params ...string) (*Function, error) {
	if _, ok := m.Function(name); ok {
		return nil, fmt.Errorf("function @%s already defined", name)
	}
	f := &Function{Name: name, module: m, names: make(map[string]int)}
	seen := make(map[string]bool, len(params))
	for i, p := range params {
		if p == "" || strings.ContainsAny(p, " \t,()%@") {
			return nil, fmt.Errorf("function @%s: invalid parameter name %q", name, p)
		}
		if seen[p] {
			return nil, fmt.Errorf("function @%s: duplicate parameter %q", name, p)
		}
		seen[p] = true
		f.Params = append(f.Params, &Param{Name: p, Index: i})
	}
	f.NewBlock("entry")
	m.Functions = append(m.Functions, f)
	return f, nil
}

// Function finds a function by name.
func (m *Module) Function(name string) (*Function, bool) {
	for _, f := range m.Functions {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}
