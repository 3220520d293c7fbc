package ir

import (
	"fmt"
	"strconv"
)

// Instr is a single instruction. Value-producing instructions are numbered
// per function; void instructions (store and terminators) have ID -1.
type Instr struct {
	ID     int
	Op     Opcode
	Typ    *Type   // result type; Void for store and terminators
	Args   []Value // operands
	Index  int     // lane for extract/insert, field for fieldptr
	Mask   [2]int  // shufflevector lane selection over concat(a, b)
	Pred   Predicate
	Callee *Intrinsic

	// Elem is the alloca'd type, the loaded or stored type, or the
	// aggregate addressed by fieldptr/elemptr.
	Elem    *Type
	Targets []*Block

	block *Block
}

// Type implements Value.
func (in *Instr) Type() *Type { return in.Typ }

// Ref implements Value.
func (in *Instr) Ref() string { return "%" + strconv.Itoa(in.ID) }

// Block returns the block that contains the instruction.
func (in *Instr) Block() *Block { return in.block }

// Block is a straight-line instruction sequence ending in a terminator.
type Block struct {
	Name   string
	Instrs []*Instr

	fn *Function
}

// Ref returns the branch-target spelling of the block.
func (b *Block) Ref() string { return "%" + b.Name }

// Function returns the enclosing function.
func (b *Block) Function() *Function { return b.fn }

// Terminated reports whether the block already ends in a terminator.
func (b *Block) Terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	return b.Instrs[len(b.Instrs)-1].Op.IsTerminator()
}

// Function is a generated function body. Every parameter is a pointer to a
// caller-owned cell; by convention the last parameter is the result cell.
type Function struct {
	Name   string
	Params []*Param
	Blocks []*Block

	module *Module
	nextID int
	names  map[string]int
}

// Module returns the module that owns the function.
func (f *Function) Module() *Module { return f.module }

// Entry returns the entry block.
func (f *Function) Entry() *Block { return f.Blocks[0] }

// Param returns the parameter with the given name.
func (f *Function) Param(name string) (*Param, bool) {
	for _, p := range f.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// NewBlock appends a new block. Repeated names get a numeric suffix so
// that a generator invoked twice in one function still yields unique labels.
func (f *Function) NewBlock(name string) *Block {
	n := f.names[name]
	f.names[name] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s.%d", name, n)
	}
	b := &Block{Name: name, fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// InstrCount returns the total number of instructions in the function.
func (f *Function) InstrCount() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
	}
	return n
}

func (f *Function) newID() int {
	id := f.nextID
	f.nextID++
	return id
}
