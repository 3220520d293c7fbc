package codegen

import (
	"cmp"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/synthgen/internal/ir"
)

// Call binds a generator invocation to its operand and result cells.
type Call struct {
	// Args are pointers to the fixed operands, in signature order.
	Args []ir.Value

	// VarArgs is the call-site list of trailing items; nil unless the
	// generator is variadic.
	VarArgs *VarArgs

	// Result points to the caller-allocated num cell the generator writes.
	Result ir.Value
}

// Function generates the body of one builtin operation.
type Function interface {
	Op() Op
	Signature() Signature
	GenCall(fc *FunctionContext, call Call)
}

// ConvertFunc converts a v2f32 vector in a fixed source form to the
// conversion's target form, lane-wise.
type ConvertFunc func(fc *FunctionContext, val ir.Value) ir.Value

// Registry maps (operation, source form) keys to generators. Every key has
// at most one registrant; duplicates are rejected when registered, so a
// lookup can never be ambiguous.
type Registry struct {
	functions  map[Key]Function
	converters map[Key]ConvertFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		functions:  make(map[Key]Function),
		converters: make(map[Key]ConvertFunc),
	}
}

func (r *Registry) taken(key Key) bool {
	_, fn := r.functions[key]
	_, conv := r.converters[key]
	return fn || conv
}

// RegisterFunction adds a builtin generator under (fn.Op(), FormNone).
func (r *Registry) RegisterFunction(fn Function) error {
	if fn.Op().IsConversion() {
		return fmt.Errorf("register %s: conversions must use RegisterConverter", fn.Op())
	}
	key := Key{Op: fn.Op(), Form: ir.FormNone}
	if r.taken(key) {
		return duplicateGenerator(key)
	}
	r.functions[key] = fn
	return nil
}

// RegisterConverter adds a conversion generator for one source form.
func (r *Registry) RegisterConverter(op Op, source ir.Form, fn ConvertFunc) error {
	if !op.IsConversion() {
		return fmt.Errorf("register %s: not a conversion", op)
	}
	key := Key{Op: op, Form: source}
	if r.taken(key) {
		return duplicateGenerator(key)
	}
	r.converters[key] = fn
	return nil
}

// Function looks up a builtin generator. A miss is an InternalError.
func (r *Registry) Function(op Op) (Function, error) {
	key := Key{Op: op, Form: ir.FormNone}
	fn, ok := r.functions[key]
	if !ok {
		return nil, missingGenerator(key)
	}
	return fn, nil
}

// Converter looks up a conversion generator. A miss is an InternalError.
func (r *Registry) Converter(op Op, source ir.Form) (ConvertFunc, error) {
	key := Key{Op: op, Form: source}
	fn, ok := r.converters[key]
	if !ok {
		return nil, missingGenerator(key)
	}
	return fn, nil
}

// Keys returns every registered key ordered by operation, then form.
func (r *Registry) Keys() []Key {
	keys := make([]Key, 0, len(r.functions)+len(r.converters))
	for k := range r.functions {
		keys = append(keys, k)
	}
	for k := range r.converters {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b Key) int {
		if c := cmp.Compare(a.Op, b.Op); c != 0 {
			return c
		}
		return cmp.Compare(a.Form, b.Form)
	})
	return keys
}

// Emit validates call against the generator's signature and runs it.
func (r *Registry) Emit(fc *FunctionContext, op Op, call Call) error {
	fn, err := r.Function(op)
	if err != nil {
		return err
	}
	sig := fn.Signature()
	if len(call.Args) != len(sig.Args) {
		return &InternalError{
			Code:    ErrCodeBadArity,
			Op:      op,
			Message: fmt.Sprintf("got %d operands, want %d", len(call.Args), len(sig.Args)),
		}
	}
	if sig.Variadic != (call.VarArgs != nil) {
		return &InternalError{
			Code:    ErrCodeBadArity,
			Op:      op,
			Message: fmt.Sprintf("variadic list present=%t, want %t", call.VarArgs != nil, sig.Variadic),
		}
	}
	if call.Result == nil {
		return &InternalError{Code: ErrCodeBadArity, Op: op, Message: "no result location"}
	}
	fn.GenCall(fc, call)
	return nil
}

// EmitConvert converts the num at src, declared to be in source form, into
// op's target form and writes it to result. The vector is narrowed to v2f32
// for the conversion and widened back afterwards.
func (r *Registry) EmitConvert(fc *FunctionContext, op Op, source ir.Form, src, result ir.Value) error {
	conv, err := r.Converter(op, source)
	if err != nil {
		return err
	}
	b := fc.B
	in := NewNumValue(src)
	out := NewNumValue(result)
	narrow := b.FPTrunc(in.Vec(b), ir.V2F32)
	converted := conv(fc, narrow)
	out.SetForm(b, FormConst(op.TargetForm()))
	out.SetVec(b, b.FPExt(converted, ir.V2F64))
	return nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the process-wide registry with every builtin and
// converter registered. It is built once on first use; a registration
// conflict there is a programming error and panics.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		if err := RegisterBuiltins(r); err != nil {
			panic(err)
		}
		if err := RegisterFrequency(r); err != nil {
			panic(err)
		}
		defaultRegistry = r
	})
	return defaultRegistry
}
