package ir

import (
	"fmt"
	"io"
	"strings"
)

// Print renders the whole module as a deterministic text listing.
func Print(m *Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module %s\n", m.Name)
	if len(m.Globals) > 0 {
		sb.WriteByte('\n')
	}
	for _, g := range m.Globals {
		fmt.Fprintf(&sb, "global @%s %s\n", g.Name, g.Elem)
	}
	if len(m.Intrinsics) > 0 {
		sb.WriteByte('\n')
	}
	for _, in := range m.Intrinsics {
		params := make([]string, len(in.Params))
		for i, p := range in.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(&sb, "declare %s @%s(%s)\n", in.Ret, in.Name, strings.Join(params, ", "))
	}
	for _, f := range m.Functions {
		sb.WriteByte('\n')
		writeFunction(&sb, f)
	}
	return sb.String()
}

// PrintFunction renders a single function.
func PrintFunction(f *Function) string {
	var sb strings.Builder
	writeFunction(&sb, f)
	return sb.String()
}

func writeFunction(w io.Writer, f *Function) {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = "ptr " + p.Ref()
	}
	fmt.Fprintf(w, "func @%s(%s) {\n", f.Name, strings.Join(params, ", "))
	for _, b := range f.Blocks {
		fmt.Fprintf(w, "%s:\n", b.Name)
		for _, in := range b.Instrs {
			fmt.Fprintf(w, "  %s\n", FormatInstr(in))
		}
	}
	fmt.Fprintln(w, "}")
}

// FormatInstr renders one instruction without indentation.
func FormatInstr(in *Instr) string {
	var body string
	switch in.Op {
	case OpFAdd, OpFSub, OpFMul, OpFDiv, OpAdd, OpLShr, OpAnd:
		body = fmt.Sprintf("%s %s %s, %s", in.Op, in.Typ, in.Args[0].Ref(), in.Args[1].Ref())
	case OpICmp:
		body = fmt.Sprintf("icmp %s %s %s, %s", in.Pred, in.Args[0].Type(), in.Args[0].Ref(), in.Args[1].Ref())
	case OpFPToSI, OpFPTrunc, OpFPExt:
		body = fmt.Sprintf("%s %s %s to %s", in.Op, in.Args[0].Type(), in.Args[0].Ref(), in.Typ)
	case OpExtractElement:
		body = fmt.Sprintf("extractelement %s %s, %d", in.Args[0].Type(), in.Args[0].Ref(), in.Index)
	case OpInsertElement:
		body = fmt.Sprintf("insertelement %s %s, %s, %d", in.Typ, in.Args[0].Ref(), in.Args[1].Ref(), in.Index)
	case OpShuffleVector:
		body = fmt.Sprintf("shufflevector %s %s, %s, <%d, %d>", in.Typ, in.Args[0].Ref(), in.Args[1].Ref(), in.Mask[0], in.Mask[1])
	case OpCall:
		args := make([]string, len(in.Args))
		for i, a := range in.Args {
			args[i] = a.Ref()
		}
		body = fmt.Sprintf("call %s @%s(%s)", in.Typ, in.Callee.Name, strings.Join(args, ", "))
	case OpAlloca:
		body = fmt.Sprintf("alloca %s", in.Elem)
	case OpLoad:
		body = fmt.Sprintf("load %s, %s", in.Typ, in.Args[0].Ref())
	case OpStore:
		body = fmt.Sprintf("store %s %s, %s", in.Elem, in.Args[0].Ref(), in.Args[1].Ref())
	case OpFieldPtr:
		body = fmt.Sprintf("fieldptr %s %s, %d", in.Elem, in.Args[0].Ref(), in.Index)
	case OpElemPtr:
		body = fmt.Sprintf("elemptr %s %s, %s", in.Elem, in.Args[0].Ref(), in.Args[1].Ref())
	case OpBr:
		body = fmt.Sprintf("br %s", in.Targets[0].Ref())
	case OpCondBr:
		body = fmt.Sprintf("condbr %s, %s, %s", in.Args[0].Ref(), in.Targets[0].Ref(), in.Targets[1].Ref())
	case OpRet:
		body = "ret"
	default:
		body = in.Op.String()
	}
	if in.ID < 0 {
		return body
	}
	return fmt.Sprintf("%s = %s", in.Ref(), body)
}
