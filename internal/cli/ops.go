package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/synthgen/internal/codegen"
)

// OpInfo describes one registered generator.
type OpInfo struct {
	Key       string `json:"key"`
	Op        string `json:"op"`
	Form      string `json:"form,omitempty"`
	Signature string `json:"signature"`
}

// NewOpsCommand creates the ops command.
func NewOpsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operations patches can use",
		Long: `List every registered generator with its operand signature.

Conversions are listed once per accepted source form.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOps(rootOpts, cmd)
		},
	}
}

func runOps(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	ops, err := ListOps(codegen.Default())
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}
	if formatter.Format == "json" {
		return formatter.Success(ops)
	}
	for _, op := range ops {
		fmt.Fprintf(formatter.Writer, "%-20s %s\n", op.Key, op.Signature)
	}
	return nil
}

// ListOps describes every key in reg, in registry order.
func ListOps(reg *codegen.Registry) ([]OpInfo, error) {
	keys := reg.Keys()
	out := make([]OpInfo, 0, len(keys))
	for _, k := range keys {
		info := OpInfo{Key: k.String(), Op: k.Op.String()}
		if k.Op.IsConversion() {
			info.Form = k.Form.String()
			info.Signature = codegen.Signature{Args: []codegen.ArgKind{codegen.ArgNum}}.String()
		} else {
			fn, err := reg.Function(k.Op)
			if err != nil {
				return nil, err
			}
			info.Signature = fn.Signature().String()
		}
		out = append(out, info)
	}
	return out, nil
}
