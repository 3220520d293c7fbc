// Command synthgen compiles CUE audio patches into vector IR.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/synthgen/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	if err != nil {
		// stdout carries the formatted report; stderr gets the summary
		fmt.Fprintln(os.Stderr, "synthgen:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
