// Command csvunion merges CSV tables from the command line.
//
//	csvunion merge cases=data/cases.csv deaths=s3://reports/deaths.csv --format columns
//	csvunion merge --manifest tables.yaml --format arrow --out merged.arrows
//	csvunion infer data/cases.csv
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/csvunion/internal/core"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		stop()
		os.Exit(1)
	}
}
