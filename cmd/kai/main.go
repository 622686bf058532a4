// Command kai analyses product labels from the terminal and keeps a local history.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(openSession).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
