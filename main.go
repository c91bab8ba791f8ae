// Command dirsize reports the disk footprint of a directory tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/idelchi/dirsize/internal/cli"
)

// version is set at build time.
var version = "unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.New(version).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}
