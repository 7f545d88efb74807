package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, &env{}, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line and always releases what setup opened.
func run(ctx context.Context, e *env, args []string, out io.Writer) error {
	defer e.close()
	root := newRootCmd(e)
	root.SetArgs(args)
	root.SetOut(out)
	return root.ExecuteContext(ctx)
}
