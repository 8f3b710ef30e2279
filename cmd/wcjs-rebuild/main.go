// Command wcjs-rebuild compiles the WebChimera.js native module for the
// host runtime selected through npm_config_wcjs_* variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
)

func main() {
	os.Exit(execute(context.Background(), newApp(), os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit status.
func execute(ctx context.Context, a *app, args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) && exitErr.Code != 0 {
			return exitErr.Code
		}
		return 1
	}
	return 0
}
