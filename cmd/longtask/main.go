// Command longtask generates long main-thread tasks for profilers to observe.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "longtask",
		Usage: "generate long main-thread tasks for profiling tools",
		Commands: []*cli.Command{
			RunCommand(),
			SpinCommand(),
			PrimesCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
