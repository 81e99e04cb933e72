package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Swind/go-longtask/generator"
)

func SpinCommand() *cli.Command {
	return &cli.Command{
		Name:  "spin",
		Usage: "busy-wait the calling goroutine for a duration",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "duration",
				Aliases: []string{"d"},
				Value:   650 * time.Millisecond,
				Usage:   "how long to busy-wait",
			},
		},
		Action: SpinAction,
	}
}

func SpinAction(c *cli.Context) error {
	d := c.Duration("duration")
	if d < 0 {
		return cli.Exit("duration must not be negative", 1)
	}

	start := time.Now()
	generator.SimulateLongTask(d)
	fmt.Fprintf(c.App.Writer, "spun for %v (requested %v)\n", time.Since(start).Round(time.Microsecond), d)
	return nil
}
