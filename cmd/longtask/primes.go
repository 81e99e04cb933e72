package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/Swind/go-longtask/config"
	"github.com/Swind/go-longtask/generator"
)

func PrimesCommand() *cli.Command {
	return &cli.Command{
		Name:  "primes",
		Usage: "count the primes below 50000 by trial division",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "zap log level",
			},
		},
		Action: PrimesAction,
	}
}

func PrimesAction(c *cli.Context) error {
	logger, err := config.LogConfig{Level: c.String("log-level")}.NewLogger()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	defer func() { _ = logger.Sync() }()

	count := generator.New(generator.NewConsole(logger)).GenerateLongTask()
	fmt.Fprintln(c.App.Writer, count)
	return nil
}
