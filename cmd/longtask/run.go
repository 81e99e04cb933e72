package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Swind/go-longtask/config"
	"github.com/Swind/go-longtask/core"
	"github.com/Swind/go-longtask/generator"
	obs "github.com/Swind/go-longtask/observability/prometheus"
	"github.com/Swind/go-longtask/observability/profiling"
	"github.com/Swind/go-longtask/page"
)

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "load a document and run the seeded long-task plan on the main thread",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file",
			},
			&cli.DurationFlag{
				Name:  "load-delay",
				Usage: "time before the document load event fires; 0 seeds from an already loaded document",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "listen address for /metrics and profiling endpoints (overrides config)",
			},
			&cli.BoolFlag{
				Name:  "serve",
				Usage: "keep serving after the plan completes until interrupted",
			},
			&cli.BoolFlag{
				Name:  "datadog",
				Usage: "start the Datadog continuous profiler",
			},
		},
		Action: RunAction,
	}
}

func RunAction(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
		}
		cfg = loaded
	}
	if addr := c.String("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	if c.Bool("datadog") {
		cfg.Profiling.Datadog.Enabled = true
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, c.Duration("load-delay"), c.Bool("serve"), c.App.Writer); err != nil {
		return cli.Exit(fmt.Sprintf("Failed: %v", err), 1)
	}
	return nil
}

func run(ctx context.Context, cfg *config.Config, loadDelay time.Duration, serve bool, out io.Writer) error {
	logger, err := cfg.Log.NewLogger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Profiling.Datadog.Enabled {
		stopProfiler, err := profiling.StartDatadog(profiling.DatadogOptions{
			Service: cfg.Profiling.Datadog.Service,
			Env:     cfg.Profiling.Datadog.Env,
			Version: cfg.Profiling.Datadog.Version,
		})
		if err != nil {
			return err
		}
		defer stopProfiler()
	}

	reg := prometheus.NewRegistry()
	exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
	if err != nil {
		return fmt.Errorf("metrics exporter: %w", err)
	}
	poller, err := obs.NewSnapshotPoller(cfg.Metrics.Namespace, reg, cfg.Metrics.PollInterval)
	if err != nil {
		return fmt.Errorf("snapshot poller: %w", err)
	}

	runner := core.NewMainThread(&core.MainThreadConfig{
		Name:              cfg.MainThread.Name,
		Logger:            logger,
		Metrics:           exporter,
		LongTaskThreshold: cfg.MainThread.LongTaskThreshold,
		HistoryCapacity:   cfg.MainThread.HistoryCapacity,
	})
	defer runner.Stop()

	poller.AddRunner(runner.Name(), runner)
	poller.Start(ctx)
	defer poller.Stop()

	console := generator.NewConsole(logger)
	gen := generator.New(console)

	server := &http.Server{
		Addr:              cfg.Metrics.Addr,
		Handler:           newMux(reg, runner, gen, profiling.Options{Pprof: cfg.Profiling.Pprof, Fgprof: cfg.Profiling.Fgprof}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	var doc *page.Document
	if loadDelay > 0 {
		doc = page.NewDocument(runner)
	} else {
		doc = page.NewLoadedDocument(runner)
	}
	seeding := generator.Bootstrap(doc, runner, cfg.GeneratorPlan(), console)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", core.F("addr", cfg.Metrics.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		if loadDelay > 0 {
			select {
			case <-time.After(loadDelay):
				doc.Load()
			case <-gctx.Done():
				return nil
			}
		}

		if err := seeding.Wait(gctx, 50*time.Millisecond); err != nil {
			return ignoreCanceled(err)
		}
		if err := runner.WaitIdle(gctx); err != nil {
			return ignoreCanceled(err)
		}
		report(out, runner)

		if serve {
			<-gctx.Done()
		}
		return nil
	})

	return g.Wait()
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func report(out io.Writer, runner *core.MainThread) {
	entries := runner.LongTasks()
	header := color.New(color.FgCyan, color.Bold)
	long := color.New(color.FgYellow)

	header.Fprintf(out, "%d long task(s) on %s\n", len(entries), runner.Name())
	for _, e := range entries {
		long.Fprintf(out, "  %-22s %10v  at %s\n", e.Name, e.Duration.Round(time.Microsecond), humanize.Time(e.StartTime))
	}

	summary, err := core.SummarizeLongTasks(entries)
	if err != nil {
		return
	}
	fmt.Fprintf(out, "  total %v  mean %v  p50 %v  p95 %v  max %v\n",
		summary.Total.Round(time.Millisecond),
		summary.Mean.Round(time.Millisecond),
		summary.P50.Round(time.Millisecond),
		summary.P95.Round(time.Millisecond),
		summary.Max.Round(time.Millisecond),
	)
}
