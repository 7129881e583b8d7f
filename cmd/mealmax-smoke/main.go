package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mealmax/mealmax-smoke/internal/client"
	"github.com/mealmax/mealmax-smoke/internal/config"
	"github.com/mealmax/mealmax-smoke/internal/metrics"
	"github.com/mealmax/mealmax-smoke/internal/report"
	"github.com/mealmax/mealmax-smoke/internal/smoke"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags, err := config.ParseArgs(config.RunConfig{}, args)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}
	cfg := config.Load()
	if flags.EchoJSON {
		cfg.EchoJSON = true
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := cfg.Validate(); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.NewRecorder()
	c := client.New(cfg.BaseURL, &http.Client{Timeout: cfg.Timeout})
	runner := smoke.NewRunner(cfg, c, stdout, stderr, smoke.WithObserver(rec))

	slog.Info("smoke run starting", "baseUrl", cfg.BaseURL, "echoJson", cfg.EchoJSON)
	res := runner.Run(ctx, smoke.DefaultPlan())
	rec.ObserveRun(res.Passed(), res.Started, res.Finished)
	slog.Info("smoke run finished", "runId", res.RunID, "passed", res.Passed(), "steps", len(res.Steps))

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, res); err != nil {
			slog.Error("report", "path", cfg.ReportPath, "err", err)
		}
	}
	if cfg.MetricsPath != "" {
		if err := rec.WriteTextfile(cfg.MetricsPath); err != nil {
			slog.Error("metrics", "path", cfg.MetricsPath, "err", err)
		}
	}

	return res.ExitCode()
}
