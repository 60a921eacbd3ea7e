package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tkjaer/echobench/internal/bench"
	"github.com/tkjaer/echobench/internal/config"
	"github.com/tkjaer/echobench/internal/output"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args, err := config.ParseArgs()
	if err != nil {
		return err
	}

	logFile, err := config.SetupLogging(args)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Ctrl+C aborts the run; there is no partial result.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []output.Output
	if args.JsonFile != "" {
		jsonOut, err := output.NewJSONOutput(args.JsonFile)
		if err != nil {
			return fmt.Errorf("failed to create JSON output: %w", err)
		}
		extra = append(extra, jsonOut)
	}
	if args.MetricsAddr != "" {
		metrics := output.NewMetricsOutput()
		if _, err := metrics.Serve(ctx, args.MetricsAddr); err != nil {
			closeOutputs(extra)
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		extra = append(extra, metrics)
	}

	// NewBenchmark closes extra itself when it fails.
	b, err := bench.NewBenchmark(args, extra...)
	if err != nil {
		return err
	}
	defer b.Close()

	slog.Debug("Starting echo benchmark",
		"host", args.Host,
		"port", args.Port,
		"rounds", args.Rounds,
		"workers", args.Workers,
		"output", args.Output,
	)

	if err := b.Run(ctx); err != nil {
		return err
	}

	slog.Debug("Echo benchmark completed")
	return nil
}

func closeOutputs(outputs []output.Output) {
	for _, o := range outputs {
		if err := o.Close(); err != nil {
			slog.Debug("Failed to close output", "error", err)
		}
	}
}
