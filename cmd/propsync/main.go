package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/riskibarqy/propline/internal/app"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/observability"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

func main() {
	os.Exit(realMain(os.Args[1:]))
}

func realMain(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 2
	}
	cmd, ok := lookupCommand(args[0])
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage(os.Stderr)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}

	logger := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		Service:        cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.AppEnv,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	today := time.Now().In(cfg.GameDateLocation)
	input, err := cmd.parse(args[1:], today)
	if err != nil {
		if errors.Is(err, errHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "%s: %v\n", cmd.name, err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer flush(logger, "uptrace", shutdownTracing)

	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		logger.Error("init pyroscope", "error", err)
		return 1
	}
	defer func() {
		if err := stopProfiler(); err != nil {
			logger.Warn("stop pyroscope", "error", err)
		}
	}()

	recorder, handler, shutdownMetrics, err := observability.SetupMetrics(cfg.MetricsEnabled)
	if err != nil {
		logger.Error("init metrics", "error", err)
		return 1
	}
	defer flush(logger, "metrics", shutdownMetrics)
	defer flush(logger, "metrics server", observability.ServeMetrics(cfg.MetricsAddr, handler, logger))

	var metrics usecase.Metrics
	if recorder != nil {
		metrics = recorder
	}
	rt, err := app.New(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("build runtime", "error", err)
		return 1
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Warn("close runtime", "error", err)
		}
	}()

	ctx, span := otel.Tracer("propline/cmd/propsync").Start(ctx, "propsync."+cmd.name)
	defer span.End()

	logger.InfoContext(ctx, "propsync command starting", "command", cmd.name)
	report, err := cmd.run(ctx, rt, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorContext(ctx, "propsync command failed", "command", cmd.name, "error", err)
		return 1
	}
	if err := writeReport(os.Stdout, report); err != nil {
		logger.Error("write report", "error", err)
		return 1
	}
	return 0
}

func writeReport(w io.Writer, report any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	raw = append(raw, '\n')
	_, err = w.Write(raw)
	return err
}

func flush(logger *logging.Logger, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn("shutdown failed", "component", name, "error", err)
	}
}
