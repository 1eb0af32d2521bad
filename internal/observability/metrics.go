package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/riskibarqy/propline"

// Recorder publishes pipeline counters through an OpenTelemetry meter backed
// by a Prometheus registry. A nil Recorder drops every measurement.
type Recorder struct {
	fetchTier metric.Int64Counter
	rejected  metric.Int64Counter
	stored    metric.Int64Counter
	matchRate metric.Float64Histogram
}

// SetupMetrics builds the meter provider and returns the recorder, the scrape
// handler and a shutdown hook. When disabled the recorder is nil and the
// handler is nil.
func SetupMetrics(enabled bool) (*Recorder, http.Handler, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !enabled {
		return nil, nil, noop, nil
	}

	reg := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, noop, err
	}
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	rec, err := newRecorder(provider.Meter(meterName))
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, nil, noop, err
	}
	return rec, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), provider.Shutdown, nil
}

func newRecorder(meter metric.Meter) (*Recorder, error) {
	fetchTier, err := meter.Int64Counter("propline_fetch_tier",
		metric.WithDescription("Odds fetches by the fallback tier that produced events"))
	if err != nil {
		return nil, err
	}
	rejected, err := meter.Int64Counter("propline_rejected_odds",
		metric.WithDescription("Raw odds dropped during extraction by reason"))
	if err != nil {
		return nil, err
	}
	stored, err := meter.Int64Counter("propline_rows_written",
		metric.WithDescription("Rows written by table and outcome"))
	if err != nil {
		return nil, err
	}
	matchRate, err := meter.Float64Histogram("propline_match_rate",
		metric.WithDescription("Share of prop lines matched to a game log per settlement run"))
	if err != nil {
		return nil, err
	}

	return &Recorder{
		fetchTier: fetchTier,
		rejected:  rejected,
		stored:    stored,
		matchRate: matchRate,
	}, nil
}

func (r *Recorder) RecordFetchTier(ctx context.Context, league string, tier int) {
	if r == nil {
		return
	}
	r.fetchTier.Add(ctx, 1, metric.WithAttributes(
		attribute.String("league", league),
		attribute.String("tier", strconv.Itoa(tier)),
	))
}

func (r *Recorder) RecordRejected(ctx context.Context, league, reason string, count int) {
	if r == nil || count <= 0 {
		return
	}
	r.rejected.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("league", league),
		attribute.String("reason", reason),
	))
}

func (r *Recorder) RecordStored(ctx context.Context, table string, stored, failed int) {
	if r == nil {
		return
	}
	if stored > 0 {
		r.stored.Add(ctx, int64(stored), metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("outcome", "stored"),
		))
	}
	if failed > 0 {
		r.stored.Add(ctx, int64(failed), metric.WithAttributes(
			attribute.String("table", table),
			attribute.String("outcome", "failed"),
		))
	}
}

func (r *Recorder) RecordMatchRate(ctx context.Context, league string, rate float64) {
	if r == nil {
		return
	}
	r.matchRate.Record(ctx, rate, metric.WithAttributes(attribute.String("league", league)))
}

// ServeMetrics exposes handler on addr until the returned stop function runs.
func ServeMetrics(addr string, handler http.Handler, logger *logging.Logger) func(context.Context) error {
	if logger == nil {
		logger = logging.Default()
	}
	if handler == nil || addr == "" {
		return func(context.Context) error { return nil }
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("metrics server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	return srv.Shutdown
}
