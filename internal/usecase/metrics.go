package usecase

import "context"

// Metrics receives pipeline measurements. Implementations must be safe for
// concurrent use.
type Metrics interface {
	RecordFetchTier(ctx context.Context, league string, tier int)
	RecordRejected(ctx context.Context, league, reason string, count int)
	RecordStored(ctx context.Context, table string, stored, failed int)
	RecordMatchRate(ctx context.Context, league string, rate float64)
}

type noopMetrics struct{}

func (noopMetrics) RecordFetchTier(context.Context, string, int)        {}
func (noopMetrics) RecordRejected(context.Context, string, string, int) {}
func (noopMetrics) RecordStored(context.Context, string, int, int)      {}
func (noopMetrics) RecordMatchRate(context.Context, string, float64)    {}

func metricsOrNoop(m Metrics) Metrics {
	if m == nil {
		return noopMetrics{}
	}
	return m
}
