package usecase

import (
	"context"
	"strings"

	"github.com/riskibarqy/propline/internal/platform/id"
)

type runIDKey struct{}

// WithRunID attaches a batch run id to ctx.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey{}, strings.TrimSpace(runID))
}

// RunIDFromContext returns the run id attached by WithRunID.
func RunIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(runIDKey{}).(string)
	return v
}

// ensureRunID reuses the caller's run id or mints a new one.
func ensureRunID(ctx context.Context, gen id.Generator) (context.Context, string) {
	if existing := RunIDFromContext(ctx); existing != "" {
		return ctx, existing
	}
	if gen == nil {
		return ctx, ""
	}
	runID, err := gen.NewID()
	if err != nil {
		return ctx, ""
	}
	return WithRunID(ctx, runID), runID
}
