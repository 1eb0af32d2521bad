package gamelog

import (
	"context"
	"time"
)

type Repository interface {
	UpsertMany(ctx context.Context, items []GameLog) error
	ListByDate(ctx context.Context, league string, date time.Time) ([]GameLog, error)
	ListHistory(ctx context.Context, query HistoryQuery) ([]GameLog, error)
	ListByLeagueSeason(ctx context.Context, league string, season int) ([]GameLog, error)
	// ListSupportedPropTypes returns the prop types observed in game logs,
	// keyed by league.
	ListSupportedPropTypes(ctx context.Context) (map[string][]string, error)
}
