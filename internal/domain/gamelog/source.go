package gamelog

import (
	"context"
	"time"
)

// Source fetches observed performances for one league and game date.
type Source interface {
	FetchPerformances(ctx context.Context, league string, date time.Time) ([]Performance, error)
}
