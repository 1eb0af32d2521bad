package player

import "context"

// Repository reads the canonical players registry.
type Repository interface {
	ListByLeague(ctx context.Context, league string) ([]Player, error)
}

// MissingRepository is the diagnostics sink for unresolved player names.
type MissingRepository interface {
	Record(ctx context.Context, item MissingPlayer) error
	Clear(ctx context.Context, league, normalizedName string) error
}
