package team

import "context"

// Repository reads the team registry.
type Repository interface {
	ListByLeague(ctx context.Context, league string) ([]Team, error)
}
