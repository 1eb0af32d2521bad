package rawodds

import "context"

// Source fetches raw events from the upstream odds feed.
type Source interface {
	FetchEvents(ctx context.Context, query Query) ([]Event, error)
}
