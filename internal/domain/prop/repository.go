package prop

import (
	"context"
	"time"
)

// Repository persists prop lines keyed on ConflictKey.
type Repository interface {
	UpsertMany(ctx context.Context, items []Prop) error
	ListByDate(ctx context.Context, league string, date time.Time) ([]Prop, error)
}
