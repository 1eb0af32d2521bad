package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/prop"
)

type PropRepository struct {
	mu    sync.RWMutex
	items map[string]prop.Prop
}

func NewPropRepository() *PropRepository {
	return &PropRepository{items: make(map[string]prop.Prop)}
}

// UpsertMany overwrites rows by conflict key, matching ON CONFLICT DO UPDATE.
func (r *PropRepository) UpsertMany(_ context.Context, items []prop.Prop) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if item.ConflictKey == "" {
			item = item.WithKey()
		}
		r.items[item.ConflictKey] = item
	}
	return nil
}

func (r *PropRepository) ListByDate(_ context.Context, league string, date time.Time) ([]prop.Prop, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	league = leagueKey(league)
	out := make([]prop.Prop, 0)
	for _, item := range r.items {
		if item.League == league && sameDay(item.Date, date) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ConflictKey < out[j].ConflictKey })
	return out, nil
}

func (r *PropRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
