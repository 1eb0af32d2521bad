package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
)

type GameLogRepository struct {
	mu    sync.RWMutex
	items map[string]gamelog.GameLog
}

func NewGameLogRepository(seed []gamelog.GameLog) *GameLogRepository {
	r := &GameLogRepository{items: make(map[string]gamelog.GameLog)}
	_ = r.UpsertMany(context.Background(), seed)
	return r
}

func (r *GameLogRepository) UpsertMany(_ context.Context, items []gamelog.GameLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		item.League = leagueKey(item.League)
		r.items[item.ConflictKey] = item
	}
	return nil
}

func (r *GameLogRepository) ListByDate(_ context.Context, league string, date time.Time) ([]gamelog.GameLog, error) {
	return r.filter(func(item gamelog.GameLog) bool {
		return item.League == leagueKey(league) && sameDay(item.Date, date)
	}), nil
}

func (r *GameLogRepository) ListHistory(_ context.Context, query gamelog.HistoryQuery) ([]gamelog.GameLog, error) {
	out := r.filter(func(item gamelog.GameLog) bool {
		return item.League == leagueKey(query.League) &&
			item.PlayerID == query.PlayerID &&
			item.PropType == query.PropType &&
			(query.Before.IsZero() || item.Date.Before(query.Before))
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *GameLogRepository) ListByLeagueSeason(_ context.Context, league string, season int) ([]gamelog.GameLog, error) {
	return r.filter(func(item gamelog.GameLog) bool {
		return item.League == leagueKey(league) && item.Season == season
	}), nil
}

func (r *GameLogRepository) ListSupportedPropTypes(_ context.Context) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]map[string]struct{})
	for _, item := range r.items {
		if seen[item.League] == nil {
			seen[item.League] = make(map[string]struct{})
		}
		seen[item.League][item.PropType] = struct{}{}
	}
	out := make(map[string][]string, len(seen))
	for league, types := range seen {
		for t := range types {
			out[league] = append(out[league], t)
		}
		sort.Strings(out[league])
	}
	return out, nil
}

func (r *GameLogRepository) filter(keep func(gamelog.GameLog) bool) []gamelog.GameLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]gamelog.GameLog, 0)
	for _, item := range r.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ConflictKey < out[j].ConflictKey
	})
	return out
}
