package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/riskibarqy/propline/internal/domain/analytics"
)

type AnalyticsRepository struct {
	mu       sync.RWMutex
	props    map[string]analytics.PropAnalytics
	rankings map[string][]analytics.MatchupRanking
}

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{
		props:    make(map[string]analytics.PropAnalytics),
		rankings: make(map[string][]analytics.MatchupRanking),
	}
}

func (r *AnalyticsRepository) UpsertPropAnalytics(_ context.Context, items []analytics.PropAnalytics) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		r.props[item.ConflictKey] = item
	}
	return nil
}

func (r *AnalyticsRepository) ReplaceMatchupRankings(_ context.Context, league string, season int, items []analytics.MatchupRanking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]analytics.MatchupRanking, len(items))
	copy(out, items)
	r.rankings[rankingKey(league, season)] = out
	return nil
}

func (r *AnalyticsRepository) PropAnalytics(conflictKey string) (analytics.PropAnalytics, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.props[conflictKey]
	return item, ok
}

func (r *AnalyticsRepository) MatchupRankings(league string, season int) []analytics.MatchupRanking {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rankings[rankingKey(league, season)]
}

func rankingKey(league string, season int) string {
	return leagueKey(league) + "|" + strconv.Itoa(season)
}
