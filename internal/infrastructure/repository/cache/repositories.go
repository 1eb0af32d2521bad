package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/team"
	basecache "github.com/riskibarqy/propline/internal/platform/cache"
)

// TeamRepository caches team registries per league.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store[[]team.Team]
}

func NewTeamRepository(next team.Repository, ttl time.Duration) *TeamRepository {
	return &TeamRepository{next: next, cache: basecache.NewStore[[]team.Team](ttl)}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, league string) ([]team.Team, error) {
	items, err := r.cache.GetOrLoad(ctx, "team:list:"+league, func(ctx context.Context) ([]team.Team, error) {
		items, err := r.next.ListByLeague(ctx, league)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]team.Team(nil), items...), nil
}

const supportedPropTypesKey = "gamelog:supported"

// GameLogRepository caches the supported prop type allow-list and drops it
// whenever new game logs are written.
type GameLogRepository struct {
	gamelog.Repository
	cache *basecache.Store[map[string][]string]
}

func NewGameLogRepository(next gamelog.Repository, ttl time.Duration) *GameLogRepository {
	return &GameLogRepository{Repository: next, cache: basecache.NewStore[map[string][]string](ttl)}
}

func (r *GameLogRepository) UpsertMany(ctx context.Context, items []gamelog.GameLog) error {
	err := r.Repository.UpsertMany(ctx, items)
	r.cache.Invalidate(supportedPropTypesKey)
	return err
}

func (r *GameLogRepository) ListSupportedPropTypes(ctx context.Context) (map[string][]string, error) {
	items, err := r.cache.GetOrLoad(ctx, supportedPropTypesKey, r.Repository.ListSupportedPropTypes)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(items))
	for league, types := range items {
		out[league] = append([]string(nil), types...)
	}
	return out, nil
}
