package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
)

type countingTeams struct {
	calls int
	next  team.Repository
}

func (c *countingTeams) ListByLeague(ctx context.Context, league string) ([]team.Team, error) {
	c.calls++
	return c.next.ListByLeague(ctx, league)
}

func TestTeamRepositoryCachesPerLeague(t *testing.T) {
	t.Parallel()

	inner := &countingTeams{next: memory.NewTeamRepository([]team.Team{{League: "nfl", Abbreviation: "KC", Name: "Kansas City Chiefs"}})}
	repo := NewTeamRepository(inner, time.Minute)

	for i := 0; i < 3; i++ {
		items, err := repo.ListByLeague(context.Background(), "nfl")
		if err != nil {
			t.Fatalf("list teams: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("unexpected teams: %+v", items)
		}
		items[0].Name = "mutated"
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream call, got=%d", inner.calls)
	}

	items, _ := repo.ListByLeague(context.Background(), "nfl")
	if items[0].Name != "Kansas City Chiefs" {
		t.Fatalf("cached slice leaked a caller mutation: %+v", items[0])
	}
}

func TestGameLogRepositoryInvalidatesSupportedTypesOnWrite(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := NewGameLogRepository(memory.NewGameLogRepository([]gamelog.GameLog{
		{ConflictKey: "a", League: "nba", PropType: "points"},
	}), time.Hour)

	got, err := repo.ListSupportedPropTypes(ctx)
	if err != nil || len(got["nba"]) != 1 {
		t.Fatalf("unexpected supported types: %v err=%v", got, err)
	}

	if err := repo.UpsertMany(ctx, []gamelog.GameLog{{ConflictKey: "b", League: "nba", PropType: "rebounds"}}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err = repo.ListSupportedPropTypes(ctx)
	if err != nil || len(got["nba"]) != 2 {
		t.Fatalf("expected refreshed supported types, got=%v err=%v", got, err)
	}
}
