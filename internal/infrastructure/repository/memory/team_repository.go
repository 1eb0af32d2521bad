package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/propline/internal/domain/team"
)

type TeamRepository struct {
	mu            sync.RWMutex
	teamsByLeague map[string][]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	r := &TeamRepository{teamsByLeague: make(map[string][]team.Team)}
	_ = r.UpsertTeams(context.Background(), teams)
	return r
}

func (r *TeamRepository) ListByLeague(_ context.Context, league string) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	teams := r.teamsByLeague[leagueKey(league)]
	out := make([]team.Team, 0, len(teams))
	out = append(out, teams...)
	return out, nil
}

func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		league := leagueKey(item.League)
		abbr := strings.ToUpper(strings.TrimSpace(item.Abbreviation))
		if league == "" || abbr == "" {
			continue
		}
		item.League = league
		item.Abbreviation = abbr

		rows := r.teamsByLeague[league]
		updated := false
		for idx := range rows {
			if rows[idx].Abbreviation == abbr {
				rows[idx] = item
				updated = true
				break
			}
		}
		if !updated {
			rows = append(rows, item)
		}
		r.teamsByLeague[league] = rows
	}
	return nil
}

func leagueKey(league string) string {
	return strings.ToLower(strings.TrimSpace(league))
}
