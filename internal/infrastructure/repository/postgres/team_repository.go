package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/propline/internal/domain/team"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) ListByLeague(ctx context.Context, league string) ([]team.Team, error) {
	query, args, err := qb.Select("league", "abbreviation", "name", "aliases", "logo_url", "updated_at").
		From("teams").
		Where(qb.Eq("league", leagueKey(league))).
		OrderBy("abbreviation").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams by league query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams by league: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, team.Team{
			League:       row.League,
			Abbreviation: row.Abbreviation,
			Name:         row.Name,
			Aliases:      append([]string(nil), row.Aliases...),
			LogoURL:      row.LogoURL,
		})
	}
	return out, nil
}

func (r *TeamRepository) UpsertMany(ctx context.Context, items []team.Team) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]teamUpsertModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("team %q: %w", item.Abbreviation, err)
		}
		models = append(models, teamUpsertModel{
			League:       leagueKey(item.League),
			Abbreviation: strings.ToUpper(strings.TrimSpace(item.Abbreviation)),
			Name:         strings.TrimSpace(item.Name),
			Aliases:      pq.Array(nonNilStrings(item.Aliases)),
			LogoURL:      strings.TrimSpace(item.LogoURL),
			UpdatedAt:    now,
		})
	}

	query, args, err := qb.UpsertModels("teams", models, "league", "abbreviation")
	if err != nil {
		return fmt.Errorf("build upsert teams query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert teams count=%d: %w", len(models), err)
	}
	return nil
}
