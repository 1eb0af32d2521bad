package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/propline/internal/domain/player"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) ListByLeague(ctx context.Context, league string) ([]player.Player, error) {
	query, args, err := qb.Select("id", "league", "name", "team", "position", "aliases", "updated_at").
		From("players").
		Where(qb.Eq("league", leagueKey(league))).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by league query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by league: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:       row.ID,
			League:   row.League,
			Name:     row.Name,
			Team:     row.Team,
			Position: row.Position,
			Aliases:  append([]string(nil), row.Aliases...),
		})
	}
	return out, nil
}

func (r *PlayerRepository) UpsertMany(ctx context.Context, items []player.Player) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]playerUpsertModel, 0, len(items))
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("player %q: %w", item.ID, err)
		}
		models = append(models, playerUpsertModel{
			ID:        strings.TrimSpace(item.ID),
			League:    leagueKey(item.League),
			Name:      strings.TrimSpace(item.Name),
			Team:      strings.ToUpper(strings.TrimSpace(item.Team)),
			Position:  strings.TrimSpace(item.Position),
			Aliases:   pq.Array(nonNilStrings(item.Aliases)),
			UpdatedAt: now,
		})
	}

	query, args, err := qb.UpsertModels("players", models, "id")
	if err != nil {
		return fmt.Errorf("build upsert players query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert players count=%d: %w", len(models), err)
	}
	return nil
}

// MissingPlayerRepository is the diagnostics sink for unresolved names, one
// row per (league, normalized_name).
type MissingPlayerRepository struct {
	db *sqlx.DB
}

func NewMissingPlayerRepository(db *sqlx.DB) *MissingPlayerRepository {
	return &MissingPlayerRepository{db: db}
}

func (r *MissingPlayerRepository) Record(ctx context.Context, item player.MissingPlayer) error {
	seenAt := item.SeenAt
	if seenAt.IsZero() {
		seenAt = time.Now().UTC()
	}

	query, args, err := qb.UpsertModels("missing_players", []missingPlayerUpsertModel{{
		League:         leagueKey(item.League),
		NormalizedName: item.NormalizedName,
		Name:           item.Name,
		Team:           item.Team,
		GeneratedID:    item.GeneratedID,
		SampleSource:   item.SampleSource,
		RunID:          item.RunID,
		FirstSeenAt:    seenAt,
		LastSeenAt:     seenAt,
	}}, "league", "normalized_name")
	if err != nil {
		return fmt.Errorf("build record missing player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record missing player league=%s name=%s: %w", item.League, item.NormalizedName, err)
	}
	return nil
}

func (r *MissingPlayerRepository) Clear(ctx context.Context, league, normalizedName string) error {
	query, args, err := qb.DeleteFrom("missing_players").
		Where(
			qb.Eq("league", leagueKey(league)),
			qb.Eq("normalized_name", normalizedName),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear missing player query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear missing player league=%s name=%s: %w", league, normalizedName, err)
	}
	return nil
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
