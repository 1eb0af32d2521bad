package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/prop"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

const propLinesTable = "prop_lines"

var propLineColumns = []string{
	"conflict_key",
	"player_id",
	"player_name",
	"team",
	"opponent",
	"league",
	"season",
	"game_date",
	"prop_type",
	"line",
	"over_odds",
	"under_odds",
	"sportsbook",
	"game_id",
	"team_strategy",
	"identity_resolved",
	"created_at",
	"updated_at",
}

type PropRepository struct {
	db *sqlx.DB
}

func NewPropRepository(db *sqlx.DB) *PropRepository {
	return &PropRepository{db: db}
}

// UpsertMany writes the batch in one transaction. Rows sharing a conflict key
// collapse to the last one so a single statement never touches a row twice.
func (r *PropRepository) UpsertMany(ctx context.Context, items []prop.Prop) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]propLineUpsertModel, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		updatedAt := item.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		model := propLineUpsertModel{
			ConflictKey:      item.ConflictKey,
			PlayerID:         item.PlayerID,
			PlayerName:       item.PlayerName,
			Team:             item.Team,
			Opponent:         item.Opponent,
			League:           leagueKey(item.League),
			Season:           item.Season,
			GameDate:         gameDate(item.Date),
			PropType:         item.PropType,
			Line:             item.Line,
			OverOdds:         intPtrToNull(item.OverOdds),
			UnderOdds:        intPtrToNull(item.UnderOdds),
			Sportsbook:       item.Sportsbook,
			GameID:           item.GameID,
			TeamStrategy:     item.TeamStrategy,
			IdentityResolved: item.IdentityResolved,
			UpdatedAt:        updatedAt,
		}
		if i, ok := index[item.ConflictKey]; ok {
			models[i] = model
			continue
		}
		index[item.ConflictKey] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.UpsertModels(propLinesTable, models, "conflict_key")
	if err != nil {
		return fmt.Errorf("build upsert prop lines query: %w", err)
	}

	return withTx(ctx, r.db, "upsert prop lines", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert prop lines count=%d: %w", len(models), err)
		}
		return nil
	})
}

func (r *PropRepository) ListByDate(ctx context.Context, league string, date time.Time) ([]prop.Prop, error) {
	query, args, err := qb.Select(propLineColumns...).From(propLinesTable).
		Where(
			qb.Eq("league", leagueKey(league)),
			qb.Eq("game_date", gameDate(date)),
		).
		OrderBy("player_id", "prop_type", "conflict_key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prop lines by date query: %w", err)
	}

	var rows []propLineTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list prop lines by date: %w", err)
	}

	out := make([]prop.Prop, 0, len(rows))
	for _, row := range rows {
		out = append(out, propFromRow(row))
	}
	return out, nil
}

func propFromRow(row propLineTableModel) prop.Prop {
	return prop.Prop{
		ConflictKey:      row.ConflictKey,
		PlayerID:         row.PlayerID,
		PlayerName:       row.PlayerName,
		Team:             row.Team,
		Opponent:         row.Opponent,
		League:           row.League,
		Season:           row.Season,
		Date:             row.GameDate.UTC(),
		PropType:         row.PropType,
		Line:             row.Line,
		OverOdds:         nullIntPtr(row.OverOdds),
		UnderOdds:        nullIntPtr(row.UnderOdds),
		Sportsbook:       row.Sportsbook,
		GameID:           row.GameID,
		TeamStrategy:     row.TeamStrategy,
		IdentityResolved: row.IdentityResolved,
		UpdatedAt:        row.UpdatedAt,
	}
}
