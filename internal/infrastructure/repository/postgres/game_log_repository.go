package postgres

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

const gameLogsTable = "game_logs"

var gameLogColumns = []string{
	"conflict_key",
	"player_id",
	"player_name",
	"team",
	"opponent",
	"league",
	"season",
	"game_date",
	"prop_type",
	"value",
	"game_id",
	"sportsbook",
	"line",
	"over_odds",
	"under_odds",
	"hit_result",
	"result",
	"difference",
	"prop_conflict_key",
	"updated_at",
}

type GameLogRepository struct {
	db *sqlx.DB
}

func NewGameLogRepository(db *sqlx.DB) *GameLogRepository {
	return &GameLogRepository{db: db}
}

func (r *GameLogRepository) UpsertMany(ctx context.Context, items []gamelog.GameLog) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]gameLogUpsertModel, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		updatedAt := item.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = now
		}
		model := gameLogUpsertModel{
			ConflictKey:     item.ConflictKey,
			PlayerID:        item.PlayerID,
			PlayerName:      item.PlayerName,
			Team:            item.Team,
			Opponent:        item.Opponent,
			League:          leagueKey(item.League),
			Season:          item.Season,
			GameDate:        gameDate(item.Date),
			PropType:        item.PropType,
			Value:           item.Value,
			GameID:          item.GameID,
			Sportsbook:      item.Sportsbook,
			Line:            floatPtrToNull(item.Line),
			OverOdds:        intPtrToNull(item.OverOdds),
			UnderOdds:       intPtrToNull(item.UnderOdds),
			HitResult:       intPtrToNull(item.HitResult),
			Result:          item.Result,
			Difference:      floatPtrToNull(item.Difference),
			PropConflictKey: item.PropConflictKey,
			UpdatedAt:       updatedAt,
		}
		if i, ok := index[item.ConflictKey]; ok {
			models[i] = model
			continue
		}
		index[item.ConflictKey] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.UpsertModels(gameLogsTable, models, "conflict_key")
	if err != nil {
		return fmt.Errorf("build upsert game logs query: %w", err)
	}

	return withTx(ctx, r.db, "upsert game logs", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert game logs count=%d: %w", len(models), err)
		}
		return nil
	})
}

func (r *GameLogRepository) ListByDate(ctx context.Context, league string, date time.Time) ([]gamelog.GameLog, error) {
	return r.list(ctx, "list game logs by date",
		qb.Select(gameLogColumns...).From(gameLogsTable).
			Where(
				qb.Eq("league", leagueKey(league)),
				qb.Eq("game_date", gameDate(date)),
			).
			OrderBy("game_date", "conflict_key"),
	)
}

// ListHistory returns the player's logs strictly before query.Before, newest first.
func (r *GameLogRepository) ListHistory(ctx context.Context, query gamelog.HistoryQuery) ([]gamelog.GameLog, error) {
	conditions := []qb.Condition{
		qb.Eq("league", leagueKey(query.League)),
		qb.Eq("player_id", query.PlayerID),
		qb.Eq("prop_type", query.PropType),
	}
	if !query.Before.IsZero() {
		conditions = append(conditions, qb.Lt("game_date", gameDate(query.Before)))
	}
	builder := qb.Select(gameLogColumns...).From(gameLogsTable).
		Where(conditions...).
		OrderBy("game_date DESC", "conflict_key")
	if query.Limit > 0 {
		builder = builder.Limit(query.Limit)
	}
	return r.list(ctx, "list game log history", builder)
}

func (r *GameLogRepository) ListByLeagueSeason(ctx context.Context, league string, season int) ([]gamelog.GameLog, error) {
	return r.list(ctx, "list game logs by season",
		qb.Select(gameLogColumns...).From(gameLogsTable).
			Where(
				qb.Eq("league", leagueKey(league)),
				qb.Eq("season", season),
			).
			OrderBy("game_date", "conflict_key"),
	)
}

func (r *GameLogRepository) ListSupportedPropTypes(ctx context.Context) (map[string][]string, error) {
	query, args, err := qb.SelectDistinct("league", "prop_type").From(gameLogsTable).
		OrderBy("league", "prop_type").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list supported prop types query: %w", err)
	}

	var rows []supportedPropTypeRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list supported prop types: %w", err)
	}

	out := make(map[string][]string)
	for _, row := range rows {
		out[row.League] = append(out[row.League], row.PropType)
	}
	for league := range out {
		sort.Strings(out[league])
	}
	return out, nil
}

func (r *GameLogRepository) list(ctx context.Context, name string, builder *qb.SelectBuilder) ([]gamelog.GameLog, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", name, err)
	}

	var rows []gameLogTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	out := make([]gamelog.GameLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameLogFromRow(row))
	}
	return out, nil
}

func gameLogFromRow(row gameLogTableModel) gamelog.GameLog {
	return gamelog.GameLog{
		ConflictKey:     row.ConflictKey,
		PlayerID:        row.PlayerID,
		PlayerName:      row.PlayerName,
		Team:            row.Team,
		Opponent:        row.Opponent,
		League:          row.League,
		Season:          row.Season,
		Date:            row.GameDate.UTC(),
		PropType:        row.PropType,
		Value:           row.Value,
		GameID:          row.GameID,
		Sportsbook:      row.Sportsbook,
		Line:            nullFloatPtr(row.Line),
		OverOdds:        nullIntPtr(row.OverOdds),
		UnderOdds:       nullIntPtr(row.UnderOdds),
		HitResult:       nullIntPtr(row.HitResult),
		Result:          row.Result,
		Difference:      nullFloatPtr(row.Difference),
		PropConflictKey: row.PropConflictKey,
		UpdatedAt:       row.UpdatedAt,
	}
}
