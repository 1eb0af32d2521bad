package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/analytics"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) UpsertPropAnalytics(ctx context.Context, items []analytics.PropAnalytics) error {
	if len(items) == 0 {
		return nil
	}

	now := time.Now().UTC()
	models := make([]propAnalyticsUpsertModel, 0, len(items))
	index := make(map[string]int, len(items))
	for _, item := range items {
		computedAt := item.ComputedAt
		if computedAt.IsZero() {
			computedAt = now
		}
		model := propAnalyticsUpsertModel{
			ConflictKey:       item.ConflictKey,
			PlayerID:          item.PlayerID,
			PropType:          item.PropType,
			League:            leagueKey(item.League),
			GameDate:          gameDate(item.Date),
			EVPercent:         floatPtrToNull(item.EVPercent),
			Last5:             item.Last5,
			Last10:            item.Last10,
			Last20:            item.Last20,
			HeadToHead:        item.HeadToHead,
			StreakLength:      item.StreakLength,
			StreakDirection:   item.StreakDirection,
			StreakTier:        item.StreakTier,
			Signal:            item.Signal,
			MatchupPercentile: floatPtrToNull(item.MatchupPercentile),
			MatchupLabel:      item.MatchupLabel,
			ComputedAt:        computedAt,
		}
		if i, ok := index[item.ConflictKey]; ok {
			models[i] = model
			continue
		}
		index[item.ConflictKey] = len(models)
		models = append(models, model)
	}

	query, args, err := qb.UpsertModels("prop_analytics", models, "conflict_key")
	if err != nil {
		return fmt.Errorf("build upsert prop analytics query: %w", err)
	}
	return withTx(ctx, r.db, "upsert prop analytics", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert prop analytics count=%d: %w", len(models), err)
		}
		return nil
	})
}

// ReplaceMatchupRankings swaps the whole (league, season) ranking set in one
// transaction so readers never see a partial table.
func (r *AnalyticsRepository) ReplaceMatchupRankings(ctx context.Context, league string, season int, items []analytics.MatchupRanking) error {
	league = leagueKey(league)

	clearQuery, clearArgs, err := qb.DeleteFrom("matchup_rankings").
		Where(
			qb.Eq("league", league),
			qb.Eq("season", season),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build clear matchup rankings query: %w", err)
	}

	models := make([]matchupRankingInsertModel, 0, len(items))
	for _, item := range items {
		models = append(models, matchupRankingInsertModel{
			League:     league,
			Season:     season,
			PropType:   item.PropType,
			Opponent:   item.Opponent,
			Games:      item.Games,
			Hits:       item.Hits,
			HitRate:    item.HitRate,
			Rank:       item.Rank,
			Percentile: item.Percentile,
			Label:      item.Label,
		})
	}

	return withTx(ctx, r.db, "replace matchup rankings", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, clearQuery, clearArgs...); err != nil {
			return fmt.Errorf("clear matchup rankings league=%s season=%d: %w", league, season, err)
		}
		if len(models) == 0 {
			return nil
		}
		query, args, err := qb.UpsertModels("matchup_rankings", models, "league", "season", "prop_type", "opponent")
		if err != nil {
			return fmt.Errorf("build insert matchup rankings query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert matchup rankings league=%s season=%d: %w", league, season, err)
		}
		return nil
	})
}
