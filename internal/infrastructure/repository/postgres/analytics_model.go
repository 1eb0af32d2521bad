package postgres

import (
	"database/sql"
	"time"
)

type propAnalyticsUpsertModel struct {
	ConflictKey       string          `db:"conflict_key"`
	PlayerID          string          `db:"player_id"`
	PropType          string          `db:"prop_type"`
	League            string          `db:"league"`
	GameDate          string          `db:"game_date"`
	EVPercent         sql.NullFloat64 `db:"ev_percent"`
	Last5             string          `db:"last5"`
	Last10            string          `db:"last10"`
	Last20            string          `db:"last20"`
	HeadToHead        string          `db:"h2h"`
	StreakLength      int             `db:"streak_length"`
	StreakDirection   string          `db:"streak_direction"`
	StreakTier        string          `db:"streak_tier"`
	Signal            string          `db:"signal"`
	MatchupPercentile sql.NullFloat64 `db:"matchup_percentile"`
	MatchupLabel      string          `db:"matchup_label"`
	ComputedAt        time.Time       `db:"computed_at"`
}

type matchupRankingInsertModel struct {
	League     string  `db:"league"`
	Season     int     `db:"season"`
	PropType   string  `db:"prop_type"`
	Opponent   string  `db:"opponent"`
	Games      int     `db:"games"`
	Hits       int     `db:"hits"`
	HitRate    float64 `db:"hit_rate"`
	Rank       int     `db:"rank"`
	Percentile float64 `db:"percentile"`
	Label      string  `db:"label"`
}
