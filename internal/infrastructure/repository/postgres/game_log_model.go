package postgres

import (
	"database/sql"
	"time"
)

type gameLogTableModel struct {
	ConflictKey     string          `db:"conflict_key"`
	PlayerID        string          `db:"player_id"`
	PlayerName      string          `db:"player_name"`
	Team            string          `db:"team"`
	Opponent        string          `db:"opponent"`
	League          string          `db:"league"`
	Season          int             `db:"season"`
	GameDate        time.Time       `db:"game_date"`
	PropType        string          `db:"prop_type"`
	Value           float64         `db:"value"`
	GameID          string          `db:"game_id"`
	Sportsbook      string          `db:"sportsbook"`
	Line            sql.NullFloat64 `db:"line"`
	OverOdds        sql.NullInt64   `db:"over_odds"`
	UnderOdds       sql.NullInt64   `db:"under_odds"`
	HitResult       sql.NullInt64   `db:"hit_result"`
	Result          string          `db:"result"`
	Difference      sql.NullFloat64 `db:"difference"`
	PropConflictKey string          `db:"prop_conflict_key"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type gameLogUpsertModel struct {
	ConflictKey     string          `db:"conflict_key"`
	PlayerID        string          `db:"player_id"`
	PlayerName      string          `db:"player_name"`
	Team            string          `db:"team"`
	Opponent        string          `db:"opponent"`
	League          string          `db:"league"`
	Season          int             `db:"season"`
	GameDate        string          `db:"game_date"`
	PropType        string          `db:"prop_type"`
	Value           float64         `db:"value"`
	GameID          string          `db:"game_id"`
	Sportsbook      string          `db:"sportsbook"`
	Line            sql.NullFloat64 `db:"line"`
	OverOdds        sql.NullInt64   `db:"over_odds"`
	UnderOdds       sql.NullInt64   `db:"under_odds"`
	HitResult       sql.NullInt64   `db:"hit_result"`
	Result          string          `db:"result"`
	Difference      sql.NullFloat64 `db:"difference"`
	PropConflictKey string          `db:"prop_conflict_key"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

type supportedPropTypeRow struct {
	League   string `db:"league"`
	PropType string `db:"prop_type"`
}
