package postgres

import (
	"database/sql"
	"time"
)

type propLineTableModel struct {
	ConflictKey      string        `db:"conflict_key"`
	PlayerID         string        `db:"player_id"`
	PlayerName       string        `db:"player_name"`
	Team             string        `db:"team"`
	Opponent         string        `db:"opponent"`
	League           string        `db:"league"`
	Season           int           `db:"season"`
	GameDate         time.Time     `db:"game_date"`
	PropType         string        `db:"prop_type"`
	Line             float64       `db:"line"`
	OverOdds         sql.NullInt64 `db:"over_odds"`
	UnderOdds        sql.NullInt64 `db:"under_odds"`
	Sportsbook       string        `db:"sportsbook"`
	GameID           string        `db:"game_id"`
	TeamStrategy     string        `db:"team_strategy"`
	IdentityResolved bool          `db:"identity_resolved"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

type propLineUpsertModel struct {
	ConflictKey      string        `db:"conflict_key"`
	PlayerID         string        `db:"player_id"`
	PlayerName       string        `db:"player_name"`
	Team             string        `db:"team"`
	Opponent         string        `db:"opponent"`
	League           string        `db:"league"`
	Season           int           `db:"season"`
	GameDate         string        `db:"game_date"`
	PropType         string        `db:"prop_type"`
	Line             float64       `db:"line"`
	OverOdds         sql.NullInt64 `db:"over_odds"`
	UnderOdds        sql.NullInt64 `db:"under_odds"`
	Sportsbook       string        `db:"sportsbook"`
	GameID           string        `db:"game_id"`
	TeamStrategy     string        `db:"team_strategy"`
	IdentityResolved bool          `db:"identity_resolved"`
	UpdatedAt        time.Time     `db:"updated_at"`
}
