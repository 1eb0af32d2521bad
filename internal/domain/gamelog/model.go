package gamelog

import (
	"math"
	"time"

	"github.com/riskibarqy/propline/internal/domain/prop"
)

// Performance is one observed stat line for a player in a game.
type Performance struct {
	PlayerID    string
	PlayerName  string `validate:"required"`
	Team        string
	Opponent    string
	Season      int
	Date        time.Time `validate:"required"`
	PropType    string    `validate:"required"`
	Value       float64
	League      string `validate:"required"`
	GameID      string
	ConflictKey string
	Sportsbook  string

	// ValueIssue is set by a source when the stat value was absent or
	// unreadable. Such records are never settled.
	ValueIssue string
}

// HasValue reports whether Value is an observed, finite number.
func (p Performance) HasValue() bool {
	return p.ValueIssue == "" && !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0)
}

// KeyFields returns the identifying tuple used for the game-log conflict key.
func (p Performance) KeyFields() prop.KeyFields {
	book := p.Sportsbook
	if book == "" {
		book = prop.DefaultSportsbook
	}
	return prop.KeyFields{
		PlayerID:   p.PlayerID,
		GameID:     p.GameID,
		PropType:   p.PropType,
		Sportsbook: book,
		League:     p.League,
		Season:     p.Season,
	}
}

// GameLog is the persisted form of a performance, optionally settled
// against a stored prop line.
type GameLog struct {
	ConflictKey     string
	PlayerID        string
	PlayerName      string
	Team            string
	Opponent        string
	League          string
	Season          int
	Date            time.Time
	PropType        string
	Value           float64
	GameID          string
	Sportsbook      string
	Line            *float64
	OverOdds        *int
	UnderOdds       *int
	HitResult       *int
	Result          string
	Difference      *float64
	PropConflictKey string
	UpdatedAt       time.Time
}

// Settled reports whether the log carries a hit result.
func (g GameLog) Settled() bool {
	return g.HitResult != nil && g.Line != nil
}

// Hit reports whether a settled log met or exceeded its line.
func (g GameLog) Hit() bool {
	return g.HitResult != nil && *g.HitResult == 1
}

// FromPerformance builds an unsettled log row.
func FromPerformance(p Performance) GameLog {
	return GameLog{
		ConflictKey: p.ConflictKey,
		PlayerID:    p.PlayerID,
		PlayerName:  p.PlayerName,
		Team:        p.Team,
		Opponent:    p.Opponent,
		League:      p.League,
		Season:      p.Season,
		Date:        p.Date,
		PropType:    p.PropType,
		Value:       p.Value,
		GameID:      p.GameID,
		Sportsbook:  p.Sportsbook,
	}
}

// HistoryQuery scopes reads of a player's past logs at one prop type.
type HistoryQuery struct {
	League   string
	PlayerID string
	PropType string
	Before   time.Time
	Limit    int
}
