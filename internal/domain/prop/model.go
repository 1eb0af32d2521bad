package prop

import "time"

// DefaultSportsbook labels props whose feed entry names no bookmaker.
const DefaultSportsbook = "Consensus"

// Prop is one canonical prop line. ConflictKey is derived from the
// identifying fields by BuildConflictKey and is the upsert key.
type Prop struct {
	ConflictKey      string    `validate:"required"`
	PlayerID         string    `validate:"required"`
	PlayerName       string    `validate:"required"`
	Team             string    `validate:"required"`
	Opponent         string    `validate:"required"`
	League           string    `validate:"required,lowercase"`
	Season           int       `validate:"gt=0"`
	Date             time.Time `validate:"required"`
	PropType         string    `validate:"required,ne=unknown"`
	Line             float64
	OverOdds         *int
	UnderOdds        *int
	Sportsbook       string `validate:"required"`
	GameID           string `validate:"required"`
	TeamStrategy     string
	IdentityResolved bool
	UpdatedAt        time.Time
}

// KeyFields returns the identifying tuple of the prop.
func (p Prop) KeyFields() KeyFields {
	return KeyFields{
		PlayerID:   p.PlayerID,
		GameID:     p.GameID,
		PropType:   p.PropType,
		Sportsbook: p.Sportsbook,
		League:     p.League,
		Season:     p.Season,
	}
}

// WithKey returns the prop with ConflictKey recomputed.
func (p Prop) WithKey() Prop {
	p.ConflictKey = BuildConflictKey(p.KeyFields())
	return p
}

// Merge overlays non-empty pricing fields of incoming onto p. Identifying
// fields are equal by construction when conflict keys match.
func (p Prop) Merge(incoming Prop) Prop {
	out := p
	out.Line = incoming.Line
	if incoming.OverOdds != nil {
		out.OverOdds = incoming.OverOdds
	}
	if incoming.UnderOdds != nil {
		out.UnderOdds = incoming.UnderOdds
	}
	if incoming.PlayerName != "" {
		out.PlayerName = incoming.PlayerName
	}
	if incoming.TeamStrategy != "" {
		out.TeamStrategy = incoming.TeamStrategy
	}
	if incoming.Team != "" {
		out.Team = incoming.Team
	}
	if incoming.Opponent != "" {
		out.Opponent = incoming.Opponent
	}
	if incoming.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = incoming.UpdatedAt
	}
	return out
}
