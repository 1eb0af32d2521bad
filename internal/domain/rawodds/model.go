package rawodds

import "time"

// Event is one upstream game with its odds keyed by odd id. Values are kept
// close to the wire: numeric fields stay strings until extraction parses them.
type Event struct {
	ID       string
	League   string
	StartsAt time.Time
	Home     TeamRef
	Away     TeamRef
	Odds     map[string]Odd
	Players  map[string]PlayerMeta
}

type TeamRef struct {
	ID           string
	Name         string
	ShortName    string
	Abbreviation string
}

// Names returns the non-empty identifiers of the team, most specific first.
func (t TeamRef) Names() []string {
	out := make([]string, 0, 4)
	for _, v := range []string{t.Abbreviation, t.ShortName, t.Name, t.ID} {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

type Odd struct {
	OddID       string
	PlayerID    string
	StatID      string
	Side        string
	FairLine    string
	BookLine    string
	FairOdds    string
	BookOdds    string
	ByBookmaker map[string]BookPrice
}

type BookPrice struct {
	Odds      string
	Line      string
	Available bool
}

type PlayerMeta struct {
	ID     string
	Name   string
	TeamID string
}

// Query is the upstream request for one fetch tier.
type Query struct {
	League       string
	Season       int
	StartsAfter  *time.Time
	StartsBefore *time.Time
	OddIDs       []string
	Limit        int
}
