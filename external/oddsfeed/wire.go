package oddsfeed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/propline/internal/domain/rawodds"
)

// envelopeKind names the response shape the feed answered with.
type envelopeKind string

const (
	kindBareArray envelopeKind = "array"
	kindData      envelopeKind = "data"
	kindEvents    envelopeKind = "events"
	kindNested    envelopeKind = "data.events"
	kindEmpty     envelopeKind = "empty"
)

type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
	Events     []eventPayload  `json:"events"`
	NextCursor string          `json:"nextCursor"`
}

type nestedEvents struct {
	Events     []eventPayload `json:"events"`
	NextCursor string         `json:"nextCursor"`
}

type eventPage struct {
	Kind       envelopeKind
	Events     []eventPayload
	NextCursor string
}

// decodeEventPage accepts every shape the feed has been seen to return:
// a bare array, {data:[...]}, {events:[...]} and {success, data:{events}}.
func decodeEventPage(raw []byte) (eventPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return eventPage{Kind: kindEmpty}, nil
	}

	if trimmed[0] == '[' {
		var events []eventPayload
		if err := sonic.Unmarshal(trimmed, &events); err != nil {
			return eventPage{}, crerr.Wrap(err, "decode bare event array")
		}
		return eventPage{Kind: kindBareArray, Events: events}, nil
	}

	var env envelope
	if err := sonic.Unmarshal(trimmed, &env); err != nil {
		return eventPage{}, crerr.Wrap(err, "decode event envelope")
	}
	if env.Success != nil && !*env.Success {
		return eventPage{}, crerr.Newf("feed reported failure: %s", firstNonEmpty(env.Error, env.Message, "no message"))
	}

	data := bytes.TrimSpace(env.Data)
	switch {
	case len(data) > 0 && data[0] == '[':
		var events []eventPayload
		if err := sonic.Unmarshal(data, &events); err != nil {
			return eventPage{}, crerr.Wrap(err, "decode data event array")
		}
		return eventPage{Kind: kindData, Events: events, NextCursor: env.NextCursor}, nil
	case len(data) > 0 && data[0] == '{':
		var nested nestedEvents
		if err := sonic.Unmarshal(data, &nested); err != nil {
			return eventPage{}, crerr.Wrap(err, "decode nested event object")
		}
		return eventPage{Kind: kindNested, Events: nested.Events, NextCursor: firstNonEmpty(nested.NextCursor, env.NextCursor)}, nil
	case env.Events != nil:
		return eventPage{Kind: kindEvents, Events: env.Events, NextCursor: env.NextCursor}, nil
	default:
		return eventPage{Kind: kindEmpty, NextCursor: env.NextCursor}, nil
	}
}

type eventPayload struct {
	EventID  string                   `json:"eventID"`
	LeagueID string                   `json:"leagueID"`
	Status   statusPayload            `json:"status"`
	Teams    teamsPayload             `json:"teams"`
	Odds     map[string]oddPayload    `json:"odds"`
	Players  map[string]playerPayload `json:"players"`
}

type statusPayload struct {
	StartsAt string `json:"startsAt"`
}

type teamsPayload struct {
	Home teamPayload `json:"home"`
	Away teamPayload `json:"away"`
}

type teamPayload struct {
	TeamID string       `json:"teamID"`
	Names  namesPayload `json:"names"`
}

type namesPayload struct {
	Long   string `json:"long"`
	Medium string `json:"medium"`
	Short  string `json:"short"`
}

type oddPayload struct {
	OddID         string                      `json:"oddID"`
	PlayerID      string                      `json:"playerID"`
	StatID        string                      `json:"statID"`
	SideID        string                      `json:"sideID"`
	FairOverUnder flexString                  `json:"fairOverUnder"`
	BookOverUnder flexString                  `json:"bookOverUnder"`
	FairOdds      flexString                  `json:"fairOdds"`
	BookOdds      flexString                  `json:"bookOdds"`
	ByBookmaker   map[string]bookmakerPayload `json:"byBookmaker"`
}

type bookmakerPayload struct {
	Odds      flexString `json:"odds"`
	OverUnder flexString `json:"overUnder"`
	Available bool       `json:"available"`
}

type playerPayload struct {
	PlayerID  string `json:"playerID"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	TeamID    string `json:"teamID"`
}

// flexString keeps numeric feed fields as text whether they arrive quoted or not.
type flexString string

func (f *flexString) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*f = ""
		return nil
	}
	if raw[0] == '"' {
		s, err := strconv.Unquote(string(raw))
		if err != nil {
			return crerr.Wrap(err, "decode string field")
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(raw)
	return nil
}

func toEvent(p eventPayload) rawodds.Event {
	event := rawodds.Event{
		ID:      strings.TrimSpace(p.EventID),
		League:  strings.TrimSpace(p.LeagueID),
		Home:    toTeamRef(p.Teams.Home),
		Away:    toTeamRef(p.Teams.Away),
		Odds:    make(map[string]rawodds.Odd, len(p.Odds)),
		Players: make(map[string]rawodds.PlayerMeta, len(p.Players)),
	}
	if startsAt, err := time.Parse(time.RFC3339, strings.TrimSpace(p.Status.StartsAt)); err == nil {
		event.StartsAt = startsAt.UTC()
	}

	for key, odd := range p.Odds {
		books := make(map[string]rawodds.BookPrice, len(odd.ByBookmaker))
		for book, price := range odd.ByBookmaker {
			books[book] = rawodds.BookPrice{
				Odds:      string(price.Odds),
				Line:      string(price.OverUnder),
				Available: price.Available,
			}
		}
		event.Odds[key] = rawodds.Odd{
			OddID:       firstNonEmpty(odd.OddID, key),
			PlayerID:    odd.PlayerID,
			StatID:      odd.StatID,
			Side:        odd.SideID,
			FairLine:    string(odd.FairOverUnder),
			BookLine:    string(odd.BookOverUnder),
			FairOdds:    string(odd.FairOdds),
			BookOdds:    string(odd.BookOdds),
			ByBookmaker: books,
		}
	}

	for key, pl := range p.Players {
		name := strings.TrimSpace(pl.Name)
		if name == "" {
			name = strings.TrimSpace(pl.FirstName + " " + pl.LastName)
		}
		event.Players[key] = rawodds.PlayerMeta{
			ID:     firstNonEmpty(pl.PlayerID, key),
			Name:   name,
			TeamID: pl.TeamID,
		}
	}
	return event
}

func toTeamRef(p teamPayload) rawodds.TeamRef {
	return rawodds.TeamRef{
		ID:           strings.TrimSpace(p.TeamID),
		Name:         strings.TrimSpace(p.Names.Long),
		ShortName:    strings.TrimSpace(p.Names.Medium),
		Abbreviation: strings.TrimSpace(p.Names.Short),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
