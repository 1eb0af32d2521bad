package usecase

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/riskibarqy/propline/internal/domain/rawodds"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Rejection reasons reported in extraction stats and metrics.
const (
	RejectIncomplete      = "incomplete_odd"
	RejectPlaceholderName = "placeholder_name"
	RejectUnknownPropType = "unknown_prop_type"
	RejectMalformed       = "malformed"
	RejectInvalid         = "invalid_record"
)

var (
	rawPlayerIDTail   = regexp.MustCompile(`(?i)_\d+_[a-z]+$`)
	placeholderNames  = map[string]struct{}{"": {}, "unknown": {}, "tbd": {}, "n/a": {}, "na": {}}
	overSides         = map[string]struct{}{"over": {}, "yes": {}, "o": {}}
	underSides        = map[string]struct{}{"under": {}, "no": {}, "u": {}}
	rawNameTitleCaser = cases.Title(language.English)
)

type identityLookup interface {
	ResolveQuery(ctx context.Context, q IdentityQuery) player.Identity
	TeamOf(ctx context.Context, league, playerID string) (string, bool)
}

type propTypeLookup interface {
	Resolve(ctx context.Context, raw string) string
}

type ExtractInput struct {
	League   string
	Season   int
	Events   []rawodds.Event
	Registry *team.Registry
}

type ExtractStats struct {
	Odds              int `json:"odds"`
	Emitted           int `json:"emitted"`
	Merged            int `json:"merged"`
	Incomplete        int `json:"incomplete"`
	PlaceholderName   int `json:"placeholder_name"`
	UnknownPropType   int `json:"unknown_prop_type"`
	Malformed         int `json:"malformed"`
	Invalid           int `json:"invalid"`
	UnresolvedPlayers int `json:"unresolved_players"`
	UnresolvedTeams   int `json:"unresolved_teams"`
}

// Rejected is the number of odds that produced no prop.
func (s ExtractStats) Rejected() int {
	return s.Incomplete + s.PlaceholderName + s.UnknownPropType + s.Malformed + s.Invalid
}

type ExtractResult struct {
	Props []prop.Prop
	Stats ExtractStats
}

// PropExtractor maps raw feed odds to canonical prop rows. Over and under
// quotes of the same market merge into one row by conflict key.
type PropExtractor struct {
	identities identityLookup
	propTypes  propTypeLookup
	teams      *TeamResolver
	location   *time.Location
	now        func() time.Time
	logger     *logging.Logger
}

func NewPropExtractor(
	identities identityLookup,
	propTypes propTypeLookup,
	teams *TeamResolver,
	location *time.Location,
	logger *logging.Logger,
) *PropExtractor {
	if teams == nil {
		teams = NewTeamResolver()
	}
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PropExtractor{
		identities: identities,
		propTypes:  propTypes,
		teams:      teams,
		location:   location,
		now:        time.Now,
		logger:     logger.Named("prop_extractor"),
	}
}

func (e *PropExtractor) Extract(ctx context.Context, in ExtractInput) ExtractResult {
	ctx, span := startUsecaseSpan(ctx, "usecase.PropExtractor.Extract")
	defer span.End()

	league := strings.ToLower(strings.TrimSpace(in.League))
	registry := in.Registry
	if registry == nil {
		registry = team.NewRegistry(league, nil)
	}

	var stats ExtractStats
	byKey := make(map[string]int)
	props := make([]prop.Prop, 0)

	for _, event := range in.Events {
		for _, oddID := range sortedOddIDs(event.Odds) {
			stats.Odds++
			odd := event.Odds[oddID]
			if odd.OddID == "" {
				odd.OddID = oddID
			}

			item, reason := e.mapOdd(ctx, league, in.Season, event, odd, registry, &stats)
			if reason != "" {
				e.reject(&stats, reason)
				continue
			}
			if err := validateRecord(ctx, item); err != nil {
				e.logger.DebugContext(ctx, "drop invalid prop", "odd_id", odd.OddID, "error", err)
				e.reject(&stats, RejectInvalid)
				continue
			}

			if i, ok := byKey[item.ConflictKey]; ok {
				props[i] = props[i].Merge(item)
				stats.Merged++
				continue
			}
			byKey[item.ConflictKey] = len(props)
			props = append(props, item)
		}
	}

	stats.Emitted = len(props)
	e.logger.InfoContext(ctx, "props extracted",
		"league", league,
		"events", len(in.Events),
		"odds", stats.Odds,
		"emitted", stats.Emitted,
		"rejected", stats.Rejected(),
		"unresolved_players", stats.UnresolvedPlayers,
		"unresolved_teams", stats.UnresolvedTeams,
	)
	return ExtractResult{Props: props, Stats: stats}
}

func (e *PropExtractor) mapOdd(
	ctx context.Context,
	league string,
	season int,
	event rawodds.Event,
	odd rawodds.Odd,
	registry *team.Registry,
	stats *ExtractStats,
) (prop.Prop, string) {
	playerRawID := strings.TrimSpace(odd.PlayerID)
	if playerRawID == "" || strings.TrimSpace(odd.StatID) == "" {
		return prop.Prop{}, RejectIncomplete
	}

	meta := event.Players[playerRawID]
	name := strings.TrimSpace(meta.Name)
	if name == "" {
		name = nameFromRawPlayerID(playerRawID)
	}
	if isPlaceholderName(name) {
		return prop.Prop{}, RejectPlaceholderName
	}

	propType := e.propTypes.Resolve(ctx, odd.StatID)
	if propType == "" || propType == proptype.Unknown {
		return prop.Prop{}, RejectUnknownPropType
	}

	line, err := pickLine(odd)
	if err != nil {
		e.logger.DebugContext(ctx, "drop odd with bad line", "odd_id", odd.OddID, "error", err)
		return prop.Prop{}, RejectMalformed
	}

	book, price := pickBookmaker(odd.ByBookmaker)
	odds, err := parseAmericanOdds(firstNonEmpty(price.Odds, odd.BookOdds, odd.FairOdds))
	if err != nil {
		e.logger.DebugContext(ctx, "drop odd with bad price", "odd_id", odd.OddID, "error", err)
		return prop.Prop{}, RejectMalformed
	}

	side := strings.ToLower(strings.TrimSpace(odd.Side))
	item := prop.Prop{
		PlayerName: name,
		League:     league,
		Season:     season,
		Date:       gameDay(event.StartsAt, e.location),
		PropType:   propType,
		Line:       line,
		Sportsbook: book,
		GameID:     strings.TrimSpace(event.ID),
		UpdatedAt:  e.now().UTC(),
	}
	switch {
	case hasKey(overSides, side):
		item.OverOdds = odds
	case hasKey(underSides, side):
		item.UnderOdds = odds
	default:
		return prop.Prop{}, RejectMalformed
	}

	hint := e.teams.Hint(meta, event, registry)
	identity := e.identities.ResolveQuery(ctx, IdentityQuery{
		Name:   name,
		Team:   hint,
		League: league,
		Source: event.ID + "/" + odd.OddID,
	})
	if !identity.Resolved {
		stats.UnresolvedPlayers++
	}

	registryTeam := ""
	if identity.Resolved {
		registryTeam, _ = e.identities.TeamOf(ctx, league, identity.CanonicalID)
	}
	resolution := e.teams.Resolve(TeamInput{
		RegistryTeam: registryTeam,
		Meta:         meta,
		Event:        event,
		Registry:     registry,
	})
	if resolution.Unresolved() {
		stats.UnresolvedTeams++
		e.logger.DebugContext(ctx, "team unresolved",
			"event_id", event.ID,
			"player", name,
			"diagnostic", resolution.Diagnostic,
		)
	}

	item.PlayerID = identity.ID()
	item.IdentityResolved = identity.Resolved
	item.Team = resolution.Team
	item.Opponent = resolution.Opponent
	item.TeamStrategy = resolution.Strategy
	return item.WithKey(), ""
}

func (e *PropExtractor) reject(stats *ExtractStats, reason string) {
	switch reason {
	case RejectIncomplete:
		stats.Incomplete++
	case RejectPlaceholderName:
		stats.PlaceholderName++
	case RejectUnknownPropType:
		stats.UnknownPropType++
	case RejectInvalid:
		stats.Invalid++
	default:
		stats.Malformed++
	}
}

func sortedOddIDs(odds map[string]rawodds.Odd) []string {
	ids := make([]string, 0, len(odds))
	for id := range odds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// nameFromRawPlayerID turns "PATRICK_MAHOMES_1_NFL" into "Patrick Mahomes".
func nameFromRawPlayerID(raw string) string {
	base := rawPlayerIDTail.ReplaceAllString(strings.TrimSpace(raw), "")
	base = strings.Join(strings.Fields(strings.ReplaceAll(base, "_", " ")), " ")
	return rawNameTitleCaser.String(strings.ToLower(base))
}

func isPlaceholderName(name string) bool {
	_, ok := placeholderNames[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// pickLine prefers the fair line over the book line.
func pickLine(odd rawodds.Odd) (float64, error) {
	raw := firstNonEmpty(odd.FairLine, odd.BookLine)
	if raw == "" {
		return 0, fmt.Errorf("line is missing")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("line %q is not numeric", raw)
	}
	return v, nil
}

// pickBookmaker returns the lexicographically first bookmaker, or the
// consensus label when the feed names none.
func pickBookmaker(books map[string]rawodds.BookPrice) (string, rawodds.BookPrice) {
	if len(books) == 0 {
		return prop.DefaultSportsbook, rawodds.BookPrice{}
	}
	keys := make([]string, 0, len(books))
	for k := range books {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return prop.DefaultSportsbook, rawodds.BookPrice{}
	}
	sort.Strings(keys)
	return keys[0], books[keys[0]]
}

// parseAmericanOdds parses "+150", "-110" or "EVEN". Empty input is nil.
func parseAmericanOdds(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(raw, "even") || strings.EqualFold(raw, "ev") {
		v := 100
		return &v, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("odds %q are not an american price", raw)
	}
	if v > -100 && v < 100 {
		return nil, fmt.Errorf("odds %q are outside american range", raw)
	}
	return &v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func hasKey(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
