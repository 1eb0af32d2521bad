package usecase

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/propline/internal/domain/rawodds"
	"github.com/riskibarqy/propline/internal/domain/team"
)

// TeamResolver assigns a player's team and opponent for one game. It tries
// the player registry team first, then the feed's player team id, and
// finally emits UNK/UNK with a diagnostic naming every strategy it tried.
type TeamResolver struct{}

func NewTeamResolver() *TeamResolver {
	return &TeamResolver{}
}

// TeamInput carries what is known about one player in one event.
type TeamInput struct {
	// RegistryTeam is the team recorded for the canonical player, if any.
	RegistryTeam string
	Meta         rawodds.PlayerMeta
	Event        rawodds.Event
	Registry     *team.Registry
}

func (r *TeamResolver) Resolve(in TeamInput) team.Resolution {
	var failures []string

	res, reason := resolveStaticTeam(in)
	if reason == "" {
		return res
	}
	failures = append(failures, team.StrategyStatic+": "+reason)

	res, reason = resolveRegistryTeam(in)
	if reason == "" {
		return res
	}
	failures = append(failures, team.StrategyRegistry+": "+reason)

	return team.Resolution{
		Team:       team.Unknown,
		Opponent:   team.Unknown,
		Strategy:   team.StrategyFallback,
		Diagnostic: strings.Join(failures, "; "),
	}
}

// Hint returns the best team abbreviation available before the player is
// resolved, for building fallback ids.
func (r *TeamResolver) Hint(meta rawodds.PlayerMeta, event rawodds.Event, registry *team.Registry) string {
	res, reason := resolveRegistryTeam(TeamInput{Meta: meta, Event: event, Registry: registry})
	if reason != "" {
		return team.Unknown
	}
	return res.Team
}

func resolveStaticTeam(in TeamInput) (team.Resolution, string) {
	playerTeam := strings.TrimSpace(in.RegistryTeam)
	if playerTeam == "" || strings.EqualFold(playerTeam, team.Unknown) {
		return team.Resolution{}, "no registry team for player"
	}

	abbr := playerTeam
	if t, ok := in.Registry.Lookup(playerTeam); ok {
		abbr = t.Abbreviation
	}
	abbr = strings.ToUpper(abbr)

	home, homeOK := sideAbbreviation(in.Event.Home, in.Registry)
	away, awayOK := sideAbbreviation(in.Event.Away, in.Registry)
	switch {
	case homeOK && home == abbr:
		return staticResolution(abbr, away, awayOK), ""
	case awayOK && away == abbr:
		return staticResolution(abbr, home, homeOK), ""
	default:
		return team.Resolution{}, fmt.Sprintf("player team %s is not home %q or away %q", abbr, home, away)
	}
}

func staticResolution(abbr, opponent string, opponentOK bool) team.Resolution {
	if !opponentOK {
		opponent = team.Unknown
	}
	return team.Resolution{Team: abbr, Opponent: opponent, Strategy: team.StrategyStatic}
}

func resolveRegistryTeam(in TeamInput) (team.Resolution, string) {
	teamID := strings.TrimSpace(in.Meta.TeamID)
	if teamID == "" {
		return team.Resolution{}, "player metadata has no team id"
	}

	side, other := in.Event.Home, in.Event.Away
	switch {
	case matchesSide(teamID, in.Event.Home):
	case matchesSide(teamID, in.Event.Away):
		side, other = in.Event.Away, in.Event.Home
	default:
		return team.Resolution{}, fmt.Sprintf("team id %s matches neither side of event %s", teamID, in.Event.ID)
	}

	abbr, ok := sideAbbreviation(side, in.Registry)
	if !ok {
		return team.Resolution{}, fmt.Sprintf("team %s not found in %s registry", teamID, in.Registry.League())
	}
	opponent, ok := sideAbbreviation(other, in.Registry)
	if !ok {
		opponent = team.Unknown
	}
	return team.Resolution{Team: abbr, Opponent: opponent, Strategy: team.StrategyRegistry}, ""
}

func matchesSide(teamID string, ref rawodds.TeamRef) bool {
	for _, name := range ref.Names() {
		if strings.EqualFold(name, teamID) {
			return true
		}
	}
	return false
}

// sideAbbreviation resolves an event side through the registry, falling back
// to the feed's own abbreviation.
func sideAbbreviation(ref rawodds.TeamRef, registry *team.Registry) (string, bool) {
	if t, ok := registry.Lookup(ref.Names()...); ok {
		return strings.ToUpper(t.Abbreviation), true
	}
	if abbr := strings.TrimSpace(ref.Abbreviation); abbr != "" {
		return strings.ToUpper(abbr), true
	}
	return "", false
}
