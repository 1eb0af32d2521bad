package team

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed static_teams.yaml
var staticTeamsYAML []byte

var (
	staticOnce  sync.Once
	staticTeams map[string][]Team
	staticErr   error
)

// Registry resolves team names, aliases, abbreviations and feed ids to a
// team for one league.
type Registry struct {
	league string
	byKey  map[string]Team
	static bool
}

// NewRegistry indexes teams for league. An empty list falls back to the
// built-in static table.
func NewRegistry(league string, teams []Team) *Registry {
	league = strings.ToLower(strings.TrimSpace(league))
	r := &Registry{league: league, byKey: make(map[string]Team)}
	if len(teams) == 0 {
		teams = StaticTeams(league)
		r.static = true
	}
	for _, t := range teams {
		t.League = league
		for _, key := range registryKeys(league, t) {
			if _, exists := r.byKey[key]; !exists {
				r.byKey[key] = t
			}
		}
	}
	return r
}

func (r *Registry) League() string {
	if r == nil {
		return ""
	}
	return r.league
}

// FromStatic reports whether the registry is backed by the built-in table.
func (r *Registry) FromStatic() bool { return r.static }

func (r *Registry) Len() int {
	seen := make(map[string]struct{}, len(r.byKey))
	for _, t := range r.byKey {
		seen[t.Abbreviation] = struct{}{}
	}
	return len(seen)
}

// Lookup tries each candidate in order and returns the first registry hit.
func (r *Registry) Lookup(candidates ...string) (Team, bool) {
	if r == nil {
		return Team{}, false
	}
	for _, c := range candidates {
		key := teamKey(r.league, c)
		if key == "" {
			continue
		}
		if t, ok := r.byKey[key]; ok {
			return t, true
		}
	}
	return Team{}, false
}

// StaticTeams returns the built-in table for league, or nil when the league
// has no static entries.
func StaticTeams(league string) []Team {
	staticOnce.Do(func() {
		staticTeams, staticErr = parseStaticTeams(staticTeamsYAML)
	})
	if staticErr != nil {
		return nil
	}
	items := staticTeams[strings.ToLower(strings.TrimSpace(league))]
	out := make([]Team, len(items))
	copy(out, items)
	return out
}

func parseStaticTeams(raw []byte) (map[string][]Team, error) {
	var doc map[string][]Team
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode static teams: %w", err)
	}
	out := make(map[string][]Team, len(doc))
	for league, teams := range doc {
		league = strings.ToLower(strings.TrimSpace(league))
		for i := range teams {
			teams[i].League = league
			if err := teams[i].Validate(); err != nil {
				return nil, fmt.Errorf("static team %d in %s: %w", i, league, err)
			}
		}
		sort.SliceStable(teams, func(i, j int) bool { return teams[i].Abbreviation < teams[j].Abbreviation })
		out[league] = teams
	}
	return out, nil
}

func registryKeys(league string, t Team) []string {
	candidates := make([]string, 0, len(t.Aliases)+3)
	candidates = append(candidates, t.Abbreviation, t.Name)
	candidates = append(candidates, t.Aliases...)
	// Nickname alone, e.g. "chiefs" for "Kansas City Chiefs".
	if fields := strings.Fields(t.Name); len(fields) > 1 {
		candidates = append(candidates, fields[len(fields)-1])
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if key := teamKey(league, c); key != "" {
			out = append(out, key)
		}
	}
	return out
}

// teamKey folds a team reference to a lookup key. Feed ids such as
// "KANSAS_CITY_CHIEFS_NFL" lose the league suffix and become "kansas city chiefs".
func teamKey(league, raw string) string {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	raw = strings.NewReplacer("_", " ", "-", " ", ".", "", "'", "").Replace(raw)
	fields := strings.Fields(raw)
	if len(fields) > 1 && fields[len(fields)-1] == league {
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}
