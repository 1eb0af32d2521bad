package team

import (
	"fmt"
	"strings"
)

// Unknown is the sentinel used when a team cannot be resolved.
const Unknown = "UNK"

// Resolution strategies, in the order they are attempted.
const (
	StrategyStatic   = "static"
	StrategyRegistry = "registry"
	StrategyFallback = "fallback"
)

// Team is a registry entry for one league.
type Team struct {
	League       string   `yaml:"-"`
	Abbreviation string   `yaml:"abbr"`
	Name         string   `yaml:"name"`
	Aliases      []string `yaml:"aliases"`
	LogoURL      string   `yaml:"logo"`
}

func (t Team) Validate() error {
	if strings.TrimSpace(t.League) == "" {
		return fmt.Errorf("team league is required")
	}
	if strings.TrimSpace(t.Abbreviation) == "" {
		return fmt.Errorf("team abbreviation is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}

// Resolution is the team/opponent pair chosen for a prop, with the strategy
// that produced it and, on fallback, why each strategy failed.
type Resolution struct {
	Team       string
	Opponent   string
	Strategy   string
	Diagnostic string
}

func (r Resolution) Unresolved() bool {
	return r.Team == Unknown
}
