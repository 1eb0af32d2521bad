package player

import (
	"fmt"
	"strings"
	"time"
)

// Player is a canonical registry entry.
type Player struct {
	ID       string
	League   string
	Name     string
	Team     string
	Position string
	Aliases  []string
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("player id is required")
	}
	if strings.TrimSpace(p.League) == "" {
		return fmt.Errorf("player league is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("player name is required")
	}
	return nil
}

// RawIdentityHint keeps what the feed told us about a player we could not resolve.
type RawIdentityHint struct {
	Name   string
	Team   string
	League string
}

// Resolution methods recorded on an Identity.
const (
	MethodExact    = "exact"
	MethodFuzzy    = "fuzzy"
	MethodFallback = "fallback"
)

// Identity is the outcome of player resolution. CanonicalID is only set when
// Resolved is true.
type Identity struct {
	CanonicalID string
	Resolved    bool
	Method      string
	Hint        RawIdentityHint
}

// ID returns the canonical id, or the deterministic fallback id for
// unresolved players so storage keys stay usable.
func (i Identity) ID() string {
	if i.Resolved && i.CanonicalID != "" {
		return i.CanonicalID
	}
	return FallbackID(i.Hint.Name, i.Hint.Team)
}

// MissingPlayer is one diagnostics row for an identity-resolution miss.
type MissingPlayer struct {
	League         string
	Name           string
	NormalizedName string
	Team           string
	GeneratedID    string
	SampleSource   string
	RunID          string
	SeenAt         time.Time
}
