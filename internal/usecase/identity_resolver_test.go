package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
	playermock "github.com/riskibarqy/propline/internal/mocks/domain/player"
	"github.com/stretchr/testify/mock"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func nflRegistry() []player.Player {
	return []player.Player{
		{ID: "PATRICK_MAHOMES_1_NFL", League: "nfl", Name: "Patrick Mahomes", Team: "KC"},
		{ID: "AMONRA_STBROWN_1_NFL", League: "nfl", Name: "Amon-Ra St. Brown", Team: "DET"},
		{ID: "JOSH_ALLEN_1_NFL", League: "nfl", Name: "Josh Allen", Team: "BUF"},
		{ID: "JOSH_JACOBS_1_NFL", League: "nfl", Name: "Josh Jacobs", Team: "GB"},
	}
}

func TestIdentityResolver_ResolveMethods(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(memory.NewPlayerRepository(nflRegistry()), nil, IdentityResolverConfig{TTL: time.Hour}, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		input    string
		team     string
		wantID   string
		resolved bool
		method   string
	}{
		{name: "suffix and case", input: "PATRICK MAHOMES Jr.", team: "KC", wantID: "PATRICK_MAHOMES_1_NFL", resolved: true, method: player.MethodExact},
		{name: "unique last name", input: "Mahomes", team: "KC", wantID: "PATRICK_MAHOMES_1_NFL", resolved: true, method: player.MethodExact},
		{name: "substring", input: "St. Brown", team: "DET", wantID: "AMONRA_STBROWN_1_NFL", resolved: true, method: player.MethodFuzzy},
		{name: "shared first name", input: "Josh", team: "BUF", wantID: "JOSH-UNK-BUF", resolved: false, method: player.MethodFallback},
		{name: "unknown player", input: "Unknown Guy", team: "kc", wantID: "UNKNOWN_GUY-UNK-KC", resolved: false, method: player.MethodFallback},
		{name: "empty team", input: "Nobody Here", team: "", wantID: "NOBODY_HERE-UNK-UNK", resolved: false, method: player.MethodFallback},
	}

	for _, tc := range tests {
		got := resolver.Resolve(ctx, tc.input, tc.team, "NFL")
		if got.ID() != tc.wantID {
			t.Fatalf("%s: unexpected id: got=%s want=%s", tc.name, got.ID(), tc.wantID)
		}
		if got.Resolved != tc.resolved {
			t.Fatalf("%s: unexpected resolved flag: got=%v want=%v", tc.name, got.Resolved, tc.resolved)
		}
		if got.Method != tc.method {
			t.Fatalf("%s: unexpected method: got=%s want=%s", tc.name, got.Method, tc.method)
		}
		if !got.Resolved && got.CanonicalID != "" {
			t.Fatalf("%s: unresolved identity must not carry a canonical id, got=%s", tc.name, got.CanonicalID)
		}
	}
}

func TestIdentityResolver_FuzzyPrefersSameTeam(t *testing.T) {
	t.Parallel()

	players := []player.Player{
		{ID: "A_SMITHSON_1_NFL", League: "nfl", Name: "Aaron Smithson", Team: "MIA"},
		{ID: "B_SMITHSON_1_NFL", League: "nfl", Name: "Brian Smithson", Team: "NYJ"},
	}
	resolver := NewIdentityResolver(memory.NewPlayerRepository(players), nil, IdentityResolverConfig{}, nil)

	got := resolver.Resolve(context.Background(), "Smithson", "NYJ", "nfl")
	if !got.Resolved || got.CanonicalID != "B_SMITHSON_1_NFL" {
		t.Fatalf("expected same-team fuzzy match, got=%+v", got)
	}

	got = resolver.Resolve(context.Background(), "Smithson", "DAL", "nfl")
	if !got.Resolved || got.CanonicalID != "A_SMITHSON_1_NFL" {
		t.Fatalf("expected first sorted candidate without team match, got=%+v", got)
	}
}

func TestIdentityResolver_DiagnosticsSink(t *testing.T) {
	t.Parallel()

	missing := playermock.NewMissingRepository(t)
	resolver := NewIdentityResolver(memory.NewPlayerRepository(nflRegistry()), missing, IdentityResolverConfig{TTL: time.Hour}, nil)
	ctx := WithRunID(context.Background(), "run-1")

	missing.
		On("Clear", mock.Anything, "nfl", "patrick mahomes").
		Return(nil).
		Once()
	missing.
		On("Record", mock.Anything, mock.MatchedBy(func(item player.MissingPlayer) bool {
			return item.League == "nfl" &&
				item.NormalizedName == "unknown guy" &&
				item.GeneratedID == "UNKNOWN_GUY-UNK-KC" &&
				item.SampleSource == "evt-1/odd-1" &&
				item.RunID == "run-1"
		})).
		Return(nil).
		Once()

	for i := 0; i < 3; i++ {
		resolver.ResolveQuery(ctx, IdentityQuery{Name: "Patrick Mahomes", Team: "KC", League: "nfl"})
		resolver.ResolveQuery(ctx, IdentityQuery{Name: "Unknown Guy", Team: "KC", League: "nfl", Source: "evt-1/odd-1"})
	}
}

func TestIdentityResolver_SinkFailureDoesNotFailResolution(t *testing.T) {
	t.Parallel()

	missing := playermock.NewMissingRepository(t)
	resolver := NewIdentityResolver(memory.NewPlayerRepository(nflRegistry()), missing, IdentityResolverConfig{}, nil)

	missing.
		On("Record", mock.Anything, mock.Anything).
		Return(errors.New("sink down")).
		Twice()

	for i := 0; i < 2; i++ {
		got := resolver.Resolve(context.Background(), "Unknown Guy", "KC", "nfl")
		if got.Resolved || got.ID() != "UNKNOWN_GUY-UNK-KC" {
			t.Fatalf("unexpected identity: %+v", got)
		}
	}
}

func TestIdentityResolver_RebuildsIndexAfterTTL(t *testing.T) {
	t.Parallel()

	clock := newTestClock()
	players := playermock.NewRepository(t)
	resolver := NewIdentityResolver(players, nil, IdentityResolverConfig{TTL: time.Hour, Now: clock.Now}, nil)

	players.
		On("ListByLeague", mock.Anything, "nfl").
		Return(nflRegistry(), nil).
		Twice()

	ctx := context.Background()
	resolver.Resolve(ctx, "Patrick Mahomes", "KC", "nfl")
	clock.Advance(30 * time.Minute)
	resolver.Resolve(ctx, "Josh Allen", "BUF", "nfl")
	clock.Advance(31 * time.Minute)

	got := resolver.Resolve(ctx, "Josh Allen", "BUF", "nfl")
	if !got.Resolved || got.CanonicalID != "JOSH_ALLEN_1_NFL" {
		t.Fatalf("unexpected identity after rebuild: %+v", got)
	}
}

func TestIdentityResolver_RegistryFailureFallsBack(t *testing.T) {
	t.Parallel()

	players := playermock.NewRepository(t)
	resolver := NewIdentityResolver(players, nil, IdentityResolverConfig{}, nil)

	players.
		On("ListByLeague", mock.Anything, "nfl").
		Return(nil, errors.New("db down")).
		Once()

	got := resolver.Resolve(context.Background(), "Patrick Mahomes", "KC", "nfl")
	if got.Resolved {
		t.Fatalf("expected unresolved identity when registry is unavailable, got=%+v", got)
	}
	if got.ID() != "PATRICK_MAHOMES-UNK-KC" {
		t.Fatalf("unexpected fallback id: %s", got.ID())
	}
}

func TestIdentityResolver_TeamOf(t *testing.T) {
	t.Parallel()

	resolver := NewIdentityResolver(memory.NewPlayerRepository(nflRegistry()), nil, IdentityResolverConfig{}, nil)
	if got, ok := resolver.TeamOf(context.Background(), "NFL", "JOSH_ALLEN_1_NFL"); !ok || got != "BUF" {
		t.Fatalf("unexpected team: got=%q ok=%v", got, ok)
	}
	if _, ok := resolver.TeamOf(context.Background(), "nfl", "NOPE"); ok {
		t.Fatalf("expected no team for unknown id")
	}
}
