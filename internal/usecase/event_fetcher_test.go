package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/rawodds"
	rawoddsmock "github.com/riskibarqy/propline/internal/mocks/domain/rawodds"
	"github.com/stretchr/testify/mock"
)

func TestBuildFetchTiers(t *testing.T) {
	t.Parallel()

	base := BuildFetchTiers(2025, false)
	if len(base) != 5 {
		t.Fatalf("expected 5 base tiers, got=%d", len(base))
	}
	aggressive := BuildFetchTiers(2025, true)
	if len(aggressive) != 9 {
		t.Fatalf("expected 9 aggressive tiers, got=%d", len(aggressive))
	}
	for i, tier := range aggressive {
		if tier.Index != i+1 {
			t.Fatalf("tier %d has index %d", i, tier.Index)
		}
	}
	if base[0].Season != 2025 || base[0].Window != 7*24*time.Hour || !base[0].MarketScope {
		t.Fatalf("unexpected first tier: %+v", base[0])
	}
	if base[2].Season != 2024 {
		t.Fatalf("third tier should query the prior season, got=%d", base[2].Season)
	}
	if aggressive[8].Season != 2024 || aggressive[8].Window != 0 {
		t.Fatalf("last aggressive tier should be undated prior season, got=%+v", aggressive[8])
	}
	if got := aggressive[7].Label(); got != "season=2025/no-date/all-markets" {
		t.Fatalf("unexpected label: %s", got)
	}
}

func TestTierQuery(t *testing.T) {
	t.Parallel()

	req := FetchRequest{
		League:  "nfl",
		Season:  2025,
		Date:    time.Date(2025, 9, 7, 18, 30, 0, 0, time.UTC),
		Markets: []string{"passing_yards-all-game-ou-over"},
		Limit:   50,
	}
	tiers := BuildFetchTiers(2025, true)

	first := tierQuery(req, tiers[0])
	if first.League != "NFL" || first.Season != 2025 || first.Limit != 50 {
		t.Fatalf("unexpected query: %+v", first)
	}
	wantAfter := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)
	wantBefore := time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)
	if first.StartsAfter == nil || !first.StartsAfter.Equal(wantAfter) {
		t.Fatalf("unexpected starts after: %v", first.StartsAfter)
	}
	if first.StartsBefore == nil || !first.StartsBefore.Equal(wantBefore) {
		t.Fatalf("unexpected starts before: %v", first.StartsBefore)
	}
	if len(first.OddIDs) != 1 {
		t.Fatalf("market tier should carry odd ids, got=%v", first.OddIDs)
	}

	if q := tierQuery(req, tiers[3]); len(q.OddIDs) != 0 {
		t.Fatalf("unfiltered tier should not carry odd ids, got=%v", q.OddIDs)
	}
	if q := tierQuery(req, tiers[7]); q.StartsAfter != nil || q.StartsBefore != nil {
		t.Fatalf("undated tier should not carry a window, got=%+v", q)
	}

	req.Markets = nil
	if q := tierQuery(req, tiers[0]); q.OddIDs != nil {
		t.Fatalf("no configured markets means no odd ids, got=%v", q.OddIDs)
	}
}

func TestEventFetcher_StopsAtFirstProductiveTier(t *testing.T) {
	t.Parallel()

	source := rawoddsmock.NewSource(t)
	metrics := newRecordedMetrics()
	fetcher := NewEventFetcher(source, metrics, nil)

	source.
		On("FetchEvents", mock.Anything, mock.MatchedBy(func(q rawodds.Query) bool { return q.Season == 2025 })).
		Return(nil, errors.New("upstream timeout")).
		Once()
	source.
		On("FetchEvents", mock.Anything, mock.MatchedBy(func(q rawodds.Query) bool { return q.Season == 2025 })).
		Return([]rawodds.Event{}, nil).
		Once()
	source.
		On("FetchEvents", mock.Anything, mock.MatchedBy(func(q rawodds.Query) bool { return q.Season == 2024 })).
		Return([]rawodds.Event{chiefsBillsEvent()}, nil).
		Once()

	got, err := fetcher.Fetch(context.Background(), FetchRequest{
		League: "nfl",
		Season: 2025,
		Date:   time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Tier != 3 {
		t.Fatalf("unexpected tier: got=%d want=3", got.Tier)
	}
	if len(got.Events) != 1 {
		t.Fatalf("unexpected events: %d", len(got.Events))
	}
	if len(got.Attempts) != 3 {
		t.Fatalf("unexpected attempts: %+v", got.Attempts)
	}
	if got.Attempts[0].Error == "" || got.Attempts[1].Error != "" {
		t.Fatalf("unexpected attempt errors: %+v", got.Attempts)
	}
	if metrics.tiers["nfl"] != 3 {
		t.Fatalf("unexpected recorded tier: %d", metrics.tiers["nfl"])
	}
}

func TestEventFetcher_ExhaustedTiers(t *testing.T) {
	t.Parallel()

	source := rawoddsmock.NewSource(t)
	metrics := newRecordedMetrics()
	metrics.tiers["nfl"] = -1
	fetcher := NewEventFetcher(source, metrics, nil)

	source.
		On("FetchEvents", mock.Anything, mock.Anything).
		Return(nil, nil).
		Times(5)

	got, err := fetcher.Fetch(context.Background(), FetchRequest{
		League: "nfl",
		Season: 2025,
		Date:   time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if got.Tier != 0 || len(got.Events) != 0 {
		t.Fatalf("expected no productive tier, got tier=%d events=%d", got.Tier, len(got.Events))
	}
	if len(got.Attempts) != 5 {
		t.Fatalf("expected every base tier attempted, got=%d", len(got.Attempts))
	}
	if metrics.tiers["nfl"] != 0 {
		t.Fatalf("exhaustion should record tier 0, got=%d", metrics.tiers["nfl"])
	}
}

func TestEventFetcher_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewEventFetcher(nil, nil, nil).Fetch(context.Background(), FetchRequest{League: "nfl", Season: 2025, Date: time.Now()})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}

	_, err = NewEventFetcher(rawoddsmock.NewSource(t), nil, nil).Fetch(context.Background(), FetchRequest{League: "nfl"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestEventFetcher_StopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEventFetcher(rawoddsmock.NewSource(t), nil, nil).Fetch(ctx, FetchRequest{
		League: "nfl",
		Season: 2025,
		Date:   time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
