package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/domain/rawodds"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

// FetchTier is one relaxation step of the event search. Window zero means
// no date filter.
type FetchTier struct {
	Index       int
	Season      int
	Window      time.Duration
	MarketScope bool
}

func (t FetchTier) Label() string {
	window := "no-date"
	if t.Window > 0 {
		window = fmt.Sprintf("±%dd", int(t.Window/fetchDay))
	}
	filter := "all-markets"
	if t.MarketScope {
		filter = "market-filter"
	}
	return fmt.Sprintf("season=%d/%s/%s", t.Season, window, filter)
}

const fetchDay = 24 * time.Hour

// BuildFetchTiers returns the ordered tier list for season. Aggressive mode
// appends wider windows and undated searches.
func BuildFetchTiers(season int, aggressive bool) []FetchTier {
	prior := season - 1
	tiers := []FetchTier{
		{Season: season, Window: 7 * fetchDay, MarketScope: true},
		{Season: season, Window: 14 * fetchDay, MarketScope: true},
		{Season: prior, Window: 14 * fetchDay, MarketScope: true},
		{Season: season, Window: 14 * fetchDay},
		{Season: prior, Window: 14 * fetchDay},
	}
	if aggressive {
		tiers = append(tiers,
			FetchTier{Season: season, Window: 30 * fetchDay},
			FetchTier{Season: season, Window: 90 * fetchDay},
			FetchTier{Season: season},
			FetchTier{Season: prior},
		)
	}
	for i := range tiers {
		tiers[i].Index = i + 1
	}
	return tiers
}

type FetchRequest struct {
	League     string
	Season     int
	Date       time.Time
	Aggressive bool
	Markets    []string
	Limit      int
}

// FetchAttempt records one tier call.
type FetchAttempt struct {
	Tier   int    `json:"tier"`
	Label  string `json:"label"`
	Events int    `json:"events"`
	Error  string `json:"error,omitempty"`
}

// FetchResult carries the events of the first productive tier. Tier is
// 1-based; zero means every tier came back empty or failed.
type FetchResult struct {
	Events   []rawodds.Event
	Tier     int
	Attempts []FetchAttempt
}

// EventFetcher widens the upstream search tier by tier until it finds
// events.
type EventFetcher struct {
	source  rawodds.Source
	logger  *logging.Logger
	metrics Metrics
}

func NewEventFetcher(source rawodds.Source, metrics Metrics, logger *logging.Logger) *EventFetcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventFetcher{
		source:  source,
		logger:  logger.Named("event_fetcher"),
		metrics: metricsOrNoop(metrics),
	}
}

func (f *EventFetcher) Fetch(ctx context.Context, req FetchRequest) (FetchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventFetcher.Fetch")
	defer span.End()

	league := strings.TrimSpace(req.League)
	if league == "" || req.Season <= 0 || req.Date.IsZero() {
		return FetchResult{}, fmt.Errorf("%w: league, season and date are required", ErrInvalidInput)
	}
	if f.source == nil {
		return FetchResult{}, fmt.Errorf("%w: odds feed is not configured", ErrDependencyUnavailable)
	}

	tiers := BuildFetchTiers(req.Season, req.Aggressive)
	result := FetchResult{Attempts: make([]FetchAttempt, 0, len(tiers))}

	for _, tier := range tiers {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		events, err := f.source.FetchEvents(ctx, tierQuery(req, tier))
		attempt := FetchAttempt{Tier: tier.Index, Label: tier.Label(), Events: len(events)}
		if err != nil {
			attempt.Error = err.Error()
			attempt.Events = 0
			result.Attempts = append(result.Attempts, attempt)
			f.logger.WarnContext(ctx, "event fetch tier failed",
				"league", league,
				"tier", tier.Index,
				"label", attempt.Label,
				"error", err,
			)
			continue
		}
		result.Attempts = append(result.Attempts, attempt)
		if len(events) == 0 {
			continue
		}

		result.Events = events
		result.Tier = tier.Index
		f.metrics.RecordFetchTier(ctx, league, tier.Index)
		f.logger.InfoContext(ctx, "event fetch succeeded",
			"league", league,
			"tier", tier.Index,
			"label", attempt.Label,
			"events", len(events),
		)
		return result, nil
	}

	f.metrics.RecordFetchTier(ctx, league, 0)
	f.logger.WarnContext(ctx, "event fetch exhausted all tiers",
		"league", league,
		"season", req.Season,
		"tiers", len(tiers),
	)
	return result, nil
}

func tierQuery(req FetchRequest, tier FetchTier) rawodds.Query {
	q := rawodds.Query{
		League: strings.ToUpper(strings.TrimSpace(req.League)),
		Season: tier.Season,
		Limit:  req.Limit,
	}
	if tier.Window > 0 {
		after := calendarDay(req.Date).Add(-tier.Window)
		before := calendarDay(req.Date).Add(tier.Window)
		q.StartsAfter = &after
		q.StartsBefore = &before
	}
	if tier.MarketScope && len(req.Markets) > 0 {
		q.OddIDs = append([]string(nil), req.Markets...)
	}
	return q
}
