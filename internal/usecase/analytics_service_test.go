package usecase

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/analytics"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
)

var analyticsDate = time.Date(2025, 9, 14, 0, 0, 0, 0, time.UTC)

func settledLog(daysBefore int, value float64, opponent string) gamelog.GameLog {
	line := 250.5
	hit := 0
	result := "UNDER"
	if value >= line {
		hit, result = 1, "OVER"
	}
	return gamelog.GameLog{
		ConflictKey: "log-" + strconv.Itoa(daysBefore),
		PlayerID:    "PATRICK_MAHOMES_1_NFL",
		PlayerName:  "Patrick Mahomes",
		Team:        "KC",
		Opponent:    opponent,
		League:      "nfl",
		Season:      2025,
		Date:        analyticsDate.AddDate(0, 0, -daysBefore),
		PropType:    "passing_yards",
		Value:       value,
		Line:        &line,
		HitResult:   &hit,
		Result:      result,
	}
}

func TestAnalyticsService_Compute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	props := memory.NewPropRepository()
	logs := memory.NewGameLogRepository([]gamelog.GameLog{
		settledLog(1, 270, "BUF"),
		settledLog(8, 260, "MIA"),
		settledLog(15, 240, "BUF"),
		settledLog(22, 255, "NYJ"),
		settledLog(29, 300, "MIA"),
		{ConflictKey: "same-day", PlayerID: "PATRICK_MAHOMES_1_NFL", League: "nfl", Season: 2025, Date: analyticsDate, PropType: "passing_yards", Value: 10, Opponent: "BUF"},
	})
	store := memory.NewAnalyticsRepository()

	over := -110
	line := prop.Prop{
		PlayerID:   "PATRICK_MAHOMES_1_NFL",
		PlayerName: "Patrick Mahomes",
		Team:       "KC",
		Opponent:   "BUF",
		League:     "nfl",
		Season:     2025,
		Date:       analyticsDate,
		PropType:   "passing_yards",
		Line:       250.5,
		OverOdds:   &over,
		Sportsbook: "draftkings",
		GameID:     "evt-next",
	}.WithKey()
	if err := props.UpsertMany(ctx, []prop.Prop{line}); err != nil {
		t.Fatalf("seed props: %v", err)
	}

	service := NewAnalyticsService(props, logs, store, &sequenceIDs{}, AnalyticsConfig{Leagues: []string{"nfl"}}, nil)
	report, err := service.Compute(ctx, AnalyticsInput{Date: analyticsDate})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if len(report.Units) != 1 {
		t.Fatalf("unexpected units: %+v", report.Units)
	}
	unit := report.Units[0]
	if unit.Status != StatusSuccess || unit.Lines != 1 || unit.WithEV != 1 || unit.Stored != 1 || unit.Matchups != 3 {
		t.Fatalf("unexpected unit: %+v", unit)
	}

	got, ok := store.PropAnalytics(line.ConflictKey)
	if !ok {
		t.Fatalf("analytics row was not stored")
	}
	if got.EVPercent == nil || *got.EVPercent != 27.6 {
		t.Fatalf("unexpected ev: %v", got.EVPercent)
	}
	if got.Last5 != "4/5" || got.HeadToHead != "1/2" {
		t.Fatalf("unexpected hit strings: last5=%s h2h=%s", got.Last5, got.HeadToHead)
	}
	if got.StreakLength != 2 || got.StreakDirection != analytics.DirectionHit || got.StreakTier != analytics.TierBuilding {
		t.Fatalf("unexpected streak: %+v", got)
	}
	if got.Signal != analytics.SignalNeutral {
		t.Fatalf("unexpected signal: %s", got.Signal)
	}
	if got.MatchupPercentile == nil || *got.MatchupPercentile != 16.7 || got.MatchupLabel != analytics.LabelTough {
		t.Fatalf("unexpected matchup: %v %s", got.MatchupPercentile, got.MatchupLabel)
	}

	rankings := store.MatchupRankings("nfl", 2025)
	if len(rankings) != 3 || rankings[0].Rank != 1 {
		t.Fatalf("unexpected rankings: %+v", rankings)
	}
}

func TestAnalyticsService_NoHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	props := memory.NewPropRepository()
	store := memory.NewAnalyticsRepository()
	line := prop.Prop{
		PlayerID:   "ROOKIE-UNK-KC",
		PlayerName: "Rookie",
		Team:       "KC",
		Opponent:   "BUF",
		League:     "nfl",
		Season:     2025,
		Date:       analyticsDate,
		PropType:   "receptions",
		Line:       2.5,
		Sportsbook: prop.DefaultSportsbook,
		GameID:     "evt-next",
	}.WithKey()
	if err := props.UpsertMany(ctx, []prop.Prop{line}); err != nil {
		t.Fatalf("seed props: %v", err)
	}

	service := NewAnalyticsService(props, memory.NewGameLogRepository(nil), store, nil, AnalyticsConfig{Leagues: []string{"nfl"}}, nil)
	if _, err := service.Compute(ctx, AnalyticsInput{Date: analyticsDate}); err != nil {
		t.Fatalf("compute: %v", err)
	}

	got, ok := store.PropAnalytics(line.ConflictKey)
	if !ok {
		t.Fatalf("analytics row was not stored")
	}
	if got.EVPercent != nil || got.MatchupPercentile != nil {
		t.Fatalf("no history means no ev and no matchup: %+v", got)
	}
	if got.StreakTier != analytics.TierNone || got.StreakLength != 0 || got.Signal != analytics.SignalNeutral {
		t.Fatalf("unexpected streak for empty history: %+v", got)
	}
}

func TestAnalyticsService_NoLinesAndValidation(t *testing.T) {
	t.Parallel()

	service := NewAnalyticsService(memory.NewPropRepository(), memory.NewGameLogRepository(nil), memory.NewAnalyticsRepository(), nil, AnalyticsConfig{}, nil)

	report, err := service.Compute(context.Background(), AnalyticsInput{Date: analyticsDate, Leagues: []string{"nba"}})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if report.Units[0].Status != StatusNoData {
		t.Fatalf("expected no_data, got=%+v", report.Units[0])
	}

	if _, err := service.Compute(context.Background(), AnalyticsInput{Date: analyticsDate}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without leagues, got %v", err)
	}
	if _, err := service.Compute(context.Background(), AnalyticsInput{Leagues: []string{"nfl"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput without date, got %v", err)
	}
}
