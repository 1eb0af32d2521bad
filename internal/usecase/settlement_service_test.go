package usecase

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/settlement"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
	gamelogmock "github.com/riskibarqy/propline/internal/mocks/domain/gamelog"
	"github.com/stretchr/testify/mock"
)

var settleDate = time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)

func mahomesLine() prop.Prop {
	over, under := -110, -110
	return prop.Prop{
		PlayerID:   "PATRICK_MAHOMES_1_NFL",
		PlayerName: "Patrick Mahomes",
		Team:       "KC",
		Opponent:   "BUF",
		League:     "nfl",
		Season:     2025,
		Date:       settleDate,
		PropType:   "passing_yards",
		Line:       265.5,
		OverOdds:   &over,
		UnderOdds:  &under,
		Sportsbook: "draftkings",
		GameID:     "evt-kc-buf",
	}.WithKey()
}

func newTestSettlement(source gamelog.Source, props prop.Repository, logs gamelog.Repository, metrics Metrics) *SettlementService {
	identities := NewIdentityResolver(memory.NewPlayerRepository(memory.SeedPlayers()), nil, IdentityResolverConfig{}, nil)
	return NewSettlementService(
		source,
		props,
		logs,
		identities,
		NewPropTypeResolver(nil, nil, 0, nil),
		&sequenceIDs{},
		SettlementConfig{Leagues: []string{"nfl"}, Seasons: map[string]int{"nfl": 2025}, MaxWorkers: 2},
		metrics,
		nil,
	)
}

func TestSettlementService_Settle(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	props := memory.NewPropRepository()
	logs := memory.NewGameLogRepository(nil)
	metrics := newRecordedMetrics()
	service := newTestSettlement(source, props, logs, metrics)

	line := mahomesLine()
	if err := props.UpsertMany(context.Background(), []prop.Prop{line}); err != nil {
		t.Fatalf("seed props: %v", err)
	}

	source.
		On("FetchPerformances", mock.Anything, "nfl", settleDate).
		Return([]gamelog.Performance{
			{PlayerName: "Patrick Mahomes", Team: "kc", Opponent: "buf", PropType: "Pass Yds", Value: 280, GameID: "nfl-20250907-buf-kc", ConflictKey: "upstream-key"},
			{PlayerName: "Josh Allen", Team: "BUF", Opponent: "KC", PropType: "passing_yards", Value: 200, GameID: "nfl-20250907-buf-kc"},
			{PropType: "passing_yards", Value: 12},
		}, nil).
		Once()

	report, err := service.Settle(context.Background(), SettleInput{Date: settleDate.Add(15 * time.Hour)})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if report.From != "2025-09-07" || report.To != "2025-09-07" || report.WorkerCount != 1 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.SuccessCount != 1 || len(report.Units) != 1 {
		t.Fatalf("unexpected report counts: %+v", report)
	}

	unit := report.Units[0]
	if unit.Performances != 2 || unit.Malformed != 1 || unit.Lines != 1 {
		t.Fatalf("unexpected input counts: %+v", unit)
	}
	if unit.Matched != 1 || unit.UnmatchedPerformances != 1 || unit.UnmatchedProps != 0 || unit.MatchRate != 0.5 {
		t.Fatalf("unexpected match counts: %+v", unit)
	}
	if unit.Stored != 2 {
		t.Fatalf("matched and unmatched performances should both be stored, got=%d", unit.Stored)
	}
	if metrics.matchRate["nfl"] != 0.5 {
		t.Fatalf("unexpected match rate metric: %v", metrics.matchRate)
	}

	stored, err := logs.ListByDate(context.Background(), "nfl", settleDate)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("unexpected stored logs: %d", len(stored))
	}

	var settled, unsettled *gamelog.GameLog
	for i := range stored {
		if stored[i].Settled() {
			settled = &stored[i]
		} else {
			unsettled = &stored[i]
		}
	}
	if settled == nil || unsettled == nil {
		t.Fatalf("expected one settled and one unsettled log, got=%+v", stored)
	}
	if settled.PlayerID != "PATRICK_MAHOMES_1_NFL" || settled.PropType != "passing_yards" {
		t.Fatalf("performance should be canonicalized: %+v", settled)
	}
	if settled.Result != settlement.ResultOver || !settled.Hit() || *settled.Difference != 14.5 || *settled.Line != 265.5 {
		t.Fatalf("unexpected settlement: result=%s diff=%v line=%v", settled.Result, *settled.Difference, *settled.Line)
	}
	if settled.PropConflictKey != line.ConflictKey {
		t.Fatalf("settled log should reference its prop line: %s", settled.PropConflictKey)
	}
	if settled.ConflictKey == "upstream-key" || settled.Sportsbook != prop.DefaultSportsbook {
		t.Fatalf("conflict key must be rebuilt locally: key=%s book=%s", settled.ConflictKey, settled.Sportsbook)
	}
	if unsettled.PlayerID != "JOSH_ALLEN_1_NFL" || unsettled.HitResult != nil {
		t.Fatalf("unexpected unsettled log: %+v", unsettled)
	}
}

func TestSettlementService_DropsPerformancesWithoutValue(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	props := memory.NewPropRepository()
	logs := memory.NewGameLogRepository(nil)
	service := newTestSettlement(source, props, logs, nil)

	if err := props.UpsertMany(context.Background(), []prop.Prop{mahomesLine()}); err != nil {
		t.Fatalf("seed props: %v", err)
	}
	source.
		On("FetchPerformances", mock.Anything, "nfl", settleDate).
		Return([]gamelog.Performance{
			{PlayerName: "Patrick Mahomes", Team: "KC", PropType: "passing_yards", Value: math.NaN(), GameID: "g1"},
			{PlayerName: "Patrick Mahomes", Team: "KC", PropType: "passing_yards", Value: math.Inf(1), GameID: "g1"},
			{PlayerName: "Patrick Mahomes", Team: "KC", PropType: "passing_yards", ValueIssue: "value is missing", GameID: "g1"},
			{PlayerName: "Josh Allen", Team: "BUF", PropType: "passing_yards", Value: 0, GameID: "g1"},
		}, nil).
		Once()
	source.
		On("FetchPerformances", mock.Anything, "nba", settleDate).
		Return([]gamelog.Performance{
			{PlayerName: "Jayson Tatum", Team: "BOS", PropType: "points", Value: 31, GameID: "g2"},
		}, nil).
		Once()

	report, err := service.Settle(context.Background(), SettleInput{Date: settleDate, Leagues: []string{"nfl", "nba"}})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(report.Units) != 2 || report.SuccessCount != 2 {
		t.Fatalf("both leagues should report, got=%+v", report)
	}

	nfl := report.Units[1]
	if nfl.League != "nfl" || nfl.Malformed != 3 || nfl.Performances != 1 || nfl.Matched != 0 || nfl.Stored != 1 {
		t.Fatalf("unreadable values should be dropped and counted: %+v", nfl)
	}

	stored, _ := logs.ListByDate(context.Background(), "nfl", settleDate)
	if len(stored) != 1 || stored[0].PlayerName != "Josh Allen" || stored[0].Settled() {
		t.Fatalf("only the observed performance should be stored: %+v", stored)
	}
}

func TestSettlementService_PanickingUnitDoesNotHideOtherLeagues(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	service := newTestSettlement(source, memory.NewPropRepository(), memory.NewGameLogRepository(nil), nil)

	source.
		On("FetchPerformances", mock.Anything, "nfl", settleDate).
		Panic("decoder exploded").
		Once()
	source.
		On("FetchPerformances", mock.Anything, "nba", settleDate).
		Return(nil, nil).
		Once()

	report, err := service.Settle(context.Background(), SettleInput{Date: settleDate, Leagues: []string{"nfl", "nba"}})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if len(report.Units) != 2 || report.FailedCount != 1 || report.NoDataCount != 1 {
		t.Fatalf("every league should be reported, got=%+v", report)
	}
	if unit := report.Units[1]; unit.League != "nfl" || unit.Status != StatusFailed || !strings.Contains(unit.Message, "decoder exploded") {
		t.Fatalf("panicking unit should be reported as failed: %+v", unit)
	}
}

func TestSettlementService_SettleIsIdempotent(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	props := memory.NewPropRepository()
	logs := memory.NewGameLogRepository(nil)
	service := newTestSettlement(source, props, logs, nil)

	if err := props.UpsertMany(context.Background(), []prop.Prop{mahomesLine()}); err != nil {
		t.Fatalf("seed props: %v", err)
	}
	source.
		On("FetchPerformances", mock.Anything, "nfl", settleDate).
		Return([]gamelog.Performance{
			{PlayerName: "Patrick Mahomes", Team: "KC", PropType: "passing_yards", Value: 250, GameID: "g1"},
		}, nil).
		Twice()

	for i := 0; i < 2; i++ {
		if _, err := service.Settle(context.Background(), SettleInput{Date: settleDate}); err != nil {
			t.Fatalf("settle run %d: %v", i, err)
		}
	}

	stored, _ := logs.ListByDate(context.Background(), "nfl", settleDate)
	if len(stored) != 1 {
		t.Fatalf("re-running a date must not duplicate logs, got=%d", len(stored))
	}
	if stored[0].Result != settlement.ResultUnder || *stored[0].HitResult != 0 {
		t.Fatalf("unexpected settlement: %+v", stored[0])
	}
}

func TestSettlementService_Backfill(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	service := newTestSettlement(source, memory.NewPropRepository(), memory.NewGameLogRepository(nil), nil)

	failing := time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC)
	source.
		On("FetchPerformances", mock.Anything, "nfl", mock.MatchedBy(func(d time.Time) bool { return d.Equal(failing) })).
		Return(nil, errors.New("upstream timeout")).
		Once()
	source.
		On("FetchPerformances", mock.Anything, "nfl", mock.MatchedBy(func(d time.Time) bool { return !d.Equal(failing) })).
		Return(nil, nil).
		Twice()

	report, err := service.Backfill(context.Background(), BackfillInput{
		From: time.Date(2025, 9, 5, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if report.WorkerCount != 2 {
		t.Fatalf("unexpected worker count: %d", report.WorkerCount)
	}
	if len(report.Units) != 3 || report.FailedCount != 1 || report.NoDataCount != 2 {
		t.Fatalf("unexpected report: %+v", report)
	}
	wantDates := []string{"2025-09-05", "2025-09-06", "2025-09-07"}
	for i, unit := range report.Units {
		if unit.Date != wantDates[i] {
			t.Fatalf("units should be ordered by date, got=%s at %d", unit.Date, i)
		}
	}
	if report.Units[1].Status != StatusFailed {
		t.Fatalf("failing date should be reported as failed: %+v", report.Units[1])
	}
}

func TestSettlementService_BackfillWorkersNeverExceedDates(t *testing.T) {
	t.Parallel()

	source := gamelogmock.NewSource(t)
	service := newTestSettlement(source, memory.NewPropRepository(), memory.NewGameLogRepository(nil), nil)

	source.
		On("FetchPerformances", mock.Anything, "nfl", mock.Anything).
		Return(nil, nil).
		Once()

	report, err := service.Backfill(context.Background(), BackfillInput{From: settleDate, To: settleDate, MaxWorkers: 8})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if report.WorkerCount != 1 {
		t.Fatalf("worker count should be capped at the number of dates, got=%d", report.WorkerCount)
	}
}

func TestSettlementService_BackfillValidation(t *testing.T) {
	t.Parallel()

	service := newTestSettlement(gamelogmock.NewSource(t), memory.NewPropRepository(), memory.NewGameLogRepository(nil), nil)

	_, err := service.Backfill(context.Background(), BackfillInput{From: settleDate, To: settleDate.AddDate(0, 0, -1)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted range, got %v", err)
	}
	_, err = service.Backfill(context.Background(), BackfillInput{From: settleDate})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing end date, got %v", err)
	}
}
