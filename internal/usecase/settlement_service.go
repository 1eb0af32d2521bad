package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/settlement"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

type SettlementConfig struct {
	Leagues    []string
	Seasons    map[string]int
	ChunkSize  int
	MaxWorkers int
}

type SettleInput struct {
	Date    time.Time
	Leagues []string
}

type BackfillInput struct {
	From       time.Time
	To         time.Time
	Leagues    []string
	MaxWorkers int
}

type SettlementUnit struct {
	League                string  `json:"league"`
	Date                  string  `json:"date"`
	Status                string  `json:"status"`
	Message               string  `json:"message,omitempty"`
	Performances          int     `json:"performances"`
	Malformed             int     `json:"malformed"`
	Lines                 int     `json:"lines"`
	Matched               int     `json:"matched"`
	UnmatchedPerformances int     `json:"unmatched_performances"`
	UnmatchedProps        int     `json:"unmatched_props"`
	MatchRate             float64 `json:"match_rate"`
	Stored                int     `json:"stored"`
	FailedChunks          int     `json:"failed_chunks"`
	FailedRows            int     `json:"failed_rows"`
	DurationMs            int64   `json:"duration_ms"`
}

type SettlementReport struct {
	RunID        string           `json:"run_id"`
	From         string           `json:"from"`
	To           string           `json:"to"`
	WorkerCount  int              `json:"worker_count"`
	SuccessCount int              `json:"success_count"`
	NoDataCount  int              `json:"no_data_count"`
	FailedCount  int              `json:"failed_count"`
	Units        []SettlementUnit `json:"units"`
}

// SettlementService matches observed performances to stored prop lines and
// persists the settled game logs.
type SettlementService struct {
	performances gamelog.Source
	props        prop.Repository
	gamelogs     gamelog.Repository
	identities   identityLookup
	propTypes    propTypeLookup
	ids          id.Generator
	cfg          SettlementConfig
	metrics      Metrics
	logger       *logging.Logger
}

func NewSettlementService(
	performances gamelog.Source,
	props prop.Repository,
	gamelogs gamelog.Repository,
	identities identityLookup,
	propTypes propTypeLookup,
	ids id.Generator,
	cfg SettlementConfig,
	metrics Metrics,
	logger *logging.Logger,
) *SettlementService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 1
	}
	return &SettlementService{
		performances: performances,
		props:        props,
		gamelogs:     gamelogs,
		identities:   identities,
		propTypes:    propTypes,
		ids:          ids,
		cfg:          cfg,
		metrics:      metricsOrNoop(metrics),
		logger:       logger.Named("settlement"),
	}
}

// Settle settles one date for each league, sequentially.
func (s *SettlementService) Settle(ctx context.Context, input SettleInput) (SettlementReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Settle")
	defer span.End()

	if input.Date.IsZero() {
		return SettlementReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	return s.run(ctx, calendarDay(input.Date), calendarDay(input.Date), input.Leagues, 1)
}

// Backfill settles every date in [From, To]. Dates run on a worker pool of
// MaxWorkers; leagues within a date stay sequential.
func (s *SettlementService) Backfill(ctx context.Context, input BackfillInput) (SettlementReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SettlementService.Backfill")
	defer span.End()

	if input.From.IsZero() || input.To.IsZero() {
		return SettlementReport{}, fmt.Errorf("%w: from and to dates are required", ErrInvalidInput)
	}
	from, to := calendarDay(input.From), calendarDay(input.To)
	if to.Before(from) {
		return SettlementReport{}, fmt.Errorf("%w: to date is before from date", ErrInvalidInput)
	}
	workers := input.MaxWorkers
	if workers <= 0 {
		workers = s.cfg.MaxWorkers
	}
	return s.run(ctx, from, to, input.Leagues, workers)
}

func (s *SettlementService) run(ctx context.Context, from, to time.Time, requested []string, workers int) (SettlementReport, error) {
	if s.performances == nil || s.props == nil || s.gamelogs == nil {
		return SettlementReport{}, fmt.Errorf("%w: settlement is not fully configured", ErrDependencyUnavailable)
	}
	leagues := normalizeLeagues(requested, s.cfg.Leagues)
	if len(leagues) == 0 {
		return SettlementReport{}, fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}

	dates := make([]time.Time, 0)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	workers = min(max(workers, 1), len(dates))

	ctx, runID := ensureRunID(ctx, s.ids)
	logger := s.logger.With("run_id", runID)
	report := SettlementReport{
		RunID:       runID,
		From:        from.Format(dateLayout),
		To:          to.Format(dateLayout),
		WorkerCount: workers,
		Units:       make([]SettlementUnit, 0, len(dates)*len(leagues)),
	}

	results := make(chan SettlementUnit, len(dates)*len(leagues))
	var successCount, noDataCount, failedCount atomic.Int32

	pool, err := ants.NewPool(workers, ants.WithPanicHandler(func(recovered any) {
		logger.ErrorContext(ctx, "settlement worker panicked", "panic", fmt.Sprint(recovered))
	}))
	if err != nil {
		return SettlementReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, date := range dates {
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			for _, league := range leagues {
				start := time.Now()
				unit := s.safeSettleUnit(ctx, logger, league, date)
				unit.DurationMs = time.Since(start).Milliseconds()
				switch unit.Status {
				case StatusSuccess:
					successCount.Add(1)
				case StatusNoData:
					noDataCount.Add(1)
				default:
					failedCount.Add(1)
				}
				results <- unit
			}
		}); err != nil {
			wg.Done()
			return SettlementReport{}, fmt.Errorf("submit date to worker pool: %w", err)
		}
	}

	wg.Wait()
	close(results)
	for unit := range results {
		report.Units = append(report.Units, unit)
	}
	sort.SliceStable(report.Units, func(i, j int) bool {
		if report.Units[i].Date != report.Units[j].Date {
			return report.Units[i].Date < report.Units[j].Date
		}
		return report.Units[i].League < report.Units[j].League
	})

	report.SuccessCount = int(successCount.Load())
	report.NoDataCount = int(noDataCount.Load())
	report.FailedCount = int(failedCount.Load())
	logger.InfoContext(ctx, "settlement finished",
		"from", report.From,
		"to", report.To,
		"success", report.SuccessCount,
		"no_data", report.NoDataCount,
		"failed", report.FailedCount,
	)
	return report, nil
}

// safeSettleUnit turns a panic in one unit into a failed unit so the other
// leagues of the date still run and report.
func (s *SettlementService) safeSettleUnit(ctx context.Context, logger *logging.Logger, league string, date time.Time) (unit SettlementUnit) {
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "settlement unit panicked",
				"league", league,
				"date", date.Format(dateLayout),
				"panic", fmt.Sprint(recovered),
				"stack", string(debug.Stack()),
			)
			unit = SettlementUnit{
				League:  league,
				Date:    date.Format(dateLayout),
				Status:  StatusFailed,
				Message: fmt.Sprintf("unit panicked: %v", recovered),
			}
		}
	}()
	return s.settleUnit(ctx, logger, league, date)
}

func (s *SettlementService) settleUnit(ctx context.Context, logger *logging.Logger, league string, date time.Time) SettlementUnit {
	unit := SettlementUnit{League: league, Date: date.Format(dateLayout), Status: StatusSuccess}

	raw, err := s.performances.FetchPerformances(ctx, league, date)
	if err != nil {
		unit.Status = StatusFailed
		unit.Message = fmt.Sprintf("fetch performances: %v", err)
		logger.WarnContext(ctx, "fetch performances failed", "league", league, "date", unit.Date, "error", err)
		return unit
	}
	perfs, malformed := s.normalizePerformances(ctx, league, date, raw)
	unit.Malformed = malformed
	unit.Performances = len(perfs)
	if malformed > 0 {
		s.metrics.RecordRejected(ctx, league, RejectMalformed, malformed)
	}
	if len(perfs) == 0 {
		unit.Status = StatusNoData
		unit.Message = "no performances for date"
		return unit
	}

	lines, err := s.props.ListByDate(ctx, league, date)
	if err != nil {
		unit.Status = StatusFailed
		unit.Message = fmt.Sprintf("list prop lines: %v", err)
		return unit
	}
	unit.Lines = len(lines)

	matched := settlement.Match(perfs, lines)
	unit.Matched = len(matched.Matched)
	unit.UnmatchedPerformances = len(matched.UnmatchedPerformances)
	unit.UnmatchedProps = len(matched.UnmatchedProps)
	unit.MatchRate = matched.MatchRate
	s.metrics.RecordMatchRate(ctx, league, matched.MatchRate)

	logs := make([]gamelog.GameLog, 0, len(perfs))
	for _, m := range matched.Matched {
		logs = append(logs, m.GameLog())
	}
	for _, p := range matched.UnmatchedPerformances {
		logs = append(logs, gamelog.FromPerformance(p))
	}
	now := time.Now().UTC()
	for i := range logs {
		logs[i].UpdatedAt = now
	}

	written := writeChunks(ctx, logs, s.cfg.ChunkSize, s.gamelogs.UpsertMany)
	unit.Stored = written.Stored
	unit.FailedChunks = written.FailedChunks
	unit.FailedRows = written.FailedRows
	s.metrics.RecordStored(ctx, "game_logs", written.Stored, written.FailedRows)
	if written.FailedChunks > 0 {
		unit.Message = strings.Join(written.Errors, "; ")
		if written.Stored == 0 {
			unit.Status = StatusFailed
		}
	}

	logger.InfoContext(ctx, "date settled",
		"league", league,
		"date", unit.Date,
		"performances", unit.Performances,
		"lines", unit.Lines,
		"matched", unit.Matched,
		"match_rate", unit.MatchRate,
	)
	return unit
}

// normalizePerformances validates records and rebuilds their canonical
// fields and conflict key. The upstream key is never trusted.
func (s *SettlementService) normalizePerformances(
	ctx context.Context,
	league string,
	date time.Time,
	raw []gamelog.Performance,
) ([]gamelog.Performance, int) {
	out := make([]gamelog.Performance, 0, len(raw))
	malformed := 0
	for _, p := range raw {
		if strings.TrimSpace(p.League) == "" {
			p.League = league
		}
		if p.Date.IsZero() {
			p.Date = date
		}
		if !p.HasValue() {
			malformed++
			s.logger.DebugContext(ctx, "performance dropped",
				"league", league,
				"player", p.PlayerName,
				"prop_type", p.PropType,
				"reason", firstNonEmpty(p.ValueIssue, "value is not finite"),
			)
			continue
		}
		if err := validateRecord(ctx, p); err != nil {
			malformed++
			continue
		}

		p.League = strings.ToLower(strings.TrimSpace(p.League))
		p.Date = calendarDay(p.Date)
		p.Team = strings.ToUpper(strings.TrimSpace(p.Team))
		p.Opponent = strings.ToUpper(strings.TrimSpace(p.Opponent))
		if s.propTypes != nil {
			p.PropType = s.propTypes.Resolve(ctx, p.PropType)
		}
		if p.Season <= 0 {
			p.Season = seasonFor(s.cfg.Seasons, p.League, p.Date)
		}
		if strings.TrimSpace(p.Sportsbook) == "" {
			p.Sportsbook = prop.DefaultSportsbook
		}
		if strings.TrimSpace(p.PlayerID) == "" && s.identities != nil {
			teamAbbr := p.Team
			if teamAbbr == "" {
				teamAbbr = team.Unknown
			}
			identity := s.identities.ResolveQuery(ctx, IdentityQuery{
				Name:   p.PlayerName,
				Team:   teamAbbr,
				League: p.League,
				Source: "performance/" + p.GameID,
			})
			p.PlayerID = identity.ID()
		}
		p.ConflictKey = prop.BuildConflictKey(p.KeyFields())
		out = append(out, p)
	}
	return out, malformed
}
