package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/domain/analytics"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/sourcegraph/conc/iter"
)

type AnalyticsConfig struct {
	Leagues         []string
	Seasons         map[string]int
	MatchupMinGames int
	ChunkSize       int
	// HistoryLimit caps past logs read per player and prop type; zero reads all.
	HistoryLimit int
}

type AnalyticsInput struct {
	Date    time.Time
	Leagues []string
}

type AnalyticsUnit struct {
	League       string `json:"league"`
	Season       int    `json:"season"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	Lines        int    `json:"lines"`
	WithEV       int    `json:"with_ev"`
	Matchups     int    `json:"matchups"`
	Stored       int    `json:"stored"`
	FailedChunks int    `json:"failed_chunks"`
	FailedRows   int    `json:"failed_rows"`
	DurationMs   int64  `json:"duration_ms"`
}

type AnalyticsReport struct {
	RunID string          `json:"run_id"`
	Date  string          `json:"date"`
	Units []AnalyticsUnit `json:"units"`
}

// AnalyticsService derives EV, streaks and matchup rankings for the prop
// lines of a date. All reads happen first; the per-prop computation then
// fans out over the CPU.
type AnalyticsService struct {
	props     prop.Repository
	gamelogs  gamelog.Repository
	analytics analytics.Repository
	ids       id.Generator
	cfg       AnalyticsConfig
	now       func() time.Time
	logger    *logging.Logger
}

func NewAnalyticsService(
	props prop.Repository,
	gamelogs gamelog.Repository,
	analyticsRepo analytics.Repository,
	ids id.Generator,
	cfg AnalyticsConfig,
	logger *logging.Logger,
) *AnalyticsService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.MatchupMinGames <= 0 {
		cfg.MatchupMinGames = 1
	}
	return &AnalyticsService{
		props:     props,
		gamelogs:  gamelogs,
		analytics: analyticsRepo,
		ids:       ids,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger.Named("analytics"),
	}
}

func (s *AnalyticsService) Compute(ctx context.Context, input AnalyticsInput) (AnalyticsReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AnalyticsService.Compute")
	defer span.End()

	if input.Date.IsZero() {
		return AnalyticsReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if s.props == nil || s.gamelogs == nil || s.analytics == nil {
		return AnalyticsReport{}, fmt.Errorf("%w: analytics is not fully configured", ErrDependencyUnavailable)
	}
	leagues := normalizeLeagues(input.Leagues, s.cfg.Leagues)
	if len(leagues) == 0 {
		return AnalyticsReport{}, fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}

	date := calendarDay(input.Date)
	ctx, runID := ensureRunID(ctx, s.ids)
	logger := s.logger.With("run_id", runID)
	report := AnalyticsReport{RunID: runID, Date: date.Format(dateLayout), Units: make([]AnalyticsUnit, 0, len(leagues))}

	for _, league := range leagues {
		start := time.Now()
		unit := s.computeLeague(ctx, logger, league, date)
		unit.DurationMs = time.Since(start).Milliseconds()
		report.Units = append(report.Units, unit)
	}
	return report, nil
}

type historyKey struct {
	playerID string
	propType string
}

func (s *AnalyticsService) computeLeague(ctx context.Context, logger *logging.Logger, league string, date time.Time) AnalyticsUnit {
	unit := AnalyticsUnit{League: league, Status: StatusSuccess}

	lines, err := s.props.ListByDate(ctx, league, date)
	if err != nil {
		unit.Status = StatusFailed
		unit.Message = fmt.Sprintf("list prop lines: %v", err)
		return unit
	}
	unit.Lines = len(lines)
	if len(lines) == 0 {
		unit.Status = StatusNoData
		unit.Message = "no prop lines for date"
		return unit
	}

	season := lines[0].Season
	if season <= 0 {
		season = seasonFor(s.cfg.Seasons, league, date)
	}
	unit.Season = season

	seasonLogs, err := s.gamelogs.ListByLeagueSeason(ctx, league, season)
	if err != nil {
		unit.Status = StatusFailed
		unit.Message = fmt.Sprintf("list season game logs: %v", err)
		return unit
	}
	rankings := analytics.RankMatchups(seasonLogs, s.cfg.MatchupMinGames)
	unit.Matchups = len(rankings)
	if err := s.analytics.ReplaceMatchupRankings(ctx, league, season, rankings); err != nil {
		logger.WarnContext(ctx, "store matchup rankings failed", "league", league, "season", season, "error", err)
		unit.Message = fmt.Sprintf("store matchup rankings: %v", err)
	}
	matchups := analytics.NewMatchupIndex(rankings)

	histories := make(map[historyKey][]gamelog.GameLog)
	for _, line := range lines {
		key := historyKey{playerID: line.PlayerID, propType: line.PropType}
		if _, ok := histories[key]; ok {
			continue
		}
		logs, err := s.gamelogs.ListHistory(ctx, gamelog.HistoryQuery{
			League:   league,
			PlayerID: line.PlayerID,
			PropType: line.PropType,
			Before:   date,
			Limit:    s.cfg.HistoryLimit,
		})
		if err != nil {
			logger.WarnContext(ctx, "list player history failed",
				"league", league,
				"player_id", line.PlayerID,
				"prop_type", line.PropType,
				"error", err,
			)
		}
		histories[key] = logs
	}

	computedAt := s.now().UTC()
	rows := iter.Map(lines, func(line *prop.Prop) analytics.PropAnalytics {
		return derivePropAnalytics(*line, date, histories[historyKey{playerID: line.PlayerID, propType: line.PropType}], matchups, computedAt)
	})
	for _, row := range rows {
		if row.EVPercent != nil {
			unit.WithEV++
		}
	}

	written := writeChunks(ctx, rows, s.cfg.ChunkSize, s.analytics.UpsertPropAnalytics)
	unit.Stored = written.Stored
	unit.FailedChunks = written.FailedChunks
	unit.FailedRows = written.FailedRows
	if written.FailedChunks > 0 {
		msg := strings.Join(written.Errors, "; ")
		if unit.Message != "" {
			msg = unit.Message + "; " + msg
		}
		unit.Message = msg
		if written.Stored == 0 {
			unit.Status = StatusFailed
		}
	}

	logger.InfoContext(ctx, "analytics computed",
		"league", league,
		"lines", unit.Lines,
		"with_ev", unit.WithEV,
		"matchups", unit.Matchups,
		"stored", unit.Stored,
	)
	return unit
}

func derivePropAnalytics(
	line prop.Prop,
	date time.Time,
	history []gamelog.GameLog,
	matchups *analytics.MatchupIndex,
	computedAt time.Time,
) analytics.PropAnalytics {
	values := make([]float64, 0, len(history))
	points := make([]analytics.HistoryPoint, 0, len(history))
	for _, log := range history {
		if !log.Date.Before(date) {
			continue
		}
		values = append(values, log.Value)
		points = append(points, analytics.HistoryPoint{Date: log.Date, Value: log.Value, Opponent: log.Opponent})
	}

	lineValue := line.Line
	streak := analytics.Streaks(points, date, line.Line, line.Opponent)
	out := analytics.PropAnalytics{
		ConflictKey:     line.ConflictKey,
		PlayerID:        line.PlayerID,
		PropType:        line.PropType,
		League:          line.League,
		Date:            line.Date,
		EVPercent:       analytics.ExpectedValue(line.OverOdds, &lineValue, values),
		Last5:           streak.Last5,
		Last10:          streak.Last10,
		Last20:          streak.Last20,
		HeadToHead:      streak.HeadToHead,
		StreakLength:    streak.Length,
		StreakDirection: streak.Direction,
		StreakTier:      streak.Tier,
		Signal:          streak.Signal,
		ComputedAt:      computedAt,
	}
	if r, ok := matchups.Lookup(line.League, line.PropType, line.Opponent); ok {
		percentile := r.Percentile
		out.MatchupPercentile = &percentile
		out.MatchupLabel = r.Label
	}
	return out
}
