package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

type IngestionConfig struct {
	Leagues    []string
	Seasons    map[string]int
	Markets    map[string][]string
	Aggressive bool
	EventLimit int
	ChunkSize  int
}

type IngestInput struct {
	Date       time.Time
	Leagues    []string
	Aggressive bool
	DryRun     bool
}

type IngestionUnit struct {
	League         string         `json:"league"`
	Season         int            `json:"season"`
	Status         string         `json:"status"`
	Message        string         `json:"message,omitempty"`
	FetchTier      int            `json:"fetch_tier"`
	Attempts       []FetchAttempt `json:"attempts"`
	Events         int            `json:"events"`
	Extract        ExtractStats   `json:"extract"`
	Unsupported    int            `json:"unsupported"`
	FilterBypassed bool           `json:"filter_bypassed"`
	Stored         int            `json:"stored"`
	FailedChunks   int            `json:"failed_chunks"`
	FailedRows     int            `json:"failed_rows"`
	DurationMs     int64          `json:"duration_ms"`
}

type IngestionReport struct {
	RunID  string          `json:"run_id"`
	Date   string          `json:"date"`
	DryRun bool            `json:"dry_run"`
	Units  []IngestionUnit `json:"units"`
}

// Failed counts units that ended in the failed state.
func (r IngestionReport) Failed() int {
	n := 0
	for _, u := range r.Units {
		if u.Status == StatusFailed {
			n++
		}
	}
	return n
}

// IngestionService runs fetch, extraction, filtering and chunked storage for
// each league of a date. Leagues are processed one after another and a
// failing league never stops the rest.
type IngestionService struct {
	fetcher   *EventFetcher
	extractor *PropExtractor
	teams     team.Repository
	props     prop.Repository
	gamelogs  gamelog.Repository
	ids       id.Generator
	cfg       IngestionConfig
	metrics   Metrics
	logger    *logging.Logger
}

func NewIngestionService(
	fetcher *EventFetcher,
	extractor *PropExtractor,
	teams team.Repository,
	props prop.Repository,
	gamelogs gamelog.Repository,
	ids id.Generator,
	cfg IngestionConfig,
	metrics Metrics,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	return &IngestionService{
		fetcher:   fetcher,
		extractor: extractor,
		teams:     teams,
		props:     props,
		gamelogs:  gamelogs,
		ids:       ids,
		cfg:       cfg,
		metrics:   metricsOrNoop(metrics),
		logger:    logger.Named("ingestion"),
	}
}

func (s *IngestionService) Ingest(ctx context.Context, input IngestInput) (IngestionReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.Ingest")
	defer span.End()

	if input.Date.IsZero() {
		return IngestionReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if s.fetcher == nil || s.extractor == nil || s.props == nil {
		return IngestionReport{}, fmt.Errorf("%w: ingestion is not fully configured", ErrDependencyUnavailable)
	}
	leagues := normalizeLeagues(input.Leagues, s.cfg.Leagues)
	if len(leagues) == 0 {
		return IngestionReport{}, fmt.Errorf("%w: at least one league is required", ErrInvalidInput)
	}

	ctx, runID := ensureRunID(ctx, s.ids)
	logger := s.logger.With("run_id", runID)
	report := IngestionReport{
		RunID:  runID,
		Date:   input.Date.Format(dateLayout),
		DryRun: input.DryRun,
		Units:  make([]IngestionUnit, 0, len(leagues)),
	}

	supported, supportedErr := s.loadSupported(ctx)
	if supportedErr != nil {
		logger.WarnContext(ctx, "load supported prop types failed, filter bypassed", "error", supportedErr)
	}

	aggressive := input.Aggressive || s.cfg.Aggressive
	for _, league := range leagues {
		start := time.Now()
		unit := s.ingestLeague(ctx, logger, league, input.Date, aggressive, input.DryRun, supported)
		unit.DurationMs = time.Since(start).Milliseconds()
		report.Units = append(report.Units, unit)
	}

	logger.InfoContext(ctx, "ingestion finished",
		"date", report.Date,
		"units", len(report.Units),
		"failed", report.Failed(),
	)
	return report, nil
}

func (s *IngestionService) ingestLeague(
	ctx context.Context,
	logger *logging.Logger,
	league string,
	date time.Time,
	aggressive bool,
	dryRun bool,
	supported map[string]map[string]struct{},
) IngestionUnit {
	season := seasonFor(s.cfg.Seasons, league, date)
	unit := IngestionUnit{League: league, Season: season, Status: StatusSuccess}

	fetched, err := s.fetcher.Fetch(ctx, FetchRequest{
		League:     league,
		Season:     season,
		Date:       date,
		Aggressive: aggressive,
		Markets:    s.cfg.Markets[league],
		Limit:      s.cfg.EventLimit,
	})
	unit.Attempts = fetched.Attempts
	unit.FetchTier = fetched.Tier
	if err != nil {
		unit.Status = StatusFailed
		unit.Message = err.Error()
		return unit
	}
	if fetched.Tier == 0 {
		unit.Status = StatusNoData
		unit.Message = "no events in any fetch tier"
		return unit
	}
	unit.Events = len(fetched.Events)

	extracted := s.extractor.Extract(ctx, ExtractInput{
		League:   league,
		Season:   season,
		Events:   fetched.Events,
		Registry: s.registry(ctx, logger, league),
	})
	unit.Extract = extracted.Stats
	s.recordRejections(ctx, league, extracted.Stats)

	props, unsupported, bypassed := filterSupported(league, extracted.Props, supported)
	unit.Unsupported = unsupported
	unit.FilterBypassed = bypassed
	if bypassed {
		logger.WarnContext(ctx, "no supported prop types for league, filter bypassed", "league", league)
	}
	if unsupported > 0 {
		s.metrics.RecordRejected(ctx, league, "unsupported_prop_type", unsupported)
	}

	if len(props) == 0 {
		unit.Status = StatusNoData
		unit.Message = "no props survived extraction"
		return unit
	}
	if dryRun {
		unit.Message = fmt.Sprintf("dry run: %d props not stored", len(props))
		return unit
	}

	written := writeChunks(ctx, props, s.cfg.ChunkSize, s.props.UpsertMany)
	unit.Stored = written.Stored
	unit.FailedChunks = written.FailedChunks
	unit.FailedRows = written.FailedRows
	s.metrics.RecordStored(ctx, "prop_lines", written.Stored, written.FailedRows)
	if written.FailedChunks > 0 {
		unit.Message = strings.Join(written.Errors, "; ")
		if written.Stored == 0 {
			unit.Status = StatusFailed
		}
		logger.ErrorContext(ctx, "prop line chunks failed",
			"league", league,
			"failed_chunks", written.FailedChunks,
			"failed_rows", written.FailedRows,
		)
	}
	return unit
}

func (s *IngestionService) registry(ctx context.Context, logger *logging.Logger, league string) *team.Registry {
	if s.teams == nil {
		return team.NewRegistry(league, nil)
	}
	teams, err := s.teams.ListByLeague(ctx, league)
	if err != nil {
		logger.WarnContext(ctx, "load team registry failed, using static table", "league", league, "error", err)
		return team.NewRegistry(league, nil)
	}
	registry := team.NewRegistry(league, teams)
	if registry.FromStatic() {
		logger.InfoContext(ctx, "team registry empty, using static table", "league", league, "teams", registry.Len())
	}
	return registry
}

func (s *IngestionService) loadSupported(ctx context.Context) (map[string]map[string]struct{}, error) {
	if s.gamelogs == nil {
		return nil, fmt.Errorf("%w: game log repository is not configured", ErrDependencyUnavailable)
	}
	raw, err := s.gamelogs.ListSupportedPropTypes(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]map[string]struct{}, len(raw))
	for league, types := range raw {
		league = strings.ToLower(strings.TrimSpace(league))
		set := out[league]
		if set == nil {
			set = make(map[string]struct{}, len(types))
			out[league] = set
		}
		for _, t := range types {
			set[t] = struct{}{}
		}
	}
	return out, nil
}

func (s *IngestionService) recordRejections(ctx context.Context, league string, stats ExtractStats) {
	for reason, n := range map[string]int{
		RejectIncomplete:      stats.Incomplete,
		RejectPlaceholderName: stats.PlaceholderName,
		RejectUnknownPropType: stats.UnknownPropType,
		RejectMalformed:       stats.Malformed,
		RejectInvalid:         stats.Invalid,
	} {
		if n > 0 {
			s.metrics.RecordRejected(ctx, league, reason, n)
		}
	}
}

// filterSupported drops props whose prop type was never observed in game
// logs for the league. A league with no observed types is passed through.
func filterSupported(league string, props []prop.Prop, supported map[string]map[string]struct{}) ([]prop.Prop, int, bool) {
	allowed := supported[league]
	if len(allowed) == 0 {
		return props, 0, true
	}
	out := make([]prop.Prop, 0, len(props))
	dropped := 0
	for _, p := range props {
		if _, ok := allowed[p.PropType]; !ok {
			dropped++
			continue
		}
		out = append(out, p)
	}
	return out, dropped, false
}

func normalizeLeagues(requested, defaults []string) []string {
	source := requested
	if len(source) == 0 {
		source = defaults
	}
	seen := make(map[string]struct{}, len(source))
	out := make([]string, 0, len(source))
	for _, league := range source {
		league = strings.ToLower(strings.TrimSpace(league))
		if league == "" {
			continue
		}
		if _, ok := seen[league]; ok {
			continue
		}
		seen[league] = struct{}{}
		out = append(out, league)
	}
	return out
}

func seasonFor(seasons map[string]int, league string, date time.Time) int {
	if season, ok := seasons[league]; ok && season > 0 {
		return season
	}
	return date.Year()
}
