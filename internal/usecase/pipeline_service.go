package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

type PipelineInput struct {
	Date       time.Time
	Leagues    []string
	Aggressive bool
}

type PipelineReport struct {
	RunID      string           `json:"run_id"`
	Ingestion  IngestionReport  `json:"ingestion"`
	Settlement SettlementReport `json:"settlement"`
	Analytics  AnalyticsReport  `json:"analytics"`
	Errors     []string         `json:"errors,omitempty"`
}

// PipelineService runs one daily cycle: ingest the date's lines, settle the
// previous day, then derive analytics for the date.
type PipelineService struct {
	ingestion  *IngestionService
	settlement *SettlementService
	analytics  *AnalyticsService
	ids        id.Generator
	logger     *logging.Logger
}

func NewPipelineService(
	ingestion *IngestionService,
	settlement *SettlementService,
	analytics *AnalyticsService,
	ids id.Generator,
	logger *logging.Logger,
) *PipelineService {
	if logger == nil {
		logger = logging.Default()
	}
	return &PipelineService{
		ingestion:  ingestion,
		settlement: settlement,
		analytics:  analytics,
		ids:        ids,
		logger:     logger.Named("pipeline"),
	}
}

func (s *PipelineService) Run(ctx context.Context, input PipelineInput) (PipelineReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PipelineService.Run")
	defer span.End()

	if input.Date.IsZero() {
		return PipelineReport{}, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	ctx, runID := ensureRunID(ctx, s.ids)
	report := PipelineReport{RunID: runID}
	date := calendarDay(input.Date)

	var err error
	report.Ingestion, err = s.ingestion.Ingest(ctx, IngestInput{Date: date, Leagues: input.Leagues, Aggressive: input.Aggressive})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("ingest: %v", err))
	}
	report.Settlement, err = s.settlement.Settle(ctx, SettleInput{Date: date.AddDate(0, 0, -1), Leagues: input.Leagues})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("settle: %v", err))
	}
	report.Analytics, err = s.analytics.Compute(ctx, AnalyticsInput{Date: date, Leagues: input.Leagues})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("analytics: %v", err))
	}

	s.logger.InfoContext(ctx, "pipeline finished", "run_id", runID, "errors", len(report.Errors))
	return report, nil
}
