package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/external/gamelogs"
	"github.com/riskibarqy/propline/external/oddsfeed"
	"github.com/riskibarqy/propline/internal/config"
	"github.com/riskibarqy/propline/internal/domain/analytics"
	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/postgres"
	idgen "github.com/riskibarqy/propline/internal/platform/id"
	"github.com/riskibarqy/propline/internal/platform/logging"
	"github.com/riskibarqy/propline/internal/usecase"
)

// Runtime holds the wired services one propsync invocation needs.
type Runtime struct {
	Ingestion  *usecase.IngestionService
	Settlement *usecase.SettlementService
	Analytics  *usecase.AnalyticsService
	Pipeline   *usecase.PipelineService
	PropTypes  *usecase.PropTypeResolver

	db *sqlx.DB
}

type repositories struct {
	props     prop.Repository
	gamelogs  gamelog.Repository
	players   player.Repository
	missing   player.MissingRepository
	teams     team.Repository
	aliases   proptype.AliasRepository
	analytics analytics.Repository
}

// New builds storage, clients and services from cfg. Close releases the
// database handle when the postgres driver is in use.
func New(ctx context.Context, cfg config.Config, metrics usecase.Metrics, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}

	rt := &Runtime{}
	var repos repositories
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		repos = memoryRepositories(cfg.Leagues)
		logger.Warn("using in-memory storage, nothing is persisted")
	case config.StorageDriverPostgres:
		db, err := openDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.DBBootstrapSeed {
			if err := postgres.BootstrapSeed(ctx, db, cfg.Leagues); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("bootstrap seed: %w", err)
			}
		}
		rt.db = db
		repos = postgresRepositories(db)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	repos.teams = cache.NewTeamRepository(repos.teams, cfg.RegistryCacheTTL)
	repos.gamelogs = cache.NewGameLogRepository(repos.gamelogs, cfg.RegistryCacheTTL)

	odds := oddsfeed.NewClient(oddsfeed.ClientConfig{
		BaseURL:        cfg.OddsFeedBaseURL,
		APIKey:         cfg.OddsFeedAPIKey,
		Timeout:        cfg.OddsFeedTimeout,
		MaxRetries:     cfg.OddsFeedMaxRetries,
		Logger:         logger,
		CircuitBreaker: cfg.OddsFeedCircuit,
	})
	performances := gamelogs.NewClient(gamelogs.ClientConfig{
		BaseURL:        cfg.PerformanceBaseURL,
		APIKey:         cfg.PerformanceAPIKey,
		Timeout:        cfg.PerformanceTimeout,
		MaxRetries:     cfg.PerformanceMaxRetries,
		Logger:         logger,
		CircuitBreaker: cfg.PerformanceCircuit,
	})

	ids := idgen.NewTimeOrderedGenerator()
	identities := usecase.NewIdentityResolver(repos.players, repos.missing, usecase.IdentityResolverConfig{
		TTL: cfg.IdentityCacheTTL,
	}, logger)
	propTypes := usecase.NewPropTypeResolver(proptype.Default(), repos.aliases, cfg.PropTypeCacheTTL, logger)
	extractor := usecase.NewPropExtractor(identities, propTypes, usecase.NewTeamResolver(), cfg.GameDateLocation, logger)

	rt.PropTypes = propTypes
	rt.Ingestion = usecase.NewIngestionService(
		usecase.NewEventFetcher(odds, metrics, logger),
		extractor,
		repos.teams,
		repos.props,
		repos.gamelogs,
		ids,
		usecase.IngestionConfig{
			Leagues:    cfg.Leagues,
			Seasons:    cfg.Seasons,
			Markets:    cfg.OddsFeedMarkets,
			Aggressive: cfg.FetchAggressive,
			EventLimit: cfg.OddsFeedEventLimit,
			ChunkSize:  cfg.StoreChunkSize,
		},
		metrics,
		logger,
	)
	rt.Settlement = usecase.NewSettlementService(
		performances,
		repos.props,
		repos.gamelogs,
		identities,
		propTypes,
		ids,
		usecase.SettlementConfig{
			Leagues:    cfg.Leagues,
			Seasons:    cfg.Seasons,
			ChunkSize:  cfg.StoreChunkSize,
			MaxWorkers: cfg.BackfillMaxWorkers,
		},
		metrics,
		logger,
	)
	rt.Analytics = usecase.NewAnalyticsService(
		repos.props,
		repos.gamelogs,
		repos.analytics,
		ids,
		usecase.AnalyticsConfig{
			Leagues:         cfg.Leagues,
			Seasons:         cfg.Seasons,
			MatchupMinGames: cfg.MatchupMinGames,
			ChunkSize:       cfg.StoreChunkSize,
			HistoryLimit:    cfg.AnalyticsHistoryLimit,
		},
		logger,
	)
	rt.Pipeline = usecase.NewPipelineService(rt.Ingestion, rt.Settlement, rt.Analytics, ids, logger)

	logger.Info("runtime wired",
		"storage_driver", cfg.StorageDriver,
		"leagues", cfg.Leagues,
		"chunk_size", cfg.StoreChunkSize,
	)
	return rt, nil
}

func (r *Runtime) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func postgresRepositories(db *sqlx.DB) repositories {
	return repositories{
		props:     postgres.NewPropRepository(db),
		gamelogs:  postgres.NewGameLogRepository(db),
		players:   postgres.NewPlayerRepository(db),
		missing:   postgres.NewMissingPlayerRepository(db),
		teams:     postgres.NewTeamRepository(db),
		aliases:   postgres.NewPropTypeAliasRepository(db),
		analytics: postgres.NewAnalyticsRepository(db),
	}
}

func memoryRepositories(leagues []string) repositories {
	var teams []team.Team
	for _, league := range leagues {
		teams = append(teams, team.StaticTeams(league)...)
	}
	return repositories{
		props:     memory.NewPropRepository(),
		gamelogs:  memory.NewGameLogRepository(nil),
		players:   memory.NewPlayerRepository(memory.SeedPlayers()),
		missing:   memory.NewMissingPlayerRepository(),
		teams:     memory.NewTeamRepository(teams),
		aliases:   memory.NewPropTypeAliasRepository(memory.SeedPropTypeAliases()),
		analytics: memory.NewAnalyticsRepository(),
	}
}
