package commands

import (
	"fmt"

	"github.com/wonny/scorecard/internal/batch"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/internal/source"
	"github.com/wonny/scorecard/internal/store"
	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/database"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/redis"
)

// app holds the shared resources of one command invocation.
// DB 풀과 redis 클라이언트는 한 번만 열고 close()에서 반드시 닫음
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *database.DB
	redis  *redis.Client
	table  *scorecard.Table
	runner *batch.Runner
	store  *store.Store
}

// loadConfig applies global flags on top of the environment
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if bandsFile != "" {
		cfg.Scorecard.BandsFile = bandsFile
	}
	if includeQuality {
		cfg.Scorecard.IncludeQuality = true
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp wires config, logger, database, redis, providers, runner and store
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	log := logger.New(cfg)

	table, err := scorecard.Resolve(cfg.Scorecard.BandsFile, cfg.Scorecard.IncludeQuality)
	if err != nil {
		return nil, fmt.Errorf("load band table: %w", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	rc, err := redis.New(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	providers, err := source.Build(cfg, db.Pool, rc, log)
	if err != nil {
		rc.Close()
		db.Close()
		return nil, err
	}

	runner := batch.NewRunner(
		providers.Universe,
		providers.Financial,
		providers.Market,
		scorecard.NewAggregator(table),
		batch.Config{
			Workers:    cfg.Scorecard.Workers,
			RatePerSec: cfg.Scorecard.RatePerSec,
		},
		log,
	)

	log.WithFields(map[string]interface{}{
		"max_score": table.MaxScore(),
		"bands":     cfg.Scorecard.BandsFile,
		"workers":   cfg.Scorecard.Workers,
	}).Debug("Scorecard engine ready")

	return &app{
		cfg:    cfg,
		log:    log,
		db:     db,
		redis:  rc,
		table:  table,
		runner: runner,
		store:  store.New(db.Pool, log),
	}, nil
}

func (a *app) close() {
	if err := a.redis.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close redis")
	}
	a.db.Close()
}
