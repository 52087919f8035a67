package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wonny/scorecard/pkg/config"
)

// DB wraps the pgxpool.Pool
// ⭐ SSOT: DB 연결은 이 패키지에서만 생성
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool
// ⭐ SSOT: 유일하게 pgxpool.New()를 호출하는 함수
func New(cfg *config.Config) (*DB, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks if the database is accessible
func (db *DB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// schemaDDL creates the scorecard result table.
// 입력 테이블(data.*)은 수집 파이프라인이 관리하므로 여기서 만들지 않음
const schemaDDL = `
CREATE SCHEMA IF NOT EXISTS scorecard;

CREATE TABLE IF NOT EXISTS scorecard.results (
	run_id             TEXT         NOT NULL,
	rank               INTEGER      NOT NULL,
	stock_code         VARCHAR(6)   NOT NULL,
	company_name       TEXT         NOT NULL,
	total_score        NUMERIC(6,2) NOT NULL,
	max_score          NUMERIC(6,2) NOT NULL,
	score_percentage   NUMERIC(6,2) NOT NULL,
	grade              TEXT         NOT NULL,
	recommendation     TEXT         NOT NULL,
	profitability      NUMERIC(6,2) NOT NULL,
	growth             NUMERIC(6,2) NOT NULL,
	stability          NUMERIC(6,2) NOT NULL,
	efficiency         NUMERIC(6,2) NOT NULL,
	valuation          NUMERIC(6,2) NOT NULL,
	quality            NUMERIC(6,2),
	risk_level         TEXT         NOT NULL,
	investment_thesis  TEXT         NOT NULL,
	price              NUMERIC,
	market_cap         NUMERIC,
	detail             JSONB        NOT NULL,
	analysis_date      DATE         NOT NULL,
	created_at         TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	PRIMARY KEY (analysis_date, stock_code)
);

CREATE INDEX IF NOT EXISTS idx_scorecard_results_rank
	ON scorecard.results (analysis_date, rank);
`

// EnsureSchema creates the scorecard schema if it does not exist yet
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure scorecard schema: %w", err)
	}
	return nil
}

// HealthCheck returns detailed health information about the database
func (db *DB) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Healthy:   false,
		Timestamp: time.Now(),
	}

	start := time.Now()
	if err := db.Pool.Ping(ctx); err != nil {
		status.Error = err.Error()
		return status, err
	}
	status.ResponseTime = time.Since(start)
	status.Stats = db.Stats()
	status.Healthy = true

	return status, nil
}

// HealthStatus represents the health status of the database
type HealthStatus struct {
	Healthy      bool          `json:"healthy"`
	Timestamp    time.Time     `json:"timestamp"`
	ResponseTime time.Duration `json:"response_time"`
	Error        string        `json:"error,omitempty"`
	Stats        PoolStats     `json:"stats"`
}

// PoolStats represents connection pool statistics
type PoolStats struct {
	AcquiredConns int32 `json:"acquired_conns"`
	IdleConns     int32 `json:"idle_conns"`
	MaxConns      int32 `json:"max_conns"`
	TotalConns    int32 `json:"total_conns"`
}

// Stats returns the current pool statistics
func (db *DB) Stats() PoolStats {
	stats := db.Pool.Stat()
	return PoolStats{
		AcquiredConns: stats.AcquiredConns(),
		IdleConns:     stats.IdleConns(),
		MaxConns:      stats.MaxConns(),
		TotalConns:    stats.TotalConns(),
	}
}
