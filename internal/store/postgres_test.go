package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/database"
	"github.com/wonny/scorecard/pkg/logger"
)

func TestPostgresSink(t *testing.T) {
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	db, err := database.New(cfg)
	require.NoError(t, err)
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, db.EnsureSchema(ctx))

	s := New(db.Pool, logger.NewNop()).ForRun("run-test")

	// 같은 날짜로 두 번 저장하면 마지막 결과만 남음
	require.NoError(t, s.Save(ctx, sampleRanked(true), DestPostgres))
	require.NoError(t, s.Save(ctx, sampleRanked(false)[:1], DestPostgres))

	records, err := s.Load(ctx, "postgres:2026-03-02")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "005930", rec.StockCode())
	assert.Equal(t, int64(1), rec[ColRank])
	assert.Equal(t, 27.0, rec[ColTotalScore])
	assert.Equal(t, int64(71000), rec[ColPrice])
	assert.Equal(t, "2026-03-02", rec[ColAnalysisDate])
	assert.Equal(t, "데이터없음: ROA, PEG", rec[ColNotes])
	assert.NotContains(t, rec, string(contracts.CategoryQuality))

	_, err = db.Pool.Exec(ctx, "DELETE FROM scorecard.results WHERE run_id = 'run-test'")
	require.NoError(t, err)
}
