package source

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/database"
)

func openTestRepository(t *testing.T) *Repository {
	t.Helper()
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return NewRepository(db.Pool)
}

func TestRepository_ListStocks(t *testing.T) {
	repo := openTestRepository(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stocks, err := repo.ListStocks(ctx)
	require.NoError(t, err)

	for i := 1; i < len(stocks); i++ {
		assert.Less(t, stocks[i-1].Code, stocks[i].Code)
	}
}

func TestRepository_UnknownStock(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()

	_, err := repo.FinancialFacts(ctx, "000000")
	assert.True(t, errors.Is(err, ErrNoData))

	snap, err := repo.MarketSnapshot(ctx, "000000")
	require.NoError(t, err)
	assert.Empty(t, snap.Facts)
	assert.Nil(t, snap.Quote)

	_, err = repo.CorpCode(ctx, "000000")
	assert.True(t, errors.Is(err, ErrNoData))
}
