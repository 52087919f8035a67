package source

import (
	"context"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/redis"
)

// factCache is the subset of redis.Cache used by the decorators
type factCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// CachedFinancial caches financial facts per stock.
// 캐시 오류는 경고만 남기고 원본 소스로 진행
type CachedFinancial struct {
	next   contracts.FinancialProvider
	cache  factCache
	source string
	ttl    time.Duration
	logger *logger.Logger
}

// NewCachedFinancial wraps a financial provider with a redis cache
func NewCachedFinancial(next contracts.FinancialProvider, cache factCache, source string, ttl time.Duration, log *logger.Logger) *CachedFinancial {
	return &CachedFinancial{next: next, cache: cache, source: source, ttl: ttl, logger: log}
}

// FinancialFacts implements contracts.FinancialProvider
func (c *CachedFinancial) FinancialFacts(ctx context.Context, code string) (contracts.Facts, error) {
	key := redis.FinancialFactsKey(c.source, code)

	var cached contracts.Facts
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if hit {
		return cached, nil
	}

	facts, err := c.next.FinancialFacts(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, facts, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return facts, nil
}

// CachedMarket caches market snapshots per stock and trading date
type CachedMarket struct {
	next   contracts.MarketProvider
	cache  factCache
	source string
	ttl    time.Duration
	logger *logger.Logger
	now    func() time.Time
}

// NewCachedMarket wraps a market provider with a redis cache
func NewCachedMarket(next contracts.MarketProvider, cache factCache, source string, ttl time.Duration, log *logger.Logger) *CachedMarket {
	return &CachedMarket{next: next, cache: cache, source: source, ttl: ttl, logger: log, now: time.Now}
}

// MarketSnapshot implements contracts.MarketProvider
func (c *CachedMarket) MarketSnapshot(ctx context.Context, code string) (*contracts.MarketSnapshot, error) {
	key := redis.MarketSnapshotKey(c.source, code, c.now().Format("2006-01-02"))

	var cached contracts.MarketSnapshot
	hit, err := c.cache.Get(ctx, key, &cached)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
	} else if hit {
		return &cached, nil
	}

	snap, err := c.next.MarketSnapshot(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, key, snap, c.ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
	return snap, nil
}
