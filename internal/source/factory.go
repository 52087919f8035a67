package source

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/external/dart"
	"github.com/wonny/scorecard/internal/external/naver"
	"github.com/wonny/scorecard/pkg/config"
	"github.com/wonny/scorecard/pkg/httputil"
	"github.com/wonny/scorecard/pkg/logger"
	"github.com/wonny/scorecard/pkg/redis"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// Providers bundles the three data sources used by the batch runner
type Providers struct {
	Universe  contracts.UniverseProvider
	Financial contracts.FinancialProvider
	Market    contracts.MarketProvider
}

// Build wires the providers selected by configuration.
// 유니버스는 항상 DB, 재무/시세는 db|dart|naver 중 선택 후 redis 캐시로 감쌈
// ⭐ SSOT: 데이터 소스 조립은 여기서만
func Build(cfg *config.Config, pool *pgxpool.Pool, rc *redis.Client, log *logger.Logger) (*Providers, error) {
	repo := NewRepository(pool)
	limiter := redis.NewRateLimiter(rc, "scorecard")
	cache := redis.NewCache(rc, "scorecard")
	log = log.WithField("module", "source")

	var financial contracts.FinancialProvider
	switch cfg.Scorecard.FinancialSource {
	case config.SourceDB:
		financial = repo
	case config.SourceDART:
		httpClient := httputil.New(log).
			WithTransport(dart.LegacyTransport()).
			WithRateLimiter(limiter, redis.DARTRateLimit)
		client := dart.NewClient(cfg.DART.APIKey, cfg.DART.BaseURL, httpClient, log)
		financial = NewDARTFinancial(client, repo)
	default:
		return nil, fmt.Errorf("unknown financial source: %s", cfg.Scorecard.FinancialSource)
	}

	var market contracts.MarketProvider
	switch cfg.Scorecard.MarketSource {
	case config.SourceDB:
		market = repo
	case config.SourceNaver:
		httpClient := httputil.New(log).
			WithHeader("User-Agent", userAgent).
			WithRateLimiter(limiter, redis.NaverRateLimit)
		market = NewNaverMarket(naver.NewClient(cfg.Naver.BaseURL, httpClient, log))
	default:
		return nil, fmt.Errorf("unknown market source: %s", cfg.Scorecard.MarketSource)
	}

	if rc.Enabled() {
		financial = NewCachedFinancial(financial, cache, cfg.Scorecard.FinancialSource, cfg.Scorecard.CacheTTL, log)
		market = NewCachedMarket(market, cache, cfg.Scorecard.MarketSource, cfg.Scorecard.CacheTTL, log)
	}

	log.WithFields(map[string]interface{}{
		"financial": cfg.Scorecard.FinancialSource,
		"market":    cfg.Scorecard.MarketSource,
		"cache":     rc.Enabled(),
	}).Info("Data sources ready")

	return &Providers{
		Universe:  repo,
		Financial: financial,
		Market:    market,
	}, nil
}
