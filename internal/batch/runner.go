package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/pkg/logger"
)

// Config holds runner configuration
type Config struct {
	Workers    int     // Number of concurrent workers
	RatePerSec float64 // 데이터 소스 호출 한도 (초당, 종목당 2회 호출)
}

// Runner scores a stock universe with per-stock failure isolation
// ⭐ SSOT: 배치 스코어링 오케스트레이션은 이 패키지에서만
type Runner struct {
	universe   contracts.UniverseProvider
	financial  contracts.FinancialProvider
	market     contracts.MarketProvider
	aggregator *scorecard.Aggregator
	limiter    *rate.Limiter
	workers    int
	logger     *logger.Logger
	now        func() time.Time
}

// Option configures a Runner
type Option func(*Runner)

// WithClock sets the clock used for run timestamps and IDs
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// NewRunner creates a new Runner
func NewRunner(
	universe contracts.UniverseProvider,
	financial contracts.FinancialProvider,
	market contracts.MarketProvider,
	aggregator *scorecard.Aggregator,
	cfg Config,
	log *logger.Logger,
	opts ...Option,
) *Runner {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	limit := rate.Inf
	burst := 1
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
		if int(cfg.RatePerSec) > burst {
			burst = int(cfg.RatePerSec)
		}
	}

	r := &Runner{
		universe:   universe,
		financial:  financial,
		market:     market,
		aggregator: aggregator,
		limiter:    rate.NewLimiter(limit, burst),
		workers:    workers,
		logger:     log.WithField("module", "batch"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// slot holds the outcome of one universe entry
type slot struct {
	result  *contracts.ScorecardResult
	failure *contracts.FailureRecord
	done    bool
}

// ProcessAll scores up to limit stocks of the universe (limit <= 0: unbounded).
// Results keep universe order. On cancellation the finished results are returned
// with Cancelled set and unstarted stocks counted in Unprocessed.
func (r *Runner) ProcessAll(ctx context.Context, limit int) (*contracts.BatchRun, error) {
	started := r.now()
	runID := "run-" + started.Format("20060102-150405.000")
	log := r.logger.WithField("run_id", runID)

	// 1. Get universe
	stocks, err := r.universe.ListStocks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}
	if limit > 0 && len(stocks) > limit {
		stocks = stocks[:limit]
	}

	log.WithFields(map[string]interface{}{
		"stock_count": len(stocks),
		"workers":     r.workers,
		"limit":       limit,
	}).Info("Starting batch scoring")

	// 2. Worker pool over indexed slots
	slots := make([]slot, len(stocks))
	jobCh := make(chan int, len(stocks))
	for i := range stocks {
		jobCh <- i
	}
	close(jobCh)

	var wg sync.WaitGroup
	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.worker(ctx, workerID, stocks, jobCh, slots, log)
		}(w)
	}
	wg.Wait()

	// 3. Collect in universe order
	run := &contracts.BatchRun{
		RunID:     runID,
		StartedAt: started,
		Universe:  len(stocks),
		Results:   make([]*contracts.ScorecardResult, 0, len(stocks)),
		Cancelled: ctx.Err() != nil,
	}
	for _, s := range slots {
		switch {
		case !s.done:
			run.Unprocessed++
		case s.result != nil:
			run.Results = append(run.Results, s.result)
		case s.failure != nil:
			run.Failures = append(run.Failures, *s.failure)
		}
	}
	run.FinishedAt = r.now()

	summary := run.Summary()
	log.WithFields(map[string]interface{}{
		"scored":      summary.Scored,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"unprocessed": summary.Unprocessed,
		"cancelled":   run.Cancelled,
		"duration":    run.Duration().String(),
	}).Info("Batch scoring completed")

	if len(stocks) > 0 && len(run.Results) == 0 && !run.Cancelled {
		return run, contracts.ErrNoStocksScored
	}
	return run, nil
}

// worker processes stocks until the job channel drains or ctx is cancelled
func (r *Runner) worker(ctx context.Context, workerID int, stocks []contracts.Stock, jobCh <-chan int, slots []slot, log *logger.Logger) {
	for idx := range jobCh {
		// 취소 후에는 새 종목을 시작하지 않음 (unprocessed)
		if ctx.Err() != nil {
			continue
		}

		stock := stocks[idx]
		result, err := r.ProcessSingle(ctx, stock.Code, stock.Name)

		stockLog := log.WithFields(map[string]interface{}{
			"worker":     workerID,
			"stock_code": stock.Code,
		})

		if err != nil {
			// 취소로 중단된 종목은 실패가 아니라 미처리
			if ctx.Err() != nil {
				continue
			}
			failure := classify(stock, err)
			stockLog.WithError(err).WithField("kind", failure.Kind).Warn("Stock not scored")
			slots[idx] = slot{failure: &failure, done: true}
			continue
		}

		stockLog.WithFields(map[string]interface{}{
			"total_score": result.TotalScore,
			"grade":       result.OverallGrade,
		}).Info("Stock scored")
		slots[idx] = slot{result: result, done: true}
	}
}

// classify maps an error to a failure record: fetch errors are skipped, the rest failed
func classify(stock contracts.Stock, err error) contracts.FailureRecord {
	kind := contracts.FailureFailed
	var fetchErr *contracts.SourceFetchError
	if errors.As(err, &fetchErr) {
		kind = contracts.FailureSkipped
	}
	return contracts.FailureRecord{
		StockCode:   stock.Code,
		CompanyName: stock.Name,
		Kind:        kind,
		Reason:      err.Error(),
	}
}

// ProcessSingle fetches facts for one stock and scores it.
// 종목코드가 잘못되면 데이터 소스를 호출하지 않고 ValidationError 반환
func (r *Runner) ProcessSingle(ctx context.Context, code, name string) (*contracts.ScorecardResult, error) {
	if err := contracts.ValidateStockCode(code); err != nil {
		return nil, err
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	financial, err := r.financial.FinancialFacts(ctx, code)
	if err != nil {
		return nil, asFetchError(code, "financial", err)
	}

	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	snapshot, err := r.market.MarketSnapshot(ctx, code)
	if err != nil {
		return nil, asFetchError(code, "market", err)
	}

	in := scorecard.Input{
		StockCode:   code,
		CompanyName: name,
		Financial:   financial,
	}
	if snapshot != nil {
		in.Market = snapshot.Facts
		in.Quote = snapshot.Quote
	}

	return r.aggregator.Calculate(in)
}

func asFetchError(code, source string, err error) error {
	var fetchErr *contracts.SourceFetchError
	if errors.As(err, &fetchErr) {
		return err
	}
	return &contracts.SourceFetchError{StockCode: code, Source: source, Err: err}
}
