package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/pkg/logger"
)

type fakeUniverse struct {
	stocks []contracts.Stock
	err    error
}

func (f *fakeUniverse) ListStocks(ctx context.Context) ([]contracts.Stock, error) {
	return f.stocks, f.err
}

type fakeFinancial struct {
	mu     sync.Mutex
	calls  []string
	facts  map[string]contracts.Facts
	errs   map[string]error
	delay  func(code string) time.Duration
	onCall func(code string)
}

func (f *fakeFinancial) FinancialFacts(ctx context.Context, code string) (contracts.Facts, error) {
	f.mu.Lock()
	f.calls = append(f.calls, code)
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(code)
	}
	if f.delay != nil {
		time.Sleep(f.delay(code))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	return f.facts[code], nil
}

type fakeMarket struct {
	calls int32
}

func (f *fakeMarket) MarketSnapshot(ctx context.Context, code string) (*contracts.MarketSnapshot, error) {
	atomic.AddInt32(&f.calls, 1)
	return &contracts.MarketSnapshot{Facts: contracts.Facts{"per": 12.8, "pbr": 1.1}}, nil
}

var testStocks = []contracts.Stock{
	{Code: "005930", Name: "삼성전자"},
	{Code: "000660", Name: "SK하이닉스"},
	{Code: "035420", Name: "NAVER"},
}

func newTestRunner(universe contracts.UniverseProvider, financial contracts.FinancialProvider, workers int) (*Runner, *fakeMarket) {
	market := &fakeMarket{}
	clock := func() time.Time { return time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC) }
	agg := scorecard.NewAggregator(scorecard.CoreTable(), scorecard.WithClock(clock))

	r := NewRunner(universe, financial, market, agg, Config{Workers: workers, RatePerSec: 1000}, logger.NewNop(), WithClock(clock))
	return r, market
}

func TestProcessAll_IsolatesFetchFailure(t *testing.T) {
	financial := &fakeFinancial{
		facts: map[string]contracts.Facts{
			"005930": {"roe": 18.5},
			"035420": {"roe": 9},
		},
		errs: map[string]error{"000660": errors.New("dart timeout")},
	}
	runner, _ := newTestRunner(&fakeUniverse{stocks: testStocks}, financial, 2)

	run, err := runner.ProcessAll(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	assert.Equal(t, "005930", run.Results[0].StockCode)
	assert.Equal(t, "035420", run.Results[1].StockCode)

	require.Len(t, run.Failures, 1)
	assert.Equal(t, "000660", run.Failures[0].StockCode)
	assert.Equal(t, "SK하이닉스", run.Failures[0].CompanyName)
	assert.Equal(t, contracts.FailureSkipped, run.Failures[0].Kind)
	assert.Contains(t, run.Failures[0].Reason, "dart timeout")

	assert.Equal(t, contracts.RunSummary{Scored: 2, Skipped: 1}, run.Summary())
	assert.Equal(t, 3, run.Universe)
	assert.False(t, run.Cancelled)
	assert.Equal(t, "run-20240315-183000.000", run.RunID)
}

func TestProcessAll_PreservesUniverseOrder(t *testing.T) {
	var stocks []contracts.Stock
	for i := 0; i < 20; i++ {
		stocks = append(stocks, contracts.Stock{Code: fmt.Sprintf("%06d", i+1), Name: fmt.Sprintf("종목%d", i)})
	}
	// 앞 종목일수록 늦게 끝나도록
	financial := &fakeFinancial{delay: func(code string) time.Duration {
		var n int
		fmt.Sscanf(code, "%d", &n)
		return time.Duration(20-n) * time.Millisecond
	}}
	runner, _ := newTestRunner(&fakeUniverse{stocks: stocks}, financial, 8)

	run, err := runner.ProcessAll(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, run.Results, len(stocks))
	for i, r := range run.Results {
		assert.Equal(t, stocks[i].Code, r.StockCode)
	}
}

func TestProcessAll_InvalidCodeFails(t *testing.T) {
	stocks := []contracts.Stock{
		{Code: "005930", Name: "삼성전자"},
		{Code: "abc123", Name: "X"},
	}
	financial := &fakeFinancial{}
	runner, _ := newTestRunner(&fakeUniverse{stocks: stocks}, financial, 1)

	run, err := runner.ProcessAll(context.Background(), 0)
	require.NoError(t, err)

	require.Len(t, run.Results, 1)
	require.Len(t, run.Failures, 1)
	assert.Equal(t, contracts.FailureFailed, run.Failures[0].Kind)
	assert.Equal(t, "abc123", run.Failures[0].StockCode)
	assert.Equal(t, []string{"005930"}, financial.calls, "invalid code never reaches the provider")
}

func TestProcessAll_Limit(t *testing.T) {
	runner, _ := newTestRunner(&fakeUniverse{stocks: testStocks}, &fakeFinancial{}, 2)

	run, err := runner.ProcessAll(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 2, run.Universe)
	require.Len(t, run.Results, 2)
	assert.Equal(t, "000660", run.Results[1].StockCode)
}

func TestProcessAll_UniverseFailureIsFatal(t *testing.T) {
	runner, _ := newTestRunner(&fakeUniverse{err: errors.New("db down")}, &fakeFinancial{}, 2)

	run, err := runner.ProcessAll(context.Background(), 0)
	assert.Nil(t, run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestProcessAll_NothingScored(t *testing.T) {
	financial := &fakeFinancial{errs: map[string]error{
		"005930": errors.New("x"),
		"000660": errors.New("y"),
		"035420": errors.New("z"),
	}}
	runner, _ := newTestRunner(&fakeUniverse{stocks: testStocks}, financial, 2)

	run, err := runner.ProcessAll(context.Background(), 0)
	assert.ErrorIs(t, err, contracts.ErrNoStocksScored)
	require.NotNil(t, run)
	assert.Len(t, run.Failures, 3)
}

func TestProcessAll_EmptyUniverse(t *testing.T) {
	runner, _ := newTestRunner(&fakeUniverse{}, &fakeFinancial{}, 2)

	run, err := runner.ProcessAll(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, run.Results)
	assert.Equal(t, 0, run.Universe)
}

func TestProcessAll_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	financial := &fakeFinancial{}
	runner, _ := newTestRunner(&fakeUniverse{stocks: testStocks}, financial, 2)

	run, err := runner.ProcessAll(ctx, 0)
	require.NoError(t, err)

	assert.True(t, run.Cancelled)
	assert.Equal(t, 3, run.Unprocessed)
	assert.Empty(t, run.Results)
	assert.Empty(t, run.Failures)
	assert.Empty(t, financial.calls)
}

func TestProcessAll_CancelMidRunKeepsFinishedResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	financial := &fakeFinancial{onCall: func(code string) {
		if code == "000660" {
			cancel()
		}
	}}
	runner, _ := newTestRunner(&fakeUniverse{stocks: testStocks}, financial, 1)

	run, err := runner.ProcessAll(ctx, 0)
	require.NoError(t, err)

	assert.True(t, run.Cancelled)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "005930", run.Results[0].StockCode)
	assert.Empty(t, run.Failures, "interrupted stock is not a failure")
	assert.Equal(t, 2, run.Unprocessed)
}

func TestProcessSingle(t *testing.T) {
	financial := &fakeFinancial{facts: map[string]contracts.Facts{
		"005930": {"roe": 18.5, "debt_ratio": 28.5, "revenue_growth_3y": 8.2},
	}}
	runner, market := newTestRunner(&fakeUniverse{}, financial, 1)

	result, err := runner.ProcessSingle(context.Background(), "005930", "삼성전자")
	require.NoError(t, err)

	assert.Equal(t, 27.0, result.TotalScore)
	assert.Equal(t, contracts.GradeC, result.OverallGrade)
	assert.Equal(t, int32(1), atomic.LoadInt32(&market.calls))
}

func TestProcessSingle_InvalidCode(t *testing.T) {
	financial := &fakeFinancial{}
	runner, market := newTestRunner(&fakeUniverse{}, financial, 1)

	result, err := runner.ProcessSingle(context.Background(), "abc123", "X")

	assert.Nil(t, result)
	var vErr *contracts.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Empty(t, financial.calls)
	assert.Equal(t, int32(0), atomic.LoadInt32(&market.calls))
}

func TestProcessSingle_WrapsFetchError(t *testing.T) {
	cause := errors.New("no filing")
	financial := &fakeFinancial{errs: map[string]error{"005930": cause}}
	runner, _ := newTestRunner(&fakeUniverse{}, financial, 1)

	_, err := runner.ProcessSingle(context.Background(), "005930", "삼성전자")

	var fetchErr *contracts.SourceFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "financial", fetchErr.Source)
	assert.ErrorIs(t, err, cause)
}
