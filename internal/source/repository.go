package source

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/wonny/scorecard/internal/contracts"
)

// ErrNoData is returned when a source has nothing at all for a stock
var ErrNoData = errors.New("no data for stock")

// Repository reads the scoring inputs collected into the data schema
// ⭐ SSOT: data.* 테이블 조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListStocks returns the active KOSPI/KOSDAQ universe in code order
func (r *Repository) ListStocks(ctx context.Context) ([]contracts.Stock, error) {
	query := `
		SELECT code, name
		FROM data.stocks
		WHERE status = 'active'
		  AND market IN ('KOSPI', 'KOSDAQ')
		ORDER BY code
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active stocks: %w", err)
	}
	defer rows.Close()

	stocks := make([]contracts.Stock, 0)
	for rows.Next() {
		var s contracts.Stock
		if err := rows.Scan(&s.Code, &s.Name); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		stocks = append(stocks, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return stocks, nil
}

// FinancialFacts returns the latest reported value of every financial metric
func (r *Repository) FinancialFacts(ctx context.Context, code string) (contracts.Facts, error) {
	query := `
		SELECT DISTINCT ON (metric) metric, value
		FROM data.financial_metrics
		WHERE stock_code = $1
		ORDER BY metric, report_date DESC
	`

	facts, err := r.queryFacts(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query financial metrics: %w", err)
	}
	if len(facts) == 0 {
		return nil, fmt.Errorf("%w: financial_metrics code=%s", ErrNoData, code)
	}
	return facts, nil
}

// MarketSnapshot returns the latest valuation metrics and quote of a stock.
// 시세가 없으면 Quote는 nil (에러 아님)
func (r *Repository) MarketSnapshot(ctx context.Context, code string) (*contracts.MarketSnapshot, error) {
	query := `
		SELECT DISTINCT ON (metric) metric, value
		FROM data.market_metrics
		WHERE stock_code = $1
		ORDER BY metric, trade_date DESC
	`

	facts, err := r.queryFacts(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("query market metrics: %w", err)
	}

	quote, err := r.latestQuote(ctx, code)
	if err != nil {
		return nil, err
	}

	return &contracts.MarketSnapshot{Facts: facts, Quote: quote}, nil
}

// CorpCode returns the DART corp code mapped to a stock code
func (r *Repository) CorpCode(ctx context.Context, code string) (string, error) {
	var corpCode *string
	err := r.pool.QueryRow(ctx,
		`SELECT corp_code FROM data.stocks WHERE code = $1`, code,
	).Scan(&corpCode)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && (corpCode == nil || *corpCode == "")) {
		return "", fmt.Errorf("%w: corp_code code=%s", ErrNoData, code)
	}
	if err != nil {
		return "", fmt.Errorf("query corp code: %w", err)
	}
	return *corpCode, nil
}

func (r *Repository) latestQuote(ctx context.Context, code string) (*contracts.Quote, error) {
	query := `
		SELECT dp.trade_date, dp.close_price, mc.market_cap
		FROM data.daily_prices dp
		LEFT JOIN LATERAL (
			SELECT market_cap FROM data.market_cap
			WHERE stock_code = dp.stock_code AND trade_date <= dp.trade_date
			ORDER BY trade_date DESC LIMIT 1
		) mc ON TRUE
		WHERE dp.stock_code = $1
		ORDER BY dp.trade_date DESC
		LIMIT 1
	`

	var (
		tradeDate  pgtype.Date
		closePrice pgtype.Numeric
		marketCap  pgtype.Numeric
	)
	err := r.pool.QueryRow(ctx, query, code).Scan(&tradeDate, &closePrice, &marketCap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest quote: %w", err)
	}

	price, ok := numericToDecimal(closePrice)
	if !ok {
		return nil, nil
	}

	quote := &contracts.Quote{Price: price, AsOf: tradeDate.Time}
	if mc, ok := numericToDecimal(marketCap); ok {
		quote.MarketCap = mc
	}
	return quote, nil
}

// queryFacts scans (metric, value) rows; NULL and non-finite values are omitted
func (r *Repository) queryFacts(ctx context.Context, query string, args ...interface{}) (contracts.Facts, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facts := make(contracts.Facts)
	for rows.Next() {
		var (
			metric string
			value  pgtype.Numeric
		)
		if err := rows.Scan(&metric, &value); err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		if v, ok := NumericToFloat(value); ok {
			facts[metric] = v
		}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return facts, nil
}

// NumericToFloat converts a NUMERIC column; NULL, NaN and Inf report false
func NumericToFloat(n pgtype.Numeric) (float64, bool) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return 0, false
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid || math.IsNaN(f.Float64) || math.IsInf(f.Float64, 0) {
		return 0, false
	}
	return f.Float64, true
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, bool) {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite || n.Int == nil {
		return decimal.Zero, false
	}
	return decimal.NewFromBigInt(n.Int, n.Exp), true
}
