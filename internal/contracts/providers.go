package contracts

import "context"

// UniverseProvider lists the stocks eligible for batch scoring
type UniverseProvider interface {
	ListStocks(ctx context.Context) ([]Stock, error)
}

// FinancialProvider returns filing-based facts for a stock
type FinancialProvider interface {
	FinancialFacts(ctx context.Context, code string) (Facts, error)
}

// MarketProvider returns price and valuation facts for a stock
type MarketProvider interface {
	MarketSnapshot(ctx context.Context, code string) (*MarketSnapshot, error)
}
