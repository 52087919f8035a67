package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/external/naver"
)

// itemFetcher is the part of the Naver client used here
type itemFetcher interface {
	FetchItemSummary(ctx context.Context, stockCode string) (*naver.ItemSummary, error)
}

// NaverMarket builds market snapshots from the Naver Finance item page
type NaverMarket struct {
	client itemFetcher
	now    func() time.Time
}

// NewNaverMarket creates a Naver-backed market provider
func NewNaverMarket(client *naver.Client) *NaverMarket {
	return &NaverMarket{client: client, now: time.Now}
}

// MarketSnapshot implements contracts.MarketProvider
func (p *NaverMarket) MarketSnapshot(ctx context.Context, code string) (*contracts.MarketSnapshot, error) {
	item, err := p.client.FetchItemSummary(ctx, code)
	if errors.Is(err, naver.ErrItemNotFound) {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if err != nil {
		return nil, err
	}

	facts := make(contracts.Facts)
	setIf(facts, "per", item.PER)
	setIf(facts, "pbr", item.PBR)
	setIf(facts, "dividend_yield", item.DivYield)

	return &contracts.MarketSnapshot{
		Facts: facts,
		Quote: &contracts.Quote{
			Price:     item.Price,
			MarketCap: item.MarketCap,
			AsOf:      p.now(),
		},
	}, nil
}

func setIf(facts contracts.Facts, name string, v *float64) {
	if v != nil {
		facts[name] = *v
	}
}
