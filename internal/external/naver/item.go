package naver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"
)

// ErrItemNotFound is returned when the item page has no price block (상장폐지, 잘못된 코드 등)
var ErrItemNotFound = errors.New("item not found on naver finance")

// 억원 단위
var eok = decimal.NewFromInt(100_000_000)

// ItemSummary is the valuation block of the item main page
type ItemSummary struct {
	StockCode string
	Price     decimal.Decimal
	MarketCap decimal.Decimal // 원
	PER       *float64
	PBR       *float64
	EPS       *float64
	DivYield  *float64 // 배당수익률 (%)
}

// FetchItemSummary scrapes price and valuation ratios from /item/main.naver
func (c *Client) FetchItemSummary(ctx context.Context, stockCode string) (*ItemSummary, error) {
	params := url.Values{}
	params.Set("code", stockCode)

	html, err := c.fetchHTML(ctx, "/item/main.naver", params)
	if err != nil {
		return nil, err
	}

	summary, err := parseItemHTML(html, stockCode)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"price":      summary.Price.String(),
	}).Debug("Fetched item summary")
	return summary, nil
}

// parseItemHTML parses the item main page
func parseItemHTML(html string, stockCode string) (*ItemSummary, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	// 현재가: <p class="no_today"><em><span class="blind">71,000</span>...
	priceText := strings.TrimSpace(doc.Find("p.no_today span.blind").First().Text())
	price, err := parseDecimal(priceText)
	if err != nil {
		return nil, fmt.Errorf("%w: code=%s", ErrItemNotFound, stockCode)
	}

	summary := &ItemSummary{
		StockCode: stockCode,
		Price:     price,
		PER:       parseRatio(doc.Find("em#_per").Text()),
		PBR:       parseRatio(doc.Find("em#_pbr").Text()),
		EPS:       parseRatio(doc.Find("em#_eps").Text()),
		DivYield:  parseRatio(doc.Find("em#_dvr").Text()),
	}

	if mcap, ok := parseMarketSum(doc.Find("em#_market_sum").Text()); ok {
		summary.MarketCap = mcap
	}

	return summary, nil
}

// parseMarketSum parses "431조 6,000" / "6,000" (억원) into won
func parseMarketSum(s string) (decimal.Decimal, bool) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return decimal.Zero, false
	}

	total := decimal.Zero
	if idx := strings.Index(s, "조"); idx >= 0 {
		jo, err := parseDecimal(s[:idx])
		if err != nil {
			return decimal.Zero, false
		}
		total = jo.Mul(decimal.NewFromInt(10_000))
		s = s[idx+len("조"):]
	}
	if s != "" {
		rest, err := parseDecimal(s)
		if err != nil {
			return decimal.Zero, false
		}
		total = total.Add(rest)
	}
	return total.Mul(eok), true
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Zero, errors.New("empty number")
	}
	return decimal.NewFromString(s)
}

// parseRatio returns nil for "N/A", "-" or empty cells
func parseRatio(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" || strings.EqualFold(s, "N/A") {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
