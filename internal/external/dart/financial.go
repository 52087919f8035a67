package dart

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrNoStatement is returned when DART has no annual report for the corp/year
var ErrNoStatement = errors.New("no annual financial statement")

// Report codes (reprt_code)
const (
	ReportAnnual = "11011" // 사업보고서
)

// Account IDs used to derive ratios (K-IFRS taxonomy)
const (
	AccRevenue             = "ifrs-full_Revenue"
	AccGrossProfit         = "ifrs-full_GrossProfit"
	AccOperatingIncome     = "dart_OperatingIncomeLoss"
	AccNetIncome           = "ifrs-full_ProfitLoss"
	AccFinanceCosts        = "ifrs-full_FinanceCosts"
	AccAssets              = "ifrs-full_Assets"
	AccCurrentAssets       = "ifrs-full_CurrentAssets"
	AccLiabilities         = "ifrs-full_Liabilities"
	AccCurrentLiabilities  = "ifrs-full_CurrentLiabilities"
	AccEquity              = "ifrs-full_Equity"
	AccInventories         = "ifrs-full_Inventories"
	AccReceivables         = "ifrs-full_TradeAndOtherCurrentReceivables"
	AccOperatingCashFlow   = "ifrs-full_CashFlowsFromUsedInOperatingActivities"
	AccBasicEarningsPerShr = "ifrs-full_BasicEarningsLossPerShare"
)

// AccountResponse represents DART fnlttSinglAcntAll response
type AccountResponse struct {
	Status  string        `json:"status"`
	Message string        `json:"message"`
	List    []AccountItem `json:"list"`
}

// AccountItem is one line of a financial statement
type AccountItem struct {
	BsnsYear        string `json:"bsns_year"`
	SjDiv           string `json:"sj_div"` // BS, IS, CIS, CF, SCE
	AccountID       string `json:"account_id"`
	AccountNm       string `json:"account_nm"`
	ThstrmAmount    string `json:"thstrm_amount"`    // 당기
	FrmtrmAmount    string `json:"frmtrm_amount"`    // 전기
	BfefrmtrmAmount string `json:"bfefrmtrm_amount"` // 전전기
	Currency        string `json:"currency"`
}

// Amounts holds one account over three fiscal years
type Amounts struct {
	Current    *float64
	Prior      *float64
	PriorPrior *float64
}

// Statement is an annual statement keyed by account ID
type Statement struct {
	CorpCode string
	Year     int
	FsDiv    string // CFS: 연결, OFS: 별도
	Accounts map[string]Amounts
}

// FetchAnnualStatement fetches the annual report of a corp, consolidated first then separate
// ⭐ SSOT: DART 재무제표 호출은 이 함수에서만
func (c *Client) FetchAnnualStatement(ctx context.Context, corpCode string, year int) (*Statement, error) {
	for _, fsDiv := range []string{"CFS", "OFS"} {
		items, err := c.fetchAccounts(ctx, corpCode, year, fsDiv)
		if err != nil {
			return nil, err
		}
		if len(items) == 0 {
			continue
		}

		stmt := newStatement(corpCode, year, fsDiv, items)
		c.logger.WithFields(map[string]interface{}{
			"corp_code": corpCode,
			"year":      year,
			"fs_div":    fsDiv,
			"accounts":  len(stmt.Accounts),
		}).Debug("Fetched annual statement")
		return stmt, nil
	}

	return nil, fmt.Errorf("%w: corp_code=%s year=%d", ErrNoStatement, corpCode, year)
}

// FetchLatestAnnualStatement tries the given year and then walks back up to two years.
// 사업보고서는 결산 후 3월 말에 제출되므로 최근 연도가 없을 수 있음
func (c *Client) FetchLatestAnnualStatement(ctx context.Context, corpCode string, year int) (*Statement, error) {
	var lastErr error
	for y := year; y > year-3; y-- {
		stmt, err := c.FetchAnnualStatement(ctx, corpCode, y)
		if err == nil {
			return stmt, nil
		}
		if !errors.Is(err, ErrNoStatement) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchAccounts(ctx context.Context, corpCode string, year int, fsDiv string) ([]AccountItem, error) {
	params := url.Values{}
	params.Set("crtfc_key", c.apiKey)
	params.Set("corp_code", corpCode)
	params.Set("bsns_year", strconv.Itoa(year))
	params.Set("reprt_code", ReportAnnual)
	params.Set("fs_div", fsDiv)

	endpoint := fmt.Sprintf("%s/api/fnlttSinglAcntAll.json?%s", c.baseURL, params.Encode())

	var result AccountResponse
	if err := c.http.GetJSON(ctx, endpoint, &result); err != nil {
		return nil, fmt.Errorf("fetch accounts: %w", err)
	}

	// Status codes:
	// 000 = success
	// 013 = no data (ok)
	// others = error
	switch result.Status {
	case "000":
		return result.List, nil
	case "013":
		return nil, nil
	default:
		return nil, fmt.Errorf("API error: %s - %s", result.Status, result.Message)
	}
}

func newStatement(corpCode string, year int, fsDiv string, items []AccountItem) *Statement {
	stmt := &Statement{
		CorpCode: corpCode,
		Year:     year,
		FsDiv:    fsDiv,
		Accounts: make(map[string]Amounts),
	}
	for _, item := range items {
		if item.AccountID == "" {
			continue
		}
		// IS와 CIS에 같은 계정이 중복되면 먼저 나온 값 유지
		if _, exists := stmt.Accounts[item.AccountID]; exists {
			continue
		}
		stmt.Accounts[item.AccountID] = Amounts{
			Current:    parseAmount(item.ThstrmAmount),
			Prior:      parseAmount(item.FrmtrmAmount),
			PriorPrior: parseAmount(item.BfefrmtrmAmount),
		}
	}
	return stmt
}

// parseAmount parses "1,234,567" / "-1234" / "(1,234)"; empty or "-" is nil
func parseAmount(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	negative := strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")")
	s = strings.Trim(s, "()")
	s = strings.ReplaceAll(s, ",", "")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	if negative {
		v = -v
	}
	return &v
}
