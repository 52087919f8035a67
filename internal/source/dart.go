package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/external/dart"
)

// CorpCodeResolver maps a stock code to its DART corp code
type CorpCodeResolver interface {
	CorpCode(ctx context.Context, code string) (string, error)
}

// statementFetcher is the part of the DART client used here
type statementFetcher interface {
	FetchLatestAnnualStatement(ctx context.Context, corpCode string, year int) (*dart.Statement, error)
}

// DARTFinancial derives financial facts from the latest DART annual report
type DARTFinancial struct {
	client statementFetcher
	corps  CorpCodeResolver
	now    func() time.Time
}

// NewDARTFinancial creates a DART-backed financial provider
func NewDARTFinancial(client *dart.Client, corps CorpCodeResolver) *DARTFinancial {
	return &DARTFinancial{client: client, corps: corps, now: time.Now}
}

// FinancialFacts implements contracts.FinancialProvider
func (p *DARTFinancial) FinancialFacts(ctx context.Context, code string) (contracts.Facts, error) {
	corpCode, err := p.corps.CorpCode(ctx, code)
	if err != nil {
		return nil, err
	}

	// 직전 사업연도부터 조회
	stmt, err := p.client.FetchLatestAnnualStatement(ctx, corpCode, p.now().Year()-1)
	if errors.Is(err, dart.ErrNoStatement) {
		return nil, fmt.Errorf("%w: %v", ErrNoData, err)
	}
	if err != nil {
		return nil, err
	}

	facts := contracts.Facts(stmt.Ratios())
	if len(facts) == 0 {
		return nil, fmt.Errorf("%w: no derivable ratios corp_code=%s", ErrNoData, corpCode)
	}
	return facts, nil
}
