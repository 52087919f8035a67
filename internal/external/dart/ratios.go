package dart

import "math"

// Ratios derives scorecard facts from an annual statement.
// 분모가 0이거나 계정이 없으면 해당 지표는 생략 (누락 처리)
func (s *Statement) Ratios() map[string]float64 {
	facts := make(map[string]float64)
	set := func(name string) func(float64, bool) {
		return func(v float64, ok bool) {
			if ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				facts[name] = v
			}
		}
	}

	revenue := s.current(AccRevenue)
	netIncome := s.current(AccNetIncome)
	operating := s.current(AccOperatingIncome)
	equity := s.current(AccEquity)
	assets := s.current(AccAssets)

	avgEquity := s.average(AccEquity)
	avgAssets := s.average(AccAssets)

	// 수익성
	// 자본잠식(자본 <= 0)이면 ROE/부채비율 부호가 뒤집히므로 생략
	if positive(avgEquity) {
		set("roe")(pct(netIncome, avgEquity))
	}
	set("roa")(pct(netIncome, avgAssets))
	set("operating_margin")(pct(operating, revenue))
	set("net_margin")(pct(netIncome, revenue))
	set("gross_margin")(pct(s.current(AccGrossProfit), revenue))

	// 안정성
	if positive(equity) {
		set("debt_ratio")(pct(s.current(AccLiabilities), equity))
	}
	set("current_ratio")(pct(s.current(AccCurrentAssets), s.current(AccCurrentLiabilities)))
	set("equity_ratio")(pct(equity, assets))
	set("interest_coverage")(ratio(operating, s.current(AccFinanceCosts)))

	// 효율성
	set("asset_turnover")(ratio(revenue, avgAssets))
	set("inventory_turnover")(ratio(revenue, s.average(AccInventories)))
	set("receivables_turnover")(ratio(revenue, s.average(AccReceivables)))

	// 성장성: 전전기 → 당기 2개 기간 연평균 성장률 (키 이름의 3y는 3개 연도 공시 기준)
	set("revenue_growth_3y")(s.cagr(AccRevenue))
	set("net_income_growth_3y")(s.cagr(AccNetIncome))
	set("eps_growth_3y")(s.cagr(AccBasicEarningsPerShr))
	set("equity_growth_3y")(s.cagr(AccEquity))

	// 퀄리티
	if ni := netIncome; ni != nil && *ni > 0 {
		set("cash_conversion")(pct(s.current(AccOperatingCashFlow), ni))
	}

	return facts
}

func (s *Statement) current(account string) *float64 {
	return s.Accounts[account].Current
}

// average returns the mean of current and prior, or current alone
func (s *Statement) average(account string) *float64 {
	a := s.Accounts[account]
	if a.Current == nil {
		return nil
	}
	if a.Prior == nil {
		return a.Current
	}
	avg := (*a.Current + *a.Prior) / 2
	return &avg
}

// cagr is the two-period compound growth rate in percent
func (s *Statement) cagr(account string) (float64, bool) {
	a := s.Accounts[account]
	if a.Current == nil || a.PriorPrior == nil || *a.PriorPrior <= 0 || *a.Current <= 0 {
		return 0, false
	}
	return (math.Sqrt(*a.Current / *a.PriorPrior) - 1) * 100, true
}

func positive(v *float64) bool {
	return v != nil && *v > 0
}

func ratio(num, den *float64) (float64, bool) {
	if num == nil || den == nil || *den == 0 {
		return 0, false
	}
	return *num / *den, true
}

func pct(num, den *float64) (float64, bool) {
	v, ok := ratio(num, den)
	return v * 100, ok
}
