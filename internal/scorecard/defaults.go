package scorecard

import (
	"math"

	"github.com/wonny/scorecard/internal/contracts"
)

// ScaleMax is the score scale used by the grade bands
const ScaleMax = 110.0

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

func floor(v float64) *float64 { return &v }

// higher builds a higher-is-better metric. thresholds/scores run best-first and the
// catch-all band is appended.
func higher(name, display string, source contracts.FactSource, weight float64, thresholds, scores []float64) contracts.MetricSpec {
	return metric(name, display, source, contracts.HigherIsBetter, weight, thresholds, scores, negInf)
}

func lower(name, display string, source contracts.FactSource, weight float64, thresholds, scores []float64) contracts.MetricSpec {
	return metric(name, display, source, contracts.LowerIsBetter, weight, thresholds, scores, posInf)
}

var bandLabels = []string{"우수", "양호", "보통", "미흡"}

func metric(name, display string, source contracts.FactSource, dir contracts.Direction, weight float64, thresholds, scores []float64, catchAll float64) contracts.MetricSpec {
	bands := make([]contracts.GradeBand, 0, len(thresholds)+1)
	for i, th := range thresholds {
		label := bandLabels[len(bandLabels)-1]
		if i < len(bandLabels) {
			label = bandLabels[i]
		}
		bands = append(bands, contracts.GradeBand{Threshold: th, Score: scores[i], Label: label})
	}
	bands = append(bands, contracts.GradeBand{Threshold: catchAll, Score: 0, Label: "부진"})

	return contracts.MetricSpec{
		Name:        name,
		DisplayName: display,
		Source:      source,
		Direction:   dir,
		Weight:      weight,
		Bands:       bands,
	}
}

// DefaultTable returns the built-in rubric including the quality extension.
// 단위: 비율 지표는 %, 회전율/배수는 배
func DefaultTable() *Table {
	fin := contracts.SourceFinancial
	mkt := contracts.SourceMarket

	per := lower("per", "PER", mkt, 6, []float64{10, 15, 20, 30}, []float64{6, 4, 2, 1})
	per.Floor = floor(0)
	pbr := lower("pbr", "PBR", mkt, 5, []float64{1, 1.5, 2, 3}, []float64{5, 3, 2, 1})
	pbr.Floor = floor(0)
	peg := lower("peg", "PEG", mkt, 4, []float64{0.5, 1, 1.5, 2}, []float64{4, 3, 2, 1})
	peg.Floor = floor(0)
	evEbitda := lower("ev_ebitda", "EV/EBITDA", mkt, 2, []float64{6, 10}, []float64{2, 1})
	evEbitda.Floor = floor(0)

	t := &Table{
		Version: "default-v1",
		Categories: []CategoryTable{
			{
				Category: contracts.CategoryProfitability,
				MaxScore: 30,
				Metrics: []contracts.MetricSpec{
					higher("roe", "ROE", fin, 10, []float64{20, 15, 10, 5}, []float64{10, 8, 5, 2}),
					higher("roa", "ROA", fin, 5, []float64{10, 7, 5, 2}, []float64{5, 4, 3, 1}),
					higher("operating_margin", "영업이익률", fin, 6, []float64{20, 15, 10, 5}, []float64{6, 5, 3, 1}),
					higher("net_margin", "순이익률", fin, 5, []float64{15, 10, 5, 2}, []float64{5, 4, 2, 1}),
					higher("roic", "ROIC", fin, 4, []float64{15, 10, 7, 4}, []float64{4, 3, 2, 1}),
				},
			},
			{
				Category: contracts.CategoryGrowth,
				MaxScore: 25,
				Metrics: []contracts.MetricSpec{
					higher("revenue_growth_3y", "매출성장률(3년)", fin, 8, []float64{15, 10, 5, 0}, []float64{8, 6, 4, 2}),
					higher("net_income_growth_3y", "순이익성장률(3년)", fin, 7, []float64{15, 10, 5, 0}, []float64{7, 5, 3, 1}),
					higher("eps_growth_3y", "EPS성장률(3년)", fin, 5, []float64{15, 10, 5, 0}, []float64{5, 4, 2, 1}),
					higher("equity_growth_3y", "자기자본성장률(3년)", fin, 5, []float64{10, 7, 4, 0}, []float64{5, 4, 2, 1}),
				},
			},
			{
				Category: contracts.CategoryStability,
				MaxScore: 25,
				Metrics: []contracts.MetricSpec{
					lower("debt_ratio", "부채비율", fin, 8, []float64{30, 50, 100, 200}, []float64{8, 6, 4, 2}),
					higher("current_ratio", "유동비율", fin, 6, []float64{200, 150, 100, 70}, []float64{6, 5, 3, 1}),
					higher("interest_coverage", "이자보상배율", fin, 6, []float64{10, 5, 3, 1}, []float64{6, 4, 3, 1}),
					higher("equity_ratio", "자기자본비율", fin, 5, []float64{70, 50, 40, 30}, []float64{5, 4, 3, 1}),
				},
			},
			{
				Category: contracts.CategoryEfficiency,
				MaxScore: 10,
				Metrics: []contracts.MetricSpec{
					higher("asset_turnover", "총자산회전율", fin, 4, []float64{1.0, 0.7, 0.5, 0.3}, []float64{4, 3, 2, 1}),
					higher("inventory_turnover", "재고자산회전율", fin, 3, []float64{10, 6, 4}, []float64{3, 2, 1}),
					higher("receivables_turnover", "매출채권회전율", fin, 3, []float64{12, 8, 5}, []float64{3, 2, 1}),
				},
			},
			{
				Category: contracts.CategoryValuation,
				MaxScore: 20,
				Metrics: []contracts.MetricSpec{
					per,
					pbr,
					peg,
					higher("dividend_yield", "배당수익률", mkt, 3, []float64{4, 2.5, 1}, []float64{3, 2, 1}),
					evEbitda,
				},
			},
			{
				Category: contracts.CategoryQuality,
				MaxScore: 10,
				Metrics: []contracts.MetricSpec{
					higher("cash_conversion", "현금전환율", fin, 4, []float64{120, 100, 80, 50}, []float64{4, 3, 2, 1}),
					lower("roe_volatility", "ROE변동성", fin, 3, []float64{2, 4, 7}, []float64{3, 2, 1}),
					higher("gross_margin", "매출총이익률", fin, 3, []float64{40, 30, 20}, []float64{3, 2, 1}),
				},
			},
		},
	}
	t.index()
	return t
}

// CoreTable returns the built-in 110-point rubric without the quality extension
func CoreTable() *Table {
	return DefaultTable().Without(contracts.CategoryQuality)
}
