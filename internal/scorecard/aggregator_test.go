package scorecard

import (
	"math"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/scorecard/internal/contracts"
)

var fixedNow = time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)

func newTestAggregator(table *Table) *Aggregator {
	return NewAggregator(table, WithClock(func() time.Time { return fixedNow }))
}

func samsungInput() Input {
	return Input{
		StockCode:   "005930",
		CompanyName: "삼성전자",
		Financial:   contracts.Facts{"roe": 18.5, "debt_ratio": 28.5, "revenue_growth_3y": 8.2},
		Market:      contracts.Facts{"per": 12.8, "pbr": 1.1},
		Quote: &contracts.Quote{
			Price:     decimal.NewFromInt(72300),
			MarketCap: decimal.RequireFromString("431600000000000"),
			AsOf:      fixedNow,
		},
	}
}

func TestCalculate_EndToEnd(t *testing.T) {
	result, err := newTestAggregator(CoreTable()).Calculate(samsungInput())
	require.NoError(t, err)

	assert.Equal(t, "005930", result.StockCode)
	assert.Equal(t, "삼성전자", result.CompanyName)
	require.Len(t, result.Categories, 5)

	// roe 8 + revenue_growth_3y 4 + debt_ratio 8 + per 4 + pbr 3
	want := map[contracts.Category]float64{
		contracts.CategoryProfitability: 8,
		contracts.CategoryGrowth:        4,
		contracts.CategoryStability:     8,
		contracts.CategoryEfficiency:    0,
		contracts.CategoryValuation:     7,
	}
	for _, c := range result.Categories {
		assert.Equal(t, want[c.Category], c.ActualScore, string(c.Category))
	}

	assert.Equal(t, 27.0, result.TotalScore)
	assert.Equal(t, 110.0, result.MaxScore)
	assert.Equal(t, 24.55, result.ScorePercentage)
	assert.Equal(t, contracts.GradeC, result.OverallGrade)
	assert.Equal(t, contracts.Caution, result.InvestmentGrade)
	assert.Equal(t, contracts.RiskHigh, result.RiskLevel)
	assert.Equal(t,
		"삼성전자은(는) 투자 기준에 미달하여 주의가 필요합니다. 핵심 강점: 부채비율 28.5(우수), ROE 18.5(양호), PER 12.8(양호).",
		result.InvestmentThesis)
	assert.Equal(t, fixedNow, result.AnalysisDate)
	assert.True(t, result.Quote.Price.Equal(decimal.NewFromInt(72300)))

	require.Len(t, result.Notes, 1)
	assert.True(t, strings.HasPrefix(result.Notes[0], contracts.NoDataLabel+": "))
	assert.Contains(t, result.Notes[0], "ROA")
	assert.Contains(t, result.Notes[0], "PEG")
	assert.NotContains(t, result.Notes[0], "PER,")
}

func TestCalculate_Idempotent(t *testing.T) {
	agg := newTestAggregator(CoreTable())

	first, err := agg.Calculate(samsungInput())
	require.NoError(t, err)
	second, err := agg.Calculate(samsungInput())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCalculate_InvalidStockCode(t *testing.T) {
	for _, code := range []string{"abc123", "", "12345", "1234567"} {
		in := samsungInput()
		in.StockCode = code

		result, err := newTestAggregator(CoreTable()).Calculate(in)

		var vErr *contracts.ValidationError
		require.ErrorAs(t, err, &vErr, code)
		assert.Nil(t, result)
	}
}

func TestCalculate_NonFiniteValue(t *testing.T) {
	in := samsungInput()
	in.Financial["roe"] = math.Inf(1)

	_, err := newTestAggregator(CoreTable()).Calculate(in)

	var vErr *contracts.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "financial.roe", vErr.Field)
}

func TestCalculate_NoFactsDegradesToZero(t *testing.T) {
	result, err := newTestAggregator(CoreTable()).Calculate(Input{StockCode: "000660", CompanyName: "SK하이닉스"})
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.TotalScore)
	assert.Equal(t, contracts.GradeC, result.OverallGrade)
	assert.Contains(t, result.InvestmentThesis, "뚜렷한 강점 지표 없음")
	for _, c := range result.Categories {
		for _, m := range c.Contributions {
			assert.True(t, m.Missing)
		}
	}
}

func TestCalculate_MetricFromOtherSource(t *testing.T) {
	in := Input{
		StockCode: "005930",
		Financial: contracts.Facts{"per": 9},
		Market:    contracts.Facts{"roe": 25},
	}

	result, err := newTestAggregator(CoreTable()).Calculate(in)
	require.NoError(t, err)

	// per 6 + roe 10
	assert.Equal(t, 16.0, result.TotalScore)
}

func TestCalculate_PerfectScore(t *testing.T) {
	table := CoreTable()
	facts := contracts.Facts{}
	for _, c := range table.Categories {
		for _, m := range c.Metrics {
			facts[m.Name] = m.Bands[0].Threshold
		}
	}

	result, err := newTestAggregator(table).Calculate(Input{StockCode: "005930", Financial: facts, Market: facts})
	require.NoError(t, err)

	assert.Equal(t, 110.0, result.TotalScore)
	assert.Equal(t, 100.0, result.ScorePercentage)
	assert.Equal(t, contracts.GradeS, result.OverallGrade)
	assert.Equal(t, contracts.StrongBuy, result.InvestmentGrade)
	assert.Equal(t, contracts.RiskLow, result.RiskLevel)
	assert.Empty(t, result.Notes)
}

func TestCalculate_QualityExtension(t *testing.T) {
	result, err := newTestAggregator(DefaultTable()).Calculate(samsungInput())
	require.NoError(t, err)

	require.Len(t, result.Categories, 6)
	assert.Equal(t, 120.0, result.MaxScore)
	assert.Equal(t, 27.0, result.TotalScore)
	assert.Equal(t, 22.5, result.ScorePercentage)
}

func TestCalculate_ScoreInvariants(t *testing.T) {
	table := DefaultTable()
	agg := newTestAggregator(table.ForConfig(false))
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		facts := contracts.Facts{}
		for _, c := range table.Categories {
			for _, m := range c.Metrics {
				if rng.Float64() < 0.2 {
					continue
				}
				facts[m.Name] = rng.Float64()*400 - 100
			}
		}

		result, err := agg.Calculate(Input{StockCode: "005930", Financial: facts, Market: facts})
		require.NoError(t, err)

		sum := 0.0
		for _, c := range result.Categories {
			assert.GreaterOrEqual(t, c.ActualScore, 0.0)
			assert.LessOrEqual(t, c.ActualScore, c.MaxScore)
			sum += c.ActualScore
		}
		assert.Equal(t, sum, result.TotalScore)
		assert.GreaterOrEqual(t, result.TotalScore, 0.0)
		assert.LessOrEqual(t, result.TotalScore, 110.0)
	}
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		score float64
		want  contracts.Grade
	}{
		{110, contracts.GradeS},
		{90, contracts.GradeS},
		{89.99, contracts.GradeA},
		{80, contracts.GradeA},
		{79.99, contracts.GradeB},
		{70, contracts.GradeB},
		{69.99, contracts.GradeC},
		{0, contracts.GradeC},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeFor(tt.score), "score %v", tt.score)
	}
}

func TestInvestmentGradeFor(t *testing.T) {
	assert.Equal(t, contracts.StrongBuy, InvestmentGradeFor(contracts.GradeS))
	assert.Equal(t, contracts.Buy, InvestmentGradeFor(contracts.GradeA))
	assert.Equal(t, contracts.CautiousBuy, InvestmentGradeFor(contracts.GradeB))
	assert.Equal(t, contracts.Caution, InvestmentGradeFor(contracts.GradeC))
}
