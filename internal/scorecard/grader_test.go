package scorecard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wonny/scorecard/internal/contracts"
)

func TestGrade_TopBandGivesMaxScore(t *testing.T) {
	g := NewGrader(DefaultTable())

	for _, c := range g.Table().Categories {
		for _, m := range c.Metrics {
			top := m.Bands[0].Threshold
			beyond := top + 1
			if m.Direction == contracts.LowerIsBetter {
				beyond = top / 2
			}

			for _, v := range []float64{top, beyond} {
				score, label := g.Grade(m.Name, v, true)
				assert.Equal(t, m.Weight, score, "%s=%v", m.Name, v)
				assert.Equal(t, "우수", label, "%s=%v", m.Name, v)
			}
		}
	}
}

func TestGrade_MissingValue(t *testing.T) {
	g := NewGrader(DefaultTable())

	tests := []struct {
		name   string
		metric string
		value  float64
		ok     bool
	}{
		{"absent", "roe", 0, false},
		{"nan", "roe", math.NaN(), true},
		{"unknown metric", "sentiment", 50, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := g.Grade(tt.metric, tt.value, tt.ok)
			assert.Equal(t, 0.0, score)
			assert.Equal(t, contracts.NoDataLabel, label)
		})
	}
}

func TestGrade_Boundaries(t *testing.T) {
	g := NewGrader(DefaultTable())

	tests := []struct {
		metric    string
		value     float64
		wantScore float64
		wantLabel string
	}{
		{"roe", 20, 10, "우수"},
		{"roe", 19.99, 8, "양호"},
		{"roe", 15, 8, "양호"},
		{"roe", 10, 5, "보통"},
		{"roe", 5, 2, "미흡"},
		{"roe", 4.99, 0, "부진"},
		{"roe", -30, 0, "부진"},
		{"debt_ratio", 30, 8, "우수"},
		{"debt_ratio", 30.01, 6, "양호"},
		{"debt_ratio", 200, 2, "미흡"},
		{"debt_ratio", 200.5, 0, "부진"},
		{"per", 12.8, 4, "양호"},
		{"per", 0.5, 6, "우수"},
		{"per", 0, 0, "부진"},
		{"per", -3.2, 0, "부진"},
		{"per", 45, 0, "부진"},
		{"pbr", 1.1, 3, "양호"},
		{"revenue_growth_3y", 8.2, 4, "보통"},
		{"revenue_growth_3y", 0, 2, "미흡"},
		{"revenue_growth_3y", -0.1, 0, "부진"},
	}

	for _, tt := range tests {
		score, label := g.Grade(tt.metric, tt.value, true)
		assert.Equal(t, tt.wantScore, score, "%s=%v", tt.metric, tt.value)
		assert.Equal(t, tt.wantLabel, label, "%s=%v", tt.metric, tt.value)
	}
}

func TestScoreCategory_KeepsEveryMetric(t *testing.T) {
	g := NewGrader(DefaultTable())

	cs := g.ScoreCategory(contracts.CategoryProfitability, contracts.Facts{"roe": 18.5})

	assert.Equal(t, 30.0, cs.MaxScore)
	assert.Equal(t, 8.0, cs.ActualScore)
	require.Len(t, cs.Contributions, 5)

	assert.Equal(t, "roe", cs.Contributions[0].Metric)
	assert.False(t, cs.Contributions[0].Missing)
	require.NotNil(t, cs.Contributions[0].Value)
	assert.Equal(t, 18.5, *cs.Contributions[0].Value)

	for _, c := range cs.Contributions[1:] {
		assert.True(t, c.Missing, c.Metric)
		assert.Nil(t, c.Value)
		assert.Equal(t, 0.0, c.SubScore)
		assert.Equal(t, contracts.NoDataLabel, c.Label)
	}
}

func TestScoreCategory_ClampsToMax(t *testing.T) {
	table, _, err := LoadTable("testdata/two_metrics.yaml")
	require.NoError(t, err)
	g := NewGrader(table)

	cs := g.ScoreCategory(contracts.CategoryProfitability, contracts.Facts{"roe": 30, "roa": 20})

	assert.Equal(t, 5.0, cs.ActualScore, "4+4 is capped at the category max")
	assert.Equal(t, 8.0, cs.Contributions[0].SubScore+cs.Contributions[1].SubScore)
}

func TestScoreCategory_UnknownCategory(t *testing.T) {
	cs := NewGrader(CoreTable()).ScoreCategory(contracts.CategoryQuality, contracts.Facts{"gross_margin": 50})

	assert.Equal(t, contracts.CategoryQuality, cs.Category)
	assert.Equal(t, 0.0, cs.MaxScore)
	assert.Empty(t, cs.Contributions)
}
