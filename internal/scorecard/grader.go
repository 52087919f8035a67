package scorecard

import (
	"math"

	"github.com/wonny/scorecard/internal/contracts"
)

// Grader maps raw metric values to sub-scores using a band table.
// 순수 함수만 제공하며 동시 호출에 안전
type Grader struct {
	table *Table
}

// NewGrader creates a grader over the given table
func NewGrader(table *Table) *Grader {
	return &Grader{table: table}
}

// Table returns the band table in use
func (g *Grader) Table() *Table {
	return g.table
}

// Grade returns the sub-score and label of one metric value.
// 값이 없거나(ok=false, NaN) 모르는 지표면 (0, 데이터없음)
func (g *Grader) Grade(metric string, value float64, ok bool) (float64, string) {
	spec, known := g.table.Metric(metric)
	if !known || !ok || math.IsNaN(value) {
		return 0, contracts.NoDataLabel
	}
	band := gradeBand(spec, value)
	return band.Score, band.Label
}

// gradeBand scans best-first and falls through to the last band
func gradeBand(spec *contracts.MetricSpec, value float64) contracts.GradeBand {
	last := spec.Bands[len(spec.Bands)-1]
	if spec.Floor != nil && value <= *spec.Floor {
		return last
	}

	for _, b := range spec.Bands {
		switch spec.Direction {
		case contracts.LowerIsBetter:
			if value <= b.Threshold {
				return b
			}
		default:
			if value >= b.Threshold {
				return b
			}
		}
	}
	return last
}

// ScoreCategory grades every metric of a category against facts.
// 모든 지표에 대해 contribution을 남기고, 합계는 [0, MaxScore]로 clamp
func (g *Grader) ScoreCategory(category contracts.Category, facts contracts.Facts) contracts.CategoryScore {
	cat, ok := g.table.CategoryTable(category)
	if !ok {
		return contracts.CategoryScore{Category: category}
	}

	score := contracts.CategoryScore{
		Category:      category,
		MaxScore:      cat.MaxScore,
		Contributions: make([]contracts.MetricContribution, 0, len(cat.Metrics)),
	}

	sum := 0.0
	for i := range cat.Metrics {
		spec := &cat.Metrics[i]
		value, present := facts.Lookup(spec.Name)
		sub, label := g.Grade(spec.Name, value, present)

		c := contracts.MetricContribution{
			Metric:      spec.Name,
			DisplayName: spec.DisplayName,
			SubScore:    sub,
			MaxScore:    spec.Weight,
			Label:       label,
			Missing:     !present,
		}
		if present {
			v := value
			c.Value = &v
		}
		score.Contributions = append(score.Contributions, c)
		sum += sub
	}

	score.ActualScore = math.Max(0, math.Min(sum, cat.MaxScore))
	return score
}
