package scorecard

import (
	"fmt"
	"math"

	"github.com/wonny/scorecard/internal/contracts"
)

// Validate checks the structural invariants of a band table.
// 카테고리 내 지표 배점 합이 MaxScore를 넘는 것은 허용 (채점 시 clamp)
func Validate(t *Table) error {
	if len(t.Categories) == 0 {
		return &contracts.ValidationError{Field: "categories", Message: "at least one category is required"}
	}

	seenCategories := make(map[contracts.Category]bool)
	seenMetrics := make(map[string]bool)

	for ci, c := range t.Categories {
		path := fmt.Sprintf("categories[%d]", ci)
		if c.Category == "" {
			return &contracts.ValidationError{Field: path + ".category", Message: "required"}
		}
		if seenCategories[c.Category] {
			return &contracts.ValidationError{Field: path + ".category", Message: fmt.Sprintf("duplicate category %q", c.Category)}
		}
		seenCategories[c.Category] = true

		if c.MaxScore <= 0 {
			return &contracts.ValidationError{Field: path + ".max_score", Message: "must be > 0"}
		}
		if len(c.Metrics) == 0 {
			return &contracts.ValidationError{Field: path + ".metrics", Message: "at least one metric is required"}
		}

		for mi, m := range c.Metrics {
			mpath := fmt.Sprintf("%s.metrics[%d]", path, mi)
			if m.Name == "" {
				return &contracts.ValidationError{Field: mpath + ".name", Message: "required"}
			}
			if seenMetrics[m.Name] {
				return &contracts.ValidationError{Field: mpath + ".name", Message: fmt.Sprintf("duplicate metric %q", m.Name)}
			}
			seenMetrics[m.Name] = true

			if err := validateMetric(mpath, m); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateMetric(path string, m contracts.MetricSpec) error {
	if m.Source != contracts.SourceFinancial && m.Source != contracts.SourceMarket {
		return &contracts.ValidationError{Field: path + ".source", Message: "must be financial or market"}
	}
	if m.Direction != contracts.HigherIsBetter && m.Direction != contracts.LowerIsBetter {
		return &contracts.ValidationError{Field: path + ".direction", Message: "must be higher or lower"}
	}
	if m.Weight <= 0 {
		return &contracts.ValidationError{Field: path + ".weight", Message: "must be > 0"}
	}
	if len(m.Bands) == 0 {
		return &contracts.ValidationError{Field: path + ".bands", Message: "at least one band is required"}
	}

	for i, b := range m.Bands {
		bpath := fmt.Sprintf("%s.bands[%d]", path, i)
		if b.Label == "" {
			return &contracts.ValidationError{Field: bpath + ".label", Message: "required"}
		}
		if b.Score < 0 || b.Score > m.Weight {
			return &contracts.ValidationError{Field: bpath + ".score", Message: fmt.Sprintf("must be within [0, %g]", m.Weight)}
		}
		if math.IsNaN(b.Threshold) {
			return &contracts.ValidationError{Field: bpath + ".threshold", Message: "must be a number"}
		}
		if i == 0 {
			continue
		}

		prev := m.Bands[i-1]
		// 최상위 구간부터: higher는 임계값 내림차순, lower는 오름차순
		ordered := b.Threshold < prev.Threshold
		if m.Direction == contracts.LowerIsBetter {
			ordered = b.Threshold > prev.Threshold
		}
		if !ordered {
			return &contracts.ValidationError{Field: bpath + ".threshold", Message: "bands must be ordered best-first without overlap"}
		}
		if b.Score > prev.Score {
			return &contracts.ValidationError{Field: bpath + ".score", Message: "must not exceed the score of a better band"}
		}
	}

	last := m.Bands[len(m.Bands)-1].Threshold
	catchAll := math.IsInf(last, -1)
	if m.Direction == contracts.LowerIsBetter {
		catchAll = math.IsInf(last, 1)
	}
	if !catchAll {
		return &contracts.ValidationError{Field: path + ".bands", Message: "last band must be a catch-all (-.inf for higher, .inf for lower)"}
	}

	return nil
}
