package scorecard

import (
	"github.com/wonny/scorecard/internal/contracts"
)

// CategoryTable is one category of the rubric with its metrics in report order
type CategoryTable struct {
	Category contracts.Category     `yaml:"category" json:"category"`
	MaxScore float64                `yaml:"max_score" json:"max_score"`
	Metrics  []contracts.MetricSpec `yaml:"metrics" json:"metrics"`
}

// Table is the grade-band rubric.
// 한 번 로드된 뒤에는 읽기 전용으로 공유됨
// ⭐ SSOT: 카테고리 배점과 지표 등급 구간
type Table struct {
	Version    string          `yaml:"version" json:"version"`
	Categories []CategoryTable `yaml:"categories" json:"categories"`

	metrics map[string]*contracts.MetricSpec
}

// index fills Category on each metric and builds the name lookup
func (t *Table) index() {
	t.metrics = make(map[string]*contracts.MetricSpec)
	for ci := range t.Categories {
		cat := &t.Categories[ci]
		for mi := range cat.Metrics {
			m := &cat.Metrics[mi]
			m.Category = cat.Category
			t.metrics[m.Name] = m
		}
	}
}

// Metric returns the spec of a metric
func (t *Table) Metric(name string) (*contracts.MetricSpec, bool) {
	m, ok := t.metrics[name]
	return m, ok
}

// CategoryTable returns the table of one category
func (t *Table) CategoryTable(c contracts.Category) (*CategoryTable, bool) {
	for i := range t.Categories {
		if t.Categories[i].Category == c {
			return &t.Categories[i], true
		}
	}
	return nil, false
}

// MaxScore returns the sum of category maxima
func (t *Table) MaxScore() float64 {
	total := 0.0
	for _, c := range t.Categories {
		total += c.MaxScore
	}
	return total
}

// Without returns a copy of the table without the given categories
func (t *Table) Without(categories ...contracts.Category) *Table {
	drop := make(map[contracts.Category]bool, len(categories))
	for _, c := range categories {
		drop[c] = true
	}

	out := &Table{Version: t.Version}
	for _, c := range t.Categories {
		if drop[c.Category] {
			continue
		}
		metrics := make([]contracts.MetricSpec, len(c.Metrics))
		copy(metrics, c.Metrics)
		out.Categories = append(out.Categories, CategoryTable{
			Category: c.Category,
			MaxScore: c.MaxScore,
			Metrics:  metrics,
		})
	}
	out.index()
	return out
}

// ForConfig drops the quality extension unless it is enabled
func (t *Table) ForConfig(includeQuality bool) *Table {
	if includeQuality {
		return t
	}
	return t.Without(contracts.CategoryQuality)
}
