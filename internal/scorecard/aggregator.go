package scorecard

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wonny/scorecard/internal/contracts"
)

// Input is everything needed to score one stock
type Input struct {
	StockCode   string
	CompanyName string
	Financial   contracts.Facts
	Market      contracts.Facts
	Quote       *contracts.Quote
}

// Aggregator combines category scores into a ScorecardResult
// ⭐ SSOT: 총점/등급/투자의견/리스크 산출
type Aggregator struct {
	grader *Grader
	now    func() time.Time
}

// Option configures an Aggregator
type Option func(*Aggregator)

// WithClock sets the clock used for AnalysisDate
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		a.now = now
	}
}

// NewAggregator creates an aggregator over the given table
func NewAggregator(table *Table, opts ...Option) *Aggregator {
	a := &Aggregator{
		grader: NewGrader(table),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Grader returns the underlying grader
func (a *Aggregator) Grader() *Grader {
	return a.grader
}

// Calculate scores one stock.
// 종목코드/값 검증 실패만 에러이며, 누락 지표는 0점 + Notes로 처리
func (a *Aggregator) Calculate(in Input) (*contracts.ScorecardResult, error) {
	if err := contracts.ValidateStockCode(in.StockCode); err != nil {
		return nil, err
	}

	table := a.grader.Table()
	facts, err := mergeFacts(table, in.Financial, in.Market)
	if err != nil {
		return nil, err
	}

	result := &contracts.ScorecardResult{
		StockCode:    in.StockCode,
		CompanyName:  in.CompanyName,
		Categories:   make([]contracts.CategoryScore, 0, len(table.Categories)),
		MaxScore:     table.MaxScore(),
		Quote:        in.Quote,
		AnalysisDate: a.now(),
	}

	var missing []string
	for _, c := range table.Categories {
		cs := a.grader.ScoreCategory(c.Category, facts)
		result.TotalScore += cs.ActualScore
		for _, contrib := range cs.Contributions {
			if contrib.Missing {
				missing = append(missing, contrib.DisplayName)
			}
		}
		result.Categories = append(result.Categories, cs)
	}

	if result.MaxScore > 0 {
		result.ScorePercentage = round2(result.TotalScore / result.MaxScore * 100)
	}

	result.OverallGrade = GradeFor(scaled(result.TotalScore, result.MaxScore))
	result.InvestmentGrade = InvestmentGradeFor(result.OverallGrade)
	result.RiskLevel = riskLevel(result)
	result.InvestmentThesis = thesis(result)

	if len(missing) > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("%s: %s", contracts.NoDataLabel, strings.Join(missing, ", ")))
	}

	return result, nil
}

// mergeFacts picks each metric from its own source first, then from the other one
func mergeFacts(table *Table, financial, market contracts.Facts) (contracts.Facts, error) {
	facts := make(contracts.Facts)
	for _, c := range table.Categories {
		for _, m := range c.Metrics {
			primary, secondary := financial, market
			primaryName, secondaryName := "financial", "market"
			if m.Source == contracts.SourceMarket {
				primary, secondary = market, financial
				primaryName, secondaryName = "market", "financial"
			}

			v, ok := primary.Lookup(m.Name)
			from := primaryName
			if !ok {
				v, ok = secondary.Lookup(m.Name)
				from = secondaryName
			}
			if !ok {
				continue
			}
			if math.IsInf(v, 0) {
				return nil, &contracts.ValidationError{
					Field:   from + "." + m.Name,
					Message: "must be a finite number",
				}
			}
			facts[m.Name] = v
		}
	}
	return facts, nil
}

// scaled maps a total onto the 110-point grade scale
func scaled(total, maxScore float64) float64 {
	if maxScore <= 0 || maxScore == ScaleMax {
		return total
	}
	return total / maxScore * ScaleMax
}

// GradeFor returns the letter grade of a score on the 110-point scale (inclusive lower bound)
func GradeFor(score float64) contracts.Grade {
	switch {
	case score >= 90:
		return contracts.GradeS
	case score >= 80:
		return contracts.GradeA
	case score >= 70:
		return contracts.GradeB
	default:
		return contracts.GradeC
	}
}

// InvestmentGradeFor maps a letter grade 1:1 to a recommendation
func InvestmentGradeFor(g contracts.Grade) contracts.InvestmentGrade {
	switch g {
	case contracts.GradeS:
		return contracts.StrongBuy
	case contracts.GradeA:
		return contracts.Buy
	case contracts.GradeB:
		return contracts.CautiousBuy
	default:
		return contracts.Caution
	}
}

func riskLevel(r *contracts.ScorecardResult) contracts.RiskLevel {
	stability, ok := r.Category(contracts.CategoryStability)
	if !ok {
		return contracts.RiskHigh
	}
	switch ratio := stability.Ratio(); {
	case ratio >= 0.8:
		return contracts.RiskLow
	case ratio >= 0.5:
		return contracts.RiskMedium
	default:
		return contracts.RiskHigh
	}
}

var thesisTemplates = map[contracts.Grade]string{
	contracts.GradeS: "%s은(는) 버핏 기준을 대부분 충족하는 최상위 기업입니다. 핵심 강점: %s.",
	contracts.GradeA: "%s은(는) 우량한 펀더멘털을 갖춘 기업입니다. 핵심 강점: %s.",
	contracts.GradeB: "%s은(는) 양호하나 일부 지표의 보완이 필요한 기업입니다. 핵심 강점: %s.",
	contracts.GradeC: "%s은(는) 투자 기준에 미달하여 주의가 필요합니다. 핵심 강점: %s.",
}

const topStrengths = 3

// thesis fills the grade template with the top contributing metrics by sub/max ratio
func thesis(r *contracts.ScorecardResult) string {
	var contribs []contracts.MetricContribution
	for _, c := range r.Categories {
		for _, m := range c.Contributions {
			if !m.Missing && m.SubScore > 0 && m.MaxScore > 0 {
				contribs = append(contribs, m)
			}
		}
	}

	sort.SliceStable(contribs, func(i, j int) bool {
		ri := contribs[i].SubScore / contribs[i].MaxScore
		rj := contribs[j].SubScore / contribs[j].MaxScore
		if ri != rj {
			return ri > rj
		}
		return contribs[i].SubScore > contribs[j].SubScore
	})
	if len(contribs) > topStrengths {
		contribs = contribs[:topStrengths]
	}

	strengths := "뚜렷한 강점 지표 없음"
	if len(contribs) > 0 {
		parts := make([]string, len(contribs))
		for i, m := range contribs {
			parts[i] = fmt.Sprintf("%s %.1f(%s)", m.DisplayName, *m.Value, m.Label)
		}
		strengths = strings.Join(parts, ", ")
	}

	name := r.CompanyName
	if name == "" {
		name = r.StockCode
	}
	return fmt.Sprintf(thesisTemplates[r.OverallGrade], name, strengths)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
