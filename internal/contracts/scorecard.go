package contracts

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the scorecard rubric categories
type Category string

const (
	CategoryProfitability Category = "profitability"
	CategoryGrowth        Category = "growth"
	CategoryStability     Category = "stability"
	CategoryEfficiency    Category = "efficiency"
	CategoryValuation     Category = "valuation"
	CategoryQuality       Category = "quality" // 확장 카테고리 (기본 비활성)
)

// CoreCategories are the five categories that make up the 110-point scorecard, in report order
var CoreCategories = []Category{
	CategoryProfitability,
	CategoryGrowth,
	CategoryStability,
	CategoryEfficiency,
	CategoryValuation,
}

// DisplayName returns the Korean label of the category
func (c Category) DisplayName() string {
	switch c {
	case CategoryProfitability:
		return "수익성"
	case CategoryGrowth:
		return "성장성"
	case CategoryStability:
		return "안정성"
	case CategoryEfficiency:
		return "효율성"
	case CategoryValuation:
		return "가치평가"
	case CategoryQuality:
		return "퀄리티"
	default:
		return string(c)
	}
}

// Direction tells whether larger metric values are better
type Direction string

const (
	HigherIsBetter Direction = "higher"
	LowerIsBetter  Direction = "lower"
)

// FactSource tells which provider supplies a metric
type FactSource string

const (
	SourceFinancial FactSource = "financial" // 재무제표 (DART)
	SourceMarket    FactSource = "market"    // 시세/밸류에이션
)

// NoDataLabel is the label given to a metric without a usable value
const NoDataLabel = "데이터없음"

// Facts maps metric name to value. An absent key or NaN is a missing metric.
type Facts map[string]float64

// Lookup returns the value of a metric and whether it is usable
func (f Facts) Lookup(name string) (float64, bool) {
	v, ok := f[name]
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Stock is one entry of the scoring universe
type Stock struct {
	Code string `json:"stock_code" validate:"required,len=6,number"`
	Name string `json:"company_name"`
}

// Quote is the latest market snapshot carried on a result
type Quote struct {
	Price     decimal.Decimal `json:"price"`
	MarketCap decimal.Decimal `json:"market_cap"`
	AsOf      time.Time       `json:"as_of"`
}

// MarketSnapshot is what a market provider returns for a stock
type MarketSnapshot struct {
	Facts Facts  `json:"facts"`
	Quote *Quote `json:"quote,omitempty"`
}

// GradeBand maps a value range to a sub-score.
// Threshold 비교 방향은 MetricSpec.Direction을 따름 (경계값 포함)
type GradeBand struct {
	Threshold float64 `yaml:"threshold" json:"threshold"`
	Score     float64 `yaml:"score" json:"score"`
	Label     string  `yaml:"label" json:"label"`
}

// MetricSpec describes how one metric is graded
// ⭐ SSOT: 지표별 배점/등급 구간 정의
type MetricSpec struct {
	Name        string      `yaml:"name" json:"name"`
	DisplayName string      `yaml:"display_name" json:"display_name"`
	Category    Category    `yaml:"category" json:"category"`
	Source      FactSource  `yaml:"source" json:"source"`
	Direction   Direction   `yaml:"direction" json:"direction"`
	Weight      float64     `yaml:"weight" json:"weight"`
	Bands       []GradeBand `yaml:"bands" json:"bands"` // 최상위 구간부터, 마지막은 catch-all

	// Floor: 이 값 이하는 마지막 구간으로 처리 (적자 기업의 음수 PER 등)
	Floor *float64 `yaml:"floor,omitempty" json:"floor,omitempty"`
}

// MetricContribution records how one metric contributed to its category
type MetricContribution struct {
	Metric      string   `json:"metric"`
	DisplayName string   `json:"display_name"`
	Value       *float64 `json:"value"`
	SubScore    float64  `json:"sub_score"`
	MaxScore    float64  `json:"max_score"`
	Label       string   `json:"label"`
	Missing     bool     `json:"missing"`
}

// CategoryScore is the graded total of one category.
// 항상 0 <= ActualScore <= MaxScore
type CategoryScore struct {
	Category      Category             `json:"category"`
	MaxScore      float64              `json:"max_score"`
	ActualScore   float64              `json:"actual_score"`
	Contributions []MetricContribution `json:"contributions"`
}

// Ratio returns ActualScore / MaxScore
func (c *CategoryScore) Ratio() float64 {
	if c.MaxScore <= 0 {
		return 0
	}
	return c.ActualScore / c.MaxScore
}

// Grade is the overall letter grade
type Grade string

const (
	GradeS Grade = "S등급"
	GradeA Grade = "A등급"
	GradeB Grade = "B등급"
	GradeC Grade = "C등급"
)

// InvestmentGrade is the recommendation attached to a Grade
type InvestmentGrade string

const (
	StrongBuy   InvestmentGrade = "적극 매수"
	Buy         InvestmentGrade = "매수"
	CautiousBuy InvestmentGrade = "신중한 매수"
	Caution     InvestmentGrade = "주의"
)

// RiskLevel is derived from the stability category
type RiskLevel string

const (
	RiskLow    RiskLevel = "낮음"
	RiskMedium RiskLevel = "보통"
	RiskHigh   RiskLevel = "높음"
)

// ScorecardResult is the immutable outcome of scoring one stock
// ⭐ SSOT: 종목별 스코어카드 결과
type ScorecardResult struct {
	StockCode        string          `json:"stock_code"`
	CompanyName      string          `json:"company_name"`
	Categories       []CategoryScore `json:"categories"`
	TotalScore       float64         `json:"total_score"`
	MaxScore         float64         `json:"max_score"`
	ScorePercentage  float64         `json:"score_percentage"`
	OverallGrade     Grade           `json:"overall_grade"`
	InvestmentGrade  InvestmentGrade `json:"investment_grade"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	InvestmentThesis string          `json:"investment_thesis"`
	Notes            []string        `json:"notes,omitempty"`
	Quote            *Quote          `json:"quote,omitempty"`
	AnalysisDate     time.Time       `json:"analysis_date"`
}

// Category returns the score of one category
func (r *ScorecardResult) Category(c Category) (*CategoryScore, bool) {
	for i := range r.Categories {
		if r.Categories[i].Category == c {
			return &r.Categories[i], true
		}
	}
	return nil, false
}

// RankedScorecard is a result with its 1-based rank
type RankedScorecard struct {
	Rank int `json:"rank"`
	*ScorecardResult
}
