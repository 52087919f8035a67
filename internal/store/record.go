package store

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wonny/scorecard/internal/contracts"
)

// Column names of a flattened result, in output order
const (
	ColRank            = "rank"
	ColStockCode       = "stock_code"
	ColCompanyName     = "company_name"
	ColTotalScore      = "total_score"
	ColMaxScore        = "max_score"
	ColScorePercentage = "score_percentage"
	ColGrade           = "grade"
	ColRecommendation  = "recommendation"
	ColRiskLevel       = "risk_level"
	ColThesis          = "investment_thesis"
	ColPrice           = "price"
	ColMarketCap       = "market_cap"
	ColAnalysisDate    = "analysis_date"
	ColNotes           = "notes"
)

// Header returns the column order. 퀄리티 컬럼은 결과에 있을 때만 포함
func Header(includeQuality bool) []string {
	header := []string{
		ColRank, ColStockCode, ColCompanyName,
		ColTotalScore, ColMaxScore, ColScorePercentage,
		ColGrade, ColRecommendation,
	}
	for _, c := range contracts.CoreCategories {
		header = append(header, string(c))
	}
	if includeQuality {
		header = append(header, string(contracts.CategoryQuality))
	}
	return append(header,
		ColRiskLevel, ColThesis, ColPrice, ColMarketCap, ColAnalysisDate, ColNotes,
	)
}

// Record is one flattened result keyed by column name; values are normalized
type Record map[string]interface{}

// Flatten converts a ranked result into a Record
func Flatten(r contracts.RankedScorecard) Record {
	rec := Record{
		ColRank:            Normalize(r.Rank),
		ColStockCode:       r.StockCode,
		ColCompanyName:     r.CompanyName,
		ColTotalScore:      Normalize(r.TotalScore),
		ColMaxScore:        Normalize(r.MaxScore),
		ColScorePercentage: Normalize(r.ScorePercentage),
		ColGrade:           Normalize(r.OverallGrade),
		ColRecommendation:  Normalize(r.InvestmentGrade),
		ColRiskLevel:       Normalize(r.RiskLevel),
		ColThesis:          r.InvestmentThesis,
		ColAnalysisDate:    Normalize(r.AnalysisDate),
		ColNotes:           joinNotes(r.Notes),
	}

	for _, cs := range r.Categories {
		rec[string(cs.Category)] = Normalize(cs.ActualScore)
	}

	if r.Quote != nil {
		rec[ColPrice] = Normalize(r.Quote.Price)
		rec[ColMarketCap] = Normalize(r.Quote.MarketCap)
	}
	return rec
}

// FlattenAll flattens results and returns the matching header
func FlattenAll(ranked []contracts.RankedScorecard) ([]string, []Record) {
	includeQuality := false
	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		if r.ScorecardResult == nil {
			continue
		}
		if _, ok := r.Category(contracts.CategoryQuality); ok {
			includeQuality = true
		}
		records = append(records, Flatten(r))
	}
	return Header(includeQuality), records
}

// CSV renders the record in header order
func (r Record) CSV(header []string) []string {
	row := make([]string, len(header))
	for i, col := range header {
		row[i] = formatCell(r[col])
	}
	return row
}

// StockCode returns the key of the record
func (r Record) StockCode() string {
	s, _ := r[ColStockCode].(string)
	return s
}

func formatCell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

// numericColumns are parsed back to numbers when loading CSV
var numericColumns = map[string]bool{
	ColRank: true, ColTotalScore: true, ColMaxScore: true, ColScorePercentage: true,
	ColPrice: true, ColMarketCap: true,
	string(contracts.CategoryProfitability): true,
	string(contracts.CategoryGrowth):        true,
	string(contracts.CategoryStability):     true,
	string(contracts.CategoryEfficiency):    true,
	string(contracts.CategoryValuation):     true,
	string(contracts.CategoryQuality):       true,
}

// parseCell restores a CSV cell into the scalar Flatten would have produced
func parseCell(col, cell string) interface{} {
	if cell == "" {
		if col == ColNotes || col == ColThesis || col == ColCompanyName {
			return ""
		}
		return nil
	}
	if !numericColumns[col] {
		return cell
	}
	if i, err := strconv.ParseInt(cell, 10, 64); err == nil {
		if col == ColRank || col == ColPrice || col == ColMarketCap {
			return i
		}
	}
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		return f
	}
	return cell
}

func joinNotes(notes []string) string {
	return strings.Join(notes, "; ")
}
