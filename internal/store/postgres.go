package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/scorecard/internal/contracts"
)

const insertResultQuery = `
	INSERT INTO scorecard.results (
		run_id, rank, stock_code, company_name,
		total_score, max_score, score_percentage, grade, recommendation,
		profitability, growth, stability, efficiency, valuation, quality,
		risk_level, investment_thesis, price, market_cap, detail, analysis_date
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
`

// saveResults replaces the rows of every analysis date present in ranked, in one transaction
func saveResults(ctx context.Context, pool *pgxpool.Pool, runID string, ranked []contracts.RankedScorecard) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	dates := make(map[string]bool)
	batch := &pgx.Batch{}
	for _, r := range ranked {
		if r.ScorecardResult == nil {
			continue
		}
		date := dateOnly(r.AnalysisDate)
		if key := date.Format(DateLayout); !dates[key] {
			dates[key] = true
			batch.Queue("DELETE FROM scorecard.results WHERE analysis_date = $1", date)
		}

		args, err := resultArgs(runID, r)
		if err != nil {
			return err
		}
		batch.Queue(insertResultQuery, args...)
	}

	if batch.Len() == 0 {
		return nil
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func resultArgs(runID string, r contracts.RankedScorecard) ([]interface{}, error) {
	rec := Flatten(r)

	detail, err := json.Marshal(r.ScorecardResult)
	if err != nil {
		return nil, fmt.Errorf("marshal detail %s: %w", r.StockCode, err)
	}

	category := func(c contracts.Category) interface{} {
		if v, ok := rec[string(c)]; ok {
			return v
		}
		return nil
	}

	return []interface{}{
		runID, r.Rank, r.StockCode, r.CompanyName,
		rec[ColTotalScore], rec[ColMaxScore], rec[ColScorePercentage],
		rec[ColGrade], rec[ColRecommendation],
		category(contracts.CategoryProfitability),
		category(contracts.CategoryGrowth),
		category(contracts.CategoryStability),
		category(contracts.CategoryEfficiency),
		category(contracts.CategoryValuation),
		category(contracts.CategoryQuality),
		rec[ColRiskLevel], rec[ColThesis],
		rec[ColPrice], rec[ColMarketCap],
		detail, dateOnly(r.AnalysisDate),
	}, nil
}

// loadResults reads one analysis date (latest when day is nil) in rank order
func loadResults(ctx context.Context, pool *pgxpool.Pool, day *time.Time) ([]Record, error) {
	query := `
		SELECT rank, stock_code, company_name,
		       total_score, max_score, score_percentage, grade, recommendation,
		       profitability, growth, stability, efficiency, valuation, quality,
		       risk_level, investment_thesis, price, market_cap, analysis_date,
		       COALESCE(detail->'notes', '[]'::jsonb)
		FROM scorecard.results
		WHERE analysis_date = COALESCE($1::date, (SELECT MAX(analysis_date) FROM scorecard.results))
		ORDER BY rank
	`

	var dayArg interface{}
	if day != nil {
		dayArg = dateOnly(*day)
	}

	rows, err := pool.Query(ctx, query, dayArg)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var (
			rank                               int
			code, name, grade, recommendation  string
			risk, thesis                       string
			total, maxScore, pct               pgtype.Numeric
			prof, growth, stab, eff, val, qual pgtype.Numeric
			price, marketCap                   pgtype.Numeric
			date                               time.Time
			notes                              []string
		)
		if err := rows.Scan(
			&rank, &code, &name, &total, &maxScore, &pct, &grade, &recommendation,
			&prof, &growth, &stab, &eff, &val, &qual,
			&risk, &thesis, &price, &marketCap, &date, &notes,
		); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}

		r := Record{
			ColRank:            Normalize(rank),
			ColStockCode:       code,
			ColCompanyName:     name,
			ColTotalScore:      asFloat(total),
			ColMaxScore:        asFloat(maxScore),
			ColScorePercentage: asFloat(pct),
			ColGrade:           grade,
			ColRecommendation:  recommendation,
			ColRiskLevel:       risk,
			ColThesis:          thesis,
			ColPrice:           Normalize(price),
			ColMarketCap:       Normalize(marketCap),
			ColAnalysisDate:    Normalize(date),
			ColNotes:           joinNotes(notes),
		}
		r[string(contracts.CategoryProfitability)] = asFloat(prof)
		r[string(contracts.CategoryGrowth)] = asFloat(growth)
		r[string(contracts.CategoryStability)] = asFloat(stab)
		r[string(contracts.CategoryEfficiency)] = asFloat(eff)
		r[string(contracts.CategoryValuation)] = asFloat(val)
		if qual.Valid {
			r[string(contracts.CategoryQuality)] = asFloat(qual)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return records, nil
}

func pruneResults(ctx context.Context, pool *pgxpool.Pool, before time.Time) (int64, error) {
	tag, err := pool.Exec(ctx, "DELETE FROM scorecard.results WHERE analysis_date < $1", dateOnly(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune results: %w", err)
	}
	return tag.RowsAffected(), nil
}

// asFloat keeps score columns as float64 like Flatten does
func asFloat(n pgtype.Numeric) interface{} {
	if !n.Valid {
		return nil
	}
	f, err := n.Float64Value()
	if err != nil || !f.Valid {
		return nil
	}
	return finite(f.Float64)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
