package contracts

import "time"

// FailureKind classifies a stock that produced no result
type FailureKind string

const (
	FailureSkipped FailureKind = "skipped" // 데이터 소스 오류
	FailureFailed  FailureKind = "failed"  // 검증 오류
)

// FailureRecord names a stock that produced no result and why
type FailureRecord struct {
	StockCode   string      `json:"stock_code"`
	CompanyName string      `json:"company_name"`
	Kind        FailureKind `json:"kind"`
	Reason      string      `json:"reason"`
}

// BatchRun is the outcome of one batch invocation.
// Results는 유니버스 순서를 유지함 (랭킹은 별도 호출)
type BatchRun struct {
	RunID       string             `json:"run_id"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  time.Time          `json:"finished_at"`
	Universe    int                `json:"universe"`
	Results     []*ScorecardResult `json:"results"`
	Failures    []FailureRecord    `json:"failures"`
	Unprocessed int                `json:"unprocessed"`
	Cancelled   bool               `json:"cancelled"`
}

// RunSummary holds the counts reported at batch completion
type RunSummary struct {
	Scored      int `json:"scored"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	Unprocessed int `json:"unprocessed"`
}

// Summary counts results and failures by kind
func (b *BatchRun) Summary() RunSummary {
	s := RunSummary{
		Scored:      len(b.Results),
		Unprocessed: b.Unprocessed,
	}
	for _, f := range b.Failures {
		switch f.Kind {
		case FailureSkipped:
			s.Skipped++
		case FailureFailed:
			s.Failed++
		}
	}
	return s
}

// Duration returns how long the run took
func (b *BatchRun) Duration() time.Duration {
	return b.FinishedAt.Sub(b.StartedAt)
}
