package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/pkg/logger"
)

// BatchProcessor runs a batch over the universe
type BatchProcessor interface {
	ProcessAll(ctx context.Context, limit int) (*contracts.BatchRun, error)
}

// ResultSaver persists ranked results of a run
type ResultSaver interface {
	SaveRun(ctx context.Context, runID string, ranked []contracts.RankedScorecard, destination string) error
}

// ScorecardJob scores the universe, ranks it and saves the results
type ScorecardJob struct {
	runner      BatchProcessor
	saver       ResultSaver
	schedule    string
	destination string
	limit       int
	logger      *logger.Logger
}

// NewScorecardJob creates a new scorecard batch job
func NewScorecardJob(runner BatchProcessor, saver ResultSaver, schedule, destination string, limit int, log *logger.Logger) *ScorecardJob {
	return &ScorecardJob{
		runner:      runner,
		saver:       saver,
		schedule:    schedule,
		destination: destination,
		limit:       limit,
		logger:      log,
	}
}

// Name returns the job name
func (j *ScorecardJob) Name() string {
	return "scorecard_batch"
}

// Schedule returns the cron schedule
func (j *ScorecardJob) Schedule() string {
	return j.schedule
}

// Run executes one batch.
// 일부 종목 실패는 성공으로 보고, 전체 실패와 저장 실패만 에러 (재시도 대상)
// 결과가 없거나 중단된 배치는 저장하지 않음 (이전 완료 결과 유지)
func (j *ScorecardJob) Run(ctx context.Context) error {
	run, err := j.runner.ProcessAll(ctx, j.limit)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}

	if run.Cancelled || len(run.Results) == 0 {
		j.logger.WithFields(map[string]interface{}{
			"run_id":      run.RunID,
			"scored":      len(run.Results),
			"cancelled":   run.Cancelled,
			"destination": j.destination,
		}).Warn("Scorecard batch produced no complete result, save skipped")
		return nil
	}

	ranked := scorecard.Rank(run.Results)
	if err := j.saver.SaveRun(ctx, run.RunID, ranked, j.destination); err != nil {
		return err
	}

	summary := run.Summary()
	j.logger.WithFields(map[string]interface{}{
		"run_id":      run.RunID,
		"scored":      summary.Scored,
		"skipped":     summary.Skipped,
		"failed":      summary.Failed,
		"unprocessed": summary.Unprocessed,
		"destination": j.destination,
	}).Info("Scheduled scorecard batch saved")

	return nil
}
