package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/scorecard/pkg/logger"
)

// ResultPruner deletes stored results older than a day
type ResultPruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

// RetentionJob removes stored scorecards past the retention window
type RetentionJob struct {
	pruner    ResultPruner
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewRetentionJob creates a new retention job
func NewRetentionJob(pruner ResultPruner, retention time.Duration, log *logger.Logger) *RetentionJob {
	return &RetentionJob{
		pruner:    pruner,
		retention: retention,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *RetentionJob) Name() string {
	return "scorecard_retention"
}

// Schedule returns the cron schedule (매일 03:00)
func (j *RetentionJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run deletes rows analysed before now - retention
func (j *RetentionJob) Run(ctx context.Context) error {
	// 보관 기간이 0 이하면 오늘 이전 전체가 삭제되므로 실행 거부
	if j.retention <= 0 {
		return fmt.Errorf("invalid retention %v: must be > 0", j.retention)
	}
	before := j.now().Add(-j.retention)

	removed, err := j.pruner.Prune(ctx, before)
	if err != nil {
		return err
	}

	if removed > 0 {
		j.logger.WithFields(map[string]interface{}{
			"removed": removed,
			"before":  before.Format("2006-01-02"),
		}).Info("Old scorecard results pruned")
	}
	return nil
}
