package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/scheduler"
	"github.com/wonny/scorecard/internal/scheduler/jobs"
)

var (
	scheduleOnce   string
	scheduleLimit  int
	scheduleOutput string
)

// scheduleCmd represents the schedule command
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "정기 배치 스케줄러 실행",
	Long: `cron 스케줄에 따라 배치 스코어링과 결과 보관 정리를 실행합니다.

Jobs:
  scorecard_batch      SCORECARD_SCHEDULE (기본: 평일 18:30)
  scorecard_retention  매일 03:00, SCORECARD_RETENTION 이전 결과 삭제

Examples:
  go run ./cmd/scorecard schedule
  go run ./cmd/scorecard schedule --once=scorecard_batch`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleOnce, "once", "", "지정한 job을 즉시 한 번 실행하고 종료")
	scheduleCmd.Flags().IntVar(&scheduleLimit, "limit", 0, "배치 대상 종목 수 제한 (0 = 전체)")
	scheduleCmd.Flags().StringVar(&scheduleOutput, "output", "", "결과 저장 위치 (기본: SCORECARD_OUTPUT)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	output := scheduleOutput
	if output == "" {
		output = a.cfg.Scorecard.Output
	}

	// 보관 정리 job이 DB 테이블을 쓰므로 출력 위치와 무관하게 스키마 보장
	if err := a.db.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	s := scheduler.New(a.log)
	if err := s.AddJob(jobs.NewScorecardJob(a.runner, a.store, a.cfg.Scorecard.Schedule, output, scheduleLimit, a.log)); err != nil {
		return err
	}
	if err := s.AddJob(jobs.NewRetentionJob(a.store, a.cfg.Scorecard.Retention, a.log)); err != nil {
		return err
	}

	if scheduleOnce != "" {
		result, err := s.RunNow(ctx, scheduleOnce)
		if err != nil {
			return err
		}
		PrintSuccess(fmt.Sprintf("%s completed in %.2fs", scheduleOnce, result.Duration.Seconds()))
		return nil
	}

	PrintHeader("Scheduler")
	for _, name := range s.GetAllJobs() {
		next, err := s.NextRun(name)
		if err != nil {
			continue
		}
		fmt.Printf("  %-20s next: %s\n", name, next.Format(time.RFC3339))
	}
	PrintDoubleSeparator()

	s.Start()
	<-ctx.Done()

	fmt.Println("Shutting down scheduler...")
	s.Stop()
	return nil
}
