package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/contracts"
	"github.com/wonny/scorecard/internal/scorecard"
	"github.com/wonny/scorecard/internal/store"
)

var (
	scoreStockCode   string
	scoreCompanyName string
	scoreLimit       int
	scoreOutput      string
	scoreTop         int
)

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "종목 스코어카드 계산 (단일 / 배치)",
	Long: `버핏식 스코어카드를 계산합니다.

--stock_code 지정 시 단일 종목 상세 결과를 출력하고,
생략 시 활성 유니버스 전체를 배치로 채점/랭킹 후 --output 위치에 저장합니다.

Output:
  *.csv          CSV (UTF-8 BOM, Excel 호환)
  *.json         JSON 배열
  postgres | db  scorecard.results 테이블

Examples:
  go run ./cmd/scorecard score --stock_code=005930
  go run ./cmd/scorecard score --limit=50 --output=top50.json
  go run ./cmd/scorecard score --output=postgres`,
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreStockCode, "stock_code", "", "단일 종목 코드 (6자리)")
	scoreCmd.Flags().StringVar(&scoreCompanyName, "company_name", "", "단일 종목 회사명 (출력용)")
	scoreCmd.Flags().IntVar(&scoreLimit, "limit", 0, "배치 대상 종목 수 제한 (0 = 전체)")
	scoreCmd.Flags().StringVar(&scoreOutput, "output", "", "결과 저장 위치 (기본: SCORECARD_OUTPUT)")
	scoreCmd.Flags().IntVar(&scoreTop, "top", 20, "화면에 출력할 상위 종목 수")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if scoreStockCode != "" {
		return scoreSingle(ctx, a)
	}
	return scoreBatch(ctx, a)
}

func scoreSingle(ctx context.Context, a *app) error {
	result, err := a.runner.ProcessSingle(ctx, scoreStockCode, scoreCompanyName)
	if err != nil {
		var vErr *contracts.ValidationError
		if errors.As(err, &vErr) {
			PrintWarning(vErr.Error())
		}
		return err
	}

	PrintScorecard(result)
	return nil
}

func scoreBatch(ctx context.Context, a *app) error {
	output := scoreOutput
	if output == "" {
		output = a.cfg.Scorecard.Output
	}

	if isPostgresOutput(output) {
		if err := a.db.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	PrintHeader("Scorecard Batch")
	fmt.Printf("  Limit     : %s\n", limitLabel(scoreLimit))
	fmt.Printf("  Max Score : %.0f\n", a.table.MaxScore())
	fmt.Printf("  Output    : %s\n", output)
	PrintSeparator()

	run, err := a.runner.ProcessAll(ctx, scoreLimit)
	if run != nil {
		PrintRunSummary(run)
	}
	if err != nil {
		if errors.Is(err, contracts.ErrNoStocksScored) {
			PrintWarning("채점된 종목이 없습니다")
		}
		return err
	}
	if err := requireResults(run); err != nil {
		PrintWarning("저장할 결과가 없습니다")
		return err
	}

	ranked := scorecard.Rank(run.Results)
	PrintRanking(ranked, scoreTop)

	// 저장 실패는 CLI 종료 코드로 전달
	if !a.store.ForRun(run.RunID).SaveScreeningResults(ctx, ranked, output) {
		return fmt.Errorf("failed to save results to %s", output)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d개 종목 저장 완료: %s", len(ranked), output))
	return nil
}

// requireResults fails a run with no scored stock (빈 유니버스, 결과 전 중단) so the CLI exits non-zero
func requireResults(run *contracts.BatchRun) error {
	if len(run.Results) > 0 {
		return nil
	}
	if run.Cancelled {
		return fmt.Errorf("batch %s interrupted before any stock was scored: %w", run.RunID, contracts.ErrNoStocksScored)
	}
	return fmt.Errorf("batch %s: universe of %d stocks: %w", run.RunID, run.Universe, contracts.ErrNoStocksScored)
}

func isPostgresOutput(output string) bool {
	o := strings.ToLower(output)
	return o == store.DestPostgres || o == store.DestDB
}

func limitLabel(limit int) string {
	if limit <= 0 {
		return "all"
	}
	return fmt.Sprintf("%d", limit)
}
