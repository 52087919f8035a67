package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/scorecard/internal/scorecard"
)

// bandsCmd represents the bands command
var bandsCmd = &cobra.Command{
	Use:   "bands",
	Short: "활성 등급 구간 테이블 출력",
	Long: `현재 설정으로 적용되는 등급 구간 테이블을 YAML로 출력합니다.
출력의 SHA-256 해시로 실행 간 테이블 동일성을 확인할 수 있습니다.

Examples:
  go run ./cmd/scorecard bands
  go run ./cmd/scorecard bands --quality
  go run ./cmd/scorecard bands validate ./bands.yaml`,
	RunE: runBands,
}

// bandsValidateCmd checks a YAML band table without running anything
var bandsValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "등급 구간 YAML 검증",
	Args:  cobra.ExactArgs(1),
	RunE:  runBandsValidate,
}

func init() {
	rootCmd.AddCommand(bandsCmd)
	bandsCmd.AddCommand(bandsValidateCmd)
}

func runBands(cmd *cobra.Command, args []string) error {
	// DB 설정 없이도 출력 가능하도록 config 실패 시 플래그만 사용
	path, quality := bandsFile, includeQuality
	if cfg, err := loadConfig(); err == nil {
		path, quality = cfg.Scorecard.BandsFile, cfg.Scorecard.IncludeQuality
	}

	table, err := scorecard.Resolve(path, quality)
	if err != nil {
		return err
	}

	hash, err := scorecard.Hash(table)
	if err != nil {
		return err
	}

	fmt.Printf("# max_score: %.0f\n", table.MaxScore())
	fmt.Printf("# sha256: %s\n", hash)
	return table.Encode(os.Stdout)
}

func runBandsValidate(cmd *cobra.Command, args []string) error {
	table, _, err := scorecard.LoadTable(args[0])
	if err != nil {
		PrintWarning(err.Error())
		return err
	}

	PrintSuccess(fmt.Sprintf("%s: %.0f점 테이블 OK", args[0], table.MaxScore()))
	return nil
}
