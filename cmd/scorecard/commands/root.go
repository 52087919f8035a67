package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	bandsFile      string
	includeQuality bool
	verbose        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "버핏식 110점 스코어카드 엔진",
	Long: `Buffett-style Scorecard CLI

재무(DART)와 시세(PER, PBR 등) 지표를 5개 카테고리 110점 만점으로 채점하고,
종목 유니버스 전체를 배치로 평가/랭킹/저장합니다.

Usage:
  go run ./cmd/scorecard [command]

Examples:
  go run ./cmd/scorecard score --stock_code=005930
  go run ./cmd/scorecard score --limit=100 --output=results.csv
  go run ./cmd/scorecard serve
  go run ./cmd/scorecard schedule
  go run ./cmd/scorecard bands`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&bandsFile, "bands", "", "등급 구간 YAML (기본: SCORECARD_BANDS_FILE 또는 내장 테이블)")
	rootCmd.PersistentFlags().BoolVar(&includeQuality, "quality", false, "퀄리티(10점) 확장 카테고리 포함")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (LOG_LEVEL=debug)")
}
