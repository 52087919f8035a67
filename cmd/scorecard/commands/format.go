package commands

import (
	"fmt"

	"github.com/wonny/scorecard/internal/contracts"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintHeader prints a titled block header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Printf("✅ %s\n", message)
}

// PrintScorecard prints the full breakdown of one result
func PrintScorecard(r *contracts.ScorecardResult) {
	PrintHeader(fmt.Sprintf("%s (%s)", r.CompanyName, r.StockCode))
	fmt.Printf("  총점      : %.2f / %.0f (%.1f%%)\n", r.TotalScore, r.MaxScore, r.ScorePercentage)
	fmt.Printf("  등급      : %s (%s)\n", r.OverallGrade, r.InvestmentGrade)
	fmt.Printf("  리스크    : %s\n", r.RiskLevel)
	if r.Quote != nil {
		fmt.Printf("  현재가    : %s원\n", r.Quote.Price.StringFixed(0))
	}
	PrintSeparator()

	for _, c := range r.Categories {
		fmt.Printf("  [%s] %.2f / %.0f\n", c.Category.DisplayName(), c.ActualScore, c.MaxScore)
		for _, m := range c.Contributions {
			value := "-"
			if m.Value != nil {
				value = fmt.Sprintf("%.2f", *m.Value)
			}
			fmt.Printf("    %-14s %10s  %5.2f / %-5.2f %s\n", m.DisplayName, value, m.SubScore, m.MaxScore, m.Label)
		}
	}

	PrintSeparator()
	fmt.Printf("  %s\n", r.InvestmentThesis)
	for _, n := range r.Notes {
		fmt.Printf("  • %s\n", n)
	}
	PrintDoubleSeparator()
}

// PrintRanking prints the top n ranked results as a table
func PrintRanking(ranked []contracts.RankedScorecard, n int) {
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}

	PrintHeader(fmt.Sprintf("Top %d", n))
	fmt.Printf("  %4s  %-6s  %-16s  %7s  %-6s  %s\n", "순위", "코드", "종목명", "총점", "등급", "추천")
	PrintSeparator()
	for _, r := range ranked[:n] {
		fmt.Printf("  %4d  %-6s  %-16s  %7.2f  %-6s  %s\n",
			r.Rank, r.StockCode, truncate(r.CompanyName, 16), r.TotalScore, r.OverallGrade, r.InvestmentGrade)
	}
	PrintDoubleSeparator()
}

// PrintRunSummary prints the counts of a batch run
func PrintRunSummary(run *contracts.BatchRun) {
	s := run.Summary()

	PrintHeader("Batch Summary")
	fmt.Printf("  Run ID      : %s\n", run.RunID)
	fmt.Printf("  Universe    : %d\n", run.Universe)
	fmt.Printf("  Scored      : %d\n", s.Scored)
	fmt.Printf("  Skipped     : %d\n", s.Skipped)
	fmt.Printf("  Failed      : %d\n", s.Failed)
	fmt.Printf("  Unprocessed : %d\n", s.Unprocessed)
	fmt.Printf("  Duration    : %.2fs\n", run.Duration().Seconds())
	if run.Cancelled {
		fmt.Println("  Status      : cancelled")
	}

	failed := 0
	for _, f := range run.Failures {
		if f.Kind != contracts.FailureFailed {
			continue
		}
		if failed == 0 {
			PrintSeparator()
		}
		if failed++; failed > 10 {
			fmt.Printf("  ... 외 %d건\n", s.Failed-10)
			break
		}
		fmt.Printf("  ✗ %s %s: %s\n", f.StockCode, f.CompanyName, f.Reason)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
