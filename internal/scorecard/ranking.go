package scorecard

import (
	"sort"

	"github.com/wonny/scorecard/internal/contracts"
)

// Rank orders results by total score descending and assigns 1-based ranks.
// 동점은 종목코드 오름차순. 입력 슬라이스는 변경하지 않음
func Rank(results []*contracts.ScorecardResult) []contracts.RankedScorecard {
	sorted := make([]*contracts.ScorecardResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			sorted = append(sorted, r)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].TotalScore != sorted[j].TotalScore {
			return sorted[i].TotalScore > sorted[j].TotalScore
		}
		return sorted[i].StockCode < sorted[j].StockCode
	})

	ranked := make([]contracts.RankedScorecard, len(sorted))
	for i, r := range sorted {
		ranked[i] = contracts.RankedScorecard{Rank: i + 1, ScorecardResult: r}
	}
	return ranked
}
