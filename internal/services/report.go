package services

import (
	"fmt"
	"sort"
	"strings"

	"cvscreener/internal/models"
)

// RankResults returns a copy of results ordered by final score, highest
// first. Failed results sink to the bottom. The input slice keeps its
// original document order.
func RankResults(results []models.AnalysisResult) []models.AnalysisResult {
	ranked := make([]models.AnalysisResult, len(results))
	copy(ranked, results)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Failed != ranked[j].Failed {
			return !ranked[i].Failed
		}
		return ranked[i].FinalScore > ranked[j].FinalScore
	})

	return ranked
}

// FilterByRecommendation returns the scored results in a given tier.
func FilterByRecommendation(results []models.AnalysisResult, tier models.Recommendation) []models.AnalysisResult {
	filtered := []models.AnalysisResult{}
	for _, result := range results {
		if !result.Failed && result.Recommendation == tier {
			filtered = append(filtered, result)
		}
	}
	return filtered
}

// BuildSummaryReport renders a Markdown overview of a completed batch:
// totals, average score, tier breakdown and the top three candidates.
func BuildSummaryReport(results []models.AnalysisResult) string {
	scored := []models.AnalysisResult{}
	for _, result := range results {
		if !result.Failed {
			scored = append(scored, result)
		}
	}

	if len(scored) == 0 {
		return "No CVs analyzed yet."
	}

	var total float64
	tiers := map[models.Recommendation]int{}
	for _, result := range scored {
		total += result.FinalScore
		tiers[result.Recommendation]++
	}
	avg := total / float64(len(scored))

	var report strings.Builder
	report.WriteString("# CV Analysis Summary Report\n\n")
	report.WriteString("## Overview\n")
	fmt.Fprintf(&report, "- **Total CVs Analyzed**: %d\n", len(scored))
	if failed := len(results) - len(scored); failed > 0 {
		fmt.Fprintf(&report, "- **Failed Documents**: %d\n", failed)
	}
	fmt.Fprintf(&report, "- **Average Score**: %.1f/100\n\n", avg)

	report.WriteString("## Recommendation Breakdown\n")
	breakdown := []struct {
		tier  models.Recommendation
		label string
	}{
		{models.StronglyRecommend, "Strongly Recommend (80-100)"},
		{models.Recommend, "Recommend (60-79)"},
		{models.Consider, "Consider (40-59)"},
		{models.Reject, "Reject (0-39)"},
	}
	for _, entry := range breakdown {
		count := tiers[entry.tier]
		fmt.Fprintf(&report, "- **%s**: %d candidates (%.1f%%)\n",
			entry.label, count, float64(count)/float64(len(scored))*100)
	}

	ranked := RankResults(scored)
	top := ranked
	if len(top) > 3 {
		top = top[:3]
	}

	fmt.Fprintf(&report, "\n## Top %d Candidates\n", len(top))
	for i, result := range top {
		fmt.Fprintf(&report, "\n### %d. %s\n", i+1, result.FileName)
		fmt.Fprintf(&report, "- **Score**: %.2f/100\n", result.FinalScore)
		fmt.Fprintf(&report, "- **Recommendation**: %s\n", result.Recommendation)
		fmt.Fprintf(&report, "- **Summary**: %s\n", result.Summary)
	}

	return report.String()
}
