package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"cvscreener/internal/models"
)

// AggregatorService combines the five criterion scores into a final
// 0-100 score and maps it onto a recommendation tier. Fallback criteria
// count at face value (raw 0): a criterion the oracle could not score
// drags the final score down visibly instead of being hidden.
type AggregatorService interface {
	Aggregate(fileName string, criteria []models.CriterionScore) (models.AnalysisResult, error)
}

type aggregatorService struct{}

func NewAggregatorService() AggregatorService {
	return &aggregatorService{}
}

// Thresholds for deriving strengths and weaknesses out of criterion
// justifications. No re-scoring happens here.
const (
	strengthThreshold = 70
	weaknessThreshold = 50
)

func (a *aggregatorService) Aggregate(fileName string, criteria []models.CriterionScore) (models.AnalysisResult, error) {
	if len(criteria) != len(models.Criteria) {
		return models.AnalysisResult{}, fmt.Errorf("expected %d criterion scores, got %d", len(models.Criteria), len(criteria))
	}

	byCriterion := make(map[models.Criterion]models.CriterionScore, len(criteria))
	for _, score := range criteria {
		if _, ok := models.Weights[score.Criterion]; !ok {
			return models.AnalysisResult{}, fmt.Errorf("unknown criterion %q", score.Criterion)
		}
		if _, dup := byCriterion[score.Criterion]; dup {
			return models.AnalysisResult{}, fmt.Errorf("duplicate criterion %q", score.Criterion)
		}
		byCriterion[score.Criterion] = score
	}

	var total float64
	ordered := make([]models.CriterionScore, 0, len(models.Criteria))
	for _, criterion := range models.Criteria {
		score := byCriterion[criterion]
		total += float64(score.RawScore) * models.Weights[criterion]
		ordered = append(ordered, score)
	}

	final := roundHalfEven(total)

	return models.AnalysisResult{
		FileName:       fileName,
		FinalScore:     final,
		Recommendation: RecommendationFor(final),
		Criteria:       ordered,
		Strengths:      deriveStrengths(ordered),
		Weaknesses:     deriveWeaknesses(ordered),
		Summary:        buildSummary(final, ordered),
		Failed:         false,
	}, nil
}

// RecommendationFor partitions [0,100] into four tiers with no gaps or
// overlaps; boundary values map to the higher tier.
func RecommendationFor(score float64) models.Recommendation {
	switch {
	case score >= 80:
		return models.StronglyRecommend
	case score >= 60:
		return models.Recommend
	case score >= 40:
		return models.Consider
	default:
		return models.Reject
	}
}

// roundHalfEven rounds to 2 decimal places using banker's rounding.
func roundHalfEven(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}

func deriveStrengths(criteria []models.CriterionScore) []string {
	strengths := []string{}
	for _, score := range criteria {
		if score.Fallback || score.RawScore < strengthThreshold {
			continue
		}
		strengths = append(strengths, describe(score))
	}
	return strengths
}

func deriveWeaknesses(criteria []models.CriterionScore) []string {
	weaknesses := []string{}
	for _, score := range criteria {
		if score.RawScore >= weaknessThreshold && !score.Fallback {
			continue
		}
		weaknesses = append(weaknesses, describe(score))
	}
	return weaknesses
}

func describe(score models.CriterionScore) string {
	justification := strings.TrimSpace(score.Justification)
	if justification == "" {
		justification = fmt.Sprintf("scored %d/100", score.RawScore)
	}
	return fmt.Sprintf("%s: %s", criterionLabel(score.Criterion), justification)
}

func criterionLabel(criterion models.Criterion) string {
	switch criterion {
	case models.CriterionExperience:
		return "Experience"
	case models.CriterionImpact:
		return "Impact"
	case models.CriterionSkills:
		return "Skills"
	case models.CriterionEducation:
		return "Education"
	case models.CriterionCertifications:
		return "Certifications & Extras"
	default:
		return string(criterion)
	}
}

// buildSummary composes a short deterministic assessment naming the
// leading and trailing criteria.
func buildSummary(final float64, criteria []models.CriterionScore) string {
	sorted := make([]models.CriterionScore, len(criteria))
	copy(sorted, criteria)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RawScore > sorted[j].RawScore
	})

	best := sorted[0]
	worst := sorted[len(sorted)-1]

	summary := fmt.Sprintf(
		"Overall score %.2f/100 (%s). Strongest area: %s (%d/100). Weakest area: %s (%d/100).",
		final, RecommendationFor(final),
		criterionLabel(best.Criterion), best.RawScore,
		criterionLabel(worst.Criterion), worst.RawScore,
	)

	if fallbacks := countFallbacks(criteria); fallbacks > 0 {
		summary += fmt.Sprintf(" %d criterion score(s) defaulted to 0 because the oracle response could not be used.", fallbacks)
	}

	return summary
}

func countFallbacks(criteria []models.CriterionScore) int {
	n := 0
	for _, score := range criteria {
		if score.Fallback {
			n++
		}
	}
	return n
}
