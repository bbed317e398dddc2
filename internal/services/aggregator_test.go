package services

import (
	"strings"
	"testing"

	"cvscreener/internal/models"
)

func scores(experience, impact, skills, education, certs int) []models.CriterionScore {
	return []models.CriterionScore{
		{Criterion: models.CriterionExperience, RawScore: experience, Justification: "exp"},
		{Criterion: models.CriterionImpact, RawScore: impact, Justification: "imp"},
		{Criterion: models.CriterionSkills, RawScore: skills, Justification: "ski"},
		{Criterion: models.CriterionEducation, RawScore: education, Justification: "edu"},
		{Criterion: models.CriterionCertifications, RawScore: certs, Justification: "cert"},
	}
}

func TestAggregateWeightedScore(t *testing.T) {
	aggregator := NewAggregatorService()

	// 85*0.30 + 75*0.20 + 80*0.20 + 70*0.20 + 60*0.10 = 76.5
	result, err := aggregator.Aggregate("cv.pdf", scores(85, 75, 80, 70, 60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalScore != 76.5 {
		t.Fatalf("expected final score 76.5, got %v", result.FinalScore)
	}
	if result.Recommendation != models.Recommend {
		t.Fatalf("expected RECOMMEND, got %s", result.Recommendation)
	}
	if result.Failed {
		t.Fatal("successful aggregation must not be marked failed")
	}
	if len(result.Criteria) != 5 {
		t.Fatalf("expected 5 ordered criteria, got %d", len(result.Criteria))
	}
	for i, criterion := range models.Criteria {
		if result.Criteria[i].Criterion != criterion {
			t.Fatalf("criteria order broken at %d: %s", i, result.Criteria[i].Criterion)
		}
	}
}

func TestAggregateScoreStaysInRange(t *testing.T) {
	aggregator := NewAggregatorService()

	low, err := aggregator.Aggregate("cv.pdf", scores(0, 0, 0, 0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if low.FinalScore != 0 || low.Recommendation != models.Reject {
		t.Fatalf("expected 0/REJECT, got %v/%s", low.FinalScore, low.Recommendation)
	}

	high, err := aggregator.Aggregate("cv.pdf", scores(100, 100, 100, 100, 100))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if high.FinalScore != 100 || high.Recommendation != models.StronglyRecommend {
		t.Fatalf("expected 100/STRONGLY RECOMMEND, got %v/%s", high.FinalScore, high.Recommendation)
	}
}

func TestRecommendationTiersPartition(t *testing.T) {
	cases := []struct {
		score    float64
		expected models.Recommendation
	}{
		{100, models.StronglyRecommend},
		{80, models.StronglyRecommend},
		{79.99, models.Recommend},
		{60, models.Recommend},
		{59.99, models.Consider},
		{40, models.Consider},
		{39.99, models.Reject},
		{0, models.Reject},
	}

	for _, tc := range cases {
		if got := RecommendationFor(tc.score); got != tc.expected {
			t.Fatalf("score %v: expected %s, got %s", tc.score, tc.expected, got)
		}
	}
}

func TestRoundHalfEven(t *testing.T) {
	cases := []struct {
		in  float64
		out float64
	}{
		{76.505, 76.5},
		{76.515, 76.52},
		{12.125, 12.12},
		{12.135, 12.14},
		{76.4999, 76.5},
	}

	for _, tc := range cases {
		if got := roundHalfEven(tc.in); got != tc.out {
			t.Fatalf("roundHalfEven(%v): expected %v, got %v", tc.in, tc.out, got)
		}
	}
}

func TestAggregateFallbackCountsAtFaceValue(t *testing.T) {
	aggregator := NewAggregatorService()

	criteria := scores(85, 75, 80, 70, 60)
	criteria[1] = models.CriterionScore{
		Criterion:     models.CriterionImpact,
		RawScore:      0,
		Justification: "Criterion could not be scored by the oracle.",
		Fallback:      true,
	}

	// Impact drops from 75 to 0: 76.5 - 15.0 = 61.5.
	result, err := aggregator.Aggregate("cv.pdf", criteria)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalScore != 61.5 {
		t.Fatalf("expected degraded final score 61.5, got %v", result.FinalScore)
	}
	if result.Failed {
		t.Fatal("a degraded result must still have failed=false")
	}
	if !strings.Contains(result.Summary, "defaulted to 0") {
		t.Fatalf("summary should mention the fallback, got %q", result.Summary)
	}

	foundWeakness := false
	for _, w := range result.Weaknesses {
		if strings.Contains(w, "Impact") {
			foundWeakness = true
		}
	}
	if !foundWeakness {
		t.Fatal("fallback criterion should surface as a weakness")
	}
}

func TestAggregateRejectsBadInput(t *testing.T) {
	aggregator := NewAggregatorService()

	if _, err := aggregator.Aggregate("cv.pdf", scores(1, 2, 3, 4, 5)[:4]); err == nil {
		t.Fatal("expected error for missing criterion")
	}

	dup := scores(1, 2, 3, 4, 5)
	dup[4].Criterion = models.CriterionExperience
	if _, err := aggregator.Aggregate("cv.pdf", dup); err == nil {
		t.Fatal("expected error for duplicate criterion")
	}
}
