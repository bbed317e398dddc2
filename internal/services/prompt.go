package services

import (
	"fmt"
	"strings"

	"cvscreener/internal/models"
)

// PromptBuilder assembles the five criterion-specific evaluation
// requests sent to the scoring oracle. Building is deterministic: the
// same job description and segmented CV always produce byte-identical
// prompts, so runs are reproducible and cacheable.
type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// criterionRubrics describe what the 0-100 scale means per criterion.
var criterionRubrics = map[models.Criterion]string{
	models.CriterionExperience: `Evaluate EXPERIENCE: relevance, career trajectory, and tenure.
Assess growth via title changes (Junior -> Senior) or role expansion (increased scope, budget, mentorship) if the title is static for more than 2 years.
Deduct for unjustified gaps longer than 6 months or excessive job hopping.`,

	models.CriterionImpact: `Evaluate IMPACT: quantifiable results versus generic duties.
Prioritize achievements carrying metrics (%, $, users, latency) over passive responsibility statements.
Score 0 if the CV contains no metrics at all.`,

	models.CriterionSkills: `Evaluate SKILLS: hard and soft skills matched against the job description.
Only count skills validated by context: a listed skill must appear exercised somewhere in the work history.`,

	models.CriterionEducation: `Evaluate EDUCATION: degree relevance to the role.
Allow recognized industry equivalents and substantial self-taught backgrounds backed by shipped work.`,

	models.CriterionCertifications: `Evaluate CERTIFICATIONS AND EXTRAS: certifications, awards, publications, languages.
Weight certifications that are current and relevant to the role above generic ones.`,
}

// BuildPrompts returns one request per criterion in the fixed
// evaluation order.
func (pb *PromptBuilder) BuildPrompts(jobDescription string, cv models.SegmentedCV) []models.EvaluationRequest {
	requests := make([]models.EvaluationRequest, 0, len(models.Criteria))
	cvBlock := formatCV(cv)

	for _, criterion := range models.Criteria {
		requests = append(requests, models.EvaluationRequest{
			Criterion: criterion,
			Prompt:    pb.buildPrompt(criterion, jobDescription, cvBlock),
		})
	}

	return requests
}

func (pb *PromptBuilder) buildPrompt(criterion models.Criterion, jobDescription, cvBlock string) string {
	return fmt.Sprintf(`Act as an expert HR AI specialized in CV analysis.

JOB DESCRIPTION:
%s

CANDIDATE CV:
%s

Analyze the CV against the job description for a single criterion.

Rules:
1. Focus ONLY on professional qualifications and competencies. IGNORE availability, location, salary, and notice period.
2. %s
3. Score on a precise 0-100 scale. Use specific integers (e.g. 26, 51, 87) based on exact merit; do NOT default to round numbers.
4. Do not mention formatting or visual design of the CV.

Return ONLY the following JSON object, no additional text:
{
    "score": <0-100 integer>,
    "justification": "<2-3 sentence analysis supporting the score>"
}`, jobDescription, cvBlock, criterionRubrics[criterion])
}

// formatCV renders the segmented CV deterministically: the full text
// first, then the list of sections the segmenter recognized. Section
// labels are emitted in the fixed precedence order.
func formatCV(cv models.SegmentedCV) string {
	var found []string
	for _, kind := range models.SectionOrder {
		if kind == models.SectionOther {
			continue
		}
		if _, ok := cv.Sections[kind]; ok {
			found = append(found, string(kind))
		}
	}

	text := strings.TrimSpace(cv.RawText)
	if len(found) == 0 {
		return text
	}

	return fmt.Sprintf("%s\n\n[Detected sections: %s]", text, strings.Join(found, ", "))
}
