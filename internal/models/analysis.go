package models

type Criterion string

const (
	CriterionExperience     Criterion = "experience"
	CriterionImpact         Criterion = "impact"
	CriterionSkills         Criterion = "skills"
	CriterionEducation      Criterion = "education"
	CriterionCertifications Criterion = "certifications"
)

// Criteria is the fixed evaluation order. Prompts are built and scores
// are aggregated in this order.
var Criteria = []Criterion{
	CriterionExperience,
	CriterionImpact,
	CriterionSkills,
	CriterionEducation,
	CriterionCertifications,
}

// Weights sum to 1.0. Changing them changes every final score, so they
// are fixed at compile time rather than configurable.
var Weights = map[Criterion]float64{
	CriterionExperience:     0.30,
	CriterionImpact:         0.20,
	CriterionSkills:         0.20,
	CriterionEducation:      0.20,
	CriterionCertifications: 0.10,
}

// EvaluationRequest is one criterion-specific instruction payload for
// the scoring oracle. Building it is deterministic: identical inputs
// produce a byte-identical Prompt.
type EvaluationRequest struct {
	Criterion Criterion
	Prompt    string
}

// CriterionScore is the oracle's verdict for one criterion. Fallback is
// true when the oracle could not produce a usable score after the retry
// and reparse budgets were spent; the raw score is then 0 and the
// justification records why.
type CriterionScore struct {
	Criterion     Criterion `json:"criterion"`
	RawScore      int       `json:"raw_score"`
	Justification string    `json:"justification"`
	Fallback      bool      `json:"fallback,omitempty"`
}

type Recommendation string

const (
	StronglyRecommend Recommendation = "STRONGLY RECOMMEND"
	Recommend         Recommendation = "RECOMMEND"
	Consider          Recommendation = "CONSIDER"
	Reject            Recommendation = "REJECT"
)

// AnalysisResult is the final verdict for one document. It is immutable
// after creation; rerunning an analysis produces a new result. Either
// the scored fields are fully populated or Failed is true with a
// human-readable reason, never anything in between.
type AnalysisResult struct {
	FileName       string           `json:"file_name"`
	FinalScore     float64          `json:"final_score"`
	Recommendation Recommendation   `json:"recommendation"`
	Criteria       []CriterionScore `json:"criteria"`
	Strengths      []string         `json:"strengths"`
	Weaknesses     []string         `json:"weaknesses"`
	Summary        string           `json:"summary"`
	Failed         bool             `json:"failed"`
	FailureReason  string           `json:"failure_reason,omitempty"`
}
