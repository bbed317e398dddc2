package models

type SectionKind string

const (
	SectionExperience     SectionKind = "experience"
	SectionEducation      SectionKind = "education"
	SectionSkills         SectionKind = "skills"
	SectionCertifications SectionKind = "certifications"
	SectionSummary        SectionKind = "summary"
	SectionOther          SectionKind = "other"
)

// SectionOrder is the fixed precedence used both for tie-breaking during
// segmentation and for deterministic formatting of prompts.
var SectionOrder = []SectionKind{
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionCertifications,
	SectionSummary,
	SectionOther,
}

// SegmentedCV is the extracted CV text split into labeled regions.
// A missing key means the section was not found. Segmentation never
// fabricates content: every section body is a slice of RawText.
type SegmentedCV struct {
	RawText  string
	Sections map[SectionKind]string
}

// Section returns the body for a kind and whether it was found.
func (c *SegmentedCV) Section(kind SectionKind) (string, bool) {
	body, ok := c.Sections[kind]
	return body, ok
}
