package services

import (
	"strings"
	"testing"

	"cvscreener/internal/models"
)

const sampleCV = `Jane Doe
jane@example.com

Work Experience
Senior Backend Engineer at Acme, 2019-2024
Built payment APIs in Go.

Education
BSc Computer Science, State University

Skills
Go, PostgreSQL, Kubernetes
`

func TestSegmentAssignsHeadedSections(t *testing.T) {
	segmenter := NewSegmenterService()

	cv := segmenter.Segment(sampleCV)

	experience, ok := cv.Section(models.SectionExperience)
	if !ok {
		t.Fatal("expected experience section")
	}
	if !strings.Contains(experience, "Senior Backend Engineer") {
		t.Fatalf("unexpected experience body: %q", experience)
	}
	if strings.Contains(experience, "State University") {
		t.Fatal("experience section leaked into education body")
	}

	education, ok := cv.Section(models.SectionEducation)
	if !ok || !strings.Contains(education, "BSc Computer Science") {
		t.Fatalf("unexpected education body: %q", education)
	}

	skills, ok := cv.Section(models.SectionSkills)
	if !ok || !strings.Contains(skills, "PostgreSQL") {
		t.Fatalf("unexpected skills body: %q", skills)
	}

	other, ok := cv.Section(models.SectionOther)
	if !ok || !strings.Contains(other, "Jane Doe") {
		t.Fatalf("text before the first heading must land in Other, got %q", other)
	}
}

func TestSegmentNoHeadingsGoesToOther(t *testing.T) {
	segmenter := NewSegmenterService()

	text := "A plain narrative biography with no structure at all.\nIt goes on for a while."
	cv := segmenter.Segment(text)

	if len(cv.Sections) != 1 {
		t.Fatalf("expected only the Other section, got %v", cv.Sections)
	}
	other, ok := cv.Section(models.SectionOther)
	if !ok || other != text {
		t.Fatalf("unexpected Other body: %q", other)
	}
}

func TestSegmentIdempotentOnOther(t *testing.T) {
	segmenter := NewSegmenterService()

	first := segmenter.Segment("No headings here.\nJust prose about a career.")
	other, _ := first.Section(models.SectionOther)

	second := segmenter.Segment(other)
	reOther, ok := second.Section(models.SectionOther)
	if !ok || reOther != other {
		t.Fatalf("re-segmenting Other changed the partition: %q vs %q", other, reOther)
	}
	if len(second.Sections) != 1 {
		t.Fatalf("expected a single section, got %v", second.Sections)
	}
}

func TestMatchHeading(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		kind  models.SectionKind
		match bool
	}{
		{"plain", "Experience", models.SectionExperience, true},
		{"title case with colon", "Work History:", models.SectionExperience, true},
		{"upper case", "EDUCATION", models.SectionEducation, true},
		{"decorated", "--- Technical Skills ---", models.SectionSkills, true},
		{"certifications", "Certifications & Awards", models.SectionCertifications, true},
		{"summary", "Professional Summary", models.SectionSummary, true},
		{"longer synonym wins", "Professional Experience", models.SectionExperience, true},
		{"word boundary", "Experienced hiker and climber", "", false},
		{"long body line", "I have ten years of experience building systems for large retail companies", "", false},
		{"blank", "   ", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			kind, ok := matchHeading(tc.line)
			if ok != tc.match {
				t.Fatalf("match=%v, expected %v", ok, tc.match)
			}
			if ok && kind != tc.kind {
				t.Fatalf("kind=%s, expected %s", kind, tc.kind)
			}
		})
	}
}

func TestMatchHeadingPrecedence(t *testing.T) {
	// "Experience and Skills" matches both vocabularies with synonyms of
	// equal length ("experience" vs "skills" differ, longest wins).
	kind, ok := matchHeading("Experience and Skills")
	if !ok || kind != models.SectionExperience {
		t.Fatalf("expected longest-then-precedence resolution to Experience, got %s", kind)
	}
}
