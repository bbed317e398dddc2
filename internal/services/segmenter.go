package services

import (
	"strings"
	"unicode"

	"cvscreener/internal/models"
)

// SegmenterService splits extracted CV text into labeled regions by
// recognizing heading lines. It degrades instead of failing: text with
// no recognizable headings lands whole in the Other section.
type SegmenterService interface {
	Segment(text string) models.SegmentedCV
}

type segmenterService struct{}

func NewSegmenterService() SegmenterService {
	return &segmenterService{}
}

// sectionVocabulary is evaluated in precedence order: when a heading
// line matches synonyms of two kinds with equal length, the earlier
// entry wins. Longer synonym matches always beat shorter ones.
var sectionVocabulary = []struct {
	kind     models.SectionKind
	synonyms []string
}{
	{models.SectionExperience, []string{
		"professional experience", "work experience", "work history",
		"employment history", "employment", "experience", "career history",
		"professional background",
	}},
	{models.SectionEducation, []string{
		"education", "academic background", "qualifications",
		"academic history", "educational background",
	}},
	{models.SectionSkills, []string{
		"technical skills", "skills", "core competencies", "competencies",
		"expertise", "technologies", "abilities",
	}},
	{models.SectionCertifications, []string{
		"certifications", "certificates", "licenses", "courses",
		"professional development", "awards",
	}},
	{models.SectionSummary, []string{
		"professional summary", "summary", "profile", "objective",
		"about me", "personal statement",
	}},
}

// Heading lines in human-authored CVs are short. Anything longer is
// treated as body text even if it mentions a section word.
const maxHeadingLen = 48

func (s *segmenterService) Segment(text string) models.SegmentedCV {
	cv := models.SegmentedCV{
		RawText:  text,
		Sections: make(map[models.SectionKind]string),
	}

	current := models.SectionOther
	bodies := make(map[models.SectionKind][]string)

	for _, line := range strings.Split(text, "\n") {
		if kind, ok := matchHeading(line); ok {
			current = kind
			continue
		}
		bodies[current] = append(bodies[current], line)
	}

	for kind, lines := range bodies {
		body := strings.TrimSpace(strings.Join(lines, "\n"))
		if body == "" {
			continue
		}
		cv.Sections[kind] = body
	}

	return cv
}

// matchHeading reports whether a line is a recognized section heading.
// Ties between kinds are resolved by the longest matching synonym, then
// by vocabulary precedence.
func matchHeading(line string) (models.SectionKind, bool) {
	normalized := normalizeHeading(line)
	if normalized == "" || len(normalized) > maxHeadingLen {
		return "", false
	}

	var (
		bestKind models.SectionKind
		bestLen  int
		found    bool
	)

	for _, entry := range sectionVocabulary {
		for _, synonym := range entry.synonyms {
			if !containsWord(normalized, synonym) {
				continue
			}
			if len(synonym) > bestLen {
				bestKind = entry.kind
				bestLen = len(synonym)
				found = true
			}
		}
	}

	return bestKind, found
}

// normalizeHeading lowercases the line and strips decoration commonly
// attached to headings (colons, dashes, bullet characters).
func normalizeHeading(line string) string {
	line = strings.ToLower(strings.TrimSpace(line))
	line = strings.Trim(line, ":-–—•*# \t")
	return strings.Join(strings.Fields(line), " ")
}

// containsWord reports whether phrase occurs in s on word boundaries,
// so "experience" matches "work experience" but not "experienced".
func containsWord(s, phrase string) bool {
	idx := 0
	for {
		pos := strings.Index(s[idx:], phrase)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(phrase)

		beforeOK := start == 0 || !isWordRune(rune(s[start-1]))
		afterOK := end == len(s) || !isWordRune(rune(s[end]))
		if beforeOK && afterOK {
			return true
		}

		idx = start + 1
		if idx >= len(s) {
			return false
		}
	}
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
