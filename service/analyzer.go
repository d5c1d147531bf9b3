package service

import (
	"regexp"
	"strings"

	"github.com/docqa/docqa-be/types"
)

// Line classification patterns. They are heuristics tuned for text pulled
// out of PDFs, where visual layout arrives flattened into plain lines.
var (
	allCapsRe       = regexp.MustCompile(`^[A-Z][A-Z0-9 .,&'-]*$`)
	numberedHeadRe  = regexp.MustCompile(`^\d+\.\s+[A-Z]`)
	trailingColonRe = regexp.MustCompile(`[A-Z][a-z]*:$`)
	listMarkerRe    = regexp.MustCompile(`^(\x{2022}|-|\*|\d+[.)]|[a-z][.)])\s+`)
	bareNumberRe    = regexp.MustCompile(`^\d+[.,]?\d*$`)
	columnGapRe     = regexp.MustCompile(`\s{2,}`)
)

// documentTypeRules maps keyword pairs to a coarse document label, in
// priority order. A document matches a rule when either keyword occurs.
var documentTypeRules = []struct {
	label    string
	keywords [2]string
}{
	{"Contract/Agreement", [2]string{"contract", "agreement"}},
	{"Resume/CV", [2]string{"resume", "curriculum vitae"}},
	{"Invoice/Bill", [2]string{"invoice", "bill"}},
	{"Report/Analysis", [2]string{"report", "analysis"}},
	{"Manual/Guide", [2]string{"manual", "guide"}},
}

// DefaultDocumentType is returned when no keyword rule matches.
const DefaultDocumentType = "General Document"

// AnalyzeStructure classifies the non-empty lines of text into headings,
// paragraphs, list items and table-like rows. The four lists are
// independent; a line can land in more than one when it fits several
// shapes.
func AnalyzeStructure(text string) types.DocumentStructure {
	structure := types.DocumentStructure{
		Headings:   []string{},
		Paragraphs: []string{},
		Lists:      []string{},
		Tables:     []string{},
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if isHeading(line) {
			structure.Headings = append(structure.Headings, line)
		}
		if isParagraph(line) {
			structure.Paragraphs = append(structure.Paragraphs, line)
		}
		if listMarkerRe.MatchString(line) {
			structure.Lists = append(structure.Lists, line)
		}
		if isTableRow(line) {
			structure.Tables = append(structure.Tables, line)
		}
	}

	return structure
}

func isHeading(line string) bool {
	if len(line) >= 100 {
		return false
	}
	return allCapsRe.MatchString(line) ||
		numberedHeadRe.MatchString(line) ||
		trailingColonRe.MatchString(line)
}

func isParagraph(line string) bool {
	return len(line) > 100 &&
		strings.Contains(line, ".") &&
		!bareNumberRe.MatchString(line)
}

func isTableRow(line string) bool {
	if len(line) <= 50 || !columnGapRe.MatchString(line) {
		return false
	}
	return len(strings.Fields(line)) >= 3
}

// AnalyzeContent derives a coarse summary from the text and its structure:
// a document type label, key topics, important sections and a readability
// score in [0,100].
func AnalyzeContent(text string, structure types.DocumentStructure) types.ContentAnalysis {
	return types.ContentAnalysis{
		DocumentType:      classifyDocumentType(text),
		KeyTopics:         keyTopics(text, structure),
		ImportantSections: importantSections(structure),
		ReadabilityScore:  readabilityScore(text),
	}
}

func classifyDocumentType(text string) string {
	lower := strings.ToLower(text)
	for _, rule := range documentTypeRules {
		if strings.Contains(lower, rule.keywords[0]) || strings.Contains(lower, rule.keywords[1]) {
			return rule.label
		}
	}
	return DefaultDocumentType
}

// keyTopics collects the first ten headings plus up to five mid-length
// lines, with blanks and duplicates dropped.
func keyTopics(text string, structure types.DocumentStructure) []string {
	topics := []string{}
	seen := map[string]bool{}

	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			topics = append(topics, s)
		}
	}

	for i, h := range structure.Headings {
		if i >= 10 {
			break
		}
		add(h)
	}

	midLength := 0
	for _, raw := range strings.Split(text, "\n") {
		if midLength >= 5 {
			break
		}
		line := strings.TrimSpace(raw)
		if len(line) >= 20 && len(line) <= 100 && !seen[line] {
			add(line)
			midLength++
		}
	}

	return topics
}

func importantSections(structure types.DocumentStructure) []string {
	sections := []string{}
	for i, h := range structure.Headings {
		if i >= 5 {
			break
		}
		sections = append(sections, h)
	}
	for i, p := range structure.Paragraphs {
		if i >= 3 {
			break
		}
		sections = append(sections, p)
	}
	return sections
}

// readabilityScore maps average sentence length onto [0,100]: ten words
// per sentence scores 100 and every extra word costs two points.
func readabilityScore(text string) float64 {
	words := len(strings.Fields(text))
	sentences := 0
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}

	avg := float64(words) / float64(sentences)
	score := 100 - (avg-10)*2
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
