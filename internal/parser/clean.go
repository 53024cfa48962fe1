package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	decorativeLine = regexp.MustCompile(`^[=\-_*~#•·\s]+$`)
	runOnDashes    = regexp.MustCompile(`[-–—](?:\s*[-–—])+\s*$`)
	strongStars    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	strongUnders   = regexp.MustCompile(`__(.+?)__`)
	emStars        = regexp.MustCompile(`\*([^*\s](?:[^*]*[^*\s])?)\*`)
	emUnders       = regexp.MustCompile(`(^|[^\p{L}\p{N}])_([^_\s](?:[^_]*[^_\s])?)_`)
	leftoverMarks  = regexp.MustCompile(`\*{2,}|_{2,}`)
)

// Clean normalises one verse's raw text: decorative separator lines are
// dropped, emphasis markup and trailing run-on dashes are stripped, and all
// whitespace collapses to single spaces. Stray markup characters
// standing alone are removed.
func Clean(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if isDecorative(line) {
			continue
		}
		kept = append(kept, runOnDashes.ReplaceAllString(line, ""))
	}

	text := strings.Join(kept, " ")
	text = strongStars.ReplaceAllString(text, "$1")
	text = strongUnders.ReplaceAllString(text, "$1")
	text = emStars.ReplaceAllString(text, "$1")
	text = emUnders.ReplaceAllString(text, "$1$2")
	text = leftoverMarks.ReplaceAllString(text, "")

	fields := strings.Fields(text)
	kept = fields[:0]
	for _, f := range fields {
		if strings.Trim(f, "*_#") != "" {
			kept = append(kept, f)
		}
	}
	text = strings.Join(kept, " ")
	return strings.TrimSpace(runOnDashes.ReplaceAllString(text, ""))
}

// isDecorative reports a separator line such as "=====" or "* * *"
func isDecorative(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !decorativeLine.MatchString(trimmed) {
		return false
	}
	return utf8.RuneCountInString(strings.Join(strings.Fields(trimmed), "")) >= 3
}
