package align

import "github.com/ppiankov/ssuula/internal/model"

// Convention names how a document numbers a chapter relative to the canonical stream
type Convention string

const (
	// ConventionShifted documents omit the invocation, so raw verse 1 is canonical verse 2
	ConventionShifted Convention = "shifted"
	// ConventionUnshifted documents number verses exactly as the canonical stream does
	ConventionUnshifted Convention = "unshifted"
	// ConventionUnknown means the verse count matches neither convention
	ConventionUnknown Convention = "unknown"
)

// maxVerse returns the highest raw verse number of a chapter
func maxVerse(raw model.TranslationTable, chapter int) int {
	highest := 0
	for v := range raw[chapter] {
		if v > highest {
			highest = v
		}
	}
	return highest
}

// DetectConvention classifies a chapter from its highest raw verse number.
// standardCount is the chapter's verse count without the invocation. The
// result is only meaningful for chapters whose standard count excludes the
// invocation, which rules out chapter 1.
func DetectConvention(raw model.TranslationTable, chapter, standardCount int) Convention {
	switch maxVerse(raw, chapter) {
	case standardCount:
		return ConventionShifted
	case standardCount + 1:
		return ConventionUnshifted
	default:
		return ConventionUnknown
	}
}

// Check compares the detected convention of a probe chapter with the policy.
// A known convention that contradicts the policy returns *model.ConventionError.
// An unknown convention, as in partial translations, is recorded but not an error.
// Chapters the policy leaves unshifted carry no separate invocation verse, so
// their count cannot tell the conventions apart and never fails the check.
func (p Policy) Check(raw model.TranslationTable, chapter, standardCount int) (model.ConventionCheck, error) {
	expected := ConventionUnshifted
	var detected Convention
	switch {
	case p.Shifted(chapter):
		expected = ConventionShifted
		detected = DetectConvention(raw, chapter, standardCount)
	case maxVerse(raw, chapter) == standardCount:
		detected = ConventionUnshifted
	default:
		detected = ConventionUnknown
	}

	check := model.ConventionCheck{
		Chapter:   chapter,
		Expected:  string(expected),
		Detected:  string(detected),
		RawCount:  maxVerse(raw, chapter),
		Canonical: standardCount,
		OK:        detected == expected || detected == ConventionUnknown,
	}
	if check.OK {
		return check, nil
	}
	return check, &model.ConventionError{
		Chapter:   chapter,
		Expected:  check.Expected,
		Detected:  check.Detected,
		RawCount:  check.RawCount,
		Canonical: standardCount,
	}
}
