package quran

import (
	"context"
	"fmt"
)

// VerseSource provides the canonical ordered verse numbers of a chapter.
// Implementations backed by a remote API must honour ctx.
type VerseSource interface {
	Verses(ctx context.Context, chapter int) ([]int, error)
}

// StaticSource serves verse lists from the built-in chapter table
type StaticSource struct {
	withInvocation func(chapter int) bool
}

// NewStaticSource creates a source whose stream counts the invocation as verse 1
// for every chapter where withInvocation reports true. A nil func means no
// chapter carries the invocation.
func NewStaticSource(withInvocation func(chapter int) bool) *StaticSource {
	if withInvocation == nil {
		withInvocation = func(int) bool { return false }
	}
	return &StaticSource{withInvocation: withInvocation}
}

// Count returns the number of verses the canonical stream lists for a chapter
func (s *StaticSource) Count(chapter int) (int, error) {
	c, ok := Lookup(chapter)
	if !ok {
		return 0, fmt.Errorf("chapter %d out of range 1..%d", chapter, ChapterCount)
	}
	if s.withInvocation(chapter) {
		return c.Verses + 1, nil
	}
	return c.Verses, nil
}

// Verses returns 1..Count for the chapter
func (s *StaticSource) Verses(ctx context.Context, chapter int) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, err := s.Count(chapter)
	if err != nil {
		return nil, err
	}
	verses := make([]int, n)
	for i := range verses {
		verses[i] = i + 1
	}
	return verses, nil
}
