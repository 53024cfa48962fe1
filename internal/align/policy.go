// Package align reconciles the translation document's verse numbering with
// the canonical verse stream, where most chapters open with the invocation
// as verse 1.
package align

import (
	"sort"

	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/quran"
)

// Policy decides per chapter whether raw verse numbers are shifted by one
type Policy struct {
	Unshifted  map[int]bool // Chapters resolved without a shift
	Invocation string       // Text of canonical verse 1 in shifted chapters
	MaxChapter int
}

// NewPolicy builds a policy from configuration values
func NewPolicy(unshifted []int, invocation string) Policy {
	set := make(map[int]bool, len(unshifted))
	for _, c := range unshifted {
		set[c] = true
	}
	if invocation == "" {
		invocation = model.DefaultInvocation
	}
	return Policy{
		Unshifted:  set,
		Invocation: invocation,
		MaxChapter: quran.ChapterCount,
	}
}

// DefaultPolicy leaves chapters 1 and 9 unshifted
func DefaultPolicy() Policy {
	return NewPolicy([]int{1, 9}, model.DefaultInvocation)
}

// Valid reports whether chapter is addressable
func (p Policy) Valid(chapter int) bool {
	return chapter >= 1 && chapter <= p.MaxChapter
}

// Shifted reports whether canonical verse 1 of chapter is the invocation and
// canonical verse K maps to raw verse K-1
func (p Policy) Shifted(chapter int) bool {
	return p.Valid(chapter) && !p.Unshifted[chapter]
}

// ToRaw maps a canonical verse number to the raw document's numbering.
// ok is false for the invocation and for verses below 1.
func (p Policy) ToRaw(chapter, verse int) (raw int, ok bool) {
	if verse < 1 {
		return 0, false
	}
	if !p.Shifted(chapter) {
		return verse, true
	}
	if verse == 1 {
		return 0, false
	}
	return verse - 1, true
}

// ToCanonical maps a raw document verse number to canonical numbering
func (p Policy) ToCanonical(chapter, raw int) int {
	if p.Shifted(chapter) {
		return raw + 1
	}
	return raw
}

// UnshiftedChapters lists the unshifted chapters in ascending order
func (p Policy) UnshiftedChapters() []int {
	out := make([]int, 0, len(p.Unshifted))
	for c, ok := range p.Unshifted {
		if ok {
			out = append(out, c)
		}
	}
	sort.Ints(out)
	return out
}
