package align

import (
	"sort"

	"github.com/ppiankov/ssuula/internal/model"
)

// Table is a translation table re-keyed by canonical verse numbers.
// It is immutable after Align and safe for concurrent lookups.
type Table struct {
	policy    Policy
	raw       model.TranslationTable
	canonical map[int]map[int]string
}

// Align computes the canonical view of every chapter once
func Align(raw model.TranslationTable, policy Policy) *Table {
	canonical := make(map[int]map[int]string, len(raw))
	for chapter, verses := range raw {
		if !policy.Valid(chapter) {
			continue
		}
		aligned := make(map[int]string, len(verses))
		for v, text := range verses {
			aligned[policy.ToCanonical(chapter, v)] = text
		}
		canonical[chapter] = aligned
	}
	return &Table{policy: policy, raw: raw, canonical: canonical}
}

// Resolve returns the translation of canonical (chapter, verse). It never
// fails: unknown positions resolve to a not-available verse.
func (t *Table) Resolve(chapter, verse int) model.ResolvedVerse {
	rv := model.ResolvedVerse{Chapter: chapter, Verse: verse}
	if !t.policy.Valid(chapter) || verse < 1 {
		return rv
	}

	if verse == 1 && t.policy.Shifted(chapter) {
		rv.Text = t.policy.Invocation
		rv.Available = true
		rv.Invocation = true
		return rv
	}

	if text, ok := t.canonical[chapter][verse]; ok {
		rv.Text = text
		rv.Available = true
	}
	return rv
}

// ResolveChapter resolves every verse of the canonical verse list, in order
func (t *Table) ResolveChapter(chapter int, canonical []int) []model.ResolvedVerse {
	out := make([]model.ResolvedVerse, len(canonical))
	for i, v := range canonical {
		out[i] = t.Resolve(chapter, v)
	}
	return out
}

// Chapters returns the chapters with at least one translated verse
func (t *Table) Chapters() []int {
	out := make([]int, 0, len(t.canonical))
	for c := range t.canonical {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Raw returns the table in the document's own numbering
func (t *Table) Raw() model.TranslationTable {
	return t.raw
}

// Policy returns the policy the table was aligned with
func (t *Table) Policy() Policy {
	return t.policy
}

// Len returns the number of translated verses, excluding invocations
func (t *Table) Len() int {
	n := 0
	for _, verses := range t.canonical {
		n += len(verses)
	}
	return n
}
