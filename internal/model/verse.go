package model

import (
	"sort"
	"strings"
)

// NotAvailableText is shown in place of a translation that has no entry yet
const NotAvailableText = "[Luganda translation not yet available]"

// ChapterSegment is the slice of the source document attributed to one chapter.
// Chapter 0 holds text that belongs to no chapter (preamble, unparseable headers).
type ChapterSegment struct {
	Chapter int    `json:"chapter"`
	Header  string `json:"header,omitempty"` // Header token as it appeared in the document
	Text    string `json:"text"`
	Offset  int    `json:"offset"` // Byte offset of the segment text in the document
}

// VerseEntry is one translated verse keyed by the source document's own numbering
type VerseEntry struct {
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
}

// TranslationTable maps chapter -> verse -> translation text.
// It is built once and then only read.
type TranslationTable map[int]map[int]string

// Add stores text under (chapter, verse). A key that already exists gets the new
// text appended with a single space, so split markers never overwrite each other.
func (t TranslationTable) Add(chapter, verse int, text string) {
	if text == "" {
		return
	}
	verses, ok := t[chapter]
	if !ok {
		verses = make(map[int]string)
		t[chapter] = verses
	}
	if existing, ok := verses[verse]; ok {
		verses[verse] = existing + " " + text
		return
	}
	verses[verse] = text
}

// Merge appends every entry of other into t, chapter by chapter in verse order
func (t TranslationTable) Merge(other TranslationTable) {
	for _, chapter := range other.Chapters() {
		for _, verse := range other.Verses(chapter) {
			t.Add(chapter, verse, other[chapter][verse])
		}
	}
}

// Lookup returns the text stored for (chapter, verse)
func (t TranslationTable) Lookup(chapter, verse int) (string, bool) {
	verses, ok := t[chapter]
	if !ok {
		return "", false
	}
	text, ok := verses[verse]
	return text, ok
}

// Chapters returns the chapter numbers present in the table, ascending
func (t TranslationTable) Chapters() []int {
	chapters := make([]int, 0, len(t))
	for c := range t {
		chapters = append(chapters, c)
	}
	sort.Ints(chapters)
	return chapters
}

// Verses returns the verse numbers present for a chapter, ascending
func (t TranslationTable) Verses(chapter int) []int {
	verses := make([]int, 0, len(t[chapter]))
	for v := range t[chapter] {
		verses = append(verses, v)
	}
	sort.Ints(verses)
	return verses
}

// Len returns the total number of verse entries
func (t TranslationTable) Len() int {
	n := 0
	for _, verses := range t {
		n += len(verses)
	}
	return n
}

// Entries flattens the table in chapter/verse order
func (t TranslationTable) Entries() []VerseEntry {
	entries := make([]VerseEntry, 0, t.Len())
	for _, c := range t.Chapters() {
		for _, v := range t.Verses(c) {
			entries = append(entries, VerseEntry{Chapter: c, Verse: v, Text: t[c][v]})
		}
	}
	return entries
}

// ResolvedVerse is a verse addressed by canonical numbering together with the
// best translation available for it
type ResolvedVerse struct {
	Chapter    int    `json:"chapter"`
	Verse      int    `json:"verse"`
	Text       string `json:"-"`
	Available  bool   `json:"available"`
	Invocation bool   `json:"invocation,omitempty"` // Verse is the fixed opening invocation
}

// TextOrNil returns nil when no translation is available, for `text: null` rendering
func (r ResolvedVerse) TextOrNil() *string {
	if !r.Available {
		return nil
	}
	text := r.Text
	return &text
}

// DisplayText returns the translation or the not-available marker
func (r ResolvedVerse) DisplayText() string {
	if !r.Available {
		return NotAvailableText
	}
	return r.Text
}

// AnomalyKind classifies a locally recovered parse problem
type AnomalyKind string

const (
	AnomalyHeaderNumeral AnomalyKind = "header_numeral" // Chapter header without a usable numeral or name
	AnomalyHeaderRange   AnomalyKind = "header_range"   // Chapter numeral outside 1..114
	AnomalyVerseNumeral  AnomalyKind = "verse_numeral"  // Verse label without a usable numeral
	AnomalyDroppedText   AnomalyKind = "dropped_text"   // Text attributed to no chapter or verse
)

// Anomaly records one skipped unit of the source document
type Anomaly struct {
	Kind    AnomalyKind `json:"kind" yaml:"kind"`
	Chapter int         `json:"chapter,omitempty" yaml:"chapter,omitempty"`
	Offset  int         `json:"offset" yaml:"offset"`
	Excerpt string      `json:"excerpt" yaml:"excerpt"`
}

// Excerpt shortens s to at most n runes on a single line
func Excerpt(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
