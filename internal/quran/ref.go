package quran

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Ref addresses a chapter, a single verse or a verse range in canonical numbering
type Ref struct {
	Chapter  int
	Verse    int // Zero for a whole chapter
	VerseEnd int // Zero unless the reference is a range
}

//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Chapter *chapterToken `@@`
	Verse   *verseRange   `( (":" | ".") @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterToken struct {
	Number *int    `  @Int`
	Name   *string `| @Ident`
}

//nolint:govet // participle grammar tags are not standard struct tags
type verseRange struct {
	Start int  `@Int`
	End   *int `( "-" @Int )?`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z][A-Za-z']*(?:-[A-Za-z']+)*`},
	{Name: "Punct", Pattern: `[:.\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseRef parses a verse reference.
// Supported formats:
//   - "2" (whole chapter)
//   - "2:255" or "2.255" (single verse)
//   - "2:1-7" (verse range)
//   - "Al-Baqarah:255" (chapter by transliterated name)
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Ref{}, fmt.Errorf("empty reference")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid reference %q: %w", s, err)
	}

	var ref Ref
	switch {
	case parsed.Chapter.Number != nil:
		ref.Chapter = *parsed.Chapter.Number
	case parsed.Chapter.Name != nil:
		c, ok := ByName(*parsed.Chapter.Name)
		if !ok {
			return Ref{}, fmt.Errorf("unknown chapter name %q", *parsed.Chapter.Name)
		}
		ref.Chapter = c.Number
	}
	chapter, ok := Lookup(ref.Chapter)
	if !ok {
		return Ref{}, fmt.Errorf("chapter %d out of range 1..%d", ref.Chapter, ChapterCount)
	}

	if parsed.Verse != nil {
		ref.Verse = parsed.Verse.Start
		if ref.Verse < 1 {
			return Ref{}, fmt.Errorf("verse must be positive in %q", s)
		}
		if parsed.Verse.End != nil {
			ref.VerseEnd = *parsed.Verse.End
			if ref.VerseEnd < ref.Verse {
				return Ref{}, fmt.Errorf("verse range %d-%d is reversed", ref.Verse, ref.VerseEnd)
			}
			// Canonical numbering adds at most the invocation to the standard count
			if ref.VerseEnd > chapter.Verses+1 {
				return Ref{}, fmt.Errorf("verse range end %d exceeds chapter %d (%d verses)", ref.VerseEnd, ref.Chapter, chapter.Verses+1)
			}
		}
	}

	return ref, nil
}

// IsChapter reports whether the reference names a whole chapter
func (r Ref) IsChapter() bool {
	return r.Verse == 0
}

// Last returns the final verse the reference covers
func (r Ref) Last() int {
	if r.VerseEnd > 0 {
		return r.VerseEnd
	}
	return r.Verse
}

// String formats the reference as "C", "C:V" or "C:V-E"
func (r Ref) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.Chapter))
	if r.Verse > 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(r.Verse))
		if r.VerseEnd > 0 {
			sb.WriteString("-")
			sb.WriteString(strconv.Itoa(r.VerseEnd))
		}
	}
	return sb.String()
}
