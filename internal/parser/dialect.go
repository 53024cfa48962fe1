package parser

import (
	"fmt"
	"strings"
)

// GrammarVersion identifies the grammar used to read translation documents.
// Bump it whenever tokenizing or building rules change, so cached tables built
// by an older grammar are never reused.
const GrammarVersion = 1

// AutoDialect selects the best-scoring builtin dialect per document
const AutoDialect = "auto"

// Dialect is one vocabulary of the translation document grammar
type Dialect struct {
	Name         string
	HeaderLabels []string // Words that introduce a chapter
	VerseLabels  []string // Words that introduce a verse
	NamedHeaders bool     // Headers may carry a transliterated chapter name instead of a numeral
	BareNumerals bool     // "N." at line start marks a verse
	LeadingVerse bool     // Text before the first verse marker of a chapter is verse 1
}

var builtinDialects = []Dialect{
	{
		Name:         "enumerated",
		HeaderLabels: []string{"Surah", "Sura", "Chapter"},
		VerseLabels:  []string{"Ayah", "Aya", "Verse"},
	},
	{
		Name:         "numbered",
		HeaderLabels: []string{"Surah", "Sura", "Chapter"},
		VerseLabels:  []string{"Ayah", "Aya", "Verse"},
		BareNumerals: true,
		LeadingVerse: true,
	},
	{
		Name:         "ssuula",
		HeaderLabels: []string{"Ssuula", "Suula", "Surat", "Surah"},
		VerseLabels:  []string{"Aaya", "Ayah", "Aya"},
		NamedHeaders: true,
		BareNumerals: true,
		LeadingVerse: true,
	},
}

// Dialects returns the builtin dialects in auto-detection order
func Dialects() []Dialect {
	out := make([]Dialect, len(builtinDialects))
	copy(out, builtinDialects)
	return out
}

// DialectByName finds a builtin dialect
func DialectByName(name string) (Dialect, error) {
	for _, d := range builtinDialects {
		if strings.EqualFold(d.Name, name) {
			return d, nil
		}
	}
	return Dialect{}, fmt.Errorf("unknown dialect %q", name)
}

func (d Dialect) validate() error {
	if d.Name == "" {
		return fmt.Errorf("dialect has no name")
	}
	if len(d.HeaderLabels) == 0 {
		return fmt.Errorf("dialect %s: no header labels", d.Name)
	}
	if len(d.VerseLabels) == 0 && !d.BareNumerals {
		return fmt.Errorf("dialect %s: no verse labels and bare numerals disabled", d.Name)
	}
	return nil
}
