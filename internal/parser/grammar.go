package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

type kind int

const (
	kindEOF kind = iota
	kindBOM
	kindNewline
	kindSpace
	kindHeader
	kindVerse
	kindNumber
	kindWord
	kindPunct
)

// token is a lexed unit with absolute byte offsets into the document
type token struct {
	kind  kind
	text  string
	start int
	end   int
}

// grammar is a dialect compiled into a participle lexer
type grammar struct {
	dialect Dialect
	def     *lexer.StatefulDefinition
	kinds   map[lexer.TokenType]kind
}

func compile(d Dialect) (*grammar, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	rules := []lexer.SimpleRule{
		{Name: "BOM", Pattern: `\x{FEFF}`},
		{Name: "Newline", Pattern: `\r\n|\r|\n`},
		{Name: "Space", Pattern: `[\t\f\v \x{00A0}]+`},
		{Name: "Header", Pattern: labelPattern(d.HeaderLabels)},
	}
	if len(d.VerseLabels) > 0 {
		rules = append(rules, lexer.SimpleRule{Name: "Verse", Pattern: labelPattern(d.VerseLabels)})
	}
	rules = append(rules,
		lexer.SimpleRule{Name: "Number", Pattern: `[0-9]+`},
		lexer.SimpleRule{Name: "Word", Pattern: `[\p{L}\p{M}\p{N}]+`},
		lexer.SimpleRule{Name: "Punct", Pattern: `(?s:.)`},
	)

	def, err := lexer.NewSimple(rules)
	if err != nil {
		return nil, fmt.Errorf("compile dialect %s: %w", d.Name, err)
	}

	names := map[string]kind{
		"BOM":     kindBOM,
		"Newline": kindNewline,
		"Space":   kindSpace,
		"Header":  kindHeader,
		"Verse":   kindVerse,
		"Number":  kindNumber,
		"Word":    kindWord,
		"Punct":   kindPunct,
	}
	kinds := make(map[lexer.TokenType]kind, len(names))
	for name, tt := range def.Symbols() {
		if k, ok := names[name]; ok {
			kinds[tt] = k
		}
	}

	return &grammar{dialect: d, def: def, kinds: kinds}, nil
}

// labelPattern matches any label case-insensitively as a whole word.
// Longer labels come first so "Ayah" is not lexed as "Aya" + "h".
func labelPattern(labels []string) string {
	sorted := make([]string, len(labels))
	copy(sorted, labels)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	quoted := make([]string, len(sorted))
	for i, l := range sorted {
		quoted[i] = regexp.QuoteMeta(l)
	}
	return `(?i:` + strings.Join(quoted, "|") + `)\b`
}

// lex tokenizes text; base is added to every offset. The returned slice always
// ends with a kindEOF token.
func (g *grammar) lex(text string, base int) ([]token, error) {
	lex, err := g.def.LexString(g.dialect.Name, text)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}

	tokens := make([]token, 0, len(raw))
	for _, t := range raw {
		start := base + t.Pos.Offset
		if t.EOF() {
			tokens = append(tokens, token{kind: kindEOF, start: base + len(text), end: base + len(text)})
			continue
		}
		tokens = append(tokens, token{
			kind:  g.kinds[t.Type],
			text:  t.Value,
			start: start,
			end:   start + len(t.Value),
		})
	}
	return tokens, nil
}

// skipSpace returns the index of the first token at or after i that is not
// horizontal whitespace
func skipSpace(tokens []token, i int) int {
	for i < len(tokens)-1 && (tokens[i].kind == kindSpace || tokens[i].kind == kindBOM) {
		i++
	}
	return i
}

func isPunct(t token, chars ...string) bool {
	if t.kind != kindPunct {
		return false
	}
	for _, c := range chars {
		if t.text == c {
			return true
		}
	}
	return false
}

// isEmphasis reports markup that may surround markers without being content
func isEmphasis(t token) bool {
	return isPunct(t, "*", "_", "#")
}

// lineEndAt reports whether only emphasis and spaces remain on the line from i
func lineEndAt(tokens []token, i int) bool {
	for ; i < len(tokens); i++ {
		switch {
		case tokens[i].kind == kindNewline || tokens[i].kind == kindEOF:
			return true
		case tokens[i].kind == kindSpace || isEmphasis(tokens[i]):
			continue
		default:
			return false
		}
	}
	return true
}

// lineEndIndex returns the index of the newline or EOF token ending the line at i
func lineEndIndex(tokens []token, i int) int {
	for i < len(tokens)-1 && tokens[i].kind != kindNewline {
		i++
	}
	return i
}

// isDecimal reports a "." at i directly followed by more digits, as in "2.5"
func isDecimal(tokens []token, i int) bool {
	return isPunct(tokens[i], ".") && i+1 < len(tokens) && tokens[i+1].kind == kindNumber
}
