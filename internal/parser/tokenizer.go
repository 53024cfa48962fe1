package parser

import (
	"strconv"
	"strings"

	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/quran"
)

// maxNameWords bounds how much of a line a named header may span
const maxNameWords = 4

// Tokenizer splits a document into chapter segments
type Tokenizer struct {
	g *grammar
}

// NewTokenizer compiles a tokenizer for the dialect
func NewTokenizer(d Dialect) (*Tokenizer, error) {
	g, err := compile(d)
	if err != nil {
		return nil, err
	}
	return &Tokenizer{g: g}, nil
}

// headerMatch is a recognised chapter header
type headerMatch struct {
	chapter int               // Zero when the header is anomalous
	anomaly model.AnomalyKind // Set when chapter is zero
	end     int               // Byte offset where the chapter body starts
	next    int               // Token index where scanning resumes
}

// Tokenize splits text into chapter segments in document order. Text before the
// first header is returned as a chapter-0 segment when it is not blank, and the
// body of every unusable header becomes a chapter-0 segment with an anomaly.
func (t *Tokenizer) Tokenize(text string) ([]model.ChapterSegment, []model.Anomaly, error) {
	tokens, err := t.g.lex(text, 0)
	if err != nil {
		return nil, nil, err
	}

	var (
		segments  []model.ChapterSegment
		anomalies []model.Anomaly
	)
	current := model.ChapterSegment{}
	preamble := true
	flush := func(end int) {
		body := text[current.Offset:end]
		if preamble && strings.TrimSpace(body) == "" {
			return
		}
		current.Text = body
		segments = append(segments, current)
	}

	lineStart := true
	for i := 0; i < len(tokens) && tokens[i].kind != kindEOF; {
		tok := tokens[i]
		switch {
		case tok.kind == kindNewline:
			lineStart = true
			i++
			continue
		case tok.kind == kindSpace || tok.kind == kindBOM || isEmphasis(tok):
			i++
			continue
		}

		if tok.kind == kindHeader {
			if m, ok := t.g.matchHeader(tokens, i, lineStart); ok {
				flush(tok.start)
				current = model.ChapterSegment{
					Chapter: m.chapter,
					Header:  strings.TrimSpace(text[tok.start:m.end]),
					Offset:  m.end,
				}
				preamble = false
				if m.chapter == 0 {
					lineEnd := tokens[lineEndIndex(tokens, i)].start
					anomalies = append(anomalies, model.Anomaly{
						Kind:    m.anomaly,
						Offset:  tok.start,
						Excerpt: model.Excerpt(text[tok.start:lineEnd], 60),
					})
				}
				i = m.next
				lineStart = false
				continue
			}
		}

		lineStart = false
		i++
	}
	flush(len(text))

	return segments, anomalies, nil
}

// matchHeader recognises a chapter header starting at the Header token i.
// A numeric header closed by ":" ("Chapter 2:") is accepted anywhere. Every
// other form is only considered at line start, so prose such as "as told in
// Surah 2. Indeed" stays verse text.
func (g *grammar) matchHeader(tokens []token, i int, lineStart bool) (headerMatch, bool) {
	j := skipSpace(tokens, i+1)

	if tokens[j].kind == kindNumber {
		n, err := strconv.Atoi(tokens[j].text)
		k := skipSpace(tokens, j+1)
		if !lineStart && !isPunct(tokens[k], ":") {
			return headerMatch{}, false
		}
		end, next, ok := headerBodyStart(tokens, k)
		if !ok {
			return headerMatch{}, false
		}
		m := headerMatch{end: end, next: next}
		switch {
		case err != nil:
			m.anomaly = model.AnomalyHeaderNumeral
		case n < 1 || n > quran.ChapterCount:
			m.anomaly = model.AnomalyHeaderRange
		default:
			m.chapter = n
		}
		return m, true
	}

	if !lineStart {
		return headerMatch{}, false
	}

	if isPunct(tokens[j], ":") {
		return headerMatch{
			anomaly: model.AnomalyHeaderNumeral,
			end:     tokens[j].end,
			next:    j + 1,
		}, true
	}

	name, k, ok := collectName(tokens, j)
	if !ok {
		return headerMatch{}, false
	}
	k = skipSpace(tokens, k)

	number := 0
	numberErr := false
	if isPunct(tokens[k], "(") && tokens[k+1].kind == kindNumber && isPunct(tokens[k+2], ")") {
		n, err := strconv.Atoi(tokens[k+1].text)
		number = n
		numberErr = err != nil
		k = skipSpace(tokens, k+3)
	}

	var end, next int
	switch {
	case isPunct(tokens[k], ":", "."):
		end, next = tokens[k].end, k+1
	case lineEndAt(tokens, k):
		end, next = tokens[k].start, k
	default:
		return headerMatch{}, false
	}

	m := headerMatch{end: end, next: next}
	switch {
	case numberErr:
		m.anomaly = model.AnomalyHeaderNumeral
	case number != 0 && (number < 1 || number > quran.ChapterCount):
		m.anomaly = model.AnomalyHeaderRange
	case number != 0:
		m.chapter = number
	case g.dialect.NamedHeaders:
		if c, found := quran.ByName(name); found {
			m.chapter = c.Number
		} else {
			m.anomaly = model.AnomalyHeaderNumeral
		}
	default:
		m.anomaly = model.AnomalyHeaderNumeral
	}
	return m, true
}

// headerBodyStart finds where a numeric header's chapter body begins.
// A ":" or "." separator ends the header. A dash or parenthesis introduces a
// title that runs to the end of the line. A bare line end also ends the header.
func headerBodyStart(tokens []token, k int) (end, next int, ok bool) {
	switch {
	case isPunct(tokens[k], ":"):
		return tokens[k].end, k + 1, true
	case isPunct(tokens[k], ".") && !isDecimal(tokens, k):
		return tokens[k].end, k + 1, true
	case isPunct(tokens[k], "-", "–", "—", "("):
		nl := lineEndIndex(tokens, k)
		return tokens[nl].start, nl, true
	case lineEndAt(tokens, k):
		return tokens[k].start, k, true
	}
	return 0, 0, false
}

// collectName reads a chapter name made of words joined by spaces, hyphens or
// apostrophes, starting at i
func collectName(tokens []token, i int) (string, int, bool) {
	var sb strings.Builder
	words := 0
	k := i
	for {
		if tokens[k].kind != kindWord && tokens[k].kind != kindHeader && tokens[k].kind != kindVerse {
			break
		}
		sb.WriteString(tokens[k].text)
		words++
		k++
		if words > maxNameWords {
			return "", 0, false
		}

		switch {
		case isPunct(tokens[k], "-", "'", "’", "`"):
			sb.WriteString(tokens[k].text)
			k++
		case tokens[k].kind == kindSpace:
			next := k + 1
			if tokens[next].kind != kindWord {
				return sb.String(), k, words > 0
			}
			sb.WriteString(" ")
			k = next
		default:
			return sb.String(), k, words > 0
		}
	}
	return sb.String(), k, words > 0
}
