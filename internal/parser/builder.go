package parser

import (
	"context"
	"strconv"

	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/worker"
)

// Builder turns chapter segments into a translation table
type Builder struct {
	g       *grammar
	workers int
}

// NewBuilder compiles a builder for the dialect. Segments are built on up to
// workers goroutines.
func NewBuilder(d Dialect, workers int) (*Builder, error) {
	g, err := compile(d)
	if err != nil {
		return nil, err
	}
	return &Builder{g: g, workers: workers}, nil
}

// segmentResult is the table and anomalies of one chapter segment
type segmentResult struct {
	table     model.TranslationTable
	anomalies []model.Anomaly
}

// verseMatch is a recognised verse marker
type verseMatch struct {
	verse int // Zero when the marker carries no usable numeral
	end   int
	next  int
}

// Build parses verses out of every segment and merges them in document order.
// It fails with *model.ParseYieldedNothingError when no verse is found at all.
func (b *Builder) Build(segments []model.ChapterSegment) (model.TranslationTable, []model.Anomaly, error) {
	results, err := worker.Map(context.Background(), b.workers, segments,
		func(_ context.Context, seg model.ChapterSegment) (segmentResult, error) {
			return b.g.buildSegment(seg)
		})
	if err != nil {
		return nil, nil, err
	}

	table := model.TranslationTable{}
	var anomalies []model.Anomaly
	for _, r := range results {
		table.Merge(r.table)
		anomalies = append(anomalies, r.anomalies...)
	}

	if table.Len() == 0 {
		excerpt := ""
		if len(segments) > 0 {
			excerpt = model.Excerpt(segments[0].Header+" "+segments[0].Text, 120)
		}
		return nil, anomalies, &model.ParseYieldedNothingError{
			Dialects: []string{b.g.dialect.Name},
			Excerpt:  excerpt,
		}
	}
	return table, anomalies, nil
}

// buildSegment extracts verses from one chapter segment
func (g *grammar) buildSegment(seg model.ChapterSegment) (segmentResult, error) {
	res := segmentResult{table: model.TranslationTable{}}

	if seg.Chapter == 0 {
		// Content of an anomalous header was already reported by the tokenizer
		if seg.Header == "" {
			if text := Clean(seg.Text); text != "" {
				res.anomalies = append(res.anomalies, model.Anomaly{
					Kind:    model.AnomalyDroppedText,
					Offset:  seg.Offset,
					Excerpt: model.Excerpt(text, 60),
				})
			}
		}
		return res, nil
	}

	tokens, err := g.lex(seg.Text, seg.Offset)
	if err != nil {
		return res, err
	}

	// Mid-line "N." only continues the sequence when the segment is written
	// on one line; otherwise markers start lines and mid-line numerals are prose.
	dense := !hasLineStartMarker(tokens, g.dialect.BareNumerals)

	var (
		current     int // Verse receiving text; zero before the first marker
		last        int
		textStart   = seg.Offset
		seenContent bool
		seenMarker  bool
		lineStart   bool
	)
	emit := func(end int) {
		text := Clean(seg.Text[textStart-seg.Offset : end-seg.Offset])
		if text == "" {
			return
		}
		if current == 0 {
			if g.dialect.LeadingVerse {
				res.table.Add(seg.Chapter, 1, text)
				return
			}
			res.anomalies = append(res.anomalies, model.Anomaly{
				Kind:    model.AnomalyDroppedText,
				Chapter: seg.Chapter,
				Offset:  textStart,
				Excerpt: model.Excerpt(text, 60),
			})
			return
		}
		res.table.Add(seg.Chapter, current, text)
	}

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

		if tok.kind == kindVerse {
			if m, ok := matchVerse(tokens, i); ok {
				emit(tok.start)
				if m.verse == 0 {
					res.anomalies = append(res.anomalies, model.Anomaly{
						Kind:    model.AnomalyVerseNumeral,
						Chapter: seg.Chapter,
						Offset:  tok.start,
						Excerpt: model.Excerpt(seg.Text[tok.start-seg.Offset:tokens[lineEndIndex(tokens, i)].start-seg.Offset], 60),
					})
				} else {
					current, last = m.verse, m.verse
				}
				textStart = m.end
				seenMarker = true
				lineStart = false
				i = m.next
				continue
			}
		}

		if tok.kind == kindNumber && g.dialect.BareNumerals {
			if m, ok := matchBare(tokens, i); ok {
				segmentStart := !seenContent && !seenMarker
				if lineStart || segmentStart || (dense && m.verse == last+1) {
					emit(tok.start)
					current, last = m.verse, m.verse
					textStart = m.end
					seenMarker = true
					lineStart = false
					i = m.next
					continue
				}
			}
		}

		seenContent = true
		lineStart = false
		i++
	}
	emit(seg.Offset + len(seg.Text))

	return res, nil
}

// hasLineStartMarker reports whether any verse marker opens a line after the
// first line of the segment
func hasLineStartMarker(tokens []token, bare bool) bool {
	lineStart := false
	for i := 0; i < len(tokens) && tokens[i].kind != kindEOF; i++ {
		tok := tokens[i]
		switch {
		case tok.kind == kindNewline:
			lineStart = true
			continue
		case tok.kind == kindSpace || tok.kind == kindBOM || isEmphasis(tok):
			continue
		}
		if lineStart {
			if tok.kind == kindVerse {
				if m, ok := matchVerse(tokens, i); ok && m.verse > 0 {
					return true
				}
			}
			if tok.kind == kindNumber && bare {
				if _, ok := matchBare(tokens, i); ok {
					return true
				}
			}
		}
		lineStart = false
	}
	return false
}

// matchVerse recognises a labelled verse marker ("Ayah 3:") at the Verse token i.
// A label followed directly by ":" is a marker without a numeral.
func matchVerse(tokens []token, i int) (verseMatch, bool) {
	j := skipSpace(tokens, i+1)

	if isPunct(tokens[j], ":") {
		return verseMatch{end: tokens[j].end, next: j + 1}, true
	}
	if tokens[j].kind != kindNumber {
		return verseMatch{}, false
	}

	n, err := strconv.Atoi(tokens[j].text)
	if err != nil || n < 1 {
		n = 0
	}
	k := skipSpace(tokens, j+1)
	switch {
	case isPunct(tokens[k], ":", ")", "-", "–", "—"):
		return verseMatch{verse: n, end: tokens[k].end, next: k + 1}, true
	case isPunct(tokens[k], ".") && !isDecimal(tokens, k):
		return verseMatch{verse: n, end: tokens[k].end, next: k + 1}, true
	case lineEndAt(tokens, k):
		return verseMatch{verse: n, end: tokens[k].start, next: k}, true
	}
	return verseMatch{}, false
}

// matchBare recognises "N." or "N)" at the Number token i
func matchBare(tokens []token, i int) (verseMatch, bool) {
	sep := i + 1
	if !isPunct(tokens[sep], ".", ")") || isDecimal(tokens, sep) {
		return verseMatch{}, false
	}
	n, err := strconv.Atoi(tokens[i].text)
	if err != nil || n < 1 {
		return verseMatch{}, false
	}
	return verseMatch{verse: n, end: tokens[sep].end, next: sep + 1}, true
}
