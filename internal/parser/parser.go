// Package parser reads loosely structured translation documents into a
// verse-indexed translation table.
//
// One grammar covers every known document revision. A Dialect selects the
// header and verse vocabulary; auto mode tries each builtin dialect and keeps
// the one that extracts the most verses.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/ssuula/internal/model"
)

// Result is the outcome of parsing one document
type Result struct {
	Table     model.TranslationTable
	Dialect   string
	Segments  int
	Anomalies []model.Anomaly
}

// stage pairs a tokenizer and builder for one dialect
type stage struct {
	tokenizer *Tokenizer
	builder   *Builder
}

// Parser runs one or more dialects over a document
type Parser struct {
	stages []stage
}

// NewParser creates a parser for the named dialect, or for every builtin dialect
// when name is empty or "auto"
func NewParser(name string, workers int) (*Parser, error) {
	var dialects []Dialect
	if name == "" || strings.EqualFold(name, AutoDialect) {
		dialects = Dialects()
	} else {
		d, err := DialectByName(name)
		if err != nil {
			return nil, err
		}
		dialects = []Dialect{d}
	}
	return NewParserWithDialects(dialects, workers)
}

// NewParserWithDialects creates a parser over custom dialects, tried in order
func NewParserWithDialects(dialects []Dialect, workers int) (*Parser, error) {
	if len(dialects) == 0 {
		return nil, fmt.Errorf("no dialects configured")
	}

	p := &Parser{}
	for _, d := range dialects {
		g, err := compile(d)
		if err != nil {
			return nil, err
		}
		p.stages = append(p.stages, stage{
			tokenizer: &Tokenizer{g: g},
			builder:   &Builder{g: g, workers: workers},
		})
	}
	return p, nil
}

// Dialects returns the names of the dialects this parser tries
func (p *Parser) Dialects() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.tokenizer.g.dialect.Name
	}
	return names
}

// Parse reads text with every configured dialect and returns the best result:
// most verse entries, then fewest anomalies, then the earlier dialect.
// A document that yields no verse under any dialect fails with
// *model.ParseYieldedNothingError.
func (p *Parser) Parse(text string) (*Result, error) {
	var best *Result
	for _, s := range p.stages {
		res, err := s.run(text)
		if err != nil {
			var nothing *model.ParseYieldedNothingError
			if errors.As(err, &nothing) {
				continue
			}
			return nil, fmt.Errorf("dialect %s: %w", s.tokenizer.g.dialect.Name, err)
		}
		if best == nil || better(res, best) {
			best = res
		}
	}

	if best == nil {
		return nil, &model.ParseYieldedNothingError{
			Dialects: p.Dialects(),
			Excerpt:  model.Excerpt(strings.TrimPrefix(text, "\ufeff"), 120),
		}
	}
	return best, nil
}

func (s stage) run(text string) (*Result, error) {
	segments, headerAnomalies, err := s.tokenizer.Tokenize(text)
	if err != nil {
		return nil, err
	}
	table, verseAnomalies, err := s.builder.Build(segments)
	if err != nil {
		return nil, err
	}
	return &Result{
		Table:     table,
		Dialect:   s.tokenizer.g.dialect.Name,
		Segments:  len(segments),
		Anomalies: append(headerAnomalies, verseAnomalies...),
	}, nil
}

func better(a, b *Result) bool {
	if a.Table.Len() != b.Table.Len() {
		return a.Table.Len() > b.Table.Len()
	}
	return len(a.Anomalies) < len(b.Anomalies)
}
