// Package export writes the aligned translation as JSON, YAML or SQLite.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/ssuula/internal/align"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/quran"
	"github.com/ppiankov/ssuula/internal/worker"
)

// Format is an export output format
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatSQLite Format = "sqlite"
)

// ParseFormat converts a flag value to a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatSQLite:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "db", "sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("unknown export format: %q (json, yaml, sqlite)", s)
	}
}

// Document is the full export
type Document struct {
	Meta     Meta      `json:"meta" yaml:"meta"`
	Chapters []Chapter `json:"chapters" yaml:"chapters"`
}

// Meta identifies where the exported translation came from
type Meta struct {
	Source     string    `json:"source" yaml:"source"`
	Generation string    `json:"generation" yaml:"generation"`
	Digest     string    `json:"digest" yaml:"digest"`
	Dialect    string    `json:"dialect" yaml:"dialect"`
	Unshifted  []int     `json:"unshifted_chapters" yaml:"unshifted_chapters"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
}

// Chapter is one chapter in canonical numbering
type Chapter struct {
	Number      int     `json:"number" yaml:"number"`
	Name        string  `json:"name" yaml:"name"`
	EnglishName string  `json:"english_name" yaml:"english_name"`
	Translated  int     `json:"translated" yaml:"translated"`
	Verses      []Verse `json:"verses" yaml:"verses"`
}

// Verse is one canonical verse; Text is null when no translation exists
type Verse struct {
	Verse      int     `json:"verse" yaml:"verse"`
	Text       *string `json:"text" yaml:"text"`
	Invocation bool    `json:"invocation,omitempty" yaml:"invocation,omitempty"`
}

// Options selects what to export
type Options struct {
	Chapters []int // Empty exports all chapters
	Workers  int
}

// Build resolves the selected chapters concurrently against the canonical verse lists
func Build(ctx context.Context, table *align.Table, report *model.LoadReport, source quran.VerseSource, opts Options) (*Document, error) {
	chapters := opts.Chapters
	if len(chapters) == 0 {
		for _, c := range quran.All() {
			chapters = append(chapters, c.Number)
		}
	}

	out, err := worker.Map(ctx, opts.Workers, chapters, func(ctx context.Context, number int) (Chapter, error) {
		info, ok := quran.Lookup(number)
		if !ok {
			return Chapter{}, fmt.Errorf("chapter %d out of range 1..%d", number, quran.ChapterCount)
		}
		canonical, err := source.Verses(ctx, number)
		if err != nil {
			return Chapter{}, fmt.Errorf("chapter %d: %w", number, err)
		}

		ch := Chapter{Number: info.Number, Name: info.Name, EnglishName: info.EnglishName}
		for _, rv := range table.ResolveChapter(number, canonical) {
			if rv.Available && !rv.Invocation {
				ch.Translated++
			}
			ch.Verses = append(ch.Verses, Verse{Verse: rv.Verse, Text: rv.TextOrNil(), Invocation: rv.Invocation})
		}
		return ch, nil
	})
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Meta: Meta{
			Unshifted:  table.Policy().UnshiftedChapters(),
			ExportedAt: time.Now().UTC(),
		},
		Chapters: out,
	}
	if report != nil {
		doc.Meta.Source = report.Source
		doc.Meta.Generation = report.Generation
		doc.Meta.Digest = report.Document.Digest
		doc.Meta.Dialect = report.Dialect
	}
	return doc, nil
}

// Write encodes doc to w as JSON or YAML
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %s cannot be streamed", format)
	}
}
