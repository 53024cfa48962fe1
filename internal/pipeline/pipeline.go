package pipeline

import (
	"context"
	"fmt"

	"github.com/ppiankov/ssuula/internal/align"
	"github.com/ppiankov/ssuula/internal/cache"
	"github.com/ppiankov/ssuula/internal/document"
	"github.com/ppiankov/ssuula/internal/logging"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/parser"
	"github.com/ppiankov/ssuula/internal/quran"
)

// Translation is one loaded generation: the aligned table and how it was built
type Translation struct {
	Table  *align.Table
	Report *model.LoadReport
}

// Loader runs one fetch, decode, parse and align cycle
type Loader struct {
	fetcher      *Fetcher
	parser       *parser.Parser
	policy       align.Policy
	probeChapter int
	strict       bool
}

// NewLoader creates a loader. probeChapter selects the chapter whose verse
// count validates the alignment policy; zero disables the check. With strict
// set, a convention mismatch fails the load.
func NewLoader(fetcher *Fetcher, p *parser.Parser, policy align.Policy, probeChapter int, strict bool) *Loader {
	return &Loader{
		fetcher:      fetcher,
		parser:       p,
		policy:       policy,
		probeChapter: probeChapter,
		strict:       strict,
	}
}

// Load builds the translation for a generation
func (l *Loader) Load(ctx context.Context, gen cache.Generation) (*Translation, error) {
	// 1. Fetch
	fetched, err := l.fetcher.FetchWithRetry(ctx, gen.Source)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	// 2. Decode
	raw, err := document.Decode(fetched.Body, fetched.Meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", model.ErrFetch, gen.Source, err)
	}
	if raw.Empty() {
		return nil, &model.EmptyDocumentError{URL: gen.Source}
	}

	// 3. Parse
	parsed, err := l.parser.Parse(raw.Text)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	for _, a := range parsed.Anomalies {
		logging.Warn("parse anomaly", "kind", a.Kind, "chapter", a.Chapter, "offset", a.Offset, "excerpt", a.Excerpt)
	}

	// 4. Align
	table := align.Align(parsed.Table, l.policy)

	report := &model.LoadReport{
		Source:     gen.Source,
		Generation: gen.String(),
		FetchedAt:  fetched.FetchedAt,
		FetchMeta:  fetched.Meta,
		Document:   raw.Meta(),
		Dialect:    parsed.Dialect,
		Chapters:   len(parsed.Table),
		Verses:     parsed.Table.Len(),
		Anomalies:  parsed.Anomalies,
	}

	// 5. Validate the numbering convention on the probe chapter
	if chapter, ok := quran.Lookup(l.probeChapter); ok {
		check, err := l.policy.Check(parsed.Table, chapter.Number, chapter.Verses)
		report.Conventions = append(report.Conventions, check)
		if err != nil {
			if l.strict {
				return nil, fmt.Errorf("alignment: %w", err)
			}
			logging.Warn("numbering convention mismatch", "chapter", check.Chapter,
				"expected", check.Expected, "detected", check.Detected,
				"raw_count", check.RawCount, "canonical", check.Canonical)
		}
	}

	logging.Info("translation loaded",
		"source", gen.Source,
		"generation", gen.String(),
		"digest", raw.Digest,
		"dialect", parsed.Dialect,
		"chapters", report.Chapters,
		"verses", report.Verses,
		"anomalies", len(parsed.Anomalies),
	)

	return &Translation{Table: table, Report: report}, nil
}
