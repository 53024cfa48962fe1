package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/ppiankov/ssuula/internal/model"
)

func mustParse(t *testing.T, dialect, text string) *Result {
	t.Helper()
	p, err := NewParser(dialect, 4)
	if err != nil {
		t.Fatalf("NewParser(%q): %v", dialect, err)
	}
	res, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return res
}

func assertTable(t *testing.T, got model.TranslationTable, want map[int]map[int]string) {
	t.Helper()
	if !reflect.DeepEqual(map[int]map[int]string(got), want) {
		t.Errorf("table mismatch\n got: %v\nwant: %v", got, want)
	}
}

func hasAnomaly(anomalies []model.Anomaly, kind model.AnomalyKind) bool {
	for _, a := range anomalies {
		if a.Kind == kind {
			return true
		}
	}
	return false
}

func TestParse_InlineEnumerated(t *testing.T) {
	res := mustParse(t, AutoDialect, "Chapter 2: Ayah 1: Alpha Ayah 2: Beta")
	assertTable(t, res.Table, map[int]map[int]string{2: {1: "Alpha", 2: "Beta"}})
	if res.Dialect != "enumerated" {
		t.Errorf("expected enumerated dialect on a tie, got %s", res.Dialect)
	}
}

func TestParse_DecorativeOnlyYieldsNothing(t *testing.T) {
	p, err := NewParser(AutoDialect, 2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.Parse("=====\n-----\n* * *\n~~~~~~\n")

	var nothing *model.ParseYieldedNothingError
	if !errors.As(err, &nothing) {
		t.Fatalf("expected ParseYieldedNothingError, got %v", err)
	}
	if !errors.Is(err, model.ErrNoVerses) {
		t.Error("expected errors.Is ErrNoVerses")
	}
	if len(nothing.Dialects) != len(Dialects()) {
		t.Errorf("expected all dialects listed, got %v", nothing.Dialects)
	}
	if !strings.Contains(nothing.Excerpt, "=====") {
		t.Errorf("expected excerpt of the document, got %q", nothing.Excerpt)
	}
}

func TestParse_BareNumeralsPickNumberedDialect(t *testing.T) {
	res := mustParse(t, AutoDialect, "Chapter 9: 1. X 2. Y")
	assertTable(t, res.Table, map[int]map[int]string{9: {1: "X", 2: "Y"}})
	if res.Dialect != "numbered" {
		t.Errorf("expected numbered dialect, got %s", res.Dialect)
	}
}

func TestParse_MidLineNumeralIsProse(t *testing.T) {
	res := mustParse(t, "numbered", "Chapter 9:\n1. He gave them 2. camels and more\n2. Y\n")
	assertTable(t, res.Table, map[int]map[int]string{9: {1: "He gave them 2. camels and more", 2: "Y"}})
}

func TestParse_ChapterMentionInVerseText(t *testing.T) {
	doc := "Surah 3:\nAyah 1: As told in Surah 2. Indeed he is near.\nAyah 2: Beta\n"
	for _, dialect := range []string{"enumerated", "numbered"} {
		t.Run(dialect, func(t *testing.T) {
			res := mustParse(t, dialect, doc)
			assertTable(t, res.Table, map[int]map[int]string{
				3: {1: "As told in Surah 2. Indeed he is near.", 2: "Beta"},
			})
		})
	}

	// A numbered header still opens a chapter at line start
	res := mustParse(t, "enumerated", "Surah 2.\nAyah 1: Alpha\n")
	assertTable(t, res.Table, map[int]map[int]string{2: {1: "Alpha"}})
}

func TestParse_ContinuationMerge(t *testing.T) {
	doc := "Surah 3:\nAyah 5: first half\nAyah 5: second half\n"
	res := mustParse(t, "enumerated", doc)
	assertTable(t, res.Table, map[int]map[int]string{3: {5: "first half second half"}})
}

func TestParse_RepeatedChapterAppends(t *testing.T) {
	doc := "Chapter 4:\nAyah 1: one\nChapter 5:\nAyah 1: five\nChapter 4:\nAyah 1: more\n"
	res := mustParse(t, "enumerated", doc)
	assertTable(t, res.Table, map[int]map[int]string{
		4: {1: "one more"},
		5: {1: "five"},
	})
}

func TestParse_LeadingTextBecomesVerseOne(t *testing.T) {
	res := mustParse(t, "numbered", "Chapter 4:\nOpening line here\n2. Second\n")
	assertTable(t, res.Table, map[int]map[int]string{4: {1: "Opening line here", 2: "Second"}})
}

func TestParse_LeadingTextDroppedWithoutLeadingVerse(t *testing.T) {
	res := mustParse(t, "enumerated", "Chapter 4:\nPreface\nAyah 1: One")
	assertTable(t, res.Table, map[int]map[int]string{4: {1: "One"}})
	if !hasAnomaly(res.Anomalies, model.AnomalyDroppedText) {
		t.Errorf("expected dropped_text anomaly, got %+v", res.Anomalies)
	}
}

func TestParse_MarkupBOMAndLineEndings(t *testing.T) {
	doc := "\ufeff**Surah 1:**\r\n=====\r\n*Ayah 1:* In the *name* of God --\r\nAyah 2: __Praise__ be\r\n"
	res := mustParse(t, AutoDialect, doc)
	assertTable(t, res.Table, map[int]map[int]string{1: {1: "In the name of God", 2: "Praise be"}})
}

func TestParse_MixedLineEndings(t *testing.T) {
	res := mustParse(t, "enumerated", "Chapter 2:\r\nAyah 1: A\rAyah 2: B\nAyah 3: C")
	assertTable(t, res.Table, map[int]map[int]string{2: {1: "A", 2: "B", 3: "C"}})
}

func TestParse_BadHeadersRecoverLocally(t *testing.T) {
	doc := "Chapter 200: lost text\nChapter 2:\nAyah 1: kept\nChapter: orphan\nAyah 2: also orphan\n"
	res := mustParse(t, "enumerated", doc)
	assertTable(t, res.Table, map[int]map[int]string{2: {1: "kept"}})

	if !hasAnomaly(res.Anomalies, model.AnomalyHeaderRange) {
		t.Errorf("expected header_range anomaly, got %+v", res.Anomalies)
	}
	if !hasAnomaly(res.Anomalies, model.AnomalyHeaderNumeral) {
		t.Errorf("expected header_numeral anomaly, got %+v", res.Anomalies)
	}
}

func TestParse_VerseLabelWithoutNumeral(t *testing.T) {
	res := mustParse(t, "enumerated", "Chapter 5:\nAyah 1: start\nAyah: middle\nAyah 2: next")
	assertTable(t, res.Table, map[int]map[int]string{5: {1: "start middle", 2: "next"}})
	if !hasAnomaly(res.Anomalies, model.AnomalyVerseNumeral) {
		t.Errorf("expected verse_numeral anomaly, got %+v", res.Anomalies)
	}
}

func TestParse_DecimalIsText(t *testing.T) {
	res := mustParse(t, "numbered", "Chapter 2:\n1. The ratio is 2.5 today\n2. Next")
	assertTable(t, res.Table, map[int]map[int]string{2: {1: "The ratio is 2.5 today", 2: "Next"}})
}

func TestParse_NamedHeaders(t *testing.T) {
	doc := "Ssuula Al-Baqarah (2):\nAaya 1: Alif Laam Miim\n2. Ekitabo kino\n\nSsuula Al-Imran:\n1. Alif\n"
	res := mustParse(t, AutoDialect, doc)
	assertTable(t, res.Table, map[int]map[int]string{
		2: {1: "Alif Laam Miim", 2: "Ekitabo kino"},
		3: {1: "Alif"},
	})
	if res.Dialect != "ssuula" {
		t.Errorf("expected ssuula dialect, got %s", res.Dialect)
	}
}

func TestParse_UnknownChapterName(t *testing.T) {
	doc := "Ssuula Ekitabo:\n1. lost\nSsuula 1:\n1. kept\n"
	res := mustParse(t, "ssuula", doc)
	assertTable(t, res.Table, map[int]map[int]string{1: {1: "kept"}})
	if !hasAnomaly(res.Anomalies, model.AnomalyHeaderNumeral) {
		t.Errorf("expected header_numeral anomaly, got %+v", res.Anomalies)
	}
}

func TestParse_Idempotent(t *testing.T) {
	doc := "Intro\nChapter 1:\n1. a\n2. b --\nChapter 2: Ayah 1: c\nAyah 1: d\n"
	first := mustParse(t, AutoDialect, doc)
	second := mustParse(t, AutoDialect, doc)
	if !reflect.DeepEqual(first.Table, second.Table) {
		t.Errorf("tables differ between runs: %v vs %v", first.Table, second.Table)
	}
}

func TestParse_EntriesWellFormed(t *testing.T) {
	doc := strings.Join([]string{
		"Preamble about the translation",
		"**Chapter 1:**",
		"1. In the name   of God,",
		"   the Merciful --",
		"2. _Praise_ be",
		"~~~~~~~~",
		"Chapter 2 - The Cow",
		"Ayah 1: Alif",
		"Ayah 2:",
		"Ayah 3: This is the Book ---",
	}, "\n")

	res := mustParse(t, AutoDialect, doc)
	if res.Table.Len() == 0 {
		t.Fatal("expected entries")
	}
	for _, e := range res.Table.Entries() {
		if e.Chapter < 1 || e.Verse < 1 {
			t.Errorf("entry out of range: %+v", e)
		}
		if e.Text == "" || e.Text != strings.TrimSpace(e.Text) || strings.Contains(e.Text, "  ") {
			t.Errorf("entry text not normalised: %q", e.Text)
		}
	}
	if got, _ := res.Table.Lookup(1, 1); got != "In the name of God, the Merciful" {
		t.Errorf("unexpected 1:1 %q", got)
	}
	if got, _ := res.Table.Lookup(2, 3); got != "This is the Book" {
		t.Errorf("unexpected 2:3 %q", got)
	}
}

func TestNewParser_UnknownDialect(t *testing.T) {
	if _, err := NewParser("klingon", 1); err == nil {
		t.Error("expected error for unknown dialect")
	}
	if _, err := NewParserWithDialects(nil, 1); err == nil {
		t.Error("expected error for empty dialect list")
	}
}

func TestTokenize_SegmentsCoverDocument(t *testing.T) {
	doc := "Intro text\nChapter 1: a\nChapter 2 - The Cow\nAyah 1: b"
	tok, err := NewTokenizer(Dialects()[0])
	if err != nil {
		t.Fatal(err)
	}
	segments, anomalies, err := tok.Tokenize(doc)
	if err != nil {
		t.Fatal(err)
	}
	if len(anomalies) != 0 {
		t.Errorf("unexpected anomalies %+v", anomalies)
	}

	wantChapters := []int{0, 1, 2}
	if len(segments) != len(wantChapters) {
		t.Fatalf("expected %d segments, got %+v", len(wantChapters), segments)
	}
	for i, seg := range segments {
		if seg.Chapter != wantChapters[i] {
			t.Errorf("segment %d: expected chapter %d, got %d", i, wantChapters[i], seg.Chapter)
		}
		if doc[seg.Offset:seg.Offset+len(seg.Text)] != seg.Text {
			t.Errorf("segment %d text does not match its offset", i)
		}
	}
	if segments[2].Header != "Chapter 2 - The Cow" {
		t.Errorf("expected title line in header, got %q", segments[2].Header)
	}
	if segments[2].Text != "\nAyah 1: b" {
		t.Errorf("unexpected chapter 2 body %q", segments[2].Text)
	}
}

func TestBuilder_NothingFound(t *testing.T) {
	b, err := NewBuilder(Dialects()[0], 2)
	if err != nil {
		t.Fatal(err)
	}
	_, _, err = b.Build([]model.ChapterSegment{{Chapter: 0, Text: "stray"}})
	if !errors.Is(err, model.ErrNoVerses) {
		t.Errorf("expected ErrNoVerses, got %v", err)
	}
}
