package quran

import (
	"context"
	"testing"
)

func TestChapterTable(t *testing.T) {
	all := All()
	if len(all) != ChapterCount {
		t.Fatalf("expected %d chapters, got %d", ChapterCount, len(all))
	}

	total := 0
	for i, c := range all {
		if c.Number != i+1 {
			t.Errorf("chapter at index %d has number %d", i, c.Number)
		}
		if c.Verses < 3 {
			t.Errorf("chapter %d has implausible verse count %d", c.Number, c.Verses)
		}
		total += c.Verses
	}
	if total != 6236 {
		t.Errorf("expected 6236 verses in total, got %d", total)
	}
}

func TestLookup(t *testing.T) {
	c, ok := Lookup(2)
	if !ok || c.Verses != 286 {
		t.Errorf("expected Al-Baqara with 286 verses, got %+v", c)
	}
	for _, n := range []int{0, -1, 115} {
		if _, ok := Lookup(n); ok {
			t.Errorf("expected no chapter %d", n)
		}
	}
}

func TestByName(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"Al-Baqarah", 2},
		{"al baqara", 2},
		{"Baqara", 2},
		{"AL-FAATIHA", 1},
		{"Al-Fatiha", 1},
		{"At-Tawbah", 9},
		{"At-Taubah", 9},
		{"Yaseen", 36},
		{"Ya-Sin", 36},
		{"Ali Imran", 3},
		{"An-Naas", 114},
	}
	for _, tt := range tests {
		c, ok := ByName(tt.name)
		if !ok {
			t.Errorf("ByName(%q) found nothing", tt.name)
			continue
		}
		if c.Number != tt.want {
			t.Errorf("ByName(%q) = %d, want %d", tt.name, c.Number, tt.want)
		}
	}

	if _, ok := ByName("Ekitabo"); ok {
		t.Error("expected unknown name to miss")
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(func(c int) bool { return c != 1 && c != 9 })
	ctx := context.Background()

	verses, err := src.Verses(ctx, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(verses) != 287 || verses[0] != 1 || verses[286] != 287 {
		t.Errorf("expected 1..287 for chapter 2, got %d verses", len(verses))
	}

	verses, _ = src.Verses(ctx, 9)
	if len(verses) != 129 {
		t.Errorf("expected 129 verses for chapter 9, got %d", len(verses))
	}

	if _, err := src.Verses(ctx, 115); err == nil {
		t.Error("expected error for chapter 115")
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := src.Verses(cancelled, 2); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{in: "2", want: Ref{Chapter: 2}},
		{in: "2:255", want: Ref{Chapter: 2, Verse: 255}},
		{in: " 2.255 ", want: Ref{Chapter: 2, Verse: 255}},
		{in: "2:1-7", want: Ref{Chapter: 2, Verse: 1, VerseEnd: 7}},
		{in: "Al-Baqarah:255", want: Ref{Chapter: 2, Verse: 255}},
		{in: "Yaseen", want: Ref{Chapter: 36}},
		{in: "", wantErr: true},
		{in: "0:1", wantErr: true},
		{in: "115", wantErr: true},
		{in: "2:0", wantErr: true},
		{in: "2:7-1", wantErr: true},
		{in: "2:1-287", want: Ref{Chapter: 2, Verse: 1, VerseEnd: 287}},
		{in: "2:1-288", wantErr: true},
		{in: "2:1-9223372036854775807", wantErr: true},
		{in: "112:1-100000000", wantErr: true},
		{in: "2:", wantErr: true},
		{in: "Nowhere:1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRef(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRefString(t *testing.T) {
	if s := (Ref{Chapter: 2, Verse: 1, VerseEnd: 7}).String(); s != "2:1-7" {
		t.Errorf("unexpected %q", s)
	}
	r := Ref{Chapter: 2, Verse: 5}
	if r.IsChapter() || r.Last() != 5 {
		t.Errorf("unexpected ref helpers for %+v", r)
	}
}
