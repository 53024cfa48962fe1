package model

import "time"

// LoadReport describes one completed fetch-and-parse cycle
type LoadReport struct {
	Source     string    `json:"source" yaml:"source"`         // URL or path the document came from
	Generation string    `json:"generation" yaml:"generation"` // Cache generation the load belongs to
	FetchedAt  time.Time `json:"fetched_at" yaml:"fetched_at"`
	FetchMeta  FetchMeta `json:"fetch_meta" yaml:"fetch_meta"`

	Document DocumentMeta `json:"document" yaml:"document"`

	Dialect  string `json:"dialect" yaml:"dialect"`   // Grammar dialect that produced the table
	Chapters int    `json:"chapters" yaml:"chapters"` // Chapters with at least one verse
	Verses   int    `json:"verses" yaml:"verses"`     // Raw verse entries

	Anomalies   []Anomaly         `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	Conventions []ConventionCheck `json:"conventions,omitempty" yaml:"conventions,omitempty"`
}

// FetchMeta contains HTTP metadata from fetching the source
type FetchMeta struct {
	StatusCode   int               `json:"status_code" yaml:"status_code"`
	ContentType  string            `json:"content_type,omitempty" yaml:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty" yaml:"last_modified,omitempty"`
	ETag         string            `json:"etag,omitempty" yaml:"etag,omitempty"`
	Headers      map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// DocumentMeta describes the decoded raw document
type DocumentMeta struct {
	Bytes      int    `json:"bytes" yaml:"bytes"`
	Digest     string `json:"digest" yaml:"digest"` // BLAKE3 of the fetched bytes
	LineEnding string `json:"line_ending" yaml:"line_ending"`
	BOM        bool   `json:"bom" yaml:"bom"`
	Compressed bool   `json:"compressed,omitempty" yaml:"compressed,omitempty"`
	HTML       bool   `json:"html,omitempty" yaml:"html,omitempty"`
}

// ConventionCheck records the numbering convention detected for a probe chapter
type ConventionCheck struct {
	Chapter   int    `json:"chapter" yaml:"chapter"`
	Expected  string `json:"expected" yaml:"expected"`
	Detected  string `json:"detected" yaml:"detected"`
	RawCount  int    `json:"raw_count" yaml:"raw_count"`
	Canonical int    `json:"canonical" yaml:"canonical"`
	OK        bool   `json:"ok" yaml:"ok"`
}
