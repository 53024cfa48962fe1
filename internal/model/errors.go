package model

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
)

// Sentinel errors for the fatal load conditions
var (
	// ErrFetch indicates the source document could not be retrieved
	ErrFetch = errors.New("translation fetch failed")
	// ErrEmptyDocument indicates the source document was retrieved but empty
	ErrEmptyDocument = errors.New("translation document is empty")
	// ErrNoVerses indicates the document parsed to zero verse entries
	ErrNoVerses = errors.New("translation document yielded no verses")
	// ErrConventionMismatch indicates the numbering convention check failed in strict mode
	ErrConventionMismatch = errors.New("verse numbering convention mismatch")
)

// FetchError is a network or status failure while retrieving the source document
type FetchError struct {
	URL        string
	StatusCode int   // Zero when the request never produced a response
	Err        error // Underlying transport error, if any
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s failed", e.URL)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports ErrFetch as a match so callers can test the class with errors.Is
func (e *FetchError) Is(target error) bool {
	return target == ErrFetch
}

// Retryable reports whether a later attempt could succeed: transport failures,
// 429 and 5xx statuses. Other 4xx statuses and missing local files are permanent.
func (e *FetchError) Retryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, fs.ErrNotExist) && !errors.Is(e.Err, fs.ErrPermission)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// EmptyDocumentError is returned when the fetched body has no content
type EmptyDocumentError struct {
	URL string
}

func (e *EmptyDocumentError) Error() string {
	return fmt.Sprintf("translation document at %s is empty", e.URL)
}

func (e *EmptyDocumentError) Unwrap() error {
	return ErrEmptyDocument
}

// ParseYieldedNothingError is returned when a non-empty document produces no
// verse entries at all, which signals format drift upstream
type ParseYieldedNothingError struct {
	Dialects []string // Dialects that were tried
	Excerpt  string   // Start of the document, for diagnosis
}

func (e *ParseYieldedNothingError) Error() string {
	return fmt.Sprintf("failed to parse any verses (dialects: %s); content: %q",
		strings.Join(e.Dialects, ", "), e.Excerpt)
}

func (e *ParseYieldedNothingError) Unwrap() error {
	return ErrNoVerses
}

// ConventionError describes a chapter whose raw verse count disagrees with the
// configured alignment policy
type ConventionError struct {
	Chapter   int
	Expected  string
	Detected  string
	RawCount  int
	Canonical int
}

func (e *ConventionError) Error() string {
	return fmt.Sprintf("chapter %d: policy expects %s numbering, document looks %s (raw %d verses, canonical %d)",
		e.Chapter, e.Expected, e.Detected, e.RawCount, e.Canonical)
}

func (e *ConventionError) Unwrap() error {
	return ErrConventionMismatch
}

// IsFatal reports whether err is one of the load failures that make the
// translation unavailable for a generation
func IsFatal(err error) bool {
	return errors.Is(err, ErrFetch) ||
		errors.Is(err, ErrEmptyDocument) ||
		errors.Is(err, ErrNoVerses) ||
		errors.Is(err, ErrConventionMismatch)
}

// IsRetryable reports whether err is a fetch failure worth retrying with a new generation
func IsRetryable(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}
