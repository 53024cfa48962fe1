package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/util"
)

func noSleep(t *testing.T) {
	t.Helper()
	origSleep := fetchSleepFunc
	fetchSleepFunc = func(d time.Duration) {}
	t.Cleanup(func() { fetchSleepFunc = origSleep })
}

func newTestFetcher() *Fetcher {
	return NewFetcher(5*time.Second, "test-agent", 1<<20, false, "", "", "")
}

func TestFetchWithRetry_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("ETag", `"v1"`)
		_, _ = fmt.Fprint(w, "Chapter 1: Ayah 1: A")
	}))
	defer server.Close()

	result, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if string(result.Body) != "Chapter 1: Ayah 1: A" {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if result.Meta.StatusCode != http.StatusOK || result.Meta.ETag != `"v1"` || result.Meta.ContentType != "text/plain" {
		t.Errorf("Unexpected meta: %+v", result.Meta)
	}
	if gotUA != "test-agent" {
		t.Errorf("Expected user agent to be sent, got %q", gotUA)
	}
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := attempts.Add(1)
		if n <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()
	noSleep(t)

	result, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if string(result.Body) != "OK" {
		t.Errorf("Unexpected body: %s", result.Body)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	if err == nil {
		t.Fatal("Expected error for 404, got nil")
	}
	if got := err.Error(); got != "unexpected status: 404 Not Found" {
		t.Errorf("Unexpected error: %s", got)
	}
	if !errors.Is(err, model.ErrFetch) {
		t.Error("Expected errors.Is ErrFetch")
	}
	if attempts.Load() != 1 {
		t.Errorf("Expected 404 to fail fast, got %d attempts", attempts.Load())
	}
}

func TestFetchWithRetry_AllRetriesExhausted(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()
	noSleep(t)

	_, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL)
	var fe *model.FetchError
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503 FetchError after all retries, got %v", err)
	}
	if attempts.Load() != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_429Retried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()
	noSleep(t)

	if _, err := newTestFetcher().FetchWithRetry(context.Background(), server.URL); err != nil {
		t.Fatalf("Expected success after 429 retry, got %v", err)
	}
	if attempts.Load() != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts.Load())
	}
}

func TestFetchWithRetry_Attempts(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	noSleep(t)

	_, _ = newTestFetcher().WithAttempts(5).FetchWithRetry(context.Background(), server.URL)
	if attempts.Load() != 5 {
		t.Errorf("Expected 5 attempts, got %d", attempts.Load())
	}
}

func TestFetch_BodyLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	fetcher := NewFetcher(5*time.Second, "test-agent", 16, false, "", "", "")
	_, err := fetcher.Fetch(context.Background(), server.URL)
	if !errors.Is(err, model.ErrFetch) || !strings.Contains(err.Error(), "exceeds 16 bytes") {
		t.Errorf("Expected body limit error, got %v", err)
	}
}

func TestFetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lg.txt")
	if err := os.WriteFile(path, []byte("Chapter 1: Ayah 1: A"), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, source := range []string{path, "file://" + filepath.ToSlash(path)} {
		result, err := newTestFetcher().Fetch(context.Background(), source)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", source, err)
		}
		if string(result.Body) != "Chapter 1: Ayah 1: A" {
			t.Errorf("Unexpected body from %s: %q", source, result.Body)
		}
		if !strings.HasPrefix(result.Meta.ContentType, "text/plain") {
			t.Errorf("Expected text/plain content type, got %q", result.Meta.ContentType)
		}
	}

	_, err := newTestFetcher().FetchWithRetry(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, model.ErrFetch) || isRetryableFetchError(err) {
		t.Errorf("Expected permanent fetch error for missing file, got %v", err)
	}
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"503", &model.FetchError{StatusCode: 503}, true},
		{"500", &model.FetchError{StatusCode: 500}, true},
		{"502", &model.FetchError{StatusCode: 502}, true},
		{"429", &model.FetchError{StatusCode: 429}, true},
		{"404", &model.FetchError{StatusCode: 404}, false},
		{"403", &model.FetchError{StatusCode: 403}, false},
		{"401", &model.FetchError{StatusCode: 401}, false},
		{"connection refused", &model.FetchError{Err: errors.New("connection refused")}, true},
		{"wrapped", fmt.Errorf("fetch: %w", &model.FetchError{StatusCode: 502}), true},
		{"missing file", &model.FetchError{Err: os.ErrNotExist}, false},
		{"create request", errors.New("create request: invalid URL"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryableFetchError(tt.err); got != tt.retryable {
				t.Errorf("isRetryableFetchError(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestLocalPath(t *testing.T) {
	if p, ok := localPath("/tmp/lg.txt"); !ok || p != "/tmp/lg.txt" {
		t.Errorf("unexpected %q %v", p, ok)
	}
	if p, ok := localPath("file:///tmp/lg.txt"); !ok || p != filepath.FromSlash("/tmp/lg.txt") {
		t.Errorf("unexpected %q %v", p, ok)
	}
	if _, ok := localPath("https://example.com/lg.txt"); ok {
		t.Error("expected URL not to be local")
	}
}

func TestFetch_HonorsRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = fmt.Fprint(w, "User-agent: *\nCrawl-delay: 0.2\nDisallow: /private\n")
			return
		}
		_, _ = fmt.Fprint(w, "Chapter 1: Ayah 1: A")
	}))
	defer server.Close()

	f := newTestFetcher()
	f.WithRobots(util.NewRobotsChecker(f.Client(), "test-agent"))

	start := time.Now()
	if _, err := f.Fetch(context.Background(), server.URL+"/lg.txt"); err != nil {
		t.Fatalf("Expected fetch to be allowed, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Errorf("Expected crawl delay to be waited, fetch took %v", elapsed)
	}

	_, err := f.Fetch(context.Background(), server.URL+"/private/lg.txt")
	if !errors.Is(err, model.ErrFetch) || !strings.Contains(err.Error(), "robots.txt") {
		t.Errorf("Expected robots.txt refusal, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, server.URL+"/lg.txt"); err == nil {
		t.Error("Expected cancelled context to stop the crawl delay wait")
	}
}
