package pipeline

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/ssuula/internal/logging"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/util"
	"github.com/ppiankov/ssuula/internal/worker"
)

// fetchSleepFunc is swapped out in tests to skip retry backoff
var fetchSleepFunc = time.Sleep

// defaultAttempts is how many times FetchWithRetry tries a retryable failure
const defaultAttempts = 3

// Fetcher retrieves the translation document from a URL or a local path
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int
	limiter    *worker.Limiter
	robots     *util.RobotsChecker
}

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, insecureTLS bool, httpProxy, httpsProxy, noProxy string) *Fetcher {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(httpProxy, httpsProxy, noProxy)
	if insecureTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via http.insecure_tls
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
		attempts:  defaultAttempts,
		limiter:   worker.NewLimiter(0, 1),
	}
}

// WithLimiter spaces requests per host. A nil limiter leaves requests unlimited.
func (f *Fetcher) WithLimiter(l *worker.Limiter) *Fetcher {
	if l != nil {
		f.limiter = l
	}
	return f
}

// WithRobots makes every HTTP fetch consult the host's robots.txt
func (f *Fetcher) WithRobots(r *util.RobotsChecker) *Fetcher {
	f.robots = r
	return f
}

// WithAttempts sets how many attempts FetchWithRetry makes
func (f *Fetcher) WithAttempts(n int) *Fetcher {
	if n > 0 {
		f.attempts = n
	}
	return f
}

// Client returns the HTTP client, for helpers that must share its transport
func (f *Fetcher) Client() *http.Client {
	return f.httpClient
}

// FetchResult contains the fetched bytes and metadata
type FetchResult struct {
	Body      []byte
	Meta      model.FetchMeta
	FinalURL  string
	FetchedAt time.Time
}

// Fetch retrieves the document once. Non-2xx statuses and transport failures
// return *model.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, source string) (*FetchResult, error) {
	if path, ok := localPath(source); ok {
		return f.readLocal(path)
	}

	var crawlDelay time.Duration
	if f.robots != nil {
		allowed, delay, err := f.robots.Allowed(ctx, source)
		if err != nil {
			return nil, &model.FetchError{URL: source, Err: err}
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s is disallowed by robots.txt", model.ErrFetch, source)
		}
		if delay > 0 {
			logging.Debug("honoring robots.txt crawl delay", "url", source, "delay", delay)
			crawlDelay = delay
		}
	}

	if err := f.limiter.WaitWithDelay(ctx, source, crawlDelay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/plain,text/html;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: source, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	meta := model.FetchMeta{
		StatusCode:   resp.StatusCode,
		ContentType:  resp.Header.Get("Content-Type"),
		LastModified: resp.Header.Get("Last-Modified"),
		ETag:         resp.Header.Get("ETag"),
		Headers:      make(map[string]string),
	}

	// Store selected headers
	for _, key := range []string{"Content-Length", "Server", "Cache-Control"} {
		if val := resp.Header.Get(key); val != "" {
			meta.Headers[key] = val
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.FetchError{URL: source, StatusCode: resp.StatusCode}
	}

	body, err := f.readLimited(resp.Body)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:      body,
		Meta:      meta,
		FinalURL:  resp.Request.URL.String(),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// FetchWithRetry fetches with exponential backoff. Transport failures, 429 and
// 5xx are retried; other failures return immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, source string) (*FetchResult, error) {
	var lastErr error
	for attempt := 0; attempt < f.attempts; attempt++ {
		result, err := f.Fetch(ctx, source)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == f.attempts-1 {
			break
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		backoff := time.Duration(1<<attempt) * time.Second
		logging.Warn("fetch failed, retrying", "url", source, "attempt", attempt+1, "backoff", backoff, "error", err)
		fetchSleepFunc(backoff)
	}
	return nil, lastErr
}

func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var fe *model.FetchError
	if errors.As(err, &fe) {
		return fe.Retryable()
	}
	return false
}

func (f *Fetcher) readLimited(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		body, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: read body: %v", model.ErrFetch, err)
		}
		return body, nil
	}

	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", model.ErrFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", model.ErrFetch, f.maxBytes)
	}
	return body, nil
}

func (f *Fetcher) readLocal(path string) (*FetchResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &model.FetchError{URL: path, Err: err}
	}
	defer func() { _ = file.Close() }()

	body, err := f.readLimited(file)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:      body,
		Meta:      model.FetchMeta{ContentType: mime.TypeByExtension(filepath.Ext(path))},
		FinalURL:  "file://" + filepath.ToSlash(path),
		FetchedAt: time.Now().UTC(),
	}, nil
}

// localPath reports whether source names a file rather than an HTTP URL
func localPath(source string) (string, bool) {
	if strings.HasPrefix(source, "file://") {
		u, err := url.Parse(source)
		if err != nil {
			return strings.TrimPrefix(source, "file://"), true
		}
		return filepath.FromSlash(u.Path), true
	}
	if !strings.Contains(source, "://") {
		return source, true
	}
	return "", false
}
