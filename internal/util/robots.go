package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"

	"github.com/ppiankov/ssuula/internal/logging"
)

// RobotsChecker answers whether the source host's robots.txt allows a fetch.
// Rules are fetched once per host and kept for the process lifetime.
type RobotsChecker struct {
	hosts      map[string]*robotstxt.RobotsData
	mu         sync.RWMutex
	httpClient *http.Client
	userAgent  string
	agent      string // Product token matched against robots groups
}

// NewRobotsChecker creates a checker that fetches robots.txt with client
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RobotsChecker{
		hosts:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
		agent:      ProductToken(userAgent),
	}
}

// Allowed reports whether rawURL may be fetched and the crawl delay the host
// asks for. An unreachable robots.txt allows the fetch.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return true, 0, nil
	}

	data, err := r.rules(ctx, parsed)
	if err != nil {
		logging.Debug("robots.txt unavailable, allowing fetch", "host", parsed.Host, "error", err)
		return true, 0, nil
	}

	var delay time.Duration
	if group := data.FindGroup(r.agent); group != nil {
		delay = group.CrawlDelay
	}
	return data.TestAgent(parsed.EscapedPath(), r.agent), delay, nil
}

func (r *RobotsChecker) rules(ctx context.Context, target *url.URL) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, exists := r.hosts[target.Host]
	r.mu.RUnlock()
	if exists {
		return data, nil
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.hosts[target.Host] = data
	r.mu.Unlock()
	return data, nil
}

// ProductToken extracts the product name robots.txt groups are matched on,
// e.g. "Ssuula" from "Ssuula/0.1 (+https://...)"
func ProductToken(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) == 0 {
		return ua
	}
	return strings.Split(parts[0], "/")[0]
}
