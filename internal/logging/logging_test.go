package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("expected json format, got %v %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestInitLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(LevelInfo, FormatJSON, &buf)
	defer InitLogger(LevelWarn, FormatText, os.Stderr)

	ctx := WithRequestID(context.Background(), "req-1")
	InfoContext(ctx, "loaded", "verses", 3)
	Debug("hidden")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "loaded" {
		t.Errorf("expected msg 'loaded', got %v", entry["msg"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("expected request_id, got %v", entry["request_id"])
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if seen == "" || rec.Header().Get("X-Request-ID") != seen {
		t.Errorf("expected generated request id in context and header, got %q / %q", seen, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "given")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if seen != "given" {
		t.Errorf("expected incoming request id to be kept, got %q", seen)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	InitLogger(LevelInfo, FormatText, &buf)
	defer InitLogger(LevelWarn, FormatText, os.Stderr)

	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/chapters", nil))

	out := buf.String()
	if !strings.Contains(out, "status_code=418") || !strings.Contains(out, "path=/v1/chapters") {
		t.Errorf("unexpected log output: %s", out)
	}
}
