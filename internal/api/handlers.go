package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ppiankov/ssuula/internal/logging"
	"github.com/ppiankov/ssuula/internal/model"
	"github.com/ppiankov/ssuula/internal/quran"
)

// APIResponse is the standard response envelope
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError describes a failed request
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// APIMeta contains response metadata
type APIMeta struct {
	Total      int    `json:"total,omitempty"`
	Generation string `json:"generation,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// Verse is the wire form of a resolved verse. Text is null when no
// translation is available.
type Verse struct {
	Chapter    int     `json:"chapter"`
	Verse      int     `json:"verse"`
	Text       *string `json:"text"`
	Invocation bool    `json:"invocation,omitempty"`
}

// ChapterVerses is a chapter with its resolved verses
type ChapterVerses struct {
	quran.Chapter
	Translated int     `json:"translated"`
	Items      []Verse `json:"items"`
}

// HealthInfo is the health check response
type HealthInfo struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Uptime     string `json:"uptime"`
	Generation string `json:"generation"`
}

// ReloadResult summarises the load triggered by a reload
type ReloadResult struct {
	Generation string `json:"generation"`
	Dialect    string `json:"dialect"`
	Chapters   int    `json:"chapters"`
	Verses     int    `json:"verses"`
	Anomalies  int    `json:"anomalies"`
}

const (
	codeBadRequest  = "bad_request"
	codeNotFound    = "not_found"
	codeUnavailable = "translation_unavailable"
)

func toVerse(rv model.ResolvedVerse) Verse {
	return Verse{
		Chapter:    rv.Chapter,
		Verse:      rv.Verse,
		Text:       rv.TextOrNil(),
		Invocation: rv.Invocation,
	}
}

func toVerses(rvs []model.ResolvedVerse) []Verse {
	out := make([]Verse, len(rvs))
	for i, rv := range rvs {
		out[i] = toVerse(rv)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, HealthInfo{
		Status:     "healthy",
		Version:    s.version,
		Uptime:     time.Since(s.startTime).Round(time.Second).String(),
		Generation: s.svc.Generation().String(),
	}, 0)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	chapters := quran.All()
	s.respond(w, http.StatusOK, chapters, len(chapters))
}

func (s *Server) handleChapter(w http.ResponseWriter, r *http.Request) {
	chapter, ok := s.pathInt(w, r, "chapter")
	if !ok {
		return
	}
	info, found := quran.Lookup(chapter)
	if !found {
		s.respondError(w, http.StatusNotFound, codeNotFound, "chapter "+strconv.Itoa(chapter)+" does not exist")
		return
	}

	verses, err := s.svc.ResolveChapter(r.Context(), chapter)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}

	result := ChapterVerses{Chapter: info, Items: toVerses(verses)}
	for _, v := range verses {
		if v.Available && !v.Invocation {
			result.Translated++
		}
	}
	s.respond(w, http.StatusOK, result, len(result.Items))
}

func (s *Server) handleVerse(w http.ResponseWriter, r *http.Request) {
	chapter, ok := s.pathInt(w, r, "chapter")
	if !ok {
		return
	}
	verse, ok := s.pathInt(w, r, "verse")
	if !ok {
		return
	}

	rv, err := s.svc.Resolve(r.Context(), chapter, verse)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toVerse(rv), 0)
}

func (s *Server) handleRef(w http.ResponseWriter, r *http.Request) {
	ref, err := quran.ParseRef(r.PathValue("ref"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, codeBadRequest, err.Error())
		return
	}

	verses, err := s.svc.ResolveRange(r.Context(), ref)
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toVerses(verses), len(verses))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Translation(r.Context())
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, t.Report, 0)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	gen := s.svc.Invalidate()
	logging.InfoContext(r.Context(), "reload requested", "generation", gen.String())

	t, err := s.svc.Translation(r.Context())
	if err != nil {
		s.unavailable(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, ReloadResult{
		Generation: gen.String(),
		Dialect:    t.Report.Dialect,
		Chapters:   t.Report.Chapters,
		Verses:     t.Report.Verses,
		Anomalies:  len(t.Report.Anomalies),
	}, 0)
}

// pathInt parses a positive path number, answering 400 when it is not one
func (s *Server) pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.PathValue(name)
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		s.respondError(w, http.StatusBadRequest, codeBadRequest, "invalid "+name+": "+strconv.Quote(raw))
		return 0, false
	}
	return n, true
}

// unavailable reports a translation that could not be loaded for this generation
func (s *Server) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	logging.WarnContext(r.Context(), "translation unavailable", "error", err)

	status := http.StatusServiceUnavailable
	if ctxErr := r.Context().Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		status = http.StatusGatewayTimeout
	}
	s.write(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:      codeUnavailable,
			Message:   err.Error(),
			Retryable: model.IsRetryable(err),
		},
		Meta: s.meta(0),
	})
}

func (s *Server) respond(w http.ResponseWriter, status int, data any, total int) {
	s.write(w, status, APIResponse{Success: true, Data: data, Meta: s.meta(total)})
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.write(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    s.meta(0),
	})
}

func (s *Server) meta(total int) *APIMeta {
	return &APIMeta{
		Total:      total,
		Generation: s.svc.Generation().String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) write(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
