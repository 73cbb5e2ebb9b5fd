package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"strafenkasse/internal/core"
)

// pageData is the shared part of every view model: nav highlighting and the
// flash banner carried over from the previous redirect.
type pageData struct {
	Title     string
	Active    string
	Flash     string
	FlashKind string
}

func newPageData(r *http.Request, title, active string) pageData {
	q := r.URL.Query()
	kind := q.Get("kind")
	switch kind {
	case "success", "warning", "error":
	default:
		kind = "success"
	}
	return pageData{
		Title:     title,
		Active:    active,
		Flash:     q.Get("flash"),
		FlashKind: kind,
	}
}

// redirectFlash sends a see-other redirect carrying a flash message in the
// query, the stateless stand-in for server-side flash sessions.
func redirectFlash(w http.ResponseWriter, r *http.Request, target, msg, kind string) {
	v := url.Values{}
	v.Set("flash", msg)
	v.Set("kind", kind)
	http.Redirect(w, r, target+"?"+v.Encode(), http.StatusSeeOther)
}

// renderPage executes one of the embedded page templates.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.ErrorContext(r.Context(), "Template execution failed", "error", err, "template", name)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// parseDateParam reads an ISO date from the query. Missing or malformed
// values are ignored so a hand-edited URL never breaks a listing page.
func parseDateParam(r *http.Request, name string) (core.Date, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return core.Date{}, false
	}
	d, err := core.ParseDate(v)
	if err != nil {
		slog.DebugContext(r.Context(), "Ignoring malformed date parameter", "name", name, "value", v)
		return core.Date{}, false
	}
	return d, true
}

// parseIntParam reads an integer query parameter, falling back to def.
func parseIntParam(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// parseIDParam reads a row ID from the query, zero when absent or invalid.
func parseIDParam(r *http.Request, name string) int64 {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return 0
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// formatEuros formats cents in the German display form used across the
// templates (12,34 €).
func formatEuros(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := strconv.FormatInt(cents/100, 10) + "," + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-" + s + " €"
	}
	return s + " €"
}

func formatMoney(m core.Money) string {
	return formatEuros(m.Cents)
}

// formatDay renders a date the way the pages show it (23.08.2026).
func formatDay(d core.Date) string {
	return d.Format("02.01.2006")
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}
