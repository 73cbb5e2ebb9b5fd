package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"strafenkasse/internal/core"
	"strafenkasse/internal/export"
	"strafenkasse/internal/store"
)

type playerOption struct {
	ID       int64
	Name     string
	Selected bool
	Total    string
}

type penaltiesData struct {
	pageData
	Entries    []entryRow
	Players    []playerOption
	DateFrom   string
	DateTo     string
	Page       int
	TotalPages int
	Total      int
	PrevURL    string
	NextURL    string
}

// handlePenalties lists recorded penalties, newest day first, with player
// and date filters plus pagination.
func (s *Server) handlePenalties(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	page := parseIntParam(r, "page", 1)
	if page < 1 {
		page = 1
	}
	playerID := parseIDParam(r, "player")
	from, _ := parseDateParam(r, "date_from")
	to, _ := parseDateParam(r, "date_to")
	f := store.Filter{PlayerID: playerID, Range: core.DateRange{From: from, To: to}}

	entries, total, err := s.entries.ListPage(ctx, f, page, s.opts.PageSize)
	if err != nil {
		slog.ErrorContext(ctx, "Penalty listing failed", "error", err, "page", page)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	players, err := s.catalog.ListPlayers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Player listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	// All-time totals shown next to each player in the filter box.
	all, err := s.overviewFor(ctx, core.DateRange{})
	if err != nil {
		slog.ErrorContext(ctx, "Player totals failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	totals := make(map[int64]string, len(all.Players))
	for _, row := range all.Players {
		totals[row.ID] = formatMoney(row.Total)
	}

	totalPages := (total + s.opts.PageSize - 1) / s.opts.PageSize
	if totalPages < 1 {
		totalPages = 1
	}

	data := penaltiesData{
		pageData:   newPageData(r, "Strafen", "penalties"),
		Entries:    entryRows(entries),
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
	}
	if !from.IsZero() {
		data.DateFrom = from.String()
	}
	if !to.IsZero() {
		data.DateTo = to.String()
	}
	for _, p := range players {
		data.Players = append(data.Players, playerOption{
			ID:       p.ID,
			Name:     p.Name,
			Selected: p.ID == playerID,
			Total:    totals[p.ID],
		})
	}
	if page > 1 {
		data.PrevURL = penaltiesURL(page-1, playerID, from, to)
	}
	if page < totalPages {
		data.NextURL = penaltiesURL(page+1, playerID, from, to)
	}

	s.renderPage(w, r, "penalties.html", data)
}

// penaltiesURL builds a listing URL that keeps the active filters.
func penaltiesURL(page int, playerID int64, from, to core.Date) string {
	v := url.Values{}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if playerID > 0 {
		v.Set("player", strconv.FormatInt(playerID, 10))
	}
	if !from.IsZero() {
		v.Set("date_from", from.String())
	}
	if !to.IsZero() {
		v.Set("date_to", to.String())
	}
	if len(v) == 0 {
		return "/penalties"
	}
	return "/penalties?" + v.Encode()
}

type typeOption struct {
	ID     int64
	Name   string
	Amount string
}

type addPenaltyData struct {
	pageData
	Players []playerOption
	Types   []typeOption
	Today   string
}

// handleNewPenalty shows the entry form and records submitted penalties.
// Invalid submissions come back to the form with an error flash; the store
// stays untouched.
func (s *Server) handleNewPenalty(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderNewPenaltyForm(w, r)
	case http.MethodPost:
		s.createPenalty(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderNewPenaltyForm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	players, err := s.catalog.ListPlayers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Player listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	types, err := s.catalog.ListPenaltyTypes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Catalog listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := addPenaltyData{
		pageData: newPageData(r, "Neue Strafe", "new"),
		Today:    core.DateOf(time.Now()).String(),
	}
	for _, p := range players {
		data.Players = append(data.Players, playerOption{ID: p.ID, Name: p.Name})
	}
	for _, t := range types {
		data.Types = append(data.Types, typeOption{ID: t.ID, Name: t.Name, Amount: formatMoney(t.UnitAmount)})
	}

	s.renderPage(w, r, "add_penalty.html", data)
}

func (s *Server) createPenalty(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(ctx, "Parse form error", "error", err, "url", r.URL.Path)
		redirectFlash(w, r, "/penalties/new", "Fehler beim Hinzufügen der Strafe: ungültiges Formular", "error")
		return
	}

	// Fields parse leniently to zero values; validation inside the store
	// turns those into the matching domain error.
	date, _ := core.ParseDate(r.PostForm.Get("date"))
	playerID, _ := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("player_id")), 10, 64)
	typeID, _ := strconv.ParseInt(strings.TrimSpace(r.PostForm.Get("penalty_type_id")), 10, 64)
	quantity := 1
	if v := strings.TrimSpace(r.PostForm.Get("quantity")); v != "" {
		quantity, _ = strconv.Atoi(v)
	}
	notes := sanitizeInput(r.PostForm.Get("notes"))

	created, err := s.recorder.CreatePenalty(ctx, core.Penalty{
		Date:     date,
		PlayerID: playerID,
		TypeID:   typeID,
		Quantity: quantity,
		Notes:    notes,
	})
	if err != nil {
		slog.WarnContext(ctx, "Penalty rejected", "error", err, "player_id", playerID, "type_id", typeID)
		redirectFlash(w, r, "/penalties/new", "Fehler beim Hinzufügen der Strafe: "+err.Error(), "error")
		return
	}

	s.metrics.PenaltyCreated()
	s.invalidateOverviews()
	slog.InfoContext(ctx, "Penalty recorded",
		"penalty_id", created.ID,
		"player_id", playerID,
		"type_id", typeID,
		"quantity", quantity)
	redirectFlash(w, r, "/penalties", "Strafe erfolgreich hinzugefügt!", "success")
}

// handleExportCSV streams every entry as a semicolon-separated download.
func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	entries, err := s.entries.ListEntries(ctx, store.Filter{})
	if err != nil {
		slog.ErrorContext(ctx, "Export query failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteEntries(&buf, entries); err != nil {
		slog.ErrorContext(ctx, "Export encoding failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.CSVExported()
	slog.InfoContext(ctx, "CSV export served", "entries", len(entries), "bytes", buf.Len())

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="penalty_export.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = w.Write(buf.Bytes())
}
