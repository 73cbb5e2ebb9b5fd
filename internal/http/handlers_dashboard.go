package http

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"strafenkasse/internal/core"
	"strafenkasse/internal/stats"
	"strafenkasse/internal/store"
)

type dashboardData struct {
	pageData
	TotalCount  int
	TotalAmount string
	Recent      []entryRow
	TopPlayers  []rankRow
	ChartDays   int
	ChartJSON   template.JS
}

// handleDashboard renders the start page: fund totals, the latest entries,
// the top players and the cumulative chart over the last weeks.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	// The three reads are independent of each other, so they run concurrently.
	var (
		all      stats.Overview
		recent   []core.Entry
		lastDays stats.Overview
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.overviewFor(gCtx, core.DateRange{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.entries.ListRecent(gCtx, s.opts.RecentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		lastDays, err = s.overviewFor(gCtx, core.LastDays(time.Now(), s.opts.DashboardDays))
		return err
	})
	if err := g.Wait(); err != nil {
		slog.ErrorContext(ctx, "Dashboard queries failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		pageData:    newPageData(r, "Dashboard", "dashboard"),
		TotalCount:  all.Summary.Count,
		TotalAmount: formatMoney(all.Summary.Total),
		Recent:      entryRows(recent),
		TopPlayers:  rankRows(all.Players, s.opts.TopLimit),
		ChartDays:   s.opts.DashboardDays,
		ChartJSON:   chartJSON(lastDays.Series),
	}
	s.renderPage(w, r, "dashboard.html", data)
}

// handleChartData serves daily sums as JSON for the frontend charts.
// Accepts days (default 30, capped at 365) and an optional player_id.
func (s *Server) handleChartData(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	days := parseIntParam(r, "days", s.opts.DashboardDays)
	if days < 1 {
		days = 1
	}
	if days > 365 {
		days = 365
	}
	f := store.Filter{
		PlayerID: parseIDParam(r, "player_id"),
		Range:    core.LastDays(time.Now(), days),
	}

	entries, err := s.entries.ListEntries(r.Context(), f)
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart data query failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	series := stats.DailySeries(entries, core.DateRange{})
	payload := struct {
		Dates   []string  `json:"dates"`
		Amounts []float64 `json:"amounts"`
	}{
		Dates:   make([]string, 0, len(series)),
		Amounts: make([]float64, 0, len(series)),
	}
	for _, p := range series {
		payload.Dates = append(payload.Dates, p.Date.String())
		payload.Amounts = append(payload.Amounts, p.Daily.Euros())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.ErrorContext(r.Context(), "Chart data encode failed", "error", err)
	}
}
