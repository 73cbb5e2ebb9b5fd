package http

import (
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"strafenkasse/internal/core"
)

type statisticsData struct {
	pageData
	DateFrom    string
	DateTo      string
	TotalAmount string
	TotalCount  int
	AvgAmount   string
	MaxAmount   string
	Players     []rankRow
	Types       []rankRow
	ChartJSON   template.JS
}

// handleStatistics renders the analysis page over a selectable date range,
// defaulting to the last quarter. Rankings are unbounded here, unlike the
// dashboard top list.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	now := time.Now()
	from, ok := parseDateParam(r, "date_from")
	if !ok {
		from = core.Date{Time: core.DateOf(now).AddDate(0, 0, -s.opts.StatsDays)}
	}
	to, ok := parseDateParam(r, "date_to")
	if !ok {
		to = core.DateOf(now)
	}
	rng := core.DateRange{From: from, To: to}

	ov, err := s.overviewFor(ctx, rng)
	if err != nil {
		slog.ErrorContext(ctx, "Statistics overview failed", "error", err, "from", from.String(), "to", to.String())
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := statisticsData{
		pageData:    newPageData(r, "Statistik", "statistics"),
		DateFrom:    from.String(),
		DateTo:      to.String(),
		TotalAmount: formatMoney(ov.Summary.Total),
		TotalCount:  ov.Summary.Count,
		AvgAmount:   formatMoney(ov.Summary.Average),
		MaxAmount:   formatMoney(ov.Summary.Max),
		Players:     rankRows(ov.Players, 0),
		Types:       rankRows(ov.Types, 0),
		ChartJSON:   chartJSON(ov.Series),
	}
	s.renderPage(w, r, "statistics.html", data)
}
