package http

import (
	"errors"
	"log/slog"
	"net/http"

	"strafenkasse/internal/core"
)

type playerRow struct {
	Name  string
	Count int
	Total string
}

type playersData struct {
	pageData
	Players []playerRow
}

// handlePlayers manages the roster: the full list with all-time totals on
// GET, a new player on POST.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPlayers(w, r)
	case http.MethodPost:
		s.createPlayer(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderPlayers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	players, err := s.catalog.ListPlayers(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Player listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	all, err := s.overviewFor(ctx, core.DateRange{})
	if err != nil {
		slog.ErrorContext(ctx, "Player totals failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	type tally struct {
		count int
		total core.Money
	}
	tallies := make(map[int64]tally, len(all.Players))
	for _, row := range all.Players {
		tallies[row.ID] = tally{count: row.Count, total: row.Total}
	}

	data := playersData{pageData: newPageData(r, "Spieler", "players")}
	for _, p := range players {
		t := tallies[p.ID]
		data.Players = append(data.Players, playerRow{
			Name:  p.Name,
			Count: t.count,
			Total: formatMoney(t.total),
		})
	}

	s.renderPage(w, r, "players.html", data)
}

func (s *Server) createPlayer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(ctx, "Parse form error", "error", err, "url", r.URL.Path)
		redirectFlash(w, r, "/players", "Name ist erforderlich!", "error")
		return
	}

	name := sanitizeInput(r.PostForm.Get("name"))
	if name == "" {
		redirectFlash(w, r, "/players", "Name ist erforderlich!", "error")
		return
	}

	player, err := s.recorder.CreatePlayer(ctx, name)
	switch {
	case errors.Is(err, core.ErrDuplicateName):
		redirectFlash(w, r, "/players", "Spieler existiert bereits!", "warning")
		return
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrNameTooLong):
		redirectFlash(w, r, "/players", "Name ist erforderlich!", "error")
		return
	case err != nil:
		slog.ErrorContext(ctx, "Player create failed", "error", err, "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.PlayerCreated()
	s.invalidateOverviews()
	slog.InfoContext(ctx, "Player added", "player_id", player.ID, "name", player.Name)
	redirectFlash(w, r, "/players", "Spieler erfolgreich hinzugefügt!", "success")
}

type typeRow struct {
	Name        string
	Amount      string
	Description string
}

type typesData struct {
	pageData
	Types []typeRow
}

// handlePenaltyTypes manages the catalog: the list on GET, a new offense
// on POST. Zero amounts are allowed, some offenses carry a symbolic price.
func (s *Server) handlePenaltyTypes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderPenaltyTypes(w, r)
	case http.MethodPost:
		s.createPenaltyType(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderPenaltyTypes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	types, err := s.catalog.ListPenaltyTypes(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Catalog listing failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := typesData{pageData: newPageData(r, "Vergehen", "types")}
	for _, t := range types {
		data.Types = append(data.Types, typeRow{
			Name:        t.Name,
			Amount:      formatMoney(t.UnitAmount),
			Description: t.Description,
		})
	}

	s.renderPage(w, r, "penalty_types.html", data)
}

func (s *Server) createPenaltyType(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(ctx, "Parse form error", "error", err, "url", r.URL.Path)
		redirectFlash(w, r, "/penalty-types", "Ungültiger Betrag!", "error")
		return
	}

	amount, err := core.ParseAmount(r.PostForm.Get("amount"))
	if err != nil {
		redirectFlash(w, r, "/penalty-types", "Ungültiger Betrag!", "error")
		return
	}
	name := sanitizeInput(r.PostForm.Get("name"))
	if name == "" {
		redirectFlash(w, r, "/penalty-types", "Name ist erforderlich!", "error")
		return
	}
	description := sanitizeInput(r.PostForm.Get("description"))

	created, err := s.recorder.CreatePenaltyType(ctx, name, amount, description)
	switch {
	case errors.Is(err, core.ErrDuplicateName):
		redirectFlash(w, r, "/penalty-types", "Vergehen existiert bereits!", "warning")
		return
	case errors.Is(err, core.ErrEmptyName), errors.Is(err, core.ErrNameTooLong):
		redirectFlash(w, r, "/penalty-types", "Name ist erforderlich!", "error")
		return
	case errors.Is(err, core.ErrInvalidAmount):
		redirectFlash(w, r, "/penalty-types", "Ungültiger Betrag!", "error")
		return
	case err != nil:
		slog.ErrorContext(ctx, "Penalty type create failed", "error", err, "name", name)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.metrics.PenaltyTypeCreated()
	s.invalidateOverviews()
	slog.InfoContext(ctx, "Penalty type added", "type_id", created.ID, "name", created.Name, "amount_cents", created.UnitAmount.Cents)
	redirectFlash(w, r, "/penalty-types", "Vergehen erfolgreich hinzugefügt!", "success")
}
