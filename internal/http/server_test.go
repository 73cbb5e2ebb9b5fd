package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"strafenkasse/internal/core"
	"strafenkasse/internal/metrics"
	"strafenkasse/internal/store/memory"
)

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	st := memory.New()
	srv := NewServer(":0", st, st, st, metrics.New(), opts)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv, st
}

// seedFund fills the store with a small roster, a three-offense catalog and
// a handful of penalties spread over the last days.
func seedFund(t *testing.T, st *memory.Store) (map[string]core.Player, map[string]core.PenaltyType) {
	t.Helper()
	ctx := context.Background()

	players := make(map[string]core.Player)
	for _, name := range []string{"Anton Abel", "Bernd Berg", "Carla Cremer"} {
		p, err := st.CreatePlayer(ctx, name)
		if err != nil {
			t.Fatalf("seed player %s: %v", name, err)
		}
		players[name] = p
	}

	types := make(map[string]core.PenaltyType)
	for _, tt := range []struct {
		name  string
		cents int64
	}{
		{"Zuspätkommen Training", 500},
		{"Handy klingelt", 1000},
		{"Eigentor", 0},
	} {
		pt, err := st.CreatePenaltyType(ctx, tt.name, core.Money{Cents: tt.cents}, "")
		if err != nil {
			t.Fatalf("seed type %s: %v", tt.name, err)
		}
		types[tt.name] = pt
	}

	today := core.DateOf(time.Now())
	for _, p := range []core.Penalty{
		{Date: today, PlayerID: players["Anton Abel"].ID, TypeID: types["Zuspätkommen Training"].ID, Quantity: 1},
		{Date: today, PlayerID: players["Bernd Berg"].ID, TypeID: types["Handy klingelt"].ID, Quantity: 2},
		{Date: core.Date{Time: today.AddDate(0, 0, -3)}, PlayerID: players["Bernd Berg"].ID, TypeID: types["Zuspätkommen Training"].ID, Quantity: 1, Notes: "5 Minuten"},
		{Date: core.Date{Time: today.AddDate(0, 0, -40)}, PlayerID: players["Carla Cremer"].ID, TypeID: types["Handy klingelt"].ID, Quantity: 1},
	} {
		if _, err := st.CreatePenalty(ctx, p); err != nil {
			t.Fatalf("seed penalty: %v", err)
		}
	}

	return players, types
}

func get(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func postForm(t *testing.T, srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthAndReady(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := get(t, srv, "/healthz")
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: status=%d body=%q", rr.Code, rr.Body.String())
	}
	rr = get(t, srv, "/readyz")
	if rr.Code != http.StatusOK || rr.Body.String() != "ready" {
		t.Fatalf("readyz: status=%d body=%q", rr.Code, rr.Body.String())
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options=%q", got)
	}
	if got := rr.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options=%q", got)
	}
	csp := rr.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "https://unpkg.com") {
		t.Fatalf("CSP missing chart CDN: %q", csp)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := get(t, srv, "/does-not-exist")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestRateLimitOnPosts(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	// httptest requests share one RemoteAddr, so they count as one client.
	for i := 0; i < 60; i++ {
		rr := postForm(t, srv, "/players", url.Values{"name": {""}})
		if rr.Code == http.StatusTooManyRequests {
			t.Fatalf("request %d hit the limit early", i+1)
		}
	}
	rr := postForm(t, srv, "/players", url.Values{"name": {""}})
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after the limit, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") != "60" {
		t.Fatalf("Retry-After=%q", rr.Header().Get("Retry-After"))
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	rr := postForm(t, srv, "/statistics", url.Values{})
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /statistics: expected 405, got %d", rr.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/players", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("DELETE /players: expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, "POST") {
		t.Fatalf("Allow=%q", allow)
	}
}

func TestOverviewCacheDroppedOnWrite(t *testing.T) {
	srv, st := newTestServer(t, Options{CacheTTL: time.Minute})
	players, types := seedFund(t, st)

	rr := get(t, srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), ">4</p>") {
		t.Fatalf("expected 4 penalties on the dashboard")
	}

	form := url.Values{
		"date":            {core.DateOf(time.Now()).String()},
		"player_id":       {formatID(players["Anton Abel"].ID)},
		"penalty_type_id": {formatID(types["Eigentor"].ID)},
		"quantity":        {"1"},
	}
	if rr := postForm(t, srv, "/penalties/new", form); rr.Code != http.StatusSeeOther {
		t.Fatalf("create penalty: status=%d", rr.Code)
	}

	rr = get(t, srv, "/")
	if !strings.Contains(rr.Body.String(), ">5</p>") {
		t.Fatalf("dashboard served a stale overview after a write")
	}
}
