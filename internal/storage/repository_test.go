package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"strafenkasse/internal/core"
	"strafenkasse/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "strafenkasse.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func mustPlayer(t *testing.T, repo *SQLiteRepository, name string) core.Player {
	t.Helper()
	p, err := repo.CreatePlayer(context.Background(), name)
	if err != nil {
		t.Fatalf("create player %q: %v", name, err)
	}
	return p
}

func mustType(t *testing.T, repo *SQLiteRepository, name string, cents int64) core.PenaltyType {
	t.Helper()
	pt, err := repo.CreatePenaltyType(context.Background(), name, core.Money{Cents: cents}, "")
	if err != nil {
		t.Fatalf("create penalty type %q: %v", name, err)
	}
	return pt
}

func TestCreatePlayer(t *testing.T) {
	repo := newTestRepo(t)
	p := mustPlayer(t, repo, "  Anton Berger ")
	if p.ID == 0 || p.Name != "Anton Berger" {
		t.Fatalf("player = %+v", p)
	}

	if _, err := repo.CreatePlayer(context.Background(), "Anton Berger"); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := repo.CreatePlayer(context.Background(), "   "); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCreatePenaltyType(t *testing.T) {
	repo := newTestRepo(t)
	pt, err := repo.CreatePenaltyType(context.Background(), "Zu spät", core.Money{Cents: 500}, " pro Minute ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if pt.ID == 0 || pt.Description != "pro Minute" {
		t.Fatalf("type = %+v", pt)
	}

	free, err := repo.CreatePenaltyType(context.Background(), "Sonstiges", core.Money{Cents: 0}, "")
	if err != nil {
		t.Fatalf("zero amount must be storable: %v", err)
	}
	if free.UnitAmount.Cents != 0 {
		t.Fatalf("type = %+v", free)
	}

	if _, err := repo.CreatePenaltyType(context.Background(), "Zu spät", core.Money{Cents: 100}, ""); !errors.Is(err, core.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := repo.CreatePenaltyType(context.Background(), "Negativ", core.Money{Cents: -1}, ""); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCreatePenalty(t *testing.T) {
	repo := newTestRepo(t)
	player := mustPlayer(t, repo, "Anton")
	ptype := mustType(t, repo, "Zu spät", 500)

	p, err := repo.CreatePenalty(context.Background(), core.Penalty{
		Date:     core.NewDate(2025, 3, 1),
		PlayerID: player.ID,
		TypeID:   ptype.ID,
		Quantity: 3,
		Notes:    "  10 Minuten  ",
	})
	if err != nil {
		t.Fatalf("create penalty: %v", err)
	}
	if p.ID == 0 || p.CreatedAt.IsZero() {
		t.Fatalf("penalty = %+v", p)
	}

	entries, err := repo.ListEntries(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
	e := entries[0]
	if e.PlayerName != "Anton" || e.TypeName != "Zu spät" || e.UnitAmount.Cents != 500 {
		t.Fatalf("entry not resolved: %+v", e)
	}
	if e.Quantity != 3 || e.Total().Cents != 1500 {
		t.Fatalf("entry totals wrong: %+v", e)
	}
	if e.Notes != "10 Minuten" {
		t.Fatalf("notes = %q", e.Notes)
	}
	if e.Date != core.NewDate(2025, 3, 1) || e.CreatedAt.IsZero() {
		t.Fatalf("entry dates wrong: %+v", e)
	}
}

func TestCreatePenaltyUnknownReferences(t *testing.T) {
	repo := newTestRepo(t)
	player := mustPlayer(t, repo, "Anton")
	ptype := mustType(t, repo, "Zu spät", 500)

	_, err := repo.CreatePenalty(context.Background(), core.Penalty{
		Date: core.NewDate(2025, 3, 1), PlayerID: 999, TypeID: ptype.ID, Quantity: 1,
	})
	if !errors.Is(err, core.ErrPlayerNotFound) {
		t.Fatalf("expected ErrPlayerNotFound, got %v", err)
	}

	_, err = repo.CreatePenalty(context.Background(), core.Penalty{
		Date: core.NewDate(2025, 3, 1), PlayerID: player.ID, TypeID: 999, Quantity: 1,
	})
	if !errors.Is(err, core.ErrPenaltyTypeNotFound) {
		t.Fatalf("expected ErrPenaltyTypeNotFound, got %v", err)
	}

	_, err = repo.CreatePenalty(context.Background(), core.Penalty{
		Date: core.NewDate(2025, 3, 1), PlayerID: player.ID, TypeID: ptype.ID, Quantity: 0,
	})
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestListPlayersSorted(t *testing.T) {
	repo := newTestRepo(t)
	mustPlayer(t, repo, "Zara")
	mustPlayer(t, repo, "Anton")
	mustPlayer(t, repo, "Mia")

	players, err := repo.ListPlayers(context.Background())
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 3 || players[0].Name != "Anton" || players[2].Name != "Zara" {
		t.Fatalf("players = %+v", players)
	}
}

func TestListEntriesFilterAndOrder(t *testing.T) {
	repo := newTestRepo(t)
	anton := mustPlayer(t, repo, "Anton")
	bernd := mustPlayer(t, repo, "Bernd")
	ptype := mustType(t, repo, "Zu spät", 500)

	add := func(day int, playerID int64) int64 {
		t.Helper()
		p, err := repo.CreatePenalty(context.Background(), core.Penalty{
			Date: core.NewDate(2025, 3, day), PlayerID: playerID, TypeID: ptype.ID, Quantity: 1,
		})
		if err != nil {
			t.Fatalf("create penalty: %v", err)
		}
		return p.ID
	}
	first := add(5, anton.ID)
	add(1, bernd.ID)
	third := add(5, bernd.ID)

	entries, err := repo.ListEntries(context.Background(), store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].ID != third || entries[1].ID != first {
		t.Fatalf("order wrong: %d %d %d", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	byPlayer, err := repo.ListEntries(context.Background(), store.Filter{PlayerID: bernd.ID})
	if err != nil {
		t.Fatalf("list by player: %v", err)
	}
	if len(byPlayer) != 2 {
		t.Fatalf("player filter: len = %d", len(byPlayer))
	}

	ranged, err := repo.ListEntries(context.Background(), store.Filter{
		Range: core.DateRange{From: core.NewDate(2025, 3, 2), To: core.NewDate(2025, 3, 31)},
	})
	if err != nil {
		t.Fatalf("list by range: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("range filter: len = %d", len(ranged))
	}
}

func TestListPage(t *testing.T) {
	repo := newTestRepo(t)
	player := mustPlayer(t, repo, "Anton")
	ptype := mustType(t, repo, "Zu spät", 500)
	for day := 1; day <= 5; day++ {
		if _, err := repo.CreatePenalty(context.Background(), core.Penalty{
			Date: core.NewDate(2025, 4, day), PlayerID: player.ID, TypeID: ptype.ID, Quantity: 1,
		}); err != nil {
			t.Fatalf("create penalty: %v", err)
		}
	}

	page1, total, err := repo.ListPage(context.Background(), store.Filter{}, 1, 2)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 5 || len(page1) != 2 || page1[0].Date != core.NewDate(2025, 4, 5) {
		t.Fatalf("page 1: total=%d len=%d first=%s", total, len(page1), page1[0].Date)
	}

	page3, total, err := repo.ListPage(context.Background(), store.Filter{}, 3, 2)
	if err != nil {
		t.Fatalf("page 3: %v", err)
	}
	if total != 5 || len(page3) != 1 {
		t.Fatalf("last page: total=%d len=%d", total, len(page3))
	}

	past, _, err := repo.ListPage(context.Background(), store.Filter{}, 7, 2)
	if err != nil {
		t.Fatalf("page 7: %v", err)
	}
	if len(past) != 0 {
		t.Fatalf("page past the end must be empty, len = %d", len(past))
	}
}

func TestListRecent(t *testing.T) {
	repo := newTestRepo(t)
	player := mustPlayer(t, repo, "Anton")
	ptype := mustType(t, repo, "Zu spät", 500)
	// dated out of order on purpose: recency follows insert order
	var last int64
	for _, day := range []int{20, 5, 12} {
		p, err := repo.CreatePenalty(context.Background(), core.Penalty{
			Date: core.NewDate(2025, 4, day), PlayerID: player.ID, TypeID: ptype.ID, Quantity: 1,
		})
		if err != nil {
			t.Fatalf("create penalty: %v", err)
		}
		last = p.ID
	}

	recent, err := repo.ListRecent(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != last {
		t.Fatalf("recent = %+v", recent)
	}
	if recent[0].Date != core.NewDate(2025, 4, 12) {
		t.Fatalf("recency must follow insert order, got %s", recent[0].Date)
	}
}

func TestSeedIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	types := []core.PenaltyType{
		{Name: "Zu spät", UnitAmount: core.Money{Cents: 500}, Description: "pro Minute"},
		{Name: "Sonstiges", UnitAmount: core.Money{Cents: 0}},
	}
	if err := repo.Seed(context.Background(), []string{"Anton", "Bernd"}, types); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := repo.Seed(context.Background(), []string{"Carla"}, types); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	players, err := repo.ListPlayers(context.Background())
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("second seed must not touch filled tables, players = %+v", players)
	}
	got, err := repo.ListPenaltyTypes(context.Background())
	if err != nil {
		t.Fatalf("list types: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("types = %+v", got)
	}
}
