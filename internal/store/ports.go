// Package store defines the ports the HTTP layer and the CLI depend on.
// Implementations live in storage (SQLite) and store/memory.
package store

import (
	"context"

	"strafenkasse/internal/core"
)

// Filter narrows entry listings. Zero values leave a dimension open.
type Filter struct {
	PlayerID int64
	Range    core.DateRange
}

// Ports for the persistence adapters.
type (
	// Recorder appends to the fund. All three creates validate their input
	// and return the stored value with its assigned ID.
	Recorder interface {
		CreatePlayer(ctx context.Context, name string) (core.Player, error)
		CreatePenaltyType(ctx context.Context, name string, unit core.Money, description string) (core.PenaltyType, error)
		CreatePenalty(ctx context.Context, p core.Penalty) (core.Penalty, error)
	}

	// Catalog lists the master data, ordered by name ascending.
	Catalog interface {
		ListPlayers(ctx context.Context) ([]core.Player, error)
		ListPenaltyTypes(ctx context.Context) ([]core.PenaltyType, error)
	}

	// EntryLister returns resolved entries, newest day first, newer record
	// first within a day.
	EntryLister interface {
		ListEntries(ctx context.Context, f Filter) ([]core.Entry, error)
		// ListPage returns one page plus the total match count. Pages are
		// 1-based; a page past the end comes back empty.
		ListPage(ctx context.Context, f Filter, page, pageSize int) ([]core.Entry, int, error)
		// ListRecent returns the most recently recorded entries, newest
		// record first, regardless of penalty date.
		ListRecent(ctx context.Context, limit int) ([]core.Entry, error)
	}

	// Seeder loads master data into an empty store. Tables that already
	// hold rows are left alone.
	Seeder interface {
		Seed(ctx context.Context, players []string, types []core.PenaltyType) error
	}
)
