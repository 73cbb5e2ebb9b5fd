// Package memory is an in-process store used by tests and by the
// DATA_BACKEND=memory mode. It implements the same ports as the SQLite
// repository, including ordering and duplicate semantics.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"strafenkasse/internal/core"
	"strafenkasse/internal/store"
)

type Store struct {
	mu      sync.Mutex
	players []core.Player
	types   []core.PenaltyType
	entries []core.Entry

	nextPlayerID  int64
	nextTypeID    int64
	nextPenaltyID int64

	// now is swappable so tests get deterministic CreatedAt stamps.
	now func() time.Time
}

func New() *Store {
	return &Store{
		nextPlayerID:  1,
		nextTypeID:    1,
		nextPenaltyID: 1,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) CreatePlayer(_ context.Context, name string) (core.Player, error) {
	name, err := core.NormalizeName(name, core.MaxPlayerNameLen)
	if err != nil {
		return core.Player{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Name == name {
			return core.Player{}, core.ErrDuplicateName
		}
	}
	p := core.Player{ID: s.nextPlayerID, Name: name}
	s.nextPlayerID++
	s.players = append(s.players, p)
	return p, nil
}

func (s *Store) CreatePenaltyType(_ context.Context, name string, unit core.Money, description string) (core.PenaltyType, error) {
	name, err := core.NormalizeName(name, core.MaxTypeNameLen)
	if err != nil {
		return core.PenaltyType{}, err
	}
	t := core.PenaltyType{Name: name, UnitAmount: unit, Description: strings.TrimSpace(description)}
	if err := t.Validate(); err != nil {
		return core.PenaltyType{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.types {
		if existing.Name == name {
			return core.PenaltyType{}, core.ErrDuplicateName
		}
	}
	t.ID = s.nextTypeID
	s.nextTypeID++
	s.types = append(s.types, t)
	return t, nil
}

func (s *Store) CreatePenalty(_ context.Context, p core.Penalty) (core.Penalty, error) {
	if err := p.Validate(); err != nil {
		return core.Penalty{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	player, ok := s.playerByID(p.PlayerID)
	if !ok {
		return core.Penalty{}, core.ErrPlayerNotFound
	}
	ptype, ok := s.typeByID(p.TypeID)
	if !ok {
		return core.Penalty{}, core.ErrPenaltyTypeNotFound
	}
	p.ID = s.nextPenaltyID
	s.nextPenaltyID++
	p.Notes = strings.TrimSpace(p.Notes)
	p.CreatedAt = s.now()
	s.entries = append(s.entries, core.Entry{
		ID:         p.ID,
		Date:       p.Date,
		PlayerID:   player.ID,
		PlayerName: player.Name,
		TypeID:     ptype.ID,
		TypeName:   ptype.Name,
		UnitAmount: ptype.UnitAmount,
		Quantity:   p.Quantity,
		Notes:      p.Notes,
		CreatedAt:  p.CreatedAt,
	})
	return p, nil
}

func (s *Store) ListPlayers(_ context.Context) ([]core.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Player(nil), s.players...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListPenaltyTypes(_ context.Context) ([]core.PenaltyType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.PenaltyType(nil), s.types...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListEntries(_ context.Context, f store.Filter) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match(f), nil
}

func (s *Store) ListPage(_ context.Context, f store.Filter, page, pageSize int) ([]core.Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.match(f)
	total := len(all)
	start := (page - 1) * pageSize
	if start >= total {
		return nil, total, nil
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return all[start:end], total, nil
}

func (s *Store) ListRecent(_ context.Context, limit int) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Entry(nil), s.entries...)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Seed fills empty tables with master data. A table that already has rows
// keeps them untouched, matching the SQLite repository.
func (s *Store) Seed(ctx context.Context, players []string, types []core.PenaltyType) error {
	s.mu.Lock()
	seedPlayers := len(s.players) == 0
	seedTypes := len(s.types) == 0
	s.mu.Unlock()

	if seedPlayers {
		for _, name := range players {
			if _, err := s.CreatePlayer(ctx, name); err != nil && err != core.ErrDuplicateName {
				return err
			}
		}
	}
	if seedTypes {
		for _, t := range types {
			if _, err := s.CreatePenaltyType(ctx, t.Name, t.UnitAmount, t.Description); err != nil && err != core.ErrDuplicateName {
				return err
			}
		}
	}
	return nil
}

// match filters and orders under the lock: day descending, then ID
// descending within a day.
func (s *Store) match(f store.Filter) []core.Entry {
	out := make([]core.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if f.PlayerID != 0 && e.PlayerID != f.PlayerID {
			continue
		}
		if !f.Range.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[j].Date.Before(out[i].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (s *Store) playerByID(id int64) (core.Player, bool) {
	for _, p := range s.players {
		if p.ID == id {
			return p, true
		}
	}
	return core.Player{}, false
}

func (s *Store) typeByID(id int64) (core.PenaltyType, bool) {
	for _, t := range s.types {
		if t.ID == id {
			return t, true
		}
	}
	return core.PenaltyType{}, false
}
