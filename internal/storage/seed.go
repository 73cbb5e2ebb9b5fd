package storage

import (
	"context"
	"fmt"
	"log/slog"

	"strafenkasse/internal/core"
)

// Seed implements store.Seeder. Each table is filled only when it is still
// empty, so restarting the server never duplicates master data.
func (r *SQLiteRepository) Seed(ctx context.Context, players []string, types []core.PenaltyType) error {
	n, err := r.count(ctx, "players")
	if err != nil {
		return err
	}
	if n == 0 && len(players) > 0 {
		if err := r.seedPlayers(ctx, players); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Seeded players", "count", len(players))
	}

	n, err = r.count(ctx, "penalty_types")
	if err != nil {
		return err
	}
	if n == 0 && len(types) > 0 {
		if err := r.seedPenaltyTypes(ctx, types); err != nil {
			return err
		}
		slog.InfoContext(ctx, "Seeded penalty catalog", "count", len(types))
	}

	return nil
}

func (r *SQLiteRepository) seedPlayers(ctx context.Context, players []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed players: %w", err)
	}
	defer tx.Rollback()

	for _, name := range players {
		name, err := core.NormalizeName(name, core.MaxPlayerNameLen)
		if err != nil {
			return fmt.Errorf("seed player %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO players (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name); err != nil {
			return fmt.Errorf("seed player %q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed players: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) seedPenaltyTypes(ctx context.Context, types []core.PenaltyType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed penalty types: %w", err)
	}
	defer tx.Rollback()

	for _, t := range types {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("seed penalty type %q: %w", t.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO penalty_types (name, amount_cents, description) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`,
			t.Name, t.UnitAmount.Cents, t.Description); err != nil {
			return fmt.Errorf("seed penalty type %q: %w", t.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed penalty types: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
