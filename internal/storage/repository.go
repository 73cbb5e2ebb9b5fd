// Package storage is the SQLite persistence adapter. It implements the
// store ports with hand-written SQL over modernc.org/sqlite and keeps the
// schema current through embedded golang-migrate migrations.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"strafenkasse/internal/core"
	"strafenkasse/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// _pragma applies per connection, so every pooled connection enforces
	// foreign keys.
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreatePlayer implements store.Recorder.
func (r *SQLiteRepository) CreatePlayer(ctx context.Context, name string) (core.Player, error) {
	name, err := core.NormalizeName(name, core.MaxPlayerNameLen)
	if err != nil {
		return core.Player{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO players (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return core.Player{}, fmt.Errorf("create player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.Player{}, fmt.Errorf("create player: %w", err)
	}
	if affected == 0 {
		return core.Player{}, core.ErrDuplicateName
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Player{}, fmt.Errorf("create player: %w", err)
	}

	return core.Player{ID: id, Name: name}, nil
}

// CreatePenaltyType implements store.Recorder.
func (r *SQLiteRepository) CreatePenaltyType(ctx context.Context, name string, unit core.Money, description string) (core.PenaltyType, error) {
	name, err := core.NormalizeName(name, core.MaxTypeNameLen)
	if err != nil {
		return core.PenaltyType{}, err
	}
	t := core.PenaltyType{Name: name, UnitAmount: unit, Description: strings.TrimSpace(description)}
	if err := t.Validate(); err != nil {
		return core.PenaltyType{}, err
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO penalty_types (name, amount_cents, description) VALUES (?, ?, ?) ON CONFLICT (name) DO NOTHING`,
		t.Name, t.UnitAmount.Cents, t.Description)
	if err != nil {
		return core.PenaltyType{}, fmt.Errorf("create penalty type: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return core.PenaltyType{}, fmt.Errorf("create penalty type: %w", err)
	}
	if affected == 0 {
		return core.PenaltyType{}, core.ErrDuplicateName
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return core.PenaltyType{}, fmt.Errorf("create penalty type: %w", err)
	}

	return t, nil
}

// CreatePenalty implements store.Recorder. References are checked up front
// so callers get the sentinel errors instead of a driver constraint error.
func (r *SQLiteRepository) CreatePenalty(ctx context.Context, p core.Penalty) (core.Penalty, error) {
	if err := p.Validate(); err != nil {
		return core.Penalty{}, err
	}
	if err := r.exists(ctx, "players", p.PlayerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Penalty{}, core.ErrPlayerNotFound
		}
		return core.Penalty{}, fmt.Errorf("check player: %w", err)
	}
	if err := r.exists(ctx, "penalty_types", p.TypeID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Penalty{}, core.ErrPenaltyTypeNotFound
		}
		return core.Penalty{}, fmt.Errorf("check penalty type: %w", err)
	}

	p.Notes = strings.TrimSpace(p.Notes)
	p.CreatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO penalties (date, player_id, penalty_type_id, quantity, notes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Date.String(), p.PlayerID, p.TypeID, p.Quantity, p.Notes, p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Penalty{}, fmt.Errorf("create penalty: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return core.Penalty{}, fmt.Errorf("create penalty: %w", err)
	}

	slog.InfoContext(ctx, "Penalty saved",
		"id", p.ID,
		"date", p.Date.String(),
		"player_id", p.PlayerID,
		"penalty_type_id", p.TypeID,
		"quantity", p.Quantity)

	return p, nil
}

// ListPlayers implements store.Catalog.
func (r *SQLiteRepository) ListPlayers(ctx context.Context) ([]core.Player, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM players ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var out []core.Player
	for rows.Next() {
		var p core.Player
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return out, nil
}

// ListPenaltyTypes implements store.Catalog.
func (r *SQLiteRepository) ListPenaltyTypes(ctx context.Context) ([]core.PenaltyType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, amount_cents, description FROM penalty_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list penalty types: %w", err)
	}
	defer rows.Close()

	var out []core.PenaltyType
	for rows.Next() {
		var t core.PenaltyType
		if err := rows.Scan(&t.ID, &t.Name, &t.UnitAmount.Cents, &t.Description); err != nil {
			return nil, fmt.Errorf("scan penalty type: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list penalty types: %w", err)
	}
	return out, nil
}

const entrySelect = `
SELECT p.id, p.date, p.player_id, pl.name, p.penalty_type_id, t.name, t.amount_cents, p.quantity, p.notes, p.created_at
FROM penalties p
JOIN players pl ON pl.id = p.player_id
JOIN penalty_types t ON t.id = p.penalty_type_id`

// ListEntries implements store.EntryLister.
func (r *SQLiteRepository) ListEntries(ctx context.Context, f store.Filter) ([]core.Entry, error) {
	where, args := buildWhere(f)
	rows, err := r.db.QueryContext(ctx, entrySelect+where+` ORDER BY p.date DESC, p.id DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// ListPage implements store.EntryLister.
func (r *SQLiteRepository) ListPage(ctx context.Context, f store.Filter, page, pageSize int) ([]core.Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}
	where, args := buildWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM penalties p`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	pageArgs := append(args, pageSize, (page-1)*pageSize)
	rows, err := r.db.QueryContext(ctx,
		entrySelect+where+` ORDER BY p.date DESC, p.id DESC LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list entry page: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListRecent implements store.EntryLister. Recency follows the insert
// timestamp, not the penalty date.
func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Entry, error) {
	if limit < 1 {
		limit = 1
	}
	rows, err := r.db.QueryContext(ctx, entrySelect+` ORDER BY p.created_at DESC, p.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteRepository) exists(ctx context.Context, table string, id int64) error {
	var one int
	return r.db.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
}

func buildWhere(f store.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.PlayerID != 0 {
		conds = append(conds, "p.player_id = ?")
		args = append(args, f.PlayerID)
	}
	if !f.Range.From.IsZero() {
		conds = append(conds, "p.date >= ?")
		args = append(args, f.Range.From.String())
	}
	if !f.Range.To.IsZero() {
		conds = append(conds, "p.date <= ?")
		args = append(args, f.Range.To.String())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanEntries(rows *sql.Rows) ([]core.Entry, error) {
	var out []core.Entry
	for rows.Next() {
		var (
			e       core.Entry
			date    string
			created string
		)
		if err := rows.Scan(&e.ID, &date, &e.PlayerID, &e.PlayerName, &e.TypeID, &e.TypeName,
			&e.UnitAmount.Cents, &e.Quantity, &e.Notes, &created); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		var err error
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("entry %d has malformed date %q", e.ID, date)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("entry %d has malformed timestamp %q", e.ID, created)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}
