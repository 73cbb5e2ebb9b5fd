package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxPlayerNameLen and MaxTypeNameLen mirror the column widths in the
	// relational schema.
	MaxPlayerNameLen = 100
	MaxTypeNameLen   = 200
	MaxNotesLen      = 1000
)

type (
	// Date is a calendar day. The wall-clock part is always midnight UTC, so
	// values built through NewDate or ParseDate compare with ==.
	Date struct {
		time.Time
	}

	// DateRange is an inclusive [From, To] window. A zero bound leaves that
	// side of the window open.
	DateRange struct {
		From Date
		To   Date
	}

	Money struct {
		Cents int64
	}

	Player struct {
		ID   int64
		Name string
	}

	// PenaltyType is one row of the penalty catalog. UnitAmount may be zero:
	// some offenses carry a negotiated or symbolic price.
	PenaltyType struct {
		ID          int64
		Name        string
		UnitAmount  Money
		Description string
	}

	// Penalty is a single recorded offense. Records are append-only; there is
	// no edit or delete path.
	Penalty struct {
		ID        int64
		Date      Date
		PlayerID  int64
		TypeID    int64
		Quantity  int
		Notes     string
		CreatedAt time.Time
	}

	// Entry is a penalty joined with its player and catalog row. Listings,
	// aggregation and exports all work on this shape.
	Entry struct {
		ID         int64
		Date       Date
		PlayerID   int64
		PlayerName string
		TypeID     int64
		TypeName   string
		UnitAmount Money
		Quantity   int
		Notes      string
		CreatedAt  time.Time
	}
)

var (
	ErrInvalidDate         = errors.New("invalid date")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrEmptyName           = errors.New("empty name")
	ErrNameTooLong         = errors.New("name too long")
	ErrNotesTooLong        = errors.New("notes too long")
	ErrDuplicateName       = errors.New("name already exists")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrPenaltyTypeNotFound = errors.New("penalty type not found")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a day in ISO form (2025-08-23).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// DateOf truncates a timestamp to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the day in ISO form, the format used in the database and
// in CSV exports.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// LastDays is the window ending at the day of now and reaching days back,
// bounds inclusive.
func LastDays(now time.Time, days int) DateRange {
	to := DateOf(now)
	return DateRange{
		From: Date{Time: to.AddDate(0, 0, -days)},
		To:   to,
	}
}

// IsOpen reports whether the range has no bounds at all.
func (r DateRange) IsOpen() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether d falls inside the range. Open bounds match
// everything on their side.
func (r DateRange) Contains(d Date) bool {
	if !r.From.IsZero() && d.Before(r.From.Time) {
		return false
	}
	if !r.To.IsZero() && d.After(r.To.Time) {
		return false
	}
	return true
}

func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From.Time) {
		return errors.New("range end before range start")
	}
	return nil
}

// NormalizeName trims a player or catalog name and checks its bounds.
func NormalizeName(name string, maxLen int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > maxLen {
		return "", ErrNameTooLong
	}
	return name, nil
}

func (t PenaltyType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrEmptyName
	}
	if t.UnitAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Penalty) Validate() error {
	if err := p.Date.Validate(); err != nil {
		return err
	}
	if p.PlayerID <= 0 {
		return ErrPlayerNotFound
	}
	if p.TypeID <= 0 {
		return ErrPenaltyTypeNotFound
	}
	if p.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if utf8.RuneCountInString(p.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	return nil
}

// Total is the amount a single entry adds to the fund.
func (e Entry) Total() Money {
	return Money{Cents: e.UnitAmount.Cents * int64(e.Quantity)}
}
