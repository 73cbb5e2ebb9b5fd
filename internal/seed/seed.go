// Package seed reads the editable master-data files: the roster
// (one player per line) and the penalty catalog (semicolon-separated).
package seed

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"strafenkasse/internal/core"
)

const (
	PlayersFile = "seed_players.txt"
	CatalogFile = "seed_catalog.csv"
)

// Players reads one name per line. Blank lines and # comments are skipped,
// duplicates are dropped while keeping the first occurrence's position.
func Players(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	seen := map[string]struct{}{}
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	return out, nil
}

// Catalog reads the penalty catalog. The file is semicolon-separated with a
// header line (Vergehen;Betrag;Beschreibung); the description column may be
// missing. Amounts accept both comma and dot decimals.
func Catalog(path string) ([]core.PenaltyType, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.Comment = '#'
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []core.PenaltyType
	for i, rec := range records[1:] { // first record is the header
		if len(rec) < 2 {
			return nil, fmt.Errorf("catalog entry %d: want name;amount[;description], got %d fields", i+1, len(rec))
		}
		name, err := core.NormalizeName(rec[0], core.MaxTypeNameLen)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i+1, err)
		}
		amount, err := core.ParseAmount(rec[1])
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d (%s): %w", i+1, name, err)
		}
		t := core.PenaltyType{Name: name, UnitAmount: amount}
		if len(rec) > 2 {
			t.Description = strings.TrimSpace(rec[2])
		}
		out = append(out, t)
	}
	return out, nil
}
