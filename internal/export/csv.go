// Package export writes the semicolon-separated CSV flavor the treasurer's
// spreadsheet tooling expects and validates files after writing.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"strafenkasse/internal/core"
)

// Header is the fixed column set of every export. Amounts are dot-decimal
// with two places; dates are ISO.
var Header = []string{"Datum", "Spieler", "Vergehen", "Anzahl", "Einzelbetrag (€)", "Gesamt (€)", "Notiz"}

// WriteEntries renders store entries as CSV, one line per entry in the
// order given.
func WriteEntries(w io.Writer, entries []core.Entry) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.Date.String(),
			e.PlayerName,
			e.TypeName,
			strconv.Itoa(e.Quantity),
			e.UnitAmount.Decimal(),
			e.Total().Decimal(),
			e.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write entry %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRows renders pre-built rows, used by the workbook flattener.
func WriteRows(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary describes a written export file.
type Summary struct {
	Headers []string
	Rows    int
}

// Validate re-reads an export and reports its shape. It catches files that
// were truncated or written with the wrong separator.
func Validate(path string) (Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = ';'
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return Summary{}, fmt.Errorf("export %s is empty", path)
	}
	if err != nil {
		return Summary{}, fmt.Errorf("read header: %w", err)
	}

	sum := Summary{Headers: header}
	for {
		if _, err := r.Read(); err == io.EOF {
			break
		} else if err != nil {
			return Summary{}, fmt.Errorf("read row %d: %w", sum.Rows+1, err)
		}
		sum.Rows++
	}
	return sum, nil
}
