package workbook

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Flatten reads a filled-in workbook and returns the entry header plus one
// record per usable row. A row counts as usable when at least one of date,
// player or offense is set; fully empty pre-formatted rows are dropped.
// Values come back normalized: dates as YYYY-MM-DD, amounts with a decimal
// dot and no currency symbol.
func Flatten(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(SheetEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("lookup sheet %s: %w", SheetEntries, err)
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("sheet %s not found in %s", SheetEntries, path)
	}

	all, err := f.GetRows(SheetEntries)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", SheetEntries, err)
	}

	header := headerRow(all)
	if len(header) == 0 {
		return nil, nil, fmt.Errorf("no header row found on sheet %s", SheetEntries)
	}

	var records [][]string
	for i := 2; i < len(all); i++ {
		if rec, ok := flattenRow(all[i], len(header)); ok {
			records = append(records, rec)
		}
	}
	return header, records, nil
}

// headerRow cuts the second sheet row at the first empty cell.
func headerRow(rows [][]string) []string {
	if len(rows) < 2 {
		return nil
	}
	var header []string
	for _, cell := range rows[1] {
		if strings.TrimSpace(cell) == "" {
			break
		}
		header = append(header, strings.TrimSpace(cell))
	}
	return header
}

func flattenRow(row []string, width int) ([]string, bool) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	date := normalizeDate(cell(0))
	player := cell(1)
	offense := cell(2)
	if date == "" && player == "" && offense == "" {
		return nil, false
	}

	rec := make([]string, width)
	for i := range rec {
		switch i {
		case 0:
			rec[i] = date
		case 3, 4, 5:
			rec[i] = normalizeAmount(cell(i))
		default:
			rec[i] = cell(i)
		}
	}
	return rec, true
}

// dateLayouts covers the cached-value formats Excel typically leaves behind:
// ISO, the US-style m/d default date format and German d.m notation.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"1-2-06",
	"2.1.2006",
	"2.1.06",
}

// normalizeDate rewrites recognized date strings as YYYY-MM-DD and passes
// everything else through untouched.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// normalizeAmount strips currency decoration and converts German decimal
// notation to a plain dot form, so "1.234,56 €" becomes "1234.56".
func normalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}
