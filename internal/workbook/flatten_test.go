package workbook

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestFlatten(t *testing.T) {
	b := NewBuilder(testPlayers(), testCatalog())
	b.Rows = 20
	f, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	// a treasurer filled in two complete-ish rows and one German-style date
	set := func(cell string, v any) {
		t.Helper()
		if err := f.SetCellValue(SheetEntries, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", cell, err)
		}
	}
	set("A3", "2025-03-01")
	set("B3", "Anton Abel")
	set("C3", "Zuspätkommen Training")
	set("D3", 2)
	set("G3", "5 Minuten")

	set("B4", "Bernd Berg")
	set("E4", "10,00 €")

	set("A5", "15.03.2025")
	set("C5", "Eigentor")

	path := filepath.Join(t.TempDir(), "filled.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	header, rows, err := Flatten(path)
	if err != nil {
		t.Fatalf("Flatten() error = %v", err)
	}

	if len(header) != len(entryHeader) {
		t.Fatalf("header = %v, want %v", header, entryHeader)
	}
	for i := range entryHeader {
		if header[i] != entryHeader[i] {
			t.Errorf("header[%d] = %q, want %q", i, header[i], entryHeader[i])
		}
	}

	want := [][]string{
		{"2025-03-01", "Anton Abel", "Zuspätkommen Training", "2", "", "", "5 Minuten"},
		{"", "Bernd Berg", "", "1", "10.00", "", ""},
		{"2025-03-15", "", "Eigentor", "1", "", "", ""},
	}
	if len(rows) != len(want) {
		t.Fatalf("Flatten() returned %d rows, want %d: %v", len(rows), len(want), rows)
	}
	for i, rec := range want {
		for j := range rec {
			if rows[i][j] != rec[j] {
				t.Errorf("rows[%d][%d] = %q, want %q", i, j, rows[i][j], rec[j])
			}
		}
	}
}

func TestFlattenMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	path := filepath.Join(t.TempDir(), "other.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	f.Close()

	if _, _, err := Flatten(path); err == nil || !strings.Contains(err.Error(), SheetEntries) {
		t.Errorf("Flatten() error = %v, want missing sheet error", err)
	}
}

func TestFlattenMissingHeader(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	f.Close()

	if _, _, err := Flatten(path); err == nil || !strings.Contains(err.Error(), "header") {
		t.Errorf("Flatten() error = %v, want header error", err)
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-03-01", "2025-03-01"},
		{"  2025-03-01  ", "2025-03-01"},
		{"3/1/25", "2025-03-01"},
		{"03/01/2025", "2025-03-01"},
		{"3-1-25", "2025-03-01"},
		{"15.03.2025", "2025-03-15"},
		{"1.3.25", "2025-03-01"},
		{"2025-03-01 00:00:00", "2025-03-01"},
		{"kein Datum", "kein Datum"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeDate(tt.in); got != tt.want {
			t.Errorf("normalizeDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10,00 €", "10.00"},
		{"1.234,56 €", "1234.56"},
		{"5", "5"},
		{"5.00", "5.00"},
		{" 7,5 ", "7.5"},
		{" 12,34 €", "12.34"},
		{"€", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeAmount(tt.in); got != tt.want {
			t.Errorf("normalizeAmount(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
