package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"strafenkasse/internal/workbook"
)

func writeSeedFiles(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	roster := "Anton Abel\nBernd Berg\nCarla Cremer\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_players.txt"), []byte(roster), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}
	catalog := "Vergehen;Betrag;Beschreibung\n" +
		"Zuspätkommen Training;5;\n" +
		"Handy klingelt;10;pro Vorfall\n" +
		"Eigentor;0;Kasten\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_catalog.csv"), []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return dir
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBuildCommandWritesWorkbook(t *testing.T) {
	dataDir := writeSeedFiles(t)
	path := filepath.Join(t.TempDir(), "kasse.xlsx")

	out, err := runCommand(t, "build", "--data", dataDir, "--output", path, "--rows", "25", "--series-days", "14")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "Arbeitsmappe erstellt") {
		t.Errorf("build output = %q, want success line", out)
	}
	if !strings.Contains(out, "Spieler: 3, Vergehen: 3, Erfassungszeilen: 25") {
		t.Errorf("build output = %q, want counts line", out)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()

	want := []string{
		workbook.SheetEntries, workbook.SheetPlayers, workbook.SheetCatalog,
		workbook.SheetStats, workbook.SheetTraining,
	}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("GetSheetList() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	name, err := f.GetCellValue(workbook.SheetPlayers, "A2")
	if err != nil {
		t.Fatalf("GetCellValue() error = %v", err)
	}
	if name != "Anton Abel" {
		t.Errorf("first roster cell = %q, want %q", name, "Anton Abel")
	}
}

func TestBuildCommandMissingRoster(t *testing.T) {
	out, err := runCommand(t, "build",
		"--data", t.TempDir(),
		"--output", filepath.Join(t.TempDir(), "kasse.xlsx"))
	if err == nil {
		t.Fatalf("build succeeded without seed files, output = %q", out)
	}
	if !strings.Contains(err.Error(), "load roster") {
		t.Errorf("build error = %v, want roster error", err)
	}
}

func TestExportCommandRoundTrip(t *testing.T) {
	dataDir := writeSeedFiles(t)
	dir := t.TempDir()
	wbPath := filepath.Join(dir, "kasse.xlsx")
	csvPath := filepath.Join(dir, "export.csv")

	if _, err := runCommand(t, "build", "--data", dataDir, "--output", wbPath, "--rows", "25"); err != nil {
		t.Fatalf("build: %v", err)
	}

	// fill one entry row the way a treasurer would
	f, err := excelize.OpenFile(wbPath)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	for cell, v := range map[string]any{
		"A3": "2025-03-01",
		"B3": "Anton Abel",
		"C3": "Handy klingelt",
		"D3": 2,
	} {
		if err := f.SetCellValue(workbook.SheetEntries, cell, v); err != nil {
			t.Fatalf("SetCellValue(%s) error = %v", cell, err)
		}
	}
	if err := f.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	f.Close()

	out, err := runCommand(t, "export", "--input", wbPath, "--output", csvPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "CSV-Export erstellt") || !strings.Contains(out, "Datensätze: 1") {
		t.Errorf("export output = %q", out)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("export has %d lines, want 2:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "Datum;Spieler;Vergehen;Anzahl") {
		t.Errorf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "2025-03-01;Anton Abel;Handy klingelt;2") {
		t.Errorf("data line = %q", lines[1])
	}
}

func TestExportCommandEmptyWorkbook(t *testing.T) {
	dataDir := writeSeedFiles(t)
	dir := t.TempDir()
	wbPath := filepath.Join(dir, "kasse.xlsx")
	csvPath := filepath.Join(dir, "export.csv")

	if _, err := runCommand(t, "build", "--data", dataDir, "--output", wbPath, "--rows", "25"); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := runCommand(t, "export", "--input", wbPath, "--output", csvPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Datensätze: 0") || !strings.Contains(out, "keine befüllten Zeilen") {
		t.Errorf("export output = %q, want empty-workbook hint", out)
	}

	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if got := strings.TrimSpace(string(data)); !strings.HasPrefix(got, "Datum;") || strings.Count(got, "\n") != 0 {
		t.Errorf("empty export = %q, want header-only file", got)
	}
}

func TestExportCommandMissingInput(t *testing.T) {
	_, err := runCommand(t, "export",
		"--input", filepath.Join(t.TempDir(), "fehlt.xlsx"),
		"--output", filepath.Join(t.TempDir(), "export.csv"))
	if err == nil {
		t.Fatal("export succeeded with missing workbook")
	}
}
