// Package workbook generates the offline penalty workbook and flattens
// filled-in copies back to CSV rows. The workbook carries five sheets; all
// amounts on the entry sheet are computed by formulas against the catalog,
// so the file keeps working without this program.
package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"strafenkasse/internal/core"
)

// Sheet names are a fixed contract between the builder, the flattener and
// the people editing the file.
const (
	SheetEntries  = "Erfassung"
	SheetPlayers  = "Spielerliste"
	SheetCatalog  = "Strafenkatalog"
	SheetStats    = "Statistik"
	SheetTraining = "Trainingsplan"
)

const (
	defaultEntryRows  = 1500
	defaultSeriesDays = 90

	// Lookup ranges are fixed so formulas keep working when rows are added
	// by hand later.
	playerListRows = 200
	catalogRows    = 400
	trainingRows   = 20
	monthlyColumns = 12

	// Ranking blocks on the statistics sheet sit in fixed ranges; rosters
	// larger than the block keep their overflow out of the sheet.
	rankHeaderRow     = 11
	rankFirstRow      = 12
	playerRankLastRow = 40
	typeRankLastRow   = 21
)

// entryHeader is the Erfassung header row and at the same time the header
// of every CSV export.
var entryHeader = []string{"Datum", "Spieler", "Vergehen", "Anzahl", "Einzelbetrag (€)", "Gesamt (€)", "Notiz"}

var defaultTraining = [][]string{
	{"2025-08-04", "Montag", "19:00", "Konditionstraining", "Stollen"},
	{"2025-08-07", "Donnerstag", "19:00", "Techniktraining", "Stollen"},
	{"2025-08-09", "Samstag", "10:00", "Testspiel", "Stollen"},
	{"2025-08-11", "Montag", "19:30", "Spielaufbau", "Halle"},
	{"2025-08-14", "Donnerstag", "19:00", "Abschlussspiel", "Stollen"},
}

// Builder assembles the workbook from the roster and the penalty catalog.
type Builder struct {
	Players []string
	Catalog []core.PenaltyType

	// Rows is the number of pre-formatted entry rows on the Erfassung
	// sheet. SeriesDays is the length of the statistics time series.
	Rows       int
	SeriesDays int
}

func NewBuilder(players []string, catalog []core.PenaltyType) *Builder {
	return &Builder{
		Players:    players,
		Catalog:    catalog,
		Rows:       defaultEntryRows,
		SeriesDays: defaultSeriesDays,
	}
}

type styleSet struct {
	header   int
	currency int
	info     int
	bold     int
	date     int
	month    int

	condYellow int
	condRed    int
	condGreen  int
}

// Build produces the workbook in memory. Save is the usual entry point.
func (b *Builder) Build() (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		return nil, fmt.Errorf("rename entry sheet: %w", err)
	}
	for _, name := range []string{SheetPlayers, SheetCatalog, SheetStats, SheetTraining} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	styles, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	if err := b.buildEntries(f, styles); err != nil {
		return nil, fmt.Errorf("build %s: %w", SheetEntries, err)
	}
	if err := b.buildPlayers(f, styles); err != nil {
		return nil, fmt.Errorf("build %s: %w", SheetPlayers, err)
	}
	if err := b.buildCatalog(f, styles); err != nil {
		return nil, fmt.Errorf("build %s: %w", SheetCatalog, err)
	}
	if err := b.buildStats(f, styles); err != nil {
		return nil, fmt.Errorf("build %s: %w", SheetStats, err)
	}
	if err := b.buildTraining(f, styles); err != nil {
		return nil, fmt.Errorf("build %s: %w", SheetTraining, err)
	}

	idx, err := f.GetSheetIndex(SheetEntries)
	if err != nil {
		return nil, fmt.Errorf("activate entry sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	return f, nil
}

// Save builds the workbook and writes it to path.
func (b *Builder) Save(path string) error {
	f, err := b.Build()
	if err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return f.Close()
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
		Border:    thin,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	}); err != nil {
		return s, fmt.Errorf("header style: %w", err)
	}

	currencyFmt := "#,##0.00 [$€-de-DE]"
	if s.currency, err = f.NewStyle(&excelize.Style{CustomNumFmt: &currencyFmt}); err != nil {
		return s, fmt.Errorf("currency style: %w", err)
	}

	if s.info, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true, Size: 9},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return s, fmt.Errorf("info style: %w", err)
	}

	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return s, fmt.Errorf("bold style: %w", err)
	}

	dateFmt := "dd.mm.yyyy"
	if s.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt}); err != nil {
		return s, fmt.Errorf("date style: %w", err)
	}

	monthFmt := "mmm yyyy"
	if s.month, err = f.NewStyle(&excelize.Style{CustomNumFmt: &monthFmt}); err != nil {
		return s, fmt.Errorf("month style: %w", err)
	}

	if s.condYellow, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FFFF00"}},
	}); err != nil {
		return s, fmt.Errorf("yellow conditional style: %w", err)
	}
	if s.condRed, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"FF0000"}},
	}); err != nil {
		return s, fmt.Errorf("red conditional style: %w", err)
	}
	if s.condGreen, err = f.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"C6EFCE"}},
	}); err != nil {
		return s, fmt.Errorf("green conditional style: %w", err)
	}

	return s, nil
}

// sheetWriter latches the first error so sheet code can stay linear.
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) value(cell string, v any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellValue(w.sheet, cell, v)
}

func (w *sheetWriter) formula(cell, formula string) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellFormula(w.sheet, cell, formula)
}

func (w *sheetWriter) style(topLeft, bottomRight string, styleID int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, topLeft, bottomRight, styleID)
}

func (w *sheetWriter) width(col string, width float64) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetColWidth(w.sheet, col, col, width)
}

func (w *sheetWriter) merge(topLeft, bottomRight string) {
	if w.err != nil {
		return
	}
	w.err = w.f.MergeCell(w.sheet, topLeft, bottomRight)
}

func (b *Builder) entryRows() int {
	if b.Rows > 0 {
		return b.Rows
	}
	return defaultEntryRows
}

func (b *Builder) seriesDays() int {
	if b.SeriesDays > 0 {
		return b.SeriesDays
	}
	return defaultSeriesDays
}

func (b *Builder) buildEntries(f *excelize.File, styles styleSet) error {
	w := &sheetWriter{f: f, sheet: SheetEntries}
	lastRow := 2 + b.entryRows() // header in row 2, data from row 3

	w.merge("H1", "P1")
	w.value("H1", "Datum, Spieler & Vergehen wählen – Rest füllt sich automatisch. Filter nutzen, um Zeitraum/Spieler zu filtern.")
	w.style("H1", "H1", styles.info)

	for col, header := range entryHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		w.value(cell, header)
	}
	w.style("A2", "G2", styles.header)

	for col, width := range []float64{13, 24, 36, 10, 18, 16, 28} {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		w.width(name, width)
	}

	for row := 3; row <= lastRow; row++ {
		w.value(fmt.Sprintf("D%d", row), 1)
		w.formula(fmt.Sprintf("E%d", row), fmt.Sprintf(
			"IFERROR(XLOOKUP(C%d,%s!$A$2:$A$%d,%s!$B$2:$B$%d),IFERROR(VLOOKUP(C%d,%s!$A$2:$B$%d,2,FALSE),0))",
			row, SheetCatalog, catalogRows, SheetCatalog, catalogRows, row, SheetCatalog, catalogRows))
		w.formula(fmt.Sprintf("F%d", row), fmt.Sprintf("IFERROR(D%d*E%d,0)", row, row))
	}
	w.style("E3", fmt.Sprintf("F%d", lastRow), styles.currency)
	w.style("A3", fmt.Sprintf("A%d", lastRow), styles.date)
	if w.err != nil {
		return w.err
	}

	stripes := true
	if err := f.AddTable(SheetEntries, &excelize.Table{
		Range:          fmt.Sprintf("A2:G%d", lastRow),
		Name:           "tblErfassung",
		StyleName:      "TableStyleMedium9",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("entry table: %w", err)
	}

	if err := b.addEntryValidations(f, lastRow); err != nil {
		return err
	}
	if err := b.addEntryConditionalFormats(f, styles, lastRow); err != nil {
		return err
	}

	if err := f.SetPanes(SheetEntries, &excelize.Panes{
		Freeze:      true,
		YSplit:      2,
		TopLeftCell: "A3",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	return nil
}

func (b *Builder) addEntryValidations(f *excelize.File, lastRow int) error {
	dateDV := excelize.NewDataValidation(true)
	dateDV.Sqref = fmt.Sprintf("A3:A%d", lastRow)
	if err := dateDV.SetRange("DATE(2000,1,1)", "DATE(2100,12,31)",
		excelize.DataValidationTypeDate, excelize.DataValidationOperatorBetween); err != nil {
		return fmt.Errorf("date validation: %w", err)
	}
	dateDV.SetError(excelize.DataValidationErrorStyleStop,
		"Ungültiges Datum", "Bitte geben Sie ein gültiges Datum zwischen 01.01.2000 und 31.12.2100 ein.")
	if err := f.AddDataValidation(SheetEntries, dateDV); err != nil {
		return fmt.Errorf("date validation: %w", err)
	}

	playerDV := excelize.NewDataValidation(true)
	playerDV.Sqref = fmt.Sprintf("B3:B%d", lastRow)
	playerDV.SetSqrefDropList(fmt.Sprintf("%s!$A$2:$A$%d", SheetPlayers, playerListRows))
	playerDV.SetError(excelize.DataValidationErrorStyleStop,
		"Ungültiger Spieler", "Bitte wählen Sie einen Spieler aus der Liste.")
	if err := f.AddDataValidation(SheetEntries, playerDV); err != nil {
		return fmt.Errorf("player validation: %w", err)
	}

	typeDV := excelize.NewDataValidation(true)
	typeDV.Sqref = fmt.Sprintf("C3:C%d", lastRow)
	typeDV.SetSqrefDropList(fmt.Sprintf("%s!$A$2:$A$%d", SheetCatalog, catalogRows))
	typeDV.SetError(excelize.DataValidationErrorStyleStop,
		"Ungültiges Vergehen", "Bitte wählen Sie ein Vergehen aus dem Katalog.")
	if err := f.AddDataValidation(SheetEntries, typeDV); err != nil {
		return fmt.Errorf("type validation: %w", err)
	}

	qtyDV := excelize.NewDataValidation(true)
	qtyDV.Sqref = fmt.Sprintf("D3:D%d", lastRow)
	if err := qtyDV.SetRange(1, 0,
		excelize.DataValidationTypeWhole, excelize.DataValidationOperatorGreaterThanOrEqual); err != nil {
		return fmt.Errorf("quantity validation: %w", err)
	}
	qtyDV.SetError(excelize.DataValidationErrorStyleStop,
		"Ungültige Anzahl", "Die Anzahl muss mindestens 1 betragen.")
	if err := f.AddDataValidation(SheetEntries, qtyDV); err != nil {
		return fmt.Errorf("quantity validation: %w", err)
	}
	return nil
}

// Incomplete rows get flagged: a missing date turns yellow, a missing
// player or offense red, and computed totals above zero green.
func (b *Builder) addEntryConditionalFormats(f *excelize.File, styles styleSet, lastRow int) error {
	if err := f.SetConditionalFormat(SheetEntries, fmt.Sprintf("A3:A%d", lastRow),
		[]excelize.ConditionalFormatOptions{{
			Type:     "formula",
			Criteria: `AND(A3="",OR(B3<>"",C3<>""))`,
			Format:   styles.condYellow,
		}}); err != nil {
		return fmt.Errorf("date conditional format: %w", err)
	}
	if err := f.SetConditionalFormat(SheetEntries, fmt.Sprintf("B3:B%d", lastRow),
		[]excelize.ConditionalFormatOptions{{
			Type:     "formula",
			Criteria: `AND(B3="",OR(A3<>"",C3<>""))`,
			Format:   styles.condRed,
		}}); err != nil {
		return fmt.Errorf("player conditional format: %w", err)
	}
	if err := f.SetConditionalFormat(SheetEntries, fmt.Sprintf("C3:C%d", lastRow),
		[]excelize.ConditionalFormatOptions{{
			Type:     "formula",
			Criteria: `AND(C3="",OR(A3<>"",B3<>""))`,
			Format:   styles.condRed,
		}}); err != nil {
		return fmt.Errorf("type conditional format: %w", err)
	}
	if err := f.SetConditionalFormat(SheetEntries, fmt.Sprintf("F3:F%d", lastRow),
		[]excelize.ConditionalFormatOptions{{
			Type:     "cell",
			Criteria: ">",
			Value:    "0",
			Format:   styles.condGreen,
		}}); err != nil {
		return fmt.Errorf("total conditional format: %w", err)
	}
	return nil
}

func (b *Builder) buildPlayers(f *excelize.File, styles styleSet) error {
	w := &sheetWriter{f: f, sheet: SheetPlayers}

	w.value("A1", "Spieler")
	w.style("A1", "A1", styles.header)
	for i, name := range b.Players {
		if i+2 > playerListRows {
			break
		}
		w.value(fmt.Sprintf("A%d", i+2), name)
	}
	w.width("A", 26)
	if w.err != nil {
		return w.err
	}

	stripes := true
	if err := f.AddTable(SheetPlayers, &excelize.Table{
		Range:          fmt.Sprintf("A1:A%d", playerListRows),
		Name:           "tblSpieler",
		StyleName:      "TableStyleMedium2",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("player table: %w", err)
	}
	return nil
}

func (b *Builder) buildCatalog(f *excelize.File, styles styleSet) error {
	w := &sheetWriter{f: f, sheet: SheetCatalog}

	for col, header := range []string{"Vergehen", "Strafe (€) pro Einheit", "Beschreibung (optional)"} {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		w.value(cell, header)
	}
	w.style("A1", "C1", styles.header)

	for i, t := range b.Catalog {
		row := i + 2
		if row > catalogRows {
			break
		}
		w.value(fmt.Sprintf("A%d", row), t.Name)
		w.value(fmt.Sprintf("B%d", row), t.UnitAmount.Euros())
		w.value(fmt.Sprintf("C%d", row), t.Description)
	}
	w.style("B2", fmt.Sprintf("B%d", catalogRows), styles.currency)
	w.width("A", 50)
	w.width("B", 20)
	w.width("C", 30)
	if w.err != nil {
		return w.err
	}

	stripes := true
	if err := f.AddTable(SheetCatalog, &excelize.Table{
		Range:          fmt.Sprintf("A1:C%d", catalogRows),
		Name:           "tblKatalog",
		StyleName:      "TableStyleMedium2",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("catalog table: %w", err)
	}
	return nil
}

func (b *Builder) buildStats(f *excelize.File, styles styleSet) error {
	w := &sheetWriter{f: f, sheet: SheetStats}
	totalCol := "tblErfassung[Gesamt (€)]"
	dateCol := "tblErfassung[Datum]"
	rangeCond := fmt.Sprintf(`%s,">="&$B$2,%s,"<="&$D$2`, dateCol, dateCol)

	// control section
	w.value("A2", "Zeitraum Start")
	w.formula("B2", "DATE(YEAR(TODAY()),MONTH(TODAY()),1)")
	w.value("C2", "Zeitraum Ende")
	w.formula("D2", "TODAY()")
	w.value("A4", "Spieler (Auswahl)")
	w.style("A2", "A2", styles.header)
	w.style("C2", "C2", styles.header)
	w.style("A4", "A4", styles.header)
	w.style("B2", "B2", styles.date)
	w.style("D2", "D2", styles.date)

	w.width("A", 36)
	w.width("B", 16)
	w.width("C", 20)
	w.width("D", 16)

	// KPIs
	w.value("A6", "Gesamtbetrag (Zeitraum)")
	w.formula("B6", fmt.Sprintf("IFERROR(SUMIFS(%s,%s),0)", totalCol, rangeCond))
	w.value("A7", "Anzahl Einträge (Zeitraum)")
	w.formula("B7", fmt.Sprintf("IFERROR(COUNTIFS(%s),0)", rangeCond))
	w.value("A8", "Ø Betrag pro Eintrag")
	w.formula("B8", "IF(B7=0,0,B6/B7)")
	w.value("A9", "Höchste Einzelstrafe")
	w.formula("B9", fmt.Sprintf("IFERROR(AGGREGATE(14,6,%s/(%s>=$B$2)/(%s<=$D$2),1),0)", totalCol, dateCol, dateCol))
	w.style("A6", "A9", styles.header)
	w.style("B6", "B6", styles.currency)
	w.style("B8", "B9", styles.currency)

	// per-player ranking
	for col, header := range []string{"Spieler", "Summe (€)", "Anzahl", "Ø (€)"} {
		cell, err := excelize.CoordinatesToCellName(col+1, rankHeaderRow)
		if err != nil {
			return err
		}
		w.value(cell, header)
	}
	w.style("A11", "D11", styles.header)
	for i, name := range b.Players {
		row := rankFirstRow + i
		if row > playerRankLastRow {
			break
		}
		w.value(fmt.Sprintf("A%d", row), name)
		w.formula(fmt.Sprintf("B%d", row), fmt.Sprintf(
			`IF(A%d="",0,IFERROR(SUMIFS(%s,tblErfassung[Spieler],A%d,%s),0))`, row, totalCol, row, rangeCond))
		w.formula(fmt.Sprintf("C%d", row), fmt.Sprintf(
			`IF(A%d="",0,IFERROR(COUNTIFS(tblErfassung[Spieler],A%d,%s),0))`, row, row, rangeCond))
		w.formula(fmt.Sprintf("D%d", row), fmt.Sprintf("IF(C%d=0,0,B%d/C%d)", row, row, row))
		w.style(fmt.Sprintf("B%d", row), fmt.Sprintf("B%d", row), styles.currency)
		w.style(fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), styles.currency)
	}

	// per-offense ranking, first catalog rows only
	for col, header := range []string{"Vergehen", "Summe (€)", "Anzahl", "Ø (€)"} {
		cell, err := excelize.CoordinatesToCellName(col+6, rankHeaderRow)
		if err != nil {
			return err
		}
		w.value(cell, header)
	}
	w.style("F11", "I11", styles.header)
	for i, t := range b.Catalog {
		row := rankFirstRow + i
		if row > typeRankLastRow {
			break
		}
		w.value(fmt.Sprintf("F%d", row), t.Name)
		w.formula(fmt.Sprintf("G%d", row), fmt.Sprintf(
			`IF(F%d="",0,IFERROR(SUMIFS(%s,tblErfassung[Vergehen],F%d,%s),0))`, row, totalCol, row, rangeCond))
		w.formula(fmt.Sprintf("H%d", row), fmt.Sprintf(
			`IF(F%d="",0,IFERROR(COUNTIFS(tblErfassung[Vergehen],F%d,%s),0))`, row, row, rangeCond))
		w.formula(fmt.Sprintf("I%d", row), fmt.Sprintf("IF(H%d=0,0,G%d/H%d)", row, row, row))
		w.style(fmt.Sprintf("G%d", row), fmt.Sprintf("G%d", row), styles.currency)
		w.style(fmt.Sprintf("I%d", row), fmt.Sprintf("I%d", row), styles.currency)
	}
	if w.err != nil {
		return w.err
	}

	stripes := true
	if err := f.AddTable(SheetStats, &excelize.Table{
		Range:          fmt.Sprintf("A%d:D%d", rankHeaderRow, playerRankLastRow),
		Name:           "tblStatSpieler",
		StyleName:      "TableStyleMedium2",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("player stat table: %w", err)
	}
	if err := f.AddTable(SheetStats, &excelize.Table{
		Range:          fmt.Sprintf("F%d:I%d", rankHeaderRow, typeRankLastRow),
		Name:           "tblStatVergehen",
		StyleName:      "TableStyleMedium7",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("type stat table: %w", err)
	}

	playerDV := excelize.NewDataValidation(true)
	playerDV.Sqref = "B4"
	playerDV.SetSqrefDropList(fmt.Sprintf("%s!$A$2:$A$%d", SheetPlayers, playerListRows))
	if err := f.AddDataValidation(SheetStats, playerDV); err != nil {
		return fmt.Errorf("player selection: %w", err)
	}

	if err := b.buildStatsSeries(w, styles); err != nil {
		return err
	}
	if err := b.buildMonthlyMatrix(w, styles); err != nil {
		return err
	}
	if w.err != nil {
		return w.err
	}

	if err := f.AddChart(SheetStats, fmt.Sprintf("D%d", b.seriesFirstRow()), &excelize.Chart{
		Type:  excelize.Line,
		Title: []excelize.RichTextRun{{Text: "Strafen über Zeit – Spieler"}},
		Series: []excelize.ChartSeries{{
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", SheetStats, b.seriesFirstRow(), b.seriesLastRow()),
			Values:     fmt.Sprintf("%s!$B$%d:$B$%d", SheetStats, b.seriesFirstRow(), b.seriesLastRow()),
		}},
		XAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Datum"}}},
		YAxis:     excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Betrag (€)"}}},
		Dimension: excelize.ChartDimension{Width: 960, Height: 360},
	}); err != nil {
		return fmt.Errorf("series chart: %w", err)
	}

	if err := f.SetPanes(SheetStats, &excelize.Panes{
		Freeze:      true,
		YSplit:      11,
		TopLeftCell: "A12",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze panes: %w", err)
	}
	return nil
}

// The series and the monthly matrix start below the fixed ranking ranges.
func (b *Builder) seriesTitleRow() int { return playerRankLastRow + 2 }

func (b *Builder) seriesFirstRow() int { return b.seriesTitleRow() + 1 }

func (b *Builder) seriesLastRow() int { return b.seriesFirstRow() + b.seriesDays() - 1 }

func (b *Builder) matrixHeaderRow() int { return b.seriesLastRow() + 3 }

// buildStatsSeries writes the day-by-day amounts for the selected player.
// Day count follows a cell next to the title so the series can be shortened
// by hand.
func (b *Builder) buildStatsSeries(w *sheetWriter, styles styleSet) error {
	title := b.seriesTitleRow()
	first := b.seriesFirstRow()
	last := b.seriesLastRow()

	w.value(fmt.Sprintf("A%d", title), "Strafen über Zeit – Spieler")
	w.style(fmt.Sprintf("A%d", title), fmt.Sprintf("A%d", title), styles.bold)
	w.value(fmt.Sprintf("F%d", title), "Tage anzeigen")
	w.style(fmt.Sprintf("F%d", title), fmt.Sprintf("F%d", title), styles.header)
	w.value(fmt.Sprintf("G%d", title), b.seriesDays())

	for row := first; row <= last; row++ {
		w.formula(fmt.Sprintf("A%d", row), fmt.Sprintf(
			`IF(ROW()-ROW($A$%d)+1<=$G$%d,$B$2+ROW()-ROW($A$%d),"")`, first, title, first))
		w.formula(fmt.Sprintf("B%d", row), fmt.Sprintf(
			`IF(A%d="","",IFERROR(SUMIFS(tblErfassung[Gesamt (€)],tblErfassung[Spieler],$B$4,tblErfassung[Datum],A%d),0))`,
			row, row))
	}
	w.style(fmt.Sprintf("A%d", first), fmt.Sprintf("A%d", last), styles.date)
	return w.err
}

// buildMonthlyMatrix writes the twelve-month sum per player starting at the
// chosen range start.
func (b *Builder) buildMonthlyMatrix(w *sheetWriter, styles styleSet) error {
	header := b.matrixHeaderRow()

	w.value(fmt.Sprintf("A%d", header), "Monatsmatrix (Summe €)")
	w.style(fmt.Sprintf("A%d", header), fmt.Sprintf("A%d", header), styles.bold)

	for col := 2; col <= 1+monthlyColumns; col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if col == 2 {
			w.formula(fmt.Sprintf("%s%d", name, header), "EOMONTH($B$2,0)")
		} else {
			prev, err := excelize.ColumnNumberToName(col - 1)
			if err != nil {
				return err
			}
			w.formula(fmt.Sprintf("%s%d", name, header), fmt.Sprintf("EOMONTH(%s%d,1)", prev, header))
		}
		w.style(fmt.Sprintf("%s%d", name, header), fmt.Sprintf("%s%d", name, header), styles.month)
	}

	for i, player := range b.Players {
		row := header + 1 + i
		w.value(fmt.Sprintf("A%d", row), player)
		for col := 2; col <= 1+monthlyColumns; col++ {
			name, err := excelize.ColumnNumberToName(col)
			if err != nil {
				return err
			}
			w.formula(fmt.Sprintf("%s%d", name, row), fmt.Sprintf(
				`IF($A%d="",0,IFERROR(SUMIFS(tblErfassung[Gesamt (€)],tblErfassung[Spieler],$A%d,tblErfassung[Datum],">="&EOMONTH(%s$%d,-1)+1,tblErfassung[Datum],"<="&EOMONTH(%s$%d,0)),0))`,
				row, row, name, header, name, header))
			w.style(fmt.Sprintf("%s%d", name, row), fmt.Sprintf("%s%d", name, row), styles.currency)
		}
	}
	return w.err
}

func (b *Builder) buildTraining(f *excelize.File, styles styleSet) error {
	w := &sheetWriter{f: f, sheet: SheetTraining}

	headers := []string{"Datum", "Tag", "Uhrzeit", "Einheit", "Schuhe"}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		w.value(cell, header)
	}
	w.style("A1", "E1", styles.header)

	for i, slot := range defaultTraining {
		for col, v := range slot {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			w.value(cell, v)
		}
	}
	for col := 1; col <= len(headers); col++ {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		w.width(name, 18)
	}
	if w.err != nil {
		return w.err
	}

	stripes := true
	if err := f.AddTable(SheetTraining, &excelize.Table{
		Range:          fmt.Sprintf("A1:E%d", trainingRows),
		Name:           "tblTrainingsplan",
		StyleName:      "TableStyleLight9",
		ShowRowStripes: &stripes,
	}); err != nil {
		return fmt.Errorf("training table: %w", err)
	}
	return nil
}
