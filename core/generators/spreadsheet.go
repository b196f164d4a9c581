package generators

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/opensdd/relnotes/core"
	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/notes"
	"github.com/opensdd/relnotes/core/report"
	"github.com/xuri/excelize/v2"
)

const (
	// NotesSheet holds one row per record.
	NotesSheet = "Release Notes"
	// DataSheet holds the value lists behind the drop-down columns.
	DataSheet = "data"

	dataListRows = 1000
)

// DefaultSpreadsheetColumns are the header cells of the notes sheet.
var DefaultSpreadsheetColumns = [12]string{
	"Change",
	"Internal ticket",
	"Cross-references",
	"Release note",
	"Affected user group",
	"Result of change",
	"New permission",
	"New menu item",
	"New procedure type",
	"Testing",
	"Responsible",
	"Status",
}

// HungarianSpreadsheetColumns are the header cells used with the hu keyword
// preset.
var HungarianSpreadsheetColumns = [12]string{
	"Fejlesztés/javítás",
	"Szállító belső issue",
	"Redmine, RT jegy",
	"Fejlesztés/javítás leírása",
	"Érintett felhasználói kör",
	"Fejlesztés/javítás eredménye",
	"Új elemi jog",
	"Új menüpont",
	"Új eljárástípus",
	"Tesztelés módja",
	"Felelős",
	"Státusz",
}

var spreadsheetWidths = [12]float64{40, 20, 30, 40, 30, 30, 30, 30, 30, 30, 20, 15}

// scalarColumns are the note fields written to columns E through J.
var scalarColumns = []notes.Field{
	notes.FieldAffectedUsers,
	notes.FieldResult,
	notes.FieldNewPermission,
	notes.FieldNewMenuItem,
	notes.FieldNewProcedureType,
	notes.FieldTesting,
}

// Spreadsheet renders records as an xlsx workbook.
type Spreadsheet struct {
	// Columns overrides DefaultSpreadsheetColumns when set.
	Columns     [12]string
	Responsible []string
	Statuses    []string
}

type sheetStyles struct {
	header, cell, link int
}

// Render returns the workbook bytes. Nothing is written to disk.
func (g *Spreadsheet) Render(records []report.Record) ([]byte, error) {
	log := slog.With("op", "Spreadsheet.Render")
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", NotesSheet); err != nil {
		return nil, renderErr("rename sheet", err)
	}
	if _, err := f.NewSheet(DataSheet); err != nil {
		return nil, renderErr("create data sheet", err)
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	if err := g.writeHeader(f, styles); err != nil {
		return nil, err
	}
	for i, r := range records {
		if err := writeRecordRow(f, styles, i+2, r); err != nil {
			return nil, err
		}
	}
	if err := g.writeDataSheet(f); err != nil {
		return nil, err
	}
	if len(records) > 0 {
		if err := addDropDowns(f, len(records)+1); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, renderErr("serialize workbook", err)
	}
	log.Debug("Workbook rendered", "rows", len(records), "bytes", buf.Len())
	return buf.Bytes(), nil
}

func renderErr(what string, err error) error {
	return fmt.Errorf("%w: failed to %s: %v", core.ErrRender, what, err)
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	var s sheetStyles
	var err error
	s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"D9D9D9"}, Pattern: 1},
		Border:    border,
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, renderErr("create header style", err)
	}
	s.cell, err = f.NewStyle(&excelize.Style{
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, renderErr("create cell style", err)
	}
	s.link, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Color: "0000FF", Underline: "single"},
		Border:    border,
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return s, renderErr("create link style", err)
	}
	return s, nil
}

func (g *Spreadsheet) columns() [12]string {
	if g.Columns == ([12]string{}) {
		return DefaultSpreadsheetColumns
	}
	return g.Columns
}

func (g *Spreadsheet) writeHeader(f *excelize.File, styles sheetStyles) error {
	for i, title := range g.columns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(NotesSheet, cell, title); err != nil {
			return renderErr("write header", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(NotesSheet, col, col, spreadsheetWidths[i]); err != nil {
			return renderErr("set column width", err)
		}
	}
	if err := f.SetCellStyle(NotesSheet, "A1", "L1", styles.header); err != nil {
		return renderErr("style header", err)
	}
	return nil
}

func writeRecordRow(f *excelize.File, styles sheetStyles, row int, r report.Record) error {
	cell := func(col int) string {
		name, _ := excelize.CoordinatesToCellName(col, row)
		return name
	}
	if err := f.SetCellStyle(NotesSheet, cell(1), cell(12), styles.cell); err != nil {
		return renderErr("style row", err)
	}

	if err := f.SetCellValue(NotesSheet, cell(1), r.Summary); err != nil {
		return renderErr("write summary", err)
	}
	if err := f.SetCellFormula(NotesSheet, cell(2), hyperlinkFormula(r.TicketURL, r.TicketID)); err != nil {
		return renderErr("write ticket link", err)
	}
	if err := f.SetCellStyle(NotesSheet, cell(2), cell(2), styles.link); err != nil {
		return renderErr("style ticket link", err)
	}
	if err := writeCrossReferences(f, styles, cell(3), r.CrossReferences); err != nil {
		return err
	}
	if err := f.SetCellRichText(NotesSheet, cell(4), richTextRuns(r.Note)); err != nil {
		slog.Warn("Failed to write release note as rich text, using plain text", "ticket", r.TicketID, "error", err)
		if err := f.SetCellValue(NotesSheet, cell(4), notes.PlainText(r.Note)); err != nil {
			return renderErr("write release note", err)
		}
	}
	scalars := notes.Scalars(r.Note)
	for i, field := range scalarColumns {
		if err := f.SetCellValue(NotesSheet, cell(5+i), scalars[field]); err != nil {
			return renderErr("write "+field.Key(), err)
		}
	}
	return nil
}

// writeCrossReferences writes a single reference as a clickable link and
// several as one line per reference.
func writeCrossReferences(f *excelize.File, styles sheetStyles, cell string, refs []links.CrossReference) error {
	switch len(refs) {
	case 0:
		if err := f.SetCellValue(NotesSheet, cell, noCrossReferences); err != nil {
			return renderErr("write cross-references", err)
		}
	case 1:
		if err := f.SetCellFormula(NotesSheet, cell, hyperlinkFormula(refs[0].URL, refs[0].Title)); err != nil {
			return renderErr("write cross-references", err)
		}
		if err := f.SetCellStyle(NotesSheet, cell, cell, styles.link); err != nil {
			return renderErr("style cross-references", err)
		}
	default:
		lines := make([]string, 0, len(refs))
		for _, ref := range refs {
			if ref.Title == "" || ref.Title == ref.URL {
				lines = append(lines, ref.URL)
				continue
			}
			lines = append(lines, ref.Title+": "+ref.URL)
		}
		if err := f.SetCellValue(NotesSheet, cell, strings.Join(lines, "\n")); err != nil {
			return renderErr("write cross-references", err)
		}
	}
	return nil
}

func hyperlinkFormula(url, title string) string {
	q := func(s string) string { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
	return "HYPERLINK(" + q(url) + "," + q(title) + ")"
}

// richTextRuns maps the composite note onto spreadsheet runs, keywords in
// bold. The unfilled label is also red.
func richTextRuns(n notes.Note) []excelize.RichTextRun {
	if n.IsUnfilled() {
		return []excelize.RichTextRun{{Text: notes.Unfilled, Font: &excelize.Font{Bold: true, Color: "FF0000"}}}
	}
	composite := notes.Composite(n)
	runs := make([]excelize.RichTextRun, 0, len(composite))
	for _, r := range composite {
		run := excelize.RichTextRun{Text: r.Text}
		if r.Emphasis {
			run.Font = &excelize.Font{Bold: true}
		}
		runs = append(runs, run)
	}
	return runs
}

func (g *Spreadsheet) writeDataSheet(f *excelize.File) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return renderErr("create data style", err)
	}
	lists := []struct {
		col    string
		title  string
		values []string
	}{
		{"A", g.columns()[10], g.Responsible},
		{"B", g.columns()[11], g.Statuses},
	}
	for _, l := range lists {
		if err := f.SetCellValue(DataSheet, l.col+"1", l.title); err != nil {
			return renderErr("write data header", err)
		}
		if err := f.SetCellStyle(DataSheet, l.col+"1", l.col+"1", bold); err != nil {
			return renderErr("style data header", err)
		}
		for i, v := range l.values {
			if err := f.SetCellValue(DataSheet, fmt.Sprintf("%s%d", l.col, i+2), v); err != nil {
				return renderErr("write data list", err)
			}
		}
	}
	if err := f.SetColWidth(DataSheet, "A", "A", 30); err != nil {
		return renderErr("set column width", err)
	}
	if err := f.SetColWidth(DataSheet, "B", "B", 15); err != nil {
		return renderErr("set column width", err)
	}
	return nil
}

// addDropDowns restricts the responsible and status cells of rows 2..lastRow
// to the data sheet lists.
func addDropDowns(f *excelize.File, lastRow int) error {
	for _, dd := range []struct {
		col, dataCol, title string
	}{
		{"K", "A", "Choose responsible"},
		{"L", "B", "Choose status"},
	} {
		dv := excelize.NewDataValidation(true)
		dv.Sqref = fmt.Sprintf("%s2:%s%d", dd.col, dd.col, lastRow)
		dv.SetSqrefDropList(fmt.Sprintf("%s!$%s$2:$%s$%d", DataSheet, dd.dataCol, dd.dataCol, dataListRows))
		dv.SetInput(dd.title, "Pick a value from the list")
		if err := f.AddDataValidation(NotesSheet, dv); err != nil {
			return renderErr("add drop-down", err)
		}
	}
	return nil
}
