package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"gastos/internal/report"
)

// XLSX renders reports as spreadsheets: a summary sheet for narrative
// sections plus one sheet per table.
type XLSX struct{}

func NewXLSX() *XLSX {
	return &XLSX{}
}

func (x *XLSX) Render(r *report.Report, w io.Writer) error {
	f := excelize.NewFile()
	const summary = "Resumen"
	f.SetSheetName("Sheet1", summary)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDDDDD"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"EEEEEE"}},
	})
	if err != nil {
		return fmt.Errorf("create total style: %w", err)
	}

	_ = f.SetCellValue(summary, "A1", r.Title)
	_ = f.SetCellValue(summary, "A2", r.Period.String())
	summaryRow := 4

	tableIndex := 0
	for _, section := range r.Sections {
		switch {
		case section.Narrative != nil:
			n := section.Narrative
			if n.Title != "" {
				_ = f.SetCellValue(summary, cellRef(0, summaryRow), n.Title)
				_ = f.SetCellStyle(summary, cellRef(0, summaryRow), cellRef(0, summaryRow), headerStyle)
				summaryRow++
			}
			for _, line := range n.Lines {
				_ = f.SetCellValue(summary, cellRef(0, summaryRow), line.Label)
				_ = f.SetCellValue(summary, cellRef(1, summaryRow), line.Value)
				summaryRow++
			}
			summaryRow++
		case section.Table != nil:
			tableIndex++
			sheet := sheetName(section.Table.Title, tableIndex)
			if _, err := f.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %q: %w", sheet, err)
			}
			writeSheet(f, sheet, section.Table, headerStyle, totalStyle)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t *report.Table, headerStyle, totalStyle int) {
	row := 1
	for i, c := range t.Headers {
		_ = f.SetCellValue(sheet, cellRef(i, row), c.Text)
	}
	if len(t.Headers) > 0 {
		_ = f.SetCellStyle(sheet, cellRef(0, row), cellRef(len(t.Headers)-1, row), headerStyle)
	}
	row++
	for _, dataRow := range t.Rows {
		for i, c := range dataRow {
			_ = f.SetCellValue(sheet, cellRef(i, row), c.Text)
		}
		row++
	}
	if t.Total != nil {
		for i, c := range t.Total {
			_ = f.SetCellValue(sheet, cellRef(i, row), c.Text)
		}
		_ = f.SetCellStyle(sheet, cellRef(0, row), cellRef(len(t.Total)-1, row), totalStyle)
	}
}

// sheetName derives a unique, excel-safe sheet name from the table title.
func sheetName(title string, index int) string {
	name := title
	for _, bad := range []string{"/", "\\", "?", "*", "[", "]", ":"} {
		name = strings.ReplaceAll(name, bad, " ")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Tabla %d", index)
	}
	// Sheet names cap at 31 characters; keep room for the index suffix.
	if runes := []rune(name); len(runes) > 25 {
		name = string(runes[:25])
	}
	return fmt.Sprintf("%s (%d)", name, index)
}

func cellRef(col, row int) string {
	ref, _ := excelize.CoordinatesToCellName(col+1, row)
	return ref
}
