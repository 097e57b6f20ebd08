package render

import (
	"io"

	"github.com/jung-kurt/gofpdf"

	"gastos/internal/report"
)

// PDF renders reports as A4 portrait documents with bordered tables.
type PDF struct{}

func NewPDF() *PDF {
	return &PDF{}
}

const pdfContentWidth = 190.0 // A4 width minus default margins, mm

func (p *PDF) Render(r *report.Report, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, tr(r.Title))
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(r.Period.String()))
	pdf.Ln(10)

	for _, section := range r.Sections {
		switch {
		case section.Table != nil:
			pdfTable(pdf, tr, section.Table)
		case section.Narrative != nil:
			pdfNarrative(pdf, tr, section.Narrative)
		}
		pdf.Ln(6)
	}

	return pdf.Output(w)
}

func pdfNarrative(pdf *gofpdf.Fpdf, tr func(string) string, n *report.Narrative) {
	if n.Title != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr(n.Title))
		pdf.Ln(7)
	}
	pdf.SetFont("Arial", "", 10)
	for _, line := range n.Lines {
		pdf.Cell(70, 6, tr(line.Label))
		pdf.Cell(0, 6, tr(line.Value))
		pdf.Ln(5)
	}
}

func pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, t *report.Table) {
	if t.Title != "" {
		pdf.SetFont("Arial", "B", 11)
		pdf.Cell(0, 7, tr(t.Title))
		pdf.Ln(7)
	}
	if len(t.Headers) == 0 {
		return
	}
	colWidth := pdfContentWidth / float64(len(t.Headers))

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range t.Headers {
		pdf.CellFormat(colWidth, 6, tr(c.Text), "1", 0, alignStr(c.Align), true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range t.Rows {
		for _, c := range row {
			pdf.CellFormat(colWidth, 6, tr(c.Text), "1", 0, alignStr(c.Align), false, 0, "")
		}
		pdf.Ln(-1)
	}

	if t.Total != nil {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(245, 245, 245)
		for _, c := range t.Total {
			pdf.CellFormat(colWidth, 6, tr(c.Text), "1", 0, alignStr(c.Align), true, 0, "")
		}
		pdf.Ln(-1)
	}
}

func alignStr(a report.Align) string {
	switch a {
	case report.AlignRight:
		return "R"
	case report.AlignCenter:
		return "C"
	default:
		return "L"
	}
}
