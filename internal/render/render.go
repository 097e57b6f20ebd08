// Package render turns assembled reports into text, PDF, or XLSX output.
//
// Renderers consume the structured report only; they never recompute
// figures. Column order, header styling, and the distinguished total row
// are preserved across formats.
package render

import (
	"fmt"
	"io"

	"gastos/internal/report"
)

// Format selects an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a selector string to its Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatText, FormatPDF, FormatXLSX:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Ext returns the file extension for the format, dot included.
func (f Format) Ext() string {
	switch f {
	case FormatPDF:
		return ".pdf"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".txt"
	}
}

// Renderer writes one report to a stream in a single synchronous call.
type Renderer interface {
	Render(r *report.Report, w io.Writer) error
}

// For returns the renderer for a format.
func For(f Format) (Renderer, error) {
	switch f {
	case FormatText:
		return NewText(), nil
	case FormatPDF:
		return NewPDF(), nil
	case FormatXLSX:
		return NewXLSX(), nil
	}
	return nil, fmt.Errorf("unknown output format %q", f)
}
