package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"gastos/internal/report"
)

// Text renders reports as aligned plain-text tables.
type Text struct{}

func NewText() *Text {
	return &Text{}
}

func (t *Text) Render(r *report.Report, w io.Writer) error {
	var b strings.Builder

	b.WriteString(r.Title)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat("=", utf8.RuneCountInString(r.Title)))
	b.WriteString("\n\n")

	for _, section := range r.Sections {
		switch {
		case section.Table != nil:
			writeTable(&b, section.Table)
		case section.Narrative != nil:
			writeNarrative(&b, section.Narrative)
		}
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeNarrative(b *strings.Builder, n *report.Narrative) {
	if n.Title != "" {
		b.WriteString(n.Title)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(n.Title)))
		b.WriteByte('\n')
	}
	width := 0
	for _, line := range n.Lines {
		if l := utf8.RuneCountInString(line.Label); l > width {
			width = l
		}
	}
	for _, line := range n.Lines {
		fmt.Fprintf(b, "%s:%s %s\n", line.Label,
			strings.Repeat(" ", width-utf8.RuneCountInString(line.Label)), line.Value)
	}
}

func writeTable(b *strings.Builder, t *report.Table) {
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteByte('\n')
		b.WriteString(strings.Repeat("-", utf8.RuneCountInString(t.Title)))
		b.WriteByte('\n')
	}

	widths := make([]int, len(t.Headers))
	measure := func(row []report.Cell) {
		for i, c := range row {
			if i < len(widths) {
				if l := utf8.RuneCountInString(c.Text); l > widths[i] {
					widths[i] = l
				}
			}
		}
	}
	measure(t.Headers)
	for _, row := range t.Rows {
		measure(row)
	}
	if t.Total != nil {
		measure(t.Total)
	}

	writeRow(b, t.Headers, widths)
	writeRule(b, widths)
	for _, row := range t.Rows {
		writeRow(b, row, widths)
	}
	if t.Total != nil {
		writeRule(b, widths)
		writeRow(b, t.Total, widths)
	}
}

func writeRow(b *strings.Builder, row []report.Cell, widths []int) {
	for i, c := range row {
		if i > 0 {
			b.WriteString("  ")
		}
		width := 0
		if i < len(widths) {
			width = widths[i]
		}
		b.WriteString(pad(c.Text, width, c.Align))
	}
	b.WriteByte('\n')
}

func writeRule(b *strings.Builder, widths []int) {
	total := 0
	for i, w := range widths {
		if i > 0 {
			total += 2
		}
		total += w
	}
	b.WriteString(strings.Repeat("-", total))
	b.WriteByte('\n')
}

func pad(s string, width int, align report.Align) string {
	gap := width - utf8.RuneCountInString(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case report.AlignRight:
		return strings.Repeat(" ", gap) + s
	case report.AlignCenter:
		leftGap := gap / 2
		return strings.Repeat(" ", leftGap) + s + strings.Repeat(" ", gap-leftGap)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
