// Package services orchestrates report generation and export.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"gastos/internal/render"
	"gastos/internal/report"
)

// ReportService ties the assembler to the render sinks.
type ReportService struct {
	assembler *report.Assembler
}

func NewReportService(assembler *report.Assembler) *ReportService {
	return &ReportService{assembler: assembler}
}

// Generate builds the report for the request.
func (s *ReportService) Generate(ctx context.Context, req report.Request) (*report.Report, error) {
	return s.assembler.Generate(ctx, req)
}

// Export writes the report to one file per requested format under dir,
// named <base><ext>. Formats render independently, so they fan out
// concurrently; the first failure cancels the rest and is returned.
func (s *ReportService) Export(ctx context.Context, rep *report.Report, formats []render.Format, dir, base string) error {
	if len(formats) == 0 {
		return fmt.Errorf("no output formats requested")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range formats {
		format := format
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			renderer, err := render.For(format)
			if err != nil {
				return err
			}
			path := filepath.Join(dir, base+format.Ext())
			if err := render.ExportFile(renderer, rep, path); err != nil {
				return fmt.Errorf("export %s: %w", format, err)
			}
			slog.InfoContext(ctx, "Report exported",
				"kind", rep.Kind.String(),
				"format", string(format),
				"path", path)
			return nil
		})
	}
	return g.Wait()
}
