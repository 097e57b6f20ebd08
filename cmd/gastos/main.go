package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gastos/internal/cli"
	"gastos/internal/core"
	applog "gastos/internal/log"
	"gastos/internal/render"
	"gastos/internal/report"
	"gastos/internal/services"
)

func main() {
	var (
		kindFlag     = flag.String("report", "general", "report kind: general, categoria, producto, comparativo, dashboard, subcategorias, anual, billetero")
		fromFlag     = flag.String("from", "", "period start (YYYY-MM-DD)")
		toFlag       = flag.String("to", "", "period end (YYYY-MM-DD)")
		yearFlag     = flag.Int("year", 0, "calendar year, shorthand for -from/-to and required for anual")
		categoryFlag = flag.String("category", "", "category name for the categoria report")
		productFlag  = flag.String("product", "", "product name for the producto report")
		userFlag     = flag.Int64("user", 0, "restrict to a single user id (0 = all users)")
		formatFlag   = flag.String("format", "", "comma-separated export formats (text, pdf, xlsx); empty prints text to stdout")
		outFlag      = flag.String("out", "", "output directory for exported files (default from config)")
	)
	flag.Parse()

	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	kind, ok := report.ParseKind(*kindFlag)
	if !ok {
		logger.Error("Unknown report kind", applog.FieldKind, *kindFlag)
		os.Exit(1)
	}

	period, year, err := resolvePeriod(*fromFlag, *toFlag, *yearFlag)
	if err != nil {
		logger.Error("Invalid period", applog.FieldError, err)
		os.Exit(1)
	}
	if kind == report.KindAnnual && year == 0 {
		logger.Error("Annual report requires -year")
		os.Exit(1)
	}

	userID := *userFlag
	if userID == 0 {
		userID = cfg.DefaultUserID
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	svc := services.NewReportService(report.NewAssembler(repo, repo))

	ctx := context.Background()
	rep, err := svc.Generate(ctx, report.Request{
		Kind:     kind,
		Period:   period,
		Year:     year,
		Category: *categoryFlag,
		Product:  *productFlag,
		UserID:   userID,
	})
	if err != nil {
		logger.Error("Report generation failed", applog.FieldKind, kind.String(), applog.FieldError, err)
		os.Exit(1)
	}

	if *formatFlag == "" {
		renderer, _ := render.For(render.FormatText)
		if err := renderer.Render(rep, os.Stdout); err != nil {
			logger.Error("Render failed", applog.FieldError, err)
			os.Exit(1)
		}
		return
	}

	formats, err := parseFormats(*formatFlag)
	if err != nil {
		logger.Error("Invalid format list", applog.FieldError, err)
		os.Exit(1)
	}
	outDir := *outFlag
	if outDir == "" {
		outDir = cfg.OutputDir
	}
	base := exportBase(kind, period, year)
	if err := svc.Export(ctx, rep, formats, outDir, base); err != nil {
		logger.Error("Export failed", applog.FieldError, err)
		os.Exit(1)
	}
}

// resolvePeriod builds the report period from -from/-to or -year. With no
// flags at all it defaults to the current calendar month.
func resolvePeriod(from, to string, year int) (core.Period, int, error) {
	if year != 0 {
		return core.YearPeriod(year), year, nil
	}
	if from == "" && to == "" {
		now := time.Now()
		start := core.NewDate(now.Year(), int(now.Month()), 1)
		end := core.Date{Time: start.AddDate(0, 1, -1)}
		p, err := core.NewPeriod(start, end)
		return p, 0, err
	}
	start, err := parseDate(from)
	if err != nil {
		return core.Period{}, 0, fmt.Errorf("invalid -from: %w", err)
	}
	end, err := parseDate(to)
	if err != nil {
		return core.Period{}, 0, fmt.Errorf("invalid -to: %w", err)
	}
	p, err := core.NewPeriod(start, end)
	return p, 0, err
}

func parseDate(s string) (core.Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return core.Date{}, err
	}
	return core.NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

func parseFormats(s string) ([]render.Format, error) {
	var formats []render.Format
	for _, part := range strings.Split(s, ",") {
		f, err := render.ParseFormat(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		formats = append(formats, f)
	}
	return formats, nil
}

func exportBase(kind report.Kind, p core.Period, year int) string {
	if year != 0 {
		return fmt.Sprintf("%s-%d", kind.String(), year)
	}
	return fmt.Sprintf("%s-%s-%s",
		kind.String(),
		p.Start.Format("20060102"),
		p.End.Format("20060102"))
}
