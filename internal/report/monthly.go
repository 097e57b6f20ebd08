package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
)

// GeneralByMonth emits a category-by-month matrix over the months actually
// present in the data, with a trailing TOTAL column per category and a
// trailing TOTAL MES row per month. Grand total reconciles with both.
func (a *Assembler) GeneralByMonth(ctx context.Context, p core.Period, userID int64) (*Report, error) {
	const title = "Gastos generales por mes"

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return emptyReport(KindGeneralByMonth, title, p), nil
	}

	byCategory := aggregate.GroupSumNested(records, expenseCategory, expenseMonth, expenseTotal)
	byCategory.Sort(lessString)
	byMonth := aggregate.GroupSum(records, expenseMonth, expenseTotal, lessYearMonth)

	months := byMonth.Keys()
	withYear := spansYears(months)

	headers := []Cell{left("Categoría")}
	for _, ym := range months {
		headers = append(headers, right(monthLabel(ym, withYear)))
	}
	headers = append(headers, right("TOTAL"))

	table := &Table{Title: title, Headers: headers}
	for _, category := range byCategory.Keys() {
		sums := byCategory.Get(category)
		row := []Cell{left(category)}
		rowTotal := decimal.Zero
		for _, ym := range months {
			amount := sums.Get(ym)
			rowTotal = rowTotal.Add(amount)
			row = append(row, right(fmtAmt(amount)))
		}
		row = append(row, right(fmtAmt(rowTotal)))
		table.Rows = append(table.Rows, row)
	}

	grandTotal := byMonth.Total()
	totalRow := []Cell{left("TOTAL MES")}
	for _, ym := range months {
		totalRow = append(totalRow, right(fmtAmt(byMonth.Get(ym))))
	}
	totalRow = append(totalRow, right(fmtAmt(grandTotal)))
	table.Total = totalRow

	r := &Report{Kind: KindGeneralByMonth, Title: title, Period: p}
	r.addTable(table)
	r.addNarrative(&Narrative{
		Title: "Resumen",
		Lines: []StatLine{
			{Label: "Período", Value: p.String()},
			{Label: "Total del período", Value: fmtAmt(grandTotal)},
			{Label: "Número de compras", Value: fmtCount(len(records))},
		},
	})
	return r, nil
}

// Annual fixes the period to the calendar year and buckets into exactly 12
// month slots, zero months included. Bars are scaled against the maximum
// month. Both monthly-average denominators are reported side by side: per
// calendar month (always 12) and per month with nonzero spend.
func (a *Assembler) Annual(ctx context.Context, year int, userID int64) (*Report, error) {
	title := fmt.Sprintf("Resumen anual %d", year)
	p := core.YearPeriod(year)

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return emptyReport(KindAnnual, title, p), nil
	}

	byMonth := aggregate.GroupSum(records, expenseMonth, expenseTotal, lessYearMonth)
	total := byMonth.Total()
	max := byMonth.Max()

	table := &Table{
		Title:   title,
		Headers: []Cell{left("Mes"), right("Total"), left("")},
	}
	activeMonths := int64(0)
	for month := 1; month <= 12; month++ {
		ym := aggregate.YearMonth{Year: year, Month: time.Month(month)}
		amount := byMonth.Get(ym)
		if !amount.IsZero() {
			activeMonths++
		}
		bar := aggregate.Bar(aggregate.Fraction(amount, max), barWidth, barFill, barEmpty)
		table.Rows = append(table.Rows, []Cell{
			left(monthAbbr[month-1]),
			right(fmtAmt(amount)),
			left(bar),
		})
	}
	table.Total = []Cell{left("TOTAL"), right(fmtAmt(total)), left("")}

	r := &Report{Kind: KindAnnual, Title: title, Period: p}
	r.addTable(table)
	r.addNarrative(&Narrative{
		Title: "Estadísticas",
		Lines: []StatLine{
			{Label: "Total anual", Value: fmtAmt(total)},
			{Label: "Promedio mensual (12 meses)", Value: fmtAmt(average(total, 12))},
			{Label: "Promedio mensual (meses con gasto)", Value: fmtAmt(average(total, activeMonths))},
			{Label: "Número de compras", Value: fmtCount(len(records))},
		},
	})
	return r, nil
}
