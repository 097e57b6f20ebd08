package report

import (
	"context"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
)

// Comparative splits the period in half at its temporal midpoint and
// compares per-category spend between the halves. A category absent from
// one half counts as zero there; a zero first half with spend in the
// second reports the "+∞%" sentinel.
func (a *Assembler) Comparative(ctx context.Context, p core.Period, userID int64) (*Report, error) {
	const title = "Comparativo entre períodos"

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return emptyReport(KindComparative, title, p), nil
	}

	first, second := p.Split()
	var firstRecords, secondRecords []core.Expense
	for _, e := range records {
		if first.Contains(e.Date) {
			firstRecords = append(firstRecords, e)
		} else {
			secondRecords = append(secondRecords, e)
		}
	}

	firstSums := aggregate.GroupSum(firstRecords, expenseCategory, expenseTotal, nil)
	secondSums := aggregate.GroupSum(secondRecords, expenseCategory, expenseTotal, nil)

	// Union of categories from either half, sorted for layout.
	categories := aggregate.NewSums[string]()
	for _, c := range firstSums.Keys() {
		categories.Add(c, decimal.Zero)
	}
	for _, c := range secondSums.Keys() {
		categories.Add(c, decimal.Zero)
	}
	categories.Sort(lessString)

	table := &Table{
		Title:   title,
		Headers: []Cell{left("Categoría"), right("Período 1"), right("Período 2"), right("Diferencia"), right("Cambio")},
	}
	for _, category := range categories.Keys() {
		before := firstSums.Get(category)
		after := secondSums.Get(category)
		table.Rows = append(table.Rows, []Cell{
			left(category),
			right(fmtAmt(before)),
			right(fmtAmt(after)),
			right(fmtAmt(after.Sub(before))),
			right(changeString(before, after)),
		})
	}
	firstTotal := firstSums.Total()
	secondTotal := secondSums.Total()
	table.Total = []Cell{
		left("TOTAL"),
		right(fmtAmt(firstTotal)),
		right(fmtAmt(secondTotal)),
		right(fmtAmt(secondTotal.Sub(firstTotal))),
		right(changeString(firstTotal, secondTotal)),
	}

	r := &Report{Kind: KindComparative, Title: title, Period: p}
	r.addNarrative(&Narrative{
		Title: "Períodos",
		Lines: []StatLine{
			{Label: "Período 1", Value: first.String()},
			{Label: "Período 2", Value: second.String()},
		},
	})
	r.addTable(table)
	return r, nil
}

// Dashboard is the executive summary: headline totals and averages, the
// top three categories with medal ranks, and the five most frequently
// bought products by purchase count, not by spend.
func (a *Assembler) Dashboard(ctx context.Context, p core.Period, userID int64) (*Report, error) {
	const title = "Dashboard ejecutivo"

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return emptyReport(KindDashboard, title, p), nil
	}

	total := decimal.Zero
	largest := records[0]
	for _, e := range records {
		total = total.Add(e.Total)
		if e.Total.GreaterThan(largest.Total) {
			largest = e
		}
	}
	count := len(records)
	dailyAverage := average(total, int64(p.Days()))

	r := &Report{Kind: KindDashboard, Title: title, Period: p}
	r.addNarrative(&Narrative{
		Title: "Resumen del período",
		Lines: []StatLine{
			{Label: "Total gastado", Value: fmtAmt(total)},
			{Label: "Promedio diario", Value: fmtAmt(dailyAverage)},
			{Label: "Mayor compra", Value: fmtAmt(largest.Total) + " (" + largest.Product + ")"},
			{Label: "Número de compras", Value: fmtCount(count)},
			{Label: "Compra promedio", Value: fmtAmt(average(total, int64(count)))},
		},
	})

	medals := [3]string{"🥇", "🥈", "🥉"}
	byCategory := aggregate.GroupSum(records, expenseCategory, expenseTotal, nil)
	catTable := &Table{
		Title:   "Top 3 categorías",
		Headers: []Cell{center(""), left("Categoría"), right("Total"), right("%")},
	}
	for i, entry := range aggregate.TopN(byCategory, 3) {
		catTable.Rows = append(catTable.Rows, []Cell{
			center(medals[i]),
			left(entry.Key),
			right(fmtAmt(entry.Value)),
			right(fmtPct(aggregate.PercentageOf(entry.Value, total))),
		})
	}
	r.addTable(catTable)

	productCounts := aggregate.GroupCount(records,
		func(e core.Expense) string { return e.Product })
	prodTable := &Table{
		Title:   "Top 5 productos más comprados",
		Headers: []Cell{left("Producto"), right("Compras")},
	}
	for _, entry := range aggregate.TopNCounts(productCounts, 5) {
		prodTable.Rows = append(prodTable.Rows, []Cell{
			left(entry.Key),
			right(fmtCount(entry.Count)),
		})
	}
	r.addTable(prodTable)
	return r, nil
}
