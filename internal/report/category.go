package report

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
)

// subcategoryLabel maps the optional subcategory to its display label.
func subcategoryLabel(sub string) string {
	if strings.TrimSpace(sub) == "" {
		return NoSubcategoryLabel
	}
	return sub
}

// ByCategory reports one category: headline statistics, a subcategory
// breakdown with percentage of the category total, and the top five
// products by spend annotated with purchase counts. The category name
// match is case-insensitive and exact.
func (a *Assembler) ByCategory(ctx context.Context, p core.Period, category string, userID int64) (*Report, error) {
	title := fmt.Sprintf("Gastos por categoría: %s", category)

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	var filtered []core.Expense
	for _, e := range records {
		if strings.EqualFold(e.Category, category) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return emptyReport(KindByCategory, title, p), nil
	}

	total := decimal.Zero
	for _, e := range filtered {
		total = total.Add(e.Total)
	}
	count := len(filtered)

	r := &Report{Kind: KindByCategory, Title: title, Period: p}
	r.addNarrative(&Narrative{
		Title: filtered[0].Category,
		Lines: []StatLine{
			{Label: "Total gastado", Value: fmtAmt(total)},
			{Label: "Número de compras", Value: fmtCount(count)},
			{Label: "Compra promedio", Value: fmtAmt(average(total, int64(count)))},
		},
	})

	bySubcategory := aggregate.GroupSum(filtered,
		func(e core.Expense) string { return subcategoryLabel(e.Subcategory) },
		expenseTotal, lessString)
	subTable := &Table{
		Title:   "Desglose por subcategoría",
		Headers: []Cell{left("Subcategoría"), right("Total"), right("%")},
	}
	for _, sub := range bySubcategory.Keys() {
		amount := bySubcategory.Get(sub)
		subTable.Rows = append(subTable.Rows, []Cell{
			left(sub),
			right(fmtAmt(amount)),
			right(fmtPct(aggregate.PercentageOf(amount, total))),
		})
	}
	subTable.Total = []Cell{left("TOTAL"), right(fmtAmt(total)), right("100.0%")}
	r.addTable(subTable)

	byProduct := aggregate.GroupSum(filtered,
		func(e core.Expense) string { return e.Product },
		expenseTotal, nil)
	productCounts := aggregate.GroupCount(filtered,
		func(e core.Expense) string { return e.Product })
	topTable := &Table{
		Title:   "Top 5 productos",
		Headers: []Cell{left("Producto"), right("Total"), right("Compras")},
	}
	for _, entry := range aggregate.TopN(byProduct, 5) {
		topTable.Rows = append(topTable.Rows, []Cell{
			left(entry.Key),
			right(fmtAmt(entry.Value)),
			right(fmtCount(productCounts.Get(entry.Key))),
		})
	}
	r.addTable(topTable)
	return r, nil
}

// ByProduct reports one product's purchase history, newest first. The
// category and subcategory shown are those of the most recent purchase;
// products carry no independent master record. The average unit price is
// the arithmetic mean across purchases, not quantity-weighted.
func (a *Assembler) ByProduct(ctx context.Context, p core.Period, product string, userID int64) (*Report, error) {
	title := fmt.Sprintf("Historial de producto: %s", product)

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	var filtered []core.Expense
	for _, e := range records {
		if strings.EqualFold(e.Product, product) {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) == 0 {
		return emptyReport(KindByProduct, title, p), nil
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if !filtered[i].Date.Equal(filtered[j].Date.Time) {
			return filtered[i].Date.After(filtered[j].Date)
		}
		return filtered[i].TimeOfDay > filtered[j].TimeOfDay
	})
	latest := filtered[0]

	total := decimal.Zero
	quantity := int64(0)
	unitSum := decimal.Zero
	for _, e := range filtered {
		total = total.Add(e.Total)
		quantity += e.Quantity
		unitSum = unitSum.Add(e.UnitPrice)
	}
	minUnit, maxUnit := aggregate.MinMax(filtered, func(e core.Expense) decimal.Decimal { return e.UnitPrice })

	r := &Report{Kind: KindByProduct, Title: title, Period: p}
	r.addNarrative(&Narrative{
		Title: latest.Product,
		Lines: []StatLine{
			{Label: "Última compra", Value: latest.Date.String()},
			{Label: "Categoría", Value: latest.Category},
			{Label: "Subcategoría", Value: subcategoryLabel(latest.Subcategory)},
			{Label: "Total gastado", Value: fmtAmt(total)},
			{Label: "Cantidad total", Value: fmtCount(int(quantity))},
			{Label: "Precio promedio", Value: fmtAmt(average(unitSum, int64(len(filtered))))},
			{Label: "Precio mínimo", Value: fmtAmt(minUnit)},
			{Label: "Precio máximo", Value: fmtAmt(maxUnit)},
		},
	})

	recent := filtered
	if len(recent) > 10 {
		recent = recent[:10]
	}
	table := &Table{
		Title:   "Últimas compras",
		Headers: []Cell{left("Fecha"), center("Hora"), right("Cantidad"), right("Precio"), right("Total")},
	}
	for _, e := range recent {
		table.Rows = append(table.Rows, []Cell{
			left(e.Date.String()),
			center(e.TimeOfDay),
			right(fmtCount(int(e.Quantity))),
			right(fmtAmt(e.UnitPrice)),
			right(fmtAmt(e.Total)),
		})
	}
	r.addTable(table)
	return r, nil
}

// SubcategoryBreakdown emits one table per category: every subcategory
// with its share of the category total and a proportional bar, closed by
// an overall grand total.
func (a *Assembler) SubcategoryBreakdown(ctx context.Context, p core.Period, userID int64) (*Report, error) {
	const title = "Desglose por subcategoría"

	records, err := a.fetch(ctx, p, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return emptyReport(KindSubcategoryBreakdown, title, p), nil
	}

	nested := aggregate.GroupSumNested(records, expenseCategory,
		func(e core.Expense) string { return subcategoryLabel(e.Subcategory) },
		expenseTotal)
	nested.Sort(lessString)

	r := &Report{Kind: KindSubcategoryBreakdown, Title: title, Period: p}
	grandTotal := decimal.Zero
	for _, category := range nested.Keys() {
		sums := nested.Get(category)
		sums.Sort(lessString)
		categoryTotal := sums.Total()
		grandTotal = grandTotal.Add(categoryTotal)

		table := &Table{
			Title:   category,
			Headers: []Cell{left("Subcategoría"), right("Total"), right("%"), left("")},
		}
		for _, sub := range sums.Keys() {
			amount := sums.Get(sub)
			bar := aggregate.Bar(aggregate.Fraction(amount, categoryTotal), barWidth, barFill, barEmpty)
			table.Rows = append(table.Rows, []Cell{
				left(sub),
				right(fmtAmt(amount)),
				right(fmtPct(aggregate.PercentageOf(amount, categoryTotal))),
				left(bar),
			})
		}
		table.Total = []Cell{left("TOTAL"), right(fmtAmt(categoryTotal)), right("100.0%"), left("")}
		r.addTable(table)
	}

	r.addNarrative(&Narrative{
		Title: "Total general",
		Lines: []StatLine{{Label: "TOTAL GENERAL", Value: fmtAmt(grandTotal)}},
	})
	return r, nil
}
