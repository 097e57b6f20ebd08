package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
)

// BilleteroMonthly reconciles the cash-drawer ledger month by month: cash
// taken in, prizes paid out, and the resulting difference, cross-referenced
// with the expense sums recorded under the manager-payments and investment
// categories. A daily detail table follows.
func (a *Assembler) BilleteroMonthly(ctx context.Context, p core.Period) (*Report, error) {
	const title = "Reconciliación billetero"

	entries, err := a.billetero.ListBilleteroByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list billetero: %w", err)
	}
	if len(entries) == 0 {
		return emptyReport(KindBilletero, title, p), nil
	}

	expenses, err := a.expenses.ListByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	billeteroMonth := func(b core.Billetero) aggregate.YearMonth {
		return aggregate.YearMonthOf(b.Date.Time)
	}
	cash := aggregate.GroupSum(entries, billeteroMonth,
		func(b core.Billetero) decimal.Decimal { return b.Cash }, lessYearMonth)
	prizes := aggregate.GroupSum(entries, billeteroMonth,
		func(b core.Billetero) decimal.Decimal { return b.Prize }, nil)

	categoryByMonth := func(category string) *aggregate.Sums[aggregate.YearMonth] {
		sums := aggregate.NewSums[aggregate.YearMonth]()
		for _, e := range expenses {
			if strings.EqualFold(e.Category, category) {
				sums.Add(expenseMonth(e), e.Total)
			}
		}
		return sums
	}
	manager := categoryByMonth(ManagerPaymentsCategory)
	investment := categoryByMonth(InvestmentCategory)

	months := cash.Keys()
	withYear := spansYears(months)

	monthly := &Table{
		Title: "Resumen mensual",
		Headers: []Cell{
			left("Mes"), right("Caja"), right("Premios"), right("Diferencia"),
			right("Pagos encargado"), right("Inversión"),
		},
	}
	for _, ym := range months {
		monthly.Rows = append(monthly.Rows, []Cell{
			left(monthLabel(ym, withYear)),
			right(fmtAmt(cash.Get(ym))),
			right(fmtAmt(prizes.Get(ym))),
			right(fmtAmt(cash.Get(ym).Sub(prizes.Get(ym)))),
			right(fmtAmt(manager.Get(ym))),
			right(fmtAmt(investment.Get(ym))),
		})
	}
	totalCash := cash.Total()
	totalPrizes := prizes.Total()
	// The cross-referenced columns total over the displayed months only, so
	// the row stays the column-wise sum even when an expense falls in a
	// month with no billetero entry.
	managerTotal := decimal.Zero
	investmentTotal := decimal.Zero
	for _, ym := range months {
		managerTotal = managerTotal.Add(manager.Get(ym))
		investmentTotal = investmentTotal.Add(investment.Get(ym))
	}
	monthly.Total = []Cell{
		left("TOTAL"),
		right(fmtAmt(totalCash)),
		right(fmtAmt(totalPrizes)),
		right(fmtAmt(totalCash.Sub(totalPrizes))),
		right(fmtAmt(managerTotal)),
		right(fmtAmt(investmentTotal)),
	}

	daily := &Table{
		Title:   "Detalle diario",
		Headers: []Cell{left("Fecha"), right("Caja"), right("Premios"), right("Diferencia")},
	}
	for _, b := range entries {
		daily.Rows = append(daily.Rows, []Cell{
			left(b.Date.String()),
			right(fmtAmt(b.Cash)),
			right(fmtAmt(b.Prize)),
			right(fmtAmt(b.Difference())),
		})
	}

	r := &Report{Kind: KindBilletero, Title: title, Period: p}
	r.addTable(monthly)
	r.addTable(daily)
	r.addNarrative(&Narrative{
		Title: "Balance",
		Lines: []StatLine{
			{Label: "Caja total", Value: fmtAmt(totalCash)},
			{Label: "Premios totales", Value: fmtAmt(totalPrizes)},
			{Label: "Diferencia", Value: fmtAmt(totalCash.Sub(totalPrizes))},
		},
	})
	return r, nil
}
