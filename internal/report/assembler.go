package report

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"gastos/internal/aggregate"
	"gastos/internal/core"
)

// Assembler builds reports from the query-provider ports. One call runs to
// completion and returns its Report; no state is shared between calls.
type Assembler struct {
	expenses  ExpenseSource
	billetero BilleteroSource
}

func NewAssembler(expenses ExpenseSource, billetero BilleteroSource) *Assembler {
	return &Assembler{expenses: expenses, billetero: billetero}
}

// Request selects one report. Category and Product apply to their kinds
// only; Year applies to the annual report; UserID zero means all users.
type Request struct {
	Kind     Kind
	Period   core.Period
	Year     int
	Category string
	Product  string
	UserID   int64
}

// Generate dispatches on the request kind.
func (a *Assembler) Generate(ctx context.Context, req Request) (*Report, error) {
	slog.InfoContext(ctx, "Generating report",
		"kind", req.Kind.String(),
		"period", req.Period.String())

	switch req.Kind {
	case KindGeneralByMonth:
		return a.GeneralByMonth(ctx, req.Period, req.UserID)
	case KindByCategory:
		return a.ByCategory(ctx, req.Period, req.Category, req.UserID)
	case KindByProduct:
		return a.ByProduct(ctx, req.Period, req.Product, req.UserID)
	case KindComparative:
		return a.Comparative(ctx, req.Period, req.UserID)
	case KindDashboard:
		return a.Dashboard(ctx, req.Period, req.UserID)
	case KindSubcategoryBreakdown:
		return a.SubcategoryBreakdown(ctx, req.Period, req.UserID)
	case KindAnnual:
		return a.Annual(ctx, req.Year, req.UserID)
	case KindBilletero:
		return a.BilleteroMonthly(ctx, req.Period)
	default:
		return nil, fmt.Errorf("unknown report kind %d", int(req.Kind))
	}
}

// fetch lists the period's expenses, optionally filtered to one user.
func (a *Assembler) fetch(ctx context.Context, p core.Period, userID int64) ([]core.Expense, error) {
	if userID != 0 {
		records, err := a.expenses.ListByUserAndPeriod(ctx, userID, p)
		if err != nil {
			return nil, fmt.Errorf("list expenses for user %d: %w", userID, err)
		}
		return records, nil
	}
	records, err := a.expenses.ListByPeriod(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return records, nil
}

// emptyReport is the uniform empty-period output: one narrative section,
// no partial tables, no division attempts.
func emptyReport(kind Kind, title string, p core.Period) *Report {
	r := &Report{Kind: kind, Title: title, Period: p}
	r.addNarrative(&Narrative{Title: NoDataMessage})
	return r
}

func fmtAmt(d decimal.Decimal) string {
	return core.FormatAmount(d)
}

func fmtCount(n int) string {
	return strconv.Itoa(n)
}

func fmtPct(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// average divides total by count rounded half-up to 2 decimal places,
// zero when count is zero.
func average(total decimal.Decimal, count int64) decimal.Decimal {
	if count == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(count)).Round(2)
}

// monthLabel renders a YearMonth bucket; the year is appended only when
// the report spans more than one calendar year.
func monthLabel(ym aggregate.YearMonth, withYear bool) string {
	label := monthAbbr[int(ym.Month)-1]
	if withYear {
		return fmt.Sprintf("%s %d", label, ym.Year)
	}
	return label
}

func spansYears(months []aggregate.YearMonth) bool {
	for i := 1; i < len(months); i++ {
		if months[i].Year != months[0].Year {
			return true
		}
	}
	return false
}

// changeString formats a period-over-period change. A zero baseline with
// nonzero spend is the "+∞%" sentinel, never an arithmetic error; two zero
// periods report "0.0%".
func changeString(before, after decimal.Decimal) string {
	if before.IsZero() {
		if after.IsZero() {
			return "0.0%"
		}
		return "+∞%"
	}
	pct := after.Sub(before).Div(before).Mul(decimal.New(100, 0)).Round(1)
	switch {
	case pct.IsPositive():
		return "↗ " + fmtPct(pct)
	case pct.IsNegative():
		return "↘ " + fmtPct(pct.Abs())
	default:
		return "0.0%"
	}
}

func expenseTotal(e core.Expense) decimal.Decimal { return e.Total }

func expenseCategory(e core.Expense) string { return e.Category }

func expenseMonth(e core.Expense) aggregate.YearMonth {
	return aggregate.YearMonthOf(e.Date.Time)
}

func lessString(a, b string) bool { return a < b }

func lessYearMonth(a, b aggregate.YearMonth) bool { return a.Before(b) }
