package report

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
	"gastos/internal/storage/memory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func exp(date core.Date, cat, sub, product string, qty int64, unit string) core.Expense {
	u := dec(unit)
	return core.Expense{
		Date:        date,
		UserID:      1,
		Category:    cat,
		Subcategory: sub,
		Product:     product,
		Quantity:    qty,
		UnitPrice:   u,
		Total:       core.NewExpenseTotal(qty, u),
	}
}

func period(t *testing.T, y1, m1, d1, y2, m2, d2 int) core.Period {
	t.Helper()
	p, err := core.NewPeriod(core.NewDate(y1, m1, d1), core.NewDate(y2, m2, d2))
	if err != nil {
		t.Fatalf("NewPeriod: %v", err)
	}
	return p
}

func assembler(expenses []core.Expense, billetero []core.Billetero) *Assembler {
	store := memory.Seed(expenses, billetero)
	return NewAssembler(store, store)
}

func firstTable(t *testing.T, r *Report) *Table {
	t.Helper()
	for _, s := range r.Sections {
		if s.Table != nil {
			return s.Table
		}
	}
	t.Fatal("report has no table section")
	return nil
}

func firstNarrative(t *testing.T, r *Report) *Narrative {
	t.Helper()
	for _, s := range r.Sections {
		if s.Narrative != nil {
			return s.Narrative
		}
	}
	t.Fatal("report has no narrative section")
	return nil
}

func statValue(t *testing.T, n *Narrative, label string) string {
	t.Helper()
	for _, line := range n.Lines {
		if line.Label == label {
			return line.Value
		}
	}
	t.Fatalf("narrative %q has no line %q", n.Title, label)
	return ""
}

// Scenario A: one milk purchase in January.
func TestGeneralByMonthSingleExpense(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 5), "Food", "Groceries", "Milk", 2, "3.50"),
	}, nil)
	p := period(t, 2024, 1, 1, 2024, 1, 31)

	r, err := a.GeneralByMonth(context.Background(), p, 0)
	if err != nil {
		t.Fatalf("GeneralByMonth: %v", err)
	}
	table := firstTable(t, r)
	if len(table.Headers) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(table.Headers))
	}
	if table.Headers[1].Text != "Ene" {
		t.Fatalf("expected month column Ene, got %q", table.Headers[1].Text)
	}
	if len(table.Rows) != 1 || table.Rows[0][0].Text != "Food" {
		t.Fatalf("expected single Food row, got %+v", table.Rows)
	}
	if table.Rows[0][1].Text != "7.00" {
		t.Fatalf("expected cell 7.00, got %q", table.Rows[0][1].Text)
	}
	if table.Total[0].Text != "TOTAL MES" || table.Total[1].Text != "7.00" {
		t.Fatalf("unexpected total row: %+v", table.Total)
	}
}

// The grand total must reconcile exactly with the sum of all expense
// totals in the period, no rounding drift.
func TestGeneralByMonthGrandTotalReconciles(t *testing.T) {
	expenses := []core.Expense{
		exp(core.NewDate(2024, 1, 3), "Food", "Groceries", "Milk", 3, "1.01"),
		exp(core.NewDate(2024, 1, 17), "Food", "Snacks", "Chips", 1, "2.37"),
		exp(core.NewDate(2024, 2, 9), "Transport", "", "Bus ticket", 7, "1.45"),
		exp(core.NewDate(2024, 3, 21), "Home", "Cleaning", "Soap", 2, "0.99"),
	}
	want := decimal.Zero
	for _, e := range expenses {
		want = want.Add(e.Total)
	}

	a := assembler(expenses, nil)
	r, err := a.GeneralByMonth(context.Background(), period(t, 2024, 1, 1, 2024, 3, 31), 0)
	if err != nil {
		t.Fatalf("GeneralByMonth: %v", err)
	}
	table := firstTable(t, r)
	grand := table.Total[len(table.Total)-1].Text
	if grand != core.FormatAmount(want) {
		t.Fatalf("grand total %s, want %s", grand, core.FormatAmount(want))
	}

	// Row totals reconcile too.
	rowSum := decimal.Zero
	for _, row := range table.Rows {
		rowSum = rowSum.Add(dec(row[len(row)-1].Text))
	}
	if !rowSum.Equal(want) {
		t.Fatalf("row totals sum to %s, want %s", rowSum, want)
	}
}

// Scenario B: product history for Milk.
func TestByProduct(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 5), "Food", "Groceries", "Milk", 2, "3.50"),
	}, nil)
	r, err := a.ByProduct(context.Background(), period(t, 2024, 1, 1, 2024, 1, 31), "milk", 0)
	if err != nil {
		t.Fatalf("ByProduct: %v", err)
	}
	n := firstNarrative(t, r)
	if got := statValue(t, n, "Total gastado"); got != "7.00" {
		t.Fatalf("total: %s", got)
	}
	if got := statValue(t, n, "Cantidad total"); got != "2" {
		t.Fatalf("quantity: %s", got)
	}
	if got := statValue(t, n, "Precio promedio"); got != "3.50" {
		t.Fatalf("average price: %s", got)
	}
	if statValue(t, n, "Precio mínimo") != "3.50" || statValue(t, n, "Precio máximo") != "3.50" {
		t.Fatal("min/max should both be 3.50")
	}
	if statValue(t, n, "Categoría") != "Food" || statValue(t, n, "Subcategoría") != "Groceries" {
		t.Fatal("last-purchase metadata wrong")
	}
}

func TestByProductAveragePriceIsArithmeticMean(t *testing.T) {
	// 1 unit at 2.00 and 9 units at 4.00: arithmetic mean of unit prices
	// is 3.00, a quantity-weighted mean would be 3.80.
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 5), "Food", "", "Milk", 1, "2.00"),
		exp(core.NewDate(2024, 1, 9), "Food", "", "Milk", 9, "4.00"),
	}, nil)
	r, err := a.ByProduct(context.Background(), period(t, 2024, 1, 1, 2024, 1, 31), "Milk", 0)
	if err != nil {
		t.Fatalf("ByProduct: %v", err)
	}
	n := firstNarrative(t, r)
	if got := statValue(t, n, "Precio promedio"); got != "3.00" {
		t.Fatalf("average price: %s, want arithmetic mean 3.00", got)
	}
	// Newest purchase drives the metadata and heads the table.
	if got := statValue(t, n, "Última compra"); got != "2024-01-09" {
		t.Fatalf("last purchase: %s", got)
	}
}

func TestByCategoryBreakdownReconciles(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 2), "Food", "Groceries", "Milk", 2, "3.50"),
		exp(core.NewDate(2024, 1, 4), "Food", "Snacks", "Chips", 1, "2.50"),
		exp(core.NewDate(2024, 1, 6), "Food", "", "Candy", 1, "1.50"),
		exp(core.NewDate(2024, 1, 6), "Transport", "", "Bus ticket", 1, "1.45"),
	}, nil)
	r, err := a.ByCategory(context.Background(), period(t, 2024, 1, 1, 2024, 1, 31), "food", 0)
	if err != nil {
		t.Fatalf("ByCategory: %v", err)
	}
	n := firstNarrative(t, r)
	if got := statValue(t, n, "Total gastado"); got != "11.00" {
		t.Fatalf("category total: %s", got)
	}
	if got := statValue(t, n, "Número de compras"); got != "3" {
		t.Fatalf("purchase count: %s", got)
	}

	table := firstTable(t, r)
	sum := decimal.Zero
	sawFallback := false
	for _, row := range table.Rows {
		sum = sum.Add(dec(row[1].Text))
		if row[0].Text == NoSubcategoryLabel {
			sawFallback = true
		}
	}
	if !sum.Equal(dec("11.00")) {
		t.Fatalf("subcategory sums total %s, want 11.00", sum)
	}
	if !sawFallback {
		t.Fatalf("expected %q row for the subcategory-less purchase", NoSubcategoryLabel)
	}
}

// Scenario C plus the zero-baseline sentinel.
func TestComparative(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 3), "Food", "", "Groceries week 1", 1, "100.00"),
		exp(core.NewDate(2024, 1, 13), "Food", "", "Groceries week 3", 1, "150.00"),
		exp(core.NewDate(2024, 1, 15), "Leisure", "", "Cinema", 1, "20.00"),
	}, nil)
	r, err := a.Comparative(context.Background(), period(t, 2024, 1, 1, 2024, 1, 20), 0)
	if err != nil {
		t.Fatalf("Comparative: %v", err)
	}
	table := firstTable(t, r)

	rows := map[string][]Cell{}
	for _, row := range table.Rows {
		rows[row[0].Text] = row
	}
	food := rows["Food"]
	if food == nil {
		t.Fatal("missing Food row")
	}
	if food[3].Text != "50.00" {
		t.Fatalf("Food difference: %s", food[3].Text)
	}
	if food[4].Text != "↗ 50.0%" {
		t.Fatalf("Food change: %q", food[4].Text)
	}
	leisure := rows["Leisure"]
	if leisure == nil {
		t.Fatal("missing Leisure row")
	}
	if leisure[4].Text != "+∞%" {
		t.Fatalf("zero-baseline change should be the sentinel, got %q", leisure[4].Text)
	}
}

func TestChangeString(t *testing.T) {
	cases := []struct {
		before, after, want string
	}{
		{"0", "0", "0.0%"},
		{"0", "10", "+∞%"},
		{"100", "150", "↗ 50.0%"},
		{"150", "100", "↘ 33.3%"},
		{"100", "100", "0.0%"},
	}
	for _, tc := range cases {
		if got := changeString(dec(tc.before), dec(tc.after)); got != tc.want {
			t.Fatalf("changeString(%s, %s) = %q, want %q", tc.before, tc.after, got, tc.want)
		}
	}
}

// Scenario D: 300.00 over a 10-day inclusive period.
func TestDashboardDailyAverage(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 2), "Food", "", "Groceries", 1, "180.00"),
		exp(core.NewDate(2024, 1, 8), "Leisure", "", "Concert", 1, "120.00"),
	}, nil)
	r, err := a.Dashboard(context.Background(), period(t, 2024, 1, 1, 2024, 1, 10), 0)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	n := firstNarrative(t, r)
	if got := statValue(t, n, "Total gastado"); got != "300.00" {
		t.Fatalf("total: %s", got)
	}
	if got := statValue(t, n, "Promedio diario"); got != "30.00" {
		t.Fatalf("daily average: %s", got)
	}
	if got := statValue(t, n, "Mayor compra"); got != "180.00 (Groceries)" {
		t.Fatalf("largest purchase: %s", got)
	}

	table := firstTable(t, r)
	if table.Rows[0][0].Text != "🥇" || table.Rows[0][1].Text != "Food" {
		t.Fatalf("expected Food with gold medal, got %+v", table.Rows[0])
	}
}

// Scenario E: 60/40 split with proportional bars at width 20.
func TestSubcategoryBreakdown(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 2), "Food", "Groceries", "Weekly shop", 1, "60.00"),
		exp(core.NewDate(2024, 1, 4), "Food", "Snacks", "Party snacks", 1, "40.00"),
	}, nil)
	r, err := a.SubcategoryBreakdown(context.Background(), period(t, 2024, 1, 1, 2024, 1, 31), 0)
	if err != nil {
		t.Fatalf("SubcategoryBreakdown: %v", err)
	}
	table := firstTable(t, r)
	if table.Title != "Food" {
		t.Fatalf("table title: %s", table.Title)
	}
	byName := map[string][]Cell{}
	for _, row := range table.Rows {
		byName[row[0].Text] = row
	}
	groceries := byName["Groceries"]
	snacks := byName["Snacks"]
	if groceries[2].Text != "60.0%" || snacks[2].Text != "40.0%" {
		t.Fatalf("percentages: %s / %s", groceries[2].Text, snacks[2].Text)
	}
	if groceries[3].Text != "████████████░░░░░░░░" {
		t.Fatalf("groceries bar: %q", groceries[3].Text)
	}
	if snacks[3].Text != "████████░░░░░░░░░░░░" {
		t.Fatalf("snacks bar: %q", snacks[3].Text)
	}

	n := r.Sections[len(r.Sections)-1].Narrative
	if n == nil || statValue(t, n, "TOTAL GENERAL") != "100.00" {
		t.Fatal("missing or wrong grand total")
	}
}

func TestAnnualAlwaysTwelveRows(t *testing.T) {
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 3, 2), "Food", "", "Groceries", 1, "90.00"),
		exp(core.NewDate(2024, 7, 9), "Food", "", "Groceries", 1, "30.00"),
	}, nil)
	r, err := a.Annual(context.Background(), 2024, 0)
	if err != nil {
		t.Fatalf("Annual: %v", err)
	}
	table := firstTable(t, r)
	if len(table.Rows) != 12 {
		t.Fatalf("expected exactly 12 month rows, got %d", len(table.Rows))
	}
	if table.Rows[0][0].Text != "Ene" || table.Rows[11][0].Text != "Dic" {
		t.Fatalf("month labels wrong: %s .. %s", table.Rows[0][0].Text, table.Rows[11][0].Text)
	}
	if table.Rows[0][1].Text != "0.00" {
		t.Fatalf("zero month should render 0.00, got %s", table.Rows[0][1].Text)
	}
	// March is the maximum month: full-width bar.
	if table.Rows[2][2].Text != "████████████████████" {
		t.Fatalf("max month bar: %q", table.Rows[2][2].Text)
	}

	n := firstNarrative(t, r)
	// 120 over 12 calendar months vs over 2 active months.
	if got := statValue(t, n, "Promedio mensual (12 meses)"); got != "10.00" {
		t.Fatalf("calendar-month average: %s", got)
	}
	if got := statValue(t, n, "Promedio mensual (meses con gasto)"); got != "60.00" {
		t.Fatalf("active-month average: %s", got)
	}
}

func TestEmptyPeriodUniformHandling(t *testing.T) {
	a := assembler(nil, nil)
	p := period(t, 2024, 1, 1, 2024, 1, 31)
	ctx := context.Background()

	requests := []Request{
		{Kind: KindGeneralByMonth, Period: p},
		{Kind: KindByCategory, Period: p, Category: "Food"},
		{Kind: KindByProduct, Period: p, Product: "Milk"},
		{Kind: KindComparative, Period: p},
		{Kind: KindDashboard, Period: p},
		{Kind: KindSubcategoryBreakdown, Period: p},
		{Kind: KindAnnual, Year: 2024},
		{Kind: KindBilletero, Period: p},
	}
	for _, req := range requests {
		r, err := a.Generate(ctx, req)
		if err != nil {
			t.Fatalf("%s: %v", req.Kind, err)
		}
		if len(r.Sections) != 1 || r.Sections[0].Narrative == nil {
			t.Fatalf("%s: expected a single narrative section", req.Kind)
		}
		if r.Sections[0].Narrative.Title != NoDataMessage {
			t.Fatalf("%s: expected %q, got %q", req.Kind, NoDataMessage, r.Sections[0].Narrative.Title)
		}
	}
}

func TestUserFilter(t *testing.T) {
	other := exp(core.NewDate(2024, 1, 6), "Food", "", "Wine", 1, "15.00")
	other.UserID = 2
	a := assembler([]core.Expense{
		exp(core.NewDate(2024, 1, 5), "Food", "", "Milk", 1, "2.00"),
		other,
	}, nil)
	r, err := a.Dashboard(context.Background(), period(t, 2024, 1, 1, 2024, 1, 31), 1)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	n := firstNarrative(t, r)
	if got := statValue(t, n, "Total gastado"); got != "2.00" {
		t.Fatalf("user filter leaked: %s", got)
	}
}

func TestBilleteroReconciliation(t *testing.T) {
	billetero := []core.Billetero{
		{Date: core.NewDate(2024, 1, 5), Cash: dec("250.00"), Prize: dec("120.00")},
		{Date: core.NewDate(2024, 1, 6), Cash: dec("300.00"), Prize: dec("180.00")},
		{Date: core.NewDate(2024, 2, 2), Cash: dec("100.00"), Prize: dec("40.00")},
	}
	expenses := []core.Expense{
		exp(core.NewDate(2024, 1, 10), ManagerPaymentsCategory, "", "Pago semanal", 1, "80.00"),
		exp(core.NewDate(2024, 1, 12), InvestmentCategory, "", "Décimos", 1, "45.00"),
		exp(core.NewDate(2024, 1, 15), "Food", "", "Milk", 1, "3.00"),
	}
	a := assembler(expenses, billetero)
	r, err := a.BilleteroMonthly(context.Background(), period(t, 2024, 1, 1, 2024, 2, 28))
	if err != nil {
		t.Fatalf("BilleteroMonthly: %v", err)
	}
	table := firstTable(t, r)
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 month rows, got %d", len(table.Rows))
	}
	jan := table.Rows[0]
	if jan[1].Text != "550.00" || jan[2].Text != "300.00" || jan[3].Text != "250.00" {
		t.Fatalf("january cash/prizes/difference wrong: %+v", jan)
	}
	if jan[4].Text != "80.00" || jan[5].Text != "45.00" {
		t.Fatalf("cross-referenced category sums wrong: %+v", jan)
	}
	if table.Total[1].Text != "650.00" || table.Total[2].Text != "310.00" || table.Total[3].Text != "340.00" {
		t.Fatalf("total row wrong: %+v", table.Total)
	}
}

// A cross-referenced expense in a month with no billetero entry must not
// leak into the total row: the total stays the column-wise sum of the
// displayed month rows.
func TestBilleteroTotalsMatchDisplayedMonths(t *testing.T) {
	billetero := []core.Billetero{
		{Date: core.NewDate(2024, 1, 5), Cash: dec("100.00"), Prize: dec("40.00")},
	}
	expenses := []core.Expense{
		exp(core.NewDate(2024, 1, 10), ManagerPaymentsCategory, "", "Pago semanal", 1, "80.00"),
		exp(core.NewDate(2024, 2, 12), ManagerPaymentsCategory, "", "Pago semanal", 1, "50.00"),
		exp(core.NewDate(2024, 2, 14), InvestmentCategory, "", "Décimos", 1, "25.00"),
	}
	a := assembler(expenses, billetero)
	r, err := a.BilleteroMonthly(context.Background(), period(t, 2024, 1, 1, 2024, 2, 28))
	if err != nil {
		t.Fatalf("BilleteroMonthly: %v", err)
	}
	table := firstTable(t, r)
	if len(table.Rows) != 1 {
		t.Fatalf("expected 1 month row, got %d", len(table.Rows))
	}
	for col := 1; col < len(table.Total); col++ {
		sum := decimal.Zero
		for _, row := range table.Rows {
			sum = sum.Add(dec(row[col].Text))
		}
		if got := dec(table.Total[col].Text); !got.Equal(sum) {
			t.Fatalf("column %d: total %s, rows sum to %s", col, got, sum)
		}
	}
	if table.Total[4].Text != "80.00" || table.Total[5].Text != "0.00" {
		t.Fatalf("cross-referenced totals wrong: %+v", table.Total)
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range []string{"general", "categoria", "producto", "comparativo", "dashboard", "subcategorias", "anual", "billetero"} {
		k, ok := ParseKind(name)
		if !ok {
			t.Fatalf("ParseKind(%q) failed", name)
		}
		if k.String() != name {
			t.Fatalf("round trip %q -> %q", name, k.String())
		}
	}
	if _, ok := ParseKind("nope"); ok {
		t.Fatal("expected failure for unknown kind")
	}
}
