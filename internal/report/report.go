// Package report assembles period-based expense and billetero reports.
//
// An assembler pulls a period's fact records through the source ports,
// aggregates them, and produces a Report: an ordered sequence of table and
// narrative sections ready for any render sink. Reports are transient,
// rebuilt from scratch on every invocation.
package report

import (
	"context"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

// Kind is the closed set of report shapes. Selection is by tagged variant,
// never by matching on report titles.
type Kind int

const (
	KindGeneralByMonth Kind = iota
	KindByCategory
	KindByProduct
	KindComparative
	KindDashboard
	KindSubcategoryBreakdown
	KindAnnual
	KindBilletero
)

var kindNames = map[Kind]string{
	KindGeneralByMonth:       "general",
	KindByCategory:           "categoria",
	KindByProduct:            "producto",
	KindComparative:          "comparativo",
	KindDashboard:            "dashboard",
	KindSubcategoryBreakdown: "subcategorias",
	KindAnnual:               "anual",
	KindBilletero:            "billetero",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind maps a selector string to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Align is a cell alignment hint for render sinks.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Cell is one formatted table cell.
type Cell struct {
	Text  string
	Align Align
}

func left(text string) Cell   { return Cell{Text: text, Align: AlignLeft} }
func right(text string) Cell  { return Cell{Text: text, Align: AlignRight} }
func center(text string) Cell { return Cell{Text: text, Align: AlignCenter} }

// Table is a header row plus data rows and an optional total row. When the
// total row is present it equals the column-wise sum of the data rows.
type Table struct {
	Title   string
	Headers []Cell
	Rows    [][]Cell
	Total   []Cell
}

// StatLine is one key/value line of a narrative block.
type StatLine struct {
	Label string
	Value string
}

// Narrative is a titled block of statistic lines.
type Narrative struct {
	Title string
	Lines []StatLine
}

// Section holds exactly one of Table or Narrative.
type Section struct {
	Table     *Table
	Narrative *Narrative
}

// Report is the assembled output for one period and one kind.
type Report struct {
	Kind     Kind
	Title    string
	Period   core.Period
	Sections []Section
}

func (r *Report) addTable(t *Table) {
	r.Sections = append(r.Sections, Section{Table: t})
}

func (r *Report) addNarrative(n *Narrative) {
	r.Sections = append(r.Sections, Section{Narrative: n})
}

// ExpenseSource is the query-provider port for expense facts. Bounds are
// inclusive; the full period result is returned in one call.
type ExpenseSource interface {
	ListByPeriod(ctx context.Context, p core.Period) ([]core.Expense, error)
	ListByUserAndPeriod(ctx context.Context, userID int64, p core.Period) ([]core.Expense, error)
	SumByPeriod(ctx context.Context, p core.Period) (decimal.Decimal, error)
}

// BilleteroSource is the query-provider port for billetero ledger entries.
type BilleteroSource interface {
	ListBilleteroByPeriod(ctx context.Context, p core.Period) ([]core.Billetero, error)
}

// NoDataMessage is the single section every report emits when the period
// holds no records. Not an error.
const NoDataMessage = "Sin datos en el período"

// NoSubcategoryLabel is the display label for purchases recorded without a
// subcategory. Presentation only; the domain keeps an empty field.
const NoSubcategoryLabel = "Sin subcategoría"

// Expense categories the billetero reconciliation cross-references.
const (
	ManagerPaymentsCategory = "Pagos encargado"
	InvestmentCategory      = "Inversión"
)

var monthAbbr = [12]string{"Ene", "Feb", "Mar", "Abr", "May", "Jun", "Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// Proportional bars are decorative text output at a fixed width.
const (
	barWidth = 20
	barFill  = '█'
	barEmpty = '░'
)
