package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	Date struct {
		time.Time
	}

	// Expense is one purchase record. It is created by the registration
	// flow and never mutated by the reporting core.
	Expense struct {
		ID          int64
		Date        Date
		TimeOfDay   string // "HH:MM", optional
		UserID      int64
		Category    string
		Subcategory string // empty when the purchase has no subcategory
		Product     string
		Quantity    int64
		UnitPrice   decimal.Decimal
		Total       decimal.Decimal // must equal Quantity * UnitPrice
		Note        string
	}

	// Billetero is a daily cash-register ledger entry: money taken in at
	// the drawer and prizes paid out the same day.
	Billetero struct {
		ID    int64
		Date  Date
		Cash  decimal.Decimal
		Prize decimal.Decimal
	}

	// Period is an inclusive calendar-date range.
	Period struct {
		Start Date
		End   Date
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrEmptyProduct     = errors.New("empty product")
	ErrEmptyCategory    = errors.New("empty category")
	ErrTotalMismatch    = errors.New("total does not equal quantity times unit price")
	ErrInvalidDateRange = errors.New("start date after end date")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month as 1-12
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.Time.Before(other.Time)
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

// AddDays returns the date n calendar days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// NewPeriod builds an inclusive period and rejects reversed bounds before
// any query runs. Bounds are never swapped or clamped silently.
func NewPeriod(start, end Date) (Period, error) {
	if err := start.Validate(); err != nil {
		return Period{}, err
	}
	if err := end.Validate(); err != nil {
		return Period{}, err
	}
	if start.After(end) {
		return Period{}, ErrInvalidDateRange
	}
	return Period{Start: start, End: end}, nil
}

// YearPeriod returns the full calendar year [Jan 1, Dec 31].
func YearPeriod(year int) Period {
	return Period{Start: NewDate(year, 1, 1), End: NewDate(year, 12, 31)}
}

// Days returns the inclusive day count of the period.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// Contains reports whether the date falls inside the period.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start) && !d.After(p.End)
}

// Split halves the period at its temporal midpoint: the second half starts
// at Start + floor(days/2) days.
func (p Period) Split() (Period, Period) {
	mid := p.Start.AddDays(p.Days() / 2)
	return Period{Start: p.Start, End: mid.AddDays(-1)}, Period{Start: mid, End: p.End}
}

func (p Period) String() string {
	return p.Start.String() + " / " + p.End.String()
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.TimeOfDay != "" {
		if _, err := time.Parse("15:04", e.TimeOfDay); err != nil {
			return ErrInvalidTimeOfDay
		}
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(e.Product) == "" {
		return ErrEmptyProduct
	}
	if len(e.Product) > 200 {
		return errors.New("product name too long (max 200 characters)")
	}
	if e.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if e.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	if !e.Total.Equal(e.UnitPrice.Mul(decimal.NewFromInt(e.Quantity))) {
		return ErrTotalMismatch
	}
	return nil
}

// NewExpenseTotal derives the total from quantity and unit price.
func NewExpenseTotal(quantity int64, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(quantity))
}

func (b Billetero) Validate() error {
	if err := b.Date.Validate(); err != nil {
		return err
	}
	if b.Cash.IsNegative() {
		return ErrInvalidAmount
	}
	if b.Prize.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}

// Difference is the drawer balance for the day: cash minus prize payouts.
// It is derived on every read, never stored.
func (b Billetero) Difference() decimal.Decimal {
	return b.Cash.Sub(b.Prize)
}
