// Package memory is an in-memory query provider used by tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"gastos/internal/core"
)

type Store struct {
	mu        sync.Mutex
	expenses  []core.Expense
	billetero []core.Billetero
}

// Seed builds a store holding the given records.
func Seed(expenses []core.Expense, billetero []core.Billetero) *Store {
	return &Store{
		expenses:  append([]core.Expense(nil), expenses...),
		billetero: append([]core.Billetero(nil), billetero...),
	}
}

// Append stores a validated expense.
func (s *Store) Append(_ context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = int64(len(s.expenses) + 1)
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

// AppendBilletero stores a validated ledger entry.
func (s *Store) AppendBilletero(_ context.Context, b core.Billetero) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = int64(len(s.billetero) + 1)
	s.billetero = append(s.billetero, b)
	return b.ID, nil
}

// ListByPeriod returns the period's expenses ordered by date then time.
func (s *Store) ListByPeriod(_ context.Context, p core.Period) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Expense
	for _, e := range s.expenses {
		if p.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sortExpenses(out)
	return out, nil
}

// ListByUserAndPeriod filters the period's expenses to one user.
func (s *Store) ListByUserAndPeriod(ctx context.Context, userID int64, p core.Period) ([]core.Expense, error) {
	all, err := s.ListByPeriod(ctx, p)
	if err != nil {
		return nil, err
	}
	var out []core.Expense
	for _, e := range all {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

// SumByPeriod totals the period's expenses.
func (s *Store) SumByPeriod(ctx context.Context, p core.Period) (decimal.Decimal, error) {
	all, err := s.ListByPeriod(ctx, p)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, e := range all {
		total = total.Add(e.Total)
	}
	return total, nil
}

// ListBilleteroByPeriod returns the period's ledger entries by date.
func (s *Store) ListBilleteroByPeriod(_ context.Context, p core.Period) ([]core.Billetero, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Billetero
	for _, b := range s.billetero {
		if p.Contains(b.Date) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func sortExpenses(out []core.Expense) {
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].TimeOfDay < out[j].TimeOfDay
	})
}
