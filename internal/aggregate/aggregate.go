// Package aggregate turns flat lists of fact records into keyed sums and
// derived statistics for tabular presentation.
//
// All grouping structures preserve an explicit key order so reports lay out
// deterministically; plain map iteration order is never relied on.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// YearMonth is a chronological time bucket.
type YearMonth struct {
	Year  int
	Month time.Month
}

// YearMonthOf buckets a timestamp into its calendar month.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Before orders buckets chronologically.
func (ym YearMonth) Before(other YearMonth) bool {
	if ym.Year != other.Year {
		return ym.Year < other.Year
	}
	return ym.Month < other.Month
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, ym.Month)
}

// Sums is an order-preserving map from grouping key to accumulated sum.
// Keys keep first-encountered order until Sort is called; reads of missing
// keys return zero.
type Sums[K comparable] struct {
	keys []K
	vals map[K]decimal.Decimal
}

func NewSums[K comparable]() *Sums[K] {
	return &Sums[K]{vals: make(map[K]decimal.Decimal)}
}

// Add accumulates amount under key, registering the key on first use.
func (s *Sums[K]) Add(key K, amount decimal.Decimal) {
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = s.vals[key].Add(amount)
}

// Get returns the accumulated sum for key, zero when absent.
func (s *Sums[K]) Get(key K) decimal.Decimal {
	return s.vals[key]
}

// Has reports whether the key was ever added.
func (s *Sums[K]) Has(key K) bool {
	_, ok := s.vals[key]
	return ok
}

// Keys returns the keys in their current order. The slice is shared; do
// not mutate it.
func (s *Sums[K]) Keys() []K {
	return s.keys
}

func (s *Sums[K]) Len() int {
	return len(s.keys)
}

// Sort reorders the keys with the given less function.
func (s *Sums[K]) Sort(less func(a, b K) bool) {
	sort.SliceStable(s.keys, func(i, j int) bool { return less(s.keys[i], s.keys[j]) })
}

// Total sums all values.
func (s *Sums[K]) Total() decimal.Decimal {
	total := decimal.Zero
	for _, k := range s.keys {
		total = total.Add(s.vals[k])
	}
	return total
}

// Max returns the largest value, zero when empty.
func (s *Sums[K]) Max() decimal.Decimal {
	max := decimal.Zero
	for _, k := range s.keys {
		if s.vals[k].GreaterThan(max) {
			max = s.vals[k]
		}
	}
	return max
}

// Nested is a two-level order-preserving grouping: outer key to inner Sums.
// Reading a missing outer key returns an empty Sums, never nil.
type Nested[Outer, Inner comparable] struct {
	keys []Outer
	vals map[Outer]*Sums[Inner]
}

func NewNested[Outer, Inner comparable]() *Nested[Outer, Inner] {
	return &Nested[Outer, Inner]{vals: make(map[Outer]*Sums[Inner])}
}

func (n *Nested[Outer, Inner]) Add(outer Outer, inner Inner, amount decimal.Decimal) {
	inner2, ok := n.vals[outer]
	if !ok {
		inner2 = NewSums[Inner]()
		n.keys = append(n.keys, outer)
		n.vals[outer] = inner2
	}
	inner2.Add(inner, amount)
}

// Get returns the inner sums for outer; missing outers yield an empty Sums
// so reads of absent inner keys default to zero.
func (n *Nested[Outer, Inner]) Get(outer Outer) *Sums[Inner] {
	if s, ok := n.vals[outer]; ok {
		return s
	}
	return NewSums[Inner]()
}

func (n *Nested[Outer, Inner]) Keys() []Outer {
	return n.keys
}

func (n *Nested[Outer, Inner]) Sort(less func(a, b Outer) bool) {
	sort.SliceStable(n.keys, func(i, j int) bool { return less(n.keys[i], n.keys[j]) })
}

// Total sums every cell across both levels.
func (n *Nested[Outer, Inner]) Total() decimal.Decimal {
	total := decimal.Zero
	for _, k := range n.keys {
		total = total.Add(n.vals[k].Total())
	}
	return total
}

// Counts is an order-preserving occurrence counter.
type Counts[K comparable] struct {
	keys []K
	vals map[K]int
}

func NewCounts[K comparable]() *Counts[K] {
	return &Counts[K]{vals: make(map[K]int)}
}

func (c *Counts[K]) Add(key K) {
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.vals[key]++
}

func (c *Counts[K]) Get(key K) int {
	return c.vals[key]
}

func (c *Counts[K]) Keys() []K {
	return c.keys
}

// GroupSum sums value(record) per key(record). When less is non-nil the
// resulting keys iterate in sorted order; otherwise they keep
// first-encountered order.
func GroupSum[R any, K comparable](records []R, key func(R) K, value func(R) decimal.Decimal, less func(a, b K) bool) *Sums[K] {
	sums := NewSums[K]()
	for _, r := range records {
		sums.Add(key(r), value(r))
	}
	if less != nil {
		sums.Sort(less)
	}
	return sums
}

// GroupSumNested groups records two levels deep, e.g. category then
// subcategory. Both levels keep first-encountered order unless sorted by
// the caller.
func GroupSumNested[R any, Outer, Inner comparable](records []R, outer func(R) Outer, inner func(R) Inner, value func(R) decimal.Decimal) *Nested[Outer, Inner] {
	nested := NewNested[Outer, Inner]()
	for _, r := range records {
		nested.Add(outer(r), inner(r), value(r))
	}
	return nested
}

// GroupCount counts records per key in first-encountered order.
func GroupCount[R any, K comparable](records []R, key func(R) K) *Counts[K] {
	counts := NewCounts[K]()
	for _, r := range records {
		counts.Add(key(r))
	}
	return counts
}

// PercentageOf returns part/whole*100 rounded half-up to one decimal
// place, or zero when whole is zero. Division by zero is a defined
// default here, not an error.
func PercentageOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(decimal.New(100, 0)).Round(1)
}

// Entry is one key/value pair extracted from a Sums.
type Entry[K comparable] struct {
	Key   K
	Value decimal.Decimal
}

// TopN returns the n largest entries by value. The sort is stable, so
// ties keep the order the keys currently have in the map.
func TopN[K comparable](sums *Sums[K], n int) []Entry[K] {
	entries := make([]Entry[K], 0, sums.Len())
	for _, k := range sums.Keys() {
		entries = append(entries, Entry[K]{Key: k, Value: sums.Get(k)})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Value.GreaterThan(entries[j].Value)
	})
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// TopNCounts returns the n most frequent keys, ties in current key order.
func TopNCounts[K comparable](counts *Counts[K], n int) []struct {
	Key   K
	Count int
} {
	type pair = struct {
		Key   K
		Count int
	}
	entries := make([]pair, 0, len(counts.keys))
	for _, k := range counts.keys {
		entries = append(entries, pair{Key: k, Count: counts.vals[k]})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	if n < len(entries) {
		entries = entries[:n]
	}
	return entries
}

// MinMax returns the smallest and largest value over the records. Callers
// must check for emptiness first; an empty list yields zero values.
func MinMax[R any](records []R, value func(R) decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if len(records) == 0 {
		return decimal.Zero, decimal.Zero
	}
	min := value(records[0])
	max := min
	for _, r := range records[1:] {
		v := value(r)
		if v.LessThan(min) {
			min = v
		}
		if v.GreaterThan(max) {
			max = v
		}
	}
	return min, max
}

// Bar renders a fixed-width proportional bar: floor(fraction*width) fill
// characters padded with empty characters. Fraction is clamped to [0,1].
// Decorative only; monetary figures never depend on it.
func Bar(fraction float64, width int, fill, empty rune) string {
	if width <= 0 {
		return ""
	}
	if fraction < 0 || math.IsNaN(fraction) {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(math.Floor(fraction * float64(width)))
	if filled > width {
		filled = width
	}
	return strings.Repeat(string(fill), filled) + strings.Repeat(string(empty), width-filled)
}

// Fraction converts part/whole to a float for bar rendering, zero when
// whole is zero.
func Fraction(part, whole decimal.Decimal) float64 {
	if whole.IsZero() {
		return 0
	}
	f, _ := part.Div(whole).Float64()
	return f
}
