// Package aggregate derives month-scoped summaries and progress figures from
// the flat entity collections. Everything here is pure: the same inputs
// always produce the same snapshot, and results are recomputed on every
// query rather than cached across mutations.
package aggregate

import (
	"sort"
	"strings"

	"moneylog/internal/core"
)

// Filter restricts a month view to one person slot. Shared expenses count
// toward every individual's view, so filtering to p1 or p2 still keeps
// shared records; FilterAll applies no restriction at all.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterP1     Filter = Filter(core.PersonOne)
	FilterP2     Filter = Filter(core.PersonTwo)
	FilterShared Filter = Filter(core.PersonShared)
)

func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterP1, FilterP2, FilterShared:
		return true
	}
	return false
}

// Entry is one row of a month view: either a real transaction or a
// synthetic occurrence of a fixed-expense template. Synthetic entries exist
// only in derived output and are never written back to the transaction log.
type Entry struct {
	Tx    core.Transaction `json:"tx"`
	Fixed bool             `json:"fixed"`
}

// monthTransactions selects real transactions dated within the target month
// by YYYY-MM prefix match.
func monthTransactions(tx []core.Transaction, mk string) []core.Transaction {
	var out []core.Transaction
	for _, t := range tx {
		if strings.HasPrefix(t.Date, mk+"-") {
			out = append(out, t)
		}
	}
	return out
}

// synthesize materializes one virtual expense per fixed template, dated the
// 1st of the target month. The template id doubles as the entry id; ids of
// synthetic entries never collide with anything persisted.
func synthesize(fixed []core.FixedExpense, mk string) []Entry {
	out := make([]Entry, 0, len(fixed))
	for _, f := range fixed {
		out = append(out, Entry{
			Tx: core.Transaction{
				ID:       f.ID,
				Type:     core.Expense,
				Amount:   f.Amount,
				Category: f.Category,
				Memo:     f.Name,
				Person:   f.Person,
				Date:     mk + "-01",
			},
			Fixed: true,
		})
	}
	return out
}

func keepForFilter(p core.Person, f Filter) bool {
	return f == FilterAll || p == core.Person(f) || p == core.PersonShared
}

// Summarize computes the month snapshot for (year, month) under the given
// person filter. Income is taken from real transactions only, with
// exact-match person filtering (no shared inclusion); the expense universe
// is real plus synthetic entries with shared records kept for every
// individual filter. The shared total is always global.
func Summarize(tx []core.Transaction, fixed []core.FixedExpense, year, month int, filter Filter) core.MonthSummary {
	mk := core.MonthKey(year, month)
	real := monthTransactions(tx, mk)

	universe := make([]Entry, 0, len(real)+len(fixed))
	for _, t := range real {
		universe = append(universe, Entry{Tx: t})
	}
	universe = append(universe, synthesize(fixed, mk)...)

	s := core.MonthSummary{Year: year, Month: month}

	for _, t := range real {
		if t.Type != core.Income {
			continue
		}
		if filter == FilterAll || t.Person == core.Person(filter) {
			s.Income += t.Amount
		}
	}

	byCat := make(map[string]int64)
	for _, e := range universe {
		if e.Tx.Type != core.Expense {
			continue
		}
		if keepForFilter(e.Tx.Person, filter) {
			s.Expense += e.Tx.Amount
		}
		if e.Tx.Person == core.PersonShared {
			s.SharedExpense += e.Tx.Amount
		} else {
			byCat[e.Tx.Category] += e.Tx.Amount
		}
	}
	// Even split, rounded to nearest won.
	s.SharedPerPerson = (s.SharedExpense + 1) / 2

	for _, f := range fixed {
		s.FixedTotal += f.Amount
	}

	s.Balance = s.Income - s.Expense

	s.ByCategory = make([]core.CategoryAmount, 0, len(byCat))
	for name, amount := range byCat {
		s.ByCategory = append(s.ByCategory, core.CategoryAmount{Name: name, Amount: amount})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if s.ByCategory[i].Amount != s.ByCategory[j].Amount {
			return s.ByCategory[i].Amount > s.ByCategory[j].Amount
		}
		return s.ByCategory[i].Name < s.ByCategory[j].Name
	})

	return s
}

// Entries returns the month's list view: real and synthetic rows under the
// person filter, real transactions first ordered by date descending,
// synthetic fixed rows after them in template order.
func Entries(tx []core.Transaction, fixed []core.FixedExpense, year, month int, filter Filter) []Entry {
	mk := core.MonthKey(year, month)

	all := make([]Entry, 0)
	for _, t := range monthTransactions(tx, mk) {
		all = append(all, Entry{Tx: t})
	}
	all = append(all, synthesize(fixed, mk)...)

	filtered := all[:0]
	for _, e := range all {
		if keepForFilter(e.Tx.Person, filter) {
			filtered = append(filtered, e)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Fixed != filtered[j].Fixed {
			return !filtered[i].Fixed
		}
		return filtered[i].Tx.Date > filtered[j].Tx.Date
	})
	return filtered
}
