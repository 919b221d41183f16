package core

// CategoryAmount is an expense total aggregated under one category label.
type CategoryAmount struct {
	Name   string `json:"name"`
	Amount int64  `json:"amount"`
}

// MonthSummary is the derived snapshot for one year+month under an optional
// person filter. It is recomputed on every query and never cached.
type MonthSummary struct {
	Year  int `json:"year"`
	Month int `json:"month"` // 1-12

	// Income counts real transactions only; synthetic fixed occurrences
	// never contribute income.
	Income  int64 `json:"income"`
	Expense int64 `json:"expense"`
	Balance int64 `json:"balance"` // Income - Expense

	// SharedExpense is always the global shared total for the month,
	// regardless of the active filter. SharedPerPerson is its even split.
	SharedExpense   int64 `json:"sharedExpense"`
	SharedPerPerson int64 `json:"sharedPerPerson"`

	// FixedTotal is the sum of all fixed-expense templates.
	FixedTotal int64 `json:"fixedTotal"`

	// ByCategory excludes income and all shared-person records, sorted
	// descending by amount.
	ByCategory []CategoryAmount `json:"byCategory"`
}
