package aggregate

import (
	"fmt"
	"sort"

	"moneylog/internal/core"
)

// LoanProgress is the repayment state of one loan. Remaining is not clamped:
// over-payment drives it negative and the percentage past 100.
type LoanProgress struct {
	Paid      int64   `json:"paid"`
	Percent   float64 `json:"percent"`
	Remaining int64   `json:"remaining"`
}

// ForLoan derives repayment progress from the loan's payment list.
func ForLoan(l core.Loan) LoanProgress {
	var paid int64
	for _, p := range l.Payments {
		paid += p.Amount
	}
	pct := 0.0
	if l.TotalAmount > 0 {
		// Multiply before dividing so paid/total ratios that are exact in
		// decimal stay exact in float64.
		pct = float64(paid) * 100 / float64(l.TotalAmount)
	}
	return LoanProgress{Paid: paid, Percent: pct, Remaining: l.TotalAmount - paid}
}

// LoanOverview sums repayment state across every loan.
type LoanOverview struct {
	TotalDebt      int64 `json:"totalDebt"`
	TotalPaid      int64 `json:"totalPaid"`
	TotalRemaining int64 `json:"totalRemaining"`
}

func Loans(loans []core.Loan) LoanOverview {
	var o LoanOverview
	for _, l := range loans {
		p := ForLoan(l)
		o.TotalDebt += l.TotalAmount
		o.TotalPaid += p.Paid
	}
	o.TotalRemaining = o.TotalDebt - o.TotalPaid
	return o
}

// InvestmentTotal is the running total of one investment's records.
func InvestmentTotal(inv core.Investment) int64 {
	var sum int64
	for _, r := range inv.Records {
		sum += r.Amount
	}
	return sum
}

// InvestmentsByPerson aggregates investment totals grouped by the owning
// person slot (not by individual record).
func InvestmentsByPerson(investments []core.Investment) map[core.Person]int64 {
	out := map[core.Person]int64{core.PersonOne: 0, core.PersonTwo: 0}
	for _, inv := range investments {
		out[inv.Person] += InvestmentTotal(inv)
	}
	return out
}

// InstallmentLabel renders the static n/m progress text of an embedded plan,
// e.g. "3/12회". The current month is whatever was captured at creation;
// nothing here advances it.
func InstallmentLabel(p *core.InstallmentPlan) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d/%d회", p.CurrentMonth, p.TotalMonths)
}

// SortPaymentsByDateDesc orders a payment list newest first for display.
func SortPaymentsByDateDesc(payments []core.Payment) []core.Payment {
	out := append([]core.Payment(nil), payments...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
