package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Type:     Expense,
		Amount:   10000,
		Category: "식비",
		Person:   PersonOne,
		Date:     "2024-03-05",
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{Type: "transfer", Amount: 100, Category: "식비", Person: PersonOne, Date: "2024-03-05"},
		{Type: Expense, Amount: 0, Category: "식비", Person: PersonOne, Date: "2024-03-05"},
		{Type: Expense, Amount: -5, Category: "식비", Person: PersonOne, Date: "2024-03-05"},
		{Type: Expense, Amount: 100, Category: "식비", Person: "p3", Date: "2024-03-05"},
		{Type: Expense, Amount: 100, Category: "식비", Person: PersonOne, Date: "2024-13-05"},
		{Type: Expense, Amount: 100, Category: "식비", Person: PersonOne, Date: "not-a-date"},
		{Type: Expense, Amount: 100, Category: "급여", Person: PersonOne, Date: "2024-03-05"}, // income category on expense
		{Type: Income, Amount: 100, Category: "식비", Person: PersonOne, Date: "2024-03-05"},  // expense category on income
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestInstallmentPlanValidate(t *testing.T) {
	good := InstallmentPlan{TotalMonths: 12, CurrentMonth: 1, TotalAmount: 1200000, MonthlyAmount: 100000, StartDate: "2024-03", PayDay: 15}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []InstallmentPlan{
		{TotalMonths: 0, CurrentMonth: 1, TotalAmount: 100, MonthlyAmount: 10, StartDate: "2024-03", PayDay: 15},
		{TotalMonths: 12, CurrentMonth: 0, TotalAmount: 100, MonthlyAmount: 10, StartDate: "2024-03", PayDay: 15},
		{TotalMonths: 12, CurrentMonth: 13, TotalAmount: 100, MonthlyAmount: 10, StartDate: "2024-03", PayDay: 15},
		{TotalMonths: 12, CurrentMonth: 1, TotalAmount: 0, MonthlyAmount: 10, StartDate: "2024-03", PayDay: 15},
		{TotalMonths: 12, CurrentMonth: 1, TotalAmount: 100, MonthlyAmount: 10, StartDate: "03-2024", PayDay: 15},
		{TotalMonths: 12, CurrentMonth: 1, TotalAmount: 100, MonthlyAmount: 10, StartDate: "2024-03", PayDay: 32},
	}
	for i, p := range cases {
		err := p.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrInvalidInstallment) && !errors.Is(err, ErrInvalidAmount) && !errors.Is(err, ErrInvalidDate) {
			t.Errorf("case %d error %v is not a validation sentinel", i, err)
		}
	}
}

func TestFixedExpenseValidate(t *testing.T) {
	good := FixedExpense{Name: "월세", Amount: 800000, Person: PersonOne, Category: "주거"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []FixedExpense{
		{Name: "  ", Amount: 800000, Person: PersonOne, Category: "주거"},
		{Name: "월세", Amount: 0, Person: PersonOne, Category: "주거"},
		{Name: "월세", Amount: 800000, Person: "x", Category: "주거"},
		{Name: "월세", Amount: 800000, Person: PersonOne, Category: "급여"},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestRecordAllowsNegativeAmount(t *testing.T) {
	withdrawal := Record{Amount: -50000, Date: "2024-04-01"}
	if err := withdrawal.Validate(); err != nil {
		t.Fatalf("withdrawal should validate, got %v", err)
	}
	if err := (Record{Amount: 0, Date: "2024-04-01"}).Validate(); err == nil {
		t.Fatal("zero record should be rejected")
	}
	if err := (Payment{Amount: -1, Date: "2024-04-01"}).Validate(); err == nil {
		t.Fatal("negative payment should be rejected")
	}
}

func TestNamesDisplayName(t *testing.T) {
	n := Names{P1: "엘리", P2: "파트너"}
	if got := n.DisplayName(PersonOne); got != "엘리" {
		t.Fatalf("p1 = %q", got)
	}
	if got := n.DisplayName(PersonShared); got != "공동" {
		t.Fatalf("shared = %q", got)
	}
	// Empty names fall back to the slot key.
	if got := (Names{}).DisplayName(PersonTwo); got != "p2" {
		t.Fatalf("fallback = %q", got)
	}
}

func TestDocumentClone(t *testing.T) {
	d := Document{
		Tx: []Transaction{{
			ID: 1, Type: Expense, Amount: 100, Category: "식비", Person: PersonOne, Date: "2024-03-05",
			CardDetails: []CardDetail{{Name: "a", Amount: 30}},
			Installment: &InstallmentPlan{TotalMonths: 3, CurrentMonth: 1, TotalAmount: 100, MonthlyAmount: 34, StartDate: "2024-03", PayDay: 15},
		}},
		Loans:       []Loan{{ID: 2, Name: "대출", Person: PersonOne, TotalAmount: 1000, Payments: []Payment{{ID: 3, Amount: 10, Date: "2024-03-01"}}}},
		Investments: []Investment{{ID: 4, Name: "적금", Person: PersonTwo, Records: []Record{{ID: 5, Amount: 10, Date: "2024-03-01"}}}},
		Seq:         map[string]int64{"tx": 10},
		NID:         100,
	}
	c := d.Clone()
	c.Tx[0].CardDetails[0].Amount = 999
	c.Tx[0].Installment.CurrentMonth = 2
	c.Loans[0].Payments[0].Amount = 999
	c.Investments[0].Records[0].Amount = 999
	c.Seq["tx"] = 999

	if d.Tx[0].CardDetails[0].Amount != 30 || d.Tx[0].Installment.CurrentMonth != 1 {
		t.Fatal("clone shares transaction internals with original")
	}
	if d.Loans[0].Payments[0].Amount != 10 || d.Investments[0].Records[0].Amount != 10 {
		t.Fatal("clone shares nested lists with original")
	}
	if d.Seq["tx"] != 10 {
		t.Fatal("clone shares seq map with original")
	}
}

func TestMonthKey(t *testing.T) {
	if got := MonthKey(2024, 3); got != "2024-03" {
		t.Fatalf("MonthKey = %q", got)
	}
	if got := MonthKey(2024, 12); got != "2024-12" {
		t.Fatalf("MonthKey = %q", got)
	}
}
