package ledger

import (
	"errors"
	"testing"

	"moneylog/internal/core"
)

func validTx() core.Transaction {
	return core.Transaction{Type: core.Expense, Amount: 10000, Category: "식비", Person: core.PersonOne, Date: "2024-03-05"}
}

func TestAddTransactionAssignsIDAndPrepends(t *testing.T) {
	s := New()
	first, err := s.AddTransaction(validTx())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	second, err := s.AddTransaction(validTx())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == second.ID {
		t.Fatal("ids must be unique")
	}
	doc := s.Snapshot()
	if len(doc.Tx) != 2 || doc.Tx[0].ID != second.ID {
		t.Fatalf("newest transaction should list first, got %+v", doc.Tx)
	}
}

func TestAddTransactionRejectsInvalid(t *testing.T) {
	s := New()
	bad := validTx()
	bad.Amount = 0
	if _, err := s.AddTransaction(bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}
	if len(s.Snapshot().Tx) != 0 {
		t.Fatal("invalid transaction must not be stored")
	}
}

func TestUpdateTransactionIsFullReplace(t *testing.T) {
	s := New()
	tx, _ := s.AddTransaction(validTx())

	repl := core.Transaction{Type: core.Income, Amount: 500, Category: "급여", Person: core.PersonTwo, Date: "2024-04-01"}
	got, err := s.UpdateTransaction(tx.ID, repl)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.ID != tx.ID {
		t.Fatal("update must keep the original id")
	}
	doc := s.Snapshot()
	if doc.Tx[0].Type != core.Income || doc.Tx[0].Amount != 500 {
		t.Fatalf("record not replaced: %+v", doc.Tx[0])
	}

	if _, err := s.UpdateTransaction(9999, repl); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := New()
	tx, _ := s.AddTransaction(validTx())
	if err := s.DeleteTransaction(tx.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(tx.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestToggleDeposited(t *testing.T) {
	s := New()
	f, err := s.AddFixed(core.FixedExpense{Name: "월세", Amount: 800000, Person: core.PersonOne, Category: "주거"})
	if err != nil {
		t.Fatalf("add fixed: %v", err)
	}
	if f.Deposited {
		t.Fatal("new template must start undeposited")
	}
	got, err := s.ToggleDeposited(f.ID)
	if err != nil || !got.Deposited {
		t.Fatalf("toggle on: %+v %v", got, err)
	}
	got, err = s.ToggleDeposited(f.ID)
	if err != nil || got.Deposited {
		t.Fatalf("toggle off: %+v %v", got, err)
	}
}

func TestLoanPaymentLifecycle(t *testing.T) {
	s := New()
	l, err := s.AddLoan(core.Loan{Name: "주택대출", Person: core.PersonOne, TotalAmount: 10000000})
	if err != nil {
		t.Fatalf("add loan: %v", err)
	}
	p, err := s.AddPayment(l.ID, core.Payment{Amount: 2000000, Date: "2024-01-15", Memo: "1월"})
	if err != nil {
		t.Fatalf("add payment: %v", err)
	}
	if _, err := s.AddPayment(9999, core.Payment{Amount: 1, Date: "2024-01-15"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for missing loan, got %v", err)
	}
	if err := s.DeletePayment(l.ID, p.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if len(s.Snapshot().Loans[0].Payments) != 0 {
		t.Fatal("payment not removed")
	}
	if err := s.DeleteLoan(l.ID); err != nil {
		t.Fatalf("delete loan: %v", err)
	}
}

func TestInvestmentRecordLifecycle(t *testing.T) {
	s := New()
	inv, err := s.AddInvestment(core.Investment{Name: "적금", Person: core.PersonTwo})
	if err != nil {
		t.Fatalf("add investment: %v", err)
	}
	if _, err := s.AddRecord(inv.ID, core.Record{Amount: -50000, Date: "2024-02-01"}); err != nil {
		t.Fatalf("withdrawal record should be accepted: %v", err)
	}
	r, err := s.AddRecord(inv.ID, core.Record{Amount: 100000, Date: "2024-03-01"})
	if err != nil {
		t.Fatalf("add record: %v", err)
	}
	if err := s.DeleteRecord(inv.ID, r.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if len(s.Snapshot().Investments[0].Records) != 1 {
		t.Fatal("exactly one record should remain")
	}
}

func TestOnChangeFiresWithFinalState(t *testing.T) {
	s := New()
	var seen []core.Document
	s.OnChange(func(d core.Document) { seen = append(seen, d) })

	tx, _ := s.AddTransaction(validTx())
	_ = s.DeleteTransaction(tx.ID)

	if len(seen) != 2 {
		t.Fatalf("hook fired %d times, want 2", len(seen))
	}
	if len(seen[0].Tx) != 1 || len(seen[1].Tx) != 0 {
		t.Fatal("hook snapshots must reflect the state after each mutation")
	}
}

func TestSeqCountersAreIndependentPerKind(t *testing.T) {
	seq := NewSeq(100)
	if seq.Next(KindTransaction) != 100 || seq.Next(KindTransaction) != 101 {
		t.Fatal("transaction counter should advance monotonically")
	}
	if seq.Next(KindLoan) != 100 {
		t.Fatal("loan counter should be independent")
	}
	if seq.Max() != 102 {
		t.Fatalf("max = %d, want 102", seq.Max())
	}
}

func TestSeqFromLegacyDocument(t *testing.T) {
	doc := core.Document{NID: 250}
	seq := SeqFromDocument(doc)
	if got := seq.Next(KindTransaction); got != 250 {
		t.Fatalf("legacy nid should seed counters, got %d", got)
	}
}

func TestSeqFromDocumentPrefersStoredCounters(t *testing.T) {
	doc := core.Document{NID: 100, Seq: map[string]int64{"tx": 300}}
	seq := SeqFromDocument(doc)
	if got := seq.Next(KindTransaction); got != 300 {
		t.Fatalf("stored counter should win, got %d", got)
	}
	if got := seq.Next(KindLoan); got != 100 {
		t.Fatalf("unstored kind falls back to nid, got %d", got)
	}
}

func TestReplaceReseedsIDs(t *testing.T) {
	s := New()
	s.Replace(core.Document{NID: 500, Names: core.Names{P1: "a", P2: "b"}})
	tx, err := s.AddTransaction(validTx())
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if tx.ID < 500 {
		t.Fatalf("id %d should start from the loaded document's counter", tx.ID)
	}
}

func TestSetNamesKeepsNonEmptyFields(t *testing.T) {
	s := New()
	got := s.SetNames(core.Names{P1: "철수"})
	if got.P1 != "철수" || got.P2 != "파트너" {
		t.Fatalf("names = %+v", got)
	}
}
