// Package ledger is the in-memory entity store: the mutable household
// document plus id allocation. Mutations validate first and reject invalid
// input with typed errors; nothing invalid is ever stored. Every successful
// mutation hands a snapshot of the whole document to the registered change
// hook, which is how the persistence bridge learns about edits.
package ledger

import (
	"errors"
	"sync"

	"moneylog/internal/core"
)

var ErrNotFound = errors.New("ledger: not found")

type Store struct {
	mu       sync.Mutex
	doc      core.Document
	ids      *Seq
	onChange func(core.Document)
}

// New starts from an empty default document.
func New() *Store {
	doc := core.DefaultDocument()
	return &Store{doc: doc, ids: SeqFromDocument(doc)}
}

// Replace swaps in a freshly loaded document and reseeds id allocation
// from it. Used once by the bridge after a remote load.
func (s *Store) Replace(doc core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc.Clone()
	s.ids = SeqFromDocument(doc)
}

// OnChange registers the hook invoked with a document snapshot after each
// successful mutation. Only one hook is supported.
func (s *Store) OnChange(fn func(core.Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// Snapshot returns a deep copy of the current document with the id counters
// embedded, ready for serialization.
func (s *Store) Snapshot() core.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() core.Document {
	out := s.doc.Clone()
	out.Seq = s.ids.Snapshot()
	out.NID = s.ids.Max()
	return out
}

// notifyLocked must be called with the mutex held; the hook itself runs on
// the caller's goroutine with a private snapshot.
func (s *Store) notifyLocked() {
	if s.onChange != nil {
		s.onChange(s.snapshotLocked())
	}
}

// AddTransaction validates, assigns an id, and prepends the transaction so
// the newest entry lists first.
func (s *Store) AddTransaction(t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.ids.Next(KindTransaction)
	s.doc.Tx = append([]core.Transaction{t}, s.doc.Tx...)
	s.notifyLocked()
	return t, nil
}

// UpdateTransaction replaces the whole record keyed by id; partial updates
// are not supported.
func (s *Store) UpdateTransaction(id int64, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Tx {
		if s.doc.Tx[i].ID == id {
			t.ID = id
			s.doc.Tx[i] = t
			s.notifyLocked()
			return t, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

func (s *Store) DeleteTransaction(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Tx {
		if s.doc.Tx[i].ID == id {
			s.doc.Tx = append(s.doc.Tx[:i], s.doc.Tx[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddFixed(f core.FixedExpense) (core.FixedExpense, error) {
	if err := f.Validate(); err != nil {
		return core.FixedExpense{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.ids.Next(KindFixed)
	f.Deposited = false
	s.doc.Fixed = append(s.doc.Fixed, f)
	s.notifyLocked()
	return f, nil
}

func (s *Store) DeleteFixed(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Fixed {
		if s.doc.Fixed[i].ID == id {
			s.doc.Fixed = append(s.doc.Fixed[:i], s.doc.Fixed[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return ErrNotFound
}

// ToggleDeposited flips the template's single deposited flag. The flag is a
// property of the template, not of any particular month's occurrence.
func (s *Store) ToggleDeposited(id int64) (core.FixedExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Fixed {
		if s.doc.Fixed[i].ID == id {
			s.doc.Fixed[i].Deposited = !s.doc.Fixed[i].Deposited
			s.notifyLocked()
			return s.doc.Fixed[i], nil
		}
	}
	return core.FixedExpense{}, ErrNotFound
}

func (s *Store) AddLoan(l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.ids.Next(KindLoan)
	l.Payments = nil
	s.doc.Loans = append(s.doc.Loans, l)
	s.notifyLocked()
	return l, nil
}

func (s *Store) DeleteLoan(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Loans {
		if s.doc.Loans[i].ID == id {
			s.doc.Loans = append(s.doc.Loans[:i], s.doc.Loans[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddPayment(loanID int64, p core.Payment) (core.Payment, error) {
	if err := p.Validate(); err != nil {
		return core.Payment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Loans {
		if s.doc.Loans[i].ID == loanID {
			p.ID = s.ids.Next(KindPayment)
			s.doc.Loans[i].Payments = append(s.doc.Loans[i].Payments, p)
			s.notifyLocked()
			return p, nil
		}
	}
	return core.Payment{}, ErrNotFound
}

func (s *Store) DeletePayment(loanID, paymentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Loans {
		if s.doc.Loans[i].ID != loanID {
			continue
		}
		ps := s.doc.Loans[i].Payments
		for j := range ps {
			if ps[j].ID == paymentID {
				s.doc.Loans[i].Payments = append(ps[:j], ps[j+1:]...)
				s.notifyLocked()
				return nil
			}
		}
	}
	return ErrNotFound
}

func (s *Store) AddInvestment(inv core.Investment) (core.Investment, error) {
	if err := inv.Validate(); err != nil {
		return core.Investment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv.ID = s.ids.Next(KindInvestment)
	inv.Records = nil
	s.doc.Investments = append(s.doc.Investments, inv)
	s.notifyLocked()
	return inv, nil
}

func (s *Store) DeleteInvestment(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Investments {
		if s.doc.Investments[i].ID == id {
			s.doc.Investments = append(s.doc.Investments[:i], s.doc.Investments[i+1:]...)
			s.notifyLocked()
			return nil
		}
	}
	return ErrNotFound
}

func (s *Store) AddRecord(investmentID int64, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Investments {
		if s.doc.Investments[i].ID == investmentID {
			r.ID = s.ids.Next(KindRecord)
			s.doc.Investments[i].Records = append(s.doc.Investments[i].Records, r)
			s.notifyLocked()
			return r, nil
		}
	}
	return core.Record{}, ErrNotFound
}

func (s *Store) DeleteRecord(investmentID, recordID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Investments {
		if s.doc.Investments[i].ID != investmentID {
			continue
		}
		rs := s.doc.Investments[i].Records
		for j := range rs {
			if rs[j].ID == recordID {
				s.doc.Investments[i].Records = append(rs[:j], rs[j+1:]...)
				s.notifyLocked()
				return nil
			}
		}
	}
	return ErrNotFound
}

// SetNames updates the two display names. Empty fields keep the previous
// value so a partial rename never blanks a slot.
func (s *Store) SetNames(n core.Names) core.Names {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.P1 != "" {
		s.doc.Names.P1 = n.P1
	}
	if n.P2 != "" {
		s.doc.Names.P2 = n.P2
	}
	s.notifyLocked()
	return s.doc.Names
}

// Names returns the current display-name mapping.
func (s *Store) Names() core.Names {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Names
}
