package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	PersonOne    Person = "p1"
	PersonTwo    Person = "p2"
	PersonShared Person = "shared"
)

// DefaultNextID is the counter value a brand-new document starts from.
const DefaultNextID = 100

type (
	TxType string

	// Person is one of the two fixed household slots, or the shared slot.
	Person string

	// CardDetail is one line of a card statement breakdown. The sum of a
	// transaction's card details is informational only and is not required
	// to equal the transaction amount.
	CardDetail struct {
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}

	// InstallmentPlan is embedded in at most one transaction. CurrentMonth
	// is a snapshot taken at creation time and is never advanced
	// automatically.
	InstallmentPlan struct {
		TotalMonths   int    `json:"totalMonths"`
		CurrentMonth  int    `json:"currentMonth"`
		TotalAmount   int64  `json:"totalAmount"`
		MonthlyAmount int64  `json:"monthlyAmount"`
		StartDate     string `json:"startDate"` // YYYY-MM
		PayDay        int    `json:"payDay"`    // 1-31
	}

	Transaction struct {
		ID          int64            `json:"id"`
		Type        TxType           `json:"type"`
		Amount      int64            `json:"amount"`
		Category    string           `json:"category"`
		Memo        string           `json:"memo"`
		Person      Person           `json:"person"`
		Date        string           `json:"date"` // YYYY-MM-DD
		IsCard      bool             `json:"isCard"`
		CardDetails []CardDetail     `json:"cardDetails"`
		Installment *InstallmentPlan `json:"installment"`
	}

	// FixedExpense is a recurring monthly obligation template. It is never
	// stored as a transaction; the aggregator materializes one synthetic
	// occurrence per viewed month. Deposited is a single flag on the
	// template, shared by every month's occurrence.
	FixedExpense struct {
		ID        int64  `json:"id"`
		Name      string `json:"name"`
		Amount    int64  `json:"amount"`
		Person    Person `json:"person"`
		Category  string `json:"category"`
		Deposited bool   `json:"deposited"`
	}

	// Payment is owned exclusively by its Loan.
	Payment struct {
		ID     int64  `json:"id"`
		Amount int64  `json:"amount"`
		Date   string `json:"date"`
		Memo   string `json:"memo"`
	}

	Loan struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		Person      Person    `json:"person"`
		TotalAmount int64     `json:"totalAmount"`
		Payments    []Payment `json:"payments"`
	}

	// Record is owned exclusively by its Investment. Negative amounts
	// represent withdrawals.
	Record struct {
		ID     int64  `json:"id"`
		Amount int64  `json:"amount"`
		Date   string `json:"date"`
		Memo   string `json:"memo"`
	}

	Investment struct {
		ID      int64    `json:"id"`
		Name    string   `json:"name"`
		Person  Person   `json:"person"`
		Records []Record `json:"records"`
	}

	// Names maps the two person slots to display names. The shared slot
	// always renders as a fixed label and is never renamed.
	Names struct {
		P1 string `json:"p1"`
		P2 string `json:"p2"`
	}

	// Document is the unit of persistence: the whole household budget as
	// one JSON document. Seq carries the per-kind id counters; NID is the
	// legacy single counter, still written (as the max over Seq) so older
	// readers keep allocating unique ids.
	Document struct {
		Tx          []Transaction    `json:"tx"`
		Fixed       []FixedExpense   `json:"fixed"`
		Loans       []Loan           `json:"loans"`
		Investments []Investment     `json:"investments"`
		Names       Names            `json:"names"`
		Seq         map[string]int64 `json:"seq,omitempty"`
		NID         int64            `json:"nid"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidPerson      = errors.New("invalid person")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidInstallment = errors.New("invalid installment plan")
)

// DefaultDocument is the state of a household that has never saved anything.
func DefaultDocument() Document {
	return Document{
		Names: Names{P1: "엘리", P2: "파트너"},
		NID:   DefaultNextID,
	}
}

// MonthKey formats a year and month as the YYYY-MM prefix used for
// month-scoped selection.
func MonthKey(year, month int) string {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// ValidDate reports whether s is a well-formed YYYY-MM-DD calendar date.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ValidMonth reports whether s is a well-formed YYYY-MM year-month.
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}

func (p Person) Valid() bool {
	switch p {
	case PersonOne, PersonTwo, PersonShared:
		return true
	}
	return false
}

func (t Transaction) Validate() error {
	switch t.Type {
	case Income, Expense:
	default:
		return ErrInvalidType
	}
	if t.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !t.Person.Valid() {
		return ErrInvalidPerson
	}
	if !ValidDate(t.Date) {
		return ErrInvalidDate
	}
	if !KnownCategory(t.Type, t.Category) {
		return ErrInvalidCategory
	}
	if t.Installment != nil {
		if err := t.Installment.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (p InstallmentPlan) Validate() error {
	if p.TotalMonths < 1 {
		return fmt.Errorf("%w: total months must be positive", ErrInvalidInstallment)
	}
	if p.CurrentMonth < 1 || p.CurrentMonth > p.TotalMonths {
		return fmt.Errorf("%w: current month out of range", ErrInvalidInstallment)
	}
	if p.TotalAmount <= 0 || p.MonthlyAmount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidMonth(p.StartDate) {
		return ErrInvalidDate
	}
	if p.PayDay < 1 || p.PayDay > 31 {
		return fmt.Errorf("%w: pay day out of range", ErrInvalidInstallment)
	}
	return nil
}

func (f FixedExpense) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !f.Person.Valid() {
		return ErrInvalidPerson
	}
	if !KnownCategory(Expense, f.Category) {
		return ErrInvalidCategory
	}
	return nil
}

func (l Loan) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return ErrEmptyName
	}
	if l.TotalAmount <= 0 {
		return ErrInvalidAmount
	}
	if !l.Person.Valid() {
		return ErrInvalidPerson
	}
	return nil
}

func (p Payment) Validate() error {
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidDate(p.Date) {
		return ErrInvalidDate
	}
	return nil
}

func (i Investment) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if !i.Person.Valid() {
		return ErrInvalidPerson
	}
	return nil
}

// Validate allows negative amounts: a withdrawal is a negative record.
func (r Record) Validate() error {
	if r.Amount == 0 {
		return ErrInvalidAmount
	}
	if !ValidDate(r.Date) {
		return ErrInvalidDate
	}
	return nil
}

// DisplayName resolves a person slot to its configured display name. The
// shared slot always renders as the fixed label.
func (n Names) DisplayName(p Person) string {
	switch p {
	case PersonOne:
		if n.P1 != "" {
			return n.P1
		}
	case PersonTwo:
		if n.P2 != "" {
			return n.P2
		}
	case PersonShared:
		return "공동"
	}
	return string(p)
}

// Clone returns a deep copy of the document so that snapshots handed to the
// persistence layer are never aliased by later mutations.
func (d Document) Clone() Document {
	out := d
	out.Tx = make([]Transaction, len(d.Tx))
	for i, t := range d.Tx {
		out.Tx[i] = t.clone()
	}
	out.Fixed = append([]FixedExpense(nil), d.Fixed...)
	out.Loans = make([]Loan, len(d.Loans))
	for i, l := range d.Loans {
		cl := l
		cl.Payments = append([]Payment(nil), l.Payments...)
		out.Loans[i] = cl
	}
	out.Investments = make([]Investment, len(d.Investments))
	for i, inv := range d.Investments {
		ci := inv
		ci.Records = append([]Record(nil), inv.Records...)
		out.Investments[i] = ci
	}
	if d.Seq != nil {
		out.Seq = make(map[string]int64, len(d.Seq))
		for k, v := range d.Seq {
			out.Seq[k] = v
		}
	}
	return out
}

func (t Transaction) clone() Transaction {
	out := t
	out.CardDetails = append([]CardDetail(nil), t.CardDetails...)
	if t.Installment != nil {
		plan := *t.Installment
		out.Installment = &plan
	}
	return out
}

// CardDetailTotal is the informational sum of the card breakdown lines.
func (t Transaction) CardDetailTotal() int64 {
	var sum int64
	for _, d := range t.CardDetails {
		sum += d.Amount
	}
	return sum
}
