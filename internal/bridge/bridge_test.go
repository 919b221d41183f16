package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/docstore/memory"
	"moneylog/internal/ledger"
	"moneylog/internal/vault"
)

var testKey = vault.DeriveKey("1234", "test-salt")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// decryptStored reads the latest stored envelope and returns the document.
func decryptStored(t *testing.T, store *memory.Store, key vault.Key) core.Document {
	t.Helper()

	data, ok, err := store.Get(context.Background())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok {
		t.Fatal("no document stored")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("stored document is not an envelope: %v", err)
	}
	if !env.Encrypted {
		t.Fatal("stored document is not encrypted")
	}
	if env.UpdatedAt == "" {
		t.Error("envelope missing updatedAt")
	} else if _, err := time.Parse(time.RFC3339, env.UpdatedAt); err != nil {
		t.Errorf("envelope updatedAt %q is not RFC3339: %v", env.UpdatedAt, err)
	}

	plaintext, err := vault.Decrypt(key, env.Payload)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}

	var doc core.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		t.Fatalf("decrypted payload is not a document: %v", err)
	}
	return doc
}

func TestOpen_AbsentDocumentSeedsDefaults(t *testing.T) {
	store := memory.New()
	led := ledger.New()
	b := New(store, led, quietLogger(), time.Hour, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if b.State() != StateReady {
		t.Errorf("State() = %v, want StateReady", b.State())
	}

	doc := led.Snapshot()
	if doc.Names.P1 != "엘리" || doc.Names.P2 != "파트너" {
		t.Errorf("default names = %+v, want 엘리/파트너", doc.Names)
	}
	if doc.NID != core.DefaultNextID {
		t.Errorf("default NID = %d, want %d", doc.NID, core.DefaultNextID)
	}

	// A fresh session must not write until the first edit
	if store.Writes() != 0 {
		t.Errorf("Writes() = %d after open with no edits, want 0", store.Writes())
	}
}

func TestEditBurst_SingleDebouncedWrite(t *testing.T) {
	store := memory.New()
	led := ledger.New()
	b := New(store, led, quietLogger(), 30*time.Millisecond, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	for i := 0; i < 5; i++ {
		_, err := led.AddTransaction(core.Transaction{
			Type:     core.Expense,
			Amount:   1000 * int64(i+1),
			Category: "식비",
			Person:   core.PersonOne,
			Date:     "2024-03-10",
		})
		if err != nil {
			t.Fatalf("AddTransaction() error = %v", err)
		}
	}

	// All five edits land inside one debounce window
	time.Sleep(100 * time.Millisecond)

	if store.Writes() != 1 {
		t.Errorf("Writes() = %d after edit burst, want 1", store.Writes())
	}

	doc := decryptStored(t, store, testKey)
	if len(doc.Tx) != 5 {
		t.Errorf("stored transactions = %d, want 5", len(doc.Tx))
	}
	// Newest first
	if doc.Tx[0].Amount != 5000 {
		t.Errorf("stored Tx[0].Amount = %d, want 5000", doc.Tx[0].Amount)
	}
	if doc.NID <= core.DefaultNextID {
		t.Errorf("stored NID = %d, want > %d", doc.NID, core.DefaultNextID)
	}
	if len(doc.Seq) == 0 {
		t.Error("stored document missing id counters")
	}

	if b.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", b.Revision())
	}
}

func TestOpen_EncryptedRoundTrip(t *testing.T) {
	store := memory.New()
	led := ledger.New()
	b := New(store, led, quietLogger(), 10*time.Millisecond, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := led.AddLoan(core.Loan{Name: "전세자금", Person: core.PersonShared, TotalAmount: 10000000}); err != nil {
		t.Fatalf("AddLoan() error = %v", err)
	}
	b.Flush()

	// A second session over the same store sees the saved state
	led2 := ledger.New()
	b2 := New(store, led2, quietLogger(), time.Hour, nil)
	if err := b2.Open(context.Background(), testKey); err != nil {
		t.Fatalf("second Open() error = %v", err)
	}

	doc := led2.Snapshot()
	if len(doc.Loans) != 1 || doc.Loans[0].Name != "전세자금" {
		t.Errorf("reloaded loans = %+v, want the saved loan", doc.Loans)
	}
}

func TestOpen_WrongKeyFails(t *testing.T) {
	store := memory.New()
	led := ledger.New()
	b := New(store, led, quietLogger(), 10*time.Millisecond, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := led.AddInvestment(core.Investment{Name: "적금", Person: core.PersonOne}); err != nil {
		t.Fatalf("AddInvestment() error = %v", err)
	}
	b.Flush()

	wrongKey := vault.DeriveKey("9999", "test-salt")
	b2 := New(store, ledger.New(), quietLogger(), time.Hour, nil)
	err := b2.Open(context.Background(), wrongKey)
	if err == nil {
		t.Fatal("Open() with wrong key should fail")
	}
	if !errors.Is(err, vault.ErrDecryptFailed) {
		t.Errorf("Open() error = %v, want vault.ErrDecryptFailed", err)
	}
	if b2.State() != StateLocked {
		t.Errorf("State() = %v after failed open, want StateLocked", b2.State())
	}
}

func TestOpen_LegacyPlaintextMigration(t *testing.T) {
	legacy := []byte(`{
		"tx": [
			{"id": 1, "type": "expense", "amount": 15000, "category": "식비", "memo": "김밥", "person": "p1", "date": "2024-02-10"}
		],
		"fixed": [
			{"id": 2, "name": "월세", "amount": 800000, "person": "shared", "day": 25, "deposited": false}
		],
		"loans": [],
		"investments": [],
		"names": {"p1": "지수", "p2": "민호"},
		"nid": 150,
		"updatedAt": "2024-02-10T09:00:00.000Z"
	}`)

	store := memory.Seed(legacy)
	led := ledger.New()
	b := New(store, led, quietLogger(), time.Hour, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	// Migration re-writes the document encrypted exactly once
	if store.Writes() != 1 {
		t.Errorf("Writes() = %d after legacy open, want 1", store.Writes())
	}

	doc := decryptStored(t, store, testKey)
	if len(doc.Tx) != 1 || doc.Tx[0].Memo != "김밥" {
		t.Errorf("migrated transactions = %+v, want the legacy transaction", doc.Tx)
	}
	if doc.Names.P1 != "지수" || doc.Names.P2 != "민호" {
		t.Errorf("migrated names = %+v, want 지수/민호", doc.Names)
	}
	if doc.NID < 150 {
		t.Errorf("migrated NID = %d, want >= 150", doc.NID)
	}

	// New ids continue above the legacy counter
	tx, err := led.AddTransaction(core.Transaction{
		Type:     core.Income,
		Amount:   3000000,
		Category: "급여",
		Person:   core.PersonTwo,
		Date:     "2024-02-25",
	})
	if err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	if tx.ID < 150 {
		t.Errorf("new transaction id = %d, want >= 150", tx.ID)
	}
}

func TestOpen_CorruptDocumentFails(t *testing.T) {
	store := memory.Seed([]byte(`not json at all`))
	b := New(store, ledger.New(), quietLogger(), time.Hour, nil)

	if err := b.Open(context.Background(), testKey); err == nil {
		t.Fatal("Open() with corrupt document should fail")
	}
	if b.State() != StateLocked {
		t.Errorf("State() = %v after failed open, want StateLocked", b.State())
	}
}

// failingStore rejects every Put.
type failingStore struct {
	puts int64
}

func (f *failingStore) Get(context.Context) ([]byte, bool, error) {
	return nil, false, nil
}

func (f *failingStore) Put(context.Context, []byte) error {
	atomic.AddInt64(&f.puts, 1)
	return errors.New("store unavailable")
}

func TestSaveFailure_IsNotFatal(t *testing.T) {
	store := &failingStore{}
	led := ledger.New()
	b := New(store, led, quietLogger(), 10*time.Millisecond, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := led.AddTransaction(core.Transaction{
		Type:     core.Expense,
		Amount:   5000,
		Category: "카페",
		Person:   core.PersonTwo,
		Date:     "2024-03-01",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}
	b.Flush()

	if atomic.LoadInt64(&store.puts) != 1 {
		t.Errorf("puts = %d, want 1", store.puts)
	}

	// The ledger keeps serving and the next edit schedules another attempt
	if _, err := led.AddTransaction(core.Transaction{
		Type:     core.Expense,
		Amount:   7000,
		Category: "식비",
		Person:   core.PersonTwo,
		Date:     "2024-03-02",
	}); err != nil {
		t.Fatalf("AddTransaction() after failed save error = %v", err)
	}
	b.Flush()

	if atomic.LoadInt64(&store.puts) != 2 {
		t.Errorf("puts = %d, want 2", store.puts)
	}
	if b.Revision() != 0 {
		t.Errorf("Revision() = %d after failed saves, want 0", b.Revision())
	}
}

func TestClose_FlushesPendingEdits(t *testing.T) {
	store := memory.New()
	led := ledger.New()
	b := New(store, led, quietLogger(), time.Hour, nil)

	if err := b.Open(context.Background(), testKey); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if _, err := led.AddTransaction(core.Transaction{
		Type:     core.Expense,
		Amount:   12000,
		Category: "쇼핑",
		Person:   core.PersonOne,
		Date:     "2024-03-05",
	}); err != nil {
		t.Fatalf("AddTransaction() error = %v", err)
	}

	b.Close()

	if store.Writes() != 1 {
		t.Errorf("Writes() = %d after close, want 1", store.Writes())
	}
	if b.State() != StateLocked {
		t.Errorf("State() = %v after close, want StateLocked", b.State())
	}
}
