// Package bridge ties the in-memory ledger to the remote document store.
// It loads and decrypts the single budget document on unlock, migrates
// plaintext legacy documents in place, and writes edits back encrypted
// behind a debounce window so bursts of edits become one remote write.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"moneylog/internal/core"
	"moneylog/internal/docstore"
	"moneylog/internal/ledger"
	"moneylog/internal/vault"
)

// Bridge states
const (
	StateLocked int32 = iota
	StateLoading
	StateReady
)

const putTimeout = 10 * time.Second

// Publisher is notified after each successful remote write. Failures are
// logged and never block or fail the save.
type Publisher interface {
	PublishDocumentSaved(ctx context.Context, revision int64, updatedAt time.Time) error
}

// envelope is the stored wire format. Encrypted documents carry the
// ciphertext in Payload; legacy plaintext documents fail to decode into
// this shape and are detected by the absent encrypted flag.
type envelope struct {
	Encrypted bool   `json:"encrypted"`
	Payload   string `json:"payload"`
	UpdatedAt string `json:"updatedAt"`
}

type Bridge struct {
	store     docstore.Store
	ledger    *ledger.Store
	logger    *slog.Logger
	publisher Publisher

	deb *Debouncer

	mu       sync.Mutex
	key      vault.Key
	latest   core.Document
	hasDirty bool

	state    int32
	revision int64
}

// New wires the bridge to the ledger's change hook. The bridge starts
// locked; nothing is read or written until Open.
func New(store docstore.Store, led *ledger.Store, logger *slog.Logger, delay time.Duration, publisher Publisher) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		store:     store,
		ledger:    led,
		logger:    logger,
		publisher: publisher,
	}
	b.deb = NewDebouncer(delay, b.commitPending)
	led.OnChange(b.onChange)
	return b
}

// State returns the current bridge state.
func (b *Bridge) State() int32 {
	return atomic.LoadInt32(&b.state)
}

// Revision returns the number of remote writes performed since Open.
func (b *Bridge) Revision() int64 {
	return atomic.LoadInt64(&b.revision)
}

// Open reads the remote document with the given key and seeds the ledger.
// An absent document seeds defaults, a plaintext legacy document is adopted
// and immediately re-written encrypted, and a ciphertext that does not
// decrypt under the key fails with vault.ErrDecryptFailed.
func (b *Bridge) Open(ctx context.Context, key vault.Key) error {
	atomic.StoreInt32(&b.state, StateLoading)

	b.mu.Lock()
	b.key = key
	b.mu.Unlock()

	data, ok, err := b.store.Get(ctx)
	if err != nil {
		atomic.StoreInt32(&b.state, StateLocked)
		return fmt.Errorf("read document: %w", err)
	}

	if !ok {
		b.ledger.Replace(core.DefaultDocument())
		atomic.StoreInt32(&b.state, StateReady)
		b.logger.Info("No stored document, starting from defaults")
		return nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		atomic.StoreInt32(&b.state, StateLocked)
		return fmt.Errorf("parse stored document: %w", err)
	}

	if !env.Encrypted {
		// Plaintext document from before encryption at rest. Adopt its
		// fields and immediately persist the encrypted form.
		var doc core.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			atomic.StoreInt32(&b.state, StateLocked)
			return fmt.Errorf("parse legacy document: %w", err)
		}
		b.ledger.Replace(doc)
		atomic.StoreInt32(&b.state, StateReady)

		if err := b.saveNow(ctx, b.ledger.Snapshot()); err != nil {
			b.logger.Error("Failed to migrate legacy document", "error", err)
		} else {
			b.logger.Info("Migrated legacy plaintext document to encrypted form")
		}
		return nil
	}

	plaintext, err := vault.Decrypt(key, env.Payload)
	if err != nil {
		atomic.StoreInt32(&b.state, StateLocked)
		return fmt.Errorf("open document: %w", err)
	}

	var doc core.Document
	if err := json.Unmarshal(plaintext, &doc); err != nil {
		atomic.StoreInt32(&b.state, StateLocked)
		return fmt.Errorf("parse decrypted document: %w", err)
	}

	b.ledger.Replace(doc)
	atomic.StoreInt32(&b.state, StateReady)
	b.logger.Info("Loaded document",
		"transactions", len(doc.Tx),
		"fixed", len(doc.Fixed),
		"loans", len(doc.Loans),
		"investments", len(doc.Investments))
	return nil
}

// onChange receives a ledger snapshot after every mutation. Only the most
// recent snapshot is kept; the debouncer decides when it is written.
func (b *Bridge) onChange(doc core.Document) {
	if atomic.LoadInt32(&b.state) != StateReady {
		return
	}

	b.mu.Lock()
	b.latest = doc
	b.hasDirty = true
	b.mu.Unlock()

	b.deb.Schedule()
}

func (b *Bridge) commitPending() {
	b.mu.Lock()
	if !b.hasDirty {
		b.mu.Unlock()
		return
	}
	doc := b.latest
	b.hasDirty = false
	b.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), putTimeout)
	defer cancel()

	if err := b.saveNow(ctx, doc); err != nil {
		// The in-memory state is authoritative; a failed write is logged
		// and the next edit schedules another attempt.
		b.logger.Error("Failed to save document", "error", err)
	}
}

func (b *Bridge) saveNow(ctx context.Context, doc core.Document) error {
	b.mu.Lock()
	key := b.key
	b.mu.Unlock()

	plaintext, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}

	payload, err := vault.Encrypt(key, plaintext)
	if err != nil {
		return fmt.Errorf("encrypt document: %w", err)
	}

	updatedAt := time.Now().UTC()
	body, err := json.Marshal(envelope{
		Encrypted: true,
		Payload:   payload,
		UpdatedAt: updatedAt.Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := b.store.Put(ctx, body); err != nil {
		return fmt.Errorf("write document: %w", err)
	}

	revision := atomic.AddInt64(&b.revision, 1)
	b.logger.Info("Saved document", "revision", revision, "bytes", len(body))

	if b.publisher != nil {
		// Fire and forget; the save already succeeded.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := b.publisher.PublishDocumentSaved(ctx, revision, updatedAt); err != nil {
				b.logger.Warn("Failed to publish save notification", "error", err)
			}
		}()
	}

	return nil
}

// Flush writes any pending edits immediately. Called on lock and shutdown.
func (b *Bridge) Flush() {
	b.deb.Flush()
}

// Close flushes pending edits and returns the bridge to the locked state.
func (b *Bridge) Close() {
	b.deb.Flush()
	atomic.StoreInt32(&b.state, StateLocked)
}
