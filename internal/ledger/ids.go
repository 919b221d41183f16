package ledger

import (
	"sync"

	"moneylog/internal/core"
)

// Kind names an entity collection for id allocation.
type Kind string

const (
	KindTransaction Kind = "tx"
	KindFixed       Kind = "fixed"
	KindLoan        Kind = "loan"
	KindPayment     Kind = "payment"
	KindInvestment  Kind = "investment"
	KindRecord      Kind = "record"
)

var allKinds = []Kind{KindTransaction, KindFixed, KindLoan, KindPayment, KindInvestment, KindRecord}

// Allocator hands out ids unique within each collection of the document.
type Allocator interface {
	Next(k Kind) int64
}

// Seq is the default allocator: an independent monotonic counter per entity
// kind. Documents written by older clients carry a single shared counter
// (nid); loading one seeds every kind's counter from it, which preserves
// uniqueness against all previously issued ids.
type Seq struct {
	mu       sync.Mutex
	counters map[Kind]int64
}

// NewSeq starts every counter at the given value.
func NewSeq(start int64) *Seq {
	s := &Seq{counters: make(map[Kind]int64, len(allKinds))}
	for _, k := range allKinds {
		s.counters[k] = start
	}
	return s
}

// SeqFromDocument restores counters persisted in the document, falling back
// to the legacy shared nid for kinds with no stored counter.
func SeqFromDocument(doc core.Document) *Seq {
	start := doc.NID
	if start < core.DefaultNextID {
		start = core.DefaultNextID
	}
	s := NewSeq(start)
	for _, k := range allKinds {
		if v, ok := doc.Seq[string(k)]; ok && v > s.counters[k] {
			s.counters[k] = v
		}
	}
	return s
}

// Next returns the next id for the kind and advances its counter.
func (s *Seq) Next(k Kind) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.counters[k]
	s.counters[k] = v + 1
	return v
}

// Snapshot exports the counters in document form.
func (s *Seq) Snapshot() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		out[string(k)] = v
	}
	return out
}

// Max is the highest counter value, written as the legacy nid so older
// readers seed past every id this allocator could have issued.
func (s *Seq) Max() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var max int64
	for _, v := range s.counters {
		if v > max {
			max = v
		}
	}
	return max
}
