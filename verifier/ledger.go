package verifier

import (
	"sync"

	"gitlab.com/pagevet/pagevet"
)

// Ledger accumulates classified events for one session. Append-only, safe to
// call from the browser's event-delivery goroutine while the driver blocks
// on navigation. A category files references, not copies, so an event that
// matched several rules is the same object in every bucket.
type Ledger struct {
	mu         sync.Mutex
	entries    map[pagevet.Category][]*pagevet.RuntimeEvent
	suppressed []*pagevet.RuntimeEvent
	seq        uint64
}

// Snapshot is an immutable copy of the ledger for verdict computation and
// reporting.
type Snapshot struct {
	Entries    map[pagevet.Category][]*pagevet.RuntimeEvent
	Suppressed []*pagevet.RuntimeEvent
}

// NewLedger for a single session.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[pagevet.Category][]*pagevet.RuntimeEvent)}
}

// Record appends evt to every named category in arrival order and returns
// the event's session-wide sequence number.
func (l *Ledger) Record(cats []pagevet.Category, evt *pagevet.RuntimeEvent) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, cat := range cats {
		l.entries[cat] = append(l.entries[cat], evt)
	}
	seq := l.seq
	l.seq++
	return seq
}

// RecordSuppressed archives an allowlisted event in the raw audit trail,
// outside all categories, and returns its sequence number.
func (l *Ledger) RecordSuppressed(evt *pagevet.RuntimeEvent) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.suppressed = append(l.suppressed, evt)
	seq := l.seq
	l.seq++
	return seq
}

// Count of events filed under cat so far.
func (l *Ledger) Count(cat pagevet.Category) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries[cat])
}

// Snapshot copies the category map and suppressed trail. The events
// themselves are shared; they are immutable after creation.
func (l *Ledger) Snapshot() *Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make(map[pagevet.Category][]*pagevet.RuntimeEvent, len(l.entries))
	for cat, evts := range l.entries {
		cp := make([]*pagevet.RuntimeEvent, len(evts))
		copy(cp, evts)
		entries[cat] = cp
	}
	suppressed := make([]*pagevet.RuntimeEvent, len(l.suppressed))
	copy(suppressed, l.suppressed)
	return &Snapshot{Entries: entries, Suppressed: suppressed}
}

// Counts per category in the snapshot, zero-filled for empty categories.
func (s *Snapshot) Counts() map[pagevet.Category]int {
	counts := make(map[pagevet.Category]int, len(pagevet.Categories))
	for _, cat := range pagevet.Categories {
		counts[cat] = len(s.Entries[cat])
	}
	return counts
}
