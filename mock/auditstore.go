package mock

import (
	"sync"

	"gitlab.com/pagevet/pagevet"
)

// AuditStore keeps archived events in memory for assertions
type AuditStore struct {
	InitFn     func() error
	InitCalled bool

	StoreErr error

	mu      sync.Mutex
	stored  map[string][]*pagevet.AuditEntry
	Storing int
}

func MakeMockAuditStore() *AuditStore {
	s := &AuditStore{stored: make(map[string][]*pagevet.AuditEntry)}
	s.InitFn = func() error { return nil }
	return s
}

func (s *AuditStore) Init() error {
	s.InitCalled = true
	return s.InitFn()
}

func (s *AuditStore) Store(sessionID string, seq uint64, evt *pagevet.RuntimeEvent, suppressed bool) error {
	if s.StoreErr != nil {
		return s.StoreErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Storing++
	s.stored[sessionID] = append(s.stored[sessionID], &pagevet.AuditEntry{Seq: seq, Suppressed: suppressed, Event: evt})
	return nil
}

func (s *AuditStore) Entries(sessionID string) ([]*pagevet.AuditEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*pagevet.AuditEntry(nil), s.stored[sessionID]...), nil
}

func (s *AuditStore) Close() error { return nil }
