package store

import (
	"encoding/binary"
	"encoding/json"
	"os"
	"sort"

	badger "github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog/log"
	"gitlab.com/pagevet/pagevet"
)

// AuditStore archives every raw runtime event a session observed, suppressed
// or not, keyed by session id and arrival sequence. Durable form of the raw
// audit trail: the ledger's category view is derived and disposable, this is
// not.
type AuditStore struct {
	db       *badger.DB
	filepath string
}

// NewAuditStore rooted at filepath
func NewAuditStore(filepath string) *AuditStore {
	return &AuditStore{filepath: filepath}
}

// Init opens the store, creating the directory if needed
func (s *AuditStore) Init() error {
	if err := os.MkdirAll(s.filepath, 0766); err != nil {
		return err
	}
	opts := badger.DefaultOptions(s.filepath)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Store one event under <sessionID>:<seq>. seq is the session-wide arrival
// order assigned by the ledger, big-endian so key order is arrival order.
func (s *AuditStore) Store(sessionID string, seq uint64, evt *pagevet.RuntimeEvent, suppressed bool) error {
	entry := &pagevet.AuditEntry{Seq: seq, Suppressed: suppressed, Event: evt}
	value, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(makeKey(sessionID, seq), value)
	})
}

// Entries returns the full audit trail for a session in arrival order
func (s *AuditStore) Entries(sessionID string) ([]*pagevet.AuditEntry, error) {
	entries := make([]*pagevet.AuditEntry, 0)
	prefix := []byte(sessionID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				entry := &pagevet.AuditEntry{}
				if err := json.Unmarshal(val, entry); err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

// Close the underlying db
func (s *AuditStore) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to close audit store")
		return err
	}
	return nil
}

// key = <sessionID>:<8 byte big endian seq>
func makeKey(sessionID string, seq uint64) []byte {
	key := make([]byte, 0, len(sessionID)+9)
	key = append(key, sessionID...)
	key = append(key, ':')
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	return append(key, buf[:]...)
}
