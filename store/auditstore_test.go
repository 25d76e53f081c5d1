package store_test

import (
	"io/ioutil"
	"os"
	"testing"
	"time"

	"gitlab.com/pagevet/pagevet"
	"gitlab.com/pagevet/store"
)

func testStore(t *testing.T) (*store.AuditStore, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "pagevet-audit")
	if err != nil {
		t.Fatalf("tempdir: %s", err)
	}
	s := store.NewAuditStore(dir)
	if err := s.Init(); err != nil {
		os.RemoveAll(dir)
		t.Fatalf("failed to init store: %s", err)
	}
	return s, func() {
		s.Close()
		os.RemoveAll(dir)
	}
}

func TestAuditRoundTrip(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()

	session := "session-a"
	events := []*pagevet.RuntimeEvent{
		{Kind: pagevet.ConsoleMessage, Severity: pagevet.Error, Text: "boom", Observed: time.Now()},
		{Kind: pagevet.ConsoleMessage, Severity: pagevet.Warning, Text: "benign", Observed: time.Now()},
		{Kind: pagevet.RequestFailure, Text: "request failed", Request: &pagevet.RequestInfo{Method: "GET", URL: "http://x/api", FailureReason: "refused"}},
	}
	for i, evt := range events {
		if err := s.Store(session, uint64(i), evt, i == 1); err != nil {
			t.Fatalf("store %d failed: %s", i, err)
		}
	}

	entries, err := s.Entries(session)
	if err != nil {
		t.Fatalf("entries failed: %s", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries got %d", len(entries))
	}
	for i, entry := range entries {
		if entry.Seq != uint64(i) {
			t.Fatalf("arrival order lost at %d: seq %d", i, entry.Seq)
		}
		if entry.Event.Text != events[i].Text {
			t.Fatalf("event %d text mismatch: %s", i, entry.Event.Text)
		}
	}
	if !entries[1].Suppressed {
		t.Fatalf("suppression flag not persisted")
	}
	if entries[2].Event.Request == nil || entries[2].Event.Request.Method != "GET" {
		t.Fatalf("request info not persisted: %+v", entries[2].Event)
	}
}

func TestAuditSessionIsolation(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()

	s.Store("session-a", 0, &pagevet.RuntimeEvent{Text: "a"}, false)
	s.Store("session-b", 0, &pagevet.RuntimeEvent{Text: "b"}, false)

	entries, err := s.Entries("session-a")
	if err != nil {
		t.Fatalf("entries failed: %s", err)
	}
	if len(entries) != 1 || entries[0].Event.Text != "a" {
		t.Fatalf("prefix iteration leaked across sessions: %+v", entries)
	}
}

func TestAuditEmptySession(t *testing.T) {
	s, cleanup := testStore(t)
	defer cleanup()

	entries, err := s.Entries("nothing-here")
	if err != nil {
		t.Fatalf("entries failed: %s", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries got %d", len(entries))
	}
}
