package pagevet

import "context"

// ElementPoint is the clickable center of a located element.
type ElementPoint struct {
	X float64
	Y float64
}

// Browser is the automation collaborator a session drives. One instance, one
// page context. Runtime events stream on Events from the moment the browser
// is instrumented until Close; the channel is closed when the browser shuts
// down so consumers can drain it fully.
type Browser interface {
	// Navigate loads url and blocks until load or ctx/timeout, returning the
	// final resolved URL.
	Navigate(ctx context.Context, url string) (string, error)
	// FindByText locates a visible element whose role or text matches,
	// returning its clickable point. ok is false when nothing matched.
	FindByText(ctx context.Context, role, text string) (pt ElementPoint, ok bool, err error)
	Click(ctx context.Context, pt ElementPoint) error
	// Evaluate a script in page context and return its JSON value.
	Evaluate(ctx context.Context, script string) (interface{}, error)
	// Screenshot returns a full-page PNG, base64 encoded.
	Screenshot(ctx context.Context) (string, error)
	Events() <-chan *RuntimeEvent
	Close()
}

// AuditStore persists every raw runtime event, suppressed or not, in arrival
// order. Write failures are logged by callers and never affect the verdict.
type AuditStore interface {
	Init() error
	Store(sessionID string, seq uint64, evt *RuntimeEvent, suppressed bool) error
	Entries(sessionID string) ([]*AuditEntry, error)
	Close() error
}

// AuditEntry is one archived raw event.
type AuditEntry struct {
	Seq        uint64        `json:"seq"`
	Suppressed bool          `json:"suppressed"`
	Event      *RuntimeEvent `json:"event"`
}
