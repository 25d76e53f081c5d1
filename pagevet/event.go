package pagevet

import "time"

// EventKind is the source class of a runtime event.
type EventKind int8

const (
	// ConsoleMessage from the page's console API or browser-generated console entries
	ConsoleMessage EventKind = iota + 1
	// PageError is an uncaught exception thrown in page context
	PageError
	// RequestFailure is a network request that never completed successfully
	RequestFailure
)

func (k EventKind) String() string {
	switch k {
	case ConsoleMessage:
		return "console"
	case PageError:
		return "pageerror"
	case RequestFailure:
		return "requestfailed"
	}
	return "unknown"
}

// Severity of a console message or page error. Request failures carry no severity.
type Severity int8

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	return "info"
}

// Origin is where in the page an event was emitted, when known.
type Origin struct {
	URL  string `json:"url,omitempty"`
	Line int    `json:"line,omitempty"`
}

// RequestInfo describes the request behind a RequestFailure event.
type RequestInfo struct {
	Method        string `json:"method"`
	URL           string `json:"url"`
	FailureReason string `json:"failure_reason"`
}

// RuntimeEvent is a single observation delivered by the browser while a
// session is running. Immutable once created; the classifier either files it
// into ledger categories or routes it to the suppressed audit trail.
type RuntimeEvent struct {
	Kind     EventKind    `json:"kind"`
	Severity Severity     `json:"severity"`
	Text     string       `json:"text"`
	Origin   *Origin      `json:"origin,omitempty"`
	Request  *RequestInfo `json:"request,omitempty"`
	Observed time.Time    `json:"observed"`
}
