package browser

import (
	"testing"

	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/pagevet/pagevet"
)

func TestConsoleMessageToRuntime(t *testing.T) {
	var inputs = []struct {
		level    string
		expected pagevet.Severity
	}{
		{"error", pagevet.Error},
		{"assert", pagevet.Error},
		{"warning", pagevet.Warning},
		{"warn", pagevet.Warning},
		{"log", pagevet.Info},
		{"info", pagevet.Info},
		{"debug", pagevet.Info},
	}

	for _, in := range inputs {
		msg := &gcdapi.ConsoleConsoleMessage{Level: in.level, Text: "hello", Url: "http://x/app.js", Line: 42}
		evt := ConsoleMessageToRuntime(msg)
		if evt.Kind != pagevet.ConsoleMessage {
			t.Fatalf("%s: wrong kind %s", in.level, evt.Kind)
		}
		if evt.Severity != in.expected {
			t.Fatalf("%s: got severity %s expected %s", in.level, evt.Severity, in.expected)
		}
		if evt.Origin == nil || evt.Origin.URL != "http://x/app.js" || evt.Origin.Line != 42 {
			t.Fatalf("%s: origin not carried: %+v", in.level, evt.Origin)
		}
	}
}

func TestExceptionToRuntime(t *testing.T) {
	details := &gcdapi.RuntimeExceptionDetails{
		Text:       "Uncaught",
		Url:        "http://x/app.js",
		LineNumber: 7,
		Exception:  &gcdapi.RuntimeRemoteObject{Description: "TypeError: x is not a function\n  at boot"},
	}
	evt := ExceptionToRuntime(details)
	if evt.Kind != pagevet.PageError || evt.Severity != pagevet.Error {
		t.Fatalf("wrong shape: %+v", evt)
	}
	// the description carries the stack, prefer it
	if evt.Text != details.Exception.Description {
		t.Fatalf("expected description text, got %s", evt.Text)
	}

	bare := ExceptionToRuntime(&gcdapi.RuntimeExceptionDetails{Text: "Uncaught something"})
	if bare.Text != "Uncaught something" {
		t.Fatalf("expected fallback to text, got %s", bare.Text)
	}
}

func TestLoadingFailedToRuntime(t *testing.T) {
	req := &pagevet.RequestInfo{Method: "GET", URL: "http://x/api/users"}
	evt := LoadingFailedToRuntime("net::ERR_CONNECTION_REFUSED", "", req)
	if evt.Kind != pagevet.RequestFailure {
		t.Fatalf("wrong kind %s", evt.Kind)
	}
	if evt.Request.FailureReason != "net::ERR_CONNECTION_REFUSED" {
		t.Fatalf("reason not set: %+v", evt.Request)
	}

	blocked := LoadingFailedToRuntime("net::ERR_BLOCKED_BY_CLIENT", "csp", req)
	if blocked.Request.FailureReason != "net::ERR_BLOCKED_BY_CLIENT (blocked: csp)" {
		t.Fatalf("blocked reason not appended: %s", blocked.Request.FailureReason)
	}

	// failure observed before requestWillBeSent still converts
	orphan := LoadingFailedToRuntime("net::ERR_FAILED", "", nil)
	if orphan.Request == nil || orphan.Request.URL != "" {
		t.Fatalf("orphan failure should carry an empty request: %+v", orphan.Request)
	}
}

func TestRequestTracker(t *testing.T) {
	tracker := newRequestTracker()
	tracker.add("1", "GET", "http://x/a")
	tracker.add("2", "POST", "http://x/b")

	req := tracker.take("1")
	if req == nil || req.Method != "GET" || req.URL != "http://x/a" {
		t.Fatalf("take returned wrong request: %+v", req)
	}
	if tracker.take("1") != nil {
		t.Fatalf("take must remove the entry")
	}
	if tracker.take("unknown") != nil {
		t.Fatalf("unknown id must return nil")
	}
}
