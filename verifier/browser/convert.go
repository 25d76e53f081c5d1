package browser

import (
	"time"

	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/pagevet/pagevet"
)

// ConsoleMessageToRuntime converts a CDP console message into the harness
// event shape.
func ConsoleMessageToRuntime(msg *gcdapi.ConsoleConsoleMessage) *pagevet.RuntimeEvent {
	evt := &pagevet.RuntimeEvent{
		Kind:     pagevet.ConsoleMessage,
		Severity: consoleSeverity(msg.Level),
		Text:     msg.Text,
		Observed: time.Now(),
	}
	if msg.Url != "" || msg.Line != 0 {
		evt.Origin = &pagevet.Origin{URL: msg.Url, Line: msg.Line}
	}
	return evt
}

// ExceptionToRuntime converts an uncaught page exception. The description on
// the exception object carries the stack, so prefer it over the bare text.
func ExceptionToRuntime(details *gcdapi.RuntimeExceptionDetails) *pagevet.RuntimeEvent {
	text := details.Text
	if details.Exception != nil && details.Exception.Description != "" {
		text = details.Exception.Description
	}
	evt := &pagevet.RuntimeEvent{
		Kind:     pagevet.PageError,
		Severity: pagevet.Error,
		Text:     text,
		Observed: time.Now(),
	}
	if details.Url != "" || details.LineNumber != 0 {
		evt.Origin = &pagevet.Origin{URL: details.Url, Line: details.LineNumber}
	}
	return evt
}

// LoadingFailedToRuntime converts a failed network load. req may be nil when
// the failure arrived before requestWillBeSent was observed.
func LoadingFailedToRuntime(errorText, blockedReason string, req *pagevet.RequestInfo) *pagevet.RuntimeEvent {
	if req == nil {
		req = &pagevet.RequestInfo{}
	}
	reason := errorText
	if blockedReason != "" {
		reason = reason + " (blocked: " + blockedReason + ")"
	}
	req.FailureReason = reason

	text := "request failed: " + req.Method + " " + req.URL + " " + reason
	return &pagevet.RuntimeEvent{
		Kind:     pagevet.RequestFailure,
		Text:     text,
		Request:  req,
		Observed: time.Now(),
	}
}

func consoleSeverity(level string) pagevet.Severity {
	switch level {
	case "error", "assert":
		return pagevet.Error
	case "warning", "warn":
		return pagevet.Warning
	}
	return pagevet.Info
}
