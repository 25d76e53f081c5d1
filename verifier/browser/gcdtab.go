package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"github.com/wirepair/gcd/gcdapi"
	"gitlab.com/pagevet/pagevet"
)

var (
	// ErrNavigating is returned when chrome rejects a navigation outright
	ErrNavigating = errors.New("error navigating")
	// ErrNavigationTimedOut when the load event never fires in time
	ErrNavigationTimedOut = errors.New("navigation timed out")
	// ErrTabCrashed when the debugger target crashed or detached
	ErrTabCrashed = errors.New("tab crashed")
	// ErrTabClosing when an operation raced with Close
	ErrTabClosing = errors.New("closing")
)

// Tab is the chromium tab a verification session instruments. Runtime signal
// subscriptions start at construction; everything observed flows out on the
// Events channel until Close.
type Tab struct {
	g            *gcd.Gcd
	t            *gcd.ChromeTarget
	requests     *requestTracker
	events       chan *pagevet.RuntimeEvent
	navigationCh chan int
	crashedCh    chan string
	exitCh       chan struct{}
	dispatchMu   sync.Mutex
	closed       bool
}

// NewTab subscribes to console, runtime exception and network events
// immediately so nothing emitted during the first navigation is lost.
func NewTab(ctx context.Context, g *gcd.Gcd, target *gcd.ChromeTarget) *Tab {
	t := &Tab{
		g:            g,
		t:            target,
		requests:     newRequestTracker(),
		events:       make(chan *pagevet.RuntimeEvent, 256),
		navigationCh: make(chan int, 1),
		crashedCh:    make(chan string),
		exitCh:       make(chan struct{}),
	}
	t.subscribeRuntimeSignals(ctx)
	return t
}

// Events delivered by the page, in arrival order. Closed by Close.
func (t *Tab) Events() <-chan *pagevet.RuntimeEvent {
	return t.events
}

// Navigate to url, blocking until the load event fires or ctx expires, and
// return the final URL from navigation history. The application may resolve
// the request anywhere it likes; only a hard failure or timeout is an error.
func (t *Tab) Navigate(ctx context.Context, url string) (string, error) {
	// drop a load signal left over from a navigation that timed out
	select {
	case <-t.navigationCh:
	default:
	}

	navParams := &gcdapi.PageNavigateParams{Url: url, TransitionType: "typed"}
	_, _, errText, err := t.t.Page.NavigateWithParams(navParams)
	if err != nil {
		return "", err
	}
	if errText != "" {
		return "", errors.Wrap(ErrNavigating, errText)
	}

	select {
	case <-ctx.Done():
		return "", errors.Wrap(ErrNavigationTimedOut, url)
	case <-t.exitCh:
		return "", ErrTabClosing
	case reason := <-t.crashedCh:
		return "", errors.Wrap(ErrTabCrashed, reason)
	case <-t.navigationCh:
	}

	return t.finalURL(), nil
}

// finalURL from the navigation history, the way chrome records it
func (t *Tab) finalURL() string {
	_, entries, err := t.t.Page.GetNavigationHistory()
	if err != nil || len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].Url
}

const findByTextScript = `(function() {
	var role = %q;
	var text = %q.toLowerCase();
	var sel = 'button, a, [role="' + role + '"]';
	var nodes = document.querySelectorAll(sel);
	for (var i = 0; i < nodes.length; i++) {
		var n = nodes[i];
		if (n.offsetParent === null) { continue; }
		var label = (n.textContent || '') + ' ' + (n.getAttribute('aria-label') || '');
		if (text !== '' && label.toLowerCase().indexOf(text) === -1) { continue; }
		var r = n.getBoundingClientRect();
		return JSON.stringify({found: true, x: r.left + r.width / 2, y: r.top + r.height / 2});
	}
	return JSON.stringify({found: false});
})()`

// FindByText locates a visible interactive element by role and/or label
// text and returns its clickable center.
func (t *Tab) FindByText(ctx context.Context, role, text string) (pagevet.ElementPoint, bool, error) {
	raw, err := t.Evaluate(ctx, fmt.Sprintf(findByTextScript, role, text))
	if err != nil {
		return pagevet.ElementPoint{}, false, err
	}
	str, ok := raw.(string)
	if !ok {
		return pagevet.ElementPoint{}, false, errors.New("find script returned non-string")
	}
	var parsed struct {
		Found bool    `json:"found"`
		X     float64 `json:"x"`
		Y     float64 `json:"y"`
	}
	if err := json.Unmarshal([]byte(str), &parsed); err != nil {
		return pagevet.ElementPoint{}, false, err
	}
	if !parsed.Found {
		return pagevet.ElementPoint{}, false, nil
	}
	return pagevet.ElementPoint{X: parsed.X, Y: parsed.Y}, true, nil
}

// Click dispatches a left press/release pair at pt
func (t *Tab) Click(ctx context.Context, pt pagevet.ElementPoint) error {
	pressed := &gcdapi.InputDispatchMouseEventParams{
		TheType:    "mousePressed",
		X:          pt.X,
		Y:          pt.Y,
		Button:     "left",
		ClickCount: 1,
	}
	if _, err := t.t.Input.DispatchMouseEventWithParams(pressed); err != nil {
		return err
	}
	released := &gcdapi.InputDispatchMouseEventParams{
		TheType:    "mouseReleased",
		X:          pt.X,
		Y:          pt.Y,
		Button:     "left",
		ClickCount: 1,
	}
	_, err := t.t.Input.DispatchMouseEventWithParams(released)
	return err
}

// Evaluate a script in the global context and return its value
func (t *Tab) Evaluate(ctx context.Context, script string) (interface{}, error) {
	params := &gcdapi.RuntimeEvaluateParams{
		Expression:    script,
		ObjectGroup:   "pagevet",
		Silent:        true,
		ReturnByValue: true,
		Timeout:       1000,
	}
	r, exp, err := t.t.Runtime.EvaluateWithParams(params)
	if err != nil {
		return nil, err
	}
	if exp != nil {
		log.Warn().Str("exception", exp.Text).Msg("script evaluation raised")
	}
	return r.Value, nil
}

// Screenshot returns a png image, base64 encoded, or error if failed
func (t *Tab) Screenshot(ctx context.Context) (string, error) {
	params := &gcdapi.PageCaptureScreenshotParams{
		Format:  "png",
		Quality: 100,
		Clip: &gcdapi.PageViewport{
			X:      0,
			Y:      0,
			Width:  1024,
			Height: 768,
			Scale:  float64(1)},
		FromSurface: true,
	}
	return t.t.Page.CaptureScreenshotWithParams(params)
}

// Close ends event delivery and closes the events channel so consumers can
// drain what already arrived. Safe to call once; the launcher owns the
// process itself.
func (t *Tab) Close() {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	close(t.exitCh)
	close(t.events)
}

// dispatch forwards one converted event to the session, preserving CDP
// delivery order. Serialized so Close never races a send.
func (t *Tab) dispatch(evt *pagevet.RuntimeEvent) {
	t.dispatchMu.Lock()
	defer t.dispatchMu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- evt:
	case <-t.exitCh:
	}
}
