package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/pagevet/pagevet"
)

// DefaultSteps is the fixed walk a verification session performs: land on
// the frontend, visit the login route, hit a path no route serves (the app's
// client-side router must absorb it), probe the dialog for ARIA wiring,
// verify the automations route holds its URL instead of redirecting, check
// realtime transport availability, scan the landing page for ARIA landmark
// roles, and finally check the backend health endpoint over raw HTTP.
func DefaultSteps(cfg *pagevet.Config) []Step {
	front := strings.TrimRight(cfg.FrontendURL, "/")
	health := strings.TrimRight(cfg.BackendURL, "/") + cfg.HealthPath

	return []Step{
		{
			Name:   "landing page",
			Target: front + "/",
			Action: navigateAction(front + "/"),
		},
		{
			Name:   "login route",
			Target: front + "/login",
			Action: navigateAction(front + "/login"),
		},
		{
			Name:   "unknown path",
			Target: front + "/this-route-does-not-exist",
			Action: navigateAction(front + "/this-route-does-not-exist"),
		},
		{
			Name:   "dialog accessibility probe",
			Target: front + "/login",
			Action: dialogProbe,
		},
		{
			Name:   "automations route stability",
			Target: front + "/automations",
			Action: routeStabilityAction(front+"/automations", "/automations", "Automation Discovery"),
		},
		{
			Name:   "realtime transport probe",
			Target: front + "/",
			Action: realtimeProbe(front + "/"),
		},
		{
			Name:   "landmark scan",
			Target: front + "/",
			Action: landmarkScan(front + "/"),
		},
		{
			Name:   "backend health",
			Target: health,
			Action: healthProbe(health),
		},
	}
}

// navigateAction loads url with the configured navigation timeout and
// returns whatever URL the application resolved to. Client-side redirects
// are fine; only a navigation error or timeout fails the step.
func navigateAction(url string) StepAction {
	return func(ctx context.Context, s *Session) (string, error) {
		navCtx, cancel := context.WithTimeout(ctx, s.Config().NavTimeout)
		defer cancel()
		return s.Browser().Navigate(navCtx, url)
	}
}

// routeStabilityAction loads url and fails the step when the application
// redirects away from route. A route that will not hold its own URL is how a
// broken guard shows up, so the resolved URL must still contain route. The
// content marker is best effort; its absence is logged, not failed.
func routeStabilityAction(url, route, marker string) StepAction {
	return func(ctx context.Context, s *Session) (string, error) {
		navCtx, cancel := context.WithTimeout(ctx, s.Config().NavTimeout)
		defer cancel()
		resolved, err := s.Browser().Navigate(navCtx, url)
		if err != nil {
			return "", err
		}
		if !strings.Contains(resolved, route) {
			return resolved, errors.Wrapf(ErrRouteRedirect, "%s resolved to %s", route, resolved)
		}
		if !waitForContent(ctx, s, marker, s.Config().ElementWait) {
			s.logger.Info().Str("marker", marker).Msg("route held but expected content never appeared")
		}
		return resolved, nil
	}
}

const realtimeSupportScript = `(function() {
	return JSON.stringify({
		io: typeof io !== 'undefined',
		ws: 'WebSocket' in window
	});
})()`

// realtimeProbe records whether the page loaded socket.io and whether the
// WebSocket API exists at all. Observational: the answers are logged, and
// any console or network fallout from the load reaches the ledger through
// the normal capture path.
func realtimeProbe(url string) StepAction {
	return func(ctx context.Context, s *Session) (string, error) {
		navCtx, cancel := context.WithTimeout(ctx, s.Config().NavTimeout)
		defer cancel()
		resolved, err := s.Browser().Navigate(navCtx, url)
		if err != nil {
			return "", err
		}

		raw, err := s.Browser().Evaluate(ctx, realtimeSupportScript)
		if err != nil {
			s.logger.Info().Err(err).Msg("realtime probe inconclusive")
			return resolved, nil
		}
		str, ok := raw.(string)
		if !ok {
			s.logger.Info().Msg("realtime probe inconclusive, script returned non-string")
			return resolved, nil
		}
		var parsed struct {
			IO bool `json:"io"`
			WS bool `json:"ws"`
		}
		if err := json.Unmarshal([]byte(str), &parsed); err != nil {
			s.logger.Info().Err(err).Msg("realtime probe inconclusive")
			return resolved, nil
		}
		s.logger.Info().Bool("socketio", parsed.IO).Bool("websocket", parsed.WS).Msg("realtime transport support")
		return resolved, nil
	}
}

const landmarkRolesScript = `(function() {
	var nodes = document.querySelectorAll('[role]');
	var roles = [];
	for (var i = 0; i < nodes.length; i++) {
		roles.push(nodes[i].getAttribute('role'));
	}
	return JSON.stringify({count: nodes.length, roles: roles});
})()`

// landmarkScan counts elements carrying explicit ARIA roles on the page. A
// page with none gives assistive tech nothing to navigate by; that is filed
// as an accessibility finding through the normal ingest path.
func landmarkScan(url string) StepAction {
	return func(ctx context.Context, s *Session) (string, error) {
		navCtx, cancel := context.WithTimeout(ctx, s.Config().NavTimeout)
		defer cancel()
		resolved, err := s.Browser().Navigate(navCtx, url)
		if err != nil {
			return "", err
		}

		raw, err := s.Browser().Evaluate(ctx, landmarkRolesScript)
		if err != nil {
			s.logger.Info().Err(err).Msg("landmark scan inconclusive")
			return resolved, nil
		}
		str, ok := raw.(string)
		if !ok {
			s.logger.Info().Msg("landmark scan inconclusive, script returned non-string")
			return resolved, nil
		}
		var parsed struct {
			Count int      `json:"count"`
			Roles []string `json:"roles"`
		}
		if err := json.Unmarshal([]byte(str), &parsed); err != nil {
			s.logger.Info().Err(err).Msg("landmark scan inconclusive")
			return resolved, nil
		}

		if parsed.Count == 0 {
			s.Ingest(probeFinding("page has no elements with ARIA landmark roles, accessibility navigation is unavailable"))
		} else {
			s.logger.Info().Int("landmarks", parsed.Count).Strs("roles", parsed.Roles).Msg("landmark roles present")
		}
		return resolved, nil
	}
}

// healthProbe issues a raw GET independent of page navigation. Anything but
// 200 fails the step; the response body is ignored.
func healthProbe(url string) StepAction {
	return func(ctx context.Context, s *Session) (string, error) {
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return "", err
		}
		resp, err := s.Client().Do(req.WithContext(ctx))
		if err != nil {
			return "", errors.Wrap(err, "health request failed")
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return "", errors.Wrapf(ErrHealthCheck, "status %d", resp.StatusCode)
		}
		return url, nil
	}
}

const dialogStateScript = `(function() {
	var d = document.querySelector('[role="dialog"]');
	if (!d || d.offsetParent === null) {
		return JSON.stringify({found: false});
	}
	return JSON.stringify({
		found: true,
		labelled: d.hasAttribute('aria-labelledby'),
		described: d.hasAttribute('aria-describedby')
	});
})()`

// dialogProbe is best effort: find the trigger, open the dialog, and check
// its labelledby/describedby wiring. A missing trigger or a dialog that
// never appears is inconclusive, not a failure; missing associations are
// filed as accessibility findings through the normal ingest path.
func dialogProbe(ctx context.Context, s *Session) (string, error) {
	cfg := s.Config()
	b := s.Browser()

	findCtx, cancel := context.WithTimeout(ctx, cfg.ElementWait)
	defer cancel()

	pt, ok, err := b.FindByText(findCtx, "button", cfg.DialogTrigger)
	if err != nil || !ok {
		s.logger.Info().Str("trigger", cfg.DialogTrigger).Msg("dialog probe inconclusive, no visible trigger")
		return currentURL(ctx, s), nil
	}

	if err := b.Click(ctx, pt); err != nil {
		s.logger.Info().Err(err).Msg("dialog probe inconclusive, click failed")
		return currentURL(ctx, s), nil
	}

	state, appeared := waitForDialog(ctx, s, cfg.ElementWait)
	if !appeared {
		s.logger.Info().Msg("dialog probe inconclusive, no dialog appeared")
		return currentURL(ctx, s), nil
	}

	if !state.labelled {
		s.Ingest(probeFinding("dialog is missing an aria-labelledby association"))
	}
	if !state.described {
		s.Ingest(probeFinding("dialog is missing an aria-describedby association"))
	}

	closeDialog(ctx, s)
	return currentURL(ctx, s), nil
}

// closeDialog dismisses the probed dialog so it cannot leak into whatever
// the next step loads. Best effort: the close control is matched by its
// accessible "Close" label, and a dialog without one is left alone.
func closeDialog(ctx context.Context, s *Session) {
	pt, ok, err := s.Browser().FindByText(ctx, "button", "Close")
	if err != nil || !ok {
		s.logger.Info().Msg("no close control found, dialog left open")
		return
	}
	if err := s.Browser().Click(ctx, pt); err != nil {
		s.logger.Info().Err(err).Msg("dialog close click failed")
	}
}

type dialogState struct {
	found     bool
	labelled  bool
	described bool
}

// waitForDialog polls the page until a visible dialog-role element shows up
// or the wait expires.
func waitForDialog(ctx context.Context, s *Session, wait time.Duration) (dialogState, bool) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(wait)

	for {
		select {
		case <-ctx.Done():
			return dialogState{}, false
		case <-deadline:
			return dialogState{}, false
		case <-ticker.C:
			raw, err := s.Browser().Evaluate(ctx, dialogStateScript)
			if err != nil {
				continue
			}
			state, err := parseDialogState(raw)
			if err != nil {
				continue
			}
			if state.found {
				return state, true
			}
		}
	}
}

const contentMarkerScript = `(function() {
	var text = document.body ? document.body.innerText || '' : '';
	return text.indexOf(%q) !== -1;
})()`

// waitForContent polls the page until marker shows up in the rendered text
// or the wait expires.
func waitForContent(ctx context.Context, s *Session, marker string, wait time.Duration) bool {
	script := fmt.Sprintf(contentMarkerScript, marker)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(wait)

	for {
		select {
		case <-ctx.Done():
			return false
		case <-deadline:
			return false
		case <-ticker.C:
			raw, err := s.Browser().Evaluate(ctx, script)
			if err != nil {
				continue
			}
			if present, ok := raw.(bool); ok && present {
				return true
			}
		}
	}
}

func parseDialogState(raw interface{}) (dialogState, error) {
	str, ok := raw.(string)
	if !ok {
		return dialogState{}, errors.New("dialog state script returned non-string")
	}
	var parsed struct {
		Found     bool `json:"found"`
		Labelled  bool `json:"labelled"`
		Described bool `json:"described"`
	}
	if err := json.Unmarshal([]byte(str), &parsed); err != nil {
		return dialogState{}, err
	}
	return dialogState{found: parsed.Found, labelled: parsed.Labelled, described: parsed.Described}, nil
}

// probeFinding synthesizes a runtime event for probe-detected issues so they
// flow through the same classifier and audit trail as browser events.
func probeFinding(text string) *pagevet.RuntimeEvent {
	return &pagevet.RuntimeEvent{
		Kind:     pagevet.ConsoleMessage,
		Severity: pagevet.Info,
		Text:     text,
		Observed: time.Now(),
	}
}

func currentURL(ctx context.Context, s *Session) string {
	url, err := s.Browser().Evaluate(ctx, "window.location.href")
	if err != nil {
		return ""
	}
	str, _ := url.(string)
	return str
}
