package verifier

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	uuid "github.com/satori/go.uuid"
	"gitlab.com/pagevet/pagevet"
)

// SessionState tracks driver progress. Strictly forward: steps depend on the
// browser state the previous step left behind, so there are no retries and
// no backward transitions.
type SessionState int8

const (
	NotStarted SessionState = iota
	Running
	Completed
)

// Step is one named action in the fixed session walk. Target is the URL the
// step aims at, informational for probes that stay on the current page.
type Step struct {
	Name   string
	Target string
	Action StepAction
}

// StepAction executes against the live session and returns the resulting
// URL. Any error marks the step failed; the driver continues regardless.
type StepAction func(ctx context.Context, s *Session) (string, error)

// Session drives one fixed step list against one browser, pumping the
// browser's event stream through the classifier into the ledger while steps
// execute. One session, one browser, one ledger; never reused.
type Session struct {
	id          string
	cfg         *pagevet.Config
	browser     pagevet.Browser
	classifier  *Classifier
	ledger      *Ledger
	audit       pagevet.AuditStore
	client      *http.Client
	artifactDir string
	outcomes    []pagevet.StepOutcome
	state       SessionState
	stepIndex   int
	pumpWG      sync.WaitGroup
	logger      zerolog.Logger
}

// NewSession wires a browser and optional audit store into a fresh session.
// artifactDir receives per-step screenshots; audit may be nil when durable
// event archival is disabled.
func NewSession(cfg *pagevet.Config, b pagevet.Browser, audit pagevet.AuditStore, artifactDir string) *Session {
	id := uuid.NewV4().String()
	return &Session{
		id:          id,
		cfg:         cfg,
		browser:     b,
		classifier:  NewClassifier(cfg.Suppressions),
		ledger:      NewLedger(),
		audit:       audit,
		client:      &http.Client{Timeout: cfg.NavTimeout},
		artifactDir: artifactDir,
		logger:      log.With().Str("session", id).Logger(),
	}
}

// ID of this session
func (s *Session) ID() string { return s.id }

// State of the driver
func (s *Session) State() SessionState { return s.state }

// Browser collaborator for step actions
func (s *Session) Browser() pagevet.Browser { return s.browser }

// Config for step actions
func (s *Session) Config() *pagevet.Config { return s.cfg }

// Client for raw HTTP probes independent of page navigation
func (s *Session) Client() *http.Client { return s.client }

// Run executes every step in order, then shuts the browser down, drains the
// event stream, and returns the recorded outcomes plus the final ledger
// snapshot. A step failure never aborts the walk; the outcome count always
// equals len(steps).
func (s *Session) Run(ctx context.Context, steps []Step) ([]pagevet.StepOutcome, *Snapshot, error) {
	if s.state != NotStarted {
		return nil, nil, ErrSessionReused
	}
	s.state = Running

	s.pumpWG.Add(1)
	go s.pump()

	for i, step := range steps {
		s.stepIndex = i
		s.runStep(ctx, i, step)
	}

	// closing the browser closes the event channel, letting the pump drain
	// everything delivered while the last step ran
	s.browser.Close()
	s.pumpWG.Wait()
	s.state = Completed

	return s.outcomes, s.ledger.Snapshot(), nil
}

func (s *Session) runStep(ctx context.Context, i int, step Step) {
	outcome := pagevet.StepOutcome{
		Name:    step.Name,
		Target:  step.Target,
		Started: time.Now(),
	}
	s.logger.Info().Int("step", i).Str("name", step.Name).Msg("running step")

	resultURL, err := step.Action(ctx, s)
	if err != nil {
		s.logger.Warn().Err(err).Str("name", step.Name).Msg("step failed")
		outcome.Status = pagevet.StepFailure
		outcome.Error = err.Error()
		s.outcomes = append(s.outcomes, outcome)
		return
	}

	outcome.Status = pagevet.StepSuccess
	outcome.ResultURL = resultURL

	// give deferred runtime events time to arrive before the snapshot
	s.settle(ctx)
	if path, err := s.captureArtifact(ctx, i, step.Name); err != nil {
		s.logger.Warn().Err(err).Str("name", step.Name).Msg("artifact capture failed")
	} else {
		outcome.Artifact = path
	}

	s.outcomes = append(s.outcomes, outcome)
}

func (s *Session) settle(ctx context.Context) {
	select {
	case <-time.After(s.cfg.SettleDelay):
	case <-ctx.Done():
	}
}

// pump moves browser events through the classifier into the ledger. Runs on
// its own goroutine for the life of the session; exits when the browser
// closes its event channel.
func (s *Session) pump() {
	defer s.pumpWG.Done()
	for evt := range s.browser.Events() {
		s.Ingest(evt)
	}
}

// Ingest classifies one event and files it. Also the entry point for probe
// steps that synthesize findings, so every event takes the same path into
// the ledger and audit trail.
func (s *Session) Ingest(evt *pagevet.RuntimeEvent) {
	result := s.classifier.Classify(evt)

	var seq uint64
	if result.Suppressed {
		seq = s.ledger.RecordSuppressed(evt)
		s.logger.Debug().Str("text", evt.Text).Msg("suppressed benign event")
	} else {
		seq = s.ledger.Record(result.Categories, evt)
	}

	if s.audit == nil {
		return
	}
	if err := s.audit.Store(s.id, seq, evt, result.Suppressed); err != nil {
		s.logger.Warn().Err(err).Msg("audit store write failed")
	}
}

func (s *Session) captureArtifact(ctx context.Context, i int, name string) (string, error) {
	if s.artifactDir == "" {
		return "", nil
	}
	shot, err := s.browser.Screenshot(ctx)
	if err != nil {
		return "", err
	}
	img, err := base64.StdEncoding.DecodeString(shot)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.artifactDir, fmt.Sprintf("step-%02d-%s.png", i, slug(name)))
	if err := os.MkdirAll(s.artifactDir, 0766); err != nil {
		return "", err
	}
	if err := ioutil.WriteFile(path, img, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func slug(name string) string {
	name = strings.ToLower(name)
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, name)
}
