package verifier

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gitlab.com/pagevet/pagevet"
	"gitlab.com/pagevet/store"
	"gitlab.com/pagevet/verifier/browser"
	"gitlab.com/pagevet/verifier/report"
)

// Vet is the harness engine: it owns the browser process, the audit store,
// one session, and the report for that session's results.
type Vet struct {
	cfg      *pagevet.Config
	launcher *browser.Launcher
	audit    *store.AuditStore
	reporter *report.Reporter
	session  *Session
	runDir   string
	record   *report.Record
	verdict  *pagevet.Verdict
}

// New engine
func New(cfg *pagevet.Config) *Vet {
	cfg.ApplyDefaults()
	return &Vet{
		cfg:      cfg,
		launcher: browser.NewLauncher(),
		reporter: report.New(cfg.MaxExamples),
	}
}

// RunDir is where this run's artifacts land
func (v *Vet) RunDir() string { return v.runDir }

// Init creates the run directory, opens the audit store, and launches the
// browser. A browser that will not launch is the one fatal error in the
// harness; everything after this degrades instead of aborting.
func (v *Vet) Init(ctx context.Context) error {
	v.runDir = filepath.Join(v.cfg.ResultsPath, time.Now().Format("20060102-150405"))
	if err := os.MkdirAll(v.runDir, 0766); err != nil {
		return errors.Wrap(err, "failed to create results directory")
	}

	v.audit = store.NewAuditStore(filepath.Join(v.runDir, "audit"))
	var audit pagevet.AuditStore = v.audit
	if err := v.audit.Init(); err != nil {
		// audit archival is best effort, the session carries on without it
		log.Warn().Err(err).Msg("audit store unavailable, continuing without raw archive")
		v.audit = nil
		audit = nil
	}

	log.Info().Msg("launching browser")
	tab, err := v.launcher.Launch(ctx)
	if err != nil {
		return err
	}

	v.session = NewSession(v.cfg, tab, audit, v.runDir)
	return nil
}

// Run walks the fixed step list, derives the verdict, and persists the
// structured record. Persistence problems are logged and never change the
// verdict.
func (v *Vet) Run(ctx context.Context) (*pagevet.Verdict, error) {
	if v.session == nil {
		return nil, errors.New("engine not initialized")
	}

	outcomes, snap, err := v.session.Run(ctx, DefaultSteps(v.cfg))
	if err != nil {
		return nil, err
	}

	v.verdict = Decide(snap, outcomes)
	v.record = &report.Record{
		SessionID:        v.session.ID(),
		SessionTimestamp: time.Now(),
		Events:           snap.Entries,
		Suppressed:       snap.Suppressed,
		StepOutcomes:     outcomes,
		OverallStatus:    v.verdict.Status.String(),
		Counts:           v.verdict.CountsByCategory,
		FailingSteps:     v.verdict.FailingStepCount,
	}

	if path, err := v.reporter.WriteJSON(v.runDir, v.record); err != nil {
		log.Warn().Err(err).Msg("failed to persist session record")
	} else {
		log.Info().Str("path", path).Msg("session record written")
	}

	return v.verdict, nil
}

// Summary renders the human-readable result of the completed run
func (v *Vet) Summary(w io.Writer) {
	if v.record == nil {
		return
	}
	v.reporter.Summary(w, v.record)
}

// Stop the browser process and close the audit store
func (v *Vet) Stop() error {
	var firstErr error
	if err := v.launcher.Shutdown(); err != nil {
		firstErr = err
	}
	if v.audit != nil {
		if err := v.audit.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
