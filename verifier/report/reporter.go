package report

import (
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"time"

	"gitlab.com/pagevet/pagevet"
)

// Record is the persisted structured result of one session: the full ledger
// contents, the suppressed audit view, every step outcome, and the verdict.
type Record struct {
	SessionID        string                                       `json:"session_id"`
	SessionTimestamp time.Time                                    `json:"session_timestamp"`
	Events           map[pagevet.Category][]*pagevet.RuntimeEvent `json:"events"`
	Suppressed       []*pagevet.RuntimeEvent                      `json:"suppressed"`
	StepOutcomes     []pagevet.StepOutcome                        `json:"step_outcomes"`
	OverallStatus    string                                       `json:"overall_status"`
	Counts           map[pagevet.Category]int                     `json:"counts_by_category"`
	FailingSteps     int                                          `json:"failing_step_count"`
}

// Reporter renders a session record as a human summary and a durable JSON
// file. Emission never fails a session; callers log and move on.
type Reporter struct {
	maxExamples int
}

// New reporter showing at most maxExamples messages per category
func New(maxExamples int) *Reporter {
	if maxExamples <= 0 {
		maxExamples = 4
	}
	return &Reporter{maxExamples: maxExamples}
}

// Summary writes the categorized human-readable result
func (r *Reporter) Summary(w io.Writer, rec *Record) {
	fmt.Fprintf(w, "session %s — %s\n", rec.SessionID, rec.OverallStatus)
	fmt.Fprintf(w, "steps: %d total, %d failed\n", len(rec.StepOutcomes), rec.FailingSteps)
	for _, o := range rec.StepOutcomes {
		line := fmt.Sprintf("  [%s] %s", o.Status, o.Name)
		if o.Status == pagevet.StepFailure {
			line += " — " + o.Error
		} else if o.ResultURL != "" {
			line += " — " + o.ResultURL
		}
		fmt.Fprintln(w, line)
	}

	for _, cat := range pagevet.Categories {
		count := rec.Counts[cat]
		if count == 0 {
			continue
		}
		fmt.Fprintf(w, "%s: %d\n", cat, count)
		for i, evt := range rec.Events[cat] {
			if i >= r.maxExamples {
				fmt.Fprintf(w, "  ... and %d more\n", count-r.maxExamples)
				break
			}
			fmt.Fprintf(w, "  - %s\n", truncate(evt.Text, 200))
		}
	}
	if len(rec.Suppressed) > 0 {
		fmt.Fprintf(w, "suppressed as benign: %d\n", len(rec.Suppressed))
	}
}

// WriteJSON persists the full record to dir/session.json
func (r *Reporter) WriteJSON(dir string, rec *Record) (string, error) {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "session.json")
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
