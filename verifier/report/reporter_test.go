package report_test

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"os"
	"strings"
	"testing"
	"time"

	"gitlab.com/pagevet/pagevet"
	"gitlab.com/pagevet/verifier/report"
)

func sampleRecord() *report.Record {
	return &report.Record{
		SessionID:        "0a0b0c",
		SessionTimestamp: time.Now(),
		Events: map[pagevet.Category][]*pagevet.RuntimeEvent{
			pagevet.ConsoleError: {
				{Kind: pagevet.ConsoleMessage, Severity: pagevet.Error, Text: "TypeError: boom"},
				{Kind: pagevet.PageError, Severity: pagevet.Error, Text: "Uncaught ReferenceError"},
			},
		},
		Suppressed: []*pagevet.RuntimeEvent{
			{Kind: pagevet.ConsoleMessage, Severity: pagevet.Warning, Text: "benign"},
		},
		StepOutcomes: []pagevet.StepOutcome{
			{Name: "landing page", Target: "http://x/", ResultURL: "http://x/", Status: pagevet.StepSuccess},
			{Name: "backend health", Target: "http://y/health", Status: pagevet.StepFailure, Error: "status 500"},
		},
		OverallStatus: "fail",
		Counts:        map[pagevet.Category]int{pagevet.ConsoleError: 2},
		FailingSteps:  1,
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	report.New(1).Summary(&buf, sampleRecord())
	out := buf.String()

	for _, want := range []string{
		"fail",
		"console_error: 2",
		"TypeError: boom",
		"... and 1 more",
		"status 500",
		"suppressed as benign: 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}
	// only one example was allowed
	if strings.Contains(out, "ReferenceError") {
		t.Fatalf("summary exceeded the example budget:\n%s", out)
	}
}

func TestWriteJSON(t *testing.T) {
	dir, err := ioutil.TempDir("", "pagevet-report")
	if err != nil {
		t.Fatalf("tempdir: %s", err)
	}
	defer os.RemoveAll(dir)

	path, err := report.New(4).WriteJSON(dir, sampleRecord())
	if err != nil {
		t.Fatalf("write failed: %s", err)
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatalf("read back failed: %s", err)
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("record is not valid json: %s", err)
	}
	if parsed["overall_status"] != "fail" {
		t.Fatalf("status not persisted: %v", parsed["overall_status"])
	}
	counts, ok := parsed["counts_by_category"].(map[string]interface{})
	if !ok || counts["console_error"] != float64(2) {
		t.Fatalf("category counts must serialize with readable keys: %v", parsed["counts_by_category"])
	}
	if _, ok := parsed["step_outcomes"].([]interface{}); !ok {
		t.Fatalf("step outcomes missing")
	}
}
