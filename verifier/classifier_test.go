package verifier_test

import (
	"reflect"
	"testing"

	"gitlab.com/pagevet/pagevet"
	"gitlab.com/pagevet/verifier"
)

func TestClassifyCategories(t *testing.T) {
	c := verifier.NewClassifier(pagevet.DefaultSuppressions())

	var inputs = []struct {
		name     string
		evt      *pagevet.RuntimeEvent
		expected []pagevet.Category
	}{
		{
			"console error files under ConsoleError",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Error, Text: "TypeError: x is undefined"},
			[]pagevet.Category{pagevet.ConsoleError},
		},
		{
			"page error files under ConsoleError",
			&pagevet.RuntimeEvent{Kind: pagevet.PageError, Severity: pagevet.Error, Text: "Uncaught ReferenceError: foo"},
			[]pagevet.Category{pagevet.ConsoleError},
		},
		{
			"plain warning files under ConsoleWarning",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Warning, Text: "deprecated API in use"},
			[]pagevet.Category{pagevet.ConsoleWarning},
		},
		{
			"router warning files under both warning buckets",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Warning, Text: "Relative route resolution... v7_relativeSplatPath"},
			[]pagevet.Category{pagevet.ConsoleWarning, pagevet.RouterWarning},
		},
		{
			"csp error files under error and csp buckets",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Error, Text: "Refused to load the script because it violates the Content Security Policy"},
			[]pagevet.Category{pagevet.ConsoleError, pagevet.CspViolation},
		},
		{
			"aria info message files under accessibility only",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Info, Text: "dialog is missing an aria-labelledby association"},
			[]pagevet.Category{pagevet.AccessibilityIssue},
		},
		{
			"request failure files under NetworkFailure",
			&pagevet.RuntimeEvent{Kind: pagevet.RequestFailure, Text: "request failed: GET http://x/api net::ERR_CONNECTION_REFUSED"},
			[]pagevet.Category{pagevet.NetworkFailure},
		},
		{
			"unrecognized info maps to nothing",
			&pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Info, Text: "app booted"},
			nil,
		},
	}

	for _, in := range inputs {
		result := c.Classify(in.evt)
		if result.Suppressed {
			t.Fatalf("%s: unexpectedly suppressed", in.name)
		}
		if !reflect.DeepEqual(result.Categories, in.expected) {
			t.Fatalf("%s: got %v expected %v", in.name, result.Categories, in.expected)
		}
	}
}

func TestClassifySuppression(t *testing.T) {
	c := verifier.NewClassifier(pagevet.DefaultSuppressions())

	benign := &pagevet.RuntimeEvent{
		Kind:     pagevet.ConsoleMessage,
		Severity: pagevet.Warning,
		Text:     "Clerk has been loaded with development keys. Do not use this in production.",
	}
	result := c.Classify(benign)
	if !result.Suppressed {
		t.Fatalf("expected allowlisted warning to be suppressed")
	}
	if len(result.Categories) != 0 {
		t.Fatalf("suppressed event must belong to no category, got %v", result.Categories)
	}

	// suppression only applies to warnings, an error with the same text still counts
	asError := &pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Error, Text: benign.Text}
	result = c.Classify(asError)
	if result.Suppressed {
		t.Fatalf("errors must never be suppressed")
	}
	if !result.Has(pagevet.ConsoleError) {
		t.Fatalf("expected ConsoleError membership, got %v", result.Categories)
	}
}

// The built-in allowlist must never swallow router future-flag warnings:
// they carry their own category and drive the verdict to Fail.
func TestDefaultAllowlistKeepsRouterWarnings(t *testing.T) {
	c := verifier.NewClassifier(pagevet.DefaultSuppressions())

	evt := &pagevet.RuntimeEvent{
		Kind:     pagevet.ConsoleMessage,
		Severity: pagevet.Warning,
		Text:     "React Router Future Flag Warning: React Router will begin wrapping state updates in React.startTransition in v7",
	}
	result := c.Classify(evt)
	if result.Suppressed {
		t.Fatalf("router future-flag warning must not be suppressed by defaults")
	}
	if !result.Has(pagevet.ConsoleWarning) || !result.Has(pagevet.RouterWarning) {
		t.Fatalf("expected ConsoleWarning and RouterWarning, got %v", result.Categories)
	}

	l := verifier.NewLedger()
	l.Record(result.Categories, evt)
	v := verifier.Decide(l.Snapshot(), nil)
	if v.Status != pagevet.Fail {
		t.Fatalf("a router warning must fail the verdict, got %s", v.Status)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := verifier.NewClassifier(pagevet.DefaultSuppressions())
	evt := &pagevet.RuntimeEvent{Kind: pagevet.ConsoleMessage, Severity: pagevet.Warning, Text: "something aria-hidden related"}

	first := c.Classify(evt)
	second := c.Classify(evt)
	if first.Suppressed != second.Suppressed || !reflect.DeepEqual(first.Categories, second.Categories) {
		t.Fatalf("classification is not deterministic: %v vs %v", first, second)
	}
}

func TestClassifyNilAllowlist(t *testing.T) {
	c := verifier.NewClassifier(nil)
	evt := &pagevet.RuntimeEvent{
		Kind:     pagevet.ConsoleMessage,
		Severity: pagevet.Warning,
		Text:     "React Router Future Flag Warning",
	}
	result := c.Classify(evt)
	if result.Suppressed {
		t.Fatalf("nothing should be suppressed without an allowlist")
	}
}
