package verifier

import (
	"strings"

	"gitlab.com/pagevet/pagevet"
)

// Classification is the result of classifying one runtime event.
type Classification struct {
	Suppressed bool
	Categories []pagevet.Category
}

// Has reports membership of a category in the classification.
func (c Classification) Has(cat pagevet.Category) bool {
	for _, have := range c.Categories {
		if have == cat {
			return true
		}
	}
	return false
}

// contentRule files an event into a category when its text contains any of
// the phrases, case-insensitively. Rules are data so the set can grow
// without touching Classify.
type contentRule struct {
	category pagevet.Category
	phrases  []string
}

var defaultContentRules = []contentRule{
	{pagevet.RouterWarning, []string{
		"react router future flag",
		"v7_starttransition",
		"v7_relativesplatpath",
		"future flag warning",
	}},
	{pagevet.CspViolation, []string{
		"content security policy",
		"refused to load",
		"refused to execute",
		"csp",
	}},
	{pagevet.AccessibilityIssue, []string{
		"aria-",
		"accessibility",
		"missing a label",
	}},
}

// Classifier maps a raw runtime event to zero or more categories plus a
// suppression decision. Pure and total: unrecognized events classify to an
// empty set, never an error.
type Classifier struct {
	allow []pagevet.SuppressionRule
	rules []contentRule
}

// NewClassifier with the given suppression allowlist. A nil allowlist means
// nothing is suppressed.
func NewClassifier(allow []pagevet.SuppressionRule) *Classifier {
	return &Classifier{allow: allow, rules: defaultContentRules}
}

// Classify one event. Suppression is decided first; a suppressed event
// contributes to no category. Otherwise severity files the event under
// ConsoleError/ConsoleWarning and, independently, every matching content
// rule files it again, so a single event can land in several buckets.
func (c *Classifier) Classify(evt *pagevet.RuntimeEvent) Classification {
	text := strings.ToLower(evt.Text)

	if evt.Kind == pagevet.ConsoleMessage && evt.Severity == pagevet.Warning && c.allowlisted(text) {
		return Classification{Suppressed: true}
	}

	var cats []pagevet.Category
	switch {
	case evt.Kind == pagevet.PageError,
		evt.Kind == pagevet.ConsoleMessage && evt.Severity == pagevet.Error:
		cats = append(cats, pagevet.ConsoleError)
	case evt.Kind == pagevet.ConsoleMessage && evt.Severity == pagevet.Warning:
		cats = append(cats, pagevet.ConsoleWarning)
	}

	for _, rule := range c.rules {
		if rule.matches(text) {
			cats = append(cats, rule.category)
		}
	}

	if evt.Kind == pagevet.RequestFailure {
		cats = append(cats, pagevet.NetworkFailure)
	}

	return Classification{Categories: cats}
}

func (c *Classifier) allowlisted(lowered string) bool {
	for _, rule := range c.allow {
		if strings.Contains(lowered, strings.ToLower(rule.Library)) &&
			strings.Contains(lowered, strings.ToLower(rule.Phrase)) {
			return true
		}
	}
	return false
}

func (r contentRule) matches(lowered string) bool {
	for _, phrase := range r.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
