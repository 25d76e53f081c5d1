package pagevet

import "time"

// SuppressionRule allowlists a known-benign console warning. An event is
// suppressed when its text contains both the library name and the phrase,
// case-insensitively. Suppressed events never reach a category but are kept
// in the raw audit trail.
type SuppressionRule struct {
	Library string `toml:"library"`
	Phrase  string `toml:"phrase"`
}

// Config for a verification session
type Config struct {
	FrontendURL   string            `toml:"frontend_url"`
	BackendURL    string            `toml:"backend_url"`
	HealthPath    string            `toml:"health_path"`
	ResultsPath   string            `toml:"results_path"`
	NavTimeout    time.Duration     `toml:"-"`
	ElementWait   time.Duration     `toml:"-"`
	SettleDelay   time.Duration     `toml:"-"`
	MaxExamples   int               `toml:"max_examples"` // example messages per category in the summary
	DialogTrigger string            `toml:"dialog_trigger"`
	Suppressions  []SuppressionRule `toml:"suppress"`
	NavTimeoutSec int               `toml:"nav_timeout_seconds"`
	ElementSec    int               `toml:"element_wait_seconds"`
	SettleMs      int               `toml:"settle_ms"`
}

// DefaultSuppressions covers the one warning family we know is benign noise:
// Clerk announcing on every load that it is running with development keys.
// Router future-flag warnings are deliberately not here, they have their own
// category and must surface.
func DefaultSuppressions() []SuppressionRule {
	return []SuppressionRule{
		{Library: "Clerk", Phrase: "development keys"},
	}
}

// ApplyDefaults fills zero values and converts the toml-friendly integer
// durations into time.Durations.
func (c *Config) ApplyDefaults() {
	if c.FrontendURL == "" {
		c.FrontendURL = "http://localhost:3000"
	}
	if c.BackendURL == "" {
		c.BackendURL = "http://localhost:8000"
	}
	if c.HealthPath == "" {
		c.HealthPath = "/health"
	}
	if c.ResultsPath == "" {
		c.ResultsPath = "pagevet-results"
	}
	if c.MaxExamples == 0 {
		c.MaxExamples = 4
	}
	if c.DialogTrigger == "" {
		c.DialogTrigger = "Help"
	}
	if c.NavTimeoutSec == 0 {
		c.NavTimeoutSec = 15
	}
	if c.ElementSec == 0 {
		c.ElementSec = 5
	}
	if c.SettleMs == 0 {
		c.SettleMs = 1500
	}
	c.NavTimeout = time.Duration(c.NavTimeoutSec) * time.Second
	c.ElementWait = time.Duration(c.ElementSec) * time.Second
	c.SettleDelay = time.Duration(c.SettleMs) * time.Millisecond
	if c.Suppressions == nil {
		c.Suppressions = DefaultSuppressions()
	}
}
