package pagevet_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml"
	"gitlab.com/pagevet/pagevet"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &pagevet.Config{}
	cfg.ApplyDefaults()

	if cfg.FrontendURL != "http://localhost:3000" {
		t.Fatalf("wrong frontend default: %s", cfg.FrontendURL)
	}
	if cfg.NavTimeout != 15*time.Second {
		t.Fatalf("wrong nav timeout default: %s", cfg.NavTimeout)
	}
	if cfg.ElementWait != 5*time.Second {
		t.Fatalf("wrong element wait default: %s", cfg.ElementWait)
	}
	if len(cfg.Suppressions) == 0 {
		t.Fatalf("default suppressions missing")
	}
}

func TestConfigFromToml(t *testing.T) {
	raw := `
frontend_url = "https://app.example.com"
backend_url = "https://api.example.com"
nav_timeout_seconds = 30

[[suppress]]
library = "react router"
phrase = "future flag"

[[suppress]]
library = "styled-components"
phrase = "dynamically created"
`
	cfg := &pagevet.Config{}
	if err := toml.Unmarshal([]byte(raw), cfg); err != nil {
		t.Fatalf("failed to decode config: %s", err)
	}
	cfg.ApplyDefaults()

	if cfg.FrontendURL != "https://app.example.com" {
		t.Fatalf("frontend not decoded: %s", cfg.FrontendURL)
	}
	if cfg.NavTimeout != 30*time.Second {
		t.Fatalf("nav timeout override lost: %s", cfg.NavTimeout)
	}
	// a configured allowlist replaces the built-in default entirely
	if len(cfg.Suppressions) != 2 || cfg.Suppressions[1].Library != "styled-components" {
		t.Fatalf("suppressions not decoded: %+v", cfg.Suppressions)
	}
}
