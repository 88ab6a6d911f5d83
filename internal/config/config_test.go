package config

import (
	"testing"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Monitor.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval 30s, got %v", cfg.Monitor.PollInterval)
	}
	if len(cfg.Monitor.Subreddits) != 2 {
		t.Errorf("expected 2 default subreddits, got %v", cfg.Monitor.Subreddits)
	}
	if cfg.Classifier.MinConfidence != 4 {
		t.Errorf("expected default min confidence 4, got %d", cfg.Classifier.MinConfidence)
	}
	if cfg.Alerts.MinUrgency != models.UrgencyCritical {
		t.Errorf("expected default alert urgency %d, got %d", models.UrgencyCritical, cfg.Alerts.MinUrgency)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("expected default log format json, got %s", cfg.Logging.Format)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MONITOR_SUBREDDITS", "earthquakes, weather ,floods")
	t.Setenv("MONITOR_POLL_INTERVAL", "2m")
	t.Setenv("CLASSIFIER_MIN_CONFIDENCE", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	want := []string{"earthquakes", "weather", "floods"}
	if len(cfg.Monitor.Subreddits) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Monitor.Subreddits)
	}
	for i, sub := range want {
		if cfg.Monitor.Subreddits[i] != sub {
			t.Errorf("subreddit %d: expected %s, got %s", i, sub, cfg.Monitor.Subreddits[i])
		}
	}
	if cfg.Monitor.PollInterval != 2*time.Minute {
		t.Errorf("expected poll interval 2m, got %v", cfg.Monitor.PollInterval)
	}
	if cfg.Classifier.MinConfidence != 7 {
		t.Errorf("expected min confidence 7, got %d", cfg.Classifier.MinConfidence)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"poll interval too short", "MONITOR_POLL_INTERVAL", "1s"},
		{"min confidence out of range", "CLASSIFIER_MIN_CONFIDENCE", "11"},
		{"alert urgency out of range", "ALERT_MIN_URGENCY", "5"},
		{"rate limit too low", "API_RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
