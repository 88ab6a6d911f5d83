package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/crisiswatch/disaster-watch/internal/models"
)

type Config struct {
	Server     ServerConfig
	Worker     WorkerConfig
	Monitor    MonitorConfig
	Classifier ClassifierConfig
	Alerts     AlertsConfig
	API        APIConfig
	DB         DatabaseConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type MonitorConfig struct {
	Enabled      bool
	Subreddits   []string
	PollInterval time.Duration
	BaseURL      string
	UserAgent    string
}

type ClassifierConfig struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
	// MinConfidence is the low-relevance cutoff on the classifier's 0-10
	// confidence scale. Posts scored below it are rejected from ingestion.
	MinConfidence int
}

type AlertsConfig struct {
	// MinUrgency is the lowest urgency level broadcast to alert subscribers.
	MinUrgency int
}

type APIConfig struct {
	RateLimitRPS int
	CacheTTL     time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8000),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 50),
		},
		Monitor: MonitorConfig{
			Enabled:      getEnvBool("MONITOR_ENABLED", true),
			Subreddits:   getEnvList("MONITOR_SUBREDDITS", []string{"disaster", "news"}),
			PollInterval: getEnvDuration("MONITOR_POLL_INTERVAL", 30*time.Second),
			BaseURL:      getEnv("MONITOR_BASE_URL", "https://www.reddit.com"),
			UserAgent:    getEnv("MONITOR_USER_AGENT", "disaster-watch/1.0"),
		},
		Classifier: ClassifierConfig{
			URL:           getEnv("CLASSIFIER_URL", "http://localhost:8090/v1/classify"),
			APIKey:        getEnv("CLASSIFIER_API_KEY", ""),
			Model:         getEnv("CLASSIFIER_MODEL", "gemini-2.5-flash"),
			Timeout:       getEnvDuration("CLASSIFIER_TIMEOUT", 15*time.Second),
			MinConfidence: getEnvInt("CLASSIFIER_MIN_CONFIDENCE", 4),
		},
		Alerts: AlertsConfig{
			MinUrgency: getEnvInt("ALERT_MIN_URGENCY", models.UrgencyCritical),
		},
		API: APIConfig{
			RateLimitRPS: getEnvInt("API_RATE_LIMIT_RPS", 5),
			CacheTTL:     getEnvDuration("API_CACHE_TTL", 10*time.Second),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/disaster-watch.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Monitor.Enabled {
		if len(c.Monitor.Subreddits) == 0 {
			return fmt.Errorf("MONITOR_SUBREDDITS must name at least one subreddit")
		}
		if c.Monitor.PollInterval < 10*time.Second {
			return fmt.Errorf("monitor poll interval must be at least 10 seconds")
		}
	}

	if c.Classifier.Timeout <= 0 {
		return fmt.Errorf("classifier timeout must be positive")
	}
	if c.Classifier.MinConfidence < models.ConfidenceMin || c.Classifier.MinConfidence > models.ConfidenceMax {
		return fmt.Errorf("classifier min confidence must be in [%d,%d]: %d",
			models.ConfidenceMin, models.ConfidenceMax, c.Classifier.MinConfidence)
	}

	if c.Alerts.MinUrgency < models.UrgencyLow || c.Alerts.MinUrgency > models.UrgencyCritical {
		return fmt.Errorf("alert min urgency must be in [%d,%d]: %d",
			models.UrgencyLow, models.UrgencyCritical, c.Alerts.MinUrgency)
	}

	if c.API.RateLimitRPS < 1 {
		return fmt.Errorf("API rate limit must be at least 1 req/s")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
