package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from the environment.
type Config struct {
	Addr          string        // listen address, e.g. ":8080"
	Env           string        // "development" or "production"
	DBPath        string        // SQLite database file path
	AdminEmail    string        // seeded admin account + reminder recipient
	AdminPassword string        // seeded admin account password
	CSRFKey       string        // 64 hex chars (32 bytes); optional in development
	ResendKey     string        // Resend API key; empty selects the no-op sender
	EmailFrom     string        // sender address for outgoing mail
	EmailReplyTo  string        // reply-to address for outgoing mail
	ReminderEvery time.Duration // expiry reminder scan interval
	StaticDir     string        // directory served at /
}

// Load reads configuration from a .env file (if present) and the environment.
// PRE: none
// POST: Returns a Config with defaults applied; Validate has NOT been called
func Load() Config {
	// Missing .env is fine; real deployments set env vars directly.
	_ = godotenv.Load()

	return Config{
		Addr:          getEnv("GYMDESK_ADDR", ":8080"),
		Env:           getEnv("GYMDESK_ENV", "development"),
		DBPath:        getEnv("GYMDESK_DB_PATH", "gymdesk.db"),
		AdminEmail:    getEnv("GYMDESK_ADMIN_EMAIL", "admin@gymdesk.local"),
		AdminPassword: os.Getenv("GYMDESK_ADMIN_PASSWORD"),
		CSRFKey:       os.Getenv("GYMDESK_CSRF_KEY"),
		ResendKey:     os.Getenv("GYMDESK_RESEND_KEY"),
		EmailFrom:     getEnv("GYMDESK_EMAIL_FROM", "GymDesk <noreply@gymdesk.local>"),
		EmailReplyTo:  getEnv("GYMDESK_REPLY_TO", "admin@gymdesk.local"),
		ReminderEvery: getEnvDuration("GYMDESK_REMINDER_INTERVAL", 24*time.Hour),
		StaticDir:     getEnv("GYMDESK_STATIC_DIR", "static"),
	}
}

// Validate checks the configuration and aggregates all problems into one error.
// PRE: Config was produced by Load
// POST: Returns nil if the process can start, error listing every problem otherwise
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "GYMDESK_ADDR cannot be empty")
	}
	if c.Env != "development" && c.Env != "production" {
		problems = append(problems, "GYMDESK_ENV must be 'development' or 'production'")
	}
	if c.DBPath == "" {
		problems = append(problems, "GYMDESK_DB_PATH cannot be empty")
	}
	if !strings.Contains(c.AdminEmail, "@") {
		problems = append(problems, "GYMDESK_ADMIN_EMAIL must be a valid email address")
	}
	if c.Env == "production" {
		if c.AdminPassword == "" {
			problems = append(problems, "GYMDESK_ADMIN_PASSWORD is required in production")
		}
		if c.CSRFKey == "" {
			problems = append(problems, "GYMDESK_CSRF_KEY is required in production")
		}
	}
	if c.CSRFKey != "" {
		key, err := hex.DecodeString(c.CSRFKey)
		if err != nil || len(key) != 32 {
			problems = append(problems, "GYMDESK_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
	}
	if c.ReminderEvery <= 0 {
		problems = append(problems, "GYMDESK_REMINDER_INTERVAL must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// IsProduction returns true when running with GYMDESK_ENV=production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// CSRFKeyBytes decodes the hex CSRF key.
// PRE: Validate returned nil
// POST: Returns the 32-byte key, or nil when no key is configured
func (c Config) CSRFKeyBytes() []byte {
	if c.CSRFKey == "" {
		return nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil {
		return nil
	}
	return key
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return fallback
}
