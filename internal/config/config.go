package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultPINSalt is the fixed constant mixed into the PIN before key
// derivation. Changing it invalidates every previously encrypted document.
const DefaultPINSalt = "moneylog:budget:v1"

type Config struct {
	// HTTP Server
	Port string

	// Access gate
	AccessPIN  string
	PINSalt    string
	SessionTTL time.Duration

	// Persistence
	DataBackend   string
	SQLiteDBPath  string
	GCSBucket     string
	GCSObject     string
	GCSCredsFile  string
	DebounceDelay time.Duration

	// AMQP (optional save-event feed)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Backup worker
	BackupDir string
}

func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8082"),

		AccessPIN:  getEnv("ACCESS_PIN", "1234"),
		PINSalt:    getEnv("PIN_SALT", DefaultPINSalt),
		SessionTTL: getEnvDuration("SESSION_TTL", 12*time.Hour),

		DataBackend:   getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath:  getEnv("SQLITE_DB_PATH", "./data/moneylog.db"),
		GCSBucket:     getEnv("GCS_BUCKET", ""),
		GCSObject:     getEnv("GCS_OBJECT", "budgets/main.json"),
		GCSCredsFile:  getEnv("GCS_CREDENTIALS_FILE", ""),
		DebounceDelay: getEnvDuration("SAVE_DEBOUNCE", 1500*time.Millisecond),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "moneylog"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "document_saves"),

		BackupDir: getEnv("BACKUP_DIR", "./data/backups"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	// Validate access PIN: short numeric code
	if c.AccessPIN == "" {
		errors = append(errors, "access PIN cannot be empty")
	} else {
		if len(c.AccessPIN) < 4 || len(c.AccessPIN) > 6 {
			errors = append(errors, fmt.Sprintf("invalid access PIN: must be 4-6 digits, got %d characters", len(c.AccessPIN)))
		}
		for _, r := range c.AccessPIN {
			if r < '0' || r > '9' {
				errors = append(errors, "invalid access PIN: must contain digits only")
				break
			}
		}
	}

	if c.PINSalt == "" {
		errors = append(errors, "PIN salt cannot be empty")
	}

	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}

	// Validate data backend
	validBackends := []string{"memory", "sqlite", "gcs"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Validate GCS configuration if backend is gcs
	if c.DataBackend == "gcs" {
		if c.GCSBucket == "" {
			errors = append(errors, "GCS bucket is required when using gcs backend")
		}
		if c.GCSObject == "" {
			errors = append(errors, "GCS object name is required when using gcs backend")
		}
		if c.GCSCredsFile != "" {
			if _, err := os.Stat(c.GCSCredsFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("GCS credentials file does not exist: %s", c.GCSCredsFile))
			}
		}
	}

	// Validate save debounce window
	if c.DebounceDelay < 100*time.Millisecond {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must be at least 100ms", c.DebounceDelay))
	} else if c.DebounceDelay > time.Minute {
		errors = append(errors, fmt.Sprintf("invalid save debounce %v: must be at most 1 minute", c.DebounceDelay))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
	}

	// Validate AMQP exchange and queue names if AMQP is configured
	if c.AMQPURL != "" {
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
