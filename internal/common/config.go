package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Store    StoreConfig
	LLM      LLMConfig
	OCR      OCRConfig
	Ingest   IngestConfig
	Manifest ManifestConfig
}

// StoreConfig holds document-store configuration
type StoreConfig struct {
	URI         string
	Database    string
	DialTimeout time.Duration
}

// LLMConfig holds reasoning-service configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	Temperature float32
	Timeout     time.Duration
}

// OCRConfig holds OCR/table-extraction service configuration
type OCRConfig struct {
	BaseURL      string
	PollInterval time.Duration
}

// IngestConfig holds batch-run configuration
type IngestConfig struct {
	URDFDir   string
	BatchSize int
}

// ManifestConfig holds reference-data configuration
type ManifestConfig struct {
	Path string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Store: StoreConfig{
			URI:         getEnv("MONGO_URI", ""),
			Database:    getEnv("MONGO_DB", "catalog"),
			DialTimeout: getEnvAsDuration("MONGO_DIAL_TIMEOUT", 5*time.Second),
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENAI_MODEL", "gpt-4o"),
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Temperature: getEnvAsFloat32("OPENAI_TEMPERATURE", 0.0),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 120*time.Second),
		},
		OCR: OCRConfig{
			BaseURL:      getEnv("OCR_BASE_URL", ""),
			PollInterval: getEnvAsDuration("OCR_POLL_INTERVAL", 3000*time.Millisecond),
		},
		Ingest: IngestConfig{
			URDFDir:   getEnv("URDF_DIR", "./URDF"),
			BatchSize: getEnvAsInt("BATCH_SIZE", 3),
		},
		Manifest: ManifestConfig{
			Path: getEnv("MANIFEST_PATH", "./manifest.json"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings and, for compatibility with
// older deployments, bare integers meaning milliseconds.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if ms, err := strconv.Atoi(value); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultValue
}

// Validate checks that every mandatory value is present before any work begins.
func (c *Config) Validate() error {
	if c.Store.URI == "" {
		return NewAppError("CONFIG_ERROR", "MONGO_URI is required", ErrInvalidInput)
	}
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
	}
	if c.Ingest.BatchSize <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}
