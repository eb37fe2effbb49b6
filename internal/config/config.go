// Package config loads and validates application configuration from
// environment variables, optionally layered over a YAML file.
package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage drivers accepted in STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverBadger   = "badger"
	DriverMemory   = "memory"
)

// LLM providers accepted in LLM_PROVIDER.
const (
	ProviderLangChain = "langchain"
	ProviderOpenAI    = "openai"
)

// Config holds all configuration values for the API server.
// Values are populated by Load.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `yaml:"port"`

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `yaml:"cors_origins"`

	// MaxBodyBytes caps request bodies. Defaults to 64 KiB.
	MaxBodyBytes int64 `yaml:"max_body_bytes"`

	// StoreDriver selects where the goal snapshot lives. Defaults to "sqlite".
	StoreDriver string `yaml:"store_driver"`

	// StorePath is the sqlite file or the badger directory. Defaults to "goals.db".
	StorePath string `yaml:"store_path"`

	// DatabaseURL is the Postgres connection string.
	// Required when StoreDriver is "postgres".
	DatabaseURL string `yaml:"database_url"`

	// SuggestURL points at a remote suggestion service. When empty the
	// server prompts the LLM itself.
	SuggestURL string `yaml:"suggest_url"`

	LLMProvider string `yaml:"llm_provider"`
	// LLMAPIKey is required unless SuggestURL is set.
	LLMAPIKey  string `yaml:"llm_api_key"`
	LLMModel   string `yaml:"llm_model"`
	LLMBaseURL string `yaml:"llm_base_url"`
}

// Load reads configuration and returns a Config.
//
// If CONFIG_FILE names a YAML file its values are read first; any
// environment variable that is set overrides the file. Returns an error
// listing every required variable that is not set.
func Load() (Config, error) {
	var file Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Config{
		Port:        getEnv("PORT", file.Port, "8080"),
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", file.LogLevel, "info")),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", file.StoreDriver, DriverSQLite)),
		StorePath:   getEnv("STORE_PATH", file.StorePath, "goals.db"),
		DatabaseURL: getEnv("DATABASE_URL", file.DatabaseURL, ""),
		SuggestURL:  getEnv("SUGGEST_URL", file.SuggestURL, ""),
		LLMProvider: strings.ToLower(getEnv("LLM_PROVIDER", file.LLMProvider, ProviderLangChain)),
		LLMAPIKey:   getEnv("LLM_API_KEY", file.LLMAPIKey, ""),
		LLMModel:    getEnv("LLM_MODEL", file.LLMModel, "gpt-4o-mini"),
		LLMBaseURL:  getEnv("LLM_BASE_URL", file.LLMBaseURL, ""),
	}

	cfg.CORSOrigins = splitCSV(os.Getenv("CORS_ORIGINS"))
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = file.CORSOrigins
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:5173"}
	}

	cfg.MaxBodyBytes = file.MaxBodyBytes
	if v := os.Getenv("MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("MAX_BODY_BYTES must be an integer: %q", v)
		}
		cfg.MaxBodyBytes = n
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	if !slices.Contains([]string{DriverSQLite, DriverPostgres, DriverBadger, DriverMemory}, cfg.StoreDriver) {
		return Config{}, fmt.Errorf("STORE_DRIVER must be one of sqlite, postgres, badger, memory: %q", cfg.StoreDriver)
	}
	if !slices.Contains([]string{ProviderLangChain, ProviderOpenAI}, cfg.LLMProvider) {
		return Config{}, fmt.Errorf("LLM_PROVIDER must be one of langchain, openai: %q", cfg.LLMProvider)
	}

	var missing []string
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.SuggestURL == "" && cfg.LLMAPIKey == "" {
		missing = append(missing, "LLM_API_KEY")
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key.
// If it is unset or empty, fileValue is used, then fallback.
func getEnv(key, fileValue, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if fileValue != "" {
		return fileValue
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
