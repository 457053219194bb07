// Package config loads tag engine settings.
//
// Precedence, highest first: command-line flag, environment variable,
// .env file, default.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/listenupapp/tagengine/internal/suggest"
)

// Classifier providers.
const (
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Chunk size bounds for classifier calls.
const (
	MinChunkSize     = suggest.MinChunkSize
	MaxChunkSize     = suggest.MaxChunkSize
	DefaultChunkSize = suggest.DefaultChunkSize
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig
	Logger     LoggerConfig
	Store      StoreConfig
	Classifier ClassifierConfig
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Environment string
}

// LoggerConfig contains logging settings.
type LoggerConfig struct {
	Level string
}

// StoreConfig contains tag store settings.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string
}

// ClassifierConfig contains settings for the consolidation classifier.
type ClassifierConfig struct {
	Provider    string
	APIKey      string
	Model       string
	ChunkSize   int
	Concurrency int
	RPS         float64
	Burst       int
	Timeout     time.Duration

	// CachePath is the Badger directory for cached responses. Empty keeps
	// the cache in memory; a CacheTTL of zero or less disables caching.
	CachePath string
	CacheTTL  time.Duration
}

// Load parses flags from args (without the program name) and resolves
// every setting. It returns the positional arguments left after flags.
func Load(args []string) (*Config, []string, error) {
	fs := flag.NewFlagSet("tagadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	dbPath := fs.String("db", "", "Path to the SQLite tag database")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	provider := fs.String("classifier", "", "Classifier provider (gemini, none)")
	model := fs.String("model", "", "Gemini model name")
	chunkSize := fs.String("chunk-size", "", "Tag names per classifier call (10-200)")
	concurrency := fs.String("concurrency", "", "Concurrent classifier calls")
	rps := fs.String("classifier-rps", "", "Classifier calls per second per scope")
	burst := fs.String("classifier-burst", "", "Classifier burst size")
	timeout := fs.String("classifier-timeout", "", "Per-call classifier timeout (e.g. 60s)")
	cachePath := fs.String("cache-path", "", "Classifier response cache directory")
	cacheTTL := fs.String("cache-ttl", "", "Classifier response cache TTL (e.g. 24h)")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env is fine.
	if err := loadEnvFile(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, nil, fmt.Errorf("load env file: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Path: getConfigValue(*dbPath, "DB_PATH", ""),
		},
		Classifier: ClassifierConfig{
			Provider:    strings.ToLower(getConfigValue(*provider, "CLASSIFIER_PROVIDER", ProviderNone)),
			APIKey:      getConfigValue("", "GEMINI_API_KEY", ""),
			Model:       getConfigValue(*model, "GEMINI_MODEL", "gemini-2.5-flash"),
			ChunkSize:   getIntConfigValue(*chunkSize, "CLASSIFIER_CHUNK_SIZE", DefaultChunkSize),
			Concurrency: getIntConfigValue(*concurrency, "CLASSIFIER_CONCURRENCY", 4),
			RPS:         getFloatConfigValue(*rps, "CLASSIFIER_RPS", 2),
			Burst:       getIntConfigValue(*burst, "CLASSIFIER_BURST", 2),
			CachePath:   getConfigValue(*cachePath, "CLASSIFIER_CACHE_PATH", ""),
		},
	}

	var err error
	cfg.Classifier.Timeout, err = getDurationConfigValue(*timeout, "CLASSIFIER_TIMEOUT", "60s")
	if err != nil {
		return nil, nil, err
	}
	cfg.Classifier.CacheTTL, err = getDurationConfigValue(*cacheTTL, "CLASSIFIER_CACHE_TTL", "24h")
	if err != nil {
		return nil, nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, fs.Args(), nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Store.Path == "" {
		return errors.New("store path cannot be empty after expansion")
	}

	cc := c.Classifier
	switch cc.Provider {
	case ProviderNone:
	case ProviderGemini:
		if cc.APIKey == "" {
			return errors.New("GEMINI_API_KEY is required when the classifier provider is gemini")
		}
	default:
		return fmt.Errorf("invalid classifier provider: %q (must be gemini or none)", cc.Provider)
	}

	if cc.ChunkSize < MinChunkSize || cc.ChunkSize > MaxChunkSize {
		return fmt.Errorf("classifier chunk size %d out of range [%d, %d]", cc.ChunkSize, MinChunkSize, MaxChunkSize)
	}
	if cc.Concurrency < 1 {
		return fmt.Errorf("classifier concurrency must be at least 1, got %d", cc.Concurrency)
	}
	if cc.RPS < 0 {
		return fmt.Errorf("classifier rps cannot be negative, got %v", cc.RPS)
	}
	if cc.Timeout <= 0 {
		return errors.New("classifier timeout must be positive")
	}

	return nil
}

// expandPath expands ~ and makes path absolute. Empty returns defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	c.Store.Path, err = expandPath(c.Store.Path, filepath.Join(homeDir, ".tagengine", "tags.db"))
	if err != nil {
		return fmt.Errorf("invalid store path: %w", err)
	}

	if c.Classifier.CachePath != "" {
		c.Classifier.CachePath, err = expandPath(c.Classifier.CachePath, "")
		if err != nil {
			return fmt.Errorf("invalid cache path: %w", err)
		}
	}
	return nil
}

// getConfigValue returns the flag value, then env var, then default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, s, err)
	}
	return d, nil
}

// loadEnvFile loads KEY=value lines into the environment.
// Variables already set are left alone.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
