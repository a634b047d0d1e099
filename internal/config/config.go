package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// storage backends for the persisted session
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Storage selects where the session keys are persisted.
type Storage struct {
	Backend       string `toml:"backend"`
	Path          string `toml:"path"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`
}

// Server configures the HTTP editing service.
type Server struct {
	Bind               string `toml:"bind"`
	RateLimitRequests  int    `toml:"rate_limit_requests"`
	RateLimitWindowSec int    `toml:"rate_limit_window_seconds"`
	Watch              bool   `toml:"watch"`
}

// Playback configures the clock driven player.
type Playback struct {
	ProgressIntervalMS int     `toml:"progress_interval_ms"`
	SkipSeconds        float64 `toml:"skip_seconds"`
}

// Translate holds LLM translation defaults.
type Translate struct {
	Provider        string `toml:"provider"`
	Model           string `toml:"model"`
	TargetLanguage  string `toml:"target_language"`
	Prompt          string `toml:"prompt"`
	BatchSize       int    `toml:"batch_size"`
	Concurrency     int    `toml:"concurrency"`
	GeminiAPIKey    string `toml:"gemini_api_key"`
	OpenAIAPIKey    string `toml:"openai_api_key"`
	AnthropicAPIKey string `toml:"anthropic_api_key"`
}

// Export holds subtitle export defaults.
type Export struct {
	Format string `toml:"format"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level string `toml:"level"`
}

// Config encapsulates all configuration values for captioner.
type Config struct {
	Storage   Storage   `toml:"storage"`
	Server    Server    `toml:"server"`
	Playback  Playback  `toml:"playback"`
	Translate Translate `toml:"translate"`
	Export    Export    `toml:"export"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/captioner/config.toml")
}

// Load locates, parses, and validates a configuration file. A missing file
// is not an error; defaults are returned with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env := os.Getenv("CAPTIONER_CONFIG"); env != "" {
			path = env
		}
	}
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", false, err
		}
		path = defaultPath
	}

	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %q is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	if c.Storage.Backend != BackendRedis && c.Storage.Backend != BackendMemory {
		if strings.TrimSpace(c.Storage.Path) == "" {
			c.Storage.Path = defaultPathFor(c.Storage.Backend)
		}
		expanded, err := expandPath(c.Storage.Path)
		if err != nil {
			return err
		}
		c.Storage.Path = expanded
	}

	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	if c.Translate.GeminiAPIKey == "" {
		c.Translate.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Translate.OpenAIAPIKey == "" {
		c.Translate.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Translate.AnthropicAPIKey == "" {
		c.Translate.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	c.Export.Format = strings.ToLower(strings.TrimSpace(c.Export.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func defaultPathFor(backend string) string {
	switch backend {
	case BackendSQLite:
		return "~/.local/share/captioner/session.db"
	case BackendBadger:
		return "~/.local/share/captioner/badger"
	default:
		return defaultStoragePath
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendBadger, BackendMemory:
	case BackendRedis:
		if strings.TrimSpace(c.Storage.RedisAddr) == "" {
			return errors.New("storage.redis_addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.Server.RateLimitRequests < 0 {
		return errors.New("server.rate_limit_requests must not be negative")
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindowSec <= 0 {
		return errors.New("server.rate_limit_window_seconds must be positive")
	}
	if c.Playback.ProgressIntervalMS <= 0 {
		return errors.New("playback.progress_interval_ms must be positive")
	}
	if c.Playback.SkipSeconds <= 0 {
		return errors.New("playback.skip_seconds must be positive")
	}
	switch c.Translate.Provider {
	case "gemini", "openai", "anthropic":
	default:
		return fmt.Errorf("unsupported translate provider %q", c.Translate.Provider)
	}
	if c.Translate.BatchSize < 0 || c.Translate.Concurrency < 0 {
		return errors.New("translate batch_size and concurrency must not be negative")
	}
	switch c.Export.Format {
	case "vtt", "srt", "ass":
	default:
		return fmt.Errorf("unsupported export format %q", c.Export.Format)
	}
	return nil
}

// ProgressInterval is the playback progress callback period.
func (c *Config) ProgressInterval() time.Duration {
	return time.Duration(c.Playback.ProgressIntervalMS) * time.Millisecond
}

// RateLimitWindow is the httprate sliding window.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowSec) * time.Second
}

// APIKey returns the configured key for a translation provider.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "gemini":
		return c.Translate.GeminiAPIKey
	case "openai":
		return c.Translate.OpenAIAPIKey
	case "anthropic":
		return c.Translate.AnthropicAPIKey
	}
	return ""
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
