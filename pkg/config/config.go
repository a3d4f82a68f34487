package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/assetctl/internal/core/domain"
)

// DefaultAPIURL is the backend root used when nothing is configured
const DefaultAPIURL = "http://localhost:5000/api"

type Config struct {
	// Backend
	APIURL         string `yaml:"api_url" env:"API_URL"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"TIMEOUT_SECONDS"`

	// Dashboard
	PollIntervalSeconds int `yaml:"poll_interval_seconds" env:"POLL_INTERVAL_SECONDS"`

	// Lists
	PageSize int      `yaml:"page_size" env:"PAGE_SIZE"`
	Bases    []string `yaml:"bases" env:"BASES" envSeparator:","`

	// UI Settings
	ColorTheme string `yaml:"color_theme" env:"COLOR_THEME"`

	// Logging
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFile  string `yaml:"log_file" env:"LOG_FILE"`

	// Access control
	PolicyPath string `yaml:"policy_path" env:"POLICY_PATH"`
}

// EnvPrefix prefixes every environment override, e.g. ASSETCTL_API_URL
const EnvPrefix = "ASSETCTL_"

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		APIURL:              DefaultAPIURL,
		TimeoutSeconds:      20,
		PollIntervalSeconds: 30,
		PageSize:            10,
		Bases:               append([]string(nil), domain.DefaultBases...),
		ColorTheme:          "auto",
		LogLevel:            "info",
		LogFile:             "",
		PolicyPath:          "",
	}
}

// Load reads configuration from the specified file path, then applies
// environment overrides
func Load(path string) (*Config, error) {
	// Start with default config
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		// If file doesn't exist, keep the defaults (not an error)
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// LoadDotEnv loads the given .env files that exist into the process
// environment. Variables already set are not overwritten.
func LoadDotEnv(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func applyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	return nil
}

// applyDefaults fills essential values that are missing or invalid
func (c *Config) applyDefaults() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		c.APIURL = DefaultAPIURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 20
	}
	if c.PollIntervalSeconds <= 0 {
		c.PollIntervalSeconds = 30
	}
	if !isValidPageSize(c.PageSize) {
		c.PageSize = 10
	}
	if len(c.Bases) == 0 {
		c.Bases = append([]string(nil), domain.DefaultBases...)
	}
	if c.ColorTheme == "" {
		c.ColorTheme = "auto"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Save persists the current configuration to the specified file path
func (c *Config) Save(path string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// isValidPageSize checks the page size is one the list views offer
func isValidPageSize(size int) bool {
	for _, valid := range []int{5, 10, 25} {
		if size == valid {
			return true
		}
	}
	return false
}
