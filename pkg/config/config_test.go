package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix) {
			name := strings.SplitN(kv, "=", 2)[0]
			t.Setenv(name, "")
			os.Unsetenv(name)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg == nil {
		t.Fatal("DefaultConfig() returned nil")
	}

	if cfg.APIURL != "http://localhost:5000/api" {
		t.Errorf("expected default APIURL, got %q", cfg.APIURL)
	}

	if cfg.PollIntervalSeconds != 30 {
		t.Errorf("expected default PollIntervalSeconds=30, got %d", cfg.PollIntervalSeconds)
	}

	if cfg.PageSize != 10 {
		t.Errorf("expected default PageSize=10, got %d", cfg.PageSize)
	}

	if len(cfg.Bases) != 4 {
		t.Errorf("expected 4 default bases, got %d", len(cfg.Bases))
	}
}

func TestLoad_NonExistentFile(t *testing.T) {
	clearEnv(t)

	// Loading a non-existent file should return default config
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error loading non-existent file: %v", err)
	}

	if cfg.APIURL != DefaultAPIURL {
		t.Errorf("expected default APIURL, got %q", cfg.APIURL)
	}

	if cfg.TimeoutSeconds != 20 {
		t.Errorf("expected default TimeoutSeconds=20, got %d", cfg.TimeoutSeconds)
	}
}

func TestSave_And_Load(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := &Config{
		APIURL:              "https://assets.example.com/api",
		TimeoutSeconds:      5,
		PollIntervalSeconds: 60,
		PageSize:            25,
		Bases:               []string{"North", "South"},
		LogLevel:            "debug",
	}

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loaded.APIURL != cfg.APIURL {
		t.Errorf("APIURL: expected %q, got %q", cfg.APIURL, loaded.APIURL)
	}
	if loaded.PollIntervalSeconds != 60 {
		t.Errorf("PollIntervalSeconds: expected 60, got %d", loaded.PollIntervalSeconds)
	}
	if loaded.PageSize != 25 {
		t.Errorf("PageSize: expected 25, got %d", loaded.PageSize)
	}
	if strings.Join(loaded.Bases, ",") != "North,South" {
		t.Errorf("Bases: expected North,South, got %v", loaded.Bases)
	}
	if loaded.LogLevel != "debug" {
		t.Errorf("LogLevel: expected debug, got %q", loaded.LogLevel)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `api_url: "http://backend:5000/api/"
timeout_seconds: 0
page_size: 7
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.APIURL != "http://backend:5000/api" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.APIURL)
	}
	if cfg.TimeoutSeconds != 20 {
		t.Errorf("expected default TimeoutSeconds=20 for zero value, got %d", cfg.TimeoutSeconds)
	}
	if cfg.PageSize != 10 {
		t.Errorf("expected PageSize=10 for unsupported size, got %d", cfg.PageSize)
	}
	if cfg.PollIntervalSeconds != 30 {
		t.Errorf("expected default PollIntervalSeconds=30, got %d", cfg.PollIntervalSeconds)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("api_url: http://file/api\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	t.Setenv("ASSETCTL_API_URL", "http://env/api")
	t.Setenv("ASSETCTL_TIMEOUT_SECONDS", "9")
	t.Setenv("ASSETCTL_BASES", "Alpha Base,Zulu Base")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.APIURL != "http://env/api" {
		t.Errorf("expected env APIURL, got %q", cfg.APIURL)
	}
	if cfg.TimeoutSeconds != 9 {
		t.Errorf("expected TimeoutSeconds=9, got %d", cfg.TimeoutSeconds)
	}
	if strings.Join(cfg.Bases, "|") != "Alpha Base|Zulu Base" {
		t.Errorf("expected env bases, got %v", cfg.Bases)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	clearEnv(t)
	t.Setenv("ASSETCTL_TIMEOUT_SECONDS", "soon")

	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for non-numeric timeout, got nil")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("ASSETCTL_LOG_LEVEL=warn\n"), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("ASSETCTL_LOG_LEVEL") })

	n, err := LoadDotEnv(filepath.Join(dir, "missing.env"), envFile)
	if err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 file loaded, got %d", n)
	}

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected LogLevel=warn from .env, got %q", cfg.LogLevel)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `api_url: http://x
bases: [invalid yaml structure
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Fatal("expected error loading invalid YAML, got nil")
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "dir", "config.yaml")

	if err := DefaultConfig().Save(configPath); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}
}

func TestPageSize_ValidValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
	}{
		{"five", "5", 5},
		{"ten", "10", 10},
		{"twenty five", "25", 25},
		{"unsupported defaults to ten", "50", 10},
		{"negative defaults to ten", "-1", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(configPath, []byte("page_size: "+tt.value+"\n"), 0644); err != nil {
				t.Fatalf("failed to create test config file: %v", err)
			}

			cfg, err := Load(configPath)
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if cfg.PageSize != tt.expected {
				t.Errorf("PageSize: expected %d, got %d", tt.expected, cfg.PageSize)
			}
		})
	}
}
