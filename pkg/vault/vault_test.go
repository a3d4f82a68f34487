package vault

import (
	"os"
	"path/filepath"
	"testing"
)

func TestVault_GetExportPath(t *testing.T) {
	v := &Vault{
		ExportsPath: "/test/assetctl/exports",
	}

	tests := []struct {
		name     string
		filename string
		expected string
	}{
		{"chart file", "metrics.html", "/test/assetctl/exports/metrics.html"},
		{"dated chart", "20240101-metrics.html", "/test/assetctl/exports/20240101-metrics.html"},
		{"nested", "charts/status.html", "/test/assetctl/exports/charts/status.html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.GetExportPath(tt.filename)
			if result != tt.expected {
				t.Errorf("GetExportPath(%q) = %q, want %q", tt.filename, result, tt.expected)
			}
		})
	}
}

func TestVault_SessionAndLogPaths(t *testing.T) {
	v := &Vault{
		RootPath: "/data/assetctl",
		LogsPath: "/data/assetctl/logs",
	}

	if got := v.SessionPath(); got != filepath.Join("/data/assetctl", "session.json") {
		t.Errorf("SessionPath() = %q", got)
	}
	if got := v.LogPath(); got != filepath.Join("/data/assetctl/logs", "assetctl.log") {
		t.Errorf("LogPath() = %q", got)
	}
}

func TestNew_UsesXDGDirectories(t *testing.T) {
	dataHome := t.TempDir()
	configHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", configHome)

	v, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if v.RootPath != filepath.Join(dataHome, "assetctl") {
		t.Errorf("RootPath = %q", v.RootPath)
	}
	if v.ConfigPath != filepath.Join(configHome, "assetctl", "config.yaml") {
		t.Errorf("ConfigPath = %q", v.ConfigPath)
	}
}

func TestVault_InitializeAndClean(t *testing.T) {
	root := filepath.Join(t.TempDir(), "assetctl")
	v := &Vault{
		RootPath:    root,
		ExportsPath: filepath.Join(root, "exports"),
		LogsPath:    filepath.Join(root, "logs"),
	}

	if v.Exists() {
		t.Fatal("Exists() should be false before Initialize")
	}
	if err := v.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if !v.Exists() {
		t.Fatal("Exists() should be true after Initialize")
	}

	chart := v.GetExportPath("metrics.html")
	if err := os.WriteFile(chart, []byte("<html></html>"), 0600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	if err := v.CleanExports(); err != nil {
		t.Fatalf("CleanExports() failed: %v", err)
	}
	entries, err := os.ReadDir(v.ExportsPath)
	if err != nil {
		t.Fatalf("read exports: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty exports directory, got %d entries", len(entries))
	}
}
