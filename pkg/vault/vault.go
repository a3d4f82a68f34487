package vault

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "assetctl"

// Vault represents the local directories assetctl keeps state in
type Vault struct {
	RootPath    string
	ExportsPath string
	LogsPath    string
	ConfigPath  string
}

// New creates a new Vault instance with XDG-compliant paths
func New() (*Vault, error) {
	rootPath, rootErr := getVaultRoot()
	configPath, configErr := getConfigPath()
	if rootErr != nil {
		return nil, fmt.Errorf("failed to determine data directory: %w", rootErr)
	}
	if configErr != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", configErr)
	}

	return &Vault{
		RootPath:    rootPath,
		ExportsPath: filepath.Join(rootPath, "exports"),
		LogsPath:    filepath.Join(rootPath, "logs"),
		ConfigPath:  configPath,
	}, nil
}

// getVaultRoot returns the data directory path
// Follows XDG Base Directory specification on Unix and uses AppData on Windows
func getVaultRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	return filepath.Join(homeDir, ".local", "share", appName), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", "config.yaml"), nil
	}

	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// Initialize creates the directory structure if it doesn't exist
func (v *Vault) Initialize() error {
	directories := []string{
		v.RootPath,
		v.ExportsPath,
		v.LogsPath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// Exists checks if the data directory has been created
func (v *Vault) Exists() bool {
	info, err := os.Stat(v.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// SessionPath returns the file the login session is persisted to
func (v *Vault) SessionPath() string {
	return filepath.Join(v.RootPath, "session.json")
}

// LogPath returns the default log file
func (v *Vault) LogPath() string {
	return filepath.Join(v.LogsPath, appName+".log")
}

// GetExportPath returns the full path for an exported file
func (v *Vault) GetExportPath(filename string) string {
	return filepath.Join(v.ExportsPath, filename)
}

// CleanExports removes all files in the exports directory
func (v *Vault) CleanExports() error {
	entries, err := os.ReadDir(v.ExportsPath)
	if err != nil {
		return fmt.Errorf("failed to read exports directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(v.ExportsPath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	return nil
}
