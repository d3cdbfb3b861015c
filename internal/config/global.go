package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/pgraph/config.yml.
type GlobalConfig struct {
	LibraryPath string `yaml:"library_path,omitempty"`
	LogMode     string `yaml:"log_mode,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "pgraph"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

var (
	globalMu    sync.Mutex
	globalCache *GlobalConfig
)

// ErrLibraryPathNotExist is returned when library_path points at a missing repository.
var ErrLibraryPathNotExist = errors.New("library_path is not a papergraph repository")

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pgraph/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if globalCache != nil {
		return globalCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	if cfg.LibraryPath != "" {
		cfg.LibraryPath = ExpandPath(cfg.LibraryPath)
	}
	if cfg.LogMode != "" {
		if err := ValidateLogMode(cfg.LogMode); err != nil {
			return nil, fmt.Errorf("global config: %w", err)
		}
	}

	globalCache = &cfg
	return &cfg, nil
}

// SaveGlobalConfig writes cfg to the global config file and refreshes the cache.
func SaveGlobalConfig(cfg *GlobalConfig) error {
	path := GlobalConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine global config path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling global config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing global config: %w", err)
	}

	globalMu.Lock()
	globalCache = cfg
	globalMu.Unlock()
	return nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalMu.Lock()
	globalCache = nil
	globalMu.Unlock()
}

// GetLibraryPath returns the configured library path, or "" when unset.
func GetLibraryPath() string {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.LibraryPath
}

// ValidateLibraryPath returns the configured library path if it holds a repository.
func ValidateLibraryPath() (string, error) {
	path := GetLibraryPath()
	if path == "" {
		return "", nil
	}
	if !IsRepository(path) {
		return "", fmt.Errorf("%w: %s", ErrLibraryPathNotExist, path)
	}
	return path, nil
}

// LoadDotEnv loads .env files into the process environment.
// Missing files are ignored; variables already set are kept.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// HelpfulConfigMessage returns guidance for setting up the global config.
func HelpfulConfigMessage() string {
	return fmt.Sprintf(`To use a library from any directory, create %s with:

  library_path: ~/papers

Or run 'pgraph init' inside the directory that should hold your library.`, GlobalConfigPath())
}
