// Package config handles repository configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config represents repository configuration stored in .papergraph/config.json.
type Config struct {
	ListenAddr      string `json:"listen_addr,omitempty"`       // Address for pgraph serve
	LogMode         string `json:"log_mode,omitempty"`          // dev or prod
	MaxPDFPages     int    `json:"max_pdf_pages,omitempty"`     // Pages read per PDF
	ArxivMaxResults int    `json:"arxiv_max_results,omitempty"` // Default result count for arxiv search
}

const (
	PapergraphDir = ".papergraph"
	ConfigFile    = "config.json"
	PapersFile    = "papers.jsonl"
	CacheDir      = "cache"
	DBFile        = "papers.db"
)

const (
	DefaultListenAddr      = "127.0.0.1:8080"
	DefaultLogMode         = "prod"
	DefaultMaxPDFPages     = 20
	DefaultArxivMaxResults = 10

	// MaxArxivResults is the largest page size the arXiv API accepts.
	MaxArxivResults = 2000
)

// Environment variables that override the repository config.
const (
	EnvListenAddr = "PGRAPH_LISTEN_ADDR"
	EnvLogMode    = "PGRAPH_LOG_MODE"
)

// ValidLogModes lists the supported log_mode values.
var ValidLogModes = []string{"dev", "prod"}

// Keys lists the settable configuration keys in display order.
var Keys = []string{"listen-addr", "log-mode", "max-pdf-pages", "arxiv-max-results"}

// ErrNotRepository is returned when no .papergraph directory is found.
var ErrNotRepository = errors.New("not in a papergraph repository (no .papergraph directory found)")

// ErrUnknownKey is returned by Get and Set for keys outside Keys.
var ErrUnknownKey = errors.New("unknown configuration key")

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		ListenAddr:      DefaultListenAddr,
		LogMode:         DefaultLogMode,
		MaxPDFPages:     DefaultMaxPDFPages,
		ArxivMaxResults: DefaultArxivMaxResults,
	}
}

// PapergraphPath returns the path to the .papergraph directory from a root path.
func PapergraphPath(root string) string {
	return filepath.Join(root, PapergraphDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, PapergraphDir, ConfigFile)
}

// PapersPath returns the path to papers.jsonl from a root path.
func PapersPath(root string) string {
	return filepath.Join(root, PapergraphDir, PapersFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, PapergraphDir, CacheDir)
}

// DBPath returns the path to papers.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, PapergraphDir, CacheDir, DBFile)
}

// IsRepository checks if the given path contains a papergraph repository.
func IsRepository(root string) bool {
	info, err := os.Stat(PapergraphPath(root))
	return err == nil && info.IsDir()
}

// FindRepository walks up from the given path to find a papergraph repository.
func FindRepository(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsRepository(abs) {
			return abs, nil
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", ErrNotRepository
		}
		abs = parent
	}
}

// Load reads config.json under root. Missing fields take their defaults.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.fillDefaults()
	return cfg, nil
}

// Save writes the config to config.json under root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(ConfigPath(root), append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from PGRAPH_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvListenAddr)); v != "" {
		c.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogMode)); v != "" {
		c.LogMode = v
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.LogMode == "" {
		c.LogMode = d.LogMode
	}
	if c.MaxPDFPages == 0 {
		c.MaxPDFPages = d.MaxPDFPages
	}
	if c.ArxivMaxResults == 0 {
		c.ArxivMaxResults = d.ArxivMaxResults
	}
}

// Validate checks every field.
func (c *Config) Validate() error {
	if err := ValidateListenAddr(c.ListenAddr); err != nil {
		return err
	}
	if err := ValidateLogMode(c.LogMode); err != nil {
		return err
	}
	if c.MaxPDFPages < 1 {
		return fmt.Errorf("max_pdf_pages must be >= 1, got %d", c.MaxPDFPages)
	}
	if c.ArxivMaxResults < 1 || c.ArxivMaxResults > MaxArxivResults {
		return fmt.Errorf("arxiv_max_results must be between 1 and %d, got %d", MaxArxivResults, c.ArxivMaxResults)
	}
	return nil
}

// ValidateListenAddr checks that addr is a host:port pair.
func ValidateListenAddr(addr string) error {
	if _, port, err := net.SplitHostPort(addr); err != nil || port == "" {
		return fmt.Errorf("invalid listen address %q (expected host:port)", addr)
	}
	return nil
}

// ValidateLogMode checks that mode is one of ValidLogModes.
func ValidateLogMode(mode string) error {
	for _, m := range ValidLogModes {
		if mode == m {
			return nil
		}
	}
	return fmt.Errorf("invalid log mode %q (valid: %s)", mode, strings.Join(ValidLogModes, ", "))
}

// NormalizeKey converts key formats (log_mode, LOG-MODE) to the form used in Keys.
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "_", "-")
}

// Get returns the value of key as a string.
func (c *Config) Get(key string) (string, error) {
	switch NormalizeKey(key) {
	case "listen-addr":
		return c.ListenAddr, nil
	case "log-mode":
		return c.LogMode, nil
	case "max-pdf-pages":
		return strconv.Itoa(c.MaxPDFPages), nil
	case "arxiv-max-results":
		return strconv.Itoa(c.ArxivMaxResults), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses and validates value, then assigns it to key.
func (c *Config) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch NormalizeKey(key) {
	case "listen-addr":
		if err := ValidateListenAddr(value); err != nil {
			return err
		}
		c.ListenAddr = value
	case "log-mode":
		if err := ValidateLogMode(value); err != nil {
			return err
		}
		c.LogMode = value
	case "max-pdf-pages":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("max-pdf-pages must be a positive integer, got %q", value)
		}
		c.MaxPDFPages = n
	case "arxiv-max-results":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 || n > MaxArxivResults {
			return fmt.Errorf("arxiv-max-results must be an integer between 1 and %d, got %q", MaxArxivResults, value)
		}
		c.ArxivMaxResults = n
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
