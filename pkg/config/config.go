package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings read from config.toml.
type Config struct {
	APIURL   string
	DataDir  string
	Timeout  time.Duration
	PageSize int
}

const (
	defaultConfigPath = "~/.config/novels/config.toml"
	defaultDataDir    = "~/.local/share/novels"
	defaultAPIURL     = "http://localhost:8000/api/v1"
	defaultTimeout    = 15 * time.Second
	defaultPageSize   = 12

	// EnvAPIURL overrides api_url from the file.
	EnvAPIURL = "NOVELS_API_URL"
)

func Default() Config {
	return Config{
		APIURL:   defaultAPIURL,
		DataDir:  MustExpand(defaultDataDir),
		Timeout:  defaultTimeout,
		PageSize: defaultPageSize,
	}
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return defaultConfigPath
}

// Load parses the config file at path, falling back to defaults when it is
// missing. NOVELS_API_URL wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		DataDir        string `toml:"data_dir"`
		TimeoutSeconds int    `toml:"timeout_seconds"`
		PageSize       int    `toml:"page_size"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.DataDir); v != "" {
		cfg.DataDir = MustExpand(v)
	}
	if raw.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSeconds) * time.Second
	}
	if raw.PageSize > 0 {
		cfg.PageSize = min(raw.PageSize, 100)
	}

	return applyEnv(cfg), nil
}

func applyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		cfg.APIURL = v
	}
	return cfg
}

// DatabasePath is where the token store lives.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "novels.db")
}

// LogPath is where the client writes its log.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "novels.log")
}

// ExportDir is the default destination for EPUB exports.
func (c Config) ExportDir() string {
	return filepath.Join(c.DataDir, "exports")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func MustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
