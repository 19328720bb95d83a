package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "toolproxy"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvBackendURL   = "OLLAMA_BASE_URL"
	EnvBackendToken = "OLLAMA_AUTH_TOKEN"
	EnvHost         = "TOOLPROXY_HOST"
	EnvPort         = "TOOLPROXY_PORT"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs     FileSystem
	getenv func(string) string
}

// NewLoader creates a production Loader using the real filesystem and environment
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}, getenv: os.Getenv}
}

// NewLoaderWithFS creates a Loader with a custom filesystem and environment (for testing)
func NewLoaderWithFS(fs FileSystem, getenv func(string) string) *Loader {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &Loader{fs: fs, getenv: getenv}
}

// Load reads configuration from path, or from ~/.config/toolproxy/config.json when path is empty,
// merges it over defaults and applies environment overrides.
// A missing default dotfile is not an error; a missing explicit path is.
//
// NOTE: Keys are unmarshalled directly over the default configuration so explicit zero values
// (0, false, "") in the file override defaults.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		homeDir, err := l.fs.UserHomeDir()
		if err == nil {
			path = filepath.Join(homeDir, ".config", ConfigDir, ConfigFile)
		}
	}

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case err == nil:
			if err := decode(path, data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// Use defaults if the dotfile doesn't exist
		default:
			return nil, err
		}
	}

	if err := l.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overlays environment variable overrides onto cfg.
func (l *Loader) ApplyEnv(cfg *Config) error {
	if v := l.getenv(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := l.getenv(EnvBackendToken); v != "" {
		cfg.Backend.AuthToken = v
	}
	if v := l.getenv(EnvHost); v != "" {
		cfg.Server.Host = v
	}
	if v := l.getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: invalid port %q: %w", EnvPort, v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	default:
		return json.Unmarshal(data, cfg)
	}
}
