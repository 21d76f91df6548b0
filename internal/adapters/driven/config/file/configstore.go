package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultBackendURL        = "http://localhost:8089/datasnap/rest/TServerMethods"
	DefaultProbeIntervalSecs = 30
	DefaultSyncIntervalSecs  = 300
	configFileName           = "config.toml"
	dataDirName              = "data"
)

// Config is the on-disk configuration of the CLI.
type Config struct {
	// BackendURL is the WME bridge URL.
	BackendURL string `toml:"backend_url"`

	// ProbeURL is probed for reachability. Defaults to BackendURL.
	ProbeURL string `toml:"probe_url"`

	// ProbeIntervalSeconds is the connectivity probe period.
	ProbeIntervalSeconds int `toml:"probe_interval_seconds"`

	// SyncIntervalSeconds is the auto-send cycle period in watch mode.
	SyncIntervalSeconds int `toml:"sync_interval_seconds"`

	// DataDir holds the local database. Defaults to <configDir>/data.
	DataDir string `toml:"data_dir"`
}

// ProbeInterval returns the probe period as a duration.
func (c Config) ProbeInterval() time.Duration {
	return time.Duration(c.ProbeIntervalSeconds) * time.Second
}

// SyncInterval returns the auto-send period as a duration.
func (c Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

// Store is a file-based configuration store using TOML.
// Configuration lives in a TOML file within the fieldbill config
// directory.
type Store struct {
	mu       sync.RWMutex
	filePath string
	config   Config
}

// NewStore creates a TOML-based config store.
// If configDir is empty, defaults to ~/.fieldbill/config.toml. A
// missing file yields the defaults without error.
func NewStore(configDir string) (*Store, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".fieldbill")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &Store{
		filePath: filepath.Join(configDir, configFileName),
		config:   defaults(configDir),
	}

	if err := s.Load(); err != nil {
		return nil, err
	}

	return s, nil
}

// Config returns a copy of the current configuration.
func (s *Store) Config() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Save normalises and persists the given configuration.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.config = normalise(cfg, filepath.Dir(s.filePath))

	data, err := toml.Marshal(s.config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// Restricted permissions; the file may carry internal endpoints.
	if err := os.WriteFile(s.filePath, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load reads the configuration from disk. A missing file resets to
// defaults.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	configDir := filepath.Dir(s.filePath)

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			s.config = defaults(configDir)
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var loaded Config
	if err := toml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("parse config %s: %w", s.filePath, err)
	}

	s.config = normalise(loaded, configDir)
	return nil
}

// Path returns the configuration file path.
func (s *Store) Path() string {
	return s.filePath
}

func defaults(configDir string) Config {
	return normalise(Config{}, configDir)
}

// normalise fills every empty field with its default.
func normalise(cfg Config, configDir string) Config {
	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	if cfg.ProbeURL == "" {
		cfg.ProbeURL = cfg.BackendURL
	}
	if cfg.ProbeIntervalSeconds <= 0 {
		cfg.ProbeIntervalSeconds = DefaultProbeIntervalSecs
	}
	if cfg.SyncIntervalSeconds <= 0 {
		cfg.SyncIntervalSeconds = DefaultSyncIntervalSecs
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(configDir, dataDirName)
	}
	return cfg
}
