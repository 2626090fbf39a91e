package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"saxiib/internal/store"
)

// ConfigFile is the name of the optional config file inside the home directory.
const ConfigFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home        string `yaml:"-"`            // data directory, e.g. $HOME/.saxiib
	RelayURL    string `yaml:"relay"`        // relay base URL, e.g. http://127.0.0.1:8080
	Store       string `yaml:"store"`        // file, badger or memory
	LogLevel    string `yaml:"log_level"`    // logrus level name
	MetricsAddr string `yaml:"metrics_addr"` // listen address for /metrics; empty disables
	Passphrase  string `yaml:"-"`            // seals the identity at rest when set
}

// DefaultConfig returns the settings used when neither file nor flags say otherwise.
func DefaultConfig(home string) Config {
	return Config{
		Home:     home,
		RelayURL: "http://127.0.0.1:8080",
		Store:    store.BackendFile,
		LogLevel: "info",
	}
}

// DefaultHome returns ~/.saxiib.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".saxiib"), nil
}

// LoadConfigFile overlays the YAML file at path onto cfg. A missing file
// leaves cfg unchanged.
func LoadConfigFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Validate checks cfg for values the wiring cannot work with.
func (c Config) Validate() error {
	if c.Home == "" {
		return errors.New("home directory not set")
	}
	switch c.Store {
	case store.BackendFile, store.BackendBadger, store.BackendMemory:
	default:
		return fmt.Errorf("unknown store %q (want file, badger or memory)", c.Store)
	}
	return nil
}

// DataDir is where the storage backend keeps its files.
func (c Config) DataDir() string { return filepath.Join(c.Home, "data") }
