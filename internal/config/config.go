// Package config loads the pinvault configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/crypto"
)

const (
	VaultFile = "vault.db"
	LockFile  = "vault.lock"

	DefaultLogLevel    = "warn"
	DefaultLockTimeout = 5 // seconds
)

// Config holds the pinvault configuration
type Config struct {
	DataDir            string `json:"data_dir,omitempty"`
	CapacityBytes      int64  `json:"capacity_bytes,omitempty"`
	PinHash            string `json:"pin_hash,omitempty"`
	LogLevel           string `json:"log_level,omitempty"`
	LogFile            string `json:"log_file,omitempty"`
	UseKeyring         bool   `json:"use_keyring,omitempty"`
	LockTimeoutSeconds int    `json:"lock_timeout_seconds,omitempty"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads config from path, or from the XDG path when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = DataDir()
	}
	if c.PinHash == "" {
		c.PinHash = crypto.SchemeSHA256
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LockTimeoutSeconds == 0 {
		c.LockTimeoutSeconds = DefaultLockTimeout
	}
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	if c.CapacityBytes < 0 {
		return fmt.Errorf("invalid capacity_bytes: %d", c.CapacityBytes)
	}
	if c.LockTimeoutSeconds < 0 {
		return fmt.Errorf("invalid lock_timeout_seconds: %d", c.LockTimeoutSeconds)
	}
	if _, err := crypto.NewHasher(c.PinHash); err != nil {
		return fmt.Errorf("invalid pin_hash: %w", err)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// VaultPath returns the bbolt file holding the file store
func (c *Config) VaultPath() string {
	return filepath.Join(c.DataDir, VaultFile)
}

// LockPath returns the session lock file
func (c *Config) LockPath() string {
	return filepath.Join(c.DataDir, LockFile)
}

// LockTimeout bounds waits for the vault and session locks
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.LockTimeoutSeconds) * time.Second
}
