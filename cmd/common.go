package cmd

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/config"
	"github.com/illarion/pinvault/internal/core"
	"github.com/illarion/pinvault/internal/crypto"
	"github.com/illarion/pinvault/internal/keyring"
	"github.com/illarion/pinvault/internal/logging"
	"github.com/illarion/pinvault/internal/storage"
)

var (
	ErrSessionActive = errors.New("another pinvault session is running")
	ErrNoPin         = errors.New("no PIN configured")
	ErrWrongPin      = errors.New("wrong PIN")
)

// Options are the flags shared by every command
type Options struct {
	ConfigPath string
	DataDir    string
}

// Vault bundles everything a command needs
type Vault struct {
	Config  *config.Config
	Logger  *logging.Logger
	Storage *storage.Storage
	Gate    *core.Gate
	Store   *core.Store
}

// LoadConfig reads the config file and applies flag overrides
func LoadConfig(opts Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return cfg, nil
}

// OpenVault sets up logging and opens the file store. An unavailable
// file store is the only fatal startup condition.
func OpenVault(cfg *config.Config) (*Vault, error) {
	logger := logging.New()
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, err
	}
	log := logger.Log

	hasher, err := crypto.NewHasher(cfg.PinHash)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.VaultPath(), storage.Options{
		Capacity: cfg.CapacityBytes,
		Timeout:  cfg.LockTimeout(),
	})
	if err != nil {
		log.Error("cannot open file store", zap.String("path", cfg.VaultPath()), zap.Error(err))
		return nil, err
	}
	log.Debug("file store opened", zap.String("path", db.Path()))

	return &Vault{
		Config:  cfg,
		Logger:  logger,
		Storage: db,
		Gate:    core.NewGate(db, hasher, log),
		Store:   core.NewStore(db, log),
	}, nil
}

// Open loads the configuration and opens the vault
func Open(opts Options) (*Vault, error) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		return nil, err
	}
	return OpenVault(cfg)
}

// Close releases the file store and flushes logs
func (v *Vault) Close() error {
	_ = v.Logger.Log.Sync()
	return v.Storage.Close()
}

// errorMessage renders an error with an optional hint line
func errorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrInUse):
		return "Error: vault is in use by another process\nClose the other pinvault session and retry\n"
	case errors.Is(err, ErrSessionActive):
		return "Error: another pinvault session is running\n"
	case errors.Is(err, ErrNoPin):
		return "Error: no PIN configured\nRun 'pinvault' to create one\n"
	case errors.Is(err, ErrWrongPin):
		return "Error: wrong PIN\n"
	case errors.Is(err, keyring.ErrUnavailable):
		return fmt.Sprintf("Error: %s\nIs a secret service or keychain running?\n", err)
	default:
		return fmt.Sprintf("Error: %s\n", err)
	}
}

// HandleError prints err and exits
func HandleError(err error) {
	fmt.Fprint(os.Stderr, errorMessage(err))
	os.Exit(1)
}
