package cmd

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/console"
	"github.com/illarion/pinvault/internal/keyring"
	"github.com/illarion/pinvault/internal/session"
)

// Run serves an interactive session on stdin/stdout until end of input
func Run(ctx context.Context, opts Options) {
	cfg, err := LoadConfig(opts)
	if err != nil {
		HandleError(err)
	}

	// One session per vault
	lock := flock.New(cfg.LockPath())
	lockCtx, cancel := context.WithTimeout(ctx, cfg.LockTimeout())
	locked, err := lock.TryLockContext(lockCtx, 100*time.Millisecond)
	cancel()
	if err != nil || !locked {
		HandleError(ErrSessionActive)
	}
	defer lock.Unlock()

	vault, err := OpenVault(cfg)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()
	log := vault.Logger.Log

	d := session.New(vault.Gate, vault.Store, log)
	if cfg.UseKeyring && d.Session().PinConfigured {
		if vaultID, err := vault.Storage.GetVaultID(); err == nil {
			pin, err := keyring.GetPIN(vaultID)
			switch {
			case errors.Is(err, keyring.ErrUnavailable):
				log.Warn("cannot read PIN from keyring", zap.Error(err))
			case err != nil:
				log.Debug("no PIN in keyring")
			case d.Authenticate(pin):
				log.Info("authenticated with PIN from keyring")
			default:
				log.Warn("stale PIN in keyring")
			}
		}
	}

	in := console.New(os.Stdin, os.Stdout)
	defer in.Restore()
	if !in.IsTerminal() {
		log.Debug("input is not a terminal, PIN and secrets are echoed by the sender")
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx, in, os.Stdout) }()

	select {
	case err = <-done:
	case <-ctx.Done():
		// A blocked terminal read survives closing stdin, so it is left behind
		log.Info("session interrupted")
		err = ctx.Err()
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("session ended", zap.Error(err))
		HandleError(err)
	}
}
