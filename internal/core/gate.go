package core

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/crypto"
)

// Gate owns the PIN record
type Gate struct {
	files  FileStore
	hasher crypto.Hasher
	log    *zap.Logger
}

// NewGate creates a gate. New PINs are hashed with hasher; existing records
// of any supported scheme still verify.
func NewGate(files FileStore, hasher crypto.Hasher, log *zap.Logger) *Gate {
	if hasher == nil {
		hasher = crypto.SHA256Hasher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{files: files, hasher: hasher, log: log}
}

// IsPinSet reports whether a PIN record exists
func (g *Gate) IsPinSet() bool {
	ok, err := g.files.Exists(PinFile)
	if err != nil {
		g.log.Warn("cannot probe PIN record", zap.Error(err))
		return false
	}
	return ok
}

// CreatePin stores the digest of pin. It fails without touching the
// store if a PIN is already configured or the record cannot be written.
func (g *Gate) CreatePin(pin string) error {
	if g.IsPinSet() {
		return ErrPinAlreadySet
	}

	record, err := g.hasher.Hash(pin)
	if err != nil {
		return fmt.Errorf("failed to hash PIN: %w", err)
	}
	if err := g.files.Write(PinFile, []byte(record)); err != nil {
		g.log.Error("cannot write PIN record", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrIO, err)
	}

	g.log.Info("PIN created")
	return nil
}

// VerifyPin reports whether pin matches the stored record.
// A missing or unreadable record never verifies.
func (g *Gate) VerifyPin(pin string) bool {
	record, err := g.files.Read(PinFile)
	if err != nil {
		g.log.Debug("cannot read PIN record", zap.Error(err))
		return false
	}

	ok, err := crypto.Verify(pin, string(record))
	if err != nil {
		g.log.Warn("PIN record is malformed", zap.Error(err))
		return false
	}
	if !ok {
		g.log.Info("PIN verification failed")
	}
	return ok
}
