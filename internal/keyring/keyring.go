// Package keyring remembers vault PINs in the OS keyring, keyed by vault ID.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const serviceName = "pinvault"

// ErrNotStored means the keyring holds no PIN for the vault
var ErrNotStored = errors.New("no PIN stored in keyring")

// ErrUnavailable wraps keyring backend failures, e.g. no secret service
var ErrUnavailable = errors.New("keyring unavailable")

// classify separates a missing entry from a broken backend
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return ErrNotStored
	default:
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

// SavePIN stores the PIN of a vault
func SavePIN(vaultID string, pin string) error {
	return classify(keyring.Set(serviceName, vaultID, pin))
}

// GetPIN retrieves the PIN of a vault. A missing entry is ErrNotStored.
func GetPIN(vaultID string) (string, error) {
	pin, err := keyring.Get(serviceName, vaultID)
	if err != nil {
		return "", classify(err)
	}
	return pin, nil
}

// DeletePIN removes the PIN of a vault. A missing entry is ErrNotStored.
func DeletePIN(vaultID string) error {
	return classify(keyring.Delete(serviceName, vaultID))
}

// HasPIN reports whether a PIN is stored. An unreachable keyring is an
// error, not a missing PIN.
func HasPIN(vaultID string) (bool, error) {
	_, err := GetPIN(vaultID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotStored):
		return false, nil
	default:
		return false, err
	}
}
