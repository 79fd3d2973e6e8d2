package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/illarion/pinvault/internal/console"
	"github.com/illarion/pinvault/internal/keyring"
)

// KeyringSave saves the PIN to the OS keyring
func KeyringSave(opts Options) {
	vault, err := Open(opts)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()

	if !vault.Gate.IsPinSet() {
		HandleError(ErrNoPin)
	}

	// Prompt for PIN
	pin, err := console.New(os.Stdin, os.Stdout).ReadPIN("Enter PIN: ")
	if err != nil {
		HandleError(err)
	}

	// Verify PIN is correct
	if !vault.Gate.VerifyPin(pin) {
		HandleError(ErrWrongPin)
	}

	// Get vault ID (create if not exists)
	vaultID, err := vault.Storage.GetOrCreateVaultID()
	if err != nil {
		HandleError(err)
	}

	// Save to keyring
	if err := keyring.SavePIN(vaultID, pin); err != nil {
		HandleError(fmt.Errorf("failed to save to keyring: %w", err))
	}

	fmt.Println("PIN saved to keyring")
	if !vault.Config.UseKeyring {
		fmt.Println("Set use_keyring in the config file to unlock sessions with it")
	}
}

// KeyringDelete removes the PIN from the OS keyring
func KeyringDelete(opts Options) {
	vault, err := Open(opts)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()

	// Get vault ID
	vaultID, err := vault.Storage.GetVaultID()
	if err != nil {
		fmt.Println("No PIN stored in keyring")
		return
	}

	// Delete from keyring
	err = keyring.DeletePIN(vaultID)
	if errors.Is(err, keyring.ErrNotStored) {
		fmt.Println("No PIN stored in keyring")
		return
	}
	if err != nil {
		HandleError(err)
	}

	fmt.Println("PIN removed from keyring")
}

// KeyringStatus checks if a PIN is stored in the keyring
func KeyringStatus(opts Options) {
	vault, err := Open(opts)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()

	// Get vault ID
	vaultID, err := vault.Storage.GetVaultID()
	if err != nil {
		fmt.Println("PIN: not stored")
		return
	}

	ok, err := keyring.HasPIN(vaultID)
	if err != nil {
		HandleError(err)
	}
	if ok {
		fmt.Println("PIN: stored in keyring")
	} else {
		fmt.Println("PIN: not stored")
	}
}
