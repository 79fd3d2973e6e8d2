package cmd

import (
	"fmt"
	"time"

	"github.com/rodaine/table"

	"github.com/illarion/pinvault/internal/keyring"
)

// Status shows the vault state without asking for the PIN.
// Secret names are never shown here.
func Status(opts Options) {
	vault, err := Open(opts)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()

	usage, err := vault.Storage.Usage()
	if err != nil {
		HandleError(err)
	}

	pin := "not set"
	if vault.Gate.IsPinSet() {
		pin = "set"
	}

	stored := "not stored"
	if vaultID, err := vault.Storage.GetVaultID(); err == nil {
		stored = keyringState(vaultID)
	}

	tbl := table.New("Vault", "")
	tbl.AddRow("Path", vault.Storage.Path())
	tbl.AddRow("PIN", pin)
	tbl.AddRow("Keyring", stored)
	if modified, err := vault.Storage.GetModified(); err == nil {
		tbl.AddRow("Last modified", modified.Format(time.RFC3339))
	}
	tbl.AddRow("Storage", fmt.Sprintf("%s of %s used, %s free", formatSize(usage.Used), formatSize(usage.Total), formatSize(usage.Free())))
	tbl.Print()
}

// keyringState describes the keyring entry of a vault
func keyringState(vaultID string) string {
	ok, err := keyring.HasPIN(vaultID)
	switch {
	case err != nil:
		return "unavailable"
	case ok:
		return "stored in keyring"
	default:
		return "not stored"
	}
}

// formatSize formats a byte count in human-readable form
func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.1f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.1f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.1f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
