package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rodaine/table"

	"github.com/illarion/pinvault/internal/core"
)

// Separator ends every completed command response
const Separator = "------------------------------------------------"

const (
	promptNewPin  = "Enter new PIN > "
	promptPin     = "PIN > "
	promptRetry   = "Try again > "
	promptName    = "Enter password name > "
	promptDelName = "Enter password name to delete > "
)

func writeWelcome(b *strings.Builder) {
	b.WriteString("\n====================================\n")
	b.WriteString("   pinvault - Password Manager\n")
	b.WriteString("====================================\n")
}

func writeMenu(b *strings.Builder) {
	b.WriteString("\nAvailable commands:\n")
	b.WriteString("- create : Create new password\n")
	b.WriteString("- get    : Retrieve password\n")
	b.WriteString("- delete : Remove password\n")
	b.WriteString("- list   : Show all passwords\n")
	b.WriteString("- info   : System information\n")
	b.WriteString(Separator + "\n")
}

func writeSeparator(b *strings.Builder) {
	b.WriteString(Separator + "\n")
}

// createErrorMessage turns a Store.Create error into user text
func createErrorMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrNameEmpty):
		return "Password name is empty"
	case errors.Is(err, core.ErrNameTooLong):
		return fmt.Sprintf("Password name too long (max %d characters)", core.MaxNameLength)
	case errors.Is(err, core.ErrSecretTooLong):
		return fmt.Sprintf("Password too long (max %d characters)", core.MaxSecretLength)
	case errors.Is(err, core.ErrInvalidEncoding):
		return "Password name and password must be valid UTF-8"
	case errors.Is(err, core.ErrAlreadyExists):
		return "Password name already exists!"
	case errors.Is(err, core.ErrCapacityExceeded):
		return fmt.Sprintf("Maximum number of passwords (%d) reached", core.MaxEntries)
	case errors.Is(err, core.ErrStorageFull):
		return "Storage full"
	case errors.Is(err, core.ErrCorruptDocument):
		return "Failed to read file"
	default:
		return "Failed to write file"
	}
}

func writeList(b *strings.Builder, names []string) {
	b.WriteString("\n=== Stored Passwords ===\n")
	for i, name := range names {
		fmt.Fprintf(b, "%d. %s\n", i+1, name)
	}
	if len(names) == 0 {
		b.WriteString("(No passwords stored)\n")
	}
	b.WriteString("========================\n")
}

func writeStats(b *strings.Builder, st core.Stats) {
	var pct float64
	if st.TotalStorageBytes > 0 {
		pct = float64(st.UsedStorageBytes) / float64(st.TotalStorageBytes) * 100
	}

	b.WriteString("\n=== Storage Information ===\n")
	storage := table.New("Storage", "Value").WithWriter(b)
	storage.AddRow("Total", fmt.Sprintf("%d bytes", st.TotalStorageBytes))
	storage.AddRow("Used", fmt.Sprintf("%d bytes", st.UsedStorageBytes))
	storage.AddRow("Free", fmt.Sprintf("%d bytes", st.FreeStorageBytes))
	storage.AddRow("Usage", fmt.Sprintf("%.2f%%", pct))
	storage.Print()

	b.WriteString("\n=== Password Statistics ===\n")
	stats := table.New("Passwords", "Value").WithWriter(b)
	stats.AddRow("Total", st.TotalEntries)
	stats.AddRow("Characters", st.TotalSecretBytes)
	stats.AddRow("Average length", fmt.Sprintf("%.2f", st.AverageSecretBytes))
	stats.Print()
	b.WriteString("===========================\n")
}
