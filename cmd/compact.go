package cmd

import (
	"fmt"
	"os"
)

// Compact compacts the vault database to reclaim unused space
func Compact(opts Options) {
	vault, err := Open(opts)
	if err != nil {
		HandleError(err)
	}
	defer vault.Close()

	path := vault.Storage.Path()

	// Get file size before
	info, err := os.Stat(path)
	if err != nil {
		HandleError(err)
	}
	sizeBefore := info.Size()

	if err := vault.Storage.Compact(); err != nil {
		HandleError(err)
	}

	// Get file size after
	info, err = os.Stat(path)
	if err != nil {
		HandleError(err)
	}
	sizeAfter := info.Size()

	fmt.Printf("Compacted: %s -> %s\n", formatSize(sizeBefore), formatSize(sizeAfter))
}
