package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigDir returns the XDG-compliant config directory for pinvault
// Typically ~/.config/pinvault/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "pinvault")
}

// ConfigPath returns the full path to the config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DataDir returns the XDG-compliant data directory for pinvault
// Typically ~/.local/share/pinvault/ on Linux
func DataDir() string {
	return filepath.Join(xdg.DataHome, "pinvault")
}
