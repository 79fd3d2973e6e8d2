package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsNop(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("dropped")
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pinvault.log")

	l := New()
	require.NoError(t, l.Init("info", path))
	l.Log.Debug("below level")
	l.Log.Info("session authenticated")
	require.NoError(t, l.Log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session authenticated")
	assert.NotContains(t, string(data), "below level")
}

func TestInitInvalidLevel(t *testing.T) {
	l := New()
	assert.Error(t, l.Init("chatty", ""))
}
