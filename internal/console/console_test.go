package console

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	r := New(strings.NewReader("first\r\nsecond\n\nlast"), io.Discard)
	assert.False(t, r.IsTerminal())

	for _, want := range []string{"first", "second", "", "last"} {
		got, err := r.ReadLine(false)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := r.ReadLine(false)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineMaskedWithoutTerminal(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("1234\n"), &out)

	got, err := r.ReadLine(true)
	require.NoError(t, err)
	assert.Equal(t, "1234", got)
	assert.Empty(t, out.String(), "no echo handling outside a terminal")
}

func TestReadPIN(t *testing.T) {
	var out bytes.Buffer
	r := New(strings.NewReader("  2468 \n"), &out)

	pin, err := r.ReadPIN("PIN: ")
	require.NoError(t, err)
	assert.Equal(t, "2468", pin)
	assert.Equal(t, "PIN: ", out.String())

	_, err = r.ReadPIN("PIN: ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestRestoreWithoutTerminal(t *testing.T) {
	r := New(strings.NewReader(""), io.Discard)
	assert.NoError(t, r.Restore())
}
