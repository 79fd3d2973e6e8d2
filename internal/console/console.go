// Package console is the line-oriented host channel for pinvault sessions.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Reader reads newline-terminated lines. On a terminal, masked reads
// disable echo.
type Reader struct {
	in     *bufio.Reader
	out    io.Writer
	fd     int
	isTerm bool
	state  *term.State
}

// New wraps in. Echo is written to out after masked terminal reads.
func New(in io.Reader, out io.Writer) *Reader {
	r := &Reader{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		r.fd = int(f.Fd())
		r.isTerm = true
		r.state, _ = term.GetState(r.fd)
	}
	return r
}

// Restore puts the terminal back into the mode it had in New. An
// interrupt during a masked read would otherwise leave echo off.
func (r *Reader) Restore() error {
	if r.state == nil {
		return nil
	}
	return term.Restore(r.fd, r.state)
}

// IsTerminal reports whether input comes from a terminal
func (r *Reader) IsTerminal() bool {
	return r.isTerm
}

// ReadLine returns the next line without its terminator. A final line
// without newline is returned as is; io.EOF is returned after it.
func (r *Reader) ReadLine(masked bool) (string, error) {
	// Buffered input was already echoed by the terminal
	if masked && r.isTerm && r.in.Buffered() == 0 {
		line, err := term.ReadPassword(r.fd)
		fmt.Fprintln(r.out) // New line after masked input
		if err != nil {
			return "", fmt.Errorf("failed to read masked input: %w", err)
		}
		return string(line), nil
	}

	line, err := r.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadPIN prints prompt and reads one masked line
func (r *Reader) ReadPIN(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	pin, err := r.ReadLine(true)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return strings.TrimSpace(pin), nil
}
