package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/illarion/pinvault/internal/core"
)

// Session commands, matched exactly and case-sensitively
const (
	CmdCreate = "create"
	CmdGet    = "get"
	CmdDelete = "delete"
	CmdList   = "list"
	CmdInfo   = "info"
)

// Commands lists the session commands in menu order
var Commands = []string{CmdCreate, CmdGet, CmdDelete, CmdList, CmdInfo}

// IsCommand reports whether line is a session command name
func IsCommand(line string) bool {
	for _, c := range Commands {
		if line == c {
			return true
		}
	}
	return false
}

// State is the input the dispatcher expects next
type State int

const (
	AwaitingNewPin State = iota
	AwaitingPin
	AwaitingCommand
	AwaitingName
	AwaitingSecret
)

func (s State) String() string {
	switch s {
	case AwaitingNewPin:
		return "awaiting-new-pin"
	case AwaitingPin:
		return "awaiting-pin"
	case AwaitingCommand:
		return "awaiting-command"
	case AwaitingName:
		return "awaiting-name"
	case AwaitingSecret:
		return "awaiting-secret"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is the process-lifetime authentication state
type Session struct {
	PinConfigured bool
	Authenticated bool
}

// Gate is the PIN side of the vault
type Gate interface {
	IsPinSet() bool
	CreatePin(pin string) error
	VerifyPin(pin string) bool
}

// Store is the credential side of the vault
type Store interface {
	Exists(name string) bool
	Create(name, secret string) error
	Get(name string) (string, bool)
	Delete(name string) bool
	List() ([]string, error)
	Stats() (core.Stats, error)
}

// LineReader delivers input lines. masked asks for no echo.
type LineReader interface {
	ReadLine(masked bool) (string, error)
}

// Dispatcher routes input lines to the gate or the store depending on
// the session state and renders the responses as text.
type Dispatcher struct {
	gate  Gate
	store Store
	log   *zap.Logger

	session Session
	state   State
	pending string // command waiting for its name
	name    string // name waiting for its secret
	failed  int    // failed PIN attempts
}

// New probes the gate for a PIN record and returns a dispatcher in the
// matching initial state
func New(gate Gate, store Store, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{gate: gate, store: store, log: log}
	d.session.PinConfigured = gate.IsPinSet()
	if d.session.PinConfigured {
		d.state = AwaitingPin
	} else {
		d.state = AwaitingNewPin
	}
	return d
}

// Session returns a copy of the session state
func (d *Dispatcher) Session() Session {
	return d.session
}

// State returns the current dialog state
func (d *Dispatcher) State() State {
	return d.state
}

// ExpectsSecret reports whether the next line is sensitive
func (d *Dispatcher) ExpectsSecret() bool {
	switch d.state {
	case AwaitingNewPin, AwaitingPin, AwaitingSecret:
		return true
	}
	return false
}

// Authenticate tries pin without consuming an input line, e.g. a PIN
// recalled from the OS keyring. Failures do not count as attempts.
func (d *Dispatcher) Authenticate(pin string) bool {
	if d.state != AwaitingPin || !d.gate.VerifyPin(pin) {
		return false
	}
	d.authenticated()
	return true
}

func (d *Dispatcher) authenticated() {
	d.session.Authenticated = true
	d.state = AwaitingCommand
	d.log.Info("session authenticated")
}

// Greeting is the text shown before the first line is read
func (d *Dispatcher) Greeting() string {
	var b strings.Builder
	switch d.state {
	case AwaitingNewPin:
		b.WriteString("\n[No PIN] Please create a PIN to protect your data\n")
		b.WriteString(promptNewPin)
	case AwaitingPin:
		b.WriteString("\n[Authentication Required] Please enter your PIN to continue\n")
		b.WriteString(promptPin)
	default:
		b.WriteString("\n✓ Authentication successful!\n")
		writeMenu(&b)
	}
	return b.String()
}

// Handle consumes one input line and returns the response text
func (d *Dispatcher) Handle(line string) string {
	line = strings.TrimSpace(line)

	var b strings.Builder
	switch d.state {
	case AwaitingNewPin:
		d.handleNewPin(&b, line)
	case AwaitingPin:
		d.handlePin(&b, line)
	case AwaitingCommand:
		d.handleCommand(&b, line)
	case AwaitingName:
		d.handleName(&b, line)
	case AwaitingSecret:
		d.handleSecret(&b, line)
	}
	return b.String()
}

func (d *Dispatcher) handleNewPin(b *strings.Builder, line string) {
	if line == "" || IsCommand(line) {
		b.WriteString("\n[Security] You need to create a PIN first\n")
		b.WriteString(promptNewPin)
		return
	}

	if err := d.gate.CreatePin(line); err != nil {
		if errors.Is(err, core.ErrPinAlreadySet) {
			d.session.PinConfigured = true
			d.state = AwaitingPin
			b.WriteString("\n[Authentication Required] A PIN already exists, please enter it\n")
			b.WriteString(promptPin)
			return
		}
		d.log.Error("failed to create PIN", zap.Error(err))
		b.WriteString("\n✗ Error: Failed to save PIN\n")
		b.WriteString(promptNewPin)
		return
	}

	d.session.PinConfigured = true
	d.state = AwaitingPin
	b.WriteString("\n✓ PIN created successfully!\n")
	b.WriteString("[Authentication Required] Please enter your PIN to continue\n")
	b.WriteString(promptPin)
}

func (d *Dispatcher) handlePin(b *strings.Builder, line string) {
	if d.gate.VerifyPin(line) {
		d.authenticated()
		b.WriteString("\n✓ Authentication successful!\n")
		writeMenu(b)
		return
	}

	d.failed++
	d.log.Info("invalid PIN attempt", zap.Int("attempt", d.failed))
	if d.failed == 1 {
		// The first line often arrives before the user saw any prompt
		writeWelcome(b)
		b.WriteString("\n[Security] You need to enter your PIN first\n")
		b.WriteString(promptPin)
		return
	}
	b.WriteString("\n✗ Invalid PIN!\n")
	b.WriteString(promptRetry)
}

func (d *Dispatcher) handleCommand(b *strings.Builder, line string) {
	switch line {
	case CmdCreate, CmdGet:
		d.pending = line
		d.state = AwaitingName
		b.WriteString("\n" + promptName)
	case CmdDelete:
		d.pending = line
		d.state = AwaitingName
		b.WriteString("\n" + promptDelName)
	case CmdList:
		names, err := d.store.List()
		if err != nil {
			d.log.Warn("cannot list passwords", zap.Error(err))
			b.WriteString("\n✗ Error: Could not read passwords\n")
		} else {
			writeList(b, names)
		}
		writeSeparator(b)
	case CmdInfo:
		st, err := d.store.Stats()
		if err != nil {
			d.log.Warn("cannot collect stats", zap.Error(err))
			b.WriteString("\n✗ Error: Could not read storage information\n")
		} else {
			writeStats(b, st)
		}
		writeSeparator(b)
	default:
		b.WriteString("\n✗ Invalid command!\n")
		writeMenu(b)
		writeSeparator(b)
	}
}

func (d *Dispatcher) handleName(b *strings.Builder, name string) {
	cmd := d.pending
	d.pending = ""
	d.state = AwaitingCommand

	switch cmd {
	case CmdCreate:
		switch {
		case name == "":
			fmt.Fprintf(b, "\n✗ Error: %s\n", createErrorMessage(core.ErrNameEmpty))
		case len(name) > core.MaxNameLength:
			fmt.Fprintf(b, "\n✗ Error: %s\n", createErrorMessage(core.ErrNameTooLong))
		case !utf8.ValidString(name):
			fmt.Fprintf(b, "\n✗ Error: %s\n", createErrorMessage(core.ErrInvalidEncoding))
		case d.store.Exists(name):
			fmt.Fprintf(b, "\n✗ Error: %s\n", createErrorMessage(core.ErrAlreadyExists))
		default:
			d.name = name
			d.state = AwaitingSecret
			fmt.Fprintf(b, "Enter password for '%s' > ", name)
			return
		}
	case CmdGet:
		if secret, ok := d.store.Get(name); ok {
			fmt.Fprintf(b, "\nPassword: %s\n", secret)
		} else {
			b.WriteString("\n✗ Password not found\n")
		}
	case CmdDelete:
		if d.store.Delete(name) {
			b.WriteString("\n✓ Password deleted successfully!\n")
		} else {
			b.WriteString("\n✗ Failed to delete or password not found\n")
		}
	}
	writeSeparator(b)
}

func (d *Dispatcher) handleSecret(b *strings.Builder, secret string) {
	name := d.name
	d.name = ""
	d.state = AwaitingCommand

	if err := d.store.Create(name, secret); err != nil {
		d.log.Info("create rejected", zap.String("name", name), zap.Error(err))
		fmt.Fprintf(b, "\n✗ Error: %s\n", createErrorMessage(err))
	} else {
		b.WriteString("\n✓ Password saved successfully!\n")
	}
	writeSeparator(b)
}

// Run serves lines from in until end of input or until ctx is cancelled.
// A read blocked when ctx is cancelled returns once the caller closes the
// underlying input or the next line arrives; that line is not handled.
func (d *Dispatcher) Run(ctx context.Context, in LineReader, out io.Writer) error {
	if _, err := io.WriteString(out, d.Greeting()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := in.ReadLine(d.ExpectsSecret())
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Cancellation closes the input under a blocked read
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
		// A line that arrives after an interrupt is dropped
		if err := ctx.Err(); err != nil {
			return err
		}

		if _, err := io.WriteString(out, d.Handle(line)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
}
