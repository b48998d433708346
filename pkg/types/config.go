package types

import (
	"errors"
	"log/slog"
	"strings"
)

// Config holds the parameters for opening a connection.
type Config struct {
	// Path is the database file. ":memory:" opens a private in-memory store.
	Path string `json:"path" yaml:"path"`

	// JournalMode, when set, is applied with PRAGMA journal_mode.
	JournalMode string `json:"journal_mode,omitempty" yaml:"journal_mode,omitempty"`

	// ForeignKeys enables foreign key enforcement.
	ForeignKeys bool `json:"foreign_keys,omitempty" yaml:"foreign_keys,omitempty"`

	// BusyTimeoutMS, when positive, is applied with PRAGMA busy_timeout.
	BusyTimeoutMS int `json:"busy_timeout_ms,omitempty" yaml:"busy_timeout_ms,omitempty"`

	// Logger receives connection and statement events. Nil discards them.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

// Journal modes accepted by Validate.
const (
	JournalDelete   = "delete"
	JournalTruncate = "truncate"
	JournalPersist  = "persist"
	JournalMemory   = "memory"
	JournalWAL      = "wal"
	JournalOff      = "off"
)

var knownJournalModes = map[string]bool{
	JournalDelete:   true,
	JournalTruncate: true,
	JournalPersist:  true,
	JournalMemory:   true,
	JournalWAL:      true,
	JournalOff:      true,
}

// Config validation errors.
var (
	ErrPathEmpty          = errors.New("database path must not be empty")
	ErrJournalModeUnknown = errors.New("unknown journal mode")
	ErrBusyTimeoutInvalid = errors.New("busy timeout must not be negative")
)

// Validate checks that the Config is well-formed and returns one of the
// config sentinel errors on failure.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return ErrPathEmpty
	}
	if c.JournalMode != "" && !knownJournalModes[strings.ToLower(c.JournalMode)] {
		return ErrJournalModeUnknown
	}
	if c.BusyTimeoutMS < 0 {
		return ErrBusyTimeoutInvalid
	}
	return nil
}

// TxModifier selects the locking behaviour of BEGIN.
type TxModifier string

// Transaction modifiers. TxDefault leaves the choice to the engine.
const (
	TxDefault   TxModifier = ""
	TxDeferred  TxModifier = "DEFERRED"
	TxImmediate TxModifier = "IMMEDIATE"
	TxExclusive TxModifier = "EXCLUSIVE"
)

// Valid reports whether m is one of the known modifiers.
func (m TxModifier) Valid() bool {
	switch m {
	case TxDefault, TxDeferred, TxImmediate, TxExclusive:
		return true
	}
	return false
}
