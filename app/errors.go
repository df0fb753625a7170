package app

import (
	"errors"
	"fmt"

	"github.com/kilianp07/schedulegen/core/amount"
	"github.com/kilianp07/schedulegen/core/proposal"
)

// Process exit codes, following sysexits.h.
const (
	ExitOK     = 0
	ExitUsage  = 64
	ExitData   = 65
	ExitIO     = 74
	ExitConfig = 78
)

var (
	// ErrInvalidAddress is returned for a sender or receiver that fails the checksum.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrColumnCount is returned when a row has the wrong number of fields.
	ErrColumnCount = errors.New("wrong number of columns")
	// ErrNoRows is returned when the input holds no transfers.
	ErrNoRows = errors.New("input contains no transfers")
)

// UsageError reports a malformed command line.
type UsageError struct{ Err error }

func (e *UsageError) Error() string { return e.Err.Error() }
func (e *UsageError) Unwrap() error { return e.Err }

// ConfigError reports an invalid configuration, such as an initial release
// planned after the first monthly release.
type ConfigError struct{ Err error }

func (e *ConfigError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigError) Unwrap() error { return e.Err }

// FormatError reports invalid data in an input row.
type FormatError struct {
	// Row is the 1-based data row, 0 when the error is not tied to a row.
	Row int
	// Line is the physical input line, set for malformed delimited text
	// that cannot be split into rows.
	Line  int
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	msg := e.Err.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s %q: %s", e.Field, e.Value, msg)
	} else if e.Value != "" {
		msg = fmt.Sprintf("%s in %q", msg, e.Value)
	}
	switch {
	case e.Row > 0:
		return fmt.Sprintf("row %d: %s", e.Row, msg)
	case e.Line > 0:
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.Err }

// Reason returns a short label for metrics.
func (e *FormatError) Reason() string {
	switch {
	case errors.Is(e.Err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(e.Err, ErrColumnCount):
		return "column_count"
	case errors.Is(e.Err, amount.ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(e.Err, amount.ErrInvalidSplit):
		return "invalid_split"
	case errors.Is(e.Err, amount.ErrOverflow):
		return "overflow"
	case errors.Is(e.Err, proposal.ErrScheduleMismatch):
		return "schedule_mismatch"
	default:
		return "malformed"
	}
}

// IOError reports a file that could not be read or written.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Run or the CLI to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var (
		usage *UsageError
		cfg   *ConfigError
		data  *FormatError
		io    *IOError
	)
	switch {
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &data):
		return ExitData
	case errors.As(err, &io):
		return ExitIO
	case errors.As(err, &cfg):
		return ExitConfig
	default:
		return 1
	}
}
