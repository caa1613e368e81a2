package logging

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Enumeration of the different log levels
const (
	LogLevelSilent  = iota // no output at all
	LogLevelError          // only errors and the closing summary
	LogLevelWarning        // errors, warnings, and closing summary
	LogLevelVerbose        // everything including phases and notes (DEFAULT)
)

// ErrFatal is wrapped by every error that must stop the whole pipeline.
var ErrFatal = errors.New("fatal error")

// Fatalf creates a new fatal error.
func Fatalf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrFatal, fmt.Sprintf(format, args...))
}

// IsFatal reports whether err is (or wraps) a fatal error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// Diagnostic is a single recoverable error, warning or note.
type Diagnostic struct {
	Severity Severity
	Kind     string
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Kind, d.Message)
}

// Severity classifies diagnostics.
type Severity int

const (
	SeverityNote Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "note"
	}
}

// Logger accumulates and displays the diagnostic stream of a run.  It is not
// synchronized: the pipeline is single threaded.
type Logger struct {
	LogLevel int

	out          io.Writer
	diagnostics  []Diagnostic
	errorCount   int
	warningCount int

	phase *phase
}

// NewLogger creates a logger writing to stdout.
func NewLogger(loglevel int) *Logger {
	return NewLoggerTo(os.Stdout, loglevel)
}

// NewLoggerTo creates a logger writing to w.
func NewLoggerTo(w io.Writer, loglevel int) *Logger {
	return &Logger{LogLevel: loglevel, out: w}
}

// ParseLogLevel converts a log level name into its enumerated value.
// Everything unrecognized defaults to verbose.
func ParseLogLevel(name string) int {
	switch name {
	case "silent":
		return LogLevelSilent
	case "error":
		return LogLevelError
	case "warn", "warning":
		return LogLevelWarning
	default:
		return LogLevelVerbose
	}
}

// Error reports a recoverable error.
func (l *Logger) Error(kind, format string, args ...interface{}) {
	l.handle(Diagnostic{Severity: SeverityError, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Warn reports a warning.
func (l *Logger) Warn(kind, format string, args ...interface{}) {
	l.handle(Diagnostic{Severity: SeverityWarning, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Note reports an informational message; it is only displayed when verbose.
func (l *Logger) Note(kind, format string, args ...interface{}) {
	l.handle(Diagnostic{Severity: SeverityNote, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Fatal displays a fatal error.  It does not exit: the caller unwinds.
func (l *Logger) Fatal(err error) {
	l.errorCount++
	if l.LogLevel > LogLevelSilent {
		l.endPhase(false)
		l.displayFatal(err.Error())
	}
}

// ShouldProceed indicates whether or not any errors have been reported.
func (l *Logger) ShouldProceed() bool {
	return l.errorCount == 0
}

// ErrorCount returns the number of reported errors.
func (l *Logger) ErrorCount() int {
	return l.errorCount
}

// WarningCount returns the number of reported warnings.
func (l *Logger) WarningCount() int {
	return l.warningCount
}

// Diagnostics returns every message reported so far, in order.
func (l *Logger) Diagnostics() []Diagnostic {
	return l.diagnostics
}

// Count returns the number of diagnostics of the given severity and kind.  An
// empty kind matches every kind.
func (l *Logger) Count(sev Severity, kind string) int {
	n := 0
	for _, d := range l.diagnostics {
		if d.Severity == sev && (kind == "" || d.Kind == kind) {
			n++
		}
	}

	return n
}

func (l *Logger) handle(d Diagnostic) {
	l.diagnostics = append(l.diagnostics, d)

	switch d.Severity {
	case SeverityError:
		l.errorCount++
		if l.LogLevel >= LogLevelError {
			l.displayDiagnostic(d)
		}
	case SeverityWarning:
		l.warningCount++
		if l.LogLevel >= LogLevelWarning {
			l.displayDiagnostic(d)
		}
	default:
		if l.LogLevel >= LogLevelVerbose {
			l.displayDiagnostic(d)
		}
	}
}
