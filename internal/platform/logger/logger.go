// Package logger provides leveled logging for the tycoon services.
// Sessions, the store and the HTTP server report through this; the engine never logs.
package logger

import (
	"io"
	"log"
	"os"

	"github.com/fatih/color"
)

// Logger provides leveled logging with coloured prefixes.
type Logger struct {
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates a logger writing info/warn to stdout and errors to stderr.
func NewLogger() *Logger {
	return &Logger{
		infoLogger:  log.New(os.Stdout, color.CyanString("[TYCOON-INFO] "), log.Ldate|log.Ltime),
		warnLogger:  log.New(os.Stdout, color.YellowString("[TYCOON-WARN] "), log.Ldate|log.Ltime),
		errorLogger: log.New(os.Stderr, color.RedString("[TYCOON-ERROR] "), log.Ldate|log.Ltime),
	}
}

// New creates a logger writing every level to w, without colour or timestamps.
func New(w io.Writer) *Logger {
	return &Logger{
		infoLogger:  log.New(w, "[TYCOON-INFO] ", 0),
		warnLogger:  log.New(w, "[TYCOON-WARN] ", 0),
		errorLogger: log.New(w, "[TYCOON-ERROR] ", 0),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard)
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...any) {
	l.infoLogger.Printf(format, args...)
}

// Warn logs warning messages.
func (l *Logger) Warn(format string, args ...any) {
	l.warnLogger.Printf(format, args...)
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...any) {
	l.errorLogger.Printf(format, args...)
}

// Event logs a game event against a save slot.
func (l *Logger) Event(eventType string, saveID string, details string) {
	l.infoLogger.Printf("[EVENT:%s] Save:%s | %s", eventType, saveID, details)
}
