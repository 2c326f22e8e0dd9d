// Package ui renders terminal output for the phonecheck CLI.
package ui

import (
	"fmt"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

// ANSI256 color codes matching the Ayu palette.
const (
	colorAccent  = 74  // blue
	colorCmd     = 250 // light gray
	colorMuted   = 245 // medium gray
	colorSuccess = 114 // green
	colorWarning = 179 // amber
	colorError   = 203 // red
)

var noColor bool

func render(color int, s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", color, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }

// RenderCommand returns s styled as a command name (light gray).
func RenderCommand(s string) string { return render(colorCmd, s) }

func RenderSuccess(s string) string { return render(colorSuccess, s) }
func RenderWarning(s string) string { return render(colorWarning, s) }
func RenderError(s string) string   { return render(colorError, s) }

// RenderLevel colors s according to a log level. Info stays uncolored.
func RenderLevel(level model.Level, s string) string {
	switch level {
	case model.LevelSuccess:
		return RenderSuccess(s)
	case model.LevelWarning:
		return RenderWarning(s)
	case model.LevelError:
		return RenderError(s)
	}
	return s
}

// FormatEntry renders one run log line as "15:04:05  message".
func FormatEntry(e model.LogEntry) string {
	return RenderMuted(e.Timestamp.Format("15:04:05")) + "  " + RenderLevel(e.Level, e.Message)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
