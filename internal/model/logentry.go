package model

import "time"

// Level classifies a log entry for display.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// String returns the string representation of the level.
func (l Level) String() string {
	return string(l)
}

// IsValid checks whether the level is a known value.
func (l Level) IsValid() bool {
	switch l {
	case LevelInfo, LevelSuccess, LevelWarning, LevelError:
		return true
	}
	return false
}

// LogEntry is one line of a run's event log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Level     Level     `json:"level"`
}
