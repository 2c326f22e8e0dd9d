package ui

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/phonecheck/internal/model"
)

func TestRenderLevel_Colors(t *testing.T) {
	prev := noColor
	noColor = false
	t.Cleanup(func() { noColor = prev })

	tests := []struct {
		level model.Level
		code  string
	}{
		{model.LevelSuccess, "38;5;114m"},
		{model.LevelWarning, "38;5;179m"},
		{model.LevelError, "38;5;203m"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			got := RenderLevel(tt.level, "msg")
			if !strings.Contains(got, tt.code) || !strings.Contains(got, "msg") {
				t.Errorf("RenderLevel(%s) = %q", tt.level, got)
			}
		})
	}
	if got := RenderLevel(model.LevelInfo, "msg"); got != "msg" {
		t.Errorf("info should be uncolored, got %q", got)
	}
}

func TestFormatEntry_NoColor(t *testing.T) {
	prev := noColor
	ForceNoColor()
	t.Cleanup(func() { noColor = prev })

	e := model.LogEntry{
		Timestamp: time.Date(2026, 3, 1, 9, 5, 7, 0, time.UTC),
		Message:   "FOUND: Ann Lee (@ann)",
		Level:     model.LevelSuccess,
	}
	if got, want := FormatEntry(e), "09:05:07  FOUND: Ann Lee (@ann)"; got != want {
		t.Errorf("FormatEntry = %q, want %q", got, want)
	}
}

func TestShouldUseColor_Env(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	t.Setenv("CLICOLOR_FORCE", "1")
	if ShouldUseColor() {
		t.Error("NO_COLOR must win over CLICOLOR_FORCE")
	}

	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor() {
		t.Error("CLICOLOR_FORCE=1 should force color")
	}

	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "0")
	if ShouldUseColor() {
		t.Error("CLICOLOR=0 should disable color")
	}
}

func TestShouldUseColorFor_NotATerminal(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	t.Setenv("CLICOLOR", "")

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if ShouldUseColorFor(f) {
		t.Error("a regular file is not a terminal")
	}
	if ShouldUseColorFor(nil) {
		t.Error("nil file should not use color")
	}
}
