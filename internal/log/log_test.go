package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func captureOutput(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(level)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
	})
	return &buf
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureOutput(t, LevelWarn)

	Debug("hidden debug")
	Info("hidden info")
	Warn("shown warn")
	Error("shown error", errors.New("boom"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info lines to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown warn") {
		t.Errorf("missing warn line in %q", out)
	}
	if !strings.Contains(out, "[ERROR] shown error err=boom") {
		t.Errorf("missing error line in %q", out)
	}
}

func TestKeyValueFormatting(t *testing.T) {
	buf := captureOutput(t, LevelDebug)

	Info("event added", "id", "abc", "title", "Team sync", "dangling")

	out := buf.String()
	if !strings.Contains(out, "id=abc") {
		t.Errorf("expected id=abc in %q", out)
	}
	if !strings.Contains(out, `title="Team sync"`) {
		t.Errorf("expected quoted title in %q", out)
	}
	if strings.Contains(out, "dangling") {
		t.Errorf("odd trailing key should be ignored, got %q", out)
	}
}
