package logger

import (
	"bytes"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		mu.Lock()
		logger = log.New(os.Stdout, "", 0)
		mu.Unlock()
		Init("info")
	})
	return &buf
}

func TestInitAndLevelString(t *testing.T) {
	Init("debug")
	if got := LevelString(); got != "debug" {
		t.Fatalf("LevelString() = %q, want %q", got, "debug")
	}
	Init("WARN")
	if got := LevelString(); got != "warn" {
		t.Fatalf("LevelString() = %q, want %q", got, "warn")
	}
	Init("Error")
	if got := LevelString(); got != "error" {
		t.Fatalf("LevelString() = %q, want %q", got, "error")
	}
	Init("nonsense")
	if got := LevelString(); got != "info" {
		t.Fatalf("LevelString() = %q, want %q for unknown input", got, "info")
	}
}

func TestLevelFilteringAndPrintln(t *testing.T) {
	buf := captureOutput(t)

	Init("warn")
	Debugf("debug-msg")
	Infof("info-msg")
	Warnf("warn-msg")
	Errorf("error-msg")

	out := buf.String()
	if strings.Contains(out, "debug-msg") {
		t.Fatalf("debug messages should be suppressed at warn level")
	}
	if strings.Contains(out, "info-msg") {
		t.Fatalf("info messages should be suppressed at warn level")
	}
	if !strings.Contains(out, "warn-msg") {
		t.Fatalf("warn message missing: %q", out)
	}
	if !strings.Contains(out, "error-msg") {
		t.Fatalf("error message missing: %q", out)
	}

	buf.Reset()
	Println("hello")
	if strings.Contains(buf.String(), "hello") {
		t.Fatalf("Println should be suppressed at warn level")
	}

	Init("info")
	buf.Reset()
	Println("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("Println expected at info level, got: %q", buf.String())
	}
}

func TestComponentLogger(t *testing.T) {
	buf := captureOutput(t)
	Init("info")

	l := For("DocsService")
	l.Infof("document created with ID: %s", "abc")
	l.Debugf("hidden")

	out := buf.String()
	if !strings.Contains(out, "[INFO] [DocsService] document created with ID: abc") {
		t.Fatalf("component line missing: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line should be suppressed at info level")
	}
}

func TestTraceIncludesStack(t *testing.T) {
	buf := captureOutput(t)
	Init("info")

	For("DocsService").Trace("failed to create document", errors.New("boom"))
	out := buf.String()
	if !strings.Contains(out, "failed to create document: boom") {
		t.Fatalf("trace message missing: %q", out)
	}
	if !strings.Contains(out, "goroutine") {
		t.Fatalf("trace should include a stack: %q", out)
	}

	buf.Reset()
	Init("fatal")
	For("DocsService").Trace("suppressed", errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("trace should be suppressed above error level, got %q", buf.String())
	}
}
