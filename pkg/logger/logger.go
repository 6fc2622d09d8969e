package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the document service and CLI.
// - Debug/Info/Warn/Error/Fatal variants and Init(level)
// - component-scoped loggers via For(name)
// - Trace logs an error together with the current goroutine stack

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = ParseLevel(l)
}

// ParseLevel maps a level name to a Level; unknown names map to Info.
func ParseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	}
	return LevelInfo
}

// SetOutput redirects all log output to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

func header(lvl, component string) string {
	h := fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
	if component != "" {
		h += "[" + component + "] "
	}
	return h
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(l Level, lvl, component, format string, v ...interface{}) {
	if !shouldLog(l) {
		return
	}
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Printf(header(lvl, component)+format, v...)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "debug", "", format, v...) }
func Infof(format string, v ...interface{})  { output(LevelInfo, "info", "", format, v...) }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "warn", "", format, v...) }
func Errorf(format string, v ...interface{}) { output(LevelError, "error", "", format, v...) }

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, "fatal", "", format, v...)
	os.Exit(1)
}

// Println kept for brief messages (maps to Info)
func Println(v ...interface{}) {
	output(LevelInfo, "info", "", "%s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debug/Info/Warn/Error helpers that accept a single string
func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

// Logger prefixes every line with a component name.
type Logger struct {
	component string
}

// For returns a logger tagged with component, e.g. For("DocsService").
func For(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	output(LevelDebug, "debug", l.component, format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	output(LevelInfo, "info", l.component, format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	output(LevelWarn, "warn", l.component, format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	output(LevelError, "error", l.component, format, v...)
}

// Trace logs msg and err at error level followed by the stack of the caller.
func (l *Logger) Trace(msg string, err error) {
	if !shouldLog(LevelError) {
		return
	}
	output(LevelError, "error", l.component, "%s: %v\n%s", msg, err, debug.Stack())
}
