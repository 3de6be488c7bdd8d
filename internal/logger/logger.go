// Package logger is a small leveled logger for the compiler tools.
// Output is colored only when it goes to a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent suppresses everything.
	LevelSilent
)

// EnvVar names the environment variable that overrides the default level.
const EnvVar = "GIFSCRIPT_LOG"

var levelTags = []string{"DEBUG", "INFO ", "WARN ", "ERROR"}

var levelColors = []string{"\x1b[90m", "\x1b[36m", "\x1b[33m", "\x1b[31m"}

const colorReset = "\x1b[0m"

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LevelFromEnv returns the level set in GIFSCRIPT_LOG, or def when it is
// unset or invalid.
func LevelFromEnv(def Level) Level {
	s, ok := os.LookupEnv(EnvVar)
	if !ok {
		return def
	}
	l, err := ParseLevel(s)
	if err != nil {
		return def
	}
	return l
}

// Logger is safe for concurrent use.
type Logger struct {
	mu     *sync.Mutex
	out    io.Writer
	level  Level
	color  bool
	prefix string
}

// Discard drops every message.
var Discard = &Logger{mu: &sync.Mutex{}, out: io.Discard, level: LevelSilent}

// New creates a logger writing to out. Colors are enabled when out is a
// terminal.
func New(out io.Writer, level Level) *Logger {
	return &Logger{mu: &sync.Mutex{}, out: out, level: level, color: isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// With returns a logger sharing the destination whose messages are
// prefixed with prefix.
func (l *Logger) With(prefix string) *Logger {
	if l == nil {
		return nil
	}
	p := prefix
	if l.prefix != "" {
		p = l.prefix + ": " + prefix
	}
	return &Logger{mu: l.mu, out: l.out, level: l.level, color: l.color, prefix: p}
}

func (l *Logger) Level() Level {
	if l == nil {
		return LevelSilent
	}
	return l.level
}

func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level && level < LevelSilent
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	var sb strings.Builder
	if l.color {
		sb.WriteString(levelColors[level])
	}
	sb.WriteString("[")
	sb.WriteString(levelTags[level])
	sb.WriteString("] ")
	if l.color {
		sb.WriteString(colorReset)
	}
	if l.prefix != "" {
		sb.WriteString(l.prefix)
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, format, args...)
	if !strings.HasSuffix(sb.String(), "\n") {
		sb.WriteString("\n")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	io.WriteString(l.out, sb.String())
}
