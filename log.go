package hello

import (
	"fmt"
	"io"
)

// Level is a log severity.  Lines above the Logger's level are dropped.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var levelLetters = [...]string{"", "E", "W", "I", "D"}

func ParseLevel(s string) (Level, error) {
	switch s {
	case "none":
		return LevelNone, nil
	case "error":
		return LevelError, nil
	case "warn":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelNone, fmt.Errorf("unknown log level %q", s)
}

// Logger writes tagged lines in the ESP-IDF console format
//
//	I (1230) HelloWorld: Loop iteration: 2
//
// where the number is milliseconds since boot.
type Logger struct {
	w     io.Writer
	env   Env
	tag   string
	level Level
}

func NewLogger(w io.Writer, env Env, tag string, level Level) *Logger {
	return &Logger{w: w, env: env, tag: tag, level: level}
}

func (l *Logger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if level == LevelNone || level > l.level {
		return
	}
	fmt.Fprintf(l.w, "%s (%d) %s: %s\n", levelLetters[level],
		l.env.Ticks().Ms(), l.tag, fmt.Sprintf(format, args...))
}
