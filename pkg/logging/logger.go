package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
	Dim   = "\033[2m"

	Red           = "\033[31m"
	White         = "\033[37m"
	Gray          = "\033[90m"
	BrightRed     = "\033[91m"
	BrightGreen   = "\033[92m"
	BrightYellow  = "\033[93m"
	BrightBlue    = "\033[94m"
	BrightMagenta = "\033[95m"
	BrightCyan    = "\033[96m"
	BrightWhite   = "\033[97m"
)

// ColoredLogger wraps zap.Logger with colored output
type ColoredLogger struct {
	*zap.Logger
	enableColors bool
	file         *os.File // set by NewFileLogger, released by Close
}

// Component represents different parts of the system for color coding
type Component string

const (
	ComponentNode   Component = "NODE"
	ComponentConfig Component = "CONFIG"
	ComponentREST   Component = "REST"
	ComponentP2P    Component = "P2P"
)

// getComponentColor returns the color for a specific component
func getComponentColor(component Component) string {
	switch component {
	case ComponentNode:
		return BrightBlue
	case ComponentConfig:
		return BrightYellow
	case ComponentREST:
		return BrightGreen
	case ComponentP2P:
		return BrightCyan
	default:
		return White
	}
}

// getLevelColor returns the color for a log level
func getLevelColor(level zapcore.Level) string {
	switch level {
	case zapcore.DebugLevel:
		return Gray
	case zapcore.InfoLevel:
		return BrightWhite
	case zapcore.WarnLevel:
		return BrightYellow
	case zapcore.ErrorLevel:
		return BrightRed
	case zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		return Red
	default:
		return White
	}
}

// coloredConsoleEncoder creates a custom encoder with colors
func coloredConsoleEncoder(enableColors bool) zapcore.Encoder {
	config := zap.NewDevelopmentEncoderConfig()

	// HH:MM:SS only
	config.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		timeStr := t.Format("15:04:05")
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s", Dim, timeStr, Reset))
		} else {
			enc.AppendString(timeStr)
		}
	}

	// Single letter level: D, I, W, E
	config.EncodeLevel = func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		levelMap := map[zapcore.Level]string{
			zapcore.DebugLevel: "D",
			zapcore.InfoLevel:  "I",
			zapcore.WarnLevel:  "W",
			zapcore.ErrorLevel: "E",
		}
		levelStr := levelMap[level]
		if levelStr == "" {
			levelStr = "?"
		}
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s%s", getLevelColor(level), Bold, levelStr, Reset))
		} else {
			enc.AppendString(levelStr)
		}
	}

	// File name without directory or extension
	config.EncodeCaller = func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		file := caller.File
		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}
		file = strings.TrimSuffix(file, ".go")
		if enableColors {
			enc.AppendString(fmt.Sprintf("%s%s%s", Dim, file, Reset))
		} else {
			enc.AppendString(file)
		}
	}

	return zapcore.NewConsoleEncoder(config)
}

// ParseLevel converts a level name (debug, info, warn, error) to a zap level.
func ParseLevel(name string) (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: allowed values: debug, info, warn, error", name)
	}
	return level, nil
}

// NewLogger creates a logger writing to w at the given minimum level.
func NewLogger(w io.Writer, level zapcore.Level, enableColors bool) *ColoredLogger {
	core := zapcore.NewCore(
		coloredConsoleEncoder(enableColors),
		zapcore.AddSync(w),
		level,
	)

	return &ColoredLogger{
		Logger:       zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		enableColors: enableColors,
	}
}

// NewColoredLogger creates a new colored logger on stdout
func NewColoredLogger(enableColors bool) (*ColoredLogger, error) {
	return NewLogger(os.Stdout, zapcore.DebugLevel, enableColors), nil
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(filePath string, level zapcore.Level, enableColors bool) (*ColoredLogger, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}
	l := NewLogger(file, level, enableColors)
	l.file = file
	return l, nil
}

// Close flushes buffered entries and closes the log file, if any. The
// logger must not be used afterwards.
func (l *ColoredLogger) Close() error {
	// Sync on a terminal or pipe fails with EINVAL; only the file result matters
	syncErr := l.Sync()
	if l.file == nil {
		return nil
	}
	closeErr := l.file.Close()
	l.file = nil
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}

// NewNopLogger returns a logger that discards everything.
func NewNopLogger() *ColoredLogger {
	return &ColoredLogger{Logger: zap.NewNop()}
}

func (l *ColoredLogger) tag(component Component, msg string) string {
	if l.enableColors {
		return fmt.Sprintf("%s[%s]%s %s", getComponentColor(component), component, Reset, msg)
	}
	return fmt.Sprintf("[%s] %s", component, msg)
}

// Component-specific logging methods
func (l *ColoredLogger) ComponentInfo(component Component, msg string, fields ...zap.Field) {
	l.Info(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentWarn(component Component, msg string, fields ...zap.Field) {
	l.Warn(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentError(component Component, msg string, fields ...zap.Field) {
	l.Error(l.tag(component, msg), fields...)
}

func (l *ColoredLogger) ComponentDebug(component Component, msg string, fields ...zap.Field) {
	l.Debug(l.tag(component, msg), fields...)
}
