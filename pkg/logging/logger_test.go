package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestComponentTagWithoutColors(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zapcore.DebugLevel, false)

	l.ComponentInfo(ComponentConfig, "configuration loaded", zap.String("path", "node.yaml"))
	_ = l.Sync()

	out := buf.String()
	if !strings.Contains(out, "[CONFIG] configuration loaded") {
		t.Fatalf("missing component tag: %q", out)
	}
	if !strings.Contains(out, "node.yaml") {
		t.Fatalf("missing field: %q", out)
	}
	if strings.Contains(out, "\033[") {
		t.Fatalf("unexpected color codes: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zapcore.WarnLevel, false)

	l.ComponentDebug(ComponentP2P, "dropped")
	l.ComponentInfo(ComponentP2P, "dropped too")
	l.ComponentWarn(ComponentP2P, "kept")
	_ = l.Sync()

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("debug/info should be filtered: %q", out)
	}
	if !strings.Contains(out, "[P2P] kept") {
		t.Fatalf("warn should be kept: %q", out)
	}
}

func TestColoredTag(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zapcore.DebugLevel, true)
	l.ComponentError(ComponentREST, "listener failed")
	_ = l.Sync()

	if !strings.Contains(buf.String(), BrightGreen+"[REST]"+Reset) {
		t.Fatalf("expected colored REST tag: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		want  zapcore.Level
		valid bool
	}{
		{"debug", zapcore.DebugLevel, true},
		{"info", zapcore.InfoLevel, true},
		{"warn", zapcore.WarnLevel, true},
		{"error", zapcore.ErrorLevel, true},
		{"loud", zapcore.InfoLevel, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.name)
		if tt.valid && err != nil {
			t.Errorf("ParseLevel(%q) unexpected error: %v", tt.name, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ParseLevel(%q) expected error", tt.name)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v; want %v", tt.name, got, tt.want)
		}
	}
}

func TestFileLoggerClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	l, err := NewFileLogger(path, zapcore.InfoLevel, false)
	if err != nil {
		t.Fatalf("NewFileLogger: %v", err)
	}

	l.ComponentInfo(ComponentNode, "node started")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if l.file != nil {
		t.Fatalf("file handle kept after Close")
	}
	// closing twice is a no-op for the file
	if err := l.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), "[NODE] node started") {
		t.Fatalf("log file missing entry: %q", raw)
	}
}

func TestCloseWithoutFile(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&buf, zapcore.InfoLevel, false)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := NewNopLogger().Close(); err != nil {
		t.Fatalf("nop Close: %v", err)
	}
}
