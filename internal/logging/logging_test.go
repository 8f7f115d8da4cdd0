package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func bufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	base.SetLevel(ParseLevel(level))
	return &Logger{entry: logrus.NewEntry(base)}, &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"warning", logrus.WarnLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.WarnLevel},
		{"verbose", logrus.WarnLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNamedAddsComponent(t *testing.T) {
	l, buf := bufferLogger("info")
	l.Named("sensors").Infof("polled %d sensors", 3)

	out := buf.String()
	if !strings.Contains(out, "component=sensors") {
		t.Fatalf("missing component field: %q", out)
	}
	if !strings.Contains(out, "polled 3 sensors") {
		t.Fatalf("missing message: %q", out)
	}
}

func TestLevelFiltering(t *testing.T) {
	l, buf := bufferLogger("warning")
	l.Debugf("hidden")
	l.Infof("hidden too")
	l.Warnf("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug/info should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warning should pass: %q", out)
	}

	l.SetLevel("debug")
	l.Debugf("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("SetLevel did not apply")
	}
	if l.Level() != "debug" {
		t.Fatalf("Level() = %q", l.Level())
	}
}

func TestCriticalfDoesNotExit(t *testing.T) {
	l, buf := bufferLogger("error")
	l.Criticalf("unauthorized: %d", 401)
	if !strings.Contains(buf.String(), "level=fatal") {
		t.Fatalf("expected fatal level entry, got %q", buf.String())
	}
}

func TestNewWritesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(dir, "info")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	l.Infof("hello file")
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sensor-bot.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello file") {
		t.Fatalf("log file content = %q", data)
	}
}

func TestCloseWithoutFile(t *testing.T) {
	if err := Discard().Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
