package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info", log.InfoLevel, func(l *log.Logger) { l.Info("built order", "classes", 6) }, true},
		{"debug at info", log.InfoLevel, func(l *log.Logger) { l.Debug("phase", "name", "enumerate") }, false},
		{"debug at debug", log.DebugLevel, func(l *log.Logger) { l.Debug("phase", "name", "enumerate") }, true},
		{"warn at info", log.InfoLevel, func(l *log.Logger) { l.Warn("cache write failed") }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("logged = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressReportsElapsed(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	time.Sleep(5 * time.Millisecond)
	prog.done("Loaded order for rigetti_8")

	out := buf.String()
	if !strings.Contains(out, "Loaded order for rigetti_8 (") {
		t.Errorf("progress output = %q", out)
	}
	if !strings.Contains(out, "ms)") && !strings.Contains(out, "s)") {
		t.Errorf("progress output lacks a duration: %q", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("empty context should yield log.Default()")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if loggerFromContext(ctx) != custom {
		t.Fatal("loggerFromContext did not return the attached logger")
	}
	loggerFromContext(ctx).Info("hello")
	if buf.Len() == 0 {
		t.Error("attached logger did not write")
	}
}
