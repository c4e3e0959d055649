package logging

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestFileLogger(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "logs", "brahmand-t.log")
	log, err := New(Options{Level: "normal", Destination: dest, Mode: "overwrite"})
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hidden detail")
	log.Info("opened magazine", zap.String("id", "2"))
	log.Error("page failed", zap.Error(errors.New("boom")))
	if err := log.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "opened magazine") || !strings.Contains(out, "boom") {
		t.Errorf("missing entries in log:\n%s", out)
	}
	if strings.Contains(out, "hidden detail") {
		t.Error("debug entry written at normal level")
	}
}

func TestAppendMode(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "app.log")
	for _, msg := range []string{"first run", "second run"} {
		log, err := New(Options{Level: "debug", Destination: dest, Mode: "append"})
		if err != nil {
			t.Fatal(err)
		}
		log.Info(msg)
		_ = log.Close()
	}
	data, _ := os.ReadFile(dest)
	if !strings.Contains(string(data), "first run") || !strings.Contains(string(data), "second run") {
		t.Errorf("append mode lost entries:\n%s", data)
	}
}

func TestNoneLevelWritesNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "quiet.log")
	log, err := New(Options{Level: "none", Destination: dest})
	if err != nil {
		t.Fatal(err)
	}
	log.Info("should not appear")
	_ = log.Close()
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Errorf("log file created at level none: %v", err)
	}
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("discarded")
	if err := log.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
}
