package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/capture"
	"lectern/internal/logging"
	"lectern/internal/testsupport"
)

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello from test", logging.String("component", "test"))

	content, err := os.ReadFile(logging.FilePath(cfg))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello from test") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestNewConsoleFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	component := logging.NewComponentLogger(logger, "pool")
	component.Info("workers started", logging.Int("workers", 3))
	component.Debug("suppressed at info level")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "[pool]") {
		t.Fatalf("expected component tag in output, got %q", text)
	}
	if !strings.Contains(text, "workers=3") {
		t.Fatalf("expected key=value attribute, got %q", text)
	}
	if strings.Contains(text, "suppressed at info level") {
		t.Fatalf("debug line leaked at info level: %q", text)
	}
	if strings.Contains(text, "\x1b[") {
		t.Fatalf("file output must carry no escape codes: %q", text)
	}
}

func TestNewJSONFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "json.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "debug",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("json message", logging.String("k", "v"))

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), `"k":"v"`) {
		t.Fatalf("expected JSON attribute, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewInvalidLevelDefaultsToInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "level.log")

	logger, err := logging.New(logging.Options{
		Format:      "console",
		Level:       "loud",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("info survives")
	logger.Debug("debug does not")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "info survives") || strings.Contains(string(content), "debug does not") {
		t.Fatalf("unexpected level behavior: %q", content)
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "context.log")

	logger, err := logging.New(logging.Options{
		Format:      "json",
		Level:       "info",
		OutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := capture.WithWorker(context.Background(), 2)
	ctx = capture.WithJobID(ctx, 41)
	logging.WithContext(ctx, logger).Info("claimed job")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, `"worker":2`) || !strings.Contains(text, `"job_id":41`) {
		t.Fatalf("expected context fields in output, got %q", text)
	}
}

func TestNewNopDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Info("discarded")
	logger.Error("also discarded", logging.Error(os.ErrNotExist))
}
