package logging

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/logtail"
)

func TestInit_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "walkin.log")

	logger, closer, err := Init(Options{Path: path})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	logger.Info().Str("action", "login").Msg("api request succeeded")
	logger.Debug().Msg("hidden at info level")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	entries, err := logtail.Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(entries), entries)
	}
	e := entries[0]
	if e.Level != zerolog.InfoLevel || e.Message != "api request succeeded" {
		t.Fatalf("entry = %+v", e)
	}
	if e.Time.IsZero() {
		t.Fatalf("entry has no parseable time: %q", e.Raw)
	}
	if !strings.Contains(e.Raw, `"service":"walkin"`) {
		t.Fatalf("entry missing service field: %q", e.Raw)
	}
}

func TestInit_ConsoleAndDebug(t *testing.T) {
	var console bytes.Buffer
	logger, closer, err := Init(Options{Console: &console, Debug: true})
	if err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	defer closer.Close()

	logger.Debug().Msg("refresh tick")
	if !strings.Contains(console.String(), "refresh tick") {
		t.Fatalf("console output = %q, want debug message", console.String())
	}
}

func TestInit_UnwritableDirFails(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, _, err := Init(Options{Path: filepath.Join(blocker, "walkin.log")}); err == nil {
		t.Fatalf("Init returned nil error for a path under a regular file")
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := WithContext(context.Background(), logger)

	got := FromContext(ctx)
	got.Info().Msg("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("context logger did not write to buffer: %q", buf.String())
	}
}
