package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestRead(t *testing.T) {
	// Create a temporary log file
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	// Write 10 lines of content
	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{
			name:     "read all (0)",
			maxLines: 0,
			expected: expectedAll,
		},
		{
			name:     "read all (negative)",
			maxLines: -1,
			expected: expectedAll,
		},
		{
			name:     "read partial (5)",
			maxLines: 5,
			expected: expectedAll[5:],
		},
		{
			name:     "read exactly all (10)",
			maxLines: 10,
			expected: expectedAll,
		},
		{
			name:     "read more than exists (20)",
			maxLines: 20,
			expected: expectedAll,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"warn","service":"walkin","request_id":"abc","action":"updateStatus","elapsed":12.5,"time":"2026-10-16T09:15:00Z","message":"api request failed"}`
	got := Parse(line)

	if !got.Structured {
		t.Fatalf("Structured = false, want true")
	}
	if got.Level != zerolog.WarnLevel {
		t.Errorf("Level = %v, want warn", got.Level)
	}
	if got.Message != "api request failed" {
		t.Errorf("Message = %q", got.Message)
	}
	if got.Time.IsZero() || got.Time.Hour() != 9 {
		t.Errorf("Time = %v, want 09:15 UTC", got.Time)
	}
	wantFields := []Field{
		{Key: "action", Value: "updateStatus"},
		{Key: "elapsed", Value: "12.5"},
		{Key: "request_id", Value: "abc"},
	}
	if !reflect.DeepEqual(got.Fields, wantFields) {
		t.Errorf("Fields = %v, want %v", got.Fields, wantFields)
	}
	if v, ok := got.Field("action"); !ok || v != "updateStatus" {
		t.Errorf("Field(action) = %q, %v", v, ok)
	}
}

func TestParse_Unstructured(t *testing.T) {
	tests := []string{
		"panic: runtime error",
		"{not json",
		"",
	}
	for _, line := range tests {
		got := Parse(line)
		if got.Structured {
			t.Errorf("Parse(%q).Structured = true", line)
		}
		if got.Message != line || got.Raw != line {
			t.Errorf("Parse(%q) = %+v, want raw message", line, got)
		}
	}
}

func TestTailAndAtLeast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "walkin.log")
	body := strings.Join([]string{
		`{"level":"debug","message":"one"}`,
		`{"level":"info","message":"two"}`,
		``,
		`stray line`,
		`{"level":"error","message":"three"}`,
	}, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("Tail() returned %d entries, want 4 (blank skipped)", len(entries))
	}

	filtered := AtLeast(entries, zerolog.InfoLevel)
	var msgs []string
	for _, e := range filtered {
		msgs = append(msgs, e.Message)
	}
	want := []string{"two", "stray line", "three"}
	if !reflect.DeepEqual(msgs, want) {
		t.Errorf("AtLeast() messages = %v, want %v", msgs, want)
	}
}
