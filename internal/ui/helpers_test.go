package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/five82/walkin/internal/clinic"
)

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"fits", "Jane Doe", 10, "Jane Doe"},
		{"trims", "  Jane  ", 10, "Jane"},
		{"ellipsis", "Dr. Emily Rodriguez", 15, "Dr. Emily Ro..."},
		{"tiny", "abcdef", 2, "ab"},
		{"no limit", "abc", 0, "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := truncate(tc.in, tc.limit); got != tc.want {
				t.Fatalf("truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
			}
		})
	}
}

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	got := truncateMiddle("/home/user/.local/share/walkin/walkin.log", 20)
	if len([]rune(got)) != 20 {
		t.Fatalf("got %q (%d runes), want 20", got, len([]rune(got)))
	}
	if got[len(got)-10:] != "walkin.log" {
		t.Fatalf("truncateMiddle dropped the file name: %q", got)
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 4); got != "ab  " {
		t.Fatalf("padRight = %q, want %q", got, "ab  ")
	}
	if got := padRight("abcdef", 4); got != "abcdef" {
		t.Fatalf("padRight longer = %q, want unchanged", got)
	}
}

func TestBar(t *testing.T) {
	if got := bar(0, 10, 20); got != "" {
		t.Fatalf("bar(0) = %q, want empty", got)
	}
	if got := bar(10, 10, 4); got != "████" {
		t.Fatalf("bar(max) = %q, want full width", got)
	}
	if got := bar(1, 1000, 4); got != "█" {
		t.Fatalf("bar(small) = %q, want one cell", got)
	}
}

func TestFormatPercent(t *testing.T) {
	cases := map[float64]string{
		50:    "50%",
		66.7:  "66.7%",
		0:     "0%",
		100.0: "100%",
	}
	for in, want := range cases {
		if got := formatPercent(in); got != want {
			t.Fatalf("formatPercent(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2026, 3, 2, 14, 30, 0, 0, time.Local)
	if got := formatTimestamp(time.Time{}, now); got != "" {
		t.Fatalf("zero time = %q, want empty", got)
	}
	if got := formatTimestamp(now.Add(-10*time.Second), now); got != "2:29 PM (now)" {
		t.Fatalf("recent = %q", got)
	}
	if got := formatTimestamp(now.Add(-5*time.Minute), now); got != "2:25 PM (5m ago)" {
		t.Fatalf("minutes = %q", got)
	}
}

func TestNextWindow(t *testing.T) {
	if got := nextWindow(7); got != 30 {
		t.Fatalf("nextWindow(7) = %d, want 30", got)
	}
	if got := nextWindow(90); got != 7 {
		t.Fatalf("nextWindow(90) = %d, want 7", got)
	}
	if got := nextWindow(14); got != 7 {
		t.Fatalf("nextWindow(14) = %d, want 7", got)
	}
}

func TestYesNoBuckets(t *testing.T) {
	in := clinic.Buckets{{Label: "No", Count: 3}, {Label: "Yes", Count: 5}}
	out := yesNoBuckets(in, "Insured", "Self-Pay")
	if len(out) != 2 || out[0].Label != "Insured" || out[0].Count != 5 || out[1].Count != 3 {
		t.Fatalf("yesNoBuckets = %+v", out)
	}
}

func TestClassifyConnectionError(t *testing.T) {
	if got := classifyConnectionError(nil); got != "" {
		t.Fatalf("nil = %q, want empty", got)
	}
	if got := classifyConnectionError(errors.New("dial tcp: connection refused")); got != "UNREACHABLE" {
		t.Fatalf("refused = %q", got)
	}
	cfgErr := &clinic.Error{Kind: clinic.KindConfiguration, Message: "endpoint not set"}
	if got := classifyConnectionError(cfgErr); got != "NOT CONFIGURED" {
		t.Fatalf("config = %q", got)
	}
}
