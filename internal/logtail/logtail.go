package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Field is one extra key of a log entry.
type Field struct {
	Key   string
	Value string
}

// Entry is a parsed log line.
type Entry struct {
	Time    time.Time
	Level   zerolog.Level
	Message string
	Fields  []Field
	// Raw is the original line; set for every entry.
	Raw string
	// Structured is false when the line was not a JSON object.
	Structured bool
}

// Field returns the value of key, if present.
func (e Entry) Field(key string) (string, bool) {
	for _, f := range e.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

var reservedKeys = map[string]bool{
	zerolog.TimestampFieldName: true,
	zerolog.LevelFieldName:     true,
	zerolog.MessageFieldName:   true,
	"service":                  true,
}

// Parse decodes one JSON log line. Lines that are not JSON objects come back
// unstructured with the whole line as the message.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Level: zerolog.NoLevel, Message: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		return entry
	}
	entry.Structured = true
	entry.Message = ""

	if v, ok := raw[zerolog.MessageFieldName].(string); ok {
		entry.Message = v
	}
	if v, ok := raw[zerolog.LevelFieldName].(string); ok {
		if lvl, err := zerolog.ParseLevel(v); err == nil {
			entry.Level = lvl
		}
	}
	if v, ok := raw[zerolog.TimestampFieldName].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			entry.Time = ts
		}
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		if !reservedKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, Field{Key: k, Value: formatValue(raw[k])})
	}
	return entry
}

// Tail reads and parses the last maxLines entries of path.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// AtLeast keeps entries at or above min. Unstructured lines are kept.
func AtLeast(entries []Entry, min zerolog.Level) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Structured || e.Level == zerolog.NoLevel || e.Level >= min {
			out = append(out, e)
		}
	}
	return out
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}
