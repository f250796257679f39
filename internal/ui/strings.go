package ui

import "strings"

// truncate shortens a string to the given limit, adding ellipsis if needed.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

// truncateMiddle shortens a path-like string, keeping more of the end.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 5 {
		return string(runes[:limit])
	}
	endLen := (limit - 3) * 2 / 3
	startLen := limit - 3 - endLen
	return string(runes[:startLen]) + "..." + string(runes[len(runes)-endLen:])
}

// padRight pads a string with spaces to the given width.
func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(r))
}

// orNA substitutes "N/A" for blank values.
func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return "N/A"
	}
	return value
}

// bar draws a horizontal bar of width cells scaled to count/max.
func bar(count, max, width int) string {
	if max <= 0 || width <= 0 || count <= 0 {
		return ""
	}
	n := count * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
