package clinic

import (
	"fmt"
	"strings"
)

// Status is the workflow position of a visit.
type Status int

const (
	StatusWaiting Status = iota
	StatusAssigned
	StatusInSession
	StatusCompleted
	StatusCancelled
)

var statusNames = [...]string{
	StatusWaiting:   "Waiting",
	StatusAssigned:  "Assigned",
	StatusInSession: "In Session",
	StatusCompleted: "Completed",
	StatusCancelled: "Cancelled",
}

// Statuses returns every status in workflow order.
func Statuses() []Status {
	return []Status{StatusWaiting, StatusAssigned, StatusInSession, StatusCompleted, StatusCancelled}
}

// String returns the canonical wire value stored in the sheet.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// IsTerminal reports whether the visit has ended.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Slug returns a lowercase, dash-separated form used for theme lookups.
func (s Status) Slug() string {
	return strings.ReplaceAll(strings.ToLower(s.String()), " ", "-")
}

// ParseStatus maps a sheet value onto a Status. Empty means Waiting.
func ParseStatus(value string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(value))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	switch key {
	case "", "waiting":
		return StatusWaiting, nil
	case "assigned":
		return StatusAssigned, nil
	case "insession":
		return StatusInSession, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	}
	return StatusWaiting, fmt.Errorf("unknown status %q", value)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
