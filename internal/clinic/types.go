package clinic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CancelNotePrefix marks notes written by the cancel transition.
const CancelNotePrefix = "CANCELLED: "

// YesNo captures an intake form answer that may have been left blank.
type YesNo int

const (
	Unanswered YesNo = iota
	Yes
	No
)

func parseYesNo(value string) YesNo {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "true":
		return Yes
	case "no", "n", "false":
		return No
	}
	return Unanswered
}

func (v YesNo) String() string {
	switch v {
	case Yes:
		return "Yes"
	case No:
		return "No"
	}
	return ""
}

// PatientVisit is one check-in row from the intake sheet.
type PatientVisit struct {
	PatientID string
	Row       int

	FirstName   string
	LastName    string
	DateOfBirth string
	Phone       string

	Insured       YesNo
	InsuranceName string
	Pregnant      YesNo
	UAReady       YesNo
	Residential   YesNo
	ProgramName   string
	OnMAT         YesNo
	Medication    string

	Status            Status
	AssignedCounselor string
	Notes             string
	CheckinRaw        string
	CheckinAt         time.Time
	WaitMinutes       int
}

// FullName joins first and last name.
func (v PatientVisit) FullName() string {
	return strings.TrimSpace(v.FirstName + " " + v.LastName)
}

// CheckinClock returns the time-of-day portion of the check-in timestamp.
func (v PatientVisit) CheckinClock() string {
	if !v.CheckinAt.IsZero() {
		return v.CheckinAt.Format("3:04 PM")
	}
	parts := strings.Fields(v.CheckinRaw)
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// CancellationReason returns the reason recorded by a cancel, if any.
func (v PatientVisit) CancellationReason() (string, bool) {
	if !strings.HasPrefix(v.Notes, CancelNotePrefix) {
		return "", false
	}
	return strings.TrimPrefix(v.Notes, CancelNotePrefix), true
}

// Identity is the logged-in dashboard user as returned by the login action.
type Identity struct {
	Name     string `json:"name" toml:"name"`
	Username string `json:"username" toml:"username"`
	Role     string `json:"role" toml:"role"`
}

// DisplayName falls back to the username when the backend sends no name.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	return strings.TrimSpace(i.Username)
}

// VisitStats summarises a patient's visit history.
type VisitStats struct {
	TotalVisits int
	Completed   int
	Cancelled   int
	SuccessRate float64
}

// PatientHistory is the payload of getPatientHistory.
type PatientHistory struct {
	Patient PatientVisit
	Stats   VisitStats
	Visits  []PatientVisit
}

// SearchResult is the payload of searchPatients.
type SearchResult struct {
	Patients []PatientVisit
	Count    int
}

// Metrics are the headline numbers of getAnalytics.
type Metrics struct {
	TotalVisits    int
	UniquePatients int
	Completed      int
	Cancelled      int
	CompletionRate float64
}

// Bucket is one labelled count of a chart series.
type Bucket struct {
	Label string
	Count int
}

// Buckets is a chart series that keeps the backend's key order.
type Buckets []Bucket

// UnmarshalJSON decodes a JSON object while preserving key order.
func (b *Buckets) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*b = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("buckets: expected object, got %v", tok)
	}
	var out Buckets
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		n, _ := asInt(raw)
		out = append(out, Bucket{Label: key, Count: n})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}

// Get returns the count for label, or zero.
func (b Buckets) Get(label string) int {
	for _, bucket := range b {
		if bucket.Label == label {
			return bucket.Count
		}
	}
	return 0
}

// Max returns the largest count in the series.
func (b Buckets) Max() int {
	maxCount := 0
	for _, bucket := range b {
		if bucket.Count > maxCount {
			maxCount = bucket.Count
		}
	}
	return maxCount
}

// Charts groups the chart series of getAnalytics.
type Charts struct {
	Status      Buckets `json:"status"`
	DayOfWeek   Buckets `json:"dayOfWeek"`
	Hourly      Buckets `json:"hourly"`
	Insurance   Buckets `json:"insurance"`
	Counselor   Buckets `json:"counselor"`
	Residential Buckets `json:"residential"`
}

// Analytics is the payload of getAnalytics.
type Analytics struct {
	Days    int
	Metrics Metrics
	Charts  Charts
}
