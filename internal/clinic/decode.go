package clinic

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Sheet column headers as sent by the backend.
const (
	colRow            = "_row"
	colPatientID      = "Patient ID"
	colFirstName      = "First Name"
	colLastName       = "Last Name"
	colDateOfBirth    = "Date of Birth"
	colPhone          = "Phone Number"
	colInsured        = "Do you have insurance?"
	colInsuranceName  = "Name of Insurance"
	colPregnant       = "Are you currently pregnant?"
	colUAReady        = "Can you provide a UA sample?"
	colResidential    = "Are you in a Residential Program?"
	colProgramName    = "Program Name"
	colOnMAT          = "On Methadone or Suboxone?"
	colMedication     = "Which medication?"
	colStatus         = "Status"
	colCounselor      = "Assigned Counselor"
	colNotes          = "Notes"
	colTimestamp      = "Timestamp"
	colWaitMinutes    = "WaitMinutes"
	sheetTimestampFmt = "2006-01-02 15:04:05"
)

var timestampLayouts = []string{
	sheetTimestampFmt,
	"1/2/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"01/02/2006 15:04:05",
	time.RFC3339Nano,
	time.RFC3339,
}

type rawRow map[string]any

// decodeVisit turns a header-keyed sheet row into a PatientVisit.
func decodeVisit(raw rawRow) (PatientVisit, error) {
	status, err := ParseStatus(asString(raw[colStatus]))
	if err != nil {
		return PatientVisit{}, err
	}
	row, _ := asInt(raw[colRow])
	wait, _ := asInt(raw[colWaitMinutes])
	checkin := asString(raw[colTimestamp])

	return PatientVisit{
		PatientID:         asString(raw[colPatientID]),
		Row:               row,
		FirstName:         asString(raw[colFirstName]),
		LastName:          asString(raw[colLastName]),
		DateOfBirth:       asString(raw[colDateOfBirth]),
		Phone:             asString(raw[colPhone]),
		Insured:           parseYesNo(asString(raw[colInsured])),
		InsuranceName:     asString(raw[colInsuranceName]),
		Pregnant:          parseYesNo(asString(raw[colPregnant])),
		UAReady:           parseYesNo(asString(raw[colUAReady])),
		Residential:       parseYesNo(asString(raw[colResidential])),
		ProgramName:       asString(raw[colProgramName]),
		OnMAT:             parseYesNo(asString(raw[colOnMAT])),
		Medication:        asString(raw[colMedication]),
		Status:            status,
		AssignedCounselor: asString(raw[colCounselor]),
		Notes:             asString(raw[colNotes]),
		CheckinRaw:        checkin,
		CheckinAt:         parseTimestamp(checkin),
		WaitMinutes:       wait,
	}, nil
}

// skippedRow records a row that could not be normalized.
type skippedRow struct {
	Index int
	Row   int
	Err   error
}

func decodeVisits(raws []rawRow) ([]PatientVisit, []skippedRow) {
	visits := make([]PatientVisit, 0, len(raws))
	var skipped []skippedRow
	for i, raw := range raws {
		visit, err := decodeVisit(raw)
		if err != nil {
			row, _ := asInt(raw[colRow])
			skipped = append(skipped, skippedRow{Index: i, Row: row, Err: err})
			continue
		}
		visits = append(visits, visit)
	}
	return visits, skipped
}

func decodeStats(raw rawRow) VisitStats {
	total, _ := asInt(raw["totalVisits"])
	completed, _ := asInt(raw["completed"])
	cancelled, _ := asInt(raw["cancelled"])
	rate, _ := asFloat(raw["successRate"])
	return VisitStats{TotalVisits: total, Completed: completed, Cancelled: cancelled, SuccessRate: rate}
}

func decodeMetrics(raw rawRow) Metrics {
	total, _ := asInt(raw["totalVisits"])
	unique, _ := asInt(raw["uniquePatients"])
	completed, _ := asInt(raw["completed"])
	cancelled, _ := asInt(raw["cancelled"])
	rate, _ := asFloat(raw["completionRate"])
	return Metrics{
		TotalVisits:    total,
		UniquePatients: unique,
		Completed:      completed,
		Cancelled:      cancelled,
		CompletionRate: rate,
	}
}

func parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func asFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "%")), 64)
		return f, err == nil
	case int:
		return float64(v), true
	}
	return 0, false
}

func asInt(value any) (int, bool) {
	f, ok := asFloat(value)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}
