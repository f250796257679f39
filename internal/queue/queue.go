// Package queue derives read-only projections of the day's visit list:
// per-status counts, filtered views, wait classes and intake flags.
// Everything here is a pure function of its inputs.
package queue

import (
	"fmt"
	"strings"

	"github.com/five82/walkin/internal/clinic"
)

// Filter selects which visits the queue shows. The zero value is All.
type Filter struct {
	byStatus bool
	status   clinic.Status
}

// All shows every visit in fetch order.
var All = Filter{}

// ByStatus shows visits with exactly the given status.
func ByStatus(s clinic.Status) Filter {
	return Filter{byStatus: true, status: s}
}

// Filters returns the selectable filters in display order.
func Filters() []Filter {
	out := []Filter{All}
	for _, s := range clinic.Statuses() {
		out = append(out, ByStatus(s))
	}
	return out
}

// IsAll reports whether the filter shows every visit.
func (f Filter) IsAll() bool {
	return !f.byStatus
}

// Status returns the filtered status and false for All.
func (f Filter) Status() (clinic.Status, bool) {
	return f.status, f.byStatus
}

func (f Filter) String() string {
	if !f.byStatus {
		return "All"
	}
	return f.status.String()
}

var filterLabels = map[clinic.Status]string{
	clinic.StatusWaiting:   "Waiting for Assignment",
	clinic.StatusAssigned:  "Assigned to Counselor",
	clinic.StatusInSession: "Currently In Session",
	clinic.StatusCompleted: "Completed Today",
	clinic.StatusCancelled: "Cancelled",
}

// Label is the section heading shown above the filtered list.
func (f Filter) Label() string {
	if !f.byStatus {
		return "All Patients"
	}
	return filterLabels[f.status]
}

// Next cycles to the following filter.
func (f Filter) Next() Filter {
	filters := Filters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return All
}

// ParseFilter accepts "All" or any status spelling ParseStatus knows.
func ParseFilter(value string) (Filter, error) {
	trimmed := strings.TrimSpace(value)
	if strings.EqualFold(trimmed, "all") {
		return All, nil
	}
	if trimmed == "" {
		return All, fmt.Errorf("empty filter")
	}
	s, err := clinic.ParseStatus(trimmed)
	if err != nil {
		return All, fmt.Errorf("unknown filter %q", value)
	}
	return ByStatus(s), nil
}

// Counts tallies visits per status.
type Counts struct {
	Waiting   int
	Assigned  int
	InSession int
	Completed int
	Cancelled int
	Total     int
}

// For returns the count a filter would show.
func (c Counts) For(f Filter) int {
	if !f.byStatus {
		return c.Total
	}
	switch f.status {
	case clinic.StatusWaiting:
		return c.Waiting
	case clinic.StatusAssigned:
		return c.Assigned
	case clinic.StatusInSession:
		return c.InSession
	case clinic.StatusCompleted:
		return c.Completed
	case clinic.StatusCancelled:
		return c.Cancelled
	}
	return 0
}

// CountsByStatus counts visits per status. Unset statuses were normalized to
// Waiting when the list was decoded.
func CountsByStatus(visits []clinic.PatientVisit) Counts {
	var c Counts
	for _, v := range visits {
		switch v.Status {
		case clinic.StatusWaiting:
			c.Waiting++
		case clinic.StatusAssigned:
			c.Assigned++
		case clinic.StatusInSession:
			c.InSession++
		case clinic.StatusCompleted:
			c.Completed++
		case clinic.StatusCancelled:
			c.Cancelled++
		}
	}
	c.Total = len(visits)
	return c
}

// FilterByStatus returns the visits matching f in their original order.
// All returns the input slice itself.
func FilterByStatus(visits []clinic.PatientVisit, f Filter) []clinic.PatientVisit {
	if !f.byStatus {
		return visits
	}
	out := make([]clinic.PatientVisit, 0, len(visits))
	for _, v := range visits {
		if v.Status == f.status {
			out = append(out, v)
		}
	}
	return out
}

// Projection bundles what a queue renderer needs.
type Projection struct {
	Counts Counts
	Filter Filter
	Visits []clinic.PatientVisit
}

// Project computes counts and the filtered list in one pass over the input.
func Project(visits []clinic.PatientVisit, f Filter) Projection {
	return Projection{
		Counts: CountsByStatus(visits),
		Filter: f,
		Visits: FilterByStatus(visits, f),
	}
}

// Heading is the filter label with the visible count, e.g. "Cancelled (2)".
func (p Projection) Heading() string {
	return fmt.Sprintf("%s (%d)", p.Filter.Label(), len(p.Visits))
}
