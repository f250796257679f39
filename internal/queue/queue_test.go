package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/walkin/internal/clinic"
)

func visit(row int, status clinic.Status) clinic.PatientVisit {
	return clinic.PatientVisit{Row: row, FirstName: "P", LastName: "R", Status: status}
}

func sampleVisits() []clinic.PatientVisit {
	return []clinic.PatientVisit{
		visit(2, clinic.StatusCompleted),
		visit(3, clinic.StatusWaiting),
		visit(4, clinic.StatusInSession),
		visit(5, clinic.StatusWaiting),
		visit(6, clinic.StatusCancelled),
		visit(7, clinic.StatusAssigned),
		visit(8, clinic.StatusCompleted),
	}
}

func rows(visits []clinic.PatientVisit) []int {
	out := make([]int, 0, len(visits))
	for _, v := range visits {
		out = append(out, v.Row)
	}
	return out
}

func TestFilterByStatus_AllKeepsOrder(t *testing.T) {
	visits := sampleVisits()
	got := FilterByStatus(visits, All)
	assert.Equal(t, rows(visits), rows(got))
}

func TestFilterByStatus_PreservesRelativeOrder(t *testing.T) {
	got := FilterByStatus(sampleVisits(), ByStatus(clinic.StatusWaiting))
	assert.Equal(t, []int{3, 5}, rows(got))

	got = FilterByStatus(sampleVisits(), ByStatus(clinic.StatusCompleted))
	assert.Equal(t, []int{2, 8}, rows(got))

	got = FilterByStatus(nil, ByStatus(clinic.StatusAssigned))
	assert.Empty(t, got)
}

func TestCountsByStatus_SumsToTotal(t *testing.T) {
	visits := sampleVisits()
	c := CountsByStatus(visits)

	assert.Equal(t, 2, c.Waiting)
	assert.Equal(t, 1, c.Assigned)
	assert.Equal(t, 1, c.InSession)
	assert.Equal(t, 2, c.Completed)
	assert.Equal(t, 1, c.Cancelled)
	assert.Equal(t, len(visits), c.Total)
	assert.Equal(t, c.Total, c.Waiting+c.Assigned+c.InSession+c.Completed+c.Cancelled)

	for _, f := range Filters() {
		assert.Len(t, FilterByStatus(visits, f), c.For(f), "filter %s", f)
	}
}

func TestCountsByStatus_WaitingAndAssigned(t *testing.T) {
	visits := []clinic.PatientVisit{
		visit(2, clinic.StatusWaiting),
		visit(3, clinic.StatusAssigned),
	}
	c := CountsByStatus(visits)
	assert.Equal(t, Counts{Waiting: 1, Assigned: 1, Total: 2}, c)
}

func TestFilter_CyclesThroughEveryStatus(t *testing.T) {
	f := All
	seen := []string{}
	for range Filters() {
		seen = append(seen, f.String())
		f = f.Next()
	}
	assert.Equal(t, All, f)
	assert.Equal(t, []string{"All", "Waiting", "Assigned", "In Session", "Completed", "Cancelled"}, seen)
}

func TestParseFilter(t *testing.T) {
	f, err := ParseFilter("all")
	require.NoError(t, err)
	assert.True(t, f.IsAll())

	f, err = ParseFilter("in-session")
	require.NoError(t, err)
	s, ok := f.Status()
	assert.True(t, ok)
	assert.Equal(t, clinic.StatusInSession, s)

	_, err = ParseFilter("")
	assert.Error(t, err)
	_, err = ParseFilter("lost")
	assert.Error(t, err)
}

func TestProject_Heading(t *testing.T) {
	p := Project(sampleVisits(), ByStatus(clinic.StatusCancelled))
	assert.Equal(t, "Cancelled (1)", p.Heading())
	assert.Equal(t, 7, p.Counts.Total)

	p = Project(sampleVisits(), All)
	assert.Equal(t, "All Patients (7)", p.Heading())
}

func TestClassifyWait_Boundaries(t *testing.T) {
	cases := []struct {
		status  clinic.Status
		minutes int
		want    WaitClass
	}{
		{clinic.StatusWaiting, 0, WaitOK},
		{clinic.StatusWaiting, 14, WaitOK},
		{clinic.StatusWaiting, 15, WaitWarning},
		{clinic.StatusAssigned, 29, WaitWarning},
		{clinic.StatusInSession, 30, WaitCritical},
		{clinic.StatusWaiting, 240, WaitCritical},
		{clinic.StatusCompleted, 999, WaitDone},
		{clinic.StatusCancelled, 5, WaitDone},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyWait(tc.status, tc.minutes), "%s/%d", tc.status, tc.minutes)
	}
}

func TestFlags_OrderAndDefaults(t *testing.T) {
	v := clinic.PatientVisit{
		Insured:     clinic.Yes,
		Pregnant:    clinic.Yes,
		UAReady:     clinic.Yes,
		Residential: clinic.Yes,
		OnMAT:       clinic.Yes,
		Medication:  "Suboxone",
	}
	got := Flags(v)
	require.Len(t, got, 5)
	assert.Equal(t, []FlagKind{FlagInsured, FlagPregnant, FlagUAReady, FlagResidential, FlagMAT},
		[]FlagKind{got[0].Kind, got[1].Kind, got[2].Kind, got[3].Kind, got[4].Kind})
	assert.Equal(t, "Insured", got[0].Label)
	assert.Equal(t, "Residential", got[3].Label)
	assert.Equal(t, "Suboxone", got[4].Label)

	selfPay := Flags(clinic.PatientVisit{Insured: clinic.No})
	assert.Equal(t, []Flag{{Kind: FlagSelfPay, Label: "Self-Pay"}}, selfPay)

	assert.Empty(t, Flags(clinic.PatientVisit{}))
}

func TestRatings(t *testing.T) {
	assert.Equal(t, RatingGood, SuccessRating(70))
	assert.Equal(t, RatingFair, SuccessRating(40))
	assert.Equal(t, RatingPoor, SuccessRating(39.9))
	assert.Equal(t, RatingGood, CompletionRating(85.5))
	assert.Equal(t, RatingFair, CompletionRating(12))
}

func TestDetailLabels(t *testing.T) {
	assert.Equal(t, "Medicaid", InsuranceLabel(clinic.PatientVisit{Insured: clinic.Yes, InsuranceName: "Medicaid"}))
	assert.Equal(t, "Self-Pay", InsuranceLabel(clinic.PatientVisit{}))
	assert.Equal(t, "Yes", ResidentialLabel(clinic.PatientVisit{Residential: clinic.Yes}))
	assert.Equal(t, "No", ResidentialLabel(clinic.PatientVisit{}))
}
