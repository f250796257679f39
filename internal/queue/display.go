package queue

import (
	"strings"

	"github.com/five82/walkin/internal/clinic"
)

// WaitClass grades how long a visit has been waiting.
type WaitClass string

const (
	WaitOK       WaitClass = "ok"
	WaitWarning  WaitClass = "warning"
	WaitCritical WaitClass = "critical"
	WaitDone     WaitClass = "done"
)

const (
	warningMinutes  = 15
	criticalMinutes = 30
)

// ClassifyWait grades a wait. Ended visits are always done, whatever the
// backend's minute count says.
func ClassifyWait(status clinic.Status, waitMinutes int) WaitClass {
	switch {
	case status.IsTerminal():
		return WaitDone
	case waitMinutes >= criticalMinutes:
		return WaitCritical
	case waitMinutes >= warningMinutes:
		return WaitWarning
	default:
		return WaitOK
	}
}

// FlagKind identifies an intake flag.
type FlagKind string

const (
	FlagInsured     FlagKind = "insured"
	FlagSelfPay     FlagKind = "self-pay"
	FlagPregnant    FlagKind = "pregnant"
	FlagUAReady     FlagKind = "ua-ready"
	FlagResidential FlagKind = "residential"
	FlagMAT         FlagKind = "mat"
)

// Flag is one display tag derived from intake answers.
type Flag struct {
	Kind  FlagKind
	Label string
}

// Flags derives the visit's tags in display order: insurance, pregnancy,
// UA readiness, residential program, medication-assisted treatment.
func Flags(v clinic.PatientVisit) []Flag {
	var flags []Flag
	switch v.Insured {
	case clinic.Yes:
		flags = append(flags, Flag{Kind: FlagInsured, Label: orDefault(v.InsuranceName, "Insured")})
	case clinic.No:
		flags = append(flags, Flag{Kind: FlagSelfPay, Label: "Self-Pay"})
	}
	if v.Pregnant == clinic.Yes {
		flags = append(flags, Flag{Kind: FlagPregnant, Label: "Pregnant"})
	}
	if v.UAReady == clinic.Yes {
		flags = append(flags, Flag{Kind: FlagUAReady, Label: "UA Ready"})
	}
	if v.Residential == clinic.Yes {
		flags = append(flags, Flag{Kind: FlagResidential, Label: orDefault(v.ProgramName, "Residential")})
	}
	if v.OnMAT == clinic.Yes {
		flags = append(flags, Flag{Kind: FlagMAT, Label: orDefault(v.Medication, "MAT")})
	}
	return flags
}

// Rating grades a percentage for display.
type Rating string

const (
	RatingGood Rating = "good"
	RatingFair Rating = "fair"
	RatingPoor Rating = "poor"
)

// SuccessRating grades a patient's visit success rate.
func SuccessRating(rate float64) Rating {
	switch {
	case rate >= 70:
		return RatingGood
	case rate >= 40:
		return RatingFair
	default:
		return RatingPoor
	}
}

// CompletionRating grades the clinic-wide completion rate.
func CompletionRating(rate float64) Rating {
	if rate >= 70 {
		return RatingGood
	}
	return RatingFair
}

// InsuranceLabel is the insurance line of the patient detail view.
func InsuranceLabel(v clinic.PatientVisit) string {
	if v.Insured == clinic.Yes {
		return orDefault(v.InsuranceName, "Insured")
	}
	return "Self-Pay"
}

// ResidentialLabel is the residential line of the patient detail view.
func ResidentialLabel(v clinic.PatientVisit) string {
	if v.Residential == clinic.Yes {
		return orDefault(v.ProgramName, "Yes")
	}
	return "No"
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}
