package workflow

import (
	"fmt"
	"strings"

	"github.com/five82/walkin/internal/clinic"
)

// StepKind names a remote write.
type StepKind string

const (
	StepAssignCounselor StepKind = "assignCounselor"
	StepUpdateStatus    StepKind = "updateStatus"
	StepSaveNotes       StepKind = "saveNotes"
)

// Step is one remote write, described as data.
type Step struct {
	Kind      StepKind
	Row       int
	Status    clinic.Status
	Counselor string
	Notes     string
	// FailMessage is shown to the user when this step fails.
	FailMessage string
}

func (s Step) String() string {
	switch s.Kind {
	case StepAssignCounselor:
		return fmt.Sprintf("assignCounselor(row=%d, counselor=%q)", s.Row, s.Counselor)
	case StepUpdateStatus:
		return fmt.Sprintf("updateStatus(row=%d, status=%q)", s.Row, s.Status)
	case StepSaveNotes:
		return fmt.Sprintf("saveNotes(row=%d, notes=%q)", s.Row, s.Notes)
	}
	return string(s.Kind)
}

// Plan is the ordered list of writes for one transition.
type Plan struct {
	Action  Action
	Row     int
	Patient string
	From    clinic.Status
	To      clinic.Status
	Steps   []Step
	// Message is shown when every step succeeds. Empty means silent.
	Message string
}

// BuildPlan creates the write sequence for applying action to visit.
// This is a pure function; nothing is sent.
func BuildPlan(action Action, visit clinic.PatientVisit, in Input) (Plan, error) {
	guard := CanApply(TransitionContext{Action: action, Row: visit.Row, Status: visit.Status, Input: in})
	if !guard.Allowed {
		if guard.Illegal {
			return Plan{}, fmt.Errorf("%w: %s", ErrIllegalTransition, guard.Reason)
		}
		return Plan{}, &ValidationError{Action: action, Row: visit.Row, Reason: guard.Reason}
	}

	to, _ := action.Target()
	plan := Plan{
		Action:  action,
		Row:     visit.Row,
		Patient: visit.FullName(),
		From:    visit.Status,
		To:      to,
	}
	row := visit.Row
	status := func(fail string) Step {
		return Step{Kind: StepUpdateStatus, Row: row, Status: to, FailMessage: fail}
	}

	switch action {
	case ActionAssign:
		counselor := strings.TrimSpace(in.Counselor)
		plan.Steps = []Step{
			{Kind: StepAssignCounselor, Row: row, Counselor: counselor, FailMessage: "Failed to assign counselor"},
			status("Failed to update status"),
		}
		plan.Message = "Assigned to " + counselor
	case ActionStart:
		plan.Steps = []Step{status("Failed to start session")}
		plan.Message = "Session started!"
	case ActionComplete:
		plan.Steps = []Step{status("Failed to complete session")}
		plan.Message = "Session completed!"
	case ActionRevert:
		plan.Steps = []Step{status("Failed to update status")}
	case ActionCancel:
		reason := strings.TrimSpace(in.Reason)
		if reason == "" {
			reason = DefaultCancelReason
		}
		plan.Steps = []Step{
			{Kind: StepSaveNotes, Row: row, Notes: clinic.CancelNotePrefix + reason, FailMessage: "Failed to cancel visit"},
			status("Failed to cancel visit"),
		}
		plan.Message = "Visit cancelled"
	case ActionUndo:
		plan.Steps = []Step{
			{Kind: StepSaveNotes, Row: row, Notes: "", FailMessage: "Failed to undo"},
			status("Failed to undo"),
		}
	}
	return plan, nil
}
