// Package workflow moves a visit through the intake workflow.
//
// Guards and the planner are pure: they decide whether a transition is legal
// and which remote writes it needs, without touching the network. The
// Controller is the only part that performs I/O, executing a plan step by
// step against a Writer and refreshing the visit list afterwards.
package workflow

import (
	"fmt"
	"strings"

	"github.com/five82/walkin/internal/clinic"
)

// CounselorPlaceholder is the roster's "nothing chosen" entry. It is never a
// valid assignment.
const CounselorPlaceholder = "-- Select Counselor --"

// DefaultCancelReason replaces an empty cancellation reason.
const DefaultCancelReason = "No reason provided"

// Action names a workflow transition.
type Action string

const (
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
	ActionRevert   Action = "revert"
	ActionCancel   Action = "cancel"
	ActionUndo     Action = "undo"
)

type edge struct {
	from clinic.Status
	to   clinic.Status
}

var transitions = map[Action]edge{
	ActionAssign:   {from: clinic.StatusWaiting, to: clinic.StatusAssigned},
	ActionStart:    {from: clinic.StatusAssigned, to: clinic.StatusInSession},
	ActionCancel:   {from: clinic.StatusAssigned, to: clinic.StatusCancelled},
	ActionComplete: {from: clinic.StatusInSession, to: clinic.StatusCompleted},
	ActionRevert:   {from: clinic.StatusInSession, to: clinic.StatusAssigned},
	ActionUndo:     {from: clinic.StatusCancelled, to: clinic.StatusWaiting},
}

// actionOrder is the order actions are offered in.
var actionOrder = []Action{ActionAssign, ActionStart, ActionComplete, ActionRevert, ActionCancel, ActionUndo}

// Actions returns every action in display order.
func Actions() []Action {
	out := make([]Action, len(actionOrder))
	copy(out, actionOrder)
	return out
}

// ParseAction accepts an action name case-insensitively.
func ParseAction(value string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("unknown action %q", value)
	}
	return a, nil
}

// Target returns the status an action leads to.
func (a Action) Target() (clinic.Status, bool) {
	e, ok := transitions[a]
	return e.to, ok
}

// Source returns the status an action starts from.
func (a Action) Source() (clinic.Status, bool) {
	e, ok := transitions[a]
	return e.from, ok
}

// Label is the button text for the action.
func (a Action) Label() string {
	switch a {
	case ActionAssign:
		return "Assign"
	case ActionStart:
		return "Start Session"
	case ActionComplete:
		return "Complete"
	case ActionRevert:
		return "Back to Assigned"
	case ActionCancel:
		return "Cancel"
	case ActionUndo:
		return "Undo Cancel"
	}
	return string(a)
}

// Available lists the actions legal from status, in display order.
func Available(status clinic.Status) []Action {
	var out []Action
	for _, a := range actionOrder {
		if transitions[a].from == status {
			out = append(out, a)
		}
	}
	return out
}

// Input carries the user-supplied values some actions need.
type Input struct {
	Counselor string
	Reason    string
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
	// Illegal is set when the action is not a transition out of the status.
	Illegal bool
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// TransitionContext provides context for transition guards.
type TransitionContext struct {
	Action Action
	Row    int
	Status clinic.Status
	Input  Input
}

// CanApply evaluates whether an action may run.
// Rules:
// - The action must be a transition out of the current status
// - The visit must have a sheet row
// - Assign needs a real counselor, not the placeholder
func CanApply(ctx TransitionContext) GuardResult {
	e, ok := transitions[ctx.Action]
	if !ok {
		return GuardResult{Illegal: true, Reason: fmt.Sprintf("unknown action %q", ctx.Action)}
	}
	if e.from != ctx.Status {
		return GuardResult{
			Illegal: true,
			Reason:  fmt.Sprintf("cannot %s a visit that is %s (must be %s)", ctx.Action, ctx.Status, e.from),
		}
	}

	if ctx.Row <= 0 {
		return GuardResult{Reason: "visit has no sheet row"}
	}

	if ctx.Action == ActionAssign && !IsSelectableCounselor(ctx.Input.Counselor) {
		return GuardResult{Reason: "Please select a counselor"}
	}

	return GuardResult{Allowed: true}
}

// IsSelectableCounselor reports whether name can be assigned.
func IsSelectableCounselor(name string) bool {
	trimmed := strings.TrimSpace(name)
	return trimmed != "" && trimmed != CounselorPlaceholder
}
