package workflow

import (
	"errors"
	"fmt"
)

// ErrIllegalTransition is returned for an action that does not leave the
// visit's current status. Callers that only offer Available actions never
// see it.
var ErrIllegalTransition = errors.New("illegal transition")

// ValidationError means the transition was rejected locally and no remote
// call was made.
type ValidationError struct {
	Action Action
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// StepError means a remote write failed. Steps before it were applied and
// are not rolled back.
type StepError struct {
	Action    Action
	Row       int
	Step      Step
	Completed []Step
	Partial   bool
	Err       error
}

func (e *StepError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Step.FailMessage, e.Err)
	if e.Partial {
		msg += fmt.Sprintf(" (row %d partially updated; retry the action)", e.Row)
	}
	return msg
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// UserMessage returns the short message for a status line.
func UserMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	var se *StepError
	if errors.As(err, &se) {
		if se.Partial {
			return se.Step.FailMessage + " (partially applied)"
		}
		return se.Step.FailMessage
	}
	return err.Error()
}
