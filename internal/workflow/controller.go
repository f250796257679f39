package workflow

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/five82/walkin/internal/clinic"
)

// Writer is the subset of the clinic client that transitions write through.
type Writer interface {
	UpdateStatus(ctx context.Context, row int, status clinic.Status) error
	AssignCounselor(ctx context.Context, row int, counselor string) error
	SaveNotes(ctx context.Context, row int, notes string) error
}

// RefreshFunc re-fetches the visit list after a successful transition.
type RefreshFunc func(ctx context.Context) error

// Outcome describes a transition whose writes all succeeded.
type Outcome struct {
	Plan    Plan
	Message string
	// RefreshErr is the failure of the follow-up refresh, if any. The
	// transition itself still succeeded.
	RefreshErr error
}

// Controller executes transition plans.
type Controller struct {
	writer  Writer
	refresh RefreshFunc
	logger  zerolog.Logger
}

// NewController builds a Controller. refresh may be nil.
func NewController(writer Writer, refresh RefreshFunc, logger zerolog.Logger) *Controller {
	return &Controller{writer: writer, refresh: refresh, logger: logger}
}

// Apply validates, plans and executes action against visit. Writes stop at
// the first failure. On full success the visit list is refreshed; the record
// passed in is never patched locally.
func (c *Controller) Apply(ctx context.Context, action Action, visit clinic.PatientVisit, in Input) (Outcome, error) {
	plan, err := BuildPlan(action, visit, in)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("action", string(action)).
			Int("row", visit.Row).
			Str("status", visit.Status.String()).
			Msg("transition rejected")
		return Outcome{}, err
	}

	logger := c.logger.With().
		Str("action", string(action)).
		Int("row", plan.Row).
		Str("from", plan.From.String()).
		Str("to", plan.To.String()).
		Logger()

	if action == ActionStart && visit.AssignedCounselor == "" {
		logger.Warn().Msg("starting session for visit without an assigned counselor")
	}

	if err := c.execute(ctx, plan, logger); err != nil {
		return Outcome{}, err
	}
	logger.Info().Msg("transition applied")

	out := Outcome{Plan: plan, Message: plan.Message}
	if c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			logger.Warn().Err(err).Msg("refresh after transition failed")
			out.RefreshErr = err
		}
	}
	return out, nil
}

func (c *Controller) execute(ctx context.Context, plan Plan, logger zerolog.Logger) error {
	completed := make([]Step, 0, len(plan.Steps))
	for _, step := range plan.Steps {
		if err := c.executeOne(ctx, step); err != nil {
			stepErr := &StepError{
				Action:    plan.Action,
				Row:       plan.Row,
				Step:      step,
				Completed: completed,
				Partial:   len(completed) > 0,
				Err:       err,
			}
			event := logger.Error()
			if stepErr.Partial {
				event = event.Bool("partial", true).Int("completed_steps", len(completed))
			}
			event.Err(err).Str("step", step.String()).Msg("transition step failed")
			return stepErr
		}
		completed = append(completed, step)
	}
	return nil
}

func (c *Controller) executeOne(ctx context.Context, step Step) error {
	switch step.Kind {
	case StepAssignCounselor:
		return c.writer.AssignCounselor(ctx, step.Row, step.Counselor)
	case StepUpdateStatus:
		return c.writer.UpdateStatus(ctx, step.Row, step.Status)
	case StepSaveNotes:
		return c.writer.SaveNotes(ctx, step.Row, step.Notes)
	default:
		return fmt.Errorf("unknown step kind: %s", step.Kind)
	}
}
