package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
	"github.com/five82/walkin/internal/workflow"
)

// TransitionCmds returns one command per workflow action.
func TransitionCmds() []*cobra.Command {
	return []*cobra.Command{
		AssignCmd(),
		actionCmd(workflow.ActionStart, "start ROW", "Start the session of an assigned visit"),
		actionCmd(workflow.ActionComplete, "complete ROW", "Complete an in-session visit"),
		actionCmd(workflow.ActionRevert, "revert ROW", "Move an in-session visit back to Assigned"),
		CancelCmd(),
		actionCmd(workflow.ActionUndo, "undo ROW", "Return a cancelled visit to the queue"),
	}
}

// AssignCmd returns the assign command
func AssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign ROW COUNSELOR",
		Short: "Assign a waiting visit to a counselor",
		Long: `Assign a waiting visit to a counselor and mark it Assigned.

COUNSELOR may be several words; quoting is optional:
  walkin assign 4 Dr. Sarah Johnson

Put -- before the arguments when a name starts with a dash:
  walkin assign -- 4 "-- Select Counselor --"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			counselor := strings.TrimSpace(strings.Join(args[1:], " "))
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				if !slices.Contains(svc.Config.SelectableCounselors(), counselor) {
					warnf(cmd, "%q is not in the configured counselor list", counselor)
				}
				return applyAction(ctx, cmd, svc, workflow.ActionAssign, row, workflow.Input{Counselor: counselor})
			})
		},
	}
}

// CancelCmd returns the cancel command
func CancelCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "cancel ROW",
		Short: "Cancel an assigned visit",
		Long: `Cancel an assigned visit. The reason is written to the visit notes;
"No reason provided" is recorded when --reason is empty.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				return applyAction(ctx, cmd, svc, workflow.ActionCancel, row, workflow.Input{Reason: reason})
			})
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Cancellation reason")

	return cmd
}

func actionCmd(action workflow.Action, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseRow(args[0])
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				return applyAction(ctx, cmd, svc, action, row, workflow.Input{})
			})
		},
	}
}

func applyAction(ctx context.Context, cmd *cobra.Command, svc *app.Services, action workflow.Action, row int, in workflow.Input) error {
	visit, err := findVisit(ctx, svc, row)
	if err != nil {
		return err
	}
	outcome, err := svc.Controller.Apply(ctx, action, visit, in)
	if err != nil {
		// StepError carries the backend reason.
		return err
	}
	message := outcome.Message
	if message == "" {
		message = fmt.Sprintf("%s is now %s", outcome.Plan.Patient, outcome.Plan.To)
	}
	printf(cmd, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), message)
	if outcome.RefreshErr != nil {
		warnf(cmd, "failed to reload the queue: %v", outcome.RefreshErr)
	}
	return nil
}

func parseRow(value string) (int, error) {
	row, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || row <= 0 {
		return 0, fmt.Errorf("invalid row %q: must be a positive number", value)
	}
	return row, nil
}
