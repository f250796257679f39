package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

// QueueCmd returns the queue command
func QueueCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List today's walk-in visits",
		Long: `List today's check-ins with their wait, status and counselor.

Use --filter to show one status, e.g. --filter waiting or
--filter "in session". The ROW column is what the status
commands (assign, start, complete, ...) expect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := queue.ParseFilter(filter)
			if err != nil {
				return err
			}
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				if err := svc.Refresh(ctx); err != nil {
					return fmt.Errorf("failed to load data: %w", err)
				}
				svc.Store.SetFilter(f)
				printQueue(cmd, svc.Store.Snapshot().Projection())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Status to show (all, waiting, assigned, in session, completed, cancelled)")

	return cmd
}

func printQueue(cmd *cobra.Command, p queue.Projection) {
	printf(cmd, "Waiting %d  Assigned %d  In Session %d  Completed %d  Total %d\n\n",
		p.Counts.Waiting, p.Counts.Assigned, p.Counts.InSession, p.Counts.Completed, p.Counts.Total)
	printf(cmd, "%s\n", p.Heading())

	if len(p.Visits) == 0 {
		if p.Filter.IsAll() {
			outln(cmd, "No patients checked in today.")
		} else {
			printf(cmd, "No patients with status: %s\n", p.Filter.Label())
		}
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ROW\tNAME\tCHECK-IN\tWAIT\tSTATUS\tCOUNSELOR\tFLAGS")
	for _, v := range p.Visits {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.Row,
			v.FullName(),
			v.CheckinClock(),
			waitText(v),
			v.Status,
			orDash(v.AssignedCounselor),
			flagText(v),
		)
	}
	_ = w.Flush()
}

func waitText(v clinic.PatientVisit) string {
	switch queue.ClassifyWait(v.Status, v.WaitMinutes) {
	case queue.WaitDone:
		return "ended"
	case queue.WaitCritical:
		return color.New(color.FgRed).Sprintf("%d min", v.WaitMinutes)
	case queue.WaitWarning:
		return color.New(color.FgYellow).Sprintf("%d min", v.WaitMinutes)
	default:
		return fmt.Sprintf("%d min", v.WaitMinutes)
	}
}

func flagText(v clinic.PatientVisit) string {
	flags := queue.Flags(v)
	labels := make([]string, 0, len(flags))
	for _, f := range flags {
		labels = append(labels, f.Label)
	}
	return strings.Join(labels, ", ")
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

// findVisit refreshes today's list and returns the visit on row.
func findVisit(ctx context.Context, svc *app.Services, row int) (clinic.PatientVisit, error) {
	if err := svc.Refresh(ctx); err != nil {
		return clinic.PatientVisit{}, fmt.Errorf("failed to load data: %w", err)
	}
	for _, v := range svc.Store.Snapshot().Visits {
		if v.Row == row {
			return v, nil
		}
	}
	return clinic.PatientVisit{}, fmt.Errorf("no visit on row %d today", row)
}

func warnf(cmd *cobra.Command, format string, args ...any) {
	out := cmd.ErrOrStderr()
	if out == nil {
		out = os.Stderr
	}
	_, _ = fmt.Fprintf(out, "%s %s\n", color.New(color.FgYellow).Sprint("!"), fmt.Sprintf(format, args...))
}
