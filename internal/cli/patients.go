package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

const minSearchLength = 2

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history PATIENT_ID",
		Short: "Show a patient's details and visit history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patientID := strings.TrimSpace(args[0])
			if patientID == "" {
				return errors.New("patient not found")
			}
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				h, err := svc.Client.PatientHistory(ctx, patientID)
				if err != nil {
					if clinic.IsKind(err, clinic.KindApplication) {
						return fmt.Errorf("patient not found: %w", err)
					}
					return err
				}
				printHistory(cmd, h)
				return nil
			})
		},
	}
}

func printHistory(cmd *cobra.Command, h clinic.PatientHistory) {
	p := h.Patient
	bold := color.New(color.Bold)

	printf(cmd, "%s\n", bold.Sprint(p.FullName()))
	printf(cmd, "  Patient ID:  %s\n", orDash(p.PatientID))
	printf(cmd, "  DOB:         %s\n", orDash(p.DateOfBirth))
	printf(cmd, "  Phone:       %s\n", orDash(p.Phone))
	printf(cmd, "  Insurance:   %s\n", queue.InsuranceLabel(p))
	printf(cmd, "  Residential: %s\n", queue.ResidentialLabel(p))
	outln(cmd)

	rate := fmt.Sprintf("%.1f%%", h.Stats.SuccessRate)
	switch queue.SuccessRating(h.Stats.SuccessRate) {
	case queue.RatingGood:
		rate = color.New(color.FgGreen).Sprint(rate)
	case queue.RatingFair:
		rate = color.New(color.FgYellow).Sprint(rate)
	default:
		rate = color.New(color.FgRed).Sprint(rate)
	}
	printf(cmd, "%s\n", bold.Sprint("Visit Statistics"))
	printf(cmd, "  Total %d  Completed %d  Cancelled %d  Success rate %s\n",
		h.Stats.TotalVisits, h.Stats.Completed, h.Stats.Cancelled, rate)
	outln(cmd)

	printf(cmd, "%s\n", bold.Sprintf("Visit History (%d visits)", len(h.Visits)))
	if len(h.Visits) == 0 {
		outln(cmd, "  No previous visits.")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "  #\tCHECK-IN\tSTATUS\tCOUNSELOR\tNOTES")
	for i, v := range h.Visits {
		_, _ = fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n",
			i+1, orDash(v.CheckinRaw), v.Status, orDash(v.AssignedCounselor), v.Notes)
	}
	_ = w.Flush()
}

// SearchCmd returns the search command
func SearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search TERM",
		Short: "Find patients by name, phone or ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.TrimSpace(strings.Join(args, " "))
			if len([]rune(term)) < minSearchLength {
				return fmt.Errorf("please enter at least %d characters", minSearchLength)
			}
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				result, err := svc.Client.SearchPatients(ctx, term)
				if err != nil {
					return fmt.Errorf("search failed: %w", err)
				}
				printSearch(cmd, result)
				return nil
			})
		},
	}
}

func printSearch(cmd *cobra.Command, result clinic.SearchResult) {
	if len(result.Patients) == 0 {
		outln(cmd, "No patients found matching your search")
		return
	}
	printf(cmd, "Found %d patient(s)\n\n", result.Count)
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tDOB\tPHONE\tLAST STATUS")
	for _, p := range result.Patients {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			orDash(p.PatientID), p.FullName(), orDash(p.DateOfBirth), orDash(p.Phone), p.Status)
	}
	_ = w.Flush()
}
