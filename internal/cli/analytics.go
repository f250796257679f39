package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
	"github.com/five82/walkin/internal/clinic"
	"github.com/five82/walkin/internal/queue"
)

const chartBarWidth = 30

// AnalyticsCmd returns the analytics command
func AnalyticsCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show visit metrics for the last days",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(ctx context.Context, svc *app.Services) error {
				window := days
				if window <= 0 {
					window = svc.Config.AnalyticsDays
				}
				a, err := svc.Client.Analytics(ctx, window)
				if err != nil {
					return fmt.Errorf("failed to load analytics: %w", err)
				}
				printAnalytics(cmd, window, a)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 0, "Window in days (default from config)")

	return cmd
}

func printAnalytics(cmd *cobra.Command, days int, a clinic.Analytics) {
	bold := color.New(color.Bold)
	m := a.Metrics

	rate := fmt.Sprintf("%.1f%%", m.CompletionRate)
	if queue.CompletionRating(m.CompletionRate) == queue.RatingGood {
		rate = color.New(color.FgGreen).Sprint(rate)
	} else {
		rate = color.New(color.FgYellow).Sprint(rate)
	}

	printf(cmd, "%s\n", bold.Sprintf("Last %d days", days))
	printf(cmd, "  Total Visits     %d\n", m.TotalVisits)
	printf(cmd, "  Unique Patients  %d\n", m.UniquePatients)
	printf(cmd, "  Completed        %d\n", m.Completed)
	printf(cmd, "  Cancelled        %d\n", m.Cancelled)
	printf(cmd, "  Completion Rate  %s\n", rate)

	printChart(cmd, "Visits by Status", a.Charts.Status)
	printChart(cmd, "Visits by Day of Week", a.Charts.DayOfWeek)
	printChart(cmd, "Visits by Hour", a.Charts.Hourly)
	printChart(cmd, "Insurance", clinic.Buckets{
		{Label: "Insured", Count: a.Charts.Insurance.Get("Yes")},
		{Label: "Self-Pay", Count: a.Charts.Insurance.Get("No")},
	})
	printChart(cmd, "Residential Program", clinic.Buckets{
		{Label: "Residential", Count: a.Charts.Residential.Get("Yes")},
		{Label: "Not Residential", Count: a.Charts.Residential.Get("No")},
	})
	printChart(cmd, "Visits by Counselor", a.Charts.Counselor)
}

func printChart(cmd *cobra.Command, title string, buckets clinic.Buckets) {
	outln(cmd)
	printf(cmd, "%s\n", color.New(color.Bold).Sprint(title))
	if len(buckets) == 0 {
		outln(cmd, "  no data")
		return
	}
	width := 0
	for _, b := range buckets {
		width = max(width, len([]rune(b.Label)))
	}
	maxCount := buckets.Max()
	for _, b := range buckets {
		cells := 0
		if maxCount > 0 && b.Count > 0 {
			cells = max(1, b.Count*chartBarWidth/maxCount)
		}
		printf(cmd, "  %-*s %s %d\n", width, b.Label, strings.Repeat("█", cells), b.Count)
	}
}
