package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
	"github.com/five82/walkin/internal/config"
	"github.com/five82/walkin/internal/logtail"
)

// CounselorsCmd returns the counselors command
func CounselorsCmd() *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "counselors",
		Short: "List the counselors a visit can be assigned to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				names := svc.Config.SelectableCounselors()
				if remote {
					var err error
					names, err = svc.Client.Counselors(ctx)
					if err != nil {
						return err
					}
				}
				for _, name := range names {
					if name == config.CounselorPlaceholder {
						continue
					}
					outln(cmd, name)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&remote, "remote", false, "Ask the backend instead of the config file")

	return cmd
}

// PingCmd returns the ping command
func PingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test the connection to the clinic backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				printf(cmd, "API URL: %s\n", svc.Config.EndpointURL)
				n, err := svc.Client.Ping(ctx)
				if err != nil {
					printf(cmd, "%s API Connection Failed\n", color.New(color.FgRed).Sprint("✗"))
					return err
				}
				printf(cmd, "%s API Connection Successful! Counselors loaded: %d\n", color.New(color.FgGreen).Sprint("✓"), n)
				return nil
			})
		},
	}
}

// LogsCmd returns the logs command
func LogsCmd() *cobra.Command {
	var lines int
	var level string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Print the tail of walkin's log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minLevel := zerolog.TraceLevel
			if level != "" {
				parsed, err := zerolog.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("invalid level %q: %w", level, err)
				}
				minLevel = parsed
			}
			return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
				entries, err := logtail.Tail(svc.Config.LogPath(), lines)
				if err != nil {
					return err
				}
				if minLevel > zerolog.TraceLevel {
					entries = logtail.AtLeast(entries, minLevel)
				}
				if len(entries) == 0 {
					outln(cmd, "No log entries yet.")
					return nil
				}
				for _, e := range entries {
					outln(cmd, formatEntry(e))
				}
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of lines to read")
	cmd.Flags().StringVarP(&level, "level", "l", "", "Minimum level (debug, info, warn, error)")

	return cmd
}

func formatEntry(e logtail.Entry) string {
	if !e.Structured {
		return e.Raw
	}
	ts := "--:--:--"
	if !e.Time.IsZero() {
		ts = e.Time.Local().Format("15:04:05")
	}
	line := fmt.Sprintf("%s %-5s %s", ts, levelLabel(e.Level), e.Message)
	for _, f := range e.Fields {
		line += fmt.Sprintf(" %s=%s", f.Key, f.Value)
	}
	return line
}

func levelLabel(level zerolog.Level) string {
	switch level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		return color.New(color.FgRed).Sprint("ERROR")
	case zerolog.WarnLevel:
		return color.New(color.FgYellow).Sprint("WARN")
	case zerolog.InfoLevel:
		return color.New(color.FgGreen).Sprint("INFO")
	case zerolog.DebugLevel:
		return "DEBUG"
	case zerolog.NoLevel:
		return "-"
	}
	return level.String()
}
