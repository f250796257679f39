package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/walkin/internal/app"
)

// Swapped out in tests.
var (
	bootstrap    = app.Bootstrap
	runDashboard = app.Run
)

// RootCmd returns the walkin command tree. Without a subcommand it opens the
// dashboard.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walkin",
		Short: "Walk-in clinic queue dashboard",
		Long: `walkin tracks today's walk-in patients from the front desk.

Run without arguments to open the dashboard, or use a subcommand
for one-off lookups and status changes from the shell.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(commandContext(cmd), optionsFrom(cmd))
		},
	}

	cmd.PersistentFlags().String("config", "", "path to config.toml (default ~/.config/walkin/config.toml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "mirror log entries to stderr")
	cmd.PersistentFlags().Bool("debug", false, "log at debug level")

	cmd.AddCommand(LoginCmd())
	cmd.AddCommand(LogoutCmd())
	cmd.AddCommand(WhoamiCmd())
	cmd.AddCommand(QueueCmd())
	for _, c := range TransitionCmds() {
		cmd.AddCommand(c)
	}
	cmd.AddCommand(HistoryCmd())
	cmd.AddCommand(SearchCmd())
	cmd.AddCommand(AnalyticsCmd())
	cmd.AddCommand(CounselorsCmd())
	cmd.AddCommand(PingCmd())
	cmd.AddCommand(LogsCmd())

	return cmd
}

func optionsFrom(cmd *cobra.Command) app.Options {
	configPath, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	debug, _ := cmd.Flags().GetBool("debug")
	return app.Options{ConfigPath: configPath, Verbose: verbose, Debug: debug}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// withServices bootstraps walkin for a single command and closes it after.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Services) error) error {
	svc, err := bootstrap(optionsFrom(cmd))
	if err != nil {
		return err
	}
	defer func() { _ = svc.Close() }()
	return fn(commandContext(cmd), svc)
}

// withSession is withServices for commands that need a logged-in user.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Services) error) error {
	return withServices(cmd, func(ctx context.Context, svc *app.Services) error {
		if _, err := svc.RequireSession(); err != nil {
			return err
		}
		return fn(ctx, svc)
	})
}

func printf(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func outln(cmd *cobra.Command, args ...any) {
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), args...)
}
