package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd creates the tgexp command tree. Without a sub-command it
// opens the interactive menu on console.
func NewRootCmd(run Runner, console Console) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tgexp",
		Short:         "Multi-account Telegram auto-responder",
		Long:          "tgexp manages Telegram user sessions, joins channels from a list and answers chat messages and channel posts with short generated replies.",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				return newMenu(d, console, cmd.OutOrStdout()).Run(ctx)
			})
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("sessions-dir", "", "directory holding session and credentials files (SESSIONS_DIR)")
	flags.String("channels-file", "", "channel list used by sync (CHANNELS_FILE)")
	flags.String("log-level", "", "debug, info, warn or error (LOGGING_LEVEL)")
	flags.String("http-port", "", "port of the admin HTTP endpoint, empty to disable (SERVICE_PORT)")
	bindFlags(rootCmd, map[string]string{
		"sessions-dir":  "sessions_dir",
		"channels-file": "channels_file",
		"log-level":     "logging_level",
		"http-port":     "service_port",
	})

	rootCmd.AddCommand(
		newSessionCmd(run, console),
		newChannelsCmd(run),
		newMonitorCmd(run),
		newPersonaCmd(run),
	)

	return rootCmd
}

// bindFlags makes explicitly set flags override environment and defaults
func bindFlags(cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		if f := cmd.PersistentFlags().Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}

// loadSessions connects the stored sessions and reports the result
func loadSessions(ctx context.Context, out io.Writer, d Deps) {
	fmt.Fprintln(out, infoStyle.Render("Loading saved sessions..."))
	renderLoadReport(out, d.Accounts.LoadSessions(ctx))
}
