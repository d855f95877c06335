package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

var errMissingAPIKey = errors.New("completion API key is not set")

func newMonitorCmd(run Runner) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Answer messages on every session until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				loadSessions(ctx, cmd.OutOrStdout(), d)
				return monitor(ctx, d, cmd.OutOrStdout(), d.Monitor.Run)
			})
		},
	}
}

// monitor blocks in wait until ctx is done while the sessions answer
// messages
func monitor(ctx context.Context, d Deps, out io.Writer, wait func(context.Context)) error {
	accounts := d.Accounts.All()
	if len(accounts) == 0 {
		fmt.Fprintln(out, errStyle.Render("No active sessions. Please create at least one session first."))
		return domain.ErrNoActiveAccounts
	}
	if !d.Keys.HasAPIKey() {
		fmt.Fprintln(out, errStyle.Render("DeepSeek API key not set. Please set it first."))
		return errMissingAPIKey
	}

	fmt.Fprintf(out, "\n%s\n", okBoldStyle.Render("Starting monitoring..."))
	fmt.Fprintln(out, infoStyle.Render(fmt.Sprintf("Bot is now active and listening for messages in %d session(s)", len(accounts))))
	fmt.Fprintln(out, warnStyle.Render("Press Ctrl+C to stop"))

	wait(ctx)

	fmt.Fprintf(out, "\n%s\n", warnStyle.Render("Monitoring stopped."))
	return nil
}

func waitDone(ctx context.Context) {
	<-ctx.Done()
}
