package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
)

func newSessionCmd(run Runner, console Console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage Telegram sessions",
	}

	cmd.AddCommand(
		newSessionCreateCmd(run, console),
		newSessionListCmd(run),
		newSessionLoadCmd(run, console),
	)

	return cmd
}

func newSessionCreateCmd(run Runner, console Console) *cobra.Command {
	var creds telegram.Credentials

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Log a new account in and save its session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				return createSession(ctx, d, console, cmd.OutOrStdout(), creds)
			})
		},
	}

	cmd.Flags().StringVar(&creds.APIID, "api-id", "", "application API id")
	cmd.Flags().StringVar(&creds.APIHash, "api-hash", "", "application API hash")
	cmd.Flags().StringVar(&creds.Phone, "phone", "", "phone number with country code")

	return cmd
}

func newSessionListCmd(run Runner) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(_ context.Context, d Deps) error {
				ids, err := d.Accounts.StoredAccounts()
				if err != nil {
					return err
				}
				renderStored(cmd.OutOrStdout(), ids, func(id string) bool {
					_, ok := d.Accounts.Get(id)
					return ok
				})
				return nil
			})
		},
	}
}

func newSessionLoadCmd(run Runner, console Console) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Connect every saved session and show the active accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				d.Accounts.SetPrompter(console)
				loadSessions(ctx, cmd.OutOrStdout(), d)
				renderAccounts(cmd.OutOrStdout(), d.Accounts.All())
				return nil
			})
		},
	}
}

// createSession asks for missing credentials, logs the account in and
// lists its channels
func createSession(ctx context.Context, d Deps, console Console, out io.Writer, creds telegram.Credentials) error {
	fmt.Fprintf(out, "\n%s\n", header("Create New Session"))

	fields := []struct {
		value  *string
		prompt string
	}{
		{&creds.APIID, "Enter API ID: "},
		{&creds.APIHash, "Enter API Hash: "},
		{&creds.Phone, "Enter phone number (with country code): "},
	}
	for _, f := range fields {
		if *f.value != "" {
			continue
		}
		answer, err := console.Line(ctx, promptStyle.Render(f.prompt))
		if err != nil {
			return err
		}
		*f.value = answer
	}

	acc, err := d.Accounts.CreateSession(ctx, creds, console)
	if err != nil {
		fmt.Fprintln(out, errBoldStyle.Render(fmt.Sprintf("Error creating session: %v", err)))
		return err
	}
	renderCreated(out, acc)

	fmt.Fprintf(out, "\n%s\n", infoStyle.Render("Scanning and listing channels..."))
	dialogs, err := d.Channels.ListChannels(ctx, acc.ID)
	if err != nil {
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Error listing channels: %v", err)))
	} else {
		renderChannels(out, dialogs)
	}

	fmt.Fprintln(out, okBoldStyle.Render("Session created and initialized successfully"))
	return nil
}
