package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

func newChannelsCmd(run Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "List and join channels",
	}

	cmd.AddCommand(
		newChannelsListCmd(run),
		newChannelsSyncCmd(run),
	)

	return cmd
}

func newChannelsListCmd(run Runner) *cobra.Command {
	var accountID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the channels and groups of a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				loadSessions(ctx, cmd.OutOrStdout(), d)

				acc, err := pickAccount(d.Accounts, accountID)
				if err != nil {
					return err
				}
				return listChannels(ctx, d, cmd.OutOrStdout(), acc)
			})
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "API id of the session, optional with a single session")

	return cmd
}

func newChannelsSyncCmd(run Runner) *cobra.Command {
	var (
		accountID string
		file      string
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Join every channel from the channel list",
		Long:  "sync joins each channel from the list, in order, on one session or on all of them. Flood waits and batch cooldowns are waited out in place.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), func(ctx context.Context, d Deps) error {
				loadSessions(ctx, cmd.OutOrStdout(), d)

				path := file
				if path == "" {
					path = d.Telegram.ChannelsFile
				}
				refs, err := d.References.Load(path)
				if err != nil {
					return err
				}

				if accountID == "" {
					return syncAll(ctx, d, cmd.OutOrStdout(), refs)
				}
				acc, err := pickAccount(d.Accounts, accountID)
				if err != nil {
					return err
				}
				_, err = d.Channels.Sync(ctx, acc, refs, NewReporter(cmd.OutOrStdout()))
				return err
			})
		},
	}

	cmd.Flags().StringVar(&accountID, "account", "", "API id of the session, all sessions when empty")
	cmd.Flags().StringVar(&file, "file", "", "channel list to use instead of CHANNELS_FILE")

	return cmd
}

// pickAccount returns the requested account, or the only one when id is empty
func pickAccount(accounts Accounts, id string) (*domain.Account, error) {
	if id != "" {
		acc, ok := accounts.Get(id)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
		return acc, nil
	}

	all := accounts.All()
	switch len(all) {
	case 0:
		return nil, domain.ErrNoActiveAccounts
	case 1:
		return all[0], nil
	default:
		return nil, errors.New("several sessions are active, choose one with --account")
	}
}

func listChannels(ctx context.Context, d Deps, out io.Writer, acc *domain.Account) error {
	name := acc.ID
	if acc.Self != nil {
		name = acc.Self.DisplayName()
	}
	fmt.Fprintf(out, "\n%s\n", infoStyle.Render(fmt.Sprintf("Listing channels for session %s (%s)...", acc.ID, name)))

	dialogs, err := d.Channels.ListChannels(ctx, acc.ID)
	if err != nil {
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Error displaying channels: %v", err)))
		return err
	}
	renderChannels(out, dialogs)
	return nil
}

func syncAll(ctx context.Context, d Deps, out io.Writer, refs []domain.ChannelReference) error {
	accounts := d.Accounts.All()
	if len(accounts) == 0 {
		fmt.Fprintln(out, errStyle.Render("No active sessions found. Please create or load a session first."))
		return domain.ErrNoActiveAccounts
	}

	fmt.Fprintf(out, "\n%s\n", okStyle.Render(fmt.Sprintf("Preparing to synchronize %d channels across %d sessions...", len(refs), len(accounts))))

	results, err := d.Channels.SyncAll(ctx, refs, NewReporter(out))
	for _, acc := range accounts {
		summary, ok := results[acc.ID]
		if !ok {
			continue
		}
		if summary.Success() {
			fmt.Fprintf(out, "\n%s\n", okStyle.Render("Successfully synchronized channels for API ID "+acc.ID))
		} else {
			fmt.Fprintf(out, "\n%s\n", warnStyle.Render("Completed synchronization for API ID "+acc.ID+" with some issues"))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%s\n", okBoldStyle.Render("Channel synchronization complete for all sessions!"))
	return nil
}
