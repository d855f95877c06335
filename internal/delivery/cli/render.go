package cli

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/infrastructure/telegram"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

const (
	nameWidth  = 40
	tableWidth = 72
)

func renderChannels(out io.Writer, dialogs []domain.DialogInfo) {
	if len(dialogs) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No channels or groups found."))
		return
	}

	rule := titleStyle.Render(strings.Repeat("=", tableWidth))
	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, okBoldStyle.Render(fmt.Sprintf("%-40s %-15s %-9s %-6s", "CHANNEL NAME", "CHANNEL ID", "COMMENTS", "UNREAD")))
	fmt.Fprintln(out, rule)

	for _, d := range dialogs {
		comments := "No"
		if d.LinkedChatID != 0 {
			comments = "Yes"
		}

		name := okStyle
		if !d.IsChannel {
			name = accentStyle
		}
		unread := dimStyle
		if d.UnreadCount > 0 {
			unread = warnStyle
		}

		fmt.Fprintf(out, "%s %s %s %s\n",
			name.Render(pad(truncate(d.Title, nameWidth), nameWidth)),
			warnStyle.Render(fmt.Sprintf("%-15d", d.ID)),
			infoStyle.Render(fmt.Sprintf("%-9s", comments)),
			unread.Render(fmt.Sprintf("%-6d", d.UnreadCount)),
		)
	}

	fmt.Fprintln(out, rule)
	fmt.Fprintln(out, okBoldStyle.Render(fmt.Sprintf("Total channels: %d", len(dialogs))))
}

func renderAccounts(out io.Writer, accounts []*domain.Account) {
	if len(accounts) == 0 {
		fmt.Fprintln(out, errStyle.Render("No active sessions. Please create or load a session first."))
		return
	}

	for i, acc := range accounts {
		user := "unknown"
		if acc.Self != nil {
			user = fmt.Sprintf("%s (%d)", acc.Self.DisplayName(), acc.Self.ID)
		}
		state := okStyle.Render("connected")
		if !acc.Client.IsConnected() {
			state = errStyle.Render("disconnected")
		}
		fmt.Fprintf(out, "%d. %s - User: %s [%s]\n",
			i+1,
			accentStyle.Render("API ID: "+acc.ID),
			okStyle.Render(user),
			state,
		)
	}
}

func renderStored(out io.Writer, ids []string, loaded func(string) bool) {
	if len(ids) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No saved sessions found in the sessions directory."))
		return
	}

	for _, id := range ids {
		mark := dimStyle.Render("not loaded")
		if loaded(id) {
			mark = okStyle.Render("loaded")
		}
		fmt.Fprintf(out, "- %s [%s]\n", accentStyle.Render("Session for API ID: "+id), mark)
	}
}

func renderLoadReport(out io.Writer, report *telegram.LoadReport) {
	if report.Total == 0 && len(report.Errors) == 0 {
		fmt.Fprintln(out, warnStyle.Render("No new sessions to load."))
		return
	}

	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("Loaded %d of %d sessions", report.Successful, report.Total)))
	for id, err := range report.Errors {
		if id == "" {
			id = "sessions"
		}
		fmt.Fprintln(out, errStyle.Render(fmt.Sprintf("Error loading session %s: %v", id, err)))
	}
}

func renderCreated(out io.Writer, acc *domain.Account) {
	name := acc.ID
	var id int64
	if acc.Self != nil {
		name = acc.Self.DisplayName()
		id = acc.Self.ID
	}
	fmt.Fprintln(out, okBoldStyle.Render(fmt.Sprintf("Successfully logged in as %s (%d)", name, id)))
	fmt.Fprintf(out, "Phone: %s\n", utils.MaskPhoneNumber(acc.Phone))
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
