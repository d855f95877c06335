package cli

import (
	"fmt"
	"io"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/deps"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
)

// Reporter renders join progress on a terminal
type Reporter struct {
	out     io.Writer
	waiting bool
}

// NewReporter creates a reporter writing to out
func NewReporter(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

var _ deps.ProgressReporter = (*Reporter)(nil)

func (r *Reporter) Begin(account *domain.Account, total int) {
	name := account.ID
	if account.Self != nil {
		name = account.Self.DisplayName()
	}

	fmt.Fprintf(r.out, "\n%s\n", titleStyle.Render(fmt.Sprintf("=== Synchronizing channels for %s (API ID: %s) ===", name, account.ID)))
	if total == 0 {
		fmt.Fprintln(r.out, warnStyle.Render("No channels to join."))
		return
	}
	fmt.Fprintln(r.out, infoStyle.Render("Starting channel synchronization..."))
	fmt.Fprintf(r.out, "  • Attempting to join %d channels\n", total)
}

func (r *Reporter) Attempt(i, total int, ref domain.ChannelReference) {
	percent := float64(i-1) / float64(total) * 100
	fmt.Fprintln(r.out, warnStyle.Render(fmt.Sprintf("[%.1f%%] Processing %d/%d: %s", percent, i, total, ref)))
}

func (r *Reporter) Outcome(o entities.JoinOutcome) {
	fmt.Fprintf(r.out, "  • %s\n", outcomeLine(o))
}

func (r *Reporter) Waiting(reason entities.WaitReason, remaining, total int) {
	if !r.waiting {
		r.waiting = true
		switch reason {
		case entities.WaitFloodWait:
			fmt.Fprintln(r.out, warnStyle.Render(fmt.Sprintf("Rate limited by Telegram. Waiting %d seconds...", total)))
		case entities.WaitBatchCooldown:
			fmt.Fprintln(r.out, infoStyle.Render(fmt.Sprintf("Batch joined. Taking a %s break to avoid rate limits...", formatSeconds(total))))
		}
	}
	fmt.Fprintf(r.out, "\r  %s remaining ", formatSeconds(remaining))
}

func (r *Reporter) Resumed(reason entities.WaitReason) {
	r.waiting = false
	if reason == entities.WaitBatchCooldown {
		fmt.Fprintf(r.out, "\n%s\n", okStyle.Render("Cooldown complete. Continuing with channel joins..."))
		return
	}
	fmt.Fprintln(r.out, "\n  Continuing after wait period")
}

func (r *Reporter) Finish(s *entities.JoinSyncSummary) {
	fmt.Fprintf(r.out, "\n%s\n", infoStyle.Render("Channel Synchronization Summary:"))
	fmt.Fprintf(r.out, "  • %s\n", okStyle.Render(fmt.Sprintf("Successfully joined: %d", s.Joined)))
	fmt.Fprintf(r.out, "  • %s\n", infoStyle.Render(fmt.Sprintf("Already a member of: %d", s.AlreadyMember)))
	fmt.Fprintf(r.out, "  • %s\n", warnStyle.Render(fmt.Sprintf("Pending admin approval: %d", s.Pending)))
	fmt.Fprintf(r.out, "  • %s\n", errStyle.Render(fmt.Sprintf("Failed to join: %d", s.Failed)))
	fmt.Fprintf(r.out, "  • %s\n", errStyle.Render(fmt.Sprintf("Banned in channels: %d", s.Banned)))
	fmt.Fprintf(r.out, "  • %s\n", warnStyle.Render(fmt.Sprintf("Rate limited: %d", s.FloodWaited)))

	if len(s.PendingRefs) > 0 {
		fmt.Fprintf(r.out, "\n%s\n", warnStyle.Render("Channels awaiting admin approval:"))
		for _, ref := range s.PendingRefs {
			fmt.Fprintf(r.out, "  • %s\n", ref)
		}
	}
}

func outcomeLine(o entities.JoinOutcome) string {
	switch o.Kind {
	case entities.OutcomeJoined:
		title := o.Title
		if title == "" {
			title = string(o.Reference)
		}
		return okStyle.Render("Successfully joined " + title)
	case entities.OutcomeAlreadyMember:
		return infoStyle.Render("Already a member of " + string(o.Reference))
	case entities.OutcomePending:
		return warnStyle.Render("Join request sent for " + string(o.Reference) + ", awaiting admin approval")
	case entities.OutcomeFloodWait:
		return warnStyle.Render(fmt.Sprintf("Rate limited on %s, %d seconds to wait", o.Reference, o.WaitSeconds))
	case entities.OutcomeBanned:
		return errStyle.Render("Banned in " + string(o.Reference))
	default:
		if o.Reason == "" {
			return errStyle.Render("Failed to join " + string(o.Reference))
		}
		return errStyle.Render(fmt.Sprintf("Failed to join %s: %s", o.Reference, o.Reason))
	}
}

func formatSeconds(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
