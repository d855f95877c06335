package business

import (
	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
)

// joinRules is the ordered text table for errors without a structured kind.
// First match wins.
var joinRules = []struct {
	kind    entities.OutcomeKind
	needles []string
}{
	{entities.OutcomeAlreadyMember, []string{"already in chat", "already a participant"}},
	{entities.OutcomeBanned, []string{"banned", "not allowed"}},
	{entities.OutcomePending, []string{"wait for admin approval", "needs admin approval", "successfully requested to join"}},
	{entities.OutcomeFloodWait, []string{"floodwait"}},
}

// ClassifyJoinError turns a failed join into an outcome
func ClassifyJoinError(ref domain.ChannelReference, err error, defaultWait int) entities.JoinOutcome {
	out := entities.JoinOutcome{Reference: ref, Reason: err.Error()}

	if pe, ok := domain.AsPlatformError(err); ok {
		switch pe.Kind {
		case domain.ErrorKindAlreadyMember:
			out.Kind = entities.OutcomeAlreadyMember
		case domain.ErrorKindBanned:
			out.Kind = entities.OutcomeBanned
		case domain.ErrorKindPending:
			out.Kind = entities.OutcomePending
		case domain.ErrorKindFloodWait:
			out.Kind = entities.OutcomeFloodWait
			out.WaitSeconds = pe.Seconds
			if out.WaitSeconds <= 0 {
				out.WaitSeconds = defaultWait
			}
		default:
			out.Kind = entities.OutcomeFailed
		}
		return out
	}

	return classifyText(out, defaultWait)
}

func classifyText(out entities.JoinOutcome, defaultWait int) entities.JoinOutcome {
	for _, rule := range joinRules {
		if !domain.ContainsAny(out.Reason, rule.needles...) {
			continue
		}
		out.Kind = rule.kind
		if rule.kind == entities.OutcomeFloodWait {
			out.WaitSeconds = domain.FloodWaitSeconds(out.Reason, defaultWait)
		}
		return out
	}

	out.Kind = entities.OutcomeFailed
	return out
}
