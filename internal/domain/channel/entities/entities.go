package entities

import "github.com/s4nngr10r/tgexp/internal/domain"

// OutcomeKind is the result class of one join attempt
type OutcomeKind int

const (
	OutcomeJoined OutcomeKind = iota
	OutcomeAlreadyMember
	OutcomePending
	OutcomeFloodWait
	OutcomeBanned
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeJoined:
		return "joined"
	case OutcomeAlreadyMember:
		return "already_member"
	case OutcomePending:
		return "pending"
	case OutcomeFloodWait:
		return "flood_wait"
	case OutcomeBanned:
		return "banned"
	default:
		return "failed"
	}
}

// JoinOutcome is the classified result of joining one reference
type JoinOutcome struct {
	Reference   domain.ChannelReference
	Kind        OutcomeKind
	Title       string
	WaitSeconds int
	Reason      string
}

// NonFatal reports whether the outcome leaves the account in (or queued for) the chat
func (o JoinOutcome) NonFatal() bool {
	return o.Kind == OutcomeJoined || o.Kind == OutcomeAlreadyMember || o.Kind == OutcomePending
}

// JoinSyncSummary aggregates the outcomes of one run
type JoinSyncSummary struct {
	AccountID     string
	Joined        int
	AlreadyMember int
	Pending       int
	Banned        int
	FloodWaited   int
	Failed        int
	PendingRefs   []domain.ChannelReference
	Outcomes      []JoinOutcome
}

// Add counts an outcome
func (s *JoinSyncSummary) Add(o JoinOutcome) {
	s.Outcomes = append(s.Outcomes, o)

	switch o.Kind {
	case OutcomeJoined:
		s.Joined++
	case OutcomeAlreadyMember:
		s.AlreadyMember++
	case OutcomePending:
		s.Pending++
		s.PendingRefs = append(s.PendingRefs, o.Reference)
	case OutcomeFloodWait:
		s.FloodWaited++
	case OutcomeBanned:
		s.Banned++
	default:
		s.Failed++
	}
}

// Total returns the number of counted outcomes
func (s *JoinSyncSummary) Total() int {
	return s.Joined + s.AlreadyMember + s.Pending + s.Banned + s.FloodWaited + s.Failed
}

// Success is false only when nothing was joined, pending or already joined
func (s *JoinSyncSummary) Success() bool {
	return !(s.Joined == 0 && s.Pending == 0 && s.AlreadyMember == 0)
}

// WaitReason tells a progress reporter why the run is paused
type WaitReason int

const (
	WaitPause WaitReason = iota
	WaitFloodWait
	WaitBatchCooldown
)

func (r WaitReason) String() string {
	switch r {
	case WaitFloodWait:
		return "flood_wait"
	case WaitBatchCooldown:
		return "batch_cooldown"
	default:
		return "pause"
	}
}
