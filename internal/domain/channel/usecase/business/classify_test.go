package business

import (
	"errors"
	"testing"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/domain/channel/entities"
)

func TestClassifyJoinErrorText(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		kind entities.OutcomeKind
		wait int
	}{
		{"already in chat", "The authenticated user is already in chat", entities.OutcomeAlreadyMember, 0},
		{"already participant", "USER_ALREADY_PARTICIPANT: already a participant", entities.OutcomeAlreadyMember, 0},
		{"banned", "You are BANNED from this channel", entities.OutcomeBanned, 0},
		{"not allowed", "Joining is not allowed", entities.OutcomeBanned, 0},
		{"admin approval", "You must wait for admin approval", entities.OutcomePending, 0},
		{"needs approval", "This chat needs admin approval", entities.OutcomePending, 0},
		{"requested", "You have successfully requested to join this chat", entities.OutcomePending, 0},
		{"flood with seconds", "floodwait wait 5 seconds", entities.OutcomeFloodWait, 5},
		{"flood no digits", "FloodWait", entities.OutcomeFloodWait, 60},
		{"other", "USERNAME_NOT_OCCUPIED", entities.OutcomeFailed, 0},
		{"first match wins", "already a participant but banned", entities.OutcomeAlreadyMember, 0},
		{"banned beats flood", "banned, floodwait 30", entities.OutcomeBanned, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyJoinError("ref", errors.New(tt.msg), 60)
			if got.Kind != tt.kind {
				t.Errorf("kind = %v, want %v", got.Kind, tt.kind)
			}
			if got.WaitSeconds != tt.wait {
				t.Errorf("wait = %d, want %d", got.WaitSeconds, tt.wait)
			}
			if got.Reason != tt.msg {
				t.Errorf("reason = %q", got.Reason)
			}
		})
	}
}

func TestClassifyJoinErrorStructured(t *testing.T) {
	rpc := errors.New("rpc error")
	tests := []struct {
		err  error
		kind entities.OutcomeKind
		wait int
	}{
		{domain.NewPlatformError(domain.ErrorKindAlreadyMember, rpc), entities.OutcomeAlreadyMember, 0},
		{domain.NewPlatformError(domain.ErrorKindBanned, rpc), entities.OutcomeBanned, 0},
		{domain.NewPlatformError(domain.ErrorKindPending, rpc), entities.OutcomePending, 0},
		{domain.NewFloodWaitError(17, rpc), entities.OutcomeFloodWait, 17},
		{domain.NewFloodWaitError(0, rpc), entities.OutcomeFloodWait, 60},
		{domain.NewPlatformError(domain.ErrorKindNotFound, rpc), entities.OutcomeFailed, 0},
		{domain.NewPlatformError(domain.ErrorKindRestricted, errors.New("banned")), entities.OutcomeFailed, 0},
	}

	for _, tt := range tests {
		got := ClassifyJoinError("ref", tt.err, 60)
		if got.Kind != tt.kind || got.WaitSeconds != tt.wait {
			t.Errorf("ClassifyJoinError(%v) = %v/%d, want %v/%d", tt.err, got.Kind, got.WaitSeconds, tt.kind, tt.wait)
		}
	}
}
