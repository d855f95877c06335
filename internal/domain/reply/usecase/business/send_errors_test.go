package business

import (
	"errors"
	"testing"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

func TestClassifySendError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantClass   SendFailure
		wantSeconds int
	}{
		{"banned text", errors.New("You are BANNED from sending"), SendFailureForbidden, 0},
		{"not allowed", errors.New("sending is not allowed here"), SendFailureForbidden, 0},
		{"restricted kind", domain.NewPlatformError(domain.ErrorKindRestricted, errors.New("CHAT_WRITE_FORBIDDEN")), SendFailureForbidden, 0},
		{"approval", errors.New("messages must be approved by admins"), SendFailureApproval, 0},
		{"flood text", errors.New("FloodWait of 17 seconds"), SendFailureFloodWait, 17},
		{"flood without digits", errors.New("floodwait"), SendFailureFloodWait, 60},
		{"flood kind", domain.NewFloodWaitError(33, nil), SendFailureFloodWait, 33},
		{"other", errors.New("connection reset"), SendFailureOther, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			class, seconds := ClassifySendError(tt.err, 60)
			if class != tt.wantClass || seconds != tt.wantSeconds {
				t.Errorf("ClassifySendError() = (%v, %d), want (%v, %d)", class, seconds, tt.wantClass, tt.wantSeconds)
			}
		})
	}
}

func TestAccessDenied(t *testing.T) {
	denied := []string{"CHANNEL_PRIVATE: not accessible", "chat restricted", "user banned", "authorization required", "privacy settings"}
	for _, msg := range denied {
		if !accessDenied(errors.New(msg)) {
			t.Errorf("accessDenied(%q) = false, want true", msg)
		}
	}
	if accessDenied(errors.New("timeout")) {
		t.Error("accessDenied(timeout) = true, want false")
	}
}
