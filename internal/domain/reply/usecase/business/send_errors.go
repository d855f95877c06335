package business

import (
	"github.com/s4nngr10r/tgexp/internal/domain"
)

// SendFailure is the class of a failed send
type SendFailure int

const (
	SendFailureOther SendFailure = iota
	SendFailureForbidden
	SendFailureApproval
	SendFailureFloodWait
)

func (f SendFailure) String() string {
	switch f {
	case SendFailureForbidden:
		return "forbidden"
	case SendFailureApproval:
		return "approval"
	case SendFailureFloodWait:
		return "flood_wait"
	default:
		return "other"
	}
}

// ClassifySendError sorts a send error into a failure class. For flood waits
// the parsed number of seconds is returned as well.
func ClassifySendError(err error, defaultWait int) (SendFailure, int) {
	if pe, ok := domain.AsPlatformError(err); ok {
		switch pe.Kind {
		case domain.ErrorKindBanned, domain.ErrorKindRestricted:
			return SendFailureForbidden, 0
		case domain.ErrorKindPending:
			return SendFailureApproval, 0
		case domain.ErrorKindFloodWait:
			if pe.Seconds > 0 {
				return SendFailureFloodWait, pe.Seconds
			}
			return SendFailureFloodWait, defaultWait
		}
	}

	msg := err.Error()
	switch {
	case domain.ContainsAny(msg, "not allowed", "restricted", "banned"):
		return SendFailureForbidden, 0
	case domain.ContainsAny(msg, "wait for admin approval", "must be approved"):
		return SendFailureApproval, 0
	case domain.ContainsAny(msg, "floodwait"):
		return SendFailureFloodWait, domain.FloodWaitSeconds(msg, defaultWait)
	default:
		return SendFailureOther, 0
	}
}

// accessDenied reports whether a read of the discussion group failed for a
// reason that also rules out writing to it
func accessDenied(err error) bool {
	return domain.ContainsAny(err.Error(), "not accessible", "restricted", "banned", "authorization", "privacy")
}
