package business

import (
	"strings"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

var webPrefixes = []string{
	"https://t.me/",
	"http://t.me/",
	"https://telegram.me/",
	"t.me/",
}

// Target is a parsed channel reference
type Target struct {
	Username   string
	InviteHash string
}

// IsInvite reports whether the target is a private invite link
func (t Target) IsInvite() bool {
	return t.InviteHash != ""
}

// ParseReference strips a web prefix and splits invites from public usernames
func ParseReference(ref domain.ChannelReference) (Target, error) {
	s := strings.TrimSpace(string(ref))
	for _, p := range webPrefixes {
		if strings.HasPrefix(s, p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	s = strings.TrimSuffix(s, "/")

	var t Target
	switch {
	case strings.HasPrefix(s, "+"):
		t.InviteHash = strings.TrimPrefix(s, "+")
	case strings.HasPrefix(s, "joinchat/"):
		t.InviteHash = strings.TrimPrefix(s, "joinchat/")
	default:
		t.Username = strings.TrimPrefix(s, "@")
	}

	if t.InviteHash == "" && t.Username == "" {
		return Target{}, domain.ErrInvalidReference
	}
	return t, nil
}
