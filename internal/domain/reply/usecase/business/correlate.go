package business

import (
	"strings"
	"time"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

// Source is the channel post whose forwarded copy is searched for
type Source struct {
	ChannelID int64
	PostID    int
	Title     string
	Text      string
	Date      time.Time
}

// Match is a discussion group message correlated with a source post
type Match struct {
	Message  domain.HistoryMessage
	Strategy string
}

type predicate struct {
	name  string
	match func(m domain.HistoryMessage, src Source, skew time.Duration) bool
}

// predicates are tried top to bottom for every candidate. Explicit ids rank
// above content and name heuristics, so the order must not change.
var predicates = []predicate{
	{"from_id", func(m domain.HistoryMessage, src Source, _ time.Duration) bool {
		return m.Forward.FromChannelID == src.ChannelID && postIDMatch(m, src)
	}},
	{"channel_id", func(m domain.HistoryMessage, src Source, _ time.Duration) bool {
		return m.SenderChannelID == src.ChannelID && postIDMatch(m, src)
	}},
	{"saved_from_peer", func(m domain.HistoryMessage, src Source, _ time.Duration) bool {
		return m.Forward.SavedFromChannelID == src.ChannelID && postIDMatch(m, src)
	}},
	{"content", func(m domain.HistoryMessage, src Source, skew time.Duration) bool {
		return fromChannel(m, src) && contentMatch(m, src, skew)
	}},
	{"from_name", func(m domain.HistoryMessage, src Source, skew time.Duration) bool {
		name := strings.ToLower(m.Forward.FromName)
		if name == "" || src.Title == "" || !strings.Contains(name, strings.ToLower(src.Title)) {
			return false
		}
		return postIDMatch(m, src) || contentMatch(m, src, skew)
	}},
}

// Correlate returns the first candidate that is the forwarded copy of src.
// Candidates without forward metadata are skipped.
func Correlate(candidates []domain.HistoryMessage, src Source, skew time.Duration) (*Match, bool) {
	for _, m := range candidates {
		if m.Forward == nil {
			continue
		}
		if name, ok := matchOne(m, src, skew); ok {
			return &Match{Message: m, Strategy: name}, true
		}
	}
	return nil, false
}

// matchOne runs the predicates on one candidate; a panicking predicate
// disqualifies the candidate
func matchOne(m domain.HistoryMessage, src Source, skew time.Duration) (name string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			name, ok = "", false
		}
	}()

	for _, p := range predicates {
		if p.match(m, src, skew) {
			return p.name, true
		}
	}
	return "", false
}

func fromChannel(m domain.HistoryMessage, src Source) bool {
	return m.Forward.FromChannelID == src.ChannelID ||
		m.SenderChannelID == src.ChannelID ||
		m.Forward.SavedFromChannelID == src.ChannelID
}

func postIDMatch(m domain.HistoryMessage, src Source) bool {
	return m.Forward.ChannelPost == src.PostID || m.Forward.SavedFromMsgID == src.PostID
}

func contentMatch(m domain.HistoryMessage, src Source, skew time.Duration) bool {
	if m.Text != src.Text {
		return false
	}
	d := m.Date.Sub(src.Date)
	if d < 0 {
		d = -d
	}
	return d < skew
}
