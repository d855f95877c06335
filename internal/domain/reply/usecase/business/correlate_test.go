package business

import (
	"testing"
	"time"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

func TestCorrelate(t *testing.T) {
	postDate := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	src := Source{ChannelID: 100, PostID: 42, Title: "Tech News", Text: "new release", Date: postDate}
	skew := 300 * time.Second

	tests := []struct {
		name         string
		candidates   []domain.HistoryMessage
		wantID       int
		wantStrategy string
		wantFound    bool
	}{
		{
			name: "from_id with channel post",
			candidates: []domain.HistoryMessage{
				{ID: 7, Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 42}},
			},
			wantID: 7, wantStrategy: "from_id", wantFound: true,
		},
		{
			name: "sender channel with saved message id",
			candidates: []domain.HistoryMessage{
				{ID: 8, SenderChannelID: 100, Forward: &domain.ForwardOrigin{SavedFromMsgID: 42}},
			},
			wantID: 8, wantStrategy: "channel_id", wantFound: true,
		},
		{
			name: "saved_from_peer",
			candidates: []domain.HistoryMessage{
				{ID: 9, Forward: &domain.ForwardOrigin{SavedFromChannelID: 100, SavedFromMsgID: 42}},
			},
			wantID: 9, wantStrategy: "saved_from_peer", wantFound: true,
		},
		{
			name: "content within skew",
			candidates: []domain.HistoryMessage{
				{ID: 10, Text: "new release", Date: postDate.Add(2 * time.Minute),
					Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 41}},
			},
			wantID: 10, wantStrategy: "content", wantFound: true,
		},
		{
			name: "content outside skew",
			candidates: []domain.HistoryMessage{
				{ID: 11, Text: "new release", Date: postDate.Add(-6 * time.Minute),
					Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 41}},
			},
			wantFound: false,
		},
		{
			name: "from_name contains title",
			candidates: []domain.HistoryMessage{
				{ID: 12, Forward: &domain.ForwardOrigin{FromName: "TECH NEWS official", ChannelPost: 42}},
			},
			wantID: 12, wantStrategy: "from_name", wantFound: true,
		},
		{
			name: "from_name without id or content",
			candidates: []domain.HistoryMessage{
				{ID: 13, Text: "other", Forward: &domain.ForwardOrigin{FromName: "Tech News", ChannelPost: 1}},
			},
			wantFound: false,
		},
		{
			name: "other channel with same post id",
			candidates: []domain.HistoryMessage{
				{ID: 14, Forward: &domain.ForwardOrigin{FromChannelID: 555, ChannelPost: 42}},
			},
			wantFound: false,
		},
		{
			name: "messages without forward are skipped",
			candidates: []domain.HistoryMessage{
				{ID: 15, SenderChannelID: 100, Text: "new release", Date: postDate},
			},
			wantFound: false,
		},
		{
			name: "first match in scan order wins",
			candidates: []domain.HistoryMessage{
				{ID: 20, Forward: &domain.ForwardOrigin{FromName: "Tech News", SavedFromMsgID: 42}},
				{ID: 21, Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 42}},
			},
			wantID: 20, wantStrategy: "from_name", wantFound: true,
		},
		{
			name: "id match ranks above content match on the same message",
			candidates: []domain.HistoryMessage{
				{ID: 22, Text: "new release", Date: postDate,
					Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 42}},
			},
			wantID: 22, wantStrategy: "from_id", wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Correlate(tt.candidates, src, skew)
			if found != tt.wantFound {
				t.Fatalf("Correlate() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if got.Message.ID != tt.wantID {
				t.Errorf("Correlate() message = %d, want %d", got.Message.ID, tt.wantID)
			}
			if got.Strategy != tt.wantStrategy {
				t.Errorf("Correlate() strategy = %q, want %q", got.Strategy, tt.wantStrategy)
			}
		})
	}
}

func TestCorrelateRecoversFromPanickingPredicate(t *testing.T) {
	saved := predicates
	defer func() { predicates = saved }()

	predicates = append([]predicate{{"boom", func(m domain.HistoryMessage, _ Source, _ time.Duration) bool {
		if m.ID == 1 {
			panic("broken metadata")
		}
		return false
	}}}, saved...)

	candidates := []domain.HistoryMessage{
		{ID: 1, Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 42}},
		{ID: 2, Forward: &domain.ForwardOrigin{FromChannelID: 100, ChannelPost: 42}},
	}

	got, found := Correlate(candidates, Source{ChannelID: 100, PostID: 42}, time.Minute)
	if !found || got.Message.ID != 2 {
		t.Fatalf("expected panicking candidate to be skipped, got %+v found=%v", got, found)
	}
}
