package telegram

import (
	"time"

	"github.com/gotd/td/tg"

	"github.com/s4nngr10r/tgexp/internal/domain"
)

func unixTime(ts int) time.Time {
	return time.Unix(int64(ts), 0).UTC()
}

// peerID returns the bare id of a peer and whether it is a channel
func peerID(p tg.PeerClass) (id int64, isChannel bool) {
	switch peer := p.(type) {
	case *tg.PeerChannel:
		return peer.ChannelID, true
	case *tg.PeerChat:
		return peer.ChatID, false
	case *tg.PeerUser:
		return peer.UserID, false
	default:
		return 0, false
	}
}

func channelIDOf(p tg.PeerClass) int64 {
	if id, ok := peerID(p); ok {
		return id
	}
	return 0
}

func forwardOrigin(m *tg.Message) *domain.ForwardOrigin {
	h, ok := m.GetFwdFrom()
	if !ok {
		return nil
	}

	fwd := &domain.ForwardOrigin{
		FromName: h.FromName,
		Date:     unixTime(h.Date),
	}
	if from, ok := h.GetFromID(); ok {
		switch peer := from.(type) {
		case *tg.PeerChannel:
			fwd.FromChannelID = peer.ChannelID
		case *tg.PeerUser:
			fwd.FromUserID = peer.UserID
		}
	}
	if post, ok := h.GetChannelPost(); ok {
		fwd.ChannelPost = post
	}
	if saved, ok := h.GetSavedFromPeer(); ok {
		fwd.SavedFromChannelID = channelIDOf(saved)
	}
	if msgID, ok := h.GetSavedFromMsgID(); ok {
		fwd.SavedFromMsgID = msgID
	}
	return fwd
}

func historyMessage(m *tg.Message) domain.HistoryMessage {
	hm := domain.HistoryMessage{
		ID:      m.ID,
		Text:    m.Message,
		Date:    unixTime(m.Date),
		Forward: forwardOrigin(m),
	}
	if from, ok := m.GetFromID(); ok {
		hm.SenderChannelID = channelIDOf(from)
	}
	return hm
}

func historyMessages(msgs []tg.MessageClass) []domain.HistoryMessage {
	out := make([]domain.HistoryMessage, 0, len(msgs))
	for _, raw := range msgs {
		if m, ok := raw.(*tg.Message); ok {
			out = append(out, historyMessage(m))
		}
	}
	return out
}

func chatInfo(peer tg.PeerClass, e tg.Entities) domain.ChatInfo {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		info := domain.ChatInfo{ID: p.ChannelID, IsChannel: true}
		if ch, ok := e.Channels[p.ChannelID]; ok {
			info.Title = ch.Title
			info.Username = ch.Username
		}
		return info
	case *tg.PeerChat:
		info := domain.ChatInfo{ID: p.ChatID}
		if chat, ok := e.Chats[p.ChatID]; ok {
			info.Title = chat.Title
		}
		return info
	case *tg.PeerUser:
		return domain.ChatInfo{ID: p.UserID}
	default:
		return domain.ChatInfo{}
	}
}

// inboundEvent converts a new message update into an event. Service
// messages and empty messages are not converted.
func inboundEvent(accountID string, msg tg.MessageClass, e tg.Entities) (*domain.InboundEvent, bool) {
	m, ok := msg.(*tg.Message)
	if !ok {
		return nil, false
	}

	ev := &domain.InboundEvent{
		AccountID: accountID,
		Chat:      chatInfo(m.PeerID, e),
		MessageID: m.ID,
		Text:      m.Message,
		IsPost:    m.Post,
		Out:       m.Out,
		Forward:   forwardOrigin(m),
		Date:      unixTime(m.Date),
	}

	if from, ok := m.GetFromID(); ok {
		ev.SenderID, _ = peerID(from)
	} else if user, isUser := m.PeerID.(*tg.PeerUser); isUser {
		ev.SenderID = user.UserID
	}
	return ev, true
}

func identity(u *tg.User) *domain.Identity {
	return &domain.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

func channelFull(full *tg.MessagesChatFull, id int64) (*domain.ChannelFull, error) {
	cf, ok := full.FullChat.(*tg.ChannelFull)
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	out := &domain.ChannelFull{ID: id, About: cf.About}
	if linked, ok := cf.GetLinkedChatID(); ok {
		out.LinkedChatID = linked
	}
	for _, c := range full.Chats {
		ch, ok := c.(*tg.Channel)
		if !ok || ch.ID != id {
			continue
		}
		out.Title = ch.Title
		if rights, ok := ch.GetDefaultBannedRights(); ok {
			out.SendMessagesDenied = rights.SendMessages
		}
	}
	return out, nil
}
