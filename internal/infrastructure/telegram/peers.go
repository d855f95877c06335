package telegram

import (
	"sync"

	"github.com/gotd/td/tg"
)

// peerCache remembers channels, chats and users seen in responses and
// updates so that later calls can build input peers with access hashes.
type peerCache struct {
	mu       sync.RWMutex
	channels map[int64]*tg.Channel
	chats    map[int64]*tg.Chat
	users    map[int64]*tg.User
}

func newPeerCache() *peerCache {
	return &peerCache{
		channels: make(map[int64]*tg.Channel),
		chats:    make(map[int64]*tg.Chat),
		users:    make(map[int64]*tg.User),
	}
}

func (p *peerCache) storeChats(chats []tg.ChatClass) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, c := range chats {
		switch chat := c.(type) {
		case *tg.Channel:
			p.channels[chat.ID] = chat
		case *tg.Chat:
			p.chats[chat.ID] = chat
		}
	}
}

func (p *peerCache) storeUsers(users []tg.UserClass) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, u := range users {
		if user, ok := u.(*tg.User); ok {
			p.users[user.ID] = user
		}
	}
}

func (p *peerCache) storeEntities(e tg.Entities) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, ch := range e.Channels {
		p.channels[id] = ch
	}
	for id, chat := range e.Chats {
		p.chats[id] = chat
	}
	for id, user := range e.Users {
		p.users[id] = user
	}
}

func (p *peerCache) channel(id int64) (*tg.Channel, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ch, ok := p.channels[id]
	return ch, ok
}

// inputPeer returns the input peer of a channel or basic group
func (p *peerCache) inputPeer(id int64) (tg.InputPeerClass, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if ch, ok := p.channels[id]; ok {
		return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, true
	}
	if chat, ok := p.chats[id]; ok {
		return &tg.InputPeerChat{ChatID: chat.ID}, true
	}
	if user, ok := p.users[id]; ok {
		return &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, true
	}
	return nil, false
}

func inputChannel(ch *tg.Channel) *tg.InputChannel {
	return &tg.InputChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
}
