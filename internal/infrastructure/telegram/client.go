package telegram

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/s4nngr10r/tgexp/internal/domain"
	"github.com/s4nngr10r/tgexp/internal/utils"
)

const dialogsPageSize = 100

// statusRecorder is implemented by session storages that track account status
type statusRecorder interface {
	UpdateAccountStatus(ctx context.Context, status string, lastError *string) error
}

// MTProtoClient implements domain.PlatformClient using gotd/td library
type MTProtoClient struct {
	accountID string
	creds     Credentials
	phone     string

	storage  session.Storage
	prompter Prompter
	handler  domain.EventHandler

	// Connection state
	connected     bool
	connecting    bool
	disconnecting bool
	mu            sync.RWMutex
	cancelFunc    context.CancelFunc
	runDone       chan struct{}
	runCtx        context.Context
	inflight      sync.WaitGroup

	api   *tg.Client
	self  *domain.Identity
	peers *peerCache

	logger      zerolog.Logger
	rateLimiter *rate.Limiter
}

// MTProtoClientConfig holds configuration for MTProtoClient
type MTProtoClientConfig struct {
	AccountID   string
	Credentials Credentials
	Storage     session.Storage

	// Prompter is used when the stored session is not authorized.
	// Nil makes such a session fail to connect.
	Prompter Prompter

	// Handler receives new messages and channel posts. May be nil.
	Handler domain.EventHandler

	Logger zerolog.Logger
}

// NewMTProtoClient creates a new MTProto client instance
func NewMTProtoClient(cfg MTProtoClientConfig) (*MTProtoClient, error) {
	if cfg.AccountID == "" {
		return nil, fmt.Errorf("AccountID is required")
	}
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("session storage is required")
	}

	return &MTProtoClient{
		accountID: cfg.AccountID,
		creds:     cfg.Credentials,
		phone:     cfg.Credentials.Phone,
		storage:   cfg.Storage,
		prompter:  cfg.Prompter,
		handler:   cfg.Handler,
		peers:     newPeerCache(),
		logger: cfg.Logger.With().
			Str("component", "mtproto_client").
			Str("account_id", cfg.AccountID).
			Str("phone", utils.MaskPhoneNumber(cfg.Credentials.Phone)).
			Logger(),
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}, nil
}

// AccountID returns the identifier the session is stored under
func (c *MTProtoClient) AccountID() string {
	return c.accountID
}

// Connect connects to Telegram and authenticates the session.
// The caller should bound ctx; an interactive login may wait for input.
// The connection itself outlives ctx until Disconnect is called.
func (c *MTProtoClient) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.connecting || c.disconnecting {
		c.mu.Unlock()
		return fmt.Errorf("connection state change in progress")
	}
	c.connecting = true
	c.mu.Unlock()

	appID, err := c.creds.AppID()
	if err != nil {
		c.setConnecting(false)
		return err
	}

	c.logger.Info().Msg("connecting to Telegram")

	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewMessage(c.onNewMessage)
	dispatcher.OnNewChannelMessage(c.onNewChannelMessage)

	client := telegram.NewClient(appID, c.creds.APIHash, telegram.Options{
		SessionStorage: c.storage,
		UpdateHandler:  dispatcher,
	})

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	ready := make(chan struct{})
	errChan := make(chan error, 1)
	runDone := make(chan struct{})

	c.mu.Lock()
	c.cancelFunc = cancel
	c.runDone = runDone
	c.runCtx = runCtx
	c.mu.Unlock()

	go func() {
		defer close(runDone)
		err := client.Run(runCtx, func(ctx context.Context) error {
			if err := c.ensureAuthorized(ctx, client); err != nil {
				return err
			}

			me, err := client.Self(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch self: %w", err)
			}

			c.mu.Lock()
			c.api = client.API()
			c.self = identity(me)
			c.connected = true
			c.connecting = false
			c.mu.Unlock()

			c.logger.Info().
				Int64("user_id", me.ID).
				Str("username", me.Username).
				Msg("successfully connected to Telegram")
			c.recordStatus(AccountStatusActive, nil)
			close(ready)

			<-ctx.Done()
			return ctx.Err()
		})

		c.mu.Lock()
		wasConnected := c.connected
		c.connected = false
		c.connecting = false
		c.api = nil
		c.mu.Unlock()

		if wasConnected && runCtx.Err() == nil {
			c.logger.Warn().Err(err).Msg("connection to Telegram lost")
			msg := fmt.Sprint(err)
			c.recordStatus(AccountStatusInactive, &msg)
		}
		errChan <- err
	}()

	select {
	case <-ready:
		return nil
	case err := <-errChan:
		cancel()
		if err == nil {
			err = fmt.Errorf("client stopped before becoming ready")
		}
		msg := err.Error()
		c.recordStatus(AccountStatusInactive, &msg)
		return fmt.Errorf("failed to connect: %w", mapError(err))
	case <-ctx.Done():
		cancel()
		<-runDone
		return ctx.Err()
	}
}

// Disconnect disconnects from Telegram. The session is saved by gotd before
// shutdown. Multiple calls are safe.
func (c *MTProtoClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.disconnecting {
		c.mu.Unlock()
		c.logger.Debug().Msg("disconnect already in progress")
		return nil
	}
	cancelFunc := c.cancelFunc
	runDone := c.runDone
	if cancelFunc == nil {
		c.mu.Unlock()
		c.logger.Debug().Msg("already disconnected")
		return nil
	}
	c.disconnecting = true
	c.mu.Unlock()

	c.logger.Info().Msg("disconnecting from Telegram")

	cancelFunc()
	if runDone != nil {
		select {
		case <-runDone:
			c.logger.Debug().Msg("client stopped gracefully")
		case <-ctx.Done():
			c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
		}
	}

	handlersDone := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(handlersDone)
	}()
	select {
	case <-handlersDone:
	case <-ctx.Done():
		c.logger.Warn().Msg("event handlers still running after disconnect")
	}

	c.mu.Lock()
	c.api = nil
	c.connected = false
	c.cancelFunc = nil
	c.runDone = nil
	c.disconnecting = false
	c.mu.Unlock()

	c.recordStatus(AccountStatusInactive, nil)
	c.logger.Info().Msg("successfully disconnected from Telegram")
	return nil
}

// IsConnected checks if client is connected to Telegram
func (c *MTProtoClient) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Self returns the logged in user
func (c *MTProtoClient) Self(context.Context) (*domain.Identity, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.self == nil {
		return nil, domain.ErrNotConnected
	}
	me := *c.self
	return &me, nil
}

// ListDialogs enumerates every dialog of the account. Channels and
// supergroups get their linked discussion group resolved.
func (c *MTProtoClient) ListDialogs(ctx context.Context) ([]domain.DialogInfo, error) {
	api, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out        []domain.DialogInfo
		offsetPeer tg.InputPeerClass = &tg.InputPeerEmpty{}
		offsetDate int
		offsetID   int
		seen       = make(map[int64]bool)
	)

	for {
		res, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetPeer: offsetPeer,
			OffsetDate: offsetDate,
			OffsetID:   offsetID,
			Limit:      dialogsPageSize,
		})
		if err != nil {
			c.logger.Error().Err(err).Msg("failed to get dialogs")
			return nil, fmt.Errorf("failed to get dialogs: %w", mapError(err))
		}

		var (
			dialogs  []tg.DialogClass
			messages []tg.MessageClass
			more     bool
		)
		switch d := res.(type) {
		case *tg.MessagesDialogs:
			c.peers.storeChats(d.Chats)
			c.peers.storeUsers(d.Users)
			dialogs, messages = d.Dialogs, d.Messages
		case *tg.MessagesDialogsSlice:
			c.peers.storeChats(d.Chats)
			c.peers.storeUsers(d.Users)
			dialogs, messages = d.Dialogs, d.Messages
			more = len(d.Dialogs) == dialogsPageSize
		}

		added := 0
		var last *tg.Dialog
		for _, raw := range dialogs {
			dlg, ok := raw.(*tg.Dialog)
			if !ok {
				continue
			}
			last = dlg
			id, _ := peerID(dlg.Peer)
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, c.dialogInfo(dlg))
			added++
		}

		if !more || last == nil || added == 0 {
			break
		}

		next, ok := c.peers.inputPeer(channelIDOf(last.Peer))
		if !ok {
			break
		}
		offsetPeer = next
		offsetID = last.TopMessage
		offsetDate = topMessageDate(messages, last)
	}

	for i := range out {
		if !out[i].IsChannel && !out[i].IsGroup {
			continue
		}
		if _, ok := c.peers.channel(out[i].ID); !ok {
			continue
		}
		full, err := c.GetFullChannel(ctx, out[i].ID)
		if err != nil {
			c.logger.Warn().Err(err).Int64("chat_id", out[i].ID).Msg("failed to get full channel info")
			continue
		}
		out[i].LinkedChatID = full.LinkedChatID
	}

	c.logger.Debug().Int("dialogs_count", len(out)).Msg("fetched dialogs")
	return out, nil
}

func (c *MTProtoClient) dialogInfo(dlg *tg.Dialog) domain.DialogInfo {
	id, _ := peerID(dlg.Peer)
	info := domain.DialogInfo{ID: id, UnreadCount: dlg.UnreadCount}

	switch dlg.Peer.(type) {
	case *tg.PeerChannel:
		if ch, ok := c.peers.channel(id); ok {
			info.Title = ch.Title
			info.Username = ch.Username
			info.IsChannel = ch.Broadcast
			info.IsGroup = ch.Megagroup
		}
	case *tg.PeerChat:
		info.IsGroup = true
		c.peers.mu.RLock()
		if chat, ok := c.peers.chats[id]; ok {
			info.Title = chat.Title
		}
		c.peers.mu.RUnlock()
	case *tg.PeerUser:
		c.peers.mu.RLock()
		if user, ok := c.peers.users[id]; ok {
			info.Title = identity(user).DisplayName()
			info.Username = user.Username
		}
		c.peers.mu.RUnlock()
	}
	return info
}

func topMessageDate(messages []tg.MessageClass, dlg *tg.Dialog) int {
	want, _ := peerID(dlg.Peer)
	for _, raw := range messages {
		switch m := raw.(type) {
		case *tg.Message:
			if id, _ := peerID(m.PeerID); id == want && m.ID == dlg.TopMessage {
				return m.Date
			}
		case *tg.MessageService:
			if id, _ := peerID(m.PeerID); id == want && m.ID == dlg.TopMessage {
				return m.Date
			}
		}
	}
	return 0
}

// JoinPublic resolves a public username and joins the channel
func (c *MTProtoClient) JoinPublic(ctx context.Context, username string) (string, error) {
	api, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}

	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		c.logger.Error().Err(err).Str("username", username).Msg("failed to resolve channel")
		return "", fmt.Errorf("failed to resolve channel: %w", mapError(err))
	}
	c.peers.storeChats(resolved.Chats)
	c.peers.storeUsers(resolved.Users)

	id, isChannel := peerID(resolved.Peer)
	ch, ok := c.peers.channel(id)
	if !isChannel || !ok {
		return "", domain.NewPlatformError(domain.ErrorKindNotFound,
			fmt.Errorf("resolved peer @%s is not a channel", username))
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	if _, err := api.ChannelsJoinChannel(ctx, inputChannel(ch)); err != nil {
		return "", fmt.Errorf("failed to join channel: %w", mapError(err))
	}

	return ch.Title, nil
}

// JoinInvite imports a private invite hash
func (c *MTProtoClient) JoinInvite(ctx context.Context, hash string) (string, error) {
	api, err := c.acquire(ctx)
	if err != nil {
		return "", err
	}

	updates, err := api.MessagesImportChatInvite(ctx, hash)
	if err != nil {
		return "", fmt.Errorf("failed to import invite: %w", mapError(err))
	}

	var chats []tg.ChatClass
	switch u := updates.(type) {
	case *tg.Updates:
		chats = u.Chats
		c.peers.storeUsers(u.Users)
	case *tg.UpdatesCombined:
		chats = u.Chats
		c.peers.storeUsers(u.Users)
	}
	c.peers.storeChats(chats)

	for _, raw := range chats {
		switch chat := raw.(type) {
		case *tg.Channel:
			return chat.Title, nil
		case *tg.Chat:
			return chat.Title, nil
		}
	}
	return "", nil
}

// GetFullChannel fetches full info of a channel seen before by this client
func (c *MTProtoClient) GetFullChannel(ctx context.Context, chatID int64) (*domain.ChannelFull, error) {
	ch, ok := c.peers.channel(chatID)
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	api, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	full, err := api.ChannelsGetFullChannel(ctx, inputChannel(ch))
	if err != nil {
		return nil, fmt.Errorf("failed to get full channel: %w", mapError(err))
	}
	c.peers.storeChats(full.Chats)
	c.peers.storeUsers(full.Users)

	return channelFull(full, chatID)
}

// GetHistory returns up to limit recent messages, newest first
func (c *MTProtoClient) GetHistory(ctx context.Context, chatID int64, limit int) ([]domain.HistoryMessage, error) {
	peer, ok := c.peers.inputPeer(chatID)
	if !ok {
		return nil, domain.ErrChatNotFound
	}

	api, err := c.acquire(ctx)
	if err != nil {
		return nil, err
	}

	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", mapError(err))
	}

	switch m := res.(type) {
	case *tg.MessagesMessages:
		c.peers.storeChats(m.Chats)
		c.peers.storeUsers(m.Users)
		return historyMessages(m.Messages), nil
	case *tg.MessagesMessagesSlice:
		c.peers.storeChats(m.Chats)
		c.peers.storeUsers(m.Users)
		return historyMessages(m.Messages), nil
	case *tg.MessagesChannelMessages:
		c.peers.storeChats(m.Chats)
		c.peers.storeUsers(m.Users)
		return historyMessages(m.Messages), nil
	default:
		return nil, nil
	}
}

// SendMessage posts text into the chat, optionally as a reply
func (c *MTProtoClient) SendMessage(ctx context.Context, chatID int64, text string, replyTo int) error {
	peer, ok := c.peers.inputPeer(chatID)
	if !ok {
		return domain.ErrChatNotFound
	}

	api, err := c.acquire(ctx)
	if err != nil {
		return err
	}

	req := &tg.MessagesSendMessageRequest{
		Peer:     peer,
		Message:  text,
		RandomID: rand.Int64(),
	}
	if replyTo != 0 {
		req.ReplyTo = &tg.InputReplyToMessage{ReplyToMsgID: replyTo}
	}

	if _, err := api.MessagesSendMessage(ctx, req); err != nil {
		return fmt.Errorf("failed to send message: %w", mapError(err))
	}
	return nil
}

// acquire returns the API client once connected and rate limited
func (c *MTProtoClient) acquire(ctx context.Context) (*tg.Client, error) {
	c.mu.RLock()
	api := c.api
	connected := c.connected
	c.mu.RUnlock()

	if !connected || api == nil {
		return nil, domain.ErrNotConnected
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	return api, nil
}

func (c *MTProtoClient) onNewMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
	c.dispatch(ctx, e, u.Message)
	return nil
}

func (c *MTProtoClient) onNewChannelMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
	c.dispatch(ctx, e, u.Message)
	return nil
}

// dispatch converts an update and hands it to the handler without blocking
// the update loop
func (c *MTProtoClient) dispatch(ctx context.Context, e tg.Entities, msg tg.MessageClass) {
	c.peers.storeEntities(e)

	if c.handler == nil {
		return
	}
	ev, ok := inboundEvent(c.accountID, msg, e)
	if !ok {
		return
	}

	c.mu.RLock()
	runCtx := c.runCtx
	c.mu.RUnlock()
	if runCtx == nil {
		runCtx = ctx
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.handler.HandleEvent(runCtx, ev)
	}()
}

func (c *MTProtoClient) setConnecting(v bool) {
	c.mu.Lock()
	c.connecting = v
	c.mu.Unlock()
}

func (c *MTProtoClient) recordStatus(status string, lastError *string) {
	rec, ok := c.storage.(statusRecorder)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rec.UpdateAccountStatus(ctx, status, lastError); err != nil {
		c.logger.Warn().Err(err).Str("status", status).Msg("failed to update account status")
	}
}

var _ domain.PlatformClient = (*MTProtoClient)(nil)
