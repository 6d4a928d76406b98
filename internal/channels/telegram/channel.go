package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/carelay/internal/bus"
	"github.com/nextlevelbuilder/carelay/internal/channels"
	"github.com/nextlevelbuilder/carelay/internal/config"
)

// Channel connects to Telegram via the Bot API using long polling.
// It publishes messages from monitored chats and delivers relay text.
type Channel struct {
	*channels.BaseChannel
	bot        *telego.Bot
	config     config.TelegramConfig
	pollCancel context.CancelFunc // cancels the long polling context
	pollDone   chan struct{}      // closed when polling goroutine exits
}

// New creates a new Telegram channel from config. monitored lists the chat ids
// whose messages are relayed.
func New(cfg config.TelegramConfig, msgBus bus.MessageRouter, monitored []string) (*Channel, error) {
	opts := []telego.BotOption{telego.WithDiscardLogger()}

	if cfg.Proxy != "" {
		proxyURL, parseErr := url.Parse(cfg.Proxy)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid proxy URL %q: %w", cfg.Proxy, parseErr)
		}
		opts = append(opts, telego.WithHTTPClient(&http.Client{
			Transport: &http.Transport{
				Proxy: http.ProxyURL(proxyURL),
			},
		}))
	}
	if cfg.APIServer != "" {
		opts = append(opts, telego.WithAPIServer(strings.TrimRight(cfg.APIServer, "/")))
	}

	bot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &Channel{
		BaseChannel: channels.NewBaseChannel("telegram", msgBus, monitored),
		bot:         bot,
		config:      cfg,
	}, nil
}

// Start begins long polling for Telegram updates.
func (c *Channel) Start(ctx context.Context) error {
	slog.Info("starting telegram bot (polling mode)", "monitored_chats", c.MonitoredCount())

	// Stop() cancels this context to cleanly shut down long polling.
	pollCtx, cancel := context.WithCancel(ctx)
	c.pollCancel = cancel
	c.pollDone = make(chan struct{})

	updates, err := c.bot.UpdatesViaLongPolling(pollCtx, &telego.GetUpdatesParams{
		Timeout: 30,
		AllowedUpdates: []string{
			"message",
			"channel_post",
		},
	})
	if err != nil {
		cancel()
		return fmt.Errorf("start long polling: %w", err)
	}

	c.SetRunning(true)
	slog.Info("telegram bot connected, listening for messages", "username", c.bot.Username())

	go func() {
		defer close(c.pollDone)
		for {
			select {
			case <-pollCtx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					slog.Info("telegram updates channel closed")
					return
				}
				c.handleUpdate(update)
			}
		}
	}()

	return nil
}

// Stop shuts down the Telegram bot by cancelling the long polling context
// and waiting for the polling goroutine to exit.
func (c *Channel) Stop(_ context.Context) error {
	slog.Info("stopping telegram bot")
	c.SetRunning(false)

	if c.pollCancel != nil {
		c.pollCancel()
	}

	// Wait for the polling goroutine to fully exit so that
	// Telegram releases the getUpdates lock before a new instance starts.
	if c.pollDone != nil {
		select {
		case <-c.pollDone:
			slog.Info("telegram bot stopped")
		case <-time.After(10 * time.Second):
			slog.Warn("telegram polling goroutine did not exit within timeout")
		}
	}

	return nil
}

// Resolve looks up a chat, channel, or user by numeric id or @username.
func (c *Channel) Resolve(ctx context.Context, id string) (channels.Entity, error) {
	chatID, err := chatIDFor(id)
	if err != nil {
		return channels.Entity{}, &channels.ResolveError{ID: id, Err: err}
	}

	chat, err := c.bot.GetChat(ctx, &telego.GetChatParams{ChatID: chatID})
	if err != nil {
		return channels.Entity{}, &channels.ResolveError{ID: id, Err: err}
	}

	return channels.Entity{
		ID:    id,
		Peer:  chat.ID,
		Title: chatTitle(chat.Title, chat.Username, chat.FirstName),
		Kind:  chat.Type,
	}, nil
}

// SendText delivers text to a resolved entity.
func (c *Channel) SendText(ctx context.Context, to channels.Entity, text string) error {
	target := tu.ID(to.Peer)
	if to.Peer == 0 {
		var err error
		if target, err = chatIDFor(to.ID); err != nil {
			return &channels.SendError{Entity: to, Err: err}
		}
	}

	if _, err := c.bot.SendMessage(ctx, tu.Message(target, text)); err != nil {
		return &channels.SendError{Entity: to, Err: err}
	}
	return nil
}

// Me describes the relay bot, calling getMe.
func (c *Channel) Me(ctx context.Context) (BotInfo, error) {
	me, err := c.bot.GetMe(ctx)
	if err != nil {
		return BotInfo{}, fmt.Errorf("getMe: %w", err)
	}
	return BotInfo{
		Username:                me.Username,
		CanJoinGroups:           me.CanJoinGroups,
		CanReadAllGroupMessages: me.CanReadAllGroupMessages,
	}, nil
}

// chatIDFor converts a configured id into a Bot API chat id.
// Numeric ids ("-1001234", "5550001") map to tu.ID, anything else is a username.
func chatIDFor(id string) (telego.ChatID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return telego.ChatID{}, fmt.Errorf("empty chat id")
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return tu.ID(n), nil
	}
	if !strings.HasPrefix(id, "@") {
		id = "@" + id
	}
	return tu.Username(id), nil
}

func chatTitle(title, username, firstName string) string {
	switch {
	case title != "":
		return title
	case username != "":
		return "@" + username
	default:
		return firstName
	}
}
