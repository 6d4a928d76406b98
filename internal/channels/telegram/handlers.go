package telegram

import (
	"fmt"
	"log/slog"

	"github.com/mymmrac/telego"

	"github.com/nextlevelbuilder/carelay/internal/channels"
)

// handleUpdate dispatches one polled update.
func (c *Channel) handleUpdate(update telego.Update) {
	switch {
	case update.Message != nil:
		c.handleMessage(update.Message)
	case update.ChannelPost != nil:
		c.handleMessage(update.ChannelPost)
	default:
		slog.Debug("telegram update skipped (no message)", "update_id", update.UpdateID)
	}
}

// handleMessage publishes a message from a monitored chat to the bus.
func (c *Channel) handleMessage(message *telego.Message) {
	// Skip service messages (member added/removed, title changed, etc.).
	if isServiceMessage(message) {
		slog.Debug("telegram service message skipped", "chat_id", message.Chat.ID)
		return
	}

	chatID := fmt.Sprintf("%d", message.Chat.ID)
	senderID := senderIDOf(message)
	content := messageText(message)

	slog.Debug("telegram message received",
		"chat_type", message.Chat.Type,
		"chat_id", chatID,
		"sender_id", senderID,
		"text_preview", channels.Truncate(content, 60),
	)

	if content == "" {
		return
	}

	metadata := map[string]string{
		"message_id": fmt.Sprintf("%d", message.MessageID),
	}
	if message.Chat.Title != "" {
		metadata["chat_title"] = message.Chat.Title
	}
	if message.From != nil && message.From.Username != "" {
		metadata["username"] = message.From.Username
	}

	c.HandleMessage(senderID, chatID, content, metadata)
}

// senderIDOf returns the sender's numeric id. Anonymous admins and channel
// posts have no From user and are attributed to the sending chat.
func senderIDOf(message *telego.Message) string {
	switch {
	case message.From != nil:
		return fmt.Sprintf("%d", message.From.ID)
	case message.SenderChat != nil:
		return fmt.Sprintf("%d", message.SenderChat.ID)
	default:
		return fmt.Sprintf("%d", message.Chat.ID)
	}
}

// messageText returns the text of a message, or the caption of a media message.
func messageText(message *telego.Message) string {
	if message.Text != "" {
		return message.Text
	}
	return message.Caption
}

// isServiceMessage returns true if the Telegram message is a service/system message
// (member added/removed, title changed, pinned, etc.) rather than a user-sent message.
// Service messages have no text, caption, or media content.
func isServiceMessage(msg *telego.Message) bool {
	// Has text or caption → user message
	if msg.Text != "" || msg.Caption != "" {
		return false
	}

	// Has media → user message (photo, audio, video, document, sticker, etc.)
	if msg.Photo != nil || msg.Audio != nil || msg.Video != nil ||
		msg.Document != nil || msg.Voice != nil || msg.VideoNote != nil ||
		msg.Sticker != nil || msg.Animation != nil || msg.Contact != nil ||
		msg.Location != nil || msg.Venue != nil || msg.Poll != nil {
		return false
	}

	return true
}
