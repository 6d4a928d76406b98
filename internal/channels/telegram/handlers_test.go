package telegram

import (
	"context"
	"testing"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/nextlevelbuilder/carelay/internal/bus"
	"github.com/nextlevelbuilder/carelay/internal/channels"
)

type recordingBus struct {
	msgs []bus.InboundMessage
}

func (b *recordingBus) PublishInbound(msg bus.InboundMessage) { b.msgs = append(b.msgs, msg) }

func (b *recordingBus) ConsumeInbound(context.Context) (bus.InboundMessage, bool) {
	return bus.InboundMessage{}, false
}

func newTestChannel(rb *recordingBus, monitored ...string) *Channel {
	return &Channel{BaseChannel: channels.NewBaseChannel("telegram", rb, monitored)}
}

func TestHandleUpdate_PublishesMonitoredMessages(t *testing.T) {
	rb := &recordingBus{}
	c := newTestChannel(rb, "-1001")

	c.handleUpdate(telego.Update{Message: &telego.Message{
		MessageID: 12,
		Chat:      telego.Chat{ID: -1001, Type: "supergroup", Title: "Alpha"},
		From:      &telego.User{ID: 42, Username: "caller"},
		Text:      "CA here",
	}})
	c.handleUpdate(telego.Update{Message: &telego.Message{
		Chat: telego.Chat{ID: -2002, Type: "group"},
		From: &telego.User{ID: 42},
		Text: "not monitored",
	}})

	if len(rb.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(rb.msgs))
	}
	got := rb.msgs[0]
	if got.ChatID != "-1001" || got.SenderID != "42" || got.Content != "CA here" {
		t.Errorf("published = %+v", got)
	}
	if got.Metadata["message_id"] != "12" || got.Metadata["chat_title"] != "Alpha" || got.Metadata["username"] != "caller" {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestHandleUpdate_ChannelPostAndCaption(t *testing.T) {
	rb := &recordingBus{}
	c := newTestChannel(rb, "-1009")

	c.handleUpdate(telego.Update{ChannelPost: &telego.Message{
		Chat:       telego.Chat{ID: -1009, Type: "channel"},
		SenderChat: &telego.Chat{ID: -1009},
		Caption:    "https://pump.fun/abc",
		Photo:      []telego.PhotoSize{{FileID: "f"}},
	}})

	if len(rb.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(rb.msgs))
	}
	if rb.msgs[0].SenderID != "-1009" {
		t.Errorf("SenderID = %q, want sender chat id", rb.msgs[0].SenderID)
	}
	if rb.msgs[0].Content != "https://pump.fun/abc" {
		t.Errorf("Content = %q, want caption", rb.msgs[0].Content)
	}
}

func TestHandleUpdate_SkipsServiceAndEmpty(t *testing.T) {
	rb := &recordingBus{}
	c := newTestChannel(rb, "-1001")

	c.handleUpdate(telego.Update{Message: &telego.Message{
		Chat:           telego.Chat{ID: -1001},
		From:           &telego.User{ID: 1},
		NewChatMembers: []telego.User{{ID: 2}},
	}})
	c.handleUpdate(telego.Update{Message: &telego.Message{
		Chat:    telego.Chat{ID: -1001},
		From:    &telego.User{ID: 1},
		Sticker: &telego.Sticker{FileID: "s"},
	}})
	c.handleUpdate(telego.Update{UpdateID: 99})

	if len(rb.msgs) != 0 {
		t.Errorf("published %d messages, want 0", len(rb.msgs))
	}
}

func TestChatIDFor(t *testing.T) {
	tests := []struct {
		in      string
		want    telego.ChatID
		wantErr bool
	}{
		{in: "-1003333333333", want: tu.ID(-1003333333333)},
		{in: " 5550001 ", want: tu.ID(5550001)},
		{in: "@trade_bot", want: tu.Username("@trade_bot")},
		{in: "trade_bot", want: tu.Username("@trade_bot")},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := chatIDFor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("chatIDFor(%q) error = nil, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("chatIDFor(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("chatIDFor(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSenderIDOf(t *testing.T) {
	tests := []struct {
		name string
		msg  *telego.Message
		want string
	}{
		{"user", &telego.Message{Chat: telego.Chat{ID: -1}, From: &telego.User{ID: 7}}, "7"},
		{"sender chat", &telego.Message{Chat: telego.Chat{ID: -1}, SenderChat: &telego.Chat{ID: -5}}, "-5"},
		{"chat fallback", &telego.Message{Chat: telego.Chat{ID: -1}}, "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := senderIDOf(tt.msg); got != tt.want {
				t.Errorf("senderIDOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChatTitle(t *testing.T) {
	if got := chatTitle("Group", "user", "First"); got != "Group" {
		t.Errorf("chatTitle prefers title, got %q", got)
	}
	if got := chatTitle("", "tradebot", "First"); got != "@tradebot" {
		t.Errorf("chatTitle username fallback, got %q", got)
	}
	if got := chatTitle("", "", "First"); got != "First" {
		t.Errorf("chatTitle first name fallback, got %q", got)
	}
}
