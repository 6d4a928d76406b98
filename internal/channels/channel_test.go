package channels

import (
	"context"
	"errors"
	"testing"

	"github.com/nextlevelbuilder/carelay/internal/bus"
)

type recordingBus struct {
	msgs []bus.InboundMessage
}

func (b *recordingBus) PublishInbound(msg bus.InboundMessage) { b.msgs = append(b.msgs, msg) }

func (b *recordingBus) ConsumeInbound(ctx context.Context) (bus.InboundMessage, bool) {
	return bus.InboundMessage{}, false
}

func TestBaseChannel_HandleMessage(t *testing.T) {
	rb := &recordingBus{}
	c := NewBaseChannel("telegram", rb, []string{"-1001", "-1002"})

	if !c.HandleMessage("42", "-1001", "hello", map[string]string{"message_id": "7"}) {
		t.Fatal("HandleMessage for monitored chat returned false")
	}
	if c.HandleMessage("42", "-5555", "ignored", nil) {
		t.Fatal("HandleMessage for unmonitored chat returned true")
	}

	if len(rb.msgs) != 1 {
		t.Fatalf("published %d messages, want 1", len(rb.msgs))
	}
	got := rb.msgs[0]
	if got.Channel != "telegram" || got.ChatID != "-1001" || got.SenderID != "42" || got.Content != "hello" {
		t.Errorf("published message = %+v", got)
	}
	if got.Metadata["message_id"] != "7" {
		t.Errorf("metadata message_id = %q, want 7", got.Metadata["message_id"])
	}
	if c.MonitoredCount() != 2 {
		t.Errorf("MonitoredCount() = %d, want 2", c.MonitoredCount())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{"short", "abc", 10, "abc"},
		{"exact", "abcdef", 6, "abcdef"},
		{"ascii cut", "abcdefghij", 6, "abc..."},
		{"wide runes", "日本語テキスト", 7, "日本..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.width); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
			}
		})
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("chat not found")

	var re error = &ResolveError{ID: "-100", Err: base}
	if !errors.Is(re, base) {
		t.Error("ResolveError does not unwrap to its cause")
	}
	var target *ResolveError
	if !errors.As(re, &target) || target.ID != "-100" {
		t.Errorf("errors.As ResolveError failed: %v", re)
	}

	var se error = &SendError{Entity: Entity{ID: "@bot", Title: "Trade Bot"}, Err: base}
	if !errors.Is(se, base) {
		t.Error("SendError does not unwrap to its cause")
	}
	if want := "send to Trade Bot (@bot): chat not found"; se.Error() != want {
		t.Errorf("SendError.Error() = %q, want %q", se.Error(), want)
	}
}
