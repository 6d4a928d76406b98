package relay

import (
	"strings"

	"github.com/nextlevelbuilder/carelay/internal/channels"
)

// Status is the terminal state of one handled message.
type Status string

const (
	StatusForwarded Status = "forwarded"
	StatusSkipped   Status = "skipped"
)

// SkipReason explains a skipped message.
type SkipReason string

const (
	ReasonSenderFiltered SkipReason = "sender-filtered"
	ReasonNoNewContent   SkipReason = "no-new-content"
)

// LegResult is the delivery result for one destination.
type LegResult struct {
	Destination string          // logical name ("destination_group", "trading_bot")
	Target      string          // configured id
	Entity      channels.Entity // set when Resolved
	Resolved    bool
	Sent        bool
	Err         error // *channels.ResolveError or *channels.SendError
}

// OK reports whether the message reached this destination.
func (l LegResult) OK() bool { return l.Resolved && l.Sent }

// Outcome describes what Handle did with a message.
type Outcome struct {
	ID     string // short forward id for log correlation
	Status Status
	Reason SkipReason // set when Status is StatusSkipped
	Tokens []string   // tokens forwarded for the first time
	URLs   []string
	Text   string // composed relay text
	Legs   []LegResult
}

// Delivered counts destinations that received the message.
func (o Outcome) Delivered() int {
	n := 0
	for _, l := range o.Legs {
		if l.OK() {
			n++
		}
	}
	return n
}

// Leg returns the result for the named destination.
func (o Outcome) Leg(destination string) (LegResult, bool) {
	for _, l := range o.Legs {
		if l.Destination == destination {
			return l, true
		}
	}
	return LegResult{}, false
}

// Compose builds the relay text: the label, then the new tokens, then the
// links, each block followed by a blank line, ending with a single space.
// The token line is indented by one space.
func Compose(label string, tokens, urls []string) string {
	var b strings.Builder
	b.WriteString(label)
	b.WriteString("\n\n")
	if len(tokens) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(tokens, ", "))
		b.WriteString("\n\n")
	}
	if len(urls) > 0 {
		b.WriteString(strings.Join(urls, ", "))
		b.WriteString("\n\n")
	}
	b.WriteString(" ")
	return b.String()
}
