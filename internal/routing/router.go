// Package routing maps monitored chats to the label shown on relayed messages.
package routing

const (
	// DefaultKey is the notifier key used for chats missing from the chat table.
	DefaultKey = "1"

	// FallbackLabel is used when a notifier key has no label.
	FallbackLabel = "Risky Gamble 🟪"
)

// Router resolves chat ids to display labels through a notifier-key indirection.
// Both tables are copied at construction and never change afterwards.
type Router struct {
	chatKeys  map[string]string // chat id → notifier key
	keyLabels map[string]string // notifier key → label
}

// New builds a Router from the chat→key and key→label tables.
func New(chatKeys, keyLabels map[string]string) *Router {
	r := &Router{
		chatKeys:  make(map[string]string, len(chatKeys)),
		keyLabels: make(map[string]string, len(keyLabels)),
	}
	for k, v := range chatKeys {
		r.chatKeys[k] = v
	}
	for k, v := range keyLabels {
		r.keyLabels[k] = v
	}
	return r
}

// LabelFor returns the label for chatID. It never fails: unknown chats use
// DefaultKey, unknown keys use FallbackLabel.
func (r *Router) LabelFor(chatID string) string {
	key, ok := r.chatKeys[chatID]
	if !ok {
		key = DefaultKey
	}
	if label, ok := r.keyLabels[key]; ok {
		return label
	}
	return FallbackLabel
}

// KeyFor returns the notifier key for chatID, falling back to DefaultKey.
func (r *Router) KeyFor(chatID string) string {
	if key, ok := r.chatKeys[chatID]; ok {
		return key
	}
	return DefaultKey
}

// ChatIDs returns the chats that have an explicit notifier key.
func (r *Router) ChatIDs() []string {
	ids := make([]string, 0, len(r.chatKeys))
	for id := range r.chatKeys {
		ids = append(ids, id)
	}
	return ids
}
