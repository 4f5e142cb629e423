package model

import (
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// Message is a single conversation turn. Importance and Emotion are
// annotations produced upstream; both may be zero-valued.
type Message struct {
	ID             string
	ConversationID types.ConversationID
	Role           types.Role
	Content        string
	Importance     int    // 0..10, 0 means unrated
	Emotion        string // emotion tag, empty or "neutral" means no signal
	CreatedAt      time.Time
}

// IsHighImportance reports whether the message was flagged as a key moment
func (m Message) IsHighImportance() bool {
	return m.Importance > 7
}

// HasEmotion reports whether the message carries a non-neutral emotion tag
func (m Message) HasEmotion() bool {
	return m.Emotion != "" && m.Emotion != "neutral"
}
