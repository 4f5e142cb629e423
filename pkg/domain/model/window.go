package model

import (
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// Window holds the bounded recent-message view of a conversation plus a
// summary of older traffic. It lives in the cache and is recoverable
// from the durable message store, so losing it to eviction is fine.
type Window struct {
	ConversationID types.ConversationID
	Recent         []Message // last W messages, oldest first
	OlderSummary   string    // synopsis of messages truncated out of Recent
	TotalCount     int       // all messages ever appended, including truncated
	LastUpdateAt   time.Time
}

// Clone returns a copy with its own Recent slice
func (w *Window) Clone() *Window {
	copied := *w
	if w.Recent != nil {
		copied.Recent = append([]Message(nil), w.Recent...)
	}
	return &copied
}

// SizeBytes reports the window's approximate in-memory footprint for
// cache accounting: 2 bytes per character plus fixed per-message overhead.
func (w *Window) SizeBytes() int64 {
	size := int64(2 * len(w.OlderSummary))
	for _, m := range w.Recent {
		size += int64(2*(len(m.Content)+len(m.ID)+len(m.Emotion))) + 64
	}
	return size + 128
}

// LastN returns up to n of the most recent messages, oldest first
func (w *Window) LastN(n int) []Message {
	if n <= 0 || len(w.Recent) == 0 {
		return nil
	}
	if n > len(w.Recent) {
		n = len(w.Recent)
	}
	return w.Recent[len(w.Recent)-n:]
}
