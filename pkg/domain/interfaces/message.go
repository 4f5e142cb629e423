package interfaces

import (
	"context"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// MessageRepository is the narrow boundary to the conversation message
// store. The window manager reads through it when a window was evicted
// from the cache; the chat flow appends through it.
type MessageRepository interface {
	// Append persists a message at the end of the conversation
	Append(ctx context.Context, msg *model.Message) (*model.Message, error)

	// ListRecent returns up to limit of the newest messages, oldest first
	ListRecent(ctx context.Context, conversationID types.ConversationID, limit int) ([]model.Message, error)

	// Count returns the total number of messages in the conversation
	Count(ctx context.Context, conversationID types.ConversationID) (int, error)
}
