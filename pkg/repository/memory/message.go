package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

type messageRepository struct {
	mu            sync.RWMutex
	conversations map[types.ConversationID][]model.Message
}

func newMessageRepository() *messageRepository {
	return &messageRepository{
		conversations: make(map[types.ConversationID][]model.Message),
	}
}

func (r *messageRepository) Append(ctx context.Context, msg *model.Message) (*model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *msg
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.conversations[msg.ConversationID] = append(r.conversations[msg.ConversationID], stored)

	result := stored
	return &result, nil
}

func (r *messageRepository) ListRecent(ctx context.Context, conversationID types.ConversationID, limit int) ([]model.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msgs := r.conversations[conversationID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	result := make([]model.Message, len(msgs))
	copy(result, msgs)
	return result, nil
}

func (r *messageRepository) Count(ctx context.Context, conversationID types.ConversationID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conversations[conversationID]), nil
}
