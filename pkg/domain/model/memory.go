package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// EmbeddingDimension is the fixed dimension of memory embedding vectors
const EmbeddingDimension = 768

// MemoryID is a UUID-based identifier for Memory
type MemoryID string

// NewMemoryID generates a new UUID v4 MemoryID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// Memory represents a persistent semantic memory entry scoped to a user.
// Content is immutable once created; only LastAccessedAt is updated on
// retrieval. Retention is decided by policy, never by the store itself.
type Memory struct {
	ID             MemoryID
	UserID         types.UserID
	CompanionID    types.CompanionID    // optional narrowing filter
	DocumentID     types.DocumentID     // optional narrowing filter
	ConversationID types.ConversationID // optional narrowing filter
	Kind           types.MemoryKind
	Content        string
	Embedding      []float32 // vector embedding for similarity search
	Importance     int       // 1..10
	Tags           []string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}

// Validate checks required fields and value ranges
func (m *Memory) Validate() error {
	if err := m.UserID.Validate(); err != nil {
		return goerr.Wrap(err, "memory owner is invalid")
	}
	if err := m.Kind.Validate(); err != nil {
		return err
	}
	if m.Content == "" {
		return goerr.New("memory content cannot be empty")
	}
	if m.Importance < 1 || m.Importance > 10 {
		return goerr.New("memory importance must be between 1 and 10", goerr.V("importance", m.Importance))
	}
	return nil
}

// Clone returns a deep copy of the memory
func (m *Memory) Clone() *Memory {
	copied := *m
	if m.Embedding != nil {
		copied.Embedding = make([]float32, len(m.Embedding))
		copy(copied.Embedding, m.Embedding)
	}
	if m.Tags != nil {
		copied.Tags = make([]string, len(m.Tags))
		copy(copied.Tags, m.Tags)
	}
	return &copied
}

// MemoryFilter narrows a memory query within an owner's partition.
// Zero values mean "no filter".
type MemoryFilter struct {
	CompanionID    types.CompanionID
	DocumentID     types.DocumentID
	ConversationID types.ConversationID
	Kinds          []types.MemoryKind
}

// Matches reports whether the memory passes all set filters
func (f MemoryFilter) Matches(m *Memory) bool {
	if f.CompanionID != "" && m.CompanionID != f.CompanionID {
		return false
	}
	if f.DocumentID != "" && m.DocumentID != f.DocumentID {
		return false
	}
	if f.ConversationID != "" && m.ConversationID != f.ConversationID {
		return false
	}
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if m.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
