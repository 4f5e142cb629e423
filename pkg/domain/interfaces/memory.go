package interfaces

import (
	"context"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// MemoryRepository defines the durable store contract for semantic memories.
// Every query is partitioned by the owning user; the repository must never
// return memories across that boundary.
type MemoryRepository interface {
	// Insert persists a new memory entry
	Insert(ctx context.Context, mem *model.Memory) (*model.Memory, error)

	// Query retrieves up to limit memories for the owner, newest first,
	// optionally narrowed by the filter
	Query(ctx context.Context, userID types.UserID, filter model.MemoryFilter, limit int) ([]*model.Memory, error)

	// TouchAccess updates LastAccessedAt for the given memories
	TouchAccess(ctx context.Context, userID types.UserID, ids []model.MemoryID) error

	// DeleteOlderThan removes the owner's memories created before cutoff.
	// Used by retention policies only; the store itself never prunes.
	DeleteOlderThan(ctx context.Context, userID types.UserID, cutoff time.Time) (int, error)
}
