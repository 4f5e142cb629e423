package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

type memoryRepository struct {
	mu      sync.RWMutex
	entries map[types.UserID]map[model.MemoryID]*model.Memory
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		entries: make(map[types.UserID]map[model.MemoryID]*model.Memory),
	}
}

func (r *memoryRepository) Insert(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	if err := mem.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[mem.UserID]; !exists {
		r.entries[mem.UserID] = make(map[model.MemoryID]*model.Memory)
	}

	created := mem.Clone()
	if created.ID == "" {
		created.ID = model.NewMemoryID()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.LastAccessedAt.IsZero() {
		created.LastAccessedAt = created.CreatedAt
	}

	r.entries[mem.UserID][created.ID] = created
	return created.Clone(), nil
}

func (r *memoryRepository) Query(ctx context.Context, userID types.UserID, filter model.MemoryFilter, limit int) ([]*model.Memory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket, exists := r.entries[userID]
	if !exists {
		return []*model.Memory{}, nil
	}

	result := make([]*model.Memory, 0, len(bucket))
	for _, m := range bucket {
		if filter.Matches(m) {
			result = append(result, m.Clone())
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result, nil
}

func (r *memoryRepository) TouchAccess(ctx context.Context, userID types.UserID, ids []model.MemoryID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.entries[userID]
	if !exists {
		return nil
	}

	now := time.Now().UTC()
	for _, id := range ids {
		if m, ok := bucket[id]; ok {
			m.LastAccessedAt = now
		}
	}
	return nil
}

func (r *memoryRepository) DeleteOlderThan(ctx context.Context, userID types.UserID, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket, exists := r.entries[userID]
	if !exists {
		return 0, nil
	}

	var removed int
	for id, m := range bucket {
		if m.CreatedAt.Before(cutoff) {
			delete(bucket, id)
			removed++
		}
	}
	return removed, nil
}
