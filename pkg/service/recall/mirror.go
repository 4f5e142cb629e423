package recall

import (
	"sync"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
)

// mirror is the per-user in-process copy of recent memories used for
// fallback scoring when the durable store is unreachable. It holds
// transient copies only: nothing in it is authoritative, and it is
// repopulated from durable reads after a process restart.
type mirror struct {
	mu      sync.RWMutex
	byUser  map[types.UserID][]*model.Memory
	maxSize int
}

func newMirror(maxSize int) *mirror {
	if maxSize <= 0 {
		maxSize = 200
	}
	return &mirror{
		byUser:  make(map[types.UserID][]*model.Memory),
		maxSize: maxSize,
	}
}

// add appends a newly stored memory, keeping the newest maxSize entries
func (m *mirror) add(mem *model.Memory) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := append(m.byUser[mem.UserID], mem.Clone())
	if len(list) > m.maxSize {
		list = list[len(list)-m.maxSize:]
	}
	m.byUser[mem.UserID] = list
}

// refresh replaces the user's mirror with the result of a successful
// durable read, newest first as returned by the repository
func (m *mirror) refresh(userID types.UserID, memories []*model.Memory) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*model.Memory, 0, min(len(memories), m.maxSize))
	for _, mem := range memories {
		if len(list) >= m.maxSize {
			break
		}
		list = append(list, mem.Clone())
	}
	m.byUser[userID] = list
}

// snapshot returns copies of the user's mirrored memories that match
// the scope's narrowing filters
func (m *mirror) snapshot(scope model.Scope, filter model.MemoryFilter) []*model.Memory {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*model.Memory, 0, len(m.byUser[scope.UserID]))
	for _, mem := range m.byUser[scope.UserID] {
		if filter.Matches(mem) {
			result = append(result, mem.Clone())
		}
	}
	return result
}
