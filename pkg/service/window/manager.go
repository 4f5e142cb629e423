package window

import (
	"context"
	"sync"
	"time"

	"github.com/inkwell-labs/mnemosyne/pkg/cache"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

const (
	defaultRecentSize     = 20
	defaultSummarizeAfter = 50
	defaultWindowTTL      = 30 * time.Minute
)

// Manager keeps a bounded recent-message window per conversation in the
// cache, with a running summary of everything truncated out of it. The
// cached window is an accelerator: on a miss it is rebuilt from the
// durable message store.
//
// Cached windows are immutable snapshots. Append mutates a private copy
// and swaps it in under a per-conversation lock, and Get hands out
// clones, so callers never alias state another request is rewriting.
type Manager struct {
	repo           interfaces.MessageRepository
	cache          *cache.Cache[*model.Window]
	recentSize     int
	summarizeAfter int
	ttl            time.Duration
	now            func() time.Time

	mu    sync.Mutex
	locks map[types.ConversationID]*sync.Mutex
}

type Option func(*Manager)

// WithCache shares an externally built cache instance
func WithCache(c *cache.Cache[*model.Window]) Option {
	return func(m *Manager) {
		m.cache = c
	}
}

// WithRecentSize sets how many messages a window retains verbatim
func WithRecentSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.recentSize = n
		}
	}
}

// WithSummarizeAfter sets the total message count past which the
// summary of older messages is regenerated on each append
func WithSummarizeAfter(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.summarizeAfter = n
		}
	}
}

// WithTTL sets how long an untouched window stays cached
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithClock injects the timestamp source
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

func New(repo interfaces.MessageRepository, opts ...Option) *Manager {
	m := &Manager{
		repo:           repo,
		recentSize:     defaultRecentSize,
		summarizeAfter: defaultSummarizeAfter,
		ttl:            defaultWindowTTL,
		now:            time.Now,
		locks:          make(map[types.ConversationID]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cache == nil {
		m.cache = cache.New[*model.Window]("windows",
			cache.WithDefaultTTL[*model.Window](m.ttl),
		)
	}
	return m
}

func windowKey(id types.ConversationID) string {
	return "conversation/" + string(id)
}

// conversationLock returns the mutex serializing appends for one
// conversation. Holding it across the durable write keeps the stored
// order and the window order identical.
func (m *Manager) conversationLock(id types.ConversationID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// Append records a message at the end of the conversation and returns
// the updated window. The durable write happens first; if it fails the
// window is still advanced in the cache so the conversation keeps
// flowing, and the loss is logged.
func (m *Manager) Append(ctx context.Context, msg model.Message) *model.Window {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = m.now()
	}

	l := m.conversationLock(msg.ConversationID)
	l.Lock()
	defer l.Unlock()

	w, cached := m.cache.Get(windowKey(msg.ConversationID))

	persisted := false
	if m.repo != nil {
		if saved, err := m.repo.Append(ctx, &msg); err != nil {
			logging.From(ctx).Warn("failed to persist conversation message",
				"error", err,
				"conversation_id", msg.ConversationID,
			)
		} else {
			persisted = true
			if saved != nil {
				msg = *saved
			}
		}
	}

	if cached {
		w = w.Clone()
	} else {
		// a rebuild after a successful durable write already contains
		// the new message
		if rebuilt := m.rebuild(ctx, msg.ConversationID); rebuilt != nil {
			if persisted {
				return rebuilt.Clone()
			}
			w = rebuilt.Clone()
		} else {
			w = &model.Window{ConversationID: msg.ConversationID}
		}
	}

	w.Recent = append(w.Recent, msg)
	w.TotalCount++
	w.LastUpdateAt = m.now()
	if len(w.Recent) > m.recentSize {
		w.Recent = append([]model.Message(nil), w.Recent[len(w.Recent)-m.recentSize:]...)
	}

	if w.TotalCount > m.summarizeAfter {
		if older := m.olderMessages(ctx, w); len(older) > 0 {
			w.OlderSummary = Summarize(older)
		}
	}

	m.cache.SetTTL(windowKey(w.ConversationID), w, m.ttl)
	return w
}

// Get returns the conversation window, rebuilding it from the durable
// store when the cached copy was evicted or expired. Returns nil when
// the conversation has no messages at all.
func (m *Manager) Get(ctx context.Context, id types.ConversationID) *model.Window {
	if w := m.current(ctx, id); w != nil {
		return w.Clone()
	}
	return nil
}

func (m *Manager) current(ctx context.Context, id types.ConversationID) *model.Window {
	if w, ok := m.cache.Get(windowKey(id)); ok {
		return w
	}
	return m.rebuild(ctx, id)
}

func (m *Manager) rebuild(ctx context.Context, id types.ConversationID) *model.Window {
	if m.repo == nil {
		return nil
	}

	total, err := m.repo.Count(ctx, id)
	if err != nil {
		logging.From(ctx).Warn("failed to count conversation messages",
			"error", err,
			"conversation_id", id,
		)
		return nil
	}
	if total == 0 {
		return nil
	}

	recent, err := m.repo.ListRecent(ctx, id, m.recentSize)
	if err != nil {
		logging.From(ctx).Warn("failed to load recent conversation messages",
			"error", err,
			"conversation_id", id,
		)
		return nil
	}

	w := &model.Window{
		ConversationID: id,
		Recent:         recent,
		TotalCount:     total,
		LastUpdateAt:   m.now(),
	}
	if total > m.summarizeAfter {
		if older := m.olderMessages(ctx, w); len(older) > 0 {
			w.OlderSummary = Summarize(older)
		}
	}

	m.cache.SetTTL(windowKey(id), w, m.ttl)
	return w
}

// olderMessages loads everything that precedes the retained window
func (m *Manager) olderMessages(ctx context.Context, w *model.Window) []model.Message {
	if m.repo == nil {
		return nil
	}

	all, err := m.repo.ListRecent(ctx, w.ConversationID, w.TotalCount)
	if err != nil {
		logging.From(ctx).Warn("failed to load older conversation messages",
			"error", err,
			"conversation_id", w.ConversationID,
		)
		return nil
	}
	if len(all) <= len(w.Recent) {
		return nil
	}
	return all[:len(all)-len(w.Recent)]
}
