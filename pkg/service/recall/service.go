// Package recall implements the semantic memory store: embedding-backed
// persistence and two-tier ranked retrieval over a user's memories.
package recall

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/metrics"
	"github.com/inkwell-labs/mnemosyne/pkg/service/rank"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/async"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/errutil"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/logging"
)

// Config holds the retrieval tuning knobs. The thresholds carried over
// from earlier iterations of the product were never validated, so all of
// them are configuration rather than constants.
type Config struct {
	// MinSimilarity is the cosine similarity floor for the vector path
	MinSimilarity float64
	// FallbackFloor is the score floor for the keyword fallback path
	FallbackFloor float64
	// FetchMultiplier scales limit into the candidate fetch size
	FetchMultiplier int
	// ReadTimeout bounds the durable candidate fetch
	ReadTimeout time.Duration
	// MirrorLimit caps the per-user in-process fallback list
	MirrorLimit int
}

// DefaultConfig returns the standard retrieval tuning
func DefaultConfig() Config {
	return Config{
		MinSimilarity:   0.65,
		FallbackFloor:   0.05,
		FetchMultiplier: 3,
		ReadTimeout:     5 * time.Second,
		MirrorLimit:     200,
	}
}

// Service is the memory store. Both Store and Retrieve degrade instead
// of failing: a memory-write failure must never fail the caller's
// primary action, and retrieval falls back to keyword scoring when the
// vector path yields nothing.
type Service struct {
	repo     interfaces.MemoryRepository
	embedder interfaces.Embedder
	cfg      Config
	policy   RetentionPolicy
	now      func() time.Time

	mirror *mirror
}

// Option is a functional option for Service configuration
type Option func(*Service)

// WithConfig overrides the retrieval tuning
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		s.cfg = cfg
	}
}

// WithRetention sets the retention policy applied after each store
func WithRetention(policy RetentionPolicy) Option {
	return func(s *Service) {
		s.policy = policy
	}
}

// WithClock injects a timestamp source for deterministic tests
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// New creates a memory store service
func New(repo interfaces.MemoryRepository, embedder interfaces.Embedder, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		embedder: embedder,
		cfg:      DefaultConfig(),
		policy:   KeepForever{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mirror = newMirror(s.cfg.MirrorLimit)
	return s
}

// Input describes a memory to store
type Input struct {
	Scope      model.Scope
	Kind       types.MemoryKind
	Content    string
	Importance int
	Tags       []string
}

// Store embeds and persists a memory, mirroring it for fallback scoring.
// Failures are logged and swallowed; the return value is nil when the
// memory could not be persisted.
func (s *Service) Store(ctx context.Context, in Input) *model.Memory {
	mem := &model.Memory{
		UserID:         in.Scope.UserID,
		CompanionID:    in.Scope.CompanionID,
		DocumentID:     in.Scope.DocumentID,
		ConversationID: in.Scope.ConversationID,
		Kind:           in.Kind,
		Content:        in.Content,
		Importance:     in.Importance,
		Tags:           in.Tags,
	}
	if mem.Importance == 0 {
		mem.Importance = 5
	}
	if err := mem.Validate(); err != nil {
		_ = errutil.Handle(ctx, err, "refusing to store invalid memory")
		return nil
	}

	mem.Embedding = s.embedder.Embed(ctx, in.Content)

	created, err := s.repo.Insert(ctx, mem)
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to persist memory",
			goerr.V("userID", in.Scope.UserID), goerr.V("kind", in.Kind)), "memory write failed")
		return nil
	}

	s.mirror.add(created)
	s.applyRetention(ctx, in.Scope.UserID)

	return created
}

// Retrieve returns up to limit memories ranked by relevance to query.
// The vector path ranks durable candidates by cosine similarity; when it
// yields nothing (embedding provider down, zero vectors on record) the
// keyword+importance+recency fallback scorer takes over. Every path is
// scoped to the owner. Retrieve never fails; worst case is an empty slice.
func (s *Service) Retrieve(ctx context.Context, query string, scope model.Scope, limit int) []*model.Memory {
	return s.retrieve(ctx, query, scope, nil, limit)
}

// RetrieveKinds is Retrieve narrowed to the given memory kinds
func (s *Service) RetrieveKinds(ctx context.Context, query string, scope model.Scope, kinds []types.MemoryKind, limit int) []*model.Memory {
	return s.retrieve(ctx, query, scope, kinds, limit)
}

func (s *Service) retrieve(ctx context.Context, query string, scope model.Scope, kinds []types.MemoryKind, limit int) []*model.Memory {
	if err := scope.Validate(); err != nil {
		_ = errutil.Handle(ctx, err, "rejecting memory retrieval with invalid scope")
		return nil
	}
	if limit <= 0 {
		limit = 5
	}

	start := s.now()
	queryVec := s.embedder.Embed(ctx, query)

	candidates := s.fetchCandidates(ctx, scope, kinds, limit)

	ranked := rank.Rank(queryVec, candidates, s.cfg.MinSimilarity, limit)
	path := "vector"

	var result []*model.Memory
	if len(ranked) > 0 {
		result = make([]*model.Memory, len(ranked))
		for i, r := range ranked {
			result[i] = r.Memory
		}
	} else {
		path = "fallback"
		result = s.fallbackRank(query, candidates, limit)
	}

	metrics.RecallDuration.WithLabelValues(path).Observe(s.now().Sub(start).Seconds())

	s.touchAccess(ctx, scope.UserID, result)

	return result
}

// fetchCandidates reads a recency-ordered candidate superset from the
// durable store. A failed or timed-out read degrades to the in-process
// mirror rather than surfacing an error.
func (s *Service) fetchCandidates(ctx context.Context, scope model.Scope, kinds []types.MemoryKind, limit int) []*model.Memory {
	fetchLimit := limit * s.cfg.FetchMultiplier
	if fetchLimit < limit {
		fetchLimit = limit
	}

	filter := scope.Filter()
	filter.Kinds = kinds

	readCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadTimeout)
	defer cancel()

	candidates, err := s.repo.Query(readCtx, scope.UserID, filter, fetchLimit)
	if err != nil {
		logging.From(ctx).Warn("durable memory read failed, using in-process mirror",
			"userID", scope.UserID, "error", err.Error())
		return s.mirror.snapshot(scope, filter)
	}

	if len(kinds) == 0 {
		s.mirror.refresh(scope.UserID, candidates)
	}
	return candidates
}

func (s *Service) touchAccess(ctx context.Context, userID types.UserID, memories []*model.Memory) {
	if len(memories) == 0 {
		return
	}
	ids := make([]model.MemoryID, len(memories))
	for i, m := range memories {
		ids[i] = m.ID
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if err := s.repo.TouchAccess(ctx, userID, ids); err != nil {
			return goerr.Wrap(err, "failed to touch memory access times")
		}
		return nil
	})
}

func (s *Service) applyRetention(ctx context.Context, userID types.UserID) {
	cutoff, bounded := s.policy.Cutoff(s.now())
	if !bounded {
		return
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		removed, err := s.repo.DeleteOlderThan(ctx, userID, cutoff)
		if err != nil {
			return goerr.Wrap(err, "failed to apply memory retention")
		}
		if removed > 0 {
			logging.From(ctx).Info("applied memory retention",
				"userID", userID, "removed", removed)
		}
		return nil
	})
}
