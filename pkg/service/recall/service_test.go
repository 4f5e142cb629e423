package recall_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/repository/memory"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
)

// stubEmbedder maps known texts to canned vectors; unknown texts get a
// zero vector, which is exactly how the gateway degrades on failure.
type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(_ context.Context, text string) []float32 {
	if v, ok := s.vectors[text]; ok {
		return v
	}
	return make([]float32, 3)
}

func (s *stubEmbedder) Dimension() int {
	return 3
}

// failingRepo wraps a working repository but fails selected operations
type failingRepo struct {
	interfaces.MemoryRepository
	failInsert bool
	failQuery  bool
}

func (r *failingRepo) Insert(ctx context.Context, mem *model.Memory) (*model.Memory, error) {
	if r.failInsert {
		return nil, goerr.New("durable store unavailable")
	}
	return r.MemoryRepository.Insert(ctx, mem)
}

func (r *failingRepo) Query(ctx context.Context, userID types.UserID, filter model.MemoryFilter, limit int) ([]*model.Memory, error) {
	if r.failQuery {
		return nil, goerr.New("durable store unavailable")
	}
	return r.MemoryRepository.Query(ctx, userID, filter, limit)
}

func scopeFor(user types.UserID) model.Scope {
	return model.Scope{UserID: user}
}

func TestStoreAndRetrieveVectorPath(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	embedder := &stubEmbedder{vectors: map[string][]float32{
		"the dragon guards the tower": {1, 0, 0},
		"groceries list for tuesday":  {0, 1, 0},
		"tell me about the dragon":    {0.9, 0.1, 0},
	}}

	svc := recall.New(repo.Memory(), embedder)

	m1 := svc.Store(ctx, recall.Input{
		Scope: scopeFor("alice"), Kind: types.MemoryKindCreative,
		Content: "the dragon guards the tower", Importance: 6,
	})
	gt.Value(t, m1).NotNil()
	m2 := svc.Store(ctx, recall.Input{
		Scope: scopeFor("alice"), Kind: types.MemoryKindFactual,
		Content: "groceries list for tuesday", Importance: 3,
	})
	gt.Value(t, m2).NotNil()

	got := svc.Retrieve(ctx, "tell me about the dragon", scopeFor("alice"), 5)
	gt.Array(t, got).Length(1).Required()
	gt.Value(t, got[0].Content).Equal("the dragon guards the tower")
}

func TestStoreSwallowsWriteFailure(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepository: memory.New().Memory(), failInsert: true}
	svc := recall.New(repo, &stubEmbedder{})

	got := svc.Store(ctx, recall.Input{
		Scope: scopeFor("alice"), Kind: types.MemoryKindPersonal,
		Content: "will not make it to disk", Importance: 5,
	})
	gt.Value(t, got).Nil()
}

func TestRetrieveScoping(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := recall.New(repo.Memory(), &stubEmbedder{})

	created := svc.Store(ctx, recall.Input{
		Scope: scopeFor("alice"), Kind: types.MemoryKindPersonal,
		Content: "alice writes gothic horror", Importance: 8,
	})
	gt.Value(t, created).NotNil()

	t.Run("owner sees the memory via fallback", func(t *testing.T) {
		got := svc.Retrieve(ctx, "gothic horror", scopeFor("alice"), 5)
		gt.Array(t, got).Length(1)
	})

	t.Run("other users never see it regardless of overlap", func(t *testing.T) {
		got := svc.Retrieve(ctx, "gothic horror", scopeFor("mallory"), 5)
		gt.Array(t, got).Length(0)
	})

	t.Run("invalid scope yields nothing", func(t *testing.T) {
		got := svc.Retrieve(ctx, "gothic horror", model.Scope{}, 5)
		gt.Array(t, got).Length(0)
	})
}

func TestFallbackRanksByImportance(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	// every embedding is a zero vector: the provider is effectively down
	svc := recall.New(repo.Memory(), &stubEmbedder{})

	for _, importance := range []int{2, 5, 9} {
		created := svc.Store(ctx, recall.Input{
			Scope: scopeFor("bob"), Kind: types.MemoryKindPersonal,
			Content: "the same remembered moment", Importance: importance,
		})
		gt.Value(t, created).NotNil()
	}

	got := svc.Retrieve(ctx, "", scopeFor("bob"), 5)
	gt.Array(t, got).Longer(0).Required()
	gt.Number(t, got[0].Importance).Equal(9)
}

func TestFallbackKeywordOverlap(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := recall.New(repo.Memory(), &stubEmbedder{})

	for _, content := range []string{
		"the protagonist fears thunderstorms",
		"remember to buy more coffee",
	} {
		created := svc.Store(ctx, recall.Input{
			Scope: scopeFor("carol"), Kind: types.MemoryKindCreative,
			Content: content, Importance: 5,
		})
		gt.Value(t, created).NotNil()
	}

	got := svc.Retrieve(ctx, "protagonist thunderstorms", scopeFor("carol"), 5)
	gt.Array(t, got).Longer(0).Required()
	gt.Value(t, got[0].Content).Equal("the protagonist fears thunderstorms")
}

func TestRetrieveUsesMirrorWhenDurableReadFails(t *testing.T) {
	ctx := context.Background()
	repo := &failingRepo{MemoryRepository: memory.New().Memory()}
	svc := recall.New(repo, &stubEmbedder{})

	created := svc.Store(ctx, recall.Input{
		Scope: scopeFor("dave"), Kind: types.MemoryKindPreference,
		Content: "prefers short chapters", Importance: 7,
	})
	gt.Value(t, created).NotNil()

	repo.failQuery = true

	got := svc.Retrieve(ctx, "short chapters", scopeFor("dave"), 5)
	gt.Array(t, got).Longer(0).Required()
	gt.Value(t, got[0].Content).Equal("prefers short chapters")
}

func TestRetrieveLimit(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	svc := recall.New(repo.Memory(), &stubEmbedder{})

	for i := 0; i < 10; i++ {
		created := svc.Store(ctx, recall.Input{
			Scope: scopeFor("erin"), Kind: types.MemoryKindFactual,
			Content: "a remembered fact about the story", Importance: 6,
		})
		gt.Value(t, created).NotNil()
	}

	got := svc.Retrieve(ctx, "story", scopeFor("erin"), 3)
	gt.Array(t, got).Length(3)
}

func TestRetentionPolicies(t *testing.T) {
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("keep forever is unbounded", func(t *testing.T) {
		_, bounded := recall.KeepForever{}.Cutoff(now)
		gt.Bool(t, bounded).False()
	})

	t.Run("max age computes the cutoff", func(t *testing.T) {
		cutoff, bounded := recall.MaxAge{Days: 30}.Cutoff(now)
		gt.Bool(t, bounded).True()
		gt.Value(t, cutoff).Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	})

	t.Run("non-positive max age is unbounded", func(t *testing.T) {
		_, bounded := recall.MaxAge{}.Cutoff(now)
		gt.Bool(t, bounded).False()
	})
}
