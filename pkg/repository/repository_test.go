package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/repository/firestore"
	"github.com/inkwell-labs/mnemosyne/pkg/repository/memory"
)

func runRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	newMemory := func(user types.UserID, kind types.MemoryKind, content string) *model.Memory {
		return &model.Memory{
			UserID:     user,
			Kind:       kind,
			Content:    content,
			Embedding:  []float32{0.1, 0.2, 0.3},
			Importance: 5,
		}
	}

	t.Run("Insert assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Insert(ctx, newMemory("alice", types.MemoryKindPersonal, "prefers writing at night"))
		gt.NoError(t, err).Required()

		gt.String(t, string(created.ID)).NotEqual("")
		gt.Bool(t, created.CreatedAt.IsZero()).False()
		gt.Bool(t, created.LastAccessedAt.IsZero()).False()
		gt.Array(t, created.Embedding).Length(3)
	})

	t.Run("Insert rejects invalid memories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Insert(ctx, &model.Memory{UserID: "alice", Kind: "bogus", Content: "x", Importance: 5})
		gt.Value(t, err).NotNil()

		_, err = repo.Memory().Insert(ctx, &model.Memory{UserID: "alice", Kind: types.MemoryKindFactual, Content: "x", Importance: 11})
		gt.Value(t, err).NotNil()
	})

	t.Run("Query returns newest first and respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			m := newMemory("bob", types.MemoryKindFactual, fmt.Sprintf("fact %d", i))
			m.CreatedAt = time.Date(2026, 3, 1, i, 0, 0, 0, time.UTC)
			_, err := repo.Memory().Insert(ctx, m)
			gt.NoError(t, err).Required()
		}

		got, err := repo.Memory().Query(ctx, "bob", model.MemoryFilter{}, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].Content).Equal("fact 4")
		gt.Value(t, got[2].Content).Equal("fact 2")
	})

	t.Run("Query never crosses the owner boundary", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Memory().Insert(ctx, newMemory("carol", types.MemoryKindPersonal, "a secret"))
		gt.NoError(t, err).Required()

		got, err := repo.Memory().Query(ctx, "mallory", model.MemoryFilter{}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(0)
	})

	t.Run("Query narrows by companion and kind", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m1 := newMemory("dave", types.MemoryKindRelationship, "shared joke about ravens")
		m1.CompanionID = "muse"
		m2 := newMemory("dave", types.MemoryKindPreference, "dislikes adverbs")
		m2.CompanionID = "muse"
		m3 := newMemory("dave", types.MemoryKindPersonal, "lives in Lisbon")
		for _, m := range []*model.Memory{m1, m2, m3} {
			_, err := repo.Memory().Insert(ctx, m)
			gt.NoError(t, err).Required()
		}

		got, err := repo.Memory().Query(ctx, "dave", model.MemoryFilter{CompanionID: "muse"}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)

		got, err = repo.Memory().Query(ctx, "dave", model.MemoryFilter{
			CompanionID: "muse",
			Kinds:       []types.MemoryKind{types.MemoryKindPreference},
		}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0].Content).Equal("dislikes adverbs")
	})

	t.Run("TouchAccess bumps LastAccessedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Memory().Insert(ctx, newMemory("erin", types.MemoryKindCreative, "the lighthouse motif"))
		gt.NoError(t, err).Required()

		time.Sleep(10 * time.Millisecond)
		gt.NoError(t, repo.Memory().TouchAccess(ctx, "erin", []model.MemoryID{created.ID})).Required()

		got, err := repo.Memory().Query(ctx, "erin", model.MemoryFilter{}, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Bool(t, got[0].LastAccessedAt.After(created.LastAccessedAt)).True()
	})

	t.Run("DeleteOlderThan prunes only old memories", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		old := newMemory("frank", types.MemoryKindFactual, "stale fact")
		old.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		_, err := repo.Memory().Insert(ctx, old)
		gt.NoError(t, err).Required()

		_, err = repo.Memory().Insert(ctx, newMemory("frank", types.MemoryKindFactual, "fresh fact"))
		gt.NoError(t, err).Required()

		removed, err := repo.Memory().DeleteOlderThan(ctx, "frank", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
		gt.NoError(t, err).Required()
		gt.Number(t, removed).Equal(1)

		got, err := repo.Memory().Query(ctx, "frank", model.MemoryFilter{}, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0].Content).Equal("fresh fact")
	})

	t.Run("Messages append and list in order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		convID := types.ConversationID(fmt.Sprintf("conv-%d", time.Now().UnixNano()))
		for i := 0; i < 4; i++ {
			_, err := repo.Message().Append(ctx, &model.Message{
				ConversationID: convID,
				Role:           types.RoleUser,
				Content:        fmt.Sprintf("turn %d", i),
				CreatedAt:      time.Date(2026, 3, 2, 0, i, 0, 0, time.UTC),
			})
			gt.NoError(t, err).Required()
		}

		got, err := repo.Message().ListRecent(ctx, convID, 3)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(3)
		gt.Value(t, got[0].Content).Equal("turn 1")
		gt.Value(t, got[2].Content).Equal("turn 3")

		count, err := repo.Message().Count(ctx, convID)
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(4)
	})
}

func TestMemoryRepository(t *testing.T) {
	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreRepository(t *testing.T) {
	projectID := os.Getenv("TEST_FIRESTORE_PROJECT")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT is not set")
	}
	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE")

	runRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		prefix := fmt.Sprintf("test-%d-", time.Now().UnixNano())
		repo, err := firestore.New(context.Background(), projectID, databaseID,
			firestore.WithCollectionPrefix(prefix))
		gt.NoError(t, err).Required()
		t.Cleanup(func() {
			if err := repo.Close(); err != nil {
				t.Logf("failed to close firestore: %v", err)
			}
		})
		return repo
	})
}
