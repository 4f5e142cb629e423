package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/repository/memory"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
	"github.com/inkwell-labs/mnemosyne/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"Of course, let's pick the story back up."},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
	embeddingFn  func(ctx context.Context, dimension int, input []string) ([][]float64, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	if c.embeddingFn != nil {
		return c.embeddingFn(ctx, dimension, input)
	}
	return nil, nil
}

func recallInput(user types.UserID, content string, importance int) recall.Input {
	return recall.Input{
		Scope:      model.Scope{UserID: user},
		Kind:       types.MemoryKindPreference,
		Content:    content,
		Importance: importance,
	}
}

func chatScope() model.Scope {
	return model.Scope{
		UserID:         "alice",
		CompanionID:    "companion-1",
		ConversationID: "conv-1",
	}
}

func TestChat(t *testing.T) {
	t.Run("replies and records both turns", func(t *testing.T) {
		ctx := context.Background()
		repo := memory.New()
		uc := usecase.New(repo, usecase.WithLLMClient(&mockLLMClient{}))

		out, err := uc.Chat.Chat(ctx, usecase.ChatInput{
			Scope:   chatScope(),
			Message: "Can we continue the lighthouse story?",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out).NotNil().Required()
		gt.Value(t, out.Reply).Equal("Of course, let's pick the story back up.")

		gt.Value(t, out.Window).NotNil().Required()
		gt.Number(t, out.Window.TotalCount).Equal(2)
		gt.Value(t, out.Window.Recent[0].Role).Equal(types.RoleUser)
		gt.Value(t, out.Window.Recent[1].Role).Equal(types.RoleCompanion)

		count, err := repo.Message().Count(ctx, "conv-1")
		gt.NoError(t, err).Required()
		gt.Number(t, count).Equal(2)
	})

	t.Run("without LLM client", func(t *testing.T) {
		uc := usecase.New(memory.New())

		_, err := uc.Chat.Chat(context.Background(), usecase.ChatInput{
			Scope:   chatScope(),
			Message: "hello",
		})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, usecase.ErrLLMNotConfigured)).True()
	})

	t.Run("rejects empty message", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithLLMClient(&mockLLMClient{}))

		_, err := uc.Chat.Chat(context.Background(), usecase.ChatInput{
			Scope:   chatScope(),
			Message: "   ",
		})
		gt.Error(t, err)
	})

	t.Run("rejects scope without conversation", func(t *testing.T) {
		uc := usecase.New(memory.New(), usecase.WithLLMClient(&mockLLMClient{}))

		_, err := uc.Chat.Chat(context.Background(), usecase.ChatInput{
			Scope:   model.Scope{UserID: "alice"},
			Message: "hello",
		})
		gt.Error(t, err)
	})
}

func TestMemoryUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	t.Run("store and search", func(t *testing.T) {
		created, err := uc.Memory.Store(ctx, recallInput("alice", "drafts in the early morning", 6))
		gt.NoError(t, err).Required()
		gt.Value(t, created).NotNil()

		found, err := uc.Memory.Search(ctx, "morning drafts", model.Scope{UserID: "alice"}, 5)
		gt.NoError(t, err).Required()
		gt.Array(t, found).Length(1)
	})

	t.Run("invalid scope rejected", func(t *testing.T) {
		_, err := uc.Memory.Search(ctx, "anything", model.Scope{}, 5)
		gt.Error(t, err)
	})
}

func TestContextUseCase(t *testing.T) {
	ctx := context.Background()
	uc := usecase.New(memory.New())

	t.Run("compose with empty state still yields the base prompt", func(t *testing.T) {
		prompt, err := uc.Context.Compose(ctx, "base prompt", model.Scope{UserID: "alice"})
		gt.NoError(t, err).Required()
		gt.String(t, prompt).Contains("base prompt")
		gt.String(t, prompt).Contains("Current mood: neutral")
	})

	t.Run("invalid scope rejected", func(t *testing.T) {
		_, err := uc.Context.Compose(ctx, "base", model.Scope{})
		gt.Error(t, err)
	})
}

func TestStatsUseCase(t *testing.T) {
	uc := usecase.New(memory.New())

	report := uc.Stats.Report()
	gt.Number(t, report.Stress).GreaterOrEqual(0)
	gt.Map(t, report.Caches).Length(0)
}
