package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/domain/types"
	"github.com/inkwell-labs/mnemosyne/pkg/service/composer"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
	"github.com/inkwell-labs/mnemosyne/pkg/service/window"
	"github.com/inkwell-labs/mnemosyne/pkg/utils/async"
)

const defaultBasePrompt = "You are a thoughtful creative-writing companion. Stay in character, remember what the user has shared, and keep the conversation flowing."

// ChatInput is one user turn in a companion conversation
type ChatInput struct {
	Scope      model.Scope
	Message    string
	BasePrompt string
}

// ChatOutput is the companion's reply plus the updated window
type ChatOutput struct {
	Reply  string
	Window *model.Window
}

// ChatUseCase runs a single conversation turn: augment the prompt with
// recalled context, call the LLM, and record both sides of the exchange.
type ChatUseCase struct {
	llm      gollem.LLMClient
	recall   *recall.Service
	windows  *window.Manager
	composer *composer.Composer
	monitor  *monitor.Monitor
}

func NewChatUseCase(llm gollem.LLMClient, recallSvc *recall.Service, windows *window.Manager, comp *composer.Composer, mon *monitor.Monitor) *ChatUseCase {
	return &ChatUseCase{
		llm:      llm,
		recall:   recallSvc,
		windows:  windows,
		composer: comp,
		monitor:  mon,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, in ChatInput) (*ChatOutput, error) {
	if uc.llm == nil {
		return nil, ErrLLMNotConfigured
	}
	if strings.TrimSpace(in.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if err := in.Scope.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidScope, "invalid chat scope",
			goerr.V("cause", err.Error()))
	}
	if in.Scope.ConversationID == "" {
		return nil, goerr.Wrap(ErrInvalidScope, "chat requires a conversation",
			goerr.V(UserIDKey, in.Scope.UserID))
	}

	start := time.Now()
	defer func() {
		uc.monitor.ObserveLatency(time.Since(start))
	}()

	uc.windows.Append(ctx, model.Message{
		ConversationID: in.Scope.ConversationID,
		Role:           types.RoleUser,
		Content:        in.Message,
	})

	basePrompt := in.BasePrompt
	if basePrompt == "" {
		basePrompt = defaultBasePrompt
	}
	systemPrompt := uc.composer.BuildPrompt(ctx, basePrompt, in.Scope)

	agent := gollem.New(uc.llm,
		gollem.WithSystemPrompt(systemPrompt),
	)
	resp, err := agent.Execute(ctx, gollem.Text(in.Message))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate companion reply",
			goerr.V(ConversationIDKey, in.Scope.ConversationID))
	}

	reply := strings.Join(resp.Texts, "\n")

	w := uc.windows.Append(ctx, model.Message{
		ConversationID: in.Scope.ConversationID,
		Role:           types.RoleCompanion,
		Content:        reply,
	})

	// remember the user's turn; a failed memory write never fails the chat
	scope := in.Scope
	message := in.Message
	async.Dispatch(ctx, func(ctx context.Context) error {
		uc.recall.Store(ctx, recall.Input{
			Scope:   scope,
			Kind:    types.MemoryKindPersonal,
			Content: message,
		})
		return nil
	})

	return &ChatOutput{Reply: reply, Window: w}, nil
}

// Window returns the conversation's current window, or nil when the
// conversation has no messages
func (uc *ChatUseCase) Window(ctx context.Context, id types.ConversationID) *model.Window {
	return uc.windows.Get(ctx, id)
}
