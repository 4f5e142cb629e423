package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
	"github.com/inkwell-labs/mnemosyne/pkg/service/composer"
	"github.com/inkwell-labs/mnemosyne/pkg/service/embedding"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
	"github.com/inkwell-labs/mnemosyne/pkg/service/window"
)

type UseCases struct {
	repo     interfaces.Repository
	llm      gollem.LLMClient
	embedder interfaces.Embedder
	recall   *recall.Service
	windows  *window.Manager
	composer *composer.Composer
	monitor  *monitor.Monitor

	Chat    *ChatUseCase
	Memory  *MemoryUseCase
	Context *ContextUseCase
	Stats   *StatsUseCase
}

type Option func(*UseCases)

func WithLLMClient(llm gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llm = llm
	}
}

func WithEmbedder(embedder interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = embedder
	}
}

func WithRecall(svc *recall.Service) Option {
	return func(uc *UseCases) {
		uc.recall = svc
	}
}

func WithWindows(mgr *window.Manager) Option {
	return func(uc *UseCases) {
		uc.windows = mgr
	}
}

func WithComposer(c *composer.Composer) Option {
	return func(uc *UseCases) {
		uc.composer = c
	}
}

func WithMonitor(m *monitor.Monitor) Option {
	return func(uc *UseCases) {
		uc.monitor = m
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	// an absent LLM client degrades the embedder to zero vectors, which
	// keeps the keyword fallback path working
	if uc.embedder == nil {
		if client, ok := uc.llm.(embedding.Client); ok {
			uc.embedder = embedding.New(client)
		} else {
			uc.embedder = embedding.New(nil)
		}
	}
	if uc.recall == nil {
		uc.recall = recall.New(repo.Memory(), uc.embedder)
	}
	if uc.windows == nil {
		uc.windows = window.New(repo.Message())
	}
	if uc.composer == nil {
		uc.composer = composer.New(uc.recall, uc.windows)
	}
	if uc.monitor == nil {
		uc.monitor = monitor.New()
	}

	uc.Chat = NewChatUseCase(uc.llm, uc.recall, uc.windows, uc.composer, uc.monitor)
	uc.Memory = NewMemoryUseCase(uc.recall, uc.monitor)
	uc.Context = NewContextUseCase(uc.composer)
	uc.Stats = NewStatsUseCase(uc.monitor)

	return uc
}
