package usecase

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/service/monitor"
	"github.com/inkwell-labs/mnemosyne/pkg/service/recall"
)

// MemoryUseCase exposes explicit memory storage and ranked search
type MemoryUseCase struct {
	recall  *recall.Service
	monitor *monitor.Monitor
}

func NewMemoryUseCase(recallSvc *recall.Service, mon *monitor.Monitor) *MemoryUseCase {
	return &MemoryUseCase{
		recall:  recallSvc,
		monitor: mon,
	}
}

// Store persists a memory. Unlike implicit writes during chat, an
// explicit store surfaces failure to the caller.
func (uc *MemoryUseCase) Store(ctx context.Context, in recall.Input) (*model.Memory, error) {
	if err := in.Scope.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidScope, "invalid memory scope",
			goerr.V("cause", err.Error()))
	}

	created := uc.recall.Store(ctx, in)
	if created == nil {
		return nil, goerr.Wrap(ErrMemoryNotStored, "memory store failed",
			goerr.V(UserIDKey, in.Scope.UserID))
	}
	return created, nil
}

// Search returns up to limit memories ranked by relevance to query
func (uc *MemoryUseCase) Search(ctx context.Context, query string, scope model.Scope, limit int) ([]*model.Memory, error) {
	if err := scope.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidScope, "invalid search scope",
			goerr.V("cause", err.Error()))
	}

	start := time.Now()
	defer func() {
		uc.monitor.ObserveLatency(time.Since(start))
	}()

	return uc.recall.Retrieve(ctx, query, scope, limit), nil
}
