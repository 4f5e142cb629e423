package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/inkwell-labs/mnemosyne/pkg/domain/model"
	"github.com/inkwell-labs/mnemosyne/pkg/service/composer"
)

// ContextUseCase composes augmented prompts without running a chat turn
type ContextUseCase struct {
	composer *composer.Composer
}

func NewContextUseCase(c *composer.Composer) *ContextUseCase {
	return &ContextUseCase{composer: c}
}

// Compose builds the augmented prompt for the scope. Composition itself
// never fails; only a malformed scope is rejected.
func (uc *ContextUseCase) Compose(ctx context.Context, basePrompt string, scope model.Scope) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidScope, "invalid context scope",
			goerr.V("cause", err.Error()))
	}
	return uc.composer.BuildPrompt(ctx, basePrompt, scope), nil
}
