package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/domain/model"
	"github.com/drover-dev/drover/pkg/domain/types"
	"github.com/drover-dev/drover/pkg/utils/async"
)

type webhookUseCase struct {
	tagger     interfaces.TaggerUseCase
	baseBranch string
}

// WebhookOption configures the webhook use case.
type WebhookOption func(*webhookUseCase)

// WithBaseBranch overrides the base branch the release guard matches against.
func WithBaseBranch(branch string) WebhookOption {
	return func(uc *webhookUseCase) {
		uc.baseBranch = branch
	}
}

// NewWebhook creates a new instance of WebhookUseCase
func NewWebhook(tagger interfaces.TaggerUseCase, opts ...WebhookOption) interfaces.WebhookUseCase {
	uc := &webhookUseCase{
		tagger:     tagger,
		baseBranch: types.DefaultBaseBranch,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ProcessEvent evaluates the release guard for a pull_request event and
// dispatches the release pipeline when it matches. The pipeline runs
// detached so the webhook response is not held open; everything that does
// not match the guard is acknowledged and dropped.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.PullRequestEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing pull_request event",
		"delivery_id", event.DeliveryID,
		"action", event.Action,
		"repository", event.Repository,
		"number", event.Number,
		"head", event.HeadRef,
		"base", event.BaseRef,
		"merged", event.Merged,
	)

	if !event.TriggersRelease(uc.baseBranch) {
		logger.Debug("Event does not trigger a release",
			"repository", event.Repository,
			"number", event.Number,
		)
		return nil
	}

	logger.Info("Release guard matched, dispatching run",
		"repository", event.Repository,
		"number", event.Number,
		"title", event.Title,
	)

	async.Dispatch(ctx, func(ctx context.Context) error {
		_, err := uc.tagger.RunRelease(ctx, event)
		return err
	})

	return nil
}
