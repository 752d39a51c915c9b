package interfaces

import (
	"context"

	"github.com/drover-dev/drover/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent evaluates the release guard for a pull_request event and,
	// when it matches, registers and dispatches a release run
	ProcessEvent(ctx context.Context, event *model.PullRequestEvent) error
}

// TaggerUseCase defines the release pipeline execution
type TaggerUseCase interface {
	// RunRelease executes the full step sequence for an accepted event and
	// returns the finished run record
	RunRelease(ctx context.Context, event *model.PullRequestEvent) (*model.ReleaseRun, error)
}
