package github

import (
	"context"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/domain/model"
)

// EventProcessor routes parsed GitHub webhook payloads to the webhook use
// case. Only pull_request events matter here; every other event type is
// acknowledged and dropped.
type EventProcessor struct {
	webhookUC interfaces.WebhookUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(webhookUC interfaces.WebhookUseCase) *EventProcessor {
	return &EventProcessor{
		webhookUC: webhookUC,
	}
}

// ProcessEvent processes one webhook delivery.
func (p *EventProcessor) ProcessEvent(ctx context.Context, deliveryID, eventType string, payload any) error {
	logger := ctxlog.From(ctx)

	switch e := payload.(type) {
	case *github.PullRequestEvent:
		return p.webhookUC.ProcessEvent(ctx, BuildPullRequestEvent(deliveryID, e))
	default:
		logger.Info("Ignoring unsupported event type",
			"event_type", eventType,
			"delivery_id", deliveryID,
		)
		return nil
	}
}

// BuildPullRequestEvent converts a GitHub pull_request payload into the
// domain event. Missing payload fields become zero values; the release guard
// downstream rejects events that lack what it needs.
func BuildPullRequestEvent(deliveryID string, e *github.PullRequestEvent) *model.PullRequestEvent {
	pr := e.GetPullRequest()

	return &model.PullRequestEvent{
		DeliveryID:     deliveryID,
		Action:         e.GetAction(),
		Owner:          e.GetRepo().GetOwner().GetLogin(),
		Repo:           e.GetRepo().GetName(),
		Repository:     e.GetRepo().GetFullName(),
		CloneURL:       e.GetRepo().GetCloneURL(),
		Number:         e.GetNumber(),
		Title:          pr.GetTitle(),
		HeadRef:        pr.GetHead().GetRef(),
		BaseRef:        pr.GetBase().GetRef(),
		Merged:         pr.GetMerged(),
		MergeCommitSHA: pr.GetMergeCommitSHA(),
		Sender:         e.GetSender().GetLogin(),
		ReceivedAt:     time.Now(),
	}
}
