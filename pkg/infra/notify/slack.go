package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"

	"github.com/drover-dev/drover/pkg/domain/model"
)

// SlackNotifier posts run results to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
}

// NewSlack creates a notifier for the given incoming webhook URL.
func NewSlack(webhookURL string) *SlackNotifier {
	return &SlackNotifier{webhookURL: webhookURL}
}

// NotifyRun posts a summary of the finished run.
func (n *SlackNotifier) NotifyRun(ctx context.Context, run *model.ReleaseRun) error {
	fields := []slack.AttachmentField{
		{Title: "Repository", Value: run.Repository, Short: true},
		{Title: "Pull Request", Value: fmt.Sprintf("#%d", run.PRNumber), Short: true},
	}
	if run.Version != "" {
		fields = append(fields, slack.AttachmentField{Title: "Version", Value: run.Version, Short: true})
	}
	if run.TagName != "" {
		fields = append(fields, slack.AttachmentField{Title: "Tag", Value: run.TagName, Short: true})
	}

	attachment := slack.Attachment{
		Color:  "good",
		Title:  fmt.Sprintf("Release run %s", run.Status),
		Fields: fields,
		Footer: fmt.Sprintf("run %s (%s)", run.ID, run.Elapsed().Round(time.Second)),
	}
	if run.Status == model.RunStatusFailed {
		attachment.Color = "danger"
		attachment.Text = run.Error
	}

	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{attachment},
	}
	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post Slack notification", goerr.V("run", run.ID))
	}

	return nil
}

// Noop discards notifications. It stands in when no webhook is configured.
type Noop struct{}

// NotifyRun does nothing.
func (Noop) NotifyRun(ctx context.Context, run *model.ReleaseRun) error {
	return nil
}
