package config

import (
	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/infra/notify"
)

// Notify holds notification configuration
type Notify struct {
	SlackWebhookURL string `masq:"secret"`
}

// Flags returns CLI flags for notification configuration
func (c *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook URL for run summaries",
			Destination: &c.SlackWebhookURL,
			Sources:     cli.EnvVars("DROVER_SLACK_WEBHOOK_URL"),
		},
	}
}

// Notifier builds the notifier from the configuration
func (c *Notify) Notifier() interfaces.Notifier {
	if c.SlackWebhookURL == "" {
		return &notify.Noop{}
	}
	return notify.NewSlack(c.SlackWebhookURL)
}
