package config

import (
	"time"

	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/domain/types"
)

// Release holds release pipeline configuration
type Release struct {
	BaseBranch string
	Remote     string
	BotName    string
	BotEmail   string
	Timeout    time.Duration
}

// Flags returns CLI flags for release pipeline configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "base-branch",
			Usage:       "Base branch a release pull request must target",
			Value:       types.DefaultBaseBranch,
			Destination: &c.BaseBranch,
			Sources:     cli.EnvVars("DROVER_BASE_BRANCH"),
		},
		&cli.StringFlag{
			Name:        "git-remote",
			Usage:       "Remote the release tag is pushed to",
			Value:       types.DefaultRemote,
			Destination: &c.Remote,
			Sources:     cli.EnvVars("DROVER_GIT_REMOTE"),
		},
		&cli.StringFlag{
			Name:        "bot-name",
			Usage:       "Committer name used for the annotated tag",
			Value:       types.DefaultBotName,
			Destination: &c.BotName,
			Sources:     cli.EnvVars("DROVER_BOT_NAME"),
		},
		&cli.StringFlag{
			Name:        "bot-email",
			Usage:       "Committer email used for the annotated tag",
			Value:       types.DefaultBotEmail,
			Destination: &c.BotEmail,
			Sources:     cli.EnvVars("DROVER_BOT_EMAIL"),
		},
		&cli.DurationFlag{
			Name:        "run-timeout",
			Usage:       "Upper bound for one release run (0 disables)",
			Value:       types.DefaultRunTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("DROVER_RUN_TIMEOUT"),
		},
	}
}
