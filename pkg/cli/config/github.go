package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	ghinfra "github.com/drover-dev/drover/pkg/infra/github"
)

// GitHub holds GitHub API credentials and webhook configuration. App
// credentials take precedence over a plain access token when both are set.
type GitHub struct {
	WebhookSecret  string `masq:"secret"`
	Token          string `masq:"secret"`
	AppID          int64
	InstallationID int64
	PrivateKeyFile string
}

// Flags returns CLI flags for the GitHub API credentials
func (c *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-token",
			Usage:       "GitHub access token used for API calls and tag push",
			Destination: &c.Token,
			Sources:     cli.EnvVars("DROVER_GITHUB_TOKEN", "GITHUB_TOKEN"),
		},
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("DROVER_GITHUB_APP_ID"),
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App installation ID",
			Destination: &c.InstallationID,
			Sources:     cli.EnvVars("DROVER_GITHUB_INSTALLATION_ID"),
		},
		&cli.StringFlag{
			Name:        "github-private-key-file",
			Usage:       "Path to the GitHub App private key (PEM)",
			Destination: &c.PrivateKeyFile,
			Sources:     cli.EnvVars("DROVER_GITHUB_PRIVATE_KEY_FILE"),
		},
	}
}

// WebhookFlags returns CLI flags for webhook delivery verification
func (c *GitHub) WebhookFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "github-webhook-secret",
			Usage:       "GitHub webhook secret",
			Required:    true,
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("DROVER_GITHUB_WEBHOOK_SECRET"),
		},
	}
}

// Client builds a GitHub API client from the configured credentials. It
// returns nil without error when no credentials are set.
func (c *GitHub) Client() (*ghinfra.Client, error) {
	switch {
	case c.AppID != 0:
		if c.InstallationID == 0 || c.PrivateKeyFile == "" {
			return nil, goerr.New("GitHub App credentials are incomplete",
				goerr.V("app_id", c.AppID),
				goerr.V("installation_id", c.InstallationID))
		}
		key, err := os.ReadFile(c.PrivateKeyFile)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read GitHub App private key",
				goerr.V("path", c.PrivateKeyFile))
		}
		return ghinfra.NewAppClient(c.AppID, c.InstallationID, key)
	case c.Token != "":
		return ghinfra.NewTokenClient(c.Token), nil
	default:
		return nil, nil
	}
}
