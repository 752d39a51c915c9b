package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/infra/firestore"
	"github.com/drover-dev/drover/pkg/infra/memory"
)

// Firestore holds run record storage configuration. Without a project ID,
// run records are kept in memory and lost on restart.
type Firestore struct {
	ProjectID  string
	DatabaseID string
}

// Flags returns CLI flags for run record storage configuration
func (c *Firestore) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Google Cloud project ID for run records",
			Destination: &c.ProjectID,
			Sources:     cli.EnvVars("DROVER_FIRESTORE_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Destination: &c.DatabaseID,
			Sources:     cli.EnvVars("DROVER_FIRESTORE_DATABASE_ID"),
		},
	}
}

// Repository builds the run repository from the configuration. The returned
// closer releases the underlying client and is safe to call for either kind.
func (c *Firestore) Repository(ctx context.Context) (interfaces.RunRepository, func(), error) {
	if c.ProjectID == "" {
		return memory.New(), func() {}, nil
	}

	repo, err := firestore.New(ctx, c.ProjectID, c.DatabaseID)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create Firestore repository",
			goerr.V("project_id", c.ProjectID))
	}

	return repo, func() { _ = repo.Close() }, nil
}
