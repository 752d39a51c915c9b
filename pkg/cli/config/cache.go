package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/infra/cache"
)

// Cache holds build cache storage configuration. A GCS bucket takes
// precedence over the local directory.
type Cache struct {
	Bucket string
	Prefix string
	Dir    string
}

// Flags returns CLI flags for cache storage configuration
func (c *Cache) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "cache-gcs-bucket",
			Usage:       "GCS bucket for build cache archives",
			Destination: &c.Bucket,
			Sources:     cli.EnvVars("DROVER_CACHE_GCS_BUCKET"),
		},
		&cli.StringFlag{
			Name:        "cache-gcs-prefix",
			Usage:       "Object name prefix within the cache bucket",
			Value:       "cache/",
			Destination: &c.Prefix,
			Sources:     cli.EnvVars("DROVER_CACHE_GCS_PREFIX"),
		},
		&cli.StringFlag{
			Name:        "cache-dir",
			Usage:       "Local directory for build cache archives",
			Value:       filepath.Join(os.TempDir(), "drover-cache"),
			Destination: &c.Dir,
			Sources:     cli.EnvVars("DROVER_CACHE_DIR"),
		},
	}
}

// Store builds the cache store from the configuration. The returned closer
// releases the underlying client and is safe to call for either store kind.
func (c *Cache) Store(ctx context.Context) (interfaces.CacheStore, func(), error) {
	if c.Bucket != "" {
		gcs, err := cache.NewGCSStore(ctx, c.Bucket, cache.WithObjectPrefix(c.Prefix))
		if err != nil {
			return nil, nil, goerr.Wrap(err, "failed to create GCS cache store",
				goerr.V("bucket", c.Bucket))
		}
		return gcs, func() { _ = gcs.Close() }, nil
	}

	return cache.NewLocalStore(c.Dir), func() {}, nil
}
