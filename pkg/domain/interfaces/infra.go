package interfaces

import (
	"context"

	"github.com/drover-dev/drover/pkg/domain/model"
)

// GitClient defines the version-control operations the pipeline needs. All
// operations act on a working copy rooted at dir.
type GitClient interface {
	// Clone fetches a working copy of the repository at the given branch
	Clone(ctx context.Context, url, dir, branch string) error

	// Checkout moves the working copy to a specific commit
	Checkout(ctx context.Context, dir, sha string) error

	// SetIdentity sets the committer name and email in the working copy's
	// local configuration
	SetIdentity(ctx context.Context, dir, name, email string) error

	// CreateTag creates an annotated tag at HEAD
	CreateTag(ctx context.Context, dir, name, message string) error

	// PushTag pushes a single tag reference to the named remote
	PushTag(ctx context.Context, dir, remote, name string) error
}

// CacheStore persists build caches between runs. Both directions are
// best-effort: callers treat errors as misses, never as run failures.
type CacheStore interface {
	// Restore unpacks the entry for key into dir. It returns false on a miss.
	Restore(ctx context.Context, key, dir string) (bool, error)

	// Save packs the given paths under dir into the entry for key.
	Save(ctx context.Context, key, dir string, paths []string) error
}

// ToolRunner executes an external command in a working directory and returns
// its combined output.
type ToolRunner interface {
	Run(ctx context.Context, dir string, argv []string) (string, error)
}

// RunRepository stores release run records for inspection. The pipeline only
// ever writes; reads belong to the audit surfaces.
type RunRepository interface {
	Put(ctx context.Context, run *model.ReleaseRun) error
	Get(ctx context.Context, id string) (*model.ReleaseRun, error)
	List(ctx context.Context, limit int) ([]*model.ReleaseRun, error)
}

// Notifier reports a finished run to an external channel.
type Notifier interface {
	NotifyRun(ctx context.Context, run *model.ReleaseRun) error
}
