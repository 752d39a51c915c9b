package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/drover-dev/drover/pkg/domain/model"
)

// Repository is an in-memory run store for single-process deployments and
// tests. Records are lost on restart.
type Repository struct {
	mu   sync.RWMutex
	runs map[string]*model.ReleaseRun
}

// New creates an empty repository.
func New() *Repository {
	return &Repository{
		runs: make(map[string]*model.ReleaseRun),
	}
}

func clone(run *model.ReleaseRun) *model.ReleaseRun {
	copied := *run
	copied.Steps = append([]model.StepResult(nil), run.Steps...)
	return &copied
}

// Put stores a snapshot of the run, replacing any previous record with the
// same ID.
func (r *Repository) Put(ctx context.Context, run *model.ReleaseRun) error {
	if run.ID == "" {
		return goerr.New("run ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = clone(run)
	return nil
}

// Get returns the run with the given ID, or nil when no record exists.
func (r *Repository) Get(ctx context.Context, id string) (*model.ReleaseRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, nil
	}
	return clone(run), nil
}

// List returns runs ordered newest first. A positive limit caps the result.
func (r *Repository) List(ctx context.Context, limit int) ([]*model.ReleaseRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*model.ReleaseRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, clone(run))
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}
