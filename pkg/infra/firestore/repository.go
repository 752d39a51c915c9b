package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/drover-dev/drover/pkg/domain/model"
)

const runCollection = "runs"

// Repository persists run records in Firestore so audit history survives
// restarts and is shared across instances.
type Repository struct {
	client *firestore.Client
}

// New creates a repository for the given project and database.
func New(ctx context.Context, projectID, databaseID string) (*Repository, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID),
		)
	}

	return &Repository{client: client}, nil
}

// Put stores the run, replacing any previous record with the same ID.
func (r *Repository) Put(ctx context.Context, run *model.ReleaseRun) error {
	if run.ID == "" {
		return goerr.New("run ID is required")
	}

	if _, err := r.client.Collection(runCollection).Doc(run.ID).Set(ctx, run); err != nil {
		return goerr.Wrap(err, "failed to put run record", goerr.V("id", run.ID))
	}
	return nil
}

// Get returns the run with the given ID, or nil when no record exists.
func (r *Repository) Get(ctx context.Context, id string) (*model.ReleaseRun, error) {
	doc, err := r.client.Collection(runCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get run record", goerr.V("id", id))
	}

	var run model.ReleaseRun
	if err := doc.DataTo(&run); err != nil {
		return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("id", id))
	}
	return &run, nil
}

// List returns runs ordered newest first. A positive limit caps the result.
func (r *Repository) List(ctx context.Context, limit int) ([]*model.ReleaseRun, error) {
	query := r.client.Collection(runCollection).OrderBy("started_at", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var runs []*model.ReleaseRun
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate run records")
		}

		var run model.ReleaseRun
		if err := doc.DataTo(&run); err != nil {
			return nil, goerr.Wrap(err, "failed to decode run record", goerr.V("id", doc.Ref.ID))
		}
		runs = append(runs, &run)
	}

	return runs, nil
}

// Close releases the underlying client.
func (r *Repository) Close() error {
	return r.client.Close()
}
