package cache

import (
	"context"
	"errors"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// GCSStore keeps cache archives as objects in a Cloud Storage bucket so that
// runs on different hosts share one cache.
type GCSStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSOption configures a GCSStore.
type GCSOption func(*GCSStore)

// WithObjectPrefix places all archives under the given object name prefix.
func WithObjectPrefix(prefix string) GCSOption {
	return func(s *GCSStore) {
		s.prefix = prefix
	}
}

// NewGCSStore creates a store backed by the named bucket.
func NewGCSStore(ctx context.Context, bucket string, opts ...GCSOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}

	s := &GCSStore{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *GCSStore) object(key string) string {
	return s.prefix + objectName(key)
}

// Restore extracts the object for key into dir. A missing object is reported
// as a miss, not an error.
func (s *GCSStore) Restore(ctx context.Context, key, dir string) (bool, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object(key)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to open cache object",
			goerr.V("key", key),
			goerr.V("bucket", s.bucket),
		)
	}
	defer r.Close()

	if err := unpack(r, dir); err != nil {
		return false, goerr.Wrap(err, "failed to extract cache object", goerr.V("key", key))
	}

	ctxlog.From(ctx).Debug("restored cache object", "key", key, "bucket", s.bucket)
	return true, nil
}

// Save archives paths under dir and uploads the result for key. The upload is
// conditional on the object not existing, so the first writer wins when runs
// race on the same key.
func (s *GCSStore) Save(ctx context.Context, key, dir string, paths []string) error {
	obj := s.client.Bucket(s.bucket).Object(s.object(key))

	if _, err := obj.Attrs(ctx); err == nil {
		ctxlog.From(ctx).Debug("cache object already exists", "key", key)
		return nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to check cache object", goerr.V("key", key))
	}

	w := obj.If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if err := pack(w, dir, paths); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to store cache object",
			goerr.V("key", key),
			goerr.V("bucket", s.bucket),
		)
	}

	ctxlog.From(ctx).Debug("saved cache object", "key", key, "bucket", s.bucket)
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
