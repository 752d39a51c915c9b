package cache

import (
	"context"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// LocalStore keeps cache archives on a billy filesystem, one gzip compressed
// tarball per key. Production uses a directory on the host; tests swap in an
// in-memory filesystem.
type LocalStore struct {
	fs billy.Filesystem
}

// NewLocalStore creates a store rooted at the given host directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{fs: osfs.New(root)}
}

// NewLocalStoreWithFS creates a store over an arbitrary filesystem.
func NewLocalStoreWithFS(fs billy.Filesystem) *LocalStore {
	return &LocalStore{fs: fs}
}

func objectName(key string) string {
	return key + ".tgz"
}

// Restore extracts the archive for key into dir. A missing archive is
// reported as a miss, not an error.
func (s *LocalStore) Restore(ctx context.Context, key, dir string) (bool, error) {
	f, err := s.fs.Open(objectName(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, goerr.Wrap(err, "failed to open cache archive", goerr.V("key", key))
	}
	defer f.Close()

	if err := unpack(f, dir); err != nil {
		return false, goerr.Wrap(err, "failed to extract cache archive", goerr.V("key", key))
	}

	ctxlog.From(ctx).Debug("restored cache archive", "key", key)
	return true, nil
}

// Save archives paths under dir and stores the result for key. An existing
// archive for the same key is kept as-is.
func (s *LocalStore) Save(ctx context.Context, key, dir string, paths []string) error {
	if _, err := s.fs.Stat(objectName(key)); err == nil {
		ctxlog.From(ctx).Debug("cache archive already exists", "key", key)
		return nil
	}

	tmpName := objectName(key) + ".tmp"
	f, err := s.fs.Create(tmpName)
	if err != nil {
		return goerr.Wrap(err, "failed to create cache archive", goerr.V("key", key))
	}

	if err := pack(f, dir, paths); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(tmpName)
		return err
	}
	if err := f.Close(); err != nil {
		return goerr.Wrap(err, "failed to close cache archive", goerr.V("key", key))
	}
	if err := s.fs.Rename(tmpName, objectName(key)); err != nil {
		return goerr.Wrap(err, "failed to store cache archive", goerr.V("key", key))
	}

	ctxlog.From(ctx).Debug("saved cache archive", "key", key, "paths", paths)
	return nil
}
