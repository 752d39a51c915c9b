package model

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/drover-dev/drover/pkg/domain/types"
)

// RepoPolicy configures how a repository is released. The server-wide
// defaults follow the original cargo-release flow; a repository may override
// them through a .drover.toml file at its root.
type RepoPolicy struct {
	Tool  ToolPolicy  `toml:"tool"`
	Cache CachePolicy `toml:"cache"`
}

// ToolPolicy holds the argv for the two external tool invocations. Install
// pins the tool (major version pinning is part of the argv by convention);
// Release must carry the flags that suppress the tool's own tag creation and
// push, since the pipeline performs tagging itself.
type ToolPolicy struct {
	Install []string `toml:"install"`
	Release []string `toml:"release"`
}

// CachePolicy describes what to cache and how to key it.
type CachePolicy struct {
	Lockfile  string   `toml:"lockfile"`
	Paths     []string `toml:"paths"`
	SharedKey string   `toml:"shared-key"`
}

// CacheKey derives the cache entry key from the lockfile contents. The shared
// key is joined with the SHA-256 of the lockfile so a dependency change rolls
// the cache over. Pass nil for a missing lockfile to get the constant
// fallback key.
func (p CachePolicy) CacheKey(lockfile []byte) string {
	if lockfile == nil {
		return p.SharedKey + "-nolock"
	}

	sum := sha256.Sum256(lockfile)
	return p.SharedKey + "-" + hex.EncodeToString(sum[:])
}

// DefaultPolicy returns the built-in release policy: cargo-release pinned to
// its 0.25 line, invoked in no-tag/no-push mode, caching the target directory
// keyed by Cargo.lock.
func DefaultPolicy() RepoPolicy {
	return RepoPolicy{
		Tool: ToolPolicy{
			Install: []string{"cargo", "install", "cargo-release@0.25", "--locked"},
			Release: []string{"cargo", "release", "--execute", "--no-confirm", "--no-tag", "--no-push"},
		},
		Cache: CachePolicy{
			Lockfile:  "Cargo.lock",
			Paths:     []string{"target"},
			SharedKey: types.DefaultCacheSharedKey,
		},
	}
}

// Merge returns base with every field the override sets replaced. Empty
// override fields keep the base value.
func (p RepoPolicy) Merge(override RepoPolicy) RepoPolicy {
	merged := p
	if len(override.Tool.Install) > 0 {
		merged.Tool.Install = override.Tool.Install
	}
	if len(override.Tool.Release) > 0 {
		merged.Tool.Release = override.Tool.Release
	}
	if override.Cache.Lockfile != "" {
		merged.Cache.Lockfile = override.Cache.Lockfile
	}
	if len(override.Cache.Paths) > 0 {
		merged.Cache.Paths = override.Cache.Paths
	}
	if override.Cache.SharedKey != "" {
		merged.Cache.SharedKey = override.Cache.SharedKey
	}
	return merged
}
