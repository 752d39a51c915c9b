package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pelletier/go-toml/v2"

	"github.com/drover-dev/drover/pkg/domain/model"
)

func TestDefaultPolicy(t *testing.T) {
	p := model.DefaultPolicy()

	gt.Value(t, p.Tool.Install[0]).Equal("cargo")
	gt.Value(t, p.Cache.Lockfile).Equal("Cargo.lock")
	gt.Value(t, p.Cache.SharedKey).Equal("release")

	// The release argv must keep tagging and pushing out of the tool's hands.
	var hasNoTag, hasNoPush bool
	for _, arg := range p.Tool.Release {
		switch arg {
		case "--no-tag":
			hasNoTag = true
		case "--no-push":
			hasNoPush = true
		}
	}
	gt.Value(t, hasNoTag).Equal(true)
	gt.Value(t, hasNoPush).Equal(true)
}

func TestRepoPolicy_Merge(t *testing.T) {
	tests := []struct {
		name     string
		override model.RepoPolicy
		check    func(t *testing.T, merged model.RepoPolicy)
	}{
		{
			name:     "empty override keeps defaults",
			override: model.RepoPolicy{},
			check: func(t *testing.T, merged model.RepoPolicy) {
				gt.Value(t, merged).Equal(model.DefaultPolicy())
			},
		},
		{
			name: "tool override replaces argv only",
			override: model.RepoPolicy{
				Tool: model.ToolPolicy{
					Release: []string{"knope", "release"},
				},
			},
			check: func(t *testing.T, merged model.RepoPolicy) {
				gt.Value(t, merged.Tool.Release).Equal([]string{"knope", "release"})
				gt.Value(t, merged.Tool.Install).Equal(model.DefaultPolicy().Tool.Install)
				gt.Value(t, merged.Cache.Lockfile).Equal("Cargo.lock")
			},
		},
		{
			name: "cache override",
			override: model.RepoPolicy{
				Cache: model.CachePolicy{
					Lockfile:  "go.sum",
					Paths:     []string{"dist"},
					SharedKey: "go-release",
				},
			},
			check: func(t *testing.T, merged model.RepoPolicy) {
				gt.Value(t, merged.Cache.Lockfile).Equal("go.sum")
				gt.Value(t, merged.Cache.Paths).Equal([]string{"dist"})
				gt.Value(t, merged.Cache.SharedKey).Equal("go-release")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := model.DefaultPolicy().Merge(tt.override)
			tt.check(t, merged)
		})
	}
}

func TestCachePolicy_CacheKey(t *testing.T) {
	policy := model.DefaultPolicy().Cache

	key := policy.CacheKey([]byte("[[package]]\nname = \"serde\"\n"))
	gt.True(t, strings.HasPrefix(key, "release-"))
	gt.Value(t, len(key)).Equal(len("release-") + 64)

	// Same contents derive the same key.
	gt.Value(t, policy.CacheKey([]byte("[[package]]\nname = \"serde\"\n"))).Equal(key)

	// Different contents roll the key over.
	gt.Value(t, policy.CacheKey([]byte("[[package]]\nname = \"tokio\"\n"))).NotEqual(key)

	// A missing lockfile falls back to a constant suffix.
	gt.Value(t, policy.CacheKey(nil)).Equal("release-nolock")

	// An empty lockfile is still hashed, not treated as missing.
	gt.Value(t, policy.CacheKey([]byte{})).NotEqual("release-nolock")
}

func TestRepoPolicy_TOML(t *testing.T) {
	doc := []byte(`
[tool]
install = ["cargo", "install", "cargo-release@0.25", "--locked"]
release = ["cargo", "release", "--execute", "--no-confirm", "--no-tag", "--no-push"]

[cache]
lockfile = "Cargo.lock"
paths = ["target"]
shared-key = "release"
`)

	var p model.RepoPolicy
	gt.NoError(t, toml.Unmarshal(doc, &p))
	gt.Value(t, p.Cache.SharedKey).Equal("release")
	gt.Value(t, p.Tool.Release[len(p.Tool.Release)-1]).Equal("--no-push")
}
