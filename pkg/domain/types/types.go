package types

import "time"

// Version is the application version, overridden at build time via
// -ldflags "-X github.com/drover-dev/drover/pkg/domain/types.Version=..."
var Version = "dev"

const (
	// ReleaseBranchPrefix marks head branches whose merge triggers a release run.
	ReleaseBranchPrefix = "release-pr/"

	// ReleaseTitlePrefix is stripped from the PR title to obtain the version
	// string. The trailing space is part of the contract.
	ReleaseTitlePrefix = "release: "

	// DefaultBaseBranch is the branch a release PR must target.
	DefaultBaseBranch = "main"

	// DefaultRemote is the remote the tag is pushed to.
	DefaultRemote = "origin"

	// DefaultBotName and DefaultBotEmail form the committer identity used for
	// tagging, matching the GitHub Actions bot account.
	DefaultBotName  = "github-actions[bot]"
	DefaultBotEmail = "github-actions[bot]@users.noreply.github.com"

	// DefaultCacheSharedKey is the fixed shared-key prefix combined with the
	// lock file hash to form cache keys.
	DefaultCacheSharedKey = "release"

	// PolicyFileName is the optional per-repository override file read from
	// the checked-out working copy.
	PolicyFileName = ".drover.toml"

	// DefaultRunTimeout bounds one release run, standing in for the job
	// timeout a CI platform would impose.
	DefaultRunTimeout = 30 * time.Minute
)
