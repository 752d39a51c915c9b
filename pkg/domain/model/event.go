package model

import (
	"strings"
	"time"

	"github.com/drover-dev/drover/pkg/domain/types"
)

// PullRequestEvent represents a pull_request webhook event reduced to the
// fields the release guard and pipeline consume. It is produced once per
// delivery and never persisted.
type PullRequestEvent struct {
	DeliveryID     string    // Retrieved from X-GitHub-Delivery header
	Action         string    // Event action (e.g. closed, opened)
	Owner          string    // Repository owner login
	Repo           string    // Repository name
	Repository     string    // Full name (owner/repo)
	CloneURL       string    // HTTPS clone URL of the repository
	Number         int       // Pull request number
	Title          string    // Pull request title
	HeadRef        string    // Source branch name
	BaseRef        string    // Target branch name
	Merged         bool      // True only when the PR was merged, not merely closed
	MergeCommitSHA string    // Merge commit on the base branch, if provided
	Sender         string    // Sender username
	ReceivedAt     time.Time // Time when the event was received
}

// TriggersRelease reports whether this event satisfies the release guard:
// a pull_request closed event, targeting baseBranch, whose head branch
// carries the release-pr/ prefix, and which was actually merged. A closed
// but unmerged PR must not trigger a run.
func (e *PullRequestEvent) TriggersRelease(baseBranch string) bool {
	if e.Action != "closed" {
		return false
	}
	if e.BaseRef != baseBranch {
		return false
	}
	if !strings.HasPrefix(e.HeadRef, types.ReleaseBranchPrefix) {
		return false
	}
	return e.Merged
}

// ExtractVersion derives the version string from a PR title by removing the
// literal "release: " prefix. The prefix is only stripped at the very start
// of the title; titles without it pass through unchanged. The result is not
// validated further.
func ExtractVersion(title string) string {
	return strings.TrimPrefix(title, types.ReleaseTitlePrefix)
}

// TagMessage returns the annotation message for a release tag.
func TagMessage(version string) string {
	return "Release " + version
}
