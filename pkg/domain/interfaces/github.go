package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
)

// GitHubClient defines operations for interacting with the GitHub API
type GitHubClient interface {
	// CreateComment creates a comment on a pull request or issue
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// TokenSource yields an access token usable for git-over-HTTP operations.
// A GitHub App installation transport and a static PAT both satisfy it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}
