package github

import (
	"context"
	"net/http"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
)

// Client wraps the GitHub API client and carries the token source the git
// layer uses for authenticated clone and push.
type Client struct {
	api    *github.Client
	tokens interfaces.TokenSource
}

// NewAppClient creates a client authenticated as a GitHub App installation
func NewAppClient(appID, installationID int64, privateKey []byte) (*Client, error) {
	itr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport")
	}

	return &Client{
		api:    github.NewClient(&http.Client{Transport: itr}),
		tokens: itr,
	}, nil
}

// NewTokenClient creates a client authenticated with a personal access token
func NewTokenClient(token string) *Client {
	return &Client{
		api:    github.NewClient(nil).WithAuthToken(token),
		tokens: StaticTokenSource(token),
	}
}

// CreateComment creates a comment on a pull request or issue
func (c *Client) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	return c.api.Issues.CreateComment(ctx, owner, repo, number, comment)
}

// TokenSource returns the token source backing this client.
func (c *Client) TokenSource() interfaces.TokenSource {
	return c.tokens
}

// StaticTokenSource is a TokenSource yielding a fixed token (PAT mode).
type StaticTokenSource string

// Token returns the fixed token
func (s StaticTokenSource) Token(ctx context.Context) (string, error) {
	if s == "" {
		return "", goerr.New("no access token configured")
	}
	return string(s), nil
}
