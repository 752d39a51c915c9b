package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/m-mizutani/goerr/v2"

	"github.com/drover-dev/drover/pkg/domain/interfaces"
	"github.com/drover-dev/drover/pkg/domain/types"
)

// Client implements interfaces.GitClient on top of go-git. Authentication is
// only attached for HTTP(S) remotes; local paths (used by tests and mirrors)
// need none.
type Client struct {
	tokens interfaces.TokenSource
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithTokenSource sets the token source used for HTTP(S) remotes
func WithTokenSource(ts interfaces.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// New creates a new git client
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone fetches a working copy of the repository for the given branch into
// dir. Only the target branch is fetched; tags are left to the tagging step.
func (c *Client) Clone(ctx context.Context, url, dir, branch string) error {
	auth, err := c.auth(ctx, url)
	if err != nil {
		return err
	}

	_, err = gogit.PlainCloneContext(ctx, dir, false, &gogit.CloneOptions{
		URL:           url,
		ReferenceName: plumbing.NewBranchReferenceName(branch),
		SingleBranch:  true,
		Tags:          gogit.NoTags,
		Auth:          auth,
	})
	if err != nil {
		return goerr.Wrap(err, "failed to clone repository",
			goerr.V("url", url), goerr.V("branch", branch))
	}

	return nil
}

// Checkout moves the working copy in dir to the given commit.
func (c *Client) Checkout(ctx context.Context, dir, sha string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to open repository", goerr.V("dir", dir))
	}

	wt, err := repo.Worktree()
	if err != nil {
		return goerr.Wrap(err, "failed to get worktree", goerr.V("dir", dir))
	}

	if err := wt.Checkout(&gogit.CheckoutOptions{Hash: plumbing.NewHash(sha)}); err != nil {
		return goerr.Wrap(err, "failed to checkout commit",
			goerr.V("dir", dir), goerr.V("sha", sha))
	}

	return nil
}

// SetIdentity writes the committer identity into the working copy's local
// configuration. The mutation is scoped to dir.
func (c *Client) SetIdentity(ctx context.Context, dir, name, email string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to open repository", goerr.V("dir", dir))
	}

	cfg, err := repo.Config()
	if err != nil {
		return goerr.Wrap(err, "failed to read repository config", goerr.V("dir", dir))
	}

	cfg.User.Name = name
	cfg.User.Email = email

	if err := repo.SetConfig(cfg); err != nil {
		return goerr.Wrap(err, "failed to write repository config", goerr.V("dir", dir))
	}

	return nil
}

// CreateTag creates an annotated tag at HEAD, signed with the identity from
// the working copy's configuration. An existing tag of the same name is an
// error; there is no overwrite.
func (c *Client) CreateTag(ctx context.Context, dir, name, message string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to open repository", goerr.V("dir", dir))
	}

	head, err := repo.Head()
	if err != nil {
		return goerr.Wrap(err, "failed to resolve HEAD", goerr.V("dir", dir))
	}

	_, err = repo.CreateTag(name, head.Hash(), &gogit.CreateTagOptions{
		Tagger:  c.tagger(repo),
		Message: message,
	})
	if err != nil {
		if errors.Is(err, gogit.ErrTagExists) {
			return goerr.Wrap(err, "tag already exists", goerr.V("tag", name))
		}
		return goerr.Wrap(err, "failed to create tag",
			goerr.V("dir", dir), goerr.V("tag", name))
	}

	return nil
}

// PushTag pushes the single tag reference to the named remote. A remote-side
// rejection (e.g. the tag already exists with different content) is an error;
// an identical tag already present on the remote is treated as pushed.
func (c *Client) PushTag(ctx context.Context, dir, remote, name string) error {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to open repository", goerr.V("dir", dir))
	}

	auth, err := c.remoteAuth(ctx, repo, remote)
	if err != nil {
		return err
	}

	refspec := gitconfig.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", name, name))
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: remote,
		RefSpecs:   []gitconfig.RefSpec{refspec},
		Auth:       auth,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return goerr.Wrap(err, "failed to push tag",
			goerr.V("remote", remote), goerr.V("tag", name))
	}

	return nil
}

// tagger builds the tag signature from the working copy configuration set by
// SetIdentity, falling back to the default bot identity.
func (c *Client) tagger(repo *gogit.Repository) *object.Signature {
	name, email := types.DefaultBotName, types.DefaultBotEmail
	if cfg, err := repo.Config(); err == nil {
		if cfg.User.Name != "" {
			name = cfg.User.Name
		}
		if cfg.User.Email != "" {
			email = cfg.User.Email
		}
	}
	return &object.Signature{
		Name:  name,
		Email: email,
		When:  time.Now(),
	}
}

// remoteAuth resolves the auth method for the remote's first URL.
func (c *Client) remoteAuth(ctx context.Context, repo *gogit.Repository, remote string) (transport.AuthMethod, error) {
	rem, err := repo.Remote(remote)
	if err != nil {
		return nil, goerr.Wrap(err, "remote not found", goerr.V("remote", remote))
	}

	urls := rem.Config().URLs
	if len(urls) == 0 {
		return nil, goerr.New("remote has no URL", goerr.V("remote", remote))
	}

	return c.auth(ctx, urls[0])
}

// auth returns HTTP basic auth carrying the token for HTTP(S) URLs, and no
// auth otherwise.
func (c *Client) auth(ctx context.Context, url string) (transport.AuthMethod, error) {
	if c.tokens == nil || !strings.HasPrefix(url, "http") {
		return nil, nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get access token")
	}

	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}, nil
}
