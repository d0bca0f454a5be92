// Package publish owns the idempotent publication of a rendered site to
// a branch of a git remote. The branch is checked out into a temporary
// clone, its content replaced wholesale, and a commit pushed only when
// the tree actually changed.
package publish

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/mlounello/alcohol-origins-geomap-staging/render"
)

// Action is the outcome of a publish run, as logged and written to the
// Log worksheet.
type Action string

const (
	Published        Action = "published"
	SourceUnchanged  Action = "skipped: source unchanged"
	ContentUnchanged Action = "skipped: content unchanged"
)

// Result is what a publish attempt did. Commit is set only when a commit
// was pushed.
type Result struct {
	Action Action
	Commit string
}

// Publisher publishes a rendered site to a single branch of a git
// remote. Token and Username are only used for http(s) remotes.
type Publisher struct {
	URL      string
	Branch   string
	Author   string
	Email    string
	Token    string
	Username string
}

// Checkout is a temporary clone of the publish branch. Callers must
// Close it.
type Checkout struct {
	dir       string
	repo      *git.Repository
	publisher *Publisher
}

// Checkout fetches the publish branch into a temporary directory. An
// empty remote or a branch that does not exist yet is not an error: the
// first publish creates it.
func (p *Publisher) Checkout() (*Checkout, error) {
	dir, err := os.MkdirTemp("", "geomap-publish")
	if err != nil {
		return nil, err
	}

	checkout, err := p.checkout(dir)
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	return checkout, nil
}

func (p *Publisher) checkout(dir string) (*Checkout, error) {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, err
	}

	// HEAD → the publish branch, so a first commit lands on it
	branch := plumbing.NewBranchReferenceName(p.Branch)
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, branch)); err != nil {
		return nil, err
	}

	if _, err := repo.CreateRemote(&config.RemoteConfig{
		Name: "origin",
		URLs: []string{p.URL},
	}); err != nil {
		return nil, err
	}

	refspec := config.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", p.Branch, p.Branch))

	err = repo.Fetch(&git.FetchOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       p.auth(),
	})

	switch {
	case err == nil:
		remote, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", p.Branch), true)
		if err != nil {
			return nil, err
		}

		if err := repo.Storer.SetReference(plumbing.NewHashReference(branch, remote.Hash())); err != nil {
			return nil, err
		}

		worktree, err := repo.Worktree()
		if err != nil {
			return nil, err
		}

		if err := worktree.Reset(&git.ResetOptions{Commit: remote.Hash(), Mode: git.HardReset}); err != nil {
			return nil, err
		}

	case errors.Is(err, transport.ErrEmptyRemoteRepository) || errors.Is(err, git.NoMatchingRefSpecError{}):
		// first publish

	default:
		return nil, fmt.Errorf("unable to fetch branch %s (%v)", p.Branch, err)
	}

	return &Checkout{
		dir:       dir,
		repo:      repo,
		publisher: p,
	}, nil
}

// Head returns the short hash of the checked out branch head, empty for
// a branch that does not exist yet.
func (c *Checkout) Head() string {
	head, err := c.repo.Head()
	if err != nil {
		return ""
	}

	return head.Hash().String()[:7]
}

// Manifest reads the manifest published on the branch. nil means the
// branch carries none: never published.
func (c *Checkout) Manifest() *render.Manifest {
	m, err := render.ReadManifest(c.dir)
	if err != nil {
		return nil
	}

	return m
}

// Apply replaces the branch content with the site, then commits and
// pushes the result. A clean worktree after the replacement means the
// published content is already identical: no commit, no push.
func (c *Checkout) Apply(site *render.Site, message string) (*Result, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.Name() == git.GitDirName {
			continue
		}

		if err := os.RemoveAll(filepath.Join(c.dir, entry.Name())); err != nil {
			return nil, err
		}
	}

	if err := site.Write(c.dir); err != nil {
		return nil, err
	}

	worktree, err := c.repo.Worktree()
	if err != nil {
		return nil, err
	}

	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return nil, err
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, err
	}

	if status.IsClean() {
		return &Result{Action: ContentUnchanged}, nil
	}

	commit, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  c.publisher.Author,
			Email: c.publisher.Email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("unable to commit to branch %s (%v)", c.publisher.Branch, err)
	}

	refspec := config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", c.publisher.Branch, c.publisher.Branch))

	if err := c.repo.Push(&git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       c.publisher.auth(),
	}); err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil, fmt.Errorf("unable to push branch %s (%v)", c.publisher.Branch, err)
	}

	return &Result{
		Action: Published,
		Commit: commit.String(),
	}, nil
}

// Close removes the temporary clone.
func (c *Checkout) Close() error {
	return os.RemoveAll(c.dir)
}

// auth returns basic auth for http(s) remotes when a token is
// configured. Local paths and ssh remotes authenticate by other means.
func (p *Publisher) auth() transport.AuthMethod {
	if p.Token == "" || !strings.HasPrefix(p.URL, "http") {
		return nil
	}

	username := p.Username
	if username == "" {
		username = "git"
	}

	return &githttp.BasicAuth{
		Username: username,
		Password: p.Token,
	}
}

// Message is the commit message for a publish run.
func Message(hash string, points int) string {
	short := hash
	if len(short) > 7 {
		short = short[:7]
	}

	return fmt.Sprintf("geomap: publish %s (%d points)", short, points)
}
