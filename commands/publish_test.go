package commands

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPublishWithFile(t *testing.T) {
	isolate(t)

	file := datasetFile(t)
	remote := origin(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote))

	first := head(t, remote, "gh-pages")
	assert.NotEmpty(t, first)
	assert.FileExists(t, filepath.Join(out, "index.html"))
	assert.FileExists(t, filepath.Join(out, "manifest.json"))

	// identical content publishes nothing
	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote))
	assert.Equal(t, first, head(t, remote, "gh-pages"))

	// --force commits regardless
	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote, "--force"))
	assert.NotEqual(t, first, head(t, remote, "gh-pages"))
}

func TestRunPublishWithDryRun(t *testing.T) {
	isolate(t)

	file := datasetFile(t)
	remote := origin(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote, "--dry-run"))

	assert.NoDirExists(t, out)

	repo, err := git.PlainOpen(remote)
	require.NoError(t, err)

	_, err = repo.Reference(plumbing.NewBranchReferenceName("gh-pages"), true)
	assert.Error(t, err)
}

func TestRunPublishWithBranch(t *testing.T) {
	isolate(t)

	file := datasetFile(t)
	remote := origin(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote, "--branch", "main"))

	assert.NotEmpty(t, head(t, remote, "main"))
}

func TestRunPublishWithoutRemote(t *testing.T) {
	isolate(t)

	err := execute(t, "publish", "--file", datasetFile(t))

	assert.ErrorContains(t, err, "--remote")
}
