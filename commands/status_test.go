package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunStatusWithNeverPublished(t *testing.T) {
	isolate(t)

	err := execute(t, "status", "--remote", origin(t))

	assert.ErrorIs(t, err, ErrStale)
}

func TestRunStatus(t *testing.T) {
	isolate(t)

	file := datasetFile(t)
	remote := origin(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote))

	assert.NoError(t, execute(t, "status", "--file", file, "--remote", remote))
}

func TestRunStatusWithChangedSource(t *testing.T) {
	isolate(t)

	file := datasetFile(t)
	remote := origin(t)
	out := filepath.Join(t.TempDir(), "site")

	require.NoError(t, execute(t, "publish", "--file", file, "--out", out, "--remote", remote))

	b, err := os.ReadFile(file)
	require.NoError(t, err)

	row := "rum-caribbean,,Rum,Sugar,1650 CE,Sugarcane rum distilling,Smith 2005,18.2,-66.5\n"
	changed := filepath.Join(t.TempDir(), "changed.csv")
	require.NoError(t, os.WriteFile(changed, append(b, []byte(row)...), 0600))

	assert.ErrorIs(t, execute(t, "status", "--file", changed, "--remote", remote), ErrStale)
}

func TestRunStatusWithoutRemote(t *testing.T) {
	isolate(t)

	assert.ErrorContains(t, execute(t, "status"), "--remote")
}
