package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInit(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "geomap.yaml")

	require.NoError(t, execute(t, "init", "--config", path))
	assert.FileExists(t, path)

	// refuses to overwrite
	assert.Error(t, execute(t, "init", "--config", path))
}

func TestRunInitInCurrentDirectory(t *testing.T) {
	isolate(t)

	require.NoError(t, execute(t, "init"))
	assert.FileExists(t, "geomap.yaml")
}
