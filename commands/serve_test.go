package commands

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunServeWithMissingDirectory(t *testing.T) {
	isolate(t)

	err := execute(t, "serve", "--out", filepath.Join(t.TempDir(), "missing"))

	assert.ErrorContains(t, err, "geomap build")
}
