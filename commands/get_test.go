package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunGetWithoutFile(t *testing.T) {
	isolate(t)

	assert.ErrorContains(t, execute(t, "get"), "--file")
}
