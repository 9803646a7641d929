package pathing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetConfigDir(t *testing.T) {
	t.Setenv("ESM_CONFIG_DIR", "")
	assert.Equal(t, "/etc/p1_telegram", GetConfigDir())

	t.Setenv("ESM_CONFIG_DIR", "/tmp/esm")
	assert.Equal(t, "/tmp/esm", GetConfigDir())
}
