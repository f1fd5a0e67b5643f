package stealth

import (
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/stretchr/testify/assert"
)

func TestEngine_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "stealth", New().Name())
}

func TestLauncherFor_AppliesProxy(t *testing.T) {
	t.Parallel()

	l := launcherFor(&fetchcore.FetchRequest{Proxy: "http://proxy:8080"})
	assert.NotNil(t, l)
}

func TestLauncherFor_NoProxy(t *testing.T) {
	t.Parallel()

	l := launcherFor(&fetchcore.FetchRequest{})
	assert.NotNil(t, l)
}
