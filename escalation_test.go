package fetchcore_test

import (
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLadder_NoProxyNoBrowserless(t *testing.T) {
	t.Parallel()

	steps := fetchcore.Ladder(fetchcore.Config{})
	require.Len(t, steps, 2)
	assert.Equal(t, "fast:direct", steps[0].Label)
	assert.Equal(t, "stealth:3s", steps[1].Label)
}

func TestLadder_FullConfig(t *testing.T) {
	t.Parallel()

	steps := fetchcore.Ladder(fetchcore.Config{
		ProxyURL:       "http://proxy:8080",
		BrowserlessURL: "ws://browserless:3000",
	})
	require.Len(t, steps, 6)
	labels := make([]string, len(steps))
	for i, s := range steps {
		labels[i] = s.Label
	}
	assert.Equal(t, []string{
		"fast:proxy", "fast:direct", "browser:pool", "stealth:3s", "stealth:5s", "unblock",
	}, labels)
}

func TestDefaultStep(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "fast:proxy", fetchcore.DefaultStep(fetchcore.Config{ProxyURL: "http://p"}).Label)
	assert.Equal(t, "fast:direct", fetchcore.DefaultStep(fetchcore.Config{}).Label)
}
