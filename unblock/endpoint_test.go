package unblock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRestEndpoint(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "http://browserless:3000/chrome/unblock", restEndpoint("ws://browserless:3000"))
	assert.Equal(t, "https://browserless:3000/chrome/unblock", restEndpoint("wss://browserless:3000/"))
}
