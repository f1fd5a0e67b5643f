//go:build integration

package advanced_test

import (
	"context"
	"testing"
	"time"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/advanced"
	"github.com/archfetch/fetchcore/rodpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_Fetch_CapturesAPIAndContent(t *testing.T) {
	t.Parallel()

	pool := rodpool.New()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, pool.Connect(ctx, fetchcore.PoolConfig{BrowserlessURL: "ws://localhost:3000", Size: 1}))
	defer pool.Disconnect()

	orch := advanced.New(pool, nil)

	req := &fetchcore.AdvancedFetchRequest{
		FetchRequest: fetchcore.FetchRequest{URL: "https://example.com"},
		APIPatterns:  []string{"/api/"},
	}
	result, err := orch.Fetch(ctx, req)
	require.NoError(t, err)
	assert.Contains(t, result.Content, "<html")
	assert.NotNil(t, result.APICalls)
	assert.NotNil(t, result.Resources)
}
