//go:build integration

package stealth_test

import (
	"context"
	"testing"
	"time"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/stealth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Fetch_RendersPage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e := stealth.New()
	result, err := e.Fetch(ctx, &fetchcore.FetchRequest{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, 200, result.StatusCode)
	assert.Contains(t, result.Content, "<html")
}

func TestEngine_Fetch_WaitForJS(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e := stealth.New()
	result, err := e.Fetch(ctx, &fetchcore.FetchRequest{URL: "https://example.com", WaitForJS: true, RenderDelayMs: 500})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Content)
}
