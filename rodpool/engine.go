package rodpool

import (
	"context"
	"time"

	"github.com/archfetch/fetchcore"
)

// DefaultFetchTimeout bounds a single tab-per-request fetch through the
// pool, including navigation, wait, and render delay.
const DefaultFetchTimeout = 30 * time.Second

var _ fetchcore.Engine = (*Engine)(nil)

// Engine is the remote browser-pool fetch engine. It delegates every
// fetch to a BrowserPool using the tab-per-request discipline.
type Engine struct {
	pool fetchcore.BrowserPool
}

// NewEngine wraps an already-connected BrowserPool as a fetchcore.Engine.
func NewEngine(pool fetchcore.BrowserPool) *Engine {
	return &Engine{pool: pool}
}

// Name returns "browser".
func (e *Engine) Name() string { return string(fetchcore.EngineBrowser) }

// Fetch renders the URL in a pooled browser tab and returns the DOM.
func (e *Engine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultFetchTimeout)
	defer cancel()

	html, status, err := e.pool.FetchInTab(ctx, req.URL, fetchcore.FetchInTabOptions{
		RenderDelayMs: req.RenderDelayMs,
	})
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "browser pool fetch: %v", err)
	}

	return &fetchcore.FetchResult{
		StatusCode:   status,
		Content:      html,
		URL:          req.URL,
		EngineUsed:   string(fetchcore.EngineBrowser),
		ResponseType: fetchcore.ResponseText,
	}, nil
}
