package mock

import (
	"context"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.Engine = (*Engine)(nil)

// Engine is a mock implementation of fetchcore.Engine.
type Engine struct {
	NameFn  func() string
	FetchFn func(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error)
}

func (e *Engine) Name() string { return e.NameFn() }

func (e *Engine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	return e.FetchFn(ctx, req)
}
