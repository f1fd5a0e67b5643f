package mock

import (
	"context"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.BrowserPool = (*BrowserPool)(nil)

// BrowserPool is a mock implementation of fetchcore.BrowserPool.
type BrowserPool struct {
	ConnectFn    func(ctx context.Context, cfg fetchcore.PoolConfig) error
	FetchInTabFn func(ctx context.Context, url string, opts fetchcore.FetchInTabOptions) (string, int, error)
	DisconnectFn func() error
	StatusFn     func() fetchcore.PoolStatus
}

func (p *BrowserPool) Connect(ctx context.Context, cfg fetchcore.PoolConfig) error {
	return p.ConnectFn(ctx, cfg)
}

func (p *BrowserPool) FetchInTab(ctx context.Context, url string, opts fetchcore.FetchInTabOptions) (string, int, error) {
	return p.FetchInTabFn(ctx, url, opts)
}

func (p *BrowserPool) Disconnect() error {
	return p.DisconnectFn()
}

func (p *BrowserPool) Status() fetchcore.PoolStatus {
	return p.StatusFn()
}
