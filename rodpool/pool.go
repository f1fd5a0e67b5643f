// Package rodpool maintains a small set of long-lived connections to a
// remote browserless-compatible endpoint and multiplexes many logical
// fetches over them using a tab-per-request discipline. Each slot keeps
// one keepalive tab open so the remote browser process never idles out
// while requests are in flight on other slots.
package rodpool

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/errgroup"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.BrowserPool = (*Pool)(nil)

// slot is one logical connection to the remote browser endpoint.
type slot struct {
	id int

	mu         sync.Mutex
	browser    *rod.Browser
	keepalive  *rod.Page
	connected  bool
	connecting bool
	stale      bool
	tabsUsed   int

	activeTabs int32 // atomic
}

// Pool is a BrowserPool backed by a remote browserless-style endpoint.
// Pool is safe for concurrent use.
type Pool struct {
	cfg   fetchcore.PoolConfig
	slots []*slot
	next  uint64 // atomic round-robin cursor
}

// New creates an unconnected Pool. Call Connect before use.
func New() *Pool {
	return &Pool{}
}

// Connect warms every slot in parallel. Connect is idempotent: calling it
// again with the same config is a no-op for already-connected slots.
func (p *Pool) Connect(ctx context.Context, cfg fetchcore.PoolConfig) error {
	if cfg.BrowserlessURL == "" {
		return fetchcore.Errorf(fetchcore.EINVALID, "rodpool: browserless url is required")
	}
	size := cfg.Size
	if size <= 0 {
		size = fetchcore.DefaultPoolSize
	}
	p.cfg = cfg

	if len(p.slots) == 0 {
		p.slots = make([]*slot, size)
		for i := range p.slots {
			p.slots[i] = &slot{id: i}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range p.slots {
		s := s
		g.Go(func() error {
			return p.connectSlot(gctx, s)
		})
	}
	return g.Wait()
}

// connectSlot dials the remote endpoint for one slot. It is safe to call
// concurrently for the same slot: a connecting slot is skipped by other
// callers via the connecting flag.
func (p *Pool) connectSlot(ctx context.Context, s *slot) error {
	s.mu.Lock()
	if s.connected || s.connecting {
		s.mu.Unlock()
		return nil
	}
	s.connecting = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.connecting = false
		s.mu.Unlock()
	}()

	endpoint := buildEndpoint(p.cfg)
	browser := rod.New().Context(ctx).ControlURL(endpoint)
	if err := browser.Connect(); err != nil {
		return fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: slot %d connect: %v", s.id, err)
	}

	keepalive, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		return fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: slot %d keepalive page: %v", s.id, err)
	}

	s.mu.Lock()
	s.browser = browser
	s.keepalive = keepalive
	s.connected = true
	s.stale = false
	s.tabsUsed = 0
	s.mu.Unlock()
	return nil
}

// buildEndpoint derives the remote control URL from the pool config,
// appending the stealth launch path and proxy/launch-option query
// parameters the remote endpoint expects.
func buildEndpoint(cfg fetchcore.PoolConfig) string {
	base := cfg.BrowserlessURL
	if cfg.Stealth {
		base = strings.TrimRight(base, "/") + "/chrome/stealth"
	}

	q := url.Values{}
	launchOpts := `{"args":["--window-size=1920,1080","--disable-blink-features=AutomationControlled"]}`
	q.Set("launch", launchOpts)
	if cfg.Proxy != "" {
		q.Set("--proxy-server", cfg.Proxy)
	}

	sep := "?"
	if idx := indexOfQuery(base); idx >= 0 {
		sep = "&"
	}
	return base + sep + q.Encode()
}

func indexOfQuery(s string) int {
	return strings.IndexByte(s, '?')
}

// FetchInTab picks the next slot round-robin, ensures it is connected
// (reconnecting a disconnected slot once, recycling an idle-stale slot),
// opens a new page, navigates, waits for document load plus the render
// delay, and returns the rendered DOM along with the document response
// status (200 if no response event was observed).
func (p *Pool) FetchInTab(ctx context.Context, url string, opts fetchcore.FetchInTabOptions) (string, int, error) {
	if len(p.slots) == 0 {
		return "", 0, fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: pool not connected")
	}

	idx := atomic.AddUint64(&p.next, 1) % uint64(len(p.slots))
	s := p.slots[idx]

	if err := p.ensureSlotReady(ctx, s); err != nil {
		return "", 0, err
	}

	atomic.AddInt32(&s.activeTabs, 1)
	defer atomic.AddInt32(&s.activeTabs, -1)

	html, status, err := fetchInSlot(ctx, s, url, opts)
	if err != nil {
		// one retry after a reconnect, in case the remote dropped the
		// connection between dispatch and use.
		if reconnErr := p.reconnectSlot(ctx, s); reconnErr != nil {
			return "", 0, err
		}
		html, status, err = fetchInSlot(ctx, s, url, opts)
		if err != nil {
			return "", 0, err
		}
	}

	s.mu.Lock()
	s.tabsUsed++
	if s.tabsUsed >= fetchcore.MaxTabsBeforeRecycle {
		s.stale = true
	}
	s.mu.Unlock()

	return html, status, nil
}

// WithBrowser picks the next slot round-robin, ensures it is ready, and
// runs fn with direct access to that slot's *rod.Browser. Unlike
// FetchInTab it does not manage a page itself — callers that need
// multiple tabs, network-event capture, or in-page JS evaluation (the
// advanced-fetch orchestrator) use this to drive the browser directly
// while still sharing the pool's connection lifecycle.
func (p *Pool) WithBrowser(ctx context.Context, fn func(*rod.Browser) error) error {
	if len(p.slots) == 0 {
		return fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: pool not connected")
	}

	idx := atomic.AddUint64(&p.next, 1) % uint64(len(p.slots))
	s := p.slots[idx]

	if err := p.ensureSlotReady(ctx, s); err != nil {
		return err
	}

	atomic.AddInt32(&s.activeTabs, 1)
	defer atomic.AddInt32(&s.activeTabs, -1)

	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()
	if browser == nil {
		return fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: slot %d has no browser", s.id)
	}

	err := fn(browser)

	s.mu.Lock()
	s.tabsUsed++
	if s.tabsUsed >= fetchcore.MaxTabsBeforeRecycle {
		s.stale = true
	}
	s.mu.Unlock()

	return err
}

func (p *Pool) ensureSlotReady(ctx context.Context, s *slot) error {
	s.mu.Lock()
	needsReconnect := !s.connected
	needsRecycle := s.stale && atomic.LoadInt32(&s.activeTabs) == 0
	s.mu.Unlock()

	if needsRecycle {
		return p.reconnectSlot(ctx, s)
	}
	if needsReconnect {
		return p.connectSlot(ctx, s)
	}
	return nil
}

// reconnectSlot tears down and replaces a slot's browser connection.
func (p *Pool) reconnectSlot(ctx context.Context, s *slot) error {
	s.mu.Lock()
	oldBrowser := s.browser
	s.browser = nil
	s.connected = false
	s.mu.Unlock()

	if oldBrowser != nil {
		_ = oldBrowser.Close()
	}
	return p.connectSlot(ctx, s)
}

func fetchInSlot(ctx context.Context, s *slot, target string, opts fetchcore.FetchInTabOptions) (string, int, error) {
	s.mu.Lock()
	browser := s.browser
	s.mu.Unlock()
	if browser == nil {
		return "", 0, fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: slot %d has no browser", s.id)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", 0, fetchcore.Errorf(fetchcore.EPOOLDISCONNECTED, "rodpool: creating tab: %v", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	statusCh := captureDocumentStatus(page)

	if err := page.Navigate(target); err != nil {
		return "", 0, fetchcore.Errorf(fetchcore.EENGINE, "rodpool: navigate: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", 0, fetchcore.Errorf(fetchcore.EENGINE, "rodpool: wait load: %v", err)
	}

	if opts.RenderDelayMs > 0 {
		select {
		case <-time.After(time.Duration(opts.RenderDelayMs) * time.Millisecond):
		case <-ctx.Done():
			return "", 0, ctx.Err()
		}
	}

	html, err := page.HTML()
	if err != nil {
		return "", 0, fetchcore.Errorf(fetchcore.EENGINE, "rodpool: reading html: %v", err)
	}

	status := 200
	select {
	case s := <-statusCh:
		status = s
	default:
	}

	return html, status, nil
}

// captureDocumentStatus watches for the main document's network response
// and reports its status on the returned channel. If no such event fires
// the channel is simply never written to, and callers fall back to 200.
func captureDocumentStatus(page *rod.Page) <-chan int {
	ch := make(chan int, 1)
	go func() {
		wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
			if e.Type != proto.NetworkResourceTypeDocument {
				return false
			}
			select {
			case ch <- e.Response.Status:
			default:
			}
			return true
		})
		wait()
	}()
	return ch
}

// Disconnect closes every slot's keepalive tab and browser connection.
func (p *Pool) Disconnect() error {
	var firstErr error
	for _, s := range p.slots {
		s.mu.Lock()
		if s.keepalive != nil {
			_ = s.keepalive.Close()
			s.keepalive = nil
		}
		if s.browser != nil {
			if err := s.browser.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
			s.browser = nil
		}
		s.connected = false
		s.mu.Unlock()
	}
	return firstErr
}

// Status reports a point-in-time snapshot of every slot.
func (p *Pool) Status() fetchcore.PoolStatus {
	status := fetchcore.PoolStatus{Slots: make([]fetchcore.SlotStatus, len(p.slots))}
	anyConnected := false
	total := 0
	for i, s := range p.slots {
		s.mu.Lock()
		ss := fetchcore.SlotStatus{
			ID:         s.id,
			Connected:  s.connected,
			ActiveTabs: int(atomic.LoadInt32(&s.activeTabs)),
			TabsUsed:   s.tabsUsed,
			Stale:      s.stale,
		}
		s.mu.Unlock()
		status.Slots[i] = ss
		anyConnected = anyConnected || ss.Connected
		total += ss.ActiveTabs
	}
	status.Connected = anyConnected
	status.TotalTabs = total
	return status
}
