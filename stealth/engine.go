// Package stealth provides the local stealth fetch engine: a fresh,
// unpooled Chrome launch per request with anti-detection JS injection
// and launch flags, for the handful of requests that need it.
package stealth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/time/rate"

	"github.com/archfetch/fetchcore"
)

// DefaultTimeout bounds a single stealth fetch end to end.
const DefaultTimeout = 30 * time.Second

// NetworkIdleTimeout is how long the engine waits for network activity
// to settle before falling back to a simple load-event wait.
const NetworkIdleTimeout = 10 * time.Second

// UserAgent is the desktop Chrome UA string presented by every launch.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

const acceptLanguage = "en-US,en;q=0.9"
const timezone = "America/New_York"

// MaxConcurrentLaunches is the burst size of the launch rate limiter:
// up to this many launches may start back to back, after which launches
// start at most once every 250ms. It limits the launch rate only; it
// does not bound how many launched browsers run at the same time.
const MaxConcurrentLaunches = 3

var _ fetchcore.Engine = (*Engine)(nil)

// Engine is the local stealth engine. It launches an isolated Chrome
// process per fetch, never pools, and always tears the process down.
type Engine struct {
	limiter *rate.Limiter
}

// New creates a stealth Engine with the default launch rate limit.
func New() *Engine {
	return &Engine{
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), MaxConcurrentLaunches),
	}
}

// Name returns "stealth".
func (e *Engine) Name() string { return string(fetchcore.EngineStealth) }

// Fetch launches a fresh stealth-hardened Chrome, navigates once, and
// tears the process down on every exit path.
func (e *Engine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fetchcore.Errorf(fetchcore.ERESOURCE, "stealth: launch throttled: %v", err)
	}

	lnchr := launcherFor(req)
	u, err := lnchr.Launch()
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: launching browser: %v", err)
	}

	browser := rod.New().Context(ctx).ControlURL(u)
	if err := browser.Connect(); err != nil {
		lnchr.Kill()
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: connecting to browser: %v", err)
	}
	defer func() {
		_ = browser.Close()
		lnchr.Kill()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: creating page: %v", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if _, err := page.EvalOnNewDocument(InjectedScript); err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: injecting script: %v", err)
	}
	if err := applyEnvironment(page); err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: applying environment: %v", err)
	}

	if err := page.Navigate(req.URL); err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: navigate: %v", err)
	}

	if err := waitForPage(ctx, page, req); err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: waiting for page: %v", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "stealth: reading html: %v", err)
	}

	return &fetchcore.FetchResult{
		StatusCode:   200,
		Content:      html,
		URL:          req.URL,
		EngineUsed:   fmt.Sprintf("stealth:%ds", req.RenderDelayMs/1000),
		ResponseType: fetchcore.ResponseText,
	}, nil
}

// launcherFor builds a launcher with anti-automation flags, optionally
// routed through a proxy.
func launcherFor(req *fetchcore.FetchRequest) *launcher.Launcher {
	l := launcher.New().
		Headless(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-features", "IsolateOrigins,site-per-process").
		Set("disable-infobars").
		Set("disable-background-timer-throttling").
		Set("disable-backgrounding-occluded-windows").
		Set("disable-renderer-backgrounding").
		Set("window-size", "1920,1080").
		Set("lang", "en-US,en").
		Leakless(true)

	if req.Proxy != "" {
		l = l.Proxy(req.Proxy)
	}
	return l
}

// applyEnvironment sets the viewport, UA, and timezone so the page
// looks like a real desktop Chrome session in New York.
func applyEnvironment(page *rod.Page) error {
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             1920,
		Height:            1080,
		DeviceScaleFactor: 1,
		Mobile:            false,
	}); err != nil {
		return err
	}

	if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
		UserAgent:      UserAgent,
		AcceptLanguage: acceptLanguage,
	}); err != nil {
		return err
	}

	return proto.EmulationSetTimezoneOverride{TimezoneID: timezone}.Call(page)
}

// waitForPage branches on the caller's render strategy: explicit
// waitForJs gets a load wait plus the request's render delay, an
// explicit delay gets DOM-content-loaded plus that delay, and the
// default case waits for the network to go idle, falling back to a
// load wait if it never does.
func waitForPage(ctx context.Context, page *rod.Page, req *fetchcore.FetchRequest) error {
	switch {
	case req.WaitForJS:
		if err := page.WaitLoad(); err != nil {
			return err
		}
		return sleep(ctx, req.RenderDelayMs)

	case req.RenderDelayMs > 0:
		if err := page.Wait(rod.Eval(`() => document.readyState !== 'loading'`)); err != nil {
			return err
		}
		return sleep(ctx, req.RenderDelayMs)

	default:
		idleCtx, cancel := context.WithTimeout(ctx, NetworkIdleTimeout)
		defer cancel()
		page.Context(idleCtx).WaitRequestIdle(500*time.Millisecond, nil, nil, nil)()
		if idleCtx.Err() != nil {
			return page.Context(ctx).WaitLoad()
		}
		return nil
	}
}

func sleep(ctx context.Context, ms int) error {
	if ms <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(ms) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
