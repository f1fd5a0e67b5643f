// Package fastengine provides the single-GET fast HTTP fetch engine.
// Unlike the browser engines, it never runs JavaScript and accepts any
// HTTP status — the escalation scheduler's quality judge decides
// success, not the transport layer.
package fastengine

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/archfetch/fetchcore"
)

// DefaultTimeout is the per-request timeout for the fast engine.
const DefaultTimeout = 30 * time.Second

// MaxRedirects caps the number of redirects the fast engine follows.
const MaxRedirects = 5

// presets are named header bundles merged before caller-supplied
// headers (which always win on conflict).
var presets = map[string]map[string]string{
	"chrome": {
		"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	},
}

var _ fetchcore.Engine = (*Engine)(nil)

// Engine is the fast, pool-free HTTP engine. It is safe for concurrent
// use by multiple goroutines.
type Engine struct {
	client *http.Client
	// direct forces no proxy regardless of req.Proxy, and labels every
	// result "fast:direct".
	direct bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.client.Timeout = d
	}
}

// WithDirect forces the engine to ignore any per-request proxy. The
// escalation scheduler does not use it: its "fast:direct" step clears
// the request's proxy instead.
func WithDirect() Option {
	return func(e *Engine) { e.direct = true }
}

// New creates a new fast engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= MaxRedirects {
					return fmt.Errorf("stopped after %d redirects", MaxRedirects)
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name returns "fast".
func (e *Engine) Name() string { return string(fetchcore.EngineFast) }

// Fetch performs a single GET, following up to MaxRedirects redirects.
// It never errors on a non-2xx status; only transport-level failures
// return an error.
func (e *Engine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EBADREQUEST, "invalid url: %v", err)
	}

	applyHeaders(httpReq, req)

	client := e.client
	if !e.direct && req.Proxy != "" {
		client, err = clientWithProxy(req.Proxy, e.client.Timeout)
		if err != nil {
			return nil, fetchcore.Errorf(fetchcore.EENGINE, "invalid proxy: %v", err)
		}
		client.CheckRedirect = e.client.CheckRedirect
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "fast engine request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "reading response body: %v", err)
	}

	content := string(body)
	responseType := req.ResponseType
	if responseType == fetchcore.ResponseBase64 {
		content = base64.StdEncoding.EncodeToString(body)
	}

	headers := make(map[string]string, len(resp.Header))
	for k := range resp.Header {
		headers[k] = resp.Header.Get(k)
	}

	return &fetchcore.FetchResult{
		StatusCode:   resp.StatusCode,
		Content:      content,
		Headers:      headers,
		URL:          resp.Request.URL.String(),
		EngineUsed:   engineUsedLabel(e.direct, req.Proxy),
		ResponseType: responseType,
	}, nil
}

func engineUsedLabel(direct bool, proxy string) string {
	if !direct && proxy != "" {
		return "fast:proxy"
	}
	return "fast:direct"
}

func applyHeaders(httpReq *http.Request, req *fetchcore.FetchRequest) {
	if bundle, ok := presets[req.Preset]; ok {
		for k, v := range bundle {
			httpReq.Header.Set(k, v)
		}
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
}

func clientWithProxy(proxy string, timeout time.Duration) (*http.Client, error) {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return nil, err
	}
	transport := &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}
