// Package advanced implements the advanced-fetch orchestrator: API
// response capture, post-navigation JS actions, and binary resource
// download-and-upload, all driven directly against a pooled browser
// tab rather than through the plain fetchcore.Engine contract.
package advanced

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/bloom"
	"github.com/archfetch/fetchcore/rodpool"
)

// DefaultTimeout bounds one advanced fetch end to end.
const DefaultTimeout = 45 * time.Second

// JSActionSettleDelay is the fixed pause after evaluating the caller's
// post-navigation JS action, giving any side effects it triggers
// (further XHRs, DOM mutations) time to land before reading the DOM.
const JSActionSettleDelay = 2000 * time.Millisecond

// ResourceDownloadTimeout bounds a single binary resource download.
const ResourceDownloadTimeout = 30 * time.Second

// Orchestrator runs advanced fetches against a rodpool.Pool.
type Orchestrator struct {
	pool *rodpool.Pool
	sink fetchcore.UploadSink
}

// New creates an Orchestrator. sink may be nil if no request ever sets
// UploadConfig.
func New(pool *rodpool.Pool, sink fetchcore.UploadSink) *Orchestrator {
	return &Orchestrator{pool: pool, sink: sink}
}

// Fetch navigates to req.URL, capturing API responses matching
// req.APIPatterns, optionally evaluating req.JSAction after load, and
// downloading/uploading every URL in req.ImagesToDownload.
func (o *Orchestrator) Fetch(ctx context.Context, req *fetchcore.AdvancedFetchRequest) (*fetchcore.AdvancedFetchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	result := &fetchcore.AdvancedFetchResult{
		APICalls:  []fetchcore.APICall{},
		Resources: []fetchcore.Resource{},
	}

	err := o.pool.WithBrowser(ctx, func(browser *rod.Browser) error {
		page, err := browser.Page(proto.TargetCreateTarget{})
		if err != nil {
			return fetchcore.Errorf(fetchcore.EENGINE, "advanced: creating page: %v", err)
		}
		defer page.Close()
		page = page.Context(ctx)

		capture := newAPICapture(page, req.APIPatterns)
		defer capture.stop()

		if err := page.Navigate(req.FetchRequest.URL); err != nil {
			return fetchcore.Errorf(fetchcore.EENGINE, "advanced: navigate: %v", err)
		}
		if err := page.WaitLoad(); err != nil {
			return fetchcore.Errorf(fetchcore.EENGINE, "advanced: wait load: %v", err)
		}

		if req.JSAction != "" {
			if _, err := page.Eval(req.JSAction); err != nil {
				return fetchcore.Errorf(fetchcore.EENGINE, "advanced: evaluating jsAction: %v", err)
			}
			select {
			case <-time.After(JSActionSettleDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		} else if req.RenderDelayMs > 0 {
			select {
			case <-time.After(time.Duration(req.RenderDelayMs) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		html, err := page.HTML()
		if err != nil {
			return fetchcore.Errorf(fetchcore.EENGINE, "advanced: reading html: %v", err)
		}

		result.StatusCode = 200
		result.Content = html
		result.URL = req.FetchRequest.URL
		result.EngineUsed = "browser:advanced"
		result.ResponseType = fetchcore.ResponseText
		result.APICalls = capture.calls()

		result.Resources = o.downloadAndUploadAll(ctx, browser, req)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (o *Orchestrator) downloadAndUploadAll(ctx context.Context, browser *rod.Browser, req *fetchcore.AdvancedFetchRequest) []fetchcore.Resource {
	resources := make([]fetchcore.Resource, 0, len(req.ImagesToDownload))
	for _, url := range req.ImagesToDownload {
		resources = append(resources, o.downloadAndUploadOne(ctx, browser, url, req.UploadConfig))
	}
	return resources
}

func (o *Orchestrator) downloadAndUploadOne(ctx context.Context, browser *rod.Browser, url string, uploadCfg *fetchcore.UploadConfig) fetchcore.Resource {
	resource := fetchcore.Resource{OriginalURL: url}

	data, mimeType, err := downloadResource(ctx, browser, url)
	if err != nil {
		resource.Status = fetchcore.ResourceError
		resource.Error = err.Error()
		return resource
	}
	resource.Status = fetchcore.ResourceSuccess
	resource.MimeType = mimeType
	resource.Size = len(data)

	if uploadCfg == nil || o.sink == nil {
		return resource
	}

	filename := synthesizeFilename(mimeType)
	uploadedURL, err := o.sink.Upload(ctx, *uploadCfg, filename, mimeType, data)
	if err != nil {
		resource.Status = fetchcore.ResourceError
		resource.Error = fmt.Sprintf("upload failed: %v", err)
		return resource
	}
	resource.UploadedURL = uploadedURL
	return resource
}

// synthesizeFilename builds a crawl_<timestamp>_<random>.<ext> filename
// (Unix milliseconds, then a UUID), guessing the extension from the
// MIME type with a safe fallback.
func synthesizeFilename(mimeType string) string {
	ext := "bin"
	switch mimeType {
	case "image/png":
		ext = "png"
	case "image/jpeg":
		ext = "jpg"
	case "image/webp":
		ext = "webp"
	case "image/gif":
		ext = "gif"
	case "application/pdf":
		ext = "pdf"
	}
	return fmt.Sprintf("crawl_%d_%s.%s", time.Now().UnixMilli(), uuid.New().String(), ext)
}

// apiCapture listens for network responses whose URL matches any of a
// set of regular expressions, decoding each body as JSON when possible
// and falling back to the raw text otherwise. It dedups by request ID
// within a single page lifetime using a Bloom filter, since the same
// resource can legitimately be requested more than once per page.
type apiCapture struct {
	mu      sync.Mutex
	seen    *bloom.Filter
	methods map[proto.NetworkRequestID]string
	results []fetchcore.APICall
}

// newAPICapture registers network listeners on page for the lifetime
// of the page (they stop on their own once the page closes). A nil
// patterns list means no capture is requested, so nothing is
// registered. Invalid patterns are skipped rather than rejected here,
// since AdvancedFetchRequest.Validate already rejects them before a
// request reaches the orchestrator. Dedup uses a Bloom filter sized
// for a generous per-page request count, not an exact set: a false
// positive makes a new request ID look already seen, so that one
// matching response is not captured.
func newAPICapture(page *rod.Page, patterns []string) *apiCapture {
	c := &apiCapture{
		seen:    bloom.NewFilter(2000, 0.01),
		methods: make(map[proto.NetworkRequestID]string),
	}
	if len(patterns) == 0 {
		return c
	}

	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			continue
		}
		res = append(res, re)
	}

	go page.EachEvent(
		func(e *proto.NetworkRequestWillBeSent) {
			c.mu.Lock()
			c.methods[e.RequestID] = e.Request.Method
			c.mu.Unlock()
		},
		func(e *proto.NetworkResponseReceived) {
			url := string(e.Response.URL)
			if !matchesAny(url, res) {
				return
			}

			c.mu.Lock()
			key := string(e.RequestID)
			alreadySeen := c.seen.Test(key)
			if !alreadySeen {
				c.seen.Add(key)
			}
			method := c.methods[e.RequestID]
			c.mu.Unlock()
			if alreadySeen {
				return
			}

			body, err := proto.NetworkGetResponseBody{RequestID: e.RequestID}.Call(page)
			var parsed any
			bodyText := ""
			if err == nil {
				bodyText = body.Body
				_ = json.Unmarshal([]byte(body.Body), &parsed)
			}

			call := fetchcore.APICall{
				URL:       url,
				Method:    method,
				Status:    e.Response.Status,
				BodyHash:  fmt.Sprintf("%016x", xxhash.Sum64String(bodyText)),
				Timestamp: time.Now(),
			}
			if parsed != nil {
				call.ResponseBody = parsed
			} else {
				call.ResponseBody = bodyText
			}

			c.mu.Lock()
			c.results = append(c.results, call)
			c.mu.Unlock()
		},
	)()
	return c
}

func (c *apiCapture) calls() []fetchcore.APICall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]fetchcore.APICall, len(c.results))
	copy(out, c.results)
	return out
}

func (c *apiCapture) stop() {}

func matchesAny(url string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}
