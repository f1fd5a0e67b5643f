// Package unblock provides the remote unblock engine: a last-resort
// step that delegates challenge-solving (Cloudflare-style interstitials,
// bot walls) to the browserless endpoint's own /chrome/unblock REST API
// instead of driving a page ourselves.
package unblock

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/archfetch/fetchcore"
)

// DefaultTimeout bounds the whole unblock round trip; challenge solving
// can take noticeably longer than a plain fetch.
const DefaultTimeout = 60 * time.Second

// DefaultWaitTimeoutMs is how long the remote endpoint is told to wait
// for a challenge to clear before giving up.
const DefaultWaitTimeoutMs = 5000

// unblockRequest is the POST body sent to /chrome/unblock.
type unblockRequest struct {
	URL            string `json:"url"`
	BestAttempt    bool   `json:"bestAttempt"`
	Content        bool   `json:"content"`
	WaitForTimeout int    `json:"waitForTimeout"`
}

// unblockResponse is the subset of the /chrome/unblock response body
// this engine consumes.
type unblockResponse struct {
	Content string `json:"content"`
	Status  int    `json:"status"`
	Error   string `json:"error"`
}

var _ fetchcore.Engine = (*Engine)(nil)

// Engine calls a browserless-compatible remote endpoint's unblock API.
type Engine struct {
	client   *http.Client
	endpoint string
}

// New derives the unblock REST endpoint from a browserless WebSocket
// URL (ws:// or wss://, swapped to http:// or https://) and appends
// /chrome/unblock.
func New(browserlessURL string) *Engine {
	return &Engine{
		client:   &http.Client{Timeout: DefaultTimeout},
		endpoint: restEndpoint(browserlessURL),
	}
}

func restEndpoint(browserlessURL string) string {
	rest := browserlessURL
	switch {
	case strings.HasPrefix(rest, "wss://"):
		rest = "https://" + strings.TrimPrefix(rest, "wss://")
	case strings.HasPrefix(rest, "ws://"):
		rest = "http://" + strings.TrimPrefix(rest, "ws://")
	}
	rest = strings.TrimRight(rest, "/")
	return rest + "/chrome/unblock"
}

// Name returns "unblock".
func (e *Engine) Name() string { return string(fetchcore.EngineUnblock) }

// Fetch asks the remote endpoint to clear any challenge and return the
// resulting page content.
func (e *Engine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (*fetchcore.FetchResult, error) {
	body, err := json.Marshal(unblockRequest{
		URL:            req.URL,
		BestAttempt:    true,
		Content:        true,
		WaitForTimeout: DefaultWaitTimeoutMs,
	})
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EINTERNAL, "unblock: marshaling request: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EBADREQUEST, "unblock: building request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "unblock: request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "unblock: reading response: %v", err)
	}

	var parsed unblockResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "unblock: invalid response body: %v", err)
	}
	if parsed.Error != "" {
		return nil, fetchcore.Errorf(fetchcore.EENGINE, "unblock: %s", parsed.Error)
	}

	status := parsed.Status
	if status == 0 {
		status = 200
	}

	return &fetchcore.FetchResult{
		StatusCode:   status,
		Content:      parsed.Content,
		URL:          req.URL,
		EngineUsed:   string(fetchcore.EngineUnblock),
		ResponseType: fetchcore.ResponseText,
	}, nil
}
