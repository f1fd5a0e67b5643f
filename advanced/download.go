package advanced

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"github.com/archfetch/fetchcore"
)

// downloadResource opens a fresh tab in browser's context, navigates to
// url, and returns the main document response body as raw bytes along
// with its MIME type. The tab is closed on every exit path.
func downloadResource(ctx context.Context, browser *rod.Browser, url string) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, ResourceDownloadTimeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "opening resource tab: %v", err)
	}
	defer page.Close()
	page = page.Context(ctx)

	type capturedResponse struct {
		requestID proto.NetworkRequestID
		mimeType  string
	}
	respCh := make(chan capturedResponse, 1)
	go func() {
		wait := page.EachEvent(func(e *proto.NetworkResponseReceived) bool {
			if e.Type != proto.NetworkResourceTypeDocument && e.Type != proto.NetworkResourceTypeImage &&
				e.Type != proto.NetworkResourceTypeMedia && e.Type != proto.NetworkResourceTypeOther {
				return false
			}
			select {
			case respCh <- capturedResponse{requestID: e.RequestID, mimeType: e.Response.MIMEType}:
			default:
			}
			return true
		})
		wait()
	}()

	if err := page.Navigate(url); err != nil {
		return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "navigating to resource: %v", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "waiting for resource load: %v", err)
	}

	var resp capturedResponse
	select {
	case resp = <-respCh:
	case <-time.After(5 * time.Second):
		return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "no response observed for resource")
	case <-ctx.Done():
		return nil, "", ctx.Err()
	}

	body, err := proto.NetworkGetResponseBody{RequestID: resp.requestID}.Call(page)
	if err != nil {
		return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "reading resource body: %v", err)
	}

	if body.Base64Encoded {
		data, err := base64.StdEncoding.DecodeString(body.Body)
		if err != nil {
			return nil, "", fetchcore.Errorf(fetchcore.EENGINE, "decoding resource body: %v", err)
		}
		return data, resp.mimeType, nil
	}
	return []byte(body.Body), resp.mimeType, nil
}
