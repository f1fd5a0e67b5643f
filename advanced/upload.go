package advanced

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/archfetch/fetchcore"
)

// DefaultUploadTimeout bounds a single upload POST.
const DefaultUploadTimeout = 20 * time.Second

// HTTPUploadSink is a fetchcore.UploadSink backed by an HTTP multipart
// upload API: POST {cfg.BaseURL}/api/files/{cfg.Bucket}/upload with the
// byte buffer as a "files" form file and an X-API-Key header, expecting
// a JSON body shaped {"files":[{"urls":{"original":"..."}}]}.
type HTTPUploadSink struct {
	client *http.Client
}

var _ fetchcore.UploadSink = (*HTTPUploadSink)(nil)

// NewHTTPUploadSink creates an HTTPUploadSink using http.DefaultClient's
// transport with DefaultUploadTimeout applied per request.
func NewHTTPUploadSink() *HTTPUploadSink {
	return &HTTPUploadSink{client: &http.Client{Timeout: DefaultUploadTimeout}}
}

type uploadResponse struct {
	Files []struct {
		URLs struct {
			Original string `json:"original"`
		} `json:"urls"`
	} `json:"files"`
}

// Upload implements fetchcore.UploadSink.
func (s *HTTPUploadSink) Upload(ctx context.Context, cfg fetchcore.UploadConfig, filename, contentType string, data []byte) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, filename))
	if contentType != "" {
		partHeader.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(partHeader)
	if err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: building form: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: writing form: %v", err)
	}
	if err := writer.Close(); err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: closing form: %v", err)
	}

	endpoint := fmt.Sprintf("%s/api/files/%s/upload", trimTrailingSlash(cfg.BaseURL), cfg.Bucket)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: building request: %v", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if cfg.APIKey != "" {
		req.Header.Set("X-API-Key", cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: sink returned status %d", resp.StatusCode)
	}

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: decoding response: %v", err)
	}
	if len(parsed.Files) == 0 || parsed.Files[0].URLs.Original == "" {
		return "", fetchcore.Errorf(fetchcore.EENGINE, "upload: sink response missing files[0].urls.original")
	}
	return parsed.Files[0].URLs.Original, nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
