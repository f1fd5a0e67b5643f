package fetchcore

import (
	"context"
	"regexp"
	"time"
)

// UploadConfig points the advanced orchestrator's upload fan-out at a
// caller-named upload sink.
type UploadConfig struct {
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
	Bucket  string `json:"bucket"`
}

// AdvancedFetchRequest extends FetchRequest with API-response capture,
// post-navigation JS injection, and binary resource downloading.
type AdvancedFetchRequest struct {
	FetchRequest
	JSAction string `json:"jsAction"`
	// APIPatterns are regular expressions matched against each
	// captured network response's URL.
	APIPatterns      []string      `json:"apiPatterns"`
	ImagesToDownload []string      `json:"imagesToDownload"`
	UploadConfig     *UploadConfig `json:"uploadConfig"`
}

// Validate returns an error if the request contains invalid fields.
func (r *AdvancedFetchRequest) Validate() error {
	if err := r.FetchRequest.Validate(); err != nil {
		return err
	}
	for _, p := range r.APIPatterns {
		if p == "" {
			return Errorf(EBADREQUEST, "apiPatterns entries must not be empty")
		}
		if _, err := regexp.Compile(p); err != nil {
			return Errorf(EBADREQUEST, "apiPatterns entry %q is not a valid regex: %v", p, err)
		}
	}
	return nil
}

// APICall records one captured network response matching a caller
// supplied URL pattern.
type APICall struct {
	URL          string    `json:"url"`
	Method       string    `json:"method"`
	Status       int       `json:"status"`
	ResponseBody any       `json:"responseBody"`
	// BodyHash is an xxhash digest of the raw response body, hex
	// encoded. It lets callers and logs compare or cache-label a
	// capture without holding (or logging) the full body.
	BodyHash  string    `json:"bodyHash"`
	Timestamp time.Time `json:"timestamp"`
}

// ResourceStatus is the outcome of a single binary download.
type ResourceStatus string

// Possible ResourceStatus values.
const (
	ResourceSuccess ResourceStatus = "success"
	ResourceError   ResourceStatus = "error"
)

// Resource records the outcome of downloading one entry from
// ImagesToDownload, optionally forwarded to the upload sink.
type Resource struct {
	OriginalURL string         `json:"originalUrl"`
	Status      ResourceStatus `json:"status"`
	UploadedURL string         `json:"uploadedUrl,omitempty"`
	MimeType    string         `json:"mimeType,omitempty"`
	Size        int            `json:"size,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// AdvancedFetchResult adds captured API calls and downloaded/uploaded
// resources to a FetchResult. Both slices are always present, even
// when empty.
type AdvancedFetchResult struct {
	FetchResult
	APICalls  []APICall  `json:"apiCalls"`
	Resources []Resource `json:"resources"`
}

// UploadSink forwards a downloaded byte buffer to a user-named bucket
// via the upload sink's multipart POST API.
type UploadSink interface {
	// Upload POSTs data as a multipart "files" field to
	// {cfg.BaseURL}/api/files/{cfg.Bucket}/upload with an
	// X-API-Key header, and returns the sink-assigned URL from the
	// response's files[0].urls.original field.
	Upload(ctx context.Context, cfg UploadConfig, filename string, contentType string, data []byte) (uploadedURL string, err error)
}
