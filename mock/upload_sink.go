package mock

import (
	"context"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.UploadSink = (*UploadSink)(nil)

// UploadSink is a mock implementation of fetchcore.UploadSink.
type UploadSink struct {
	UploadFn func(ctx context.Context, cfg fetchcore.UploadConfig, filename, contentType string, data []byte) (string, error)
}

func (s *UploadSink) Upload(ctx context.Context, cfg fetchcore.UploadConfig, filename, contentType string, data []byte) (string, error) {
	return s.UploadFn(ctx, cfg, filename, contentType, data)
}
