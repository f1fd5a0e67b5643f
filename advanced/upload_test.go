package advanced

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPUploadSink_Upload_Success(t *testing.T) {
	t.Parallel()

	var gotPath, gotAPIKey, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("X-API-Key")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		gotContentType = header.Header.Get("Content-Type")
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "binary-data", string(data))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"files":[{"urls":{"original":"https://cdn.example.com/crawl_abc.png"}}]}`))
	}))
	defer srv.Close()

	sink := NewHTTPUploadSink()
	url, err := sink.Upload(context.Background(), fetchcore.UploadConfig{
		BaseURL: srv.URL,
		APIKey:  "secret-key",
		Bucket:  "crawls",
	}, "crawl_abc.png", "image/png", []byte("binary-data"))
	require.NoError(t, err)

	assert.Equal(t, "/api/files/crawls/upload", gotPath)
	assert.Equal(t, "secret-key", gotAPIKey)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, "https://cdn.example.com/crawl_abc.png", url)
}

func TestHTTPUploadSink_Upload_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	sink := NewHTTPUploadSink()
	_, err := sink.Upload(context.Background(), fetchcore.UploadConfig{BaseURL: srv.URL, Bucket: "crawls"}, "f.bin", "application/octet-stream", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, fetchcore.EENGINE, fetchcore.ErrorCode(err))
}

func TestHTTPUploadSink_Upload_MissingURLInResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"files":[]}`))
	}))
	defer srv.Close()

	sink := NewHTTPUploadSink()
	_, err := sink.Upload(context.Background(), fetchcore.UploadConfig{BaseURL: srv.URL, Bucket: "crawls"}, "f.bin", "application/octet-stream", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, fetchcore.EENGINE, fetchcore.ErrorCode(err))
}

func TestTrimTrailingSlash(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://cdn.example.com", trimTrailingSlash("https://cdn.example.com/"))
	assert.Equal(t, "https://cdn.example.com", trimTrailingSlash("https://cdn.example.com///"))
	assert.Equal(t, "https://cdn.example.com", trimTrailingSlash("https://cdn.example.com"))
}
