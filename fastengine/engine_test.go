package fastengine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/fastengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Fetch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html><body><p>hello documentation world</p></body></html>"))
	}))
	defer srv.Close()

	e := fastengine.New()
	result, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.Content, "hello documentation world")
	assert.Equal(t, "fast:direct", result.EngineUsed)
}

func TestEngine_Fetch_NonOKStatusDoesNotError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("blocked"))
	}))
	defer srv.Close()

	e := fastengine.New()
	result, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, result.StatusCode)
}

func TestEngine_Fetch_Base64(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0x89, 0x50, 0x4E, 0x47})
	}))
	defer srv.Close()

	e := fastengine.New()
	result, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{
		URL: srv.URL, ResponseType: fetchcore.ResponseBase64,
	})
	require.NoError(t, err)
	assert.Equal(t, "iVBORw==", result.Content)
	assert.Equal(t, fetchcore.ResponseBase64, result.ResponseType)
}

func TestEngine_Fetch_InvalidURL(t *testing.T) {
	t.Parallel()

	e := fastengine.New()
	_, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: "://bad"})
	require.Error(t, err)
	assert.Equal(t, fetchcore.EBADREQUEST, fetchcore.ErrorCode(err))
}

func TestEngine_Fetch_HeaderPreset(t *testing.T) {
	t.Parallel()

	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := fastengine.New()
	_, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: srv.URL, Preset: "chrome"})
	require.NoError(t, err)
	assert.Contains(t, gotUA, "Chrome")
}

func TestEngine_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "fast", fastengine.New().Name())
}
