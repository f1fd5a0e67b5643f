package unblock_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/archfetch/fetchcore"
	"github.com/archfetch/fetchcore/unblock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_Fetch_Success(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"content": "<html>solved</html>", "status": 200})
	}))
	defer srv.Close()

	wsURL := "ws://" + srv.Listener.Addr().String()
	e := unblock.New(wsURL)
	result, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: "https://blocked.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "/chrome/unblock", gotPath)
	assert.Equal(t, true, gotBody["bestAttempt"])
	assert.Equal(t, 200, result.StatusCode)
	assert.Equal(t, "<html>solved</html>", result.Content)
	assert.Equal(t, "unblock", result.EngineUsed)
}

func TestEngine_Fetch_ErrorBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "challenge not solved"})
	}))
	defer srv.Close()

	e := unblock.New("ws://" + srv.Listener.Addr().String())
	_, err := e.Fetch(context.Background(), &fetchcore.FetchRequest{URL: "https://blocked.example.com"})
	require.Error(t, err)
	assert.Equal(t, fetchcore.EENGINE, fetchcore.ErrorCode(err))
}

func TestEngine_Name(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "unblock", unblock.New("ws://x").Name())
}
