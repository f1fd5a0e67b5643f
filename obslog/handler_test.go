package obslog_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/archfetch/fetchcore/obslog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Recent_CapturesRecords(t *testing.T) {
	t.Parallel()

	h := obslog.New(slog.NewTextHandler(discard{}, nil))
	logger := slog.New(h)

	logger.Info("hello", "domain", "example.com")
	logger.Warn("careful", "status", 429)

	recent := h.Recent()
	require.Len(t, recent, 2)
	assert.Equal(t, "hello", recent[0].Message)
	assert.Equal(t, "example.com", recent[0].Attrs["domain"])
	assert.Equal(t, "WARN", recent[1].Level)
}

func TestHandler_Recent_WrapsAtBufferSize(t *testing.T) {
	t.Parallel()

	h := obslog.New(slog.NewTextHandler(discard{}, nil))
	logger := slog.New(h)

	for i := 0; i < obslog.BufferSize+10; i++ {
		logger.Info("tick")
	}

	recent := h.Recent()
	assert.Len(t, recent, obslog.BufferSize)
}

func TestHandler_Subscribe_ReceivesBroadcast(t *testing.T) {
	t.Parallel()

	h := obslog.New(slog.NewTextHandler(discard{}, nil))
	logger := slog.New(h)

	ch, unsubscribe := h.Subscribe(4)
	defer unsubscribe()

	logger.Info("broadcast me")

	select {
	case entry := <-ch:
		assert.Equal(t, "broadcast me", entry.Message)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for broadcast entry")
	}
}

func TestHandler_WithAttrs_SharesBuffer(t *testing.T) {
	t.Parallel()

	h := obslog.New(slog.NewTextHandler(discard{}, nil))
	child := slog.New(h).With("component", "scheduler")

	child.Info("scoped message")

	recent := h.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, "scoped message", recent[0].Message)
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
