// Package obslog provides a log/slog.Handler that keeps a bounded
// in-memory ring buffer of recent log records and broadcasts new
// records to any number of live subscribers, for the admin status
// surface's recent-activity view.
package obslog

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// BufferSize is the number of recent records retained in the ring
// buffer.
const BufferSize = 500

// Entry is a serializable snapshot of one log record.
type Entry struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Attrs   map[string]any `json:"attrs"`
}

// ring holds the buffer and subscriber state shared across a Handler
// and every WithAttrs/WithGroup derivative of it.
type ring struct {
	mu   sync.Mutex
	buf  []Entry
	head int
	size int
	subs map[chan Entry]struct{}
}

// Handler is a slog.Handler that records every handled record into a
// bounded ring buffer and fans it out to subscribers. Slow subscribers
// are dropped from, not blocking, the write path: a subscriber whose
// channel is full simply misses that entry.
type Handler struct {
	next slog.Handler
	r    *ring
}

var _ slog.Handler = (*Handler)(nil)

// New wraps next (the handler actually responsible for rendering
// output, e.g. a slog.TextHandler on stderr) with ring-buffer capture
// and broadcast.
func New(next slog.Handler) *Handler {
	return &Handler{
		next: next,
		r: &ring{
			buf:  make([]Entry, BufferSize),
			subs: make(map[chan Entry]struct{}),
		},
	}
}

// Enabled delegates to next.
func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle records r into the ring buffer, broadcasts it, and delegates
// to next.
func (h *Handler) Handle(ctx context.Context, rec slog.Record) error {
	entry := Entry{
		Time:    rec.Time,
		Level:   rec.Level.String(),
		Message: rec.Message,
		Attrs:   make(map[string]any, rec.NumAttrs()),
	}
	rec.Attrs(func(a slog.Attr) bool {
		entry.Attrs[a.Key] = a.Value.Any()
		return true
	})

	h.r.mu.Lock()
	h.r.buf[h.r.head] = entry
	h.r.head = (h.r.head + 1) % BufferSize
	if h.r.size < BufferSize {
		h.r.size++
	}
	for ch := range h.r.subs {
		select {
		case ch <- entry:
		default:
		}
	}
	h.r.mu.Unlock()

	return h.next.Handle(ctx, rec)
}

// WithAttrs returns a new Handler sharing the same ring buffer and
// subscribers but delegating rendering to next.WithAttrs(attrs).
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{next: h.next.WithAttrs(attrs), r: h.r}
}

// WithGroup returns a new Handler sharing the same ring buffer and
// subscribers but delegating rendering to next.WithGroup(name).
func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{next: h.next.WithGroup(name), r: h.r}
}

// Recent returns up to BufferSize most recent entries, oldest first.
func (h *Handler) Recent() []Entry {
	h.r.mu.Lock()
	defer h.r.mu.Unlock()

	out := make([]Entry, h.r.size)
	if h.r.size < BufferSize {
		copy(out, h.r.buf[:h.r.size])
		return out
	}
	copy(out, h.r.buf[h.r.head:])
	copy(out[BufferSize-h.r.head:], h.r.buf[:h.r.head])
	return out
}

// Subscribe registers a channel to receive every future log entry.
// The returned func unsubscribes and must be called to avoid leaking
// the channel registration.
func (h *Handler) Subscribe(buffered int) (ch chan Entry, unsubscribe func()) {
	ch = make(chan Entry, buffered)
	h.r.mu.Lock()
	h.r.subs[ch] = struct{}{}
	h.r.mu.Unlock()

	return ch, func() {
		h.r.mu.Lock()
		delete(h.r.subs, ch)
		h.r.mu.Unlock()
		close(ch)
	}
}
