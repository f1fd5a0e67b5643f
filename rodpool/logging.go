package rodpool

import (
	"context"
	"log/slog"
	"time"

	"github.com/archfetch/fetchcore"
)

var _ fetchcore.Engine = (*LoggingEngine)(nil)

// LoggingEngine wraps an Engine with structured request logging.
type LoggingEngine struct {
	next   fetchcore.Engine
	logger *slog.Logger
}

// NewLoggingEngine creates a new LoggingEngine.
func NewLoggingEngine(next fetchcore.Engine, logger *slog.Logger) *LoggingEngine {
	return &LoggingEngine{next: next, logger: logger}
}

// Name delegates to the wrapped engine.
func (e *LoggingEngine) Name() string { return e.next.Name() }

// Fetch logs the URL, engine, resulting status, and duration, then
// delegates to the wrapped engine.
func (e *LoggingEngine) Fetch(ctx context.Context, req *fetchcore.FetchRequest) (result *fetchcore.FetchResult, err error) {
	defer func(begin time.Time) {
		status := 0
		if result != nil {
			status = result.StatusCode
		}
		e.logger.Info("fetch",
			"engine", e.next.Name(),
			"url", req.URL,
			"status", status,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Fetch(ctx, req)
}
