package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Shuffled 12 frames (4ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// logHooks reports observability events as debug logs.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnTransformStart(_ context.Context, inputSize int) {
	h.logger.Debug("transform start", "bytes", inputSize)
}

func (h *logHooks) OnScanComplete(_ context.Context, frames int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Debug("scan failed", "error", err, "duration", dur)
		return
	}
	h.logger.Debug("scan complete", "frames", frames, "duration", dur)
}

func (h *logHooks) OnPermuteComplete(_ context.Context, frames, moved int, dur time.Duration) {
	h.logger.Debug("permute complete", "frames", frames, "moved", moved, "duration", dur)
}

func (h *logHooks) OnTransformComplete(_ context.Context, inputSize, outputSize int, dur time.Duration, err error) {
	if err != nil {
		h.logger.Debug("transform failed", "error", err, "duration", dur)
		return
	}
	h.logger.Debug("transform complete", "in", inputSize, "out", outputSize, "duration", dur)
}

func (h *logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *logHooks) OnRequest(_ context.Context, method, path, requestID string) {
	h.logger.Debug("http request", "method", method, "path", path, "request_id", requestID)
}

func (h *logHooks) OnResponse(_ context.Context, method, path string, status, size int, dur time.Duration) {
	h.logger.Debug("http response", "method", method, "path", path, "status", status, "bytes", size, "duration", dur)
}

func (h *logHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Debug("http error", "method", method, "path", path, "error", err)
}
