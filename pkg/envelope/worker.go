package envelope

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// HandlerFunc turns a request into a response.
type HandlerFunc func(ctx context.Context, req Request) Response

// Worker answers a stream of requests. The zero value runs plain transforms
// and does not log.
type Worker struct {
	Handler HandlerFunc
	Logger  *log.Logger
}

// Serve reads requests from r until EOF and writes one response per request
// to w. A request that fails to transform still gets a response; Serve
// itself returns an error only when the stream is unreadable or unwritable,
// or when ctx is done between requests.
func Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	return (&Worker{}).Serve(ctx, r, w)
}

// Serve is the Worker form of the package-level Serve.
func (wk *Worker) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	handle := wk.Handler
	if handle == nil {
		handle = func(ctx context.Context, req Request) Response { return Handle(ctx, req) }
	}
	logger := wk.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	dec := NewDecoder(r)
	enc := NewEncoder(w)
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var req Request
		if err := dec.Decode(&req); err != nil {
			if stderrors.Is(err, io.EOF) {
				logger.Debug("input closed", "requests", n)
				return nil
			}
			return fmt.Errorf("decode request %d: %w", n, err)
		}

		start := time.Now()
		resp := handle(ctx, req)
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response %d: %w", n, err)
		}

		if resp.OK {
			logger.Debug("request done", "id", req.ID, "in", len(req.Input), "out", len(resp.Output), "took", time.Since(start))
		} else {
			logger.Warn("request failed", "id", req.ID, "code", resp.Code)
		}
	}
}
