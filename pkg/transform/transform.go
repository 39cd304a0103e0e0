// Package transform reorders the frames of a GIF89a stream.
//
// A transform scans the input once into sections, computes a seeded frame
// order, acquires an output buffer of exactly the required size and writes
// the reordered stream into it, applying the optional delay and loop
// overrides on the way:
//
//	res, err := transform.Transform(data, shuffle.DefaultConfig(42))
//	if err != nil {
//	    log.Println(errors.UserMessage(err))
//	}
//	os.WriteFile("out.gif", res.Output, 0o644)
//
// The transform is synchronous and keeps no state between calls, so
// concurrent calls are safe as long as each has its own input.
//
// [Call] exposes the same operation behind a host-style contract: a flat
// parameter struct, an output callback and a static error identifier.
package transform

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif"
	"github.com/matzehuels/gifshuffle/pkg/observability"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// Result is a successful transform.
type Result struct {
	// Output is the new stream. It was acquired from the configured
	// allocator and belongs to the caller.
	Output []byte

	// Layout is the section layout of the input.
	Layout *gif.Layout

	// Order maps each output frame slot to its original frame index.
	Order []int

	// Growth is how many bytes the output gained over the input's sections.
	Growth int
}

// Moved returns how many frames left their original position.
func (r *Result) Moved() int {
	n := 0
	for i, v := range r.Order {
		if i != v {
			n++
		}
	}
	return n
}

// Option configures a transform.
type Option func(*options)

type options struct {
	alloc    buffer.Allocator
	capacity int
}

// WithAllocator acquires the output buffer from a. The default is the Go heap.
func WithAllocator(a buffer.Allocator) Option {
	return func(o *options) {
		if a != nil {
			o.alloc = a
		}
	}
}

// WithCapacity fixes the output buffer size instead of sizing it exactly.
// A capacity smaller than the output fails with NoSpaceLeft. Values <= 0
// restore exact sizing.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// Transform reorders the frames of input according to cfg.
func Transform(input []byte, cfg shuffle.Config, opts ...Option) (*Result, error) {
	return TransformContext(context.Background(), input, cfg, opts...)
}

// TransformContext is Transform with a context for the observability hooks.
// The transform itself does not block and ignores cancellation.
func TransformContext(ctx context.Context, input []byte, cfg shuffle.Config, opts ...Option) (res *Result, err error) {
	o := options{alloc: buffer.Heap{}}
	for _, opt := range opts {
		opt(&o)
	}

	hooks := observability.Transform()
	start := time.Now()
	hooks.OnTransformStart(ctx, len(input))
	defer func() {
		size := 0
		if res != nil {
			size = len(res.Output)
		}
		hooks.OnTransformComplete(ctx, len(input), size, time.Since(start), err)
	}()

	cfg = cfg.Normalize()

	scanStart := time.Now()
	layout, err := gif.Scan(input)
	if err != nil {
		hooks.OnScanComplete(ctx, 0, time.Since(scanStart), err)
		return nil, err
	}
	hooks.OnScanComplete(ctx, layout.FrameCount(), time.Since(scanStart), nil)

	permStart := time.Now()
	res = &Result{Layout: layout, Order: shuffle.Permute(layout.FrameCount(), cfg)}
	hooks.OnPermuteComplete(ctx, len(res.Order), res.Moved(), time.Since(permStart))

	rw := gif.NewRewriter(cfg.Speed, cfg.Loop)
	res.Growth = rw.Growth(layout)

	size := gif.OutputSize(layout, rw)
	if o.capacity > 0 {
		size = o.capacity
	}
	buf, err := o.alloc.Acquire(size)
	if err != nil {
		return nil, outOfMemory(size, err)
	}

	w := buffer.NewWriter(buf)
	if err := gif.Assemble(w, input, layout, res.Order, rw); err != nil {
		o.alloc.Release(buf)
		return nil, err
	}
	res.Output = w.Bytes()
	return res, nil
}

func outOfMemory(n int, err error) error {
	if stderrors.Is(err, buffer.ErrOutOfMemory) {
		return errors.Wrap(errors.ErrCodeOutOfMemory, err, "acquire %d bytes", n)
	}
	return errors.Wrap(errors.ErrCodeOutOfMemory, err, "acquire %d bytes: allocator failed", n)
}
