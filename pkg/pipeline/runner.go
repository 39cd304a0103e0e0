package pipeline

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/cache"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif"
	"github.com/matzehuels/gifshuffle/pkg/observability"
	"github.com/matzehuels/gifshuffle/pkg/transform"
)

// Runner executes transforms with caching.
//
// The Runner is stateless except for the cache and logger, so multiple
// goroutines can safely share one.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is the lifetime of cached transform results.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLTransform,
	}
}

// Execute transforms input, serving and filling the cache.
func (r *Runner) Execute(ctx context.Context, input []byte, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)
	start := time.Now()

	res := &Result{InputHash: cache.Hash(input)}
	res.Stats.InputSize = len(input)
	key := r.Keyer.TransformKey(res.InputHash, opts.CacheKeyOpts())
	res.CacheInfo.Key = key

	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, "transform"); ok {
			if l, err := gif.Scan(data); err == nil {
				res.Output = data
				res.CacheInfo.Hit = true
				res.Stats.OutputSize = len(data)
				res.Stats.Frames = l.FrameCount()
				res.Stats.Duration = time.Since(start)
				logger.Debug("cache hit", "key", key, "bytes", len(data))
				return res, nil
			}
			// A cached entry that no longer scans is recomputed.
		}
	}

	alloc := opts.Allocator
	if alloc == nil {
		alloc = buffer.Heap{}
	}
	tr, err := transform.TransformContext(ctx, input, opts.Config, transform.WithAllocator(alloc))
	if err != nil {
		return nil, err
	}
	res.Output = tr.Output
	res.Order = tr.Order
	res.release = func() { alloc.Release(tr.Output) }
	res.Stats.OutputSize = len(tr.Output)
	res.Stats.Frames = len(tr.Order)
	res.Stats.Moved = tr.Moved()
	res.Stats.Duration = time.Since(start)

	r.store(ctx, key, "transform", tr.Output, r.TTL)

	logger.Debug("shuffled frames",
		"frames", res.Stats.Frames,
		"moved", res.Stats.Moved,
		"bytes", res.Stats.OutputSize,
		"duration", res.Stats.Duration)
	return res, nil
}

// ExecuteFile reads inPath, transforms it and writes the result to outPath.
// The output buffer is released once written, so the returned Result
// carries stats and cache info but a nil Output.
func (r *Runner) ExecuteFile(ctx context.Context, inPath, outPath string, opts Options) (*Result, error) {
	if err := errors.ValidatePath(inPath); err != nil {
		return nil, err
	}
	if err := errors.ValidatePath(outPath); err != nil {
		return nil, err
	}

	input, err := os.ReadFile(inPath)
	if stderrors.Is(err, fs.ErrNotExist) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "input %s", inPath)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", inPath, err)
	}

	res, err := r.Execute(ctx, input, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}
	err = os.WriteFile(outPath, res.Output, 0644)
	res.Release()
	res.Output = nil
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", outPath, err)
	}
	return res, nil
}

// Inspect scans input and returns its section layout, caching the layout
// by input content. The bool reports a cache hit.
func (r *Runner) Inspect(ctx context.Context, input []byte) (*gif.Layout, bool, error) {
	key := r.Keyer.InspectKey(cache.Hash(input))

	if data, ok := r.lookup(ctx, key, "inspect"); ok {
		if l, err := gif.ParseLayout(data); err == nil {
			return l, true, nil
		}
	}

	l, err := gif.Scan(input)
	if err != nil {
		return nil, false, err
	}
	if data, err := l.JSON(); err == nil {
		r.store(ctx, key, "inspect", data, cache.TTLInspect)
	}
	return l, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// lookup reads key, reporting cache errors as misses.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "error", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// store writes key; failures are logged and otherwise ignored.
func (r *Runner) store(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}
