// Package pipeline runs frame transforms with caching for the CLI, the HTTP
// server and the envelope worker.
//
// All entry points go through a [Runner], so cache keys, logging and
// validation stay the same everywhere.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, data, pipeline.Options{
//	    Config: shuffle.DefaultConfig(42),
//	})
//	if err != nil {
//	    return err
//	}
//	defer res.Release()
//	os.WriteFile("out.gif", res.Output, 0o644)
//
// Files and batches:
//
//	res, err := runner.ExecuteFile(ctx, "in.gif", "out.gif", opts)
//
//	results, err := runner.Batch(ctx, []pipeline.Job{
//	    {Input: "a.gif", Output: "a-shuffled.gif", Options: opts},
//	    {Input: "b.gif", Output: "b-shuffled.gif", Options: opts},
//	}, 4)
package pipeline

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/cache"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// DefaultWorkers is the batch concurrency used when none is given.
const DefaultWorkers = 4

// Options configures one transform run.
type Options struct {
	// Config is the transform configuration.
	Config shuffle.Config

	// Refresh skips the cache lookup; the result is still stored.
	Refresh bool

	// Allocator supplies the output buffer. Nil uses the Go heap.
	Allocator buffer.Allocator

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger
}

// Validate checks the configuration for out-of-range values.
func (o *Options) Validate() error {
	return o.Config.Validate()
}

// CacheKeyOpts returns the cache key fields of o.
func (o *Options) CacheKeyOpts() cache.TransformKeyOpts {
	c := o.Config.Normalize()
	return cache.TransformKeyOpts{
		Seed:         c.Seed,
		Speed:        c.Speed,
		Loop:         c.Loop,
		SwapRatio:    c.SwapRatio,
		SwapDistance: c.SwapDistance,
	}
}

// Result is the outcome of one run.
type Result struct {
	// Output is the transformed stream. Call Release when done with it.
	Output []byte

	// Order maps output frame slots to input frame indices. It is nil when
	// the result came from the cache.
	Order []int

	// InputHash identifies the input content.
	InputHash string

	Stats     Stats
	CacheInfo CacheInfo

	release func()
}

// Release returns Output to the allocator it came from. It is safe to
// call more than once and on cached results.
func (r *Result) Release() {
	if r == nil || r.release == nil {
		return
	}
	r.release()
	r.release = nil
}

// Stats describes a run.
type Stats struct {
	InputSize  int
	OutputSize int
	Frames     int
	Moved      int
	Duration   time.Duration
}

// CacheInfo reports cache use.
type CacheInfo struct {
	Hit bool
	Key string
}

// OutputPath derives the default output file name for input:
// "dir/name.gif" becomes "dir/name-shuffled.gif".
func OutputPath(input string) string {
	ext := filepath.Ext(input)
	if ext == "" {
		ext = ".gif"
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + "-shuffled" + ext
}
