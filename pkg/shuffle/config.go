package shuffle

import (
	"math"

	"github.com/matzehuels/gifshuffle/pkg/errors"
)

// DefaultSwapRatio shuffles every frame.
const DefaultSwapRatio = 1.0

// Config controls one transform. It is a plain value; copies are independent
// except for the override pointers, which are never written through.
type Config struct {
	// Seed drives every random choice. Equal seeds give equal output.
	Seed uint64 `json:"seed" toml:"seed" yaml:"seed"`

	// Speed, when set, overrides every frame delay. Tenths of a second.
	Speed *float64 `json:"speed,omitempty" toml:"speed" yaml:"speed"`

	// Loop, when set, overrides the animation loop count (0 = forever).
	Loop *uint32 `json:"loop,omitempty" toml:"loop" yaml:"loop"`

	// SwapRatio is the fraction of frames that may move, in [0, 1].
	SwapRatio float64 `json:"swap_ratio" toml:"swap_ratio" yaml:"swap_ratio"`

	// SwapDistance bounds how far a frame may move from its original index.
	// Zero means unbounded.
	SwapDistance int `json:"swap_distance,omitempty" toml:"swap_distance" yaml:"swap_distance"`
}

// DefaultConfig returns a full shuffle with the given seed and no overrides.
func DefaultConfig(seed uint64) Config {
	return Config{Seed: seed, SwapRatio: DefaultSwapRatio}
}

// Normalize clamps out-of-range values: SwapRatio into [0, 1] (NaN becomes
// a full shuffle) and negative SwapDistance to unbounded.
func (c Config) Normalize() Config {
	switch {
	case math.IsNaN(c.SwapRatio):
		c.SwapRatio = DefaultSwapRatio
	case c.SwapRatio < 0:
		c.SwapRatio = 0
	case c.SwapRatio > 1:
		c.SwapRatio = 1
	}
	if c.SwapDistance < 0 {
		c.SwapDistance = 0
	}
	return c
}

// Validate rejects values that Normalize would otherwise silently clamp.
// Use it on user input; the transform itself only normalizes.
func (c Config) Validate() error {
	if err := errors.ValidateRatio(c.SwapRatio); err != nil {
		return err
	}
	if err := errors.ValidateDistance(c.SwapDistance); err != nil {
		return err
	}
	if c.Speed != nil {
		if err := errors.ValidateSpeed(*c.Speed); err != nil {
			return err
		}
	}
	if c.Loop != nil {
		if err := errors.ValidateLoop(int64(*c.Loop)); err != nil {
			return err
		}
	}
	return nil
}

// Full reports whether c asks for an unconstrained permutation.
func (c Config) Full() bool {
	return c.SwapRatio >= 1 && c.SwapDistance == 0
}

// MovableCount returns round(SwapRatio * n), the number of frames that may
// take part in reordering.
func (c Config) MovableCount(n int) int {
	c = c.Normalize()
	return int(math.Round(c.SwapRatio * float64(n)))
}
