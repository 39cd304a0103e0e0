package cli

import (
	"math"
	"time"

	"github.com/spf13/pflag"

	"github.com/matzehuels/gifshuffle/pkg/config"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// shuffleFlags are the transform options shared by commands that shuffle.
type shuffleFlags struct {
	seed     uint64
	speed    float64
	loop     uint32
	ratio    float64
	distance int
}

// flagSet returns the shuffle flags as a set that commands merge into
// their own.
func (f *shuffleFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("shuffle", pflag.ContinueOnError)
	fs.Uint64Var(&f.seed, "seed", 0, "permutation seed (random when unset; the chosen seed is printed)")
	fs.Float64Var(&f.speed, "speed", 0, "frame delay in tenths of a second, overrides every frame (e.g. 0.5 for 50ms)")
	fs.Uint32Var(&f.loop, "loop", 0, "loop count, 0 loops forever")
	fs.Float64Var(&f.ratio, "ratio", shuffle.DefaultSwapRatio, "fraction of frames that may move, 0 to 1")
	fs.IntVar(&f.distance, "distance", 0, "maximum slots a frame may move, 0 for unbounded")
	return fs
}

// resolve merges the config file defaults with flags the user set, in that
// order. The bool reports whether the seed was chosen at random.
func (f *shuffleFlags) resolve(fs *pflag.FlagSet, cfg *config.Config) (shuffle.Config, bool) {
	out := cfg.ShuffleDefaults(0)
	random := false

	switch {
	case fs.Changed("seed"):
		out.Seed = f.seed
	case cfg.Shuffle.Seed == nil:
		out.Seed = randomSeed()
		random = true
	}
	if fs.Changed("speed") {
		speed := f.speed
		out.Speed = &speed
	}
	if fs.Changed("loop") {
		loop := f.loop
		out.Loop = &loop
	}
	if fs.Changed("ratio") {
		out.SwapRatio = f.ratio
	}
	if fs.Changed("distance") {
		out.SwapDistance = f.distance
	}
	return out, random
}

// randomSeed derives a seed from the clock. Seeds stay small enough to
// retype.
func randomSeed() uint64 {
	return uint64(time.Now().UnixNano()) % math.MaxUint32
}
