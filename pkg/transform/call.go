package transform

import (
	"math"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// UnboundedDistance disables the swap distance bound. Zero does the same.
const UnboundedDistance = math.MaxUint32

// CallParams is the flat parameter set of [Call].
type CallParams struct {
	Seed         uint64
	SpeedEnabled bool
	Speed        float64
	LoopEnabled  bool
	Loop         uint32
	SwapRatio    float64
	SwapDistance uint32
}

// DefaultCallParams returns a full, unbounded shuffle with no overrides.
func DefaultCallParams(seed uint64) CallParams {
	return CallParams{
		Seed:         seed,
		SwapRatio:    shuffle.DefaultSwapRatio,
		SwapDistance: UnboundedDistance,
	}
}

// Config converts p to a shuffle configuration.
func (p CallParams) Config() shuffle.Config {
	cfg := shuffle.Config{Seed: p.Seed, SwapRatio: p.SwapRatio}
	if p.SpeedEnabled {
		speed := p.Speed
		cfg.Speed = &speed
	}
	if p.LoopEnabled {
		loop := p.Loop
		cfg.Loop = &loop
	}
	if p.SwapDistance != UnboundedDistance {
		cfg.SwapDistance = int(p.SwapDistance)
	}
	return cfg
}

// Call runs a transform with output acquired from alloc.
//
// On success ret receives the output and Call returns nil. The buffer then
// belongs to the caller, who must hand it back through alloc.Release. A nil
// ret releases the buffer immediately.
//
// On failure Call returns a static NUL-terminated identifier naming the
// error kind (see [errors.MessageFor]) and nothing remains acquired from
// alloc on its behalf. The identifier must not be modified.
func Call(alloc buffer.Allocator, input []byte, p CallParams, ret func([]byte)) []byte {
	if alloc == nil {
		alloc = buffer.Heap{}
	}
	res, err := Transform(input, p.Config(), WithAllocator(alloc))
	if err != nil {
		return errors.Identifier(errors.KindOf(err))
	}
	if ret == nil {
		alloc.Release(res.Output)
		return nil
	}
	ret(res.Output)
	return nil
}
