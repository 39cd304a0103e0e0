package shuffle

import (
	"math/rand/v2"
	"slices"
	"sort"
)

// boundedPasses is how many times each movable slot proposes a swap when a
// swap distance is set.
const boundedPasses = 2

// Seq returns a slice containing the sequence [0, 1, 2, ..., n-1].
//
// For n <= 0, Seq returns an empty slice.
func Seq(n int) []int {
	result := make([]int, max(n, 0))
	for i := range result {
		result[i] = i
	}
	return result
}

// Permute returns a permutation of n frames. order[k] is the original index
// of the frame placed at output position k.
//
// With a full config (ratio 1, no distance bound) this is a Fisher-Yates
// shuffle. Otherwise MovableCount(n) frames are chosen uniformly without
// replacement and only they move: freely among their own positions when the
// distance is unbounded, or by distance-checked pairwise swaps when it is
// bounded, so that no frame ends more than SwapDistance from where it began.
// Frames not chosen keep their positions.
//
// The result depends only on n and cfg.
func Permute(n int, cfg Config) []int {
	cfg = cfg.Normalize()
	order := Seq(n)
	if n < 2 {
		return order
	}
	rng := newRand(cfg.Seed)

	if cfg.Full() {
		fisherYates(rng, order)
		return order
	}

	movable := pickMovable(rng, n, cfg.MovableCount(n))
	if len(movable) < 2 {
		return order
	}
	// A bound of n-1 or more constrains nothing.
	if cfg.SwapDistance == 0 || cfg.SwapDistance >= n-1 {
		shuffleSlots(rng, order, movable)
	} else {
		boundedSwaps(rng, order, movable, cfg.SwapDistance)
	}
	return order
}

// Movable returns, in ascending order, the frame positions Permute treats as
// movable for the same n and cfg.
func Movable(n int, cfg Config) []int {
	cfg = cfg.Normalize()
	if n < 1 {
		return nil
	}
	if cfg.Full() {
		return Seq(n)
	}
	return pickMovable(newRand(cfg.Seed), n, cfg.MovableCount(n))
}

// newRand returns the seeded generator all choices draw from.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

func fisherYates(rng *rand.Rand, a []int) {
	for i := len(a) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		a[i], a[j] = a[j], a[i]
	}
}

// pickMovable draws m of the n positions without replacement (a partial
// Fisher-Yates over Seq(n)) and returns them sorted.
func pickMovable(rng *rand.Rand, n, m int) []int {
	m = min(max(m, 0), n)
	pool := Seq(n)
	for i := range m {
		j := i + rng.IntN(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	movable := pool[:m]
	slices.Sort(movable)
	return movable
}

// shuffleSlots permutes the frames sitting at the given positions among
// those positions.
func shuffleSlots(rng *rand.Rand, order, slots []int) {
	vals := make([]int, len(slots))
	for i, p := range slots {
		vals[i] = order[p]
	}
	fisherYates(rng, vals)
	for i, p := range slots {
		order[p] = vals[i]
	}
}

// boundedSwaps visits the movable slots in random order; each proposes a
// swap with a random other movable slot at most d away, applied only if both
// frames stay within d of their original index. Every frame starts at its
// original index and no accepted swap breaks the bound, so the bound holds
// for the final order.
func boundedSwaps(rng *rand.Rand, order, slots []int, d int) {
	d = min(d, len(order))
	for range boundedPasses {
		for _, k := range rng.Perm(len(slots)) {
			p := slots[k]
			lo := sort.SearchInts(slots, p-d)
			hi := sort.SearchInts(slots, p+d+1)
			if hi-lo < 2 {
				continue
			}
			j := lo + rng.IntN(hi-lo-1)
			if j >= k {
				j++
			}
			q := slots[j]
			a, b := order[p], order[q]
			if abs(a-q) <= d && abs(b-p) <= d {
				order[p], order[q] = b, a
			}
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
