// Package rng provides the injectable random source used for stat training,
// sponsor offers and procedural rosters.
package rng

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// Source picks uniformly from [0, n).
type Source interface {
	IntN(n int) int
}

// New creates a PCG-backed source. A seed of 0 means a random seed will be
// generated.
func New(seed int64) Source {
	if seed == 0 {
		return rand.New(randomPCG())
	}
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

func randomPCG() *rand.PCG {
	var b [16]byte
	if _, err := cryptoRand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return rand.NewPCG(binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:]))
}

// Sequence replays a fixed list of values, each reduced modulo n.
// It wraps around when exhausted. Used by tests to pin exact outcomes.
type Sequence struct {
	values []int
	next   int
}

// Fixed returns a Sequence over values. With no values every draw is 0.
func Fixed(values ...int) *Sequence {
	return &Sequence{values: values}
}

// IntN implements Source.
func (s *Sequence) IntN(n int) int {
	if n <= 0 {
		panic("rng: invalid argument to IntN")
	}
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

// Draws reports how many values have been consumed.
func (s *Sequence) Draws() int {
	return s.next
}

// Between returns a value in the closed range [lo, hi].
func Between(src Source, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + src.IntN(hi-lo+1)
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](src Source, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[src.IntN(len(items))], true
}
