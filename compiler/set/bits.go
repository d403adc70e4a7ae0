package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int | ~int32 | ~int64
	}

	// Bits is a dense set of small non-negative keys.
	// The zero value is an empty set.
	Bits[K Key] struct {
		b  []uint64
		b0 [2]uint64
	}
)

func (s *Bits[K]) Set(k K) {
	i, j := split(k)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Bits[K]) IsSet(k K) bool {
	i, j := split(k)

	return i < len(s.b) && s.b[i]&(1<<j) != 0
}

// Size is the number of keys in the set.
func (s *Bits[K]) Size() (r int) {
	for _, w := range s.b {
		r += bits.OnesCount64(w)
	}

	return r
}

// Range calls f for each key in increasing order until f returns false.
func (s *Bits[K]) Range(f func(k K) bool) {
	for i, w := range s.b {
		for w != 0 {
			j := bits.TrailingZeros64(w)
			w &^= 1 << j

			if !f(K(i*64 + j)) {
				return
			}
		}
	}
}

func (s Bits[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))
		return true
	})

	return e.AppendBreak(b)
}

func (s *Bits[K]) grow(i int) {
	if s.b == nil {
		s.b = s.b0[:]
	}

	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}

func split[K Key](k K) (i, j int) {
	if k < 0 {
		panic("negative key")
	}

	return int(k) / 64, int(k) % 64
}
