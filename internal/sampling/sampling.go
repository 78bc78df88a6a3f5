// Package sampling provides uniform selection helpers over an injectable
// random source so callers can make selection reproducible in tests.
package sampling

import (
	"math/rand/v2"
	"time"
)

// Source is the subset of *rand.Rand used for selection.
type Source interface {
	IntN(n int) int
}

// NewSeeded returns a deterministic source.
func NewSeeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewSource returns a source seeded from the clock.
func NewSource() *rand.Rand {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// Shuffle permutes s in place (Fisher-Yates).
func Shuffle[T any](src Source, s []T) {
	for i := len(s) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}

// Sample returns k elements of s chosen uniformly without replacement.
// If k >= len(s) a shuffled copy of s is returned. s is not modified.
func Sample[T any](src Source, s []T, k int) []T {
	if k <= 0 || len(s) == 0 {
		return nil
	}
	pool := make([]T, len(s))
	copy(pool, s)
	if k > len(pool) {
		k = len(pool)
	}
	// Partial Fisher-Yates: the first k slots become the sample.
	for i := 0; i < k; i++ {
		j := i + src.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
