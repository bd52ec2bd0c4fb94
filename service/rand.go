package service

import (
	"math/rand"
	"sync"
	"time"
)

// Rand is the randomness source used by wager resolution. It is injected so
// deterministic tests can supply fixed sequences.
type Rand interface {
	// Float64 returns a uniform value in [0, 1)
	Float64() float64

	// Perm returns a random permutation of [0, n)
	Perm(n int) []int
}

type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRand creates a production randomness source, safe for concurrent use.
func NewRand() Rand {
	return &lockedRand{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Perm(n)
}
