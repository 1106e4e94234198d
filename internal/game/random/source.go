// Package random provides the randomness collaborator shared by the
// simulation core. Every stochastic decision (spawn counts, placement
// sampling, wander headings, drift speeds) draws from a Source so a run
// can be replayed from a fixed seed.
package random

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
	"sync"
)

// Source is the randomness provider for the simulation.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0, 1).
	Float64() float64
}

// cryptoSource implements Source using crypto/rand.
//
// Invariant: values are uniformly distributed over the requested range.
type cryptoSource struct{}

// NewCryptoSource returns a non-deterministic Source backed by crypto/rand.
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "random: Intn called with n <= 0" otherwise.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	val, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("random: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}

const float53 = 1 << 53

// Float64 returns a random float in [0, 1) with 53 bits of precision.
func (c *cryptoSource) Float64() float64 {
	val, err := crand.Int(crand.Reader, big.NewInt(float53))
	if err != nil {
		panic("random: crypto/rand failure: " + err.Error())
	}
	return float64(val.Int64()) / float53
}

// seededSource is a deterministic Source. The mutex makes a single stream
// shareable across goroutines; draw order still decides the sequence.
type seededSource struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeededSource returns a deterministic Source. Two sources built from the
// same seed produce identical sequences.
func NewSeededSource(seed int64) Source {
	return &seededSource{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a random int in [0, n).
//
// Precondition: n > 0. Panics with "random: Intn called with n <= 0" otherwise.
func (s *seededSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Float64 returns a random float in [0, 1).
func (s *seededSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}
