// Package random supplies the injectable randomness used by the simulation.
//
// Every random draw in a session goes through a Source so that tests can
// replay exact sequences and a seeded session is reproducible.
package random

import (
	"math/rand"
	"sync"
)

// Source yields uniformly distributed values.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// New returns a Source seeded with seed. The returned Source is not safe
// for concurrent use; each session owns its own.
func New(seed int64) Source {
	return rand.New(rand.NewSource(seed))
}

// Locked wraps src so it may be shared between goroutines.
func Locked(src Source) Source {
	return &lockedSource{src: src}
}

type lockedSource struct {
	mu  sync.Mutex
	src Source
}

func (l *lockedSource) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Float64()
}

func (l *lockedSource) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.src.Intn(n)
}

// Sequence is a Source that cycles through a fixed list of floats.
// Intn maps the next float f to int(f*n). An empty Sequence always yields 0.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence returns a Sequence over values.
//
// Precondition: every value is in [0, 1).
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value in the cycle.
func (s *Sequence) Float64() float64 {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Intn returns int(Float64()*n), clamped to n-1.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	v := int(s.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
