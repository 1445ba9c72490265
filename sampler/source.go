package sampler

import (
	crand "crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"golang.org/x/exp/rand"
)

// Source is a pseudo-random source. A shared Source serializes whole draws
// under its lock; a private Source is owned by one sampler and never locks.
type Source struct {
	mu  *sync.Mutex
	src rand.Source
	rng *rand.Rand
}

// NewSource returns a private PCG source seeded with seed
func NewSource(seed uint64) *Source {
	src := rand.NewSource(seed)
	return &Source{src: src, rng: rand.New(src)}
}

// NewSharedSource returns a PCG source that may be drawn from concurrently
func NewSharedSource(seed uint64) *Source {
	s := NewSource(seed)
	s.mu = &sync.Mutex{}
	return s
}

// Shared reports whether draws are serialized
func (s *Source) Shared() bool {
	return s.mu != nil
}

// draw runs one complete sample against the source
func (s *Source) draw(fn func() float64) float64 {
	if s.mu != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn()
}

var (
	sharedOnce sync.Once
	shared     *Source
)

// SharedSource returns the process-wide source, creating it on first use
func SharedSource() *Source {
	sharedOnce.Do(func() {
		shared = NewSharedSource(entropySeed())
	})
	return shared
}

func entropySeed() uint64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return uint64(time.Now().UnixNano())
	}
	return binary.LittleEndian.Uint64(b[:])
}

// SourceProvider selects the source for a seed
type SourceProvider interface {
	Source(seed int64) *Source
}

type provider struct {
	shared func() *Source
}

func (p provider) Source(seed int64) *Source {
	if seed == 0 {
		return p.shared()
	}
	return NewSource(uint64(seed))
}

// DefaultProvider uses the process-wide source for seed 0
func DefaultProvider() SourceProvider {
	return provider{shared: SharedSource}
}

// NewProvider uses shared for seed 0 and private sources otherwise
func NewProvider(shared *Source) SourceProvider {
	return provider{shared: func() *Source { return shared }}
}
