package blockprof

import (
	"sync"
	"time"
)

// DefaultBootstrap is the handoff used by [MarkBootstrapStart] and consumed
// by [New].
var DefaultBootstrap = &Bootstrap{}

// MarkBootstrapStart records the current time and memory into
// [DefaultBootstrap] using [DefaultSensor]. It is meant to be the first
// statement of main, before any recorder exists.
func MarkBootstrapStart() {
	DefaultBootstrap.Mark(DefaultSensor())
}

// # Bootstrap
//
// A one-shot handoff of the readings taken before a [Recorder] could be built.
// The next recorder constructed with it turns the readings into a first block
// and clears them. Marking twice before consumption keeps the latest readings.
//
// Only one recorder should be constructed from a given handoff: when two
// constructions race, which one receives the block is unspecified.
type Bootstrap struct {
	mu      sync.Mutex
	pending bool
	at      time.Time
	memory  uint64
}

// Mark stores the current readings of s, replacing any pending ones.
func (b *Bootstrap) Mark(s Sensor) {
	at, mem := s.Now(), s.CurrentMemory()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = true
	b.at = at
	b.memory = mem
}

// Pending reports whether readings are waiting to be consumed.
func (b *Bootstrap) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

func (b *Bootstrap) take() (time.Time, uint64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pending {
		return time.Time{}, 0, false
	}
	b.pending = false
	return b.at, b.memory, true
}
