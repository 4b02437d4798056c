package blockprof

import (
	"time"
)

const mb = 1024 * 1024

// fakeSensor is a sensor whose readings only change when told to.
type fakeSensor struct {
	now  time.Time
	mem  uint64
	peak uint64
}

func newFakeSensor(mem uint64) *fakeSensor {
	return &fakeSensor{
		now:  time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		mem:  mem,
		peak: mem,
	}
}

func (s *fakeSensor) Now() time.Time        { return s.now }
func (s *fakeSensor) CurrentMemory() uint64 { return s.mem }
func (s *fakeSensor) PeakMemory() uint64    { return s.peak }

// advance moves the clock by d and changes the memory by delta bytes.
func (s *fakeSensor) advance(d time.Duration, delta int64) {
	s.now = s.now.Add(d)
	s.mem = uint64(int64(s.mem) + delta)
	s.peak = max(s.peak, s.mem)
}

func newTestRecorder(s Sensor) *Recorder {
	return NewRecorderBuilder().
		WithSensor(s).
		WithBootstrap(nil).
		NewRecorder()
}

func openBlocks(r *Recorder) int {
	n := 0
	for _, b := range r.Blocks() {
		if !b.Closed {
			n++
		}
	}
	return n
}
