package blockprof

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/exp/slog"
)

// Sensor provides the readings taken at each block boundary.
//
// PeakMemory must be monotonically non-decreasing for the lifetime of the
// sensor: it is the running maximum since the process started and cannot be
// reset per block.
type Sensor interface {
	Now() time.Time
	CurrentMemory() uint64
	PeakMemory() uint64
}

var (
	defaultSensor     Sensor
	defaultSensorOnce sync.Once
)

// DefaultSensor returns the [ProcessSensor] of the current process, shared by
// every caller so that its peak reading covers the whole process. If the
// process handle cannot be opened a [RuntimeSensor] is used instead.
func DefaultSensor() Sensor {
	defaultSensorOnce.Do(func() {
		s, err := NewProcessSensor()
		if err != nil {
			logger.Warn("process sensor unavailable, using go runtime statistics",
				slog.String("error", err.Error()))
			defaultSensor = NewRuntimeSensor()
			return
		}
		defaultSensor = s
	})
	return defaultSensor
}

// # ProcessSensor
//
// Reads the resident set size of the current process.
// Peak memory is the maximum resident set size the kernel accounted for the
// process since it started (getrusage on unix systems), so spikes freed
// between two readings are still seen. Where the kernel reports nothing the
// peak falls back to the greatest RSS observed so far.
// Its zero value should not be used, use [NewProcessSensor].
type ProcessSensor struct {
	mu   sync.Mutex
	proc *process.Process
	peak uint64

	fallback *RuntimeSensor
}

// NewProcessSensor opens a handle on the current process.
func NewProcessSensor() (*ProcessSensor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessSensor{
		proc:     p,
		fallback: NewRuntimeSensor(),
	}, nil
}

// Now returns the current wall-clock time.
func (s *ProcessSensor) Now() time.Time {
	return time.Now()
}

// CurrentMemory returns the resident set size of the process in bytes.
func (s *ProcessSensor) CurrentMemory() uint64 {
	rss, _ := s.read()
	return rss
}

// PeakMemory returns the highest resident set size of the process.
func (s *ProcessSensor) PeakMemory() uint64 {
	_, peak := s.read()
	return peak
}

func (s *ProcessSensor) read() (uint64, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mi, err := s.proc.MemoryInfo()
	if err != nil {
		logger.Debug("reading process memory failed, using go runtime statistics",
			slog.String("error", err.Error()))
		rss := s.fallback.CurrentMemory()
		s.observe(rss)
		return rss, s.peak
	}

	s.observe(mi.RSS)
	return mi.RSS, s.peak
}

func (s *ProcessSensor) observe(rss uint64) {
	s.peak = max(s.peak, rss)
	if hwm, ok := maxRSS(); ok {
		s.peak = max(s.peak, hwm)
	}
}

// # RuntimeSensor
//
// Reads the Go heap as reported by [runtime.ReadMemStats].
// The runtime does not track a heap high-water mark, so the peak is the
// maximum of the values observed through this sensor.
// runtime.ReadMemStats stops the world: readings are only taken at block
// boundaries.
type RuntimeSensor struct {
	mu   sync.Mutex
	peak uint64
}

// NewRuntimeSensor returns a sensor backed by the Go runtime.
func NewRuntimeSensor() *RuntimeSensor {
	return &RuntimeSensor{}
}

// Now returns the current wall-clock time.
func (s *RuntimeSensor) Now() time.Time {
	return time.Now()
}

// CurrentMemory returns the bytes of allocated heap objects.
func (s *RuntimeSensor) CurrentMemory() uint64 {
	return s.read()
}

// PeakMemory returns the highest heap size observed.
func (s *RuntimeSensor) PeakMemory() uint64 {
	s.read()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peak
}

func (s *RuntimeSensor) read() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.mu.Lock()
	s.peak = max(s.peak, m.HeapAlloc)
	s.mu.Unlock()

	return m.HeapAlloc
}
