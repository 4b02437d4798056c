package blockprof

import (
	"errors"
	"time"
)

// Names given to the blocks the recorder appends on its own.
const (
	StartBlockName     = "start"
	EndBlockName       = "::END::"
	BootstrapBlockName = "Bootstrap / Routing"
)

var (
	// ErrAlreadyStarted is returned by [Recorder.Start] on a started recorder.
	ErrAlreadyStarted = errors.New("blockprof: recorder has already started")
	// ErrNotStarted is returned by [Recorder.EndBlock] before the recorder starts.
	ErrNotStarted = errors.New("blockprof: recorder has not started yet")
	// ErrNoOpenBlock is returned by [Recorder.EndBlock] when no block is open.
	ErrNoOpenBlock = errors.New("blockprof: block cannot be ended, no block was started")
)

// Kind tells user blocks apart from the ones the recorder adds itself.
type Kind int

const (
	KindBlock Kind = iota
	KindStart
	KindEnd
	KindBootstrap
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindStart:
		return "start"
	case KindEnd:
		return "end"
	case KindBootstrap:
		return "bootstrap"
	}
	return "unknown"
}

// # Block
//
// Represents one measured phase of a run.
// End, EndMemory and PeakMemory are only meaningful once Closed is true.
type Block struct {
	Number   int
	Name     string
	Kind     Kind
	External bool

	Start time.Time
	End   time.Time

	StartMemory uint64
	EndMemory   uint64
	// PeakMemory is the process-wide peak read when the block closed.
	PeakMemory uint64

	Closed bool
}

// Duration returns the time spent in the block, zero while it is open.
func (b Block) Duration() time.Duration {
	if !b.Closed {
		return 0
	}
	return b.End.Sub(b.Start)
}

// IsSentinel reports whether b is one of the start or end markers which are
// left out of reports.
func (b Block) IsSentinel() bool {
	return b.Kind == KindStart || b.Kind == KindEnd
}

func (b *Block) close(s Sensor) {
	b.End = s.Now()
	b.EndMemory = s.CurrentMemory()
	b.PeakMemory = s.PeakMemory()
	b.Closed = true
}
