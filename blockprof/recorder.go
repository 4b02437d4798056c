package blockprof

import (
	"bytes"
	"fmt"

	"golang.org/x/exp/slog"
)

// # Recorder
//
// Records the blocks of a single run. Blocks form a flat sequence: opening a
// block closes the one currently open, so at most one block is open at any
// time. The sequence is append-only.
//
// A Recorder is not safe for concurrent use. Goroutines that need profiling
// of their own should each use a separate Recorder.
// Its zero value should not be used. A recorder should always be instantiated
// either using [New] or a custom builder [RecorderBuilder].
type Recorder struct {
	sensor  Sensor
	title   string
	started bool
	queries int

	blocks []Block

	metadata     map[string]string
	metadataKeys []string
}

// New returns a recorder built by a default [RecorderBuilder], i.e. reading
// [DefaultSensor] and consuming [DefaultBootstrap].
func New() *Recorder {
	return NewRecorderBuilder().NewRecorder()
}

// IsStarted reports whether the recorder has been started, explicitly or not.
func (r *Recorder) IsStarted() bool {
	return r.started
}

// Title returns the title of the run.
func (r *Recorder) Title() string {
	return r.title
}

// Start starts the recorder, appending the start marker. It fails with
// [ErrAlreadyStarted] if the recorder was already started.
func (r *Recorder) Start() error {
	if r.started {
		return ErrAlreadyStarted
	}

	r.addBlock(StartBlockName, KindStart, false)
	r.started = true
	return nil
}

// StartBlock closes the open block, if any, and opens a new one named name.
// A recorder which was not started is started first, with the default title
// when it has none (see [SetDefaultTitle]).
func (r *Recorder) StartBlock(name string) {
	r.autoStart()
	r.addBlock(name, KindBlock, false)
}

// StartExternalBlock is equivalent to [Recorder.StartBlock] but marks the new
// block as time spent waiting on an external system. The duration of external
// blocks is summed separately in the report.
func (r *Recorder) StartExternalBlock(name string) {
	r.autoStart()
	r.addBlock(name, KindBlock, true)
}

// EndBlock closes the open block.
// It fails with [ErrNotStarted] if the recorder was never started and with
// [ErrNoOpenBlock] if the latest block is already closed.
func (r *Recorder) EndBlock() error {
	if !r.started {
		return ErrNotStarted
	}

	i := len(r.blocks) - 1
	if i < 0 || r.blocks[i].Closed {
		return ErrNoOpenBlock
	}

	r.closeCurrent()
	return nil
}

// SetMetadataValue sets a key/value annotation printed above the report table.
// Setting an existing key replaces its value and keeps its position.
func (r *Recorder) SetMetadataValue(key, value string) {
	if _, ok := r.metadata[key]; !ok {
		r.metadataKeys = append(r.metadataKeys, key)
	}
	r.metadata[key] = value
}

// Metadata returns a copy of the annotations set on the recorder.
func (r *Recorder) Metadata() map[string]string {
	md := make(map[string]string, len(r.metadata))
	for k, v := range r.metadata {
		md[k] = v
	}
	return md
}

// CountQuery increments the number of queries issued during the run. The
// total is shown in the report summary.
func (r *Recorder) CountQuery() {
	r.queries++
}

// Queries returns the number of calls made to [Recorder.CountQuery].
func (r *Recorder) Queries() int {
	return r.queries
}

// Blocks returns a copy of the recorded blocks in insertion order.
func (r *Recorder) Blocks() []Block {
	return append([]Block(nil), r.blocks...)
}

// OpenBlock returns the block currently open, if any.
func (r *Recorder) OpenBlock() (Block, bool) {
	i := len(r.blocks) - 1
	if i < 0 || r.blocks[i].Closed {
		return Block{}, false
	}
	return r.blocks[i], true
}

// Finalize closes the open block and appends the closed end marker, so that
// the sequence ends in a terminal state. Calling it again without opening new
// blocks changes nothing.
// The returned snapshot does not share memory with the recorder.
func (r *Recorder) Finalize() Snapshot {
	i := len(r.blocks) - 1
	if i < 0 || r.blocks[i].Kind != KindEnd {
		r.addBlock(EndBlockName, KindEnd, false)
		r.closeCurrent()
	}

	snap := Snapshot{
		Title:    r.title,
		Blocks:   r.Blocks(),
		Queries:  r.queries,
		Metadata: make([]MetadataEntry, 0, len(r.metadataKeys)),
	}
	for _, k := range r.metadataKeys {
		snap.Metadata = append(snap.Metadata, MetadataEntry{Key: k, Value: r.metadata[k]})
	}
	return snap
}

// Report finalizes the recorder and aggregates its snapshot.
func (r *Recorder) Report(opts ReportOptions) *Report {
	return NewReport(r.Finalize(), opts)
}

func (r *Recorder) autoStart() {
	if r.started {
		return
	}

	if r.title == "" {
		r.title = default_title
	}
	logger.Debug("recorder not started, starting it",
		slog.String("title", r.title))

	// cannot fail, r is not started
	_ = r.Start()
}

func (r *Recorder) addBlock(name string, kind Kind, external bool) {
	r.closeCurrent()

	r.blocks = append(r.blocks, Block{
		Number:      len(r.blocks),
		Name:        name,
		Kind:        kind,
		External:    external,
		Start:       r.sensor.Now(),
		StartMemory: r.sensor.CurrentMemory(),
	})
}

func (r *Recorder) closeCurrent() {
	i := len(r.blocks) - 1
	if i < 0 {
		return
	}

	if r.blocks[i].Closed {
		logger.Debug("block already closed",
			slog.String("block", r.blocks[i].Name))
		return
	}
	r.blocks[i].close(r.sensor)
}

func (r *Recorder) String() string {
	var b bytes.Buffer

	b.WriteString(fmt.Sprintf("[Recorder %s]\n", r.title))
	b.WriteString(fmt.Sprintf("started: %t\n", r.started))
	b.WriteString(fmt.Sprintf("queries: %d\n", r.queries))
	b.WriteString("blocks:\n")
	for _, blk := range r.blocks {
		b.WriteString(fmt.Sprintf("\t%d %s (%s) external: %t closed: %t\n",
			blk.Number, blk.Name, blk.Kind, blk.External, blk.Closed))
	}

	return b.String()
}

// # Snapshot
//
// A finalized copy of the state of a [Recorder], the input of [NewReport].
type Snapshot struct {
	Title    string
	Blocks   []Block
	Metadata []MetadataEntry
	Queries  int
}

// MetadataEntry is a key/value annotation of a run.
type MetadataEntry struct {
	Key   string
	Value string
}

// # RecorderBuilder
//
// RecorderBuilder implements a builder pattern to generate new recorders.
// Its zero value has no particular meaning and should not be used.
// A RecorderBuilder should always be instantiated using [NewRecorderBuilder].
type RecorderBuilder struct {
	sensor    Sensor
	bootstrap *Bootstrap
	title     string
}

func (rb RecorderBuilder) String() string {
	b := bytes.NewBufferString("")

	if rb.sensor != nil {
		b.WriteString(fmt.Sprintf("sensor: %T\n", rb.sensor))
	} else {
		b.WriteString("default sensor\n")
	}
	if rb.bootstrap != nil {
		b.WriteString(fmt.Sprintf("bootstrap pending: %t\n", rb.bootstrap.Pending()))
	} else {
		b.WriteString("no bootstrap\n")
	}
	b.WriteString(fmt.Sprintf("title: %s\n", rb.title))

	return b.String()
}

// NewRecorderBuilder returns a [RecorderBuilder] which will generate recorders
// that:
//   - read [DefaultSensor]
//   - consume [DefaultBootstrap]
//   - have no title
func NewRecorderBuilder() *RecorderBuilder {
	return &RecorderBuilder{
		sensor:    nil,
		bootstrap: DefaultBootstrap,
		title:     "",
	}
}

// NewRecorder generates a new recorder whose characteristics are based on
// rb's state. If the bootstrap handoff of rb holds readings, they are
// consumed and turned into a closed first block spanning from the marked
// time to now.
func (rb *RecorderBuilder) NewRecorder() *Recorder {
	r := &Recorder{
		sensor:   rb.sensor,
		title:    rb.title,
		metadata: make(map[string]string),
	}
	if r.sensor == nil {
		r.sensor = DefaultSensor()
	}

	if rb.bootstrap == nil {
		return r
	}

	at, mem, ok := rb.bootstrap.take()
	if !ok {
		return r
	}

	blk := Block{
		Number:      0,
		Name:        BootstrapBlockName,
		Kind:        KindBootstrap,
		Start:       at,
		StartMemory: mem,
	}
	blk.close(r.sensor)
	r.blocks = append(r.blocks, blk)

	return r
}

// Copy returns a copy of rb.
func (rb RecorderBuilder) Copy() *RecorderBuilder {
	return &RecorderBuilder{
		sensor:    rb.sensor,
		bootstrap: rb.bootstrap,
		title:     rb.title,
	}
}

// WithSensor modifies and returns rb, making new recorders read s.
func (rb *RecorderBuilder) WithSensor(s Sensor) *RecorderBuilder {
	rb.sensor = s
	return rb
}

// WithBootstrap modifies and returns rb, making new recorders consume b.
// A nil b disables the bootstrap block.
func (rb *RecorderBuilder) WithBootstrap(b *Bootstrap) *RecorderBuilder {
	rb.bootstrap = b
	return rb
}

// WithTitle modifies and returns rb, giving new recorders the title t.
func (rb *RecorderBuilder) WithTitle(t string) *RecorderBuilder {
	rb.title = t
	return rb
}
