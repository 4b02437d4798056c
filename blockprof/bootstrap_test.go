package blockprof

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	t.Run("FirstRecorderGetsBootstrapBlock", func(t *testing.T) {
		s := newFakeSensor(4 * mb)
		b := &Bootstrap{}
		b.Mark(s)
		markedAt := s.now

		s.advance(30*time.Millisecond, 2*mb)
		r := NewRecorderBuilder().WithSensor(s).WithBootstrap(b).NewRecorder()

		blocks := r.Blocks()
		require.Len(t, blocks, 1)
		blk := blocks[0]
		assert.Equal(t, BootstrapBlockName, blk.Name)
		assert.Equal(t, KindBootstrap, blk.Kind)
		assert.Equal(t, 0, blk.Number)
		assert.True(t, blk.Closed)
		assert.Equal(t, markedAt, blk.Start)
		assert.Equal(t, 30*time.Millisecond, blk.Duration())
		assert.Equal(t, uint64(4*mb), blk.StartMemory)
		assert.Equal(t, uint64(6*mb), blk.EndMemory)
		assert.False(t, r.IsStarted())
	})

	t.Run("IsConsumedOnce", func(t *testing.T) {
		s := newFakeSensor(0)
		b := &Bootstrap{}
		b.Mark(s)

		NewRecorderBuilder().WithSensor(s).WithBootstrap(b).NewRecorder()
		assert.False(t, b.Pending())

		r := NewRecorderBuilder().WithSensor(s).WithBootstrap(b).NewRecorder()
		assert.Empty(t, r.Blocks())
	})

	t.Run("SecondMarkOverwrites", func(t *testing.T) {
		s := newFakeSensor(0)
		b := &Bootstrap{}
		b.Mark(s)
		s.advance(time.Second, mb)
		b.Mark(s)
		second := s.now

		s.advance(10*time.Millisecond, 0)
		r := NewRecorderBuilder().WithSensor(s).WithBootstrap(b).NewRecorder()

		blocks := r.Blocks()
		require.Len(t, blocks, 1)
		assert.Equal(t, second, blocks[0].Start)
		assert.Equal(t, uint64(mb), blocks[0].StartMemory)
	})

	t.Run("BootstrapBlockIsReported", func(t *testing.T) {
		s := newFakeSensor(0)
		b := &Bootstrap{}
		b.Mark(s)
		s.advance(50*time.Millisecond, 0)

		r := NewRecorderBuilder().WithSensor(s).WithBootstrap(b).NewRecorder()
		r.StartBlock("handle")
		s.advance(50*time.Millisecond, 0)

		rep := r.Report(DefaultReportOptions())
		require.Len(t, rep.Rows, 2)
		assert.Equal(t, BootstrapBlockName, rep.Rows[0].Name)
		assert.Equal(t, int64(50), rep.Rows[0].TimePercent)
		assert.Equal(t, "handle", rep.Rows[1].Name)
		assert.Equal(t, 100*time.Millisecond, rep.TotalTime)
	})
}

func TestRecorderBuilder(t *testing.T) {
	s := newFakeSensor(0)
	rb := NewRecorderBuilder().WithSensor(s).WithBootstrap(nil).WithTitle("copy me")

	cp := rb.Copy()
	rb.WithTitle("changed")

	assert.Equal(t, "copy me", cp.NewRecorder().Title())
	assert.Equal(t, "changed", rb.NewRecorder().Title())
	assert.Contains(t, rb.String(), "no bootstrap")
	assert.Contains(t, rb.String(), "title: changed")
}
