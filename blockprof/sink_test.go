package blockprof

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func TestReport_Log(t *testing.T) {
	r := parseRenderRun(t)
	r.SetMetadataValue("env", "prod")
	rep := r.Report(DefaultReportOptions())

	var lines []string
	rep.Log(func(line string) {
		lines = append(lines, line)
	})

	expected := strings.Split(strings.TrimSuffix(rep.String(), "\n"), "\n")
	assert.Equal(t, expected, lines)

	require.Greater(t, len(lines), 5)
	assert.Equal(t, "", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "Profiling finished"))
	assert.Equal(t, "+ env: prod", lines[3])
	assert.Equal(t, "", lines[4])
	for _, line := range lines {
		assert.NotContains(t, line, "\n")
	}
}

func TestLogReport(t *testing.T) {
	r := parseRenderRun(t)
	snap := r.Finalize()

	var n int
	LogReport(snap, DefaultReportOptions(), func(string) { n++ })

	// 2 blank, summary, blank, 3 borders, header, 2 rows
	assert.Equal(t, 10, n)
}

func TestSlogSink(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))

	parseRenderRun(t).Report(DefaultReportOptions()).Log(SlogSink(l, slog.LevelInfo))

	out := buf.String()
	assert.Equal(t, 10, strings.Count(out, "level=INFO"))
	assert.Contains(t, out, `msg="Profiling finished: 0.15s total, 0.00s external, 11.50MB"`)
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	rep := parseRenderRun(t).Report(DefaultReportOptions())
	rep.Log(WriterSink(&buf))

	assert.Equal(t, rep.String(), buf.String())
}
