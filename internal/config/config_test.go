package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onegii/go-blockprof/blockprof"
)

const samplePlan = `
title: nightly build
metadata:
  env: ci
  branch: main
report:
  cumulative: true
  name_width: 40
steps:
  - name: fetch
    command: ["git", "fetch"]
    external: true
    timeout: 30s
  - name: compile
    command: ["go", "build", "./..."]
    dir: /src
    env:
      CGO_ENABLED: "0"
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	assert.Equal(t, "nightly build", p.Title)
	assert.Equal(t, []string{"branch", "env"}, p.MetadataKeys())
	require.Len(t, p.Steps, 2)

	fetch := p.Steps[0]
	assert.Equal(t, "fetch", fetch.Name)
	assert.Equal(t, []string{"git", "fetch"}, fetch.Command)
	assert.True(t, fetch.External)
	assert.Equal(t, 30*time.Second, fetch.Timeout)

	compile := p.Steps[1]
	assert.False(t, compile.External)
	assert.Equal(t, "/src", compile.Dir)
	assert.Equal(t, map[string]string{"CGO_ENABLED": "0"}, compile.Env)
}

func TestParse_Defaults(t *testing.T) {
	p, err := Parse([]byte(samplePlan))
	require.NoError(t, err)

	opts := p.ReportOptions()
	assert.Equal(t, 40, opts.NameWidth)
	assert.True(t, opts.Cumulative)
	assert.False(t, opts.Colors)
	assert.Equal(t, blockprof.DefaultReportOptions().Thresholds, opts.Thresholds)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"NoSteps", "title: empty\n"},
		{"MissingName", "steps:\n  - command: [\"true\"]\n"},
		{"EmptyCommand", "steps:\n  - name: a\n    command: []\n"},
		{"BlankArgument", "steps:\n  - name: a\n    command: [\"\"]\n"},
		{"UnknownField", "steps:\n  - name: a\n    command: [\"true\"]\n    retries: 3\n"},
		{"ThresholdOutOfRange", "report:\n  thresholds: {red: 140, brown: 20, yellow: 10}\nsteps:\n  - name: a\n    command: [\"true\"]\n"},
		{"NegativeTimeout", "steps:\n  - name: a\n    command: [\"true\"]\n    timeout: -1s\n"},
		{"Malformed", "steps: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_ThresholdOrder(t *testing.T) {
	_, err := Parse([]byte("report:\n  thresholds: {red: 20, brown: 20, yellow: 10}\nsteps:\n  - name: a\n    command: [\"true\"]\n"))
	assert.ErrorIs(t, err, ErrThresholdOrder)
}

func TestLoad(t *testing.T) {
	t.Run("ReadsFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "plan.yaml")
		require.NoError(t, os.WriteFile(path, []byte(samplePlan), 0o644))

		p, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "nightly build", p.Title)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}
