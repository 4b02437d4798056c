// Package config loads the run plans executed by the blockprof command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/onegii/go-blockprof/blockprof"
)

// Plan is a sequence of commands profiled as one run, one block per step.
type Plan struct {
	// Title is the title of the run shown in the report.
	Title string `yaml:"title"`

	// Metadata is printed verbatim above the report table.
	Metadata map[string]string `yaml:"metadata"`

	// Report controls how the report is rendered.
	Report Report `yaml:"report"`

	// Steps are run in order.
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Report holds the rendering options of a plan.
type Report struct {
	// Colors enables ANSI colours when the report is logged.
	Colors bool `yaml:"colors"`

	// NameWidth is the number of characters of a step name kept in the report.
	NameWidth int `yaml:"name_width" validate:"gte=0"`

	// Cumulative adds the running total column.
	Cumulative bool `yaml:"cumulative"`

	// Thresholds are the percentages above which rows are highlighted.
	Thresholds Thresholds `yaml:"thresholds"`
}

// Thresholds mirrors blockprof.Thresholds with YAML keys.
type Thresholds struct {
	Red    int64 `yaml:"red" validate:"gte=0,lte=100"`
	Brown  int64 `yaml:"brown" validate:"gte=0,lte=100"`
	Yellow int64 `yaml:"yellow" validate:"gte=0,lte=100"`
}

// Step is a command profiled as a single block.
type Step struct {
	// Name is the title of the block.
	Name string `yaml:"name" validate:"required"`

	// Command is the program and its arguments.
	Command []string `yaml:"command" validate:"required,min=1,dive,required"`

	// External marks the step as time spent waiting on another system.
	External bool `yaml:"external"`

	// Dir is the working directory of the command.
	Dir string `yaml:"dir"`

	// Env holds variables added to the environment of the command.
	Env map[string]string `yaml:"env"`

	// Timeout kills the command when exceeded (0 = no timeout).
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// ErrThresholdOrder is returned when thresholds are not strictly decreasing
// from red to yellow.
var ErrThresholdOrder = errors.New("thresholds must satisfy red > brown > yellow")

// Load reads, defaults and validates the plan stored at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes, defaults and validates a YAML plan.
func Parse(data []byte) (*Plan, error) {
	p := &Plan{}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(p); err != nil {
		return nil, fmt.Errorf("failed to parse plan: %w", err)
	}

	p.applyDefaults()

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Plan) applyDefaults() {
	def := blockprof.DefaultReportOptions()

	if p.Report.NameWidth == 0 {
		p.Report.NameWidth = def.NameWidth
	}
	if p.Report.Thresholds == (Thresholds{}) {
		p.Report.Thresholds = Thresholds{
			Red:    def.Thresholds.Red,
			Brown:  def.Thresholds.Brown,
			Yellow: def.Thresholds.Yellow,
		}
	}
}

// Validate checks the plan against its struct tags and the threshold order.
func (p *Plan) Validate() error {
	validate := validator.New()
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	th := p.Report.Thresholds
	if th.Red <= th.Brown || th.Brown <= th.Yellow {
		return fmt.Errorf("invalid plan: %w (got %d/%d/%d)", ErrThresholdOrder, th.Red, th.Brown, th.Yellow)
	}
	return nil
}

// ReportOptions converts the report section into blockprof options.
func (p *Plan) ReportOptions() blockprof.ReportOptions {
	return blockprof.ReportOptions{
		Colors:     p.Report.Colors,
		NameWidth:  p.Report.NameWidth,
		Cumulative: p.Report.Cumulative,
		Thresholds: blockprof.Thresholds{
			Red:    p.Report.Thresholds.Red,
			Brown:  p.Report.Thresholds.Brown,
			Yellow: p.Report.Thresholds.Yellow,
		},
	}
}

// MetadataKeys returns the metadata keys sorted alphabetically.
func (p *Plan) MetadataKeys() []string {
	keys := make([]string, 0, len(p.Metadata))
	for k := range p.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
