// Package config loads the YAML configuration. Every field has a default,
// so the file is optional and may set only what differs.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/ByLCY/quill/automation"
	"github.com/ByLCY/quill/batch"
	"github.com/ByLCY/quill/device"
	"github.com/ByLCY/quill/dispatch"
	"github.com/ByLCY/quill/gcode"
	"github.com/ByLCY/quill/layout"
	"github.com/ByLCY/quill/speech"
)

type Config struct {
	Font       string     `yaml:"font"`
	Layout     Layout     `yaml:"layout"`
	Speed      Speed      `yaml:"speed"`
	Batch      Batch      `yaml:"batch"`
	Speech     Speech     `yaml:"speech"`
	Output     Output     `yaml:"output"`
	Estimate   Estimate   `yaml:"estimate"`
	Device     Device     `yaml:"device"`
	Automation Automation `yaml:"automation"`
	Dispatch   Dispatch   `yaml:"dispatch"`
	Log        Log        `yaml:"log"`
}

type Layout struct {
	StartX       layout.Length `yaml:"start_x"`
	StartY       layout.Length `yaml:"start_y"`
	CharWidth    layout.Length `yaml:"char_width"`
	CharHeight   layout.Length `yaml:"char_height"`
	LineSpacing  layout.Length `yaml:"line_spacing"`
	MarginLeft   layout.Length `yaml:"margin_left"`
	MaxLineWidth layout.Length `yaml:"max_line_width"`
}

// Speed holds feed rates in mm/min.
type Speed struct {
	Travel float64 `yaml:"travel"`
	Draw   float64 `yaml:"draw"`
}

type Batch struct {
	Threshold int `yaml:"threshold"`
}

type Speech struct {
	// Command is the external recognizer argv. Empty reads stdin.
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

type Output struct {
	Dir  string `yaml:"dir"`
	Name string `yaml:"name"`
	// Preview is pdf, svg, png or empty for none.
	Preview string `yaml:"preview"`
}

type Estimate struct {
	PenToggle    float64 `yaml:"pen_toggle"`
	SafetyMargin float64 `yaml:"safety_margin"`
}

type Device struct {
	Paths   []string `yaml:"paths"`
	Command []string `yaml:"command"`
}

type Automation struct {
	Locate          []string `yaml:"locate"`
	Click           []string `yaml:"click"`
	Confidence      float64  `yaml:"confidence"`
	TemplateDir     string   `yaml:"template_dir"`
	ConnectTemplate string   `yaml:"connect_template"`
	StartTemplate   string   `yaml:"start_template"`
}

type Dispatch struct {
	Poll          time.Duration `yaml:"poll"`
	LaunchSettle  time.Duration `yaml:"launch_settle"`
	ConnectSettle time.Duration `yaml:"connect_settle"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration of the reference plotter setup.
func Default() Config {
	p := layout.DefaultParams()
	d := dispatch.DefaultOptions()
	e := gcode.DefaultEstimator()
	return Config{
		Font: "embed:default",
		Layout: Layout{
			StartX:       layout.MM(10),
			StartY:       layout.MM(10),
			CharWidth:    layout.MM(p.CharWidth),
			CharHeight:   layout.MM(p.CharHeight),
			LineSpacing:  layout.MM(p.LineSpacing),
			MarginLeft:   layout.MM(p.MarginLeft),
			MaxLineWidth: layout.MM(p.MaxLineWidth),
		},
		Speed: Speed{Travel: e.TravelSpeed, Draw: e.TravelSpeed},
		Batch: Batch{Threshold: batch.DefaultThreshold},
		Speech: Speech{Timeout: speech.DefaultTimeout},
		Output: Output{
			Dir:  ".",
			Name: "output_${timestamp}.gcode",
		},
		Estimate: Estimate{PenToggle: e.PenToggle, SafetyMargin: e.SafetyMargin},
		Device: Device{
			Paths: append([]string(nil), device.DefaultPaths...),
		},
		Automation: Automation{
			Locate:          []string{"quill-locate", "${template}", "${confidence}"},
			Click:           []string{"xdotool", "mousemove", "${x}", "${y}", "click", "1"},
			Confidence:      automation.DefaultConfidence,
			TemplateDir:     ".",
			ConnectTemplate: d.ConnectTemplate,
			StartTemplate:   d.StartTemplate,
		},
		Dispatch: Dispatch{
			Poll:          d.Poll,
			LaunchSettle:  d.LaunchSettle,
			ConnectSettle: d.ConnectSettle,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("配置文件 %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values the components cannot default themselves.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	var errs []error
	if c.Speed.Travel <= 0 || c.Speed.Draw <= 0 {
		errs = append(errs, fmt.Errorf("speed: 进给速度必须为正数 (travel %g, draw %g)", c.Speed.Travel, c.Speed.Draw))
	}
	if c.Batch.Threshold < 1 {
		errs = append(errs, fmt.Errorf("batch.threshold 必须至少为 1: %d", c.Batch.Threshold))
	}
	if c.Estimate.PenToggle < 0 || c.Estimate.SafetyMargin <= 0 {
		errs = append(errs, errors.New("estimate: pen_toggle 不能为负且 safety_margin 必须为正"))
	}
	if c.Output.Name == "" {
		errs = append(errs, errors.New("output.name 不能为空"))
	}
	if c.Dispatch.LaunchSettle < 0 || c.Dispatch.ConnectSettle < 0 {
		errs = append(errs, errors.New("dispatch: 等待时间不能为负"))
	}
	return errors.Join(errs...)
}

// Params converts the layout section to millimeters.
func (c Config) Params() layout.Params {
	l := c.Layout
	return layout.Params{
		CharWidth:    l.CharWidth.ToMM(),
		CharHeight:   l.CharHeight.ToMM(),
		LineSpacing:  l.LineSpacing.ToMM(),
		MarginLeft:   l.MarginLeft.ToMM(),
		MaxLineWidth: l.MaxLineWidth.ToMM(),
	}
}

// Start is the cursor for the first batch of a session.
func (c Config) Start() layout.Cursor {
	return layout.Cursor{X: c.Layout.StartX.ToMM(), Y: c.Layout.StartY.ToMM()}
}

// Estimator builds the duration estimator for the configured speeds.
func (c Config) Estimator() gcode.Estimator {
	return gcode.Estimator{
		TravelSpeed:  c.Speed.Travel,
		PenToggle:    c.Estimate.PenToggle,
		SafetyMargin: c.Estimate.SafetyMargin,
	}
}

// DispatchOptions maps the dispatch and automation sections.
func (c Config) DispatchOptions() dispatch.Options {
	opts := dispatch.DefaultOptions()
	opts.Poll = c.Dispatch.Poll
	opts.LaunchSettle = c.Dispatch.LaunchSettle
	opts.ConnectSettle = c.Dispatch.ConnectSettle
	opts.ConnectTemplate = c.Automation.ConnectTemplate
	opts.StartTemplate = c.Automation.StartTemplate
	return opts
}
