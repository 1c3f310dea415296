// Package config loads the station's tunables from a YAML file.
// Every field has a default; unknown keys are rejected.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/Lilyrua/hatework/tower"
)

type Config struct {
	// Listen is the panel HTTP address.
	Listen string `yaml:"listen"`
	// JournalPath is the operations journal file; empty disables it.
	JournalPath string `yaml:"journal-path"`

	TickIntervalMS  int     `yaml:"tick-interval-ms"`
	ApproachSeconds float64 `yaml:"approach-seconds"`
	DwellTicks      int     `yaml:"dwell-ticks"`
	GraceTicks      int     `yaml:"grace-ticks"`
	MainSpeed       float64 `yaml:"main-speed"`
	LoopSpeed       float64 `yaml:"loop-speed"`
}

func Default() Config {
	return Config{
		Listen:          ":8001",
		JournalPath:     "hatework.journal",
		TickIntervalMS:  33,
		ApproachSeconds: 2.0,
		DwellTicks:      90,
		GraceTicks:      30,
		MainSpeed:       3.4,
		LoopSpeed:       2.6,
	}
}

// Load reads the config at path on top of the defaults: omitted keys
// keep their default, explicit values win. An explicit zero is a valid
// setting where the semantics allow it (approach-seconds, grace-ticks);
// values that would break the tick loop are rejected.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func (c Config) validate() error {
	if c.TickIntervalMS <= 0 {
		return fmt.Errorf("tick-interval-ms must be positive, got %d", c.TickIntervalMS)
	}
	if c.DwellTicks <= 0 {
		return fmt.Errorf("dwell-ticks must be positive, got %d", c.DwellTicks)
	}
	if c.MainSpeed <= 0 || c.LoopSpeed <= 0 {
		return fmt.Errorf("speeds must be positive, got main %g, loop %g", c.MainSpeed, c.LoopSpeed)
	}
	if c.ApproachSeconds < 0 {
		return fmt.Errorf("approach-seconds must not be negative, got %g", c.ApproachSeconds)
	}
	if c.GraceTicks < 0 {
		return fmt.Errorf("grace-ticks must not be negative, got %d", c.GraceTicks)
	}
	return nil
}

// Timing converts the loaded tunables into the tower's injectable form.
func (c Config) Timing() tower.Timing {
	return tower.Timing{
		ApproachTime: time.Duration(c.ApproachSeconds * float64(time.Second)),
		DwellTicks:   c.DwellTicks,
		GraceTicks:   c.GraceTicks,
		MainSpeed:    c.MainSpeed,
		LoopSpeed:    c.LoopSpeed,
		TickInterval: time.Duration(c.TickIntervalMS) * time.Millisecond,
	}
}
