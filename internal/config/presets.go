package config

import (
	"sort"
	"time"
)

type Preset struct {
	Disks    int
	Duration time.Duration
	Settle   time.Duration
}

// Presets pair a disk count with a pace that keeps the whole solve watchable.
var Presets = map[string]Preset{
	"classic":  {Disks: 3, Duration: 3000 * time.Millisecond, Settle: 500 * time.Millisecond},
	"quick":    {Disks: 3, Duration: 600 * time.Millisecond, Settle: 100 * time.Millisecond},
	"tower":    {Disks: 6, Duration: 400 * time.Millisecond, Settle: 50 * time.Millisecond},
	"marathon": {Disks: 10, Duration: 120 * time.Millisecond, Settle: 10 * time.Millisecond},
	"max":      {Disks: 12, Duration: 40 * time.Millisecond, Settle: 0},
}

func GetPreset(name string) (Preset, bool) {
	p, ok := Presets[name]
	return p, ok
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply copies the preset's disk count and pacing onto c.
func (p Preset) Apply(c *Config) {
	c.Disks = p.Disks
	c.Timing.Duration = p.Duration
	c.Timing.Settle = p.Settle
}
