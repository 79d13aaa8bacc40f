package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Disks != 3 {
		t.Errorf("expected 3 disks, got %d", cfg.Disks)
	}
	if cfg.Timing.Duration != 3*time.Second || cfg.Timing.Settle != 500*time.Millisecond {
		t.Errorf("unexpected timing %+v", cfg.Timing)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hanoisim.yaml")
	cfg := DefaultConfig()
	cfg.Disks = 7
	cfg.Timing.Duration = 250 * time.Millisecond

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Disks != 7 || loaded.Timing.Duration != 250*time.Millisecond {
		t.Errorf("unexpected config %+v", loaded)
	}
	if loaded.Layout != cfg.Layout {
		t.Errorf("layout changed: %+v", loaded.Layout)
	}
}

func TestLoadClampsDisks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hanoisim.yaml")
	if err := os.WriteFile(path, []byte("disks: 40\ntiming:\n  duration: 1s\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Disks != 12 {
		t.Errorf("expected clamp to 12, got %d", cfg.Disks)
	}
	if cfg.Timing.Duration != time.Second || cfg.Timing.Settle != 500*time.Millisecond {
		t.Errorf("expected defaults to fill in, got %+v", cfg.Timing)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero duration", func(c *Config) { c.Timing.Duration = 0 }},
		{"negative settle", func(c *Config) { c.Timing.Settle = -time.Second }},
		{"too many disks", func(c *Config) { c.Disks = 13 }},
		{"no data dir", func(c *Config) { c.DataDir = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
		{"low clearance", func(c *Config) { c.Layout.Clearance = 20 }},
		{"zero fps", func(c *Config) { c.FPS = 0 }},
		{"bad origin", func(c *Config) { c.Server.AllowedOrigins = []string{"not a url"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	p, ok := GetPreset("quick")
	if !ok {
		t.Fatal("expected preset")
	}
	cfg := DefaultConfig()
	p.Apply(cfg)
	if cfg.Disks != 3 || cfg.Timing.Duration != 600*time.Millisecond {
		t.Errorf("preset not applied: %+v", cfg)
	}

	if _, ok := GetPreset("nonexistent"); ok {
		t.Error("expected missing preset")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != len(Presets) {
		t.Fatalf("expected %d presets, got %d", len(Presets), len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Error("expected sorted names")
		}
	}
	for _, name := range names {
		cfg := DefaultConfig()
		Presets[name].Apply(cfg)
		if err := cfg.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestFrameInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FPS = 30
	if cfg.FrameInterval() != time.Second/30 {
		t.Errorf("unexpected interval %v", cfg.FrameInterval())
	}
}
