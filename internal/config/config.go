package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hanoisim/internal/geometry"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/player"
)

const (
	DefaultDisks    = 3
	DefaultFPS      = 60
	DefaultTheme    = "classic"
	DefaultAddr     = ":8080"
	DefaultDataDir  = ".hanoisim"
	DefaultLogLevel = "info"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Disks    int             `yaml:"disks" validate:"min=1,max=12"`
	Timing   TimingConfig    `yaml:"timing"`
	Layout   geometry.Layout `yaml:"layout"`
	Theme    string          `yaml:"theme"`
	FPS      int             `yaml:"fps" validate:"min=1,max=240"`
	Server   ServerConfig    `yaml:"server"`
	DataDir  string          `yaml:"data_dir" validate:"required"`
	LogLevel string          `yaml:"log_level" validate:"oneof=debug info warn error off"`
}

type TimingConfig struct {
	Duration time.Duration `yaml:"duration" validate:"gt=0"`
	Settle   time.Duration `yaml:"settle" validate:"gte=0"`
}

// ServerConfig holds the web listener. The websocket accepts pages served
// from the same host plus any AllowedOrigins, written as scheme://host[:port].
type ServerConfig struct {
	Addr           string   `yaml:"addr" validate:"required"`
	AllowedOrigins []string `yaml:"allowed_origins" validate:"dive,url"`
}

func DefaultConfig() *Config {
	return &Config{
		Disks: DefaultDisks,
		Timing: TimingConfig{
			Duration: player.DefaultDuration,
			Settle:   player.DefaultSettle,
		},
		Layout:   geometry.DefaultLayout(),
		Theme:    DefaultTheme,
		FPS:      DefaultFPS,
		Server:   ServerConfig{Addr: DefaultAddr},
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.Disks = hanoi.ClampDisks(cfg.Disks)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field bounds and that the layout keeps lifted disks above
// every stack.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("%w: %s fails %q (got %v)", ErrInvalid, f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if err := c.Layout.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

func (c *Config) PlayerTiming() player.Timing {
	return player.Timing{Duration: c.Timing.Duration, Settle: c.Timing.Settle}
}

// FrameInterval is the redraw period for animated views.
func (c *Config) FrameInterval() time.Duration {
	if c.FPS <= 0 {
		return time.Second / DefaultFPS
	}
	return time.Second / time.Duration(c.FPS)
}
