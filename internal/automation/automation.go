// Package automation runs scripted batches of solves described in YAML and
// sweeps the disk count to compare whole solves.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hanoisim/internal/config"
	"github.com/san-kum/hanoisim/internal/hanoi"
	"github.com/san-kum/hanoisim/internal/logging"
	"github.com/san-kum/hanoisim/internal/metrics"
	"github.com/san-kum/hanoisim/internal/player"
	"github.com/san-kum/hanoisim/internal/storage"
)

var ErrScenario = errors.New("automation: invalid scenario")

// Scenario defines a scripted sequence of solves
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parallel    int            `yaml:"parallel"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one solve. A preset supplies disks and pacing; explicit
// fields override it. Unpaced steps run without waiting between moves.
type ScenarioStep struct {
	Disks    int           `yaml:"disks"`
	Preset   string        `yaml:"preset"`
	Duration time.Duration `yaml:"duration"`
	Settle   time.Duration `yaml:"settle"`
	Paced    bool          `yaml:"paced"`
	Save     bool          `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrScenario)
	}
	for i, step := range s.Steps {
		if step.Preset != "" {
			if _, ok := config.GetPreset(step.Preset); !ok {
				return fmt.Errorf("%w: step %d: unknown preset %q", ErrScenario, i+1, step.Preset)
			}
			if step.Disks == 0 {
				continue
			}
		}
		if err := hanoi.ValidateDisks(step.Disks); err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrScenario, i+1, err)
		}
	}
	return nil
}

// resolve merges a step with its preset and the base config.
func (step ScenarioStep) resolve(base *config.Config) (int, player.Timing) {
	n, timing := base.Disks, base.PlayerTiming()
	if p, ok := config.GetPreset(step.Preset); ok {
		n, timing = p.Disks, player.Timing{Duration: p.Duration, Settle: p.Settle}
	}
	if step.Disks != 0 {
		n = step.Disks
	}
	if step.Duration != 0 {
		timing.Duration = step.Duration
	}
	if step.Settle != 0 {
		timing.Settle = step.Settle
	}
	return n, timing
}

type StepResult struct {
	Step   int
	Disks  int
	Timing player.Timing
	Result *player.Result
	RunID  string
}

// Runner executes scenarios headlessly. Store may be nil when nothing is
// saved.
type Runner struct {
	Config *config.Config
	Store  *storage.Store
	Logger logging.Logger
}

// RunScenario executes the steps, up to Parallel at a time, and returns the
// results in step order. The first failing step cancels the rest.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	logger = logger.With(logging.String("scenario", scenario.Name))

	results := make([]StepResult, len(scenario.Steps))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(scenario.Parallel, 1))

	for i, step := range scenario.Steps {
		g.Go(func() error {
			n, timing := step.resolve(r.Config)
			opts := []player.Option{
				player.WithLayout(r.Config.Layout),
				player.WithTiming(timing),
				player.WithLogger(logger.With(logging.Int("step", i+1))),
				player.WithMetrics(metrics.NewMoveCount(), metrics.NewTravelDistance(), metrics.NewLiftDistance()),
			}
			if !step.Paced {
				opts = append(opts, player.WithWait(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }))
			}

			result, err := player.New(player.Discard, opts...).Run(ctx, n)
			if err != nil {
				return fmt.Errorf("step %d: %w", i+1, err)
			}
			results[i] = StepResult{Step: i + 1, Disks: n, Timing: timing, Result: result}
			logger.Debug("step finished",
				logging.Int("step", i+1),
				logging.Int("moves", len(result.Moves)),
				logging.Float64("travel", result.Metrics["travel_distance"]),
			)

			if step.Save && r.Store != nil {
				id, err := r.Store.Save("scenario:"+scenario.Name, timing, result)
				if err != nil {
					return fmt.Errorf("step %d save: %w", i+1, err)
				}
				results[i].RunID = id
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// SweepResult holds the totals of one unpaced solve
type SweepResult struct {
	Disks  int
	Moves  int
	Travel float64
	Lift   float64
}

// RunSweep solves every disk count in [from, to] without pacing.
func (r *Runner) RunSweep(ctx context.Context, from, to int) ([]SweepResult, error) {
	if err := hanoi.ValidateDisks(from); err != nil {
		return nil, err
	}
	if err := hanoi.ValidateDisks(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: sweep range %d..%d is empty", ErrScenario, from, to)
	}

	scenario := &Scenario{Name: "sweep", Parallel: to - from + 1}
	for n := from; n <= to; n++ {
		scenario.Steps = append(scenario.Steps, ScenarioStep{Disks: n})
	}
	steps, err := r.RunScenario(ctx, scenario)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(steps))
	for i, s := range steps {
		results[i] = SweepResult{
			Disks:  s.Disks,
			Moves:  len(s.Result.Moves),
			Travel: s.Result.Metrics["travel_distance"],
			Lift:   s.Result.Metrics["lift_distance"],
		}
	}
	return results, nil
}
