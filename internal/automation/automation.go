package automation

import (
	"context"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/schrodsim/internal/config"
	"github.com/san-kum/schrodsim/internal/eigen"
	"github.com/san-kum/schrodsim/internal/experiment"
	"github.com/san-kum/schrodsim/internal/potential"
	"github.com/san-kum/schrodsim/internal/storage"
	"github.com/san-kum/schrodsim/internal/store"
)

// Scenario is a scripted list of calculations.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or the defaults) and applies any
// fields that are set.
type ScenarioStep struct {
	Name       string          `yaml:"name"`
	Potential  string          `yaml:"potential"`
	Preset     string          `yaml:"preset"`
	Scheme     string          `yaml:"scheme"`
	Grid       *potential.Grid `yaml:"grid"`
	Search     *eigen.Sweep    `yaml:"search"`
	Tolerances *eigen.Options  `yaml:"tolerances"`
	Save       bool            `yaml:"save"`
}

type StepResult struct {
	Name   string
	Result *store.Result
	RunID  string
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Config resolves a step into a full configuration.
func (s ScenarioStep) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Potential != "" {
		cfg.Potential = potential.Parse(s.Potential).Name()
	}
	if s.Preset != "" {
		p := config.GetPreset(cfg.Potential, s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset %q for %s", s.Preset, cfg.Potential)
		}
		cfg = p
	}
	if s.Scheme != "" {
		cfg.Scheme = s.Scheme
	}
	if s.Grid != nil {
		cfg.Grid = *s.Grid
	}
	if s.Search != nil {
		cfg.Search = *s.Search
	}
	if s.Tolerances != nil {
		cfg.Tolerances = *s.Tolerances
	}
	return cfg, cfg.Validate()
}

// Runner executes scenarios. Progress lines go to Out; runs marked for saving
// go to Storage when it is set.
type Runner struct {
	Out     io.Writer
	Storage *storage.Store
	Runner  *experiment.Runner
}

func (r *Runner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		fmt.Fprintf(r.out(), "Running step %d/%d: %s\n", i+1, len(scenario.Steps), name)

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		req, err := experiment.RequestFromConfig(cfg)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := r.Runner.Run(ctx, req)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Result: result}
		if step.Save && r.Storage != nil {
			id, err := r.Storage.Save(result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
			sr.RunID = id
		}
		fmt.Fprintf(r.out(), "  %s: %d states\n", result.Shape, len(result.Solutions))
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep repeats a calculation while varying one grid parameter.
type ParameterSweep struct {
	Request   experiment.Request
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Energies   []float64
}

var sweepParams = map[string]func(*potential.Grid, float64){
	"x_max":  func(g *potential.Grid, v float64) { g.XMax = v },
	"x_min":  func(g *potential.Grid, v float64) { g.XMin = v },
	"x_step": func(g *potential.Grid, v float64) { g.Step = v },
}

func (r *Runner) RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	set, ok := sweepParams[sweep.ParamName]
	if !ok {
		return nil, fmt.Errorf("unknown sweep parameter: %s", sweep.ParamName)
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep
		req := sweep.Request
		set(&req.Grid, paramVal)

		result, err := r.Runner.Run(ctx, req)
		if err != nil {
			return results, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{ParamValue: paramVal, Energies: result.Energies()})
		fmt.Fprintf(r.out(), "Sweep %d/%d: %s=%.4f\n", i+1, sweep.NumSteps, sweep.ParamName, paramVal)
	}

	return results, nil
}
