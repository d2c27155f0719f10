// Package runconfig loads the on-disk YAML form of a run: the building
// program, site geometry, and every tunable SA/GA/compliance parameter
// (spec.md §6).
package runconfig

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dshills/hsaga/pkg/ga"
	"github.com/dshills/hsaga/pkg/model"
	"github.com/dshills/hsaga/pkg/quality"
	"github.com/dshills/hsaga/pkg/sa"
)

// RunConfig is the YAML-loadable description of one optimization run.
type RunConfig struct {
	ProblemID         string             `yaml:"problemId"`
	Seed              *uint64            `yaml:"seed,omitempty"`
	WallClockBudgetMS int64              `yaml:"wallClockBudgetMs,omitempty"`
	Site              model.Site         `yaml:"site"`
	Buildings         []*model.Building  `yaml:"buildings"`
	Weights           map[string]float64 `yaml:"weights,omitempty"`
	SA                SAConfigYAML       `yaml:"sa"`
	GA                GAConfigYAML       `yaml:"ga"`
	Compliance        quality.ComplianceConfig `yaml:"compliance"`
	RunRobustness     bool               `yaml:"runRobustness,omitempty"`
}

// SAConfigYAML mirrors sa.Config with YAML tags; zero fields fall back to
// sa.DefaultConfig() at load time.
type SAConfigYAML struct {
	NumChains           int     `yaml:"numChains,omitempty"`
	MaxIterations       int     `yaml:"maxIterations,omitempty"`
	StallPatience       int     `yaml:"stallPatience,omitempty"`
	InitialTemperature  float64 `yaml:"initialTemperature,omitempty"`
	FinalTemperature    float64 `yaml:"finalTemperature,omitempty"`
	CoolingRate         float64 `yaml:"coolingRate,omitempty"`
	BoundaryMargin      float64 `yaml:"boundaryMargin,omitempty"`
	MinDistance         float64 `yaml:"minDistance,omitempty"`
}

// GAConfigYAML mirrors ga.Config with YAML tags; zero fields fall back to
// ga.DefaultConfig() at load time.
type GAConfigYAML struct {
	PopulationSize             int     `yaml:"populationSize,omitempty"`
	Generations                int     `yaml:"generations,omitempty"`
	EliteSize                  int     `yaml:"eliteSize,omitempty"`
	StallPatience              int     `yaml:"stallPatience,omitempty"`
	TournamentK                int     `yaml:"tournamentK,omitempty"`
	DiversityInjectionFraction float64 `yaml:"diversityInjectionFraction,omitempty"`
	DiversityMinDistance       float64 `yaml:"diversityMinDistance,omitempty"`
	BoundaryMargin             float64 `yaml:"boundaryMargin,omitempty"`
	MinDistance                float64 `yaml:"minDistance,omitempty"`
}

// Load reads and validates a run configuration file.
func Load(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("runconfig: reading %s: %w", path, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses a run configuration from an in-memory YAML document.
func LoadBytes(data []byte) (*RunConfig, error) {
	var cfg RunConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("runconfig: parsing YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants a YAML document can violate
// before any building/site-level validation runs (spec.md §8).
func (c *RunConfig) Validate() error {
	if c.ProblemID == "" {
		return errors.New("runconfig: problemId must not be empty")
	}
	if len(c.Buildings) == 0 {
		return errors.New("runconfig: buildings list must not be empty")
	}
	for i, b := range c.Buildings {
		if b == nil {
			return fmt.Errorf("runconfig: buildings[%d] is nil", i)
		}
		if err := b.Validate(); err != nil {
			return fmt.Errorf("runconfig: buildings[%d]: %w", i, err)
		}
	}
	if err := c.Site.Validate(); err != nil {
		return fmt.Errorf("runconfig: site: %w", err)
	}
	return nil
}

// SAConfig resolves the YAML overrides onto sa.DefaultConfig().
func (c *RunConfig) SAConfig() sa.Config {
	d := sa.DefaultConfig()
	y := c.SA
	if y.NumChains != 0 {
		d.NumChains = y.NumChains
	}
	if y.MaxIterations != 0 {
		d.MaxIterations = y.MaxIterations
	}
	if y.StallPatience != 0 {
		d.StallPatience = y.StallPatience
	}
	if y.InitialTemperature != 0 {
		d.InitialTemperature = y.InitialTemperature
	}
	if y.FinalTemperature != 0 {
		d.FinalTemperature = y.FinalTemperature
	}
	if y.CoolingRate != 0 {
		d.CoolingRate = y.CoolingRate
	}
	if y.BoundaryMargin != 0 {
		d.BoundaryMargin = y.BoundaryMargin
	}
	if y.MinDistance != 0 {
		d.MinDistance = y.MinDistance
	}
	return d
}

// GAConfig resolves the YAML overrides onto ga.DefaultConfig().
func (c *RunConfig) GAConfig() ga.Config {
	d := ga.DefaultConfig()
	y := c.GA
	if y.PopulationSize != 0 {
		d.PopulationSize = y.PopulationSize
	}
	if y.Generations != 0 {
		d.Generations = y.Generations
	}
	if y.EliteSize != 0 {
		d.EliteSize = y.EliteSize
	}
	if y.StallPatience != 0 {
		d.StallPatience = y.StallPatience
	}
	if y.TournamentK != 0 {
		d.TournamentK = y.TournamentK
	}
	if y.DiversityInjectionFraction != 0 {
		d.DiversityInjectionFraction = y.DiversityInjectionFraction
	}
	if y.DiversityMinDistance != 0 {
		d.DiversityMinDistance = y.DiversityMinDistance
	}
	if y.BoundaryMargin != 0 {
		d.BoundaryMargin = y.BoundaryMargin
	}
	if y.MinDistance != 0 {
		d.MinDistance = y.MinDistance
	}
	return d
}
