package main

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"spinsearch/internal/moment"
	"spinsearch/internal/search"
	"spinsearch/internal/structure"
)

// runSpec is the YAML description of one search run. Decoding is strict:
// unknown keys fail fast instead of being silently ignored.
type runSpec struct {
	Structure struct {
		Sites        []structure.Site `yaml:"sites"`
		Permutations [][]int          `yaml:"permutations"`
	} `yaml:"structure"`
	Magnitudes map[string][]float64 `yaml:"magnitudes"`
	Evaluator  struct {
		Command []string `yaml:"command"`
	} `yaml:"evaluator"`
	Search struct {
		InitialPopulation  int     `yaml:"initial_population"`
		MaxPopulation      int     `yaml:"max_population"`
		MaxGenerations     int     `yaml:"max_generations"`
		MaxEvaluations     int     `yaml:"max_evaluations"`
		EvalTimeout        string  `yaml:"eval_timeout"`
		MaxConcurrent      int     `yaml:"max_concurrent"`
		MutationRate       float64 `yaml:"mutation_rate"`
		FlipRate           float64 `yaml:"flip_rate"`
		AngleSpread        float64 `yaml:"angle_spread"`
		CrossoverFraction  float64 `yaml:"crossover_fraction"`
		AngleTolerance     float64 `yaml:"angle_tolerance"`
		MagnitudeTolerance float64 `yaml:"magnitude_tolerance"`
		ConvergenceEpsilon float64 `yaml:"convergence_epsilon"`
		ConvergenceWindow  int     `yaml:"convergence_window"`
		DiversityFloor     float64 `yaml:"diversity_floor"`
		MaxRetries         int     `yaml:"max_retries"`
		FailureRateLimit   float64 `yaml:"failure_rate_limit"`
		MinMagnitude       float64 `yaml:"min_magnitude"`
		MaxMagnitude       float64 `yaml:"max_magnitude"`
		Lambda             float64 `yaml:"lambda"`
		Seed               int64   `yaml:"seed"`
	} `yaml:"search"`
}

func loadRunSpec(path string) (runSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return runSpec{}, err
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	var spec runSpec
	if err := decoder.Decode(&spec); err != nil {
		return runSpec{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(spec.Evaluator.Command) == 0 {
		return runSpec{}, fmt.Errorf("%s: evaluator command is required", path)
	}
	return spec, nil
}

func (s runSpec) buildStructure() (*structure.Simple, error) {
	return structure.NewSimple(s.Structure.Sites, s.Structure.Permutations)
}

func (s runSpec) buildConfig() (search.Config, error) {
	cfg := search.Config{
		InitialPopulation:  s.Search.InitialPopulation,
		MaxPopulation:      s.Search.MaxPopulation,
		MaxGenerations:     s.Search.MaxGenerations,
		MaxEvaluations:     s.Search.MaxEvaluations,
		MaxConcurrent:      s.Search.MaxConcurrent,
		MutationRate:       s.Search.MutationRate,
		FlipRate:           s.Search.FlipRate,
		AngleSpread:        s.Search.AngleSpread,
		CrossoverFraction:  s.Search.CrossoverFraction,
		AngleTolerance:     s.Search.AngleTolerance,
		MagnitudeTolerance: s.Search.MagnitudeTolerance,
		ConvergenceEpsilon: s.Search.ConvergenceEpsilon,
		ConvergenceWindow:  s.Search.ConvergenceWindow,
		DiversityFloor:     s.Search.DiversityFloor,
		MaxRetries:         s.Search.MaxRetries,
		FailureRateLimit:   s.Search.FailureRateLimit,
		Magnitude:          moment.Range{Min: s.Search.MinMagnitude, Max: s.Search.MaxMagnitude},
		Lambda:             s.Search.Lambda,
		Seed:               s.Search.Seed,
	}
	if s.Search.EvalTimeout != "" {
		timeout, err := time.ParseDuration(s.Search.EvalTimeout)
		if err != nil {
			return search.Config{}, fmt.Errorf("parse eval_timeout: %w", err)
		}
		cfg.EvalTimeout = timeout
	}
	return cfg, nil
}
