package search

import (
	"fmt"
	"log/slog"
	"time"

	"spinsearch/internal/moment"
)

// Config holds every tunable of a search run. Unset optional fields take
// the defaults applied by normalized; required fields fail validation.
type Config struct {
	// Population shape.
	InitialPopulation int
	MaxPopulation     int

	// Budget.
	MaxGenerations int
	MaxEvaluations int // 0 = unlimited

	// Evaluation dispatch.
	EvalTimeout      time.Duration // 0 = no per-evaluation timeout
	MaxConcurrent    int
	MaxRetries       int
	FailureRateLimit float64

	// Variation operators.
	MutationRate      float64
	FlipRate          float64
	AngleSpread       float64 // radians
	CrossoverFraction float64

	// Duplicate detection.
	AngleTolerance     float64 // radians
	MagnitudeTolerance float64

	// Termination.
	ConvergenceEpsilon float64
	ConvergenceWindow  int
	DiversityFloor     float64 // radians

	// Physics pass-through.
	Magnitude moment.Range
	Lambda    float64

	// Run identity and plumbing.
	Seed     int64
	Selector Selector
	Compare  CompareFunc
	Sink     RecordSink
	Logger   *slog.Logger
}

const (
	defaultFailureRateLimit = 0.9
	defaultCrossover        = 0.3
	defaultAngleSpread      = 0.35
	defaultAngleTolerance   = 0.05
	defaultMagTolerance     = 1e-3
	defaultConvergenceEps   = 1e-6
	defaultWindow           = 5
	defaultDiversityFloor   = 0.1
)

// normalized validates the configuration and fills defaults, returning a
// copy used by the controller for the rest of the run.
func (c Config) normalized() (Config, error) {
	if c.InitialPopulation <= 0 {
		return Config{}, fmt.Errorf("initial population must be > 0")
	}
	if c.MaxPopulation <= 0 {
		return Config{}, fmt.Errorf("max population must be > 0")
	}
	if c.MaxGenerations <= 0 {
		return Config{}, fmt.Errorf("max generations must be > 0")
	}
	if c.MaxEvaluations < 0 {
		return Config{}, fmt.Errorf("max evaluations must be >= 0")
	}
	if c.EvalTimeout < 0 {
		return Config{}, fmt.Errorf("evaluation timeout must be >= 0")
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 1
	}
	if c.MaxRetries < 0 {
		return Config{}, fmt.Errorf("max retries must be >= 0")
	}
	if c.FailureRateLimit == 0 {
		c.FailureRateLimit = defaultFailureRateLimit
	}
	if c.FailureRateLimit <= 0 || c.FailureRateLimit > 1 {
		return Config{}, fmt.Errorf("failure rate limit must be in (0, 1]")
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return Config{}, fmt.Errorf("mutation rate must be in [0, 1]")
	}
	if c.FlipRate < 0 || c.FlipRate > 1 {
		return Config{}, fmt.Errorf("flip rate must be in [0, 1]")
	}
	if c.AngleSpread == 0 {
		c.AngleSpread = defaultAngleSpread
	}
	if c.AngleSpread < 0 {
		return Config{}, fmt.Errorf("angle spread must be >= 0")
	}
	if c.CrossoverFraction == 0 {
		c.CrossoverFraction = defaultCrossover
	}
	if c.CrossoverFraction < 0 || c.CrossoverFraction > 1 {
		return Config{}, fmt.Errorf("crossover fraction must be in [0, 1]")
	}
	if c.AngleTolerance == 0 {
		c.AngleTolerance = defaultAngleTolerance
	}
	if c.AngleTolerance < 0 {
		return Config{}, fmt.Errorf("angle tolerance must be >= 0")
	}
	if c.MagnitudeTolerance == 0 {
		c.MagnitudeTolerance = defaultMagTolerance
	}
	if c.MagnitudeTolerance < 0 {
		return Config{}, fmt.Errorf("magnitude tolerance must be >= 0")
	}
	if c.ConvergenceEpsilon == 0 {
		c.ConvergenceEpsilon = defaultConvergenceEps
	}
	if c.ConvergenceEpsilon < 0 {
		return Config{}, fmt.Errorf("convergence epsilon must be >= 0")
	}
	if c.ConvergenceWindow <= 0 {
		c.ConvergenceWindow = defaultWindow
	}
	if c.DiversityFloor == 0 {
		c.DiversityFloor = defaultDiversityFloor
	}
	if c.DiversityFloor < 0 {
		return Config{}, fmt.Errorf("diversity floor must be >= 0")
	}
	if err := c.Magnitude.Validate(); err != nil {
		return Config{}, err
	}
	if c.Selector == nil {
		c.Selector = TournamentSelector{}
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c, nil
}
