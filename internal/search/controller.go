package search

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"spinsearch/internal/structure"
)

// Evaluator is the external energy evaluator contract. An implementation
// renders the configuration into the target ab initio code's input deck,
// runs the calculation, and parses the total energy. Failures are reported
// as *EvalError and are expected; anything else is treated as a resource
// error. Cancellation is cooperative through the context.
type Evaluator interface {
	Evaluate(ctx context.Context, c Configuration) (float64, error)
}

// RecordSink receives every terminal evaluation outcome, evaluated or
// failed, as it is integrated. A persistence layer implements this to make
// runs resumable.
type RecordSink interface {
	RecordConfiguration(ctx context.Context, c Configuration) error
}

// State is the controller lifecycle state.
type State string

const (
	StateSeeding   State = "seeding"
	StateRunning   State = "running"
	StateConverged State = "converged"
	StateExhausted State = "exhausted"
	StateFailed    State = "failed"
)

// Terminal reports whether the state ends the run.
func (s State) Terminal() bool {
	return s == StateConverged || s == StateExhausted || s == StateFailed
}

// EvaluationStats breaks down the evaluation traffic of a run. Attempts
// counts individual dispatches including retries; Dispatched counts
// configurations.
type EvaluationStats struct {
	Dispatched int `json:"dispatched"`
	Succeeded  int `json:"succeeded"`
	Failed     int `json:"failed"`
	Attempts   int `json:"attempts"`
}

// Result is the user-visible outcome of a completed run.
type Result struct {
	State       State           `json:"state"`
	Best        *Configuration  `json:"best,omitempty"`
	BestEnergy  float64         `json:"best_energy"`
	Generations int             `json:"generations"`
	Evaluations EvaluationStats `json:"evaluations"`
	BestHistory []float64       `json:"best_history"`
	Diversity   float64         `json:"diversity"`
}

// Controller drives the search: it seeds an initial population, evolves
// generations of offspring, schedules their evaluation concurrently, and
// applies the termination policy. Decision-making is single-threaded; only
// evaluation runs in parallel, and workers hand results back over a channel
// rather than touching shared state.
type Controller struct {
	cfg       Config
	structure structure.Provider
	generator *Generator
	filter    *Filter
	pop       *Population
	evaluator Evaluator
	rng       *rand.Rand

	state State
	stats EvaluationStats
}

func NewController(cfg Config, s structure.Provider, magnitudes map[string][]float64, evaluator Evaluator) (*Controller, error) {
	normalized, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("structure is required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}

	generator, err := NewGenerator(s, magnitudes, normalized.Magnitude, normalized.Lambda, normalized.FlipRate)
	if err != nil {
		return nil, err
	}
	compare := normalized.Compare
	if compare == nil {
		compare = NewCompare(normalized.AngleTolerance, normalized.MagnitudeTolerance, s.Permutations())
	}
	pop, err := NewPopulation(normalized.MaxPopulation, normalized.Selector)
	if err != nil {
		return nil, err
	}

	return &Controller{
		cfg:       normalized,
		structure: s,
		generator: generator,
		filter:    NewFilter(compare),
		pop:       pop,
		evaluator: evaluator,
		rng:       rand.New(rand.NewSource(normalized.Seed)),
		state:     StateSeeding,
	}, nil
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Restore seeds duplicate history and the population from a previous run's
// records so known configurations are never re-evaluated. Must be called
// before Run.
func (c *Controller) Restore(records []Configuration) error {
	if c.state != StateSeeding {
		return fmt.Errorf("restore is only valid before the run starts")
	}
	for _, rec := range records {
		if err := rec.checkAgainst(c.structure); err != nil {
			return err
		}
		if rec.Status == StatusPending {
			continue
		}
		c.filter.Record(rec)
		if rec.Status == StatusEvaluated {
			if _, err := c.pop.Admit(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// Run executes the search to a terminal state. Per-configuration
// evaluation failures never abort the run; the returned error covers hard
// failures only (cancellation, consistency violations, sink errors).
func (c *Controller) Run(ctx context.Context) (Result, error) {
	log := c.cfg.Logger

	// A restored population skips seeding entirely; fresh seeds would all
	// duplicate the restored history.
	if c.pop.Len() == 0 {
		seeded, err := c.seed(ctx)
		if err != nil {
			return Result{}, err
		}
		if !seeded {
			c.state = StateFailed
			log.Warn("all initial evaluations failed", "dispatched", c.stats.Dispatched)
			return c.result(0), nil
		}
	} else {
		log.Info("resuming from restored population", "members", c.pop.Len(), "history_size", c.filter.Len())
	}
	c.state = StateRunning

	bestHistory := []float64{c.mustBestEnergy()}
	generation := 0
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		generation++

		batch, err := c.offspring(generation)
		if err != nil {
			return Result{}, err
		}
		if len(batch) == 0 {
			// Every generated offspring duplicated explored space; the
			// neighborhood of the current optima is saturated.
			log.Info("no novel offspring, stopping", "generation", generation)
			c.state = StateConverged
			return c.result(generation), nil
		}

		failures, err := c.dispatch(ctx, batch)
		if err != nil {
			return Result{}, err
		}

		best := c.mustBestEnergy()
		bestHistory = append(bestHistory, best)
		diversity := c.pop.Diversity()
		log.Info("generation complete",
			"generation", generation,
			"dispatched", len(batch),
			"failed", failures,
			"best_energy", best,
			"diversity", diversity,
			"history_size", c.filter.Len(),
		)

		failureRate := float64(failures) / float64(len(batch))
		if failureRate > c.cfg.FailureRateLimit {
			log.Warn("failure rate above limit", "rate", failureRate, "limit", c.cfg.FailureRateLimit)
			c.state = StateFailed
			return c.resultWithHistory(generation, bestHistory), nil
		}
		if c.converged(bestHistory, diversity) {
			c.state = StateConverged
			return c.resultWithHistory(generation, bestHistory), nil
		}
		if generation >= c.cfg.MaxGenerations || c.evaluationBudgetSpent() {
			c.state = StateExhausted
			return c.resultWithHistory(generation, bestHistory), nil
		}
	}
}

func (c *Controller) seed(ctx context.Context) (bool, error) {
	batch := make([]Configuration, 0, c.cfg.InitialPopulation)
	for attempts := 0; len(batch) < c.cfg.InitialPopulation && attempts < c.cfg.InitialPopulation*seedOversample; attempts++ {
		candidate := c.generator.Random(c.rng)
		if err := candidate.checkAgainst(c.structure); err != nil {
			return false, err
		}
		if c.filter.IsDuplicate(candidate) || duplicateOf(candidate, batch, c.filter.compare) {
			continue
		}
		batch = append(batch, candidate)
	}
	if len(batch) == 0 {
		return false, fmt.Errorf("could not seed any novel configuration")
	}

	c.cfg.Logger.Info("seeding", "candidates", len(batch), "seed", c.cfg.Seed)
	if _, err := c.dispatch(ctx, batch); err != nil {
		return false, err
	}
	return c.pop.Len() > 0, nil
}

// seedOversample bounds the retry budget for drawing novel seeds on tiny or
// heavily constrained search spaces.
const seedOversample = 20

// offspring builds one generation's batch: CrossoverFraction of the slots
// are filled by crossover, the rest by mutation, every survivor novel
// against full history and the batch itself.
func (c *Controller) offspring(generation int) ([]Configuration, error) {
	target := c.cfg.InitialPopulation
	batch := make([]Configuration, 0, target)
	for attempts := 0; len(batch) < target && attempts < target*seedOversample; attempts++ {
		child, err := c.makeChild()
		if err != nil {
			return nil, err
		}
		if c.filter.IsDuplicate(child) || duplicateOf(child, batch, c.filter.compare) {
			continue
		}
		batch = append(batch, child)
	}
	return batch, nil
}

func (c *Controller) makeChild() (Configuration, error) {
	if c.rng.Float64() < c.cfg.CrossoverFraction && c.pop.Len() > 1 {
		parents, err := c.pop.SampleParents(c.rng, 2)
		if err != nil {
			return Configuration{}, err
		}
		return c.generator.Crossover(c.rng, parents[0], parents[1])
	}
	parents, err := c.pop.SampleParents(c.rng, 1)
	if err != nil {
		return Configuration{}, err
	}
	return c.generator.Mutate(c.rng, parents[0], c.cfg.MutationRate, c.cfg.AngleSpread)
}

type evalOutcome struct {
	cfg      Configuration
	attempts int
}

// dispatch evaluates a batch concurrently, bounded by MaxConcurrent, and
// integrates results in completion order. It returns the number of
// configurations that permanently failed. Population and duplicate history
// are only touched here, on the consumer side of the results channel.
func (c *Controller) dispatch(ctx context.Context, batch []Configuration) (int, error) {
	results := make(chan evalOutcome, len(batch))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(c.cfg.MaxConcurrent)
	for _, pending := range batch {
		group.Go(func() error {
			outcome, attempts, err := c.evaluateWithRetry(gctx, pending)
			if err != nil {
				return err
			}
			results <- evalOutcome{cfg: outcome, attempts: attempts}
			return nil
		})
	}

	waitErr := make(chan error, 1)
	go func() {
		waitErr <- group.Wait()
		close(results)
	}()

	failures := 0
	for outcome := range results {
		c.stats.Dispatched++
		c.stats.Attempts += outcome.attempts
		c.filter.Record(outcome.cfg)
		switch outcome.cfg.Status {
		case StatusEvaluated:
			c.stats.Succeeded++
			if _, err := c.pop.Admit(outcome.cfg); err != nil {
				return 0, err
			}
		case StatusFailed:
			c.stats.Failed++
			failures++
		default:
			return 0, consistencyf("evaluation returned pending configuration %s", outcome.cfg.ID)
		}
		if c.cfg.Sink != nil {
			if err := c.cfg.Sink.RecordConfiguration(ctx, outcome.cfg); err != nil {
				return 0, fmt.Errorf("record configuration %s: %w", outcome.cfg.ID, err)
			}
		}
	}
	if err := <-waitErr; err != nil {
		return 0, err
	}
	return failures, nil
}

// evaluateWithRetry dispatches one configuration up to MaxRetries+1 times,
// applying the per-evaluation timeout to each attempt. Exhausting the
// attempts marks the configuration permanently failed with the last
// failure's kind.
func (c *Controller) evaluateWithRetry(ctx context.Context, pending Configuration) (Configuration, int, error) {
	lastKind := FailureResource
	attempts := 0
	for attempts <= c.cfg.MaxRetries {
		if err := ctx.Err(); err != nil {
			return Configuration{}, attempts, err
		}
		attempts++

		evalCtx := ctx
		cancel := context.CancelFunc(func() {})
		if c.cfg.EvalTimeout > 0 {
			evalCtx, cancel = context.WithTimeout(ctx, c.cfg.EvalTimeout)
		}
		energy, err := c.evaluator.Evaluate(evalCtx, pending)
		cancel()

		if err == nil {
			out, werr := pending.WithEnergy(energy)
			return out, attempts, werr
		}
		if ctx.Err() != nil {
			// The run itself is being cancelled; discard the result.
			return Configuration{}, attempts, ctx.Err()
		}
		if errors.Is(err, context.DeadlineExceeded) {
			lastKind = FailureTimeout
		} else {
			lastKind = failureKindOf(err)
		}
	}
	out, err := pending.WithFailure(lastKind)
	return out, attempts, err
}

func (c *Controller) converged(bestHistory []float64, diversity float64) bool {
	window := c.cfg.ConvergenceWindow
	if len(bestHistory) <= window {
		return false
	}
	improvement := bestHistory[len(bestHistory)-1-window] - bestHistory[len(bestHistory)-1]
	return improvement <= c.cfg.ConvergenceEpsilon && diversity < c.cfg.DiversityFloor
}

func (c *Controller) evaluationBudgetSpent() bool {
	return c.cfg.MaxEvaluations > 0 && c.stats.Attempts >= c.cfg.MaxEvaluations
}

func (c *Controller) mustBestEnergy() float64 {
	best, err := c.pop.Best()
	if err != nil {
		return 0
	}
	return best.Energy
}

func (c *Controller) result(generations int) Result {
	return c.resultWithHistory(generations, nil)
}

func (c *Controller) resultWithHistory(generations int, bestHistory []float64) Result {
	res := Result{
		State:       c.state,
		Generations: generations,
		Evaluations: c.stats,
		BestHistory: bestHistory,
		Diversity:   c.pop.Diversity(),
	}
	if best, err := c.pop.Best(); err == nil {
		res.Best = &best
		res.BestEnergy = best.Energy
	}
	return res
}

func duplicateOf(candidate Configuration, batch []Configuration, compare CompareFunc) bool {
	for _, other := range batch {
		if compare(candidate, other) {
			return true
		}
	}
	return false
}
