package search

import (
	"fmt"
	"math/rand"

	"spinsearch/internal/moment"
	"spinsearch/internal/structure"
)

// Generator produces well-formed candidate configurations for a fixed
// structure: random seeds, mutated offspring, and crossed-over offspring.
// It owns no random state; the controller passes its rng into every call.
type Generator struct {
	structure  structure.Provider
	magnitudes map[string][]float64
	magRange   moment.Range
	lambda     float64
	flipRate   float64
}

// NewGenerator validates that the magnitude table covers every species of
// the structure and that every listed magnitude is physically admissible.
func NewGenerator(s structure.Provider, magnitudes map[string][]float64, magRange moment.Range, lambda, flipRate float64) (*Generator, error) {
	if s == nil {
		return nil, fmt.Errorf("structure is required")
	}
	if err := magRange.Validate(); err != nil {
		return nil, err
	}
	if flipRate < 0 || flipRate > 1 {
		return nil, fmt.Errorf("flip rate must be in [0, 1]")
	}
	for i := 0; i < s.AtomCount(); i++ {
		species := s.Species(i)
		entries, ok := magnitudes[species]
		if !ok || len(entries) == 0 {
			return nil, fmt.Errorf("magnitude table has no entry for species %s", species)
		}
		for _, magnitude := range entries {
			if !magRange.Contains(magnitude) {
				return nil, &moment.InvalidMomentError{Magnitude: magnitude, Range: magRange}
			}
		}
	}
	return &Generator{
		structure:  s,
		magnitudes: magnitudes,
		magRange:   magRange,
		lambda:     lambda,
		flipRate:   flipRate,
	}, nil
}

// Random draws a seed configuration: direction uniform on the unit sphere
// per atom, confined to the site axis (random sign) where the structure
// reports one, magnitude fixed or chosen uniformly from the species' table
// entry.
func (g *Generator) Random(rng *rand.Rand) Configuration {
	n := g.structure.AtomCount()
	moments := make([]moment.Vector, n)
	for i := 0; i < n; i++ {
		direction := g.randomDirection(rng, i)
		moments[i] = moment.FromPolar(g.pickMagnitude(rng, i), direction)
	}
	return newConfiguration(moments, g.lambda, 0)
}

// Mutate returns an offspring of parent. Per atom, a single draw decides
// the move: sign flip with probability flipRate, direction perturbation
// within spread with probability rate, otherwise the vector is carried
// unchanged. Axis-constrained sites never leave their axis.
func (g *Generator) Mutate(rng *rand.Rand, parent Configuration, rate, spread float64) (Configuration, error) {
	if err := parent.checkAgainst(g.structure); err != nil {
		return Configuration{}, err
	}
	moments := make([]moment.Vector, len(parent.Moments))
	for i, v := range parent.Moments {
		draw := rng.Float64()
		switch {
		case draw < g.flipRate:
			moments[i] = v.Flip()
		case draw < g.flipRate+rate:
			moments[i] = g.perturbSite(rng, i, v, spread)
		default:
			moments[i] = v
		}
	}
	child := newConfiguration(moments, parent.Lambda, parent.Generation+1, parent.ID)
	if err := child.checkAgainst(g.structure); err != nil {
		return Configuration{}, err
	}
	return child, nil
}

// Crossover builds an offspring taking each atom's vector from either
// parent with equal probability. Atoms have no meaningful ordering axis, so
// uniform per-atom mixing is used rather than a cut point.
func (g *Generator) Crossover(rng *rand.Rand, a, b Configuration) (Configuration, error) {
	if err := a.checkAgainst(g.structure); err != nil {
		return Configuration{}, err
	}
	if err := b.checkAgainst(g.structure); err != nil {
		return Configuration{}, err
	}
	moments := make([]moment.Vector, len(a.Moments))
	for i := range moments {
		if rng.Intn(2) == 0 {
			moments[i] = a.Moments[i]
		} else {
			moments[i] = b.Moments[i]
		}
	}
	generation := a.Generation
	if b.Generation > generation {
		generation = b.Generation
	}
	child := newConfiguration(moments, a.Lambda, generation+1, a.ID, b.ID)
	if err := child.checkAgainst(g.structure); err != nil {
		return Configuration{}, err
	}
	return child, nil
}

func (g *Generator) randomDirection(rng *rand.Rand, index int) moment.Vector {
	axis, constrained := g.structure.SiteAxis(index)
	if !constrained {
		return moment.RandomUnit(rng)
	}
	if rng.Intn(2) == 0 {
		return axis
	}
	return axis.Flip()
}

// perturbSite rotates a vector within spread, re-projecting onto the site
// axis when the site is constrained so the direction never leaves it.
func (g *Generator) perturbSite(rng *rand.Rand, index int, v moment.Vector, spread float64) moment.Vector {
	perturbed := v.Perturb(rng, spread)
	axis, constrained := g.structure.SiteAxis(index)
	if !constrained {
		return perturbed
	}
	if perturbed.Dot(axis) < 0 {
		axis = axis.Flip()
	}
	return moment.FromPolar(v.Norm(), axis)
}

func (g *Generator) pickMagnitude(rng *rand.Rand, index int) float64 {
	entries := g.magnitudes[g.structure.Species(index)]
	if len(entries) == 1 {
		return entries[0]
	}
	return entries[rng.Intn(len(entries))]
}
