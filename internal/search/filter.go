package search

import (
	"math"

	"spinsearch/internal/moment"
)

// CompareFunc reports whether two configurations are physically equivalent.
// It is pluggable so the linear-scan filter can be swapped for a spatial
// index without touching the controller.
type CompareFunc func(a, b Configuration) bool

// NewCompare builds the default equivalence test. Two configurations match
// when, under the identity mapping, the global sign flip, any symmetry
// permutation, or a permutation composed with the flip, every atom agrees
// in direction within angleTol and in magnitude within magTol.
func NewCompare(angleTol, magTol float64, permutations [][]int) CompareFunc {
	perms := make([][]int, len(permutations))
	for i, perm := range permutations {
		perms[i] = append([]int(nil), perm...)
	}
	return func(a, b Configuration) bool {
		if len(a.Moments) != len(b.Moments) {
			return false
		}
		for _, flip := range []bool{false, true} {
			if matchesUnder(a, b, nil, flip, angleTol, magTol) {
				return true
			}
			for _, perm := range perms {
				if matchesUnder(a, b, perm, flip, angleTol, magTol) {
					return true
				}
			}
		}
		return false
	}
}

func matchesUnder(a, b Configuration, perm []int, flip bool, angleTol, magTol float64) bool {
	for i, av := range a.Moments {
		j := i
		if perm != nil {
			j = perm[i]
		}
		bv := b.Moments[j]
		if flip {
			bv = bv.Flip()
		}
		if math.Abs(av.Norm()-bv.Norm()) > magTol {
			return false
		}
		if moment.Angle(av, bv) > angleTol {
			return false
		}
	}
	return true
}

// Filter rejects configurations equivalent to any previously recorded one.
// Failed evaluations are recorded too, so known-bad configurations are never
// re-dispatched. History is unbounded and spans the whole run; a naive
// linear scan is adequate at the expected scale of tens to low hundreds of
// evaluated configurations.
type Filter struct {
	compare CompareFunc
	seen    []Configuration
}

func NewFilter(compare CompareFunc) *Filter {
	return &Filter{compare: compare}
}

// IsDuplicate scans recorded history for an equivalent configuration.
func (f *Filter) IsDuplicate(c Configuration) bool {
	for _, prev := range f.seen {
		if f.compare(c, prev) {
			return true
		}
	}
	return false
}

// Record adds a configuration to history regardless of its evaluation
// outcome.
func (f *Filter) Record(c Configuration) {
	f.seen = append(f.seen, c)
}

func (f *Filter) Len() int {
	return len(f.seen)
}
