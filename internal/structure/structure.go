// Package structure defines the contract the search engine consumes from the
// external structure and symmetry collaborators. The engine never inspects
// geometry; it only needs atom count, species labels, optional per-site
// direction constraints, and symmetry-equivalent atom permutations.
package structure

import (
	"fmt"

	"spinsearch/internal/moment"
)

// Provider exposes the fixed structure a search runs against.
type Provider interface {
	// AtomCount returns the number of atomic sites, indexed 0..N-1.
	AtomCount() int
	// Species returns the species symbol at an atom index.
	Species(index int) string
	// SiteAxis returns the site-symmetry axis the moment direction is
	// confined to, if any.
	SiteAxis(index int) (moment.Vector, bool)
	// Permutations returns the symmetry-equivalent atom permutations,
	// each a mapping perm[i] = j meaning atom i maps onto atom j. The
	// identity permutation is implied and must not be included.
	Permutations() [][]int
}

// Site is one atomic position of a Simple structure.
type Site struct {
	Species string         `yaml:"species"`
	Axis    *moment.Vector `yaml:"axis,omitempty"`
}

// Simple is a concrete Provider for drivers and tests. Real runs typically
// wrap a symmetry-analysis collaborator instead.
type Simple struct {
	sites []Site
	perms [][]int
}

// NewSimple validates the site list and symmetry permutations.
func NewSimple(sites []Site, perms [][]int) (*Simple, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("structure requires at least one site")
	}
	for i, site := range sites {
		if site.Species == "" {
			return nil, fmt.Errorf("site %d has no species", i)
		}
		if site.Axis != nil && site.Axis.IsZero() {
			return nil, fmt.Errorf("site %d has a zero constraint axis", i)
		}
	}
	for p, perm := range perms {
		if len(perm) != len(sites) {
			return nil, fmt.Errorf("permutation %d has length %d, want %d", p, len(perm), len(sites))
		}
		seen := make([]bool, len(sites))
		for i, j := range perm {
			if j < 0 || j >= len(sites) || seen[j] {
				return nil, fmt.Errorf("permutation %d is not a valid permutation", p)
			}
			if sites[i].Species != sites[j].Species {
				return nil, fmt.Errorf("permutation %d maps site %d (%s) onto site %d (%s)", p, i, sites[i].Species, j, sites[j].Species)
			}
			seen[j] = true
		}
	}
	copied := make([][]int, len(perms))
	for i, perm := range perms {
		copied[i] = append([]int(nil), perm...)
	}
	return &Simple{sites: append([]Site(nil), sites...), perms: copied}, nil
}

func (s *Simple) AtomCount() int {
	return len(s.sites)
}

func (s *Simple) Species(index int) string {
	return s.sites[index].Species
}

func (s *Simple) SiteAxis(index int) (moment.Vector, bool) {
	axis := s.sites[index].Axis
	if axis == nil {
		return moment.Vector{}, false
	}
	return axis.Unit(), true
}

func (s *Simple) Permutations() [][]int {
	out := make([][]int, len(s.perms))
	for i, perm := range s.perms {
		out[i] = append([]int(nil), perm...)
	}
	return out
}
