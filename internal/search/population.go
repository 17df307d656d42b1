package search

import (
	"fmt"
	"math/rand"
	"sort"

	"spinsearch/internal/moment"
)

// Population is the bounded working set of evaluated configurations, kept
// sorted ascending by energy. Ties preserve insertion order.
type Population struct {
	capacity int
	selector Selector
	members  []Configuration
}

func NewPopulation(capacity int, selector Selector) (*Population, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("population capacity must be > 0")
	}
	if selector == nil {
		selector = TournamentSelector{}
	}
	return &Population{capacity: capacity, selector: selector}, nil
}

// Admit inserts an evaluated configuration, keeping the sort order. At
// capacity the current worst member is replaced only when the candidate is
// strictly better; otherwise the candidate is discarded. Returns whether
// the configuration entered the population.
func (p *Population) Admit(c Configuration) (bool, error) {
	if c.Status != StatusEvaluated {
		return false, consistencyf("cannot admit %s configuration %s", c.Status, c.ID)
	}

	if len(p.members) >= p.capacity {
		worst := p.members[len(p.members)-1]
		if c.Energy >= worst.Energy {
			return false, nil
		}
		p.members = p.members[:len(p.members)-1]
	}

	idx := sort.Search(len(p.members), func(i int) bool {
		return p.members[i].Energy > c.Energy
	})
	p.members = append(p.members, Configuration{})
	copy(p.members[idx+1:], p.members[idx:])
	p.members[idx] = c
	return true, nil
}

// Best returns the lowest-energy member.
func (p *Population) Best() (Configuration, error) {
	if len(p.members) == 0 {
		return Configuration{}, ErrEmptyPopulation
	}
	return p.members[0], nil
}

func (p *Population) Len() int {
	return len(p.members)
}

// Members returns a copy of the ranked member list.
func (p *Population) Members() []Configuration {
	return append([]Configuration(nil), p.members...)
}

// SampleParents draws k parents through the configured selection policy.
// The same member may be drawn more than once.
func (p *Population) SampleParents(rng *rand.Rand, k int) ([]Configuration, error) {
	if len(p.members) == 0 {
		return nil, ErrEmptyPopulation
	}
	parents := make([]Configuration, 0, k)
	for i := 0; i < k; i++ {
		parent, err := p.selector.PickParent(rng, p.members)
		if err != nil {
			return nil, err
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// Diversity is the mean pairwise configuration distance across members,
// where the distance between two configurations is the mean per-atom
// angular difference. Zero when fewer than two members.
func (p *Population) Diversity() float64 {
	if len(p.members) < 2 {
		return 0
	}
	total := 0.0
	pairs := 0
	for i := 0; i < len(p.members); i++ {
		for j := i + 1; j < len(p.members); j++ {
			total += configurationDistance(p.members[i], p.members[j])
			pairs++
		}
	}
	return total / float64(pairs)
}

func configurationDistance(a, b Configuration) float64 {
	if len(a.Moments) == 0 || len(a.Moments) != len(b.Moments) {
		return 0
	}
	sum := 0.0
	for i := range a.Moments {
		sum += moment.Angle(a.Moments[i], b.Moments[i])
	}
	return sum / float64(len(a.Moments))
}
