package search

import (
	"fmt"
	"math/rand"
)

// Selector chooses parents from the population, ranked ascending by energy.
type Selector interface {
	Name() string
	PickParent(rng *rand.Rand, ranked []Configuration) (Configuration, error)
}

// TournamentSelector samples a small subset and keeps the lowest-energy
// member. The default policy: selection pressure without collapsing
// diversity the way pure rank selection does.
type TournamentSelector struct {
	TournamentSize int
}

func (TournamentSelector) Name() string {
	return "tournament"
}

func (s TournamentSelector) PickParent(rng *rand.Rand, ranked []Configuration) (Configuration, error) {
	if rng == nil {
		return Configuration{}, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return Configuration{}, ErrEmptyPopulation
	}

	size := s.TournamentSize
	if size <= 0 {
		size = 3
	}
	if size > len(ranked) {
		size = len(ranked)
	}

	best := ranked[rng.Intn(len(ranked))]
	for i := 1; i < size; i++ {
		candidate := ranked[rng.Intn(len(ranked))]
		if candidate.Energy < best.Energy {
			best = candidate
		}
	}
	return best, nil
}

// EliteSelector picks uniformly from the EliteCount lowest-energy members.
type EliteSelector struct {
	EliteCount int
}

func (EliteSelector) Name() string {
	return "elite"
}

func (s EliteSelector) PickParent(rng *rand.Rand, ranked []Configuration) (Configuration, error) {
	if rng == nil {
		return Configuration{}, fmt.Errorf("random source is required")
	}
	if len(ranked) == 0 {
		return Configuration{}, ErrEmptyPopulation
	}

	count := s.EliteCount
	if count <= 0 {
		count = 1
	}
	if count > len(ranked) {
		count = len(ranked)
	}
	return ranked[rng.Intn(count)], nil
}
