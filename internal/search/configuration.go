package search

import (
	"github.com/google/uuid"

	"spinsearch/internal/moment"
	"spinsearch/internal/structure"
)

// Status tracks a configuration through its evaluation lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEvaluated Status = "evaluated"
	StatusFailed    Status = "failed"
)

// Configuration is one candidate solution: a moment vector per atom of the
// fixed structure, plus the shared constraint strength passed through to the
// external evaluator. Configurations are immutable; evaluation outcomes
// produce copies via WithEnergy and WithFailure.
type Configuration struct {
	ID         string          `json:"id"`
	Moments    []moment.Vector `json:"moments"`
	Lambda     float64         `json:"lambda"`
	Generation int             `json:"generation"`
	ParentIDs  []string        `json:"parent_ids,omitempty"`
	Status     Status          `json:"status"`
	Energy     float64         `json:"energy,omitempty"`
	Failure    FailureKind     `json:"failure,omitempty"`
}

func newConfiguration(moments []moment.Vector, lambda float64, generation int, parentIDs ...string) Configuration {
	return Configuration{
		ID:         uuid.NewString(),
		Moments:    moments,
		Lambda:     lambda,
		Generation: generation,
		ParentIDs:  append([]string(nil), parentIDs...),
		Status:     StatusPending,
	}
}

func (c Configuration) AtomCount() int {
	return len(c.Moments)
}

// WithEnergy returns an evaluated copy. Setting an outcome twice is a
// consistency violation.
func (c Configuration) WithEnergy(energy float64) (Configuration, error) {
	if c.Status != StatusPending {
		return Configuration{}, consistencyf("configuration %s already has outcome %s", c.ID, c.Status)
	}
	out := c.clone()
	out.Status = StatusEvaluated
	out.Energy = energy
	return out, nil
}

// WithFailure returns a permanently failed copy. Failed configurations are
// excluded from selection but stay in duplicate history.
func (c Configuration) WithFailure(kind FailureKind) (Configuration, error) {
	if c.Status != StatusPending {
		return Configuration{}, consistencyf("configuration %s already has outcome %s", c.ID, c.Status)
	}
	out := c.clone()
	out.Status = StatusFailed
	out.Failure = kind
	return out, nil
}

func (c Configuration) clone() Configuration {
	out := c
	out.Moments = append([]moment.Vector(nil), c.Moments...)
	out.ParentIDs = append([]string(nil), c.ParentIDs...)
	return out
}

// checkAgainst verifies the configuration covers exactly the structure's
// atom indices. A mismatch is a fatal generator bug, not a recoverable
// condition.
func (c Configuration) checkAgainst(s structure.Provider) error {
	if len(c.Moments) != s.AtomCount() {
		return consistencyf("configuration %s has %d moments for a %d-atom structure", c.ID, len(c.Moments), s.AtomCount())
	}
	return nil
}
