package search

import (
	"testing"

	"spinsearch/internal/moment"
	"spinsearch/internal/structure"
)

func ironChain(t *testing.T, n int) *structure.Simple {
	t.Helper()
	sites := make([]structure.Site, n)
	for i := range sites {
		sites[i] = structure.Site{Species: "Fe"}
	}
	s, err := structure.NewSimple(sites, nil)
	if err != nil {
		t.Fatalf("build structure: %v", err)
	}
	return s
}

func ironGenerator(t *testing.T, s *structure.Simple, flipRate float64) *Generator {
	t.Helper()
	g, err := NewGenerator(s, map[string][]float64{"Fe": {2.0}}, moment.Range{Min: 0, Max: 5}, 10.0, flipRate)
	if err != nil {
		t.Fatalf("build generator: %v", err)
	}
	return g
}

func evaluated(t *testing.T, energy float64, moments ...moment.Vector) Configuration {
	t.Helper()
	c, err := newConfiguration(moments, 0, 0).WithEnergy(energy)
	if err != nil {
		t.Fatalf("evaluate configuration: %v", err)
	}
	return c
}

func uniformMoments(n int, v moment.Vector) []moment.Vector {
	moments := make([]moment.Vector, n)
	for i := range moments {
		moments[i] = v
	}
	return moments
}
