package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spinsearch/internal/moment"
)

func testCompare(perms [][]int) CompareFunc {
	return NewCompare(0.1, 0.01, perms)
}

func TestConfigurationIsDuplicateOfItself(t *testing.T) {
	compare := testCompare(nil)
	c := newConfiguration(uniformMoments(3, moment.Vector{X: 1, Z: 1}), 0, 0)
	assert.True(t, compare(c, c))
}

func TestGlobalFlipIsDuplicate(t *testing.T) {
	compare := testCompare(nil)
	c := newConfiguration([]moment.Vector{{X: 2}, {Z: -1.5}}, 0, 0)
	flipped := newConfiguration([]moment.Vector{{X: -2}, {Z: 1.5}}, 0, 0)
	assert.True(t, compare(c, flipped))
}

func TestAngularDifferenceBeyondToleranceIsNotDuplicate(t *testing.T) {
	compare := testCompare(nil)
	c := newConfiguration([]moment.Vector{{Z: 2}, {Z: 2}}, 0, 0)
	// Second atom rotated by ~0.29 rad, well past the 0.1 tolerance.
	other := newConfiguration([]moment.Vector{{Z: 2}, moment.FromPolar(2, moment.Vector{X: 0.3, Z: 1})}, 0, 0)
	assert.False(t, compare(c, other))
}

func TestMagnitudeDifferenceBeyondToleranceIsNotDuplicate(t *testing.T) {
	compare := testCompare(nil)
	c := newConfiguration([]moment.Vector{{Z: 2}}, 0, 0)
	other := newConfiguration([]moment.Vector{{Z: 2.5}}, 0, 0)
	assert.False(t, compare(c, other))
}

func TestSymmetryPermutationIsDuplicate(t *testing.T) {
	compare := testCompare([][]int{{1, 0}})
	a := newConfiguration([]moment.Vector{{X: 2}, {Z: 2}}, 0, 0)
	swapped := newConfiguration([]moment.Vector{{Z: 2}, {X: 2}}, 0, 0)
	assert.True(t, compare(a, swapped))

	withoutPerm := testCompare(nil)
	assert.False(t, withoutPerm(a, swapped))
}

func TestPermutationComposedWithFlipIsDuplicate(t *testing.T) {
	compare := testCompare([][]int{{1, 0}})
	a := newConfiguration([]moment.Vector{{X: 2}, {Z: 2}}, 0, 0)
	swappedFlipped := newConfiguration([]moment.Vector{{Z: -2}, {X: -2}}, 0, 0)
	assert.True(t, compare(a, swappedFlipped))
}

func TestZeroMomentSitesCompareByMagnitudeOnly(t *testing.T) {
	compare := testCompare(nil)
	a := newConfiguration([]moment.Vector{{}, {Z: 2}}, 0, 0)
	b := newConfiguration([]moment.Vector{{}, {Z: 2}}, 0, 0)
	assert.True(t, compare(a, b))

	c := newConfiguration([]moment.Vector{{Z: 0.5}, {Z: 2}}, 0, 0)
	assert.False(t, compare(a, c))
}

func TestFilterScansHistory(t *testing.T) {
	filter := NewFilter(testCompare(nil))
	c := newConfiguration(uniformMoments(2, moment.Vector{Z: 2}), 0, 0)

	require.False(t, filter.IsDuplicate(c))
	filter.Record(c)
	assert.Equal(t, 1, filter.Len())
	assert.True(t, filter.IsDuplicate(c))
	assert.True(t, filter.IsDuplicate(newConfiguration(uniformMoments(2, moment.Vector{Z: -2}), 0, 0)))

	distinct := newConfiguration(uniformMoments(2, moment.Vector{X: 2}), 0, 0)
	assert.False(t, filter.IsDuplicate(distinct))
}

func TestFilterComparisonIsPluggable(t *testing.T) {
	never := CompareFunc(func(a, b Configuration) bool { return false })
	filter := NewFilter(never)
	c := newConfiguration(uniformMoments(1, moment.Vector{Z: 1}), 0, 0)
	filter.Record(c)
	assert.False(t, filter.IsDuplicate(c))
}
