package moment

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidatesMagnitude(t *testing.T) {
	r := Range{Min: 0.5, Max: 3.0}

	v, err := New(0, 0, 2.0, r)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v.Norm(), 1e-12)

	_, err = New(0, 0, 5.0, r)
	var invalid *InvalidMomentError
	require.ErrorAs(t, err, &invalid)
	assert.InDelta(t, 5.0, invalid.Magnitude, 1e-12)

	_, err = New(0.1, 0, 0, r)
	require.ErrorAs(t, err, &invalid)
}

func TestNewAllowsZeroMomentBelowRangeFloor(t *testing.T) {
	v, err := New(0, 0, 0, Range{Min: 1, Max: 3})
	require.NoError(t, err)
	assert.True(t, v.IsZero())
}

func TestRangeValidate(t *testing.T) {
	require.Error(t, Range{Min: -1, Max: 1}.Validate())
	require.Error(t, Range{Min: 2, Max: 1}.Validate())
	require.NoError(t, Range{Min: 0, Max: 0}.Validate())
}

func TestFromPolar(t *testing.T) {
	v := FromPolar(2.5, Vector{X: 0, Y: 0, Z: 4})
	assert.InDelta(t, 2.5, v.Norm(), 1e-12)
	assert.InDelta(t, 2.5, v.Z, 1e-12)

	assert.True(t, FromPolar(0, Vector{Z: 1}).IsZero())
	assert.True(t, FromPolar(2, Vector{}).IsZero())
}

func TestFlipTwiceIsIdentity(t *testing.T) {
	v := Vector{X: 1.2, Y: -0.7, Z: 0.3}
	back := v.Flip().Flip()
	assert.InDelta(t, v.X, back.X, 1e-12)
	assert.InDelta(t, v.Y, back.Y, 1e-12)
	assert.InDelta(t, v.Z, back.Z, 1e-12)
}

func TestAngle(t *testing.T) {
	x := Vector{X: 1}
	y := Vector{Y: 2}
	assert.InDelta(t, math.Pi/2, Angle(x, y), 1e-12)
	assert.InDelta(t, math.Pi, Angle(x, x.Flip()), 1e-12)
	assert.InDelta(t, 0, Angle(x, x), 1e-12)
	assert.InDelta(t, 0, Angle(x, Vector{}), 1e-12)
}

func TestPerturbPreservesMagnitudeWithinSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := FromPolar(1.8, Vector{X: 1, Y: 1, Z: 0.5})
	spread := 0.4

	for i := 0; i < 200; i++ {
		p := v.Perturb(rng, spread)
		if math.Abs(p.Norm()-v.Norm()) > 1e-9 {
			t.Fatalf("magnitude changed: %g -> %g", v.Norm(), p.Norm())
		}
		if a := Angle(v, p); a > spread+1e-9 {
			t.Fatalf("rotation %g exceeds spread %g", a, spread)
		}
	}
}

func TestPerturbZeroVectorAndZeroSpread(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	assert.True(t, Vector{}.Perturb(rng, 0.5).IsZero())

	v := Vector{X: 1}
	assert.Equal(t, v, v.Perturb(rng, 0))
}

func TestRandomUnitIsUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 100; i++ {
		u := RandomUnit(rng)
		require.InDelta(t, 1.0, u.Norm(), 1e-9)
	}
}
