package faces

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToleranceMatcher_WithinTolerance(t *testing.T) {
	known := []KnownSignature{
		{Name: "alejandro", Box: BoundingBox{XMin: 0.40, YMin: 0.30, Width: 0.2, Height: 0.25}},
	}
	m := ToleranceMatcher{}

	name, ok := m.Match(BoundingBox{XMin: 0.42, YMin: 0.28}, known)
	require.True(t, ok)
	require.Equal(t, "alejandro", name)
}

func TestToleranceMatcher_BothAxesMustMatch(t *testing.T) {
	known := []KnownSignature{
		{Name: "alejandro", Box: BoundingBox{XMin: 0.40, YMin: 0.30}},
	}
	m := ToleranceMatcher{}

	// xmin within tolerance, ymin far off.
	_, ok := m.Match(BoundingBox{XMin: 0.41, YMin: 0.60}, known)
	require.False(t, ok)

	// ymin within tolerance, xmin far off.
	_, ok = m.Match(BoundingBox{XMin: 0.70, YMin: 0.31}, known)
	require.False(t, ok)
}

func TestToleranceMatcher_ExactToleranceIsOutside(t *testing.T) {
	known := []KnownSignature{
		{Name: "alejandro", Box: BoundingBox{XMin: 0.40, YMin: 0.30}},
	}
	m := ToleranceMatcher{Tolerance: 0.05}

	// The bound is strict: a delta of exactly 0.05 does not match.
	_, ok := m.Match(BoundingBox{XMin: 0.45, YMin: 0.30}, known)
	require.False(t, ok)
}

func TestToleranceMatcher_FirstMatchWins(t *testing.T) {
	known := []KnownSignature{
		{Name: "first", Box: BoundingBox{XMin: 0.40, YMin: 0.30}},
		{Name: "second", Box: BoundingBox{XMin: 0.41, YMin: 0.31}},
	}
	m := ToleranceMatcher{}

	name, ok := m.Match(BoundingBox{XMin: 0.40, YMin: 0.30}, known)
	require.True(t, ok)
	require.Equal(t, "first", name)
}

func TestToleranceMatcher_EmptyRoster(t *testing.T) {
	m := ToleranceMatcher{}
	_, ok := m.Match(BoundingBox{XMin: 0.40, YMin: 0.30}, nil)
	require.False(t, ok)
}

func TestToleranceMatcher_ZeroToleranceUsesDefault(t *testing.T) {
	known := []KnownSignature{
		{Name: "alejandro", Box: BoundingBox{XMin: 0.40, YMin: 0.30}},
	}
	m := ToleranceMatcher{}

	name, ok := m.Match(BoundingBox{XMin: 0.44, YMin: 0.34}, known)
	require.True(t, ok)
	require.Equal(t, "alejandro", name)
}
