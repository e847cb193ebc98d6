package placement

import (
	"math"
	"testing"

	"github.com/ironsheep/fitcheck-mcp/internal/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testViewport = geometry.RectFromXYWH(0, 0, 400, 800)

func TestNew_DefaultPosition(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)

	p := s.Current()
	assert.Equal(t, 200.0, p.X)
	assert.InDelta(t, 560.0, p.Y, 1e-9)
	assert.Equal(t, 1.0, p.Scale)
}

func TestMove_IsAbsoluteAndUnclamped(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)

	s.Move(10, 20)
	s.Move(-50, 5000)

	p := s.Current()
	assert.Equal(t, -50.0, p.X)
	assert.Equal(t, 5000.0, p.Y)
}

func TestAdjustScale_SaturatesAtMin(t *testing.T) {
	s := New(testViewport, ScaleRange{Min: 0.1, Max: 3.0})

	for i := 0; i < 50; i++ {
		require.NoError(t, s.AdjustScale(0.8))
		assert.GreaterOrEqual(t, s.Current().Scale, 0.1)
	}
	assert.Equal(t, 0.1, s.Current().Scale)
}

func TestAdjustScale_SaturatesAtMax(t *testing.T) {
	s := New(testViewport, ScaleRange{Min: 0.1, Max: 3.0})

	for i := 0; i < 50; i++ {
		require.NoError(t, s.AdjustScale(1.2))
		assert.LessOrEqual(t, s.Current().Scale, 3.0)
	}
	assert.Equal(t, 3.0, s.Current().Scale)
}

func TestAdjustScale_StaysInRangeForMixedSequence(t *testing.T) {
	r := ScaleRange{Min: 0.5, Max: 2.0}
	s := New(testViewport, r)

	factors := []float64{1.1, 1.2, 1.2, 1.2, 1.2, 0.8, 0.9, 0.8, 0.8, 0.8, 0.8, 1.1, 0.9}
	for _, f := range factors {
		require.NoError(t, s.AdjustScale(f))
		scale := s.Current().Scale
		assert.True(t, scale >= r.Min && scale <= r.Max, "scale %v escaped range", scale)
	}
}

func TestAdjustScale_RejectsNonPositive(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)
	require.NoError(t, s.AdjustScale(1.5))

	for _, f := range []float64{0, -1, math.NaN(), math.Inf(-1)} {
		err := s.AdjustScale(f)
		assert.ErrorIs(t, err, geometry.ErrInvalidScale)
	}
	assert.Equal(t, 1.5, s.Current().Scale, "state must be unchanged after rejected factor")
}

func TestReset(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)
	s.Move(1, 1)
	require.NoError(t, s.AdjustScale(2))

	s.Reset()

	assert.Equal(t, New(testViewport, DefaultScaleRange).Current(), s.Current())
}

func TestReset_ClampsDefaultScaleIntoRange(t *testing.T) {
	s := New(testViewport, ScaleRange{Min: 1.5, Max: 2.0})
	assert.Equal(t, 1.5, s.Current().Scale)
}

func TestSetViewport_MovesResetAnchor(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)
	s.SetViewport(geometry.RectFromXYWH(100, 100, 200, 100))
	s.Reset()

	p := s.Current()
	assert.Equal(t, 200.0, p.X)
	assert.InDelta(t, 170.0, p.Y, 1e-9)
}

func TestSetRange(t *testing.T) {
	s := New(testViewport, DefaultScaleRange)
	require.NoError(t, s.SetScale(2.8))

	require.NoError(t, s.SetRange(ScaleRange{Min: 0.5, Max: 2.0}))
	assert.Equal(t, 2.0, s.Current().Scale)

	assert.ErrorIs(t, s.SetRange(ScaleRange{Min: 2, Max: 1}), geometry.ErrInvalidScale)
	assert.ErrorIs(t, s.SetRange(ScaleRange{Min: 0, Max: 1}), geometry.ErrInvalidScale)
}
