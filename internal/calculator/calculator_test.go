package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNPV(t *testing.T) {
	assert.InDelta(t, 0, NPV(0.1, []float64{-100, 110}), 1e-9)
	assert.InDelta(t, 10, NPV(0, []float64{-100, 50, 60}), 1e-9)
}

func TestCalculateIRR(t *testing.T) {
	irr, err := CalculateIRR([]float64{-100, 110})
	require.NoError(t, err)
	assert.InDelta(t, 0.10, irr, 1e-6)

	// Doubling over 5 years is ~14.87% a year.
	irr, err = CalculateIRR([]float64{-100, 0, 0, 0, 0, 200})
	require.NoError(t, err)
	assert.InDelta(t, 0.148698, irr, 1e-5)

	irr, err = CalculateIRR([]float64{-100, 30, 30, 30})
	require.NoError(t, err)
	assert.Less(t, irr, 0.0)
	assert.InDelta(t, 0, NPV(irr, []float64{-100, 30, 30, 30}), 1e-6)
}

func TestCalculateIRR_NoSignChange(t *testing.T) {
	_, err := CalculateIRR([]float64{100, 10})
	assert.Error(t, err)
	_, err = CalculateIRR([]float64{-100, -10})
	assert.Error(t, err)
	_, err = CalculateIRR(nil)
	assert.Error(t, err)
}

func TestCalculateMOIC(t *testing.T) {
	moic, err := CalculateMOIC([]float64{-100, -50, 75, 300})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, moic, 1e-9)

	_, err = CalculateMOIC([]float64{10, 20})
	assert.Error(t, err)
}

func TestCalculatePayback(t *testing.T) {
	years, ok := CalculatePayback([]float64{-100, 40, 40, 40})
	assert.True(t, ok)
	assert.InDelta(t, 2.5, years, 1e-9)

	years, ok = CalculatePayback([]float64{-100, 50, 50})
	assert.True(t, ok)
	assert.InDelta(t, 2, years, 1e-9)

	years, ok = CalculatePayback([]float64{-100, 10, 10})
	assert.False(t, ok)
	assert.Equal(t, 2.0, years)

	years, ok = CalculatePayback([]float64{0, 10})
	assert.True(t, ok)
	assert.Zero(t, years)
}
