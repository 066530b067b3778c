package events

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeTrendsDecayingLamp(t *testing.T) {
	n := 600
	times := make([]float64, n)
	signal := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
		signal[i] = 1000 * math.Exp(-times[i]/2000)
	}

	s := SummarizeTrends(times, signal)

	assert.InDelta(t, 1000, s.StartIntensity, 10, "start is the first-30s mean")
	assert.InDelta(t, signal[n-1], s.EndIntensity, 1e-12)
	assert.Negative(t, s.DeltaIntensity)
	assert.Greater(t, s.SignalRange, 0.0)
	assert.Greater(t, s.SignalStd, 0.0)
}

func TestSummarizeTrendsDetectsDiscontinuity(t *testing.T) {
	n := 400
	times := make([]float64, n)
	signal := make([]float64, n)
	for i := range times {
		times[i] = float64(i)
		signal[i] = 100.0 + math.Sin(float64(i))
		if i >= 200 {
			signal[i] += 150.0 // step change
		}
	}

	s := SummarizeTrends(times, signal)
	assert.GreaterOrEqual(t, s.Discontinuities, 1)
	assert.GreaterOrEqual(t, s.SteepSegments, 1)
}

func TestSummarizeTrendsDegenerate(t *testing.T) {
	assert.Equal(t, TrendSummary{}, SummarizeTrends(nil, nil))

	s := SummarizeTrends([]float64{0}, []float64{7})
	require.Equal(t, 7.0, s.StartIntensity)
	assert.Equal(t, 7.0, s.EndIntensity)
	assert.Equal(t, 0.0, s.SignalStd)
}

func TestSummarizeTrendsFieldsFinite(t *testing.T) {
	times := []float64{0, 1}
	signal := []float64{5, 5}
	s := SummarizeTrends(times, signal)
	for _, v := range []float64{
		s.StartIntensity, s.EndIntensity, s.DeltaIntensity,
		s.MeanIntensity, s.SignalStd, s.SignalRange,
	} {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
}
