package events

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonworks/lampnoise/internal/catalog"
	"github.com/photonworks/lampnoise/internal/denoise"
)

// residualWith builds a DenoiseResult whose residual is flat except for
// Gaussian bumps at the given centers (seconds). Negative amplitude means
// a downward spike. dt is 0.1 s.
func residualWith(durationSeconds float64, bumps map[float64]float64) denoise.Result {
	const dt = 0.1
	n := int(durationSeconds/dt) + 1
	times := make([]float64, n)
	residual := make([]float64, n)
	for i := range times {
		times[i] = float64(i) * dt
		for center, amp := range bumps {
			x := (times[i] - center) / 0.5 // ~2s-wide bell
			residual[i] += amp * math.Exp(-0.5*x*x)
		}
	}
	zeros := make([]float64, n)
	return denoise.Result{
		Channel:   catalog.Main,
		Time:      times,
		Original:  residual,
		Processed: zeros,
		Residual:  residual,
	}
}

func TestDetectUpwardSpike(t *testing.T) {
	res := residualWith(60, map[float64]float64{30: 5.0})
	events := Detect(res, DefaultConfig())

	require.NotEmpty(t, events)
	ev := events[0]
	assert.Equal(t, 1, ev.Orientation)
	assert.Greater(t, ev.Amplitude, 3.0)
	assert.InDelta(t, 30.0, ev.CenterTime, 3.0)
	assert.GreaterOrEqual(t, ev.Probability, 0.5)
	assert.LessOrEqual(t, ev.Probability, 1.0)
}

func TestDetectDownwardSpike(t *testing.T) {
	res := residualWith(60, map[float64]float64{20: -4.0})
	events := Detect(res, DefaultConfig())

	require.NotEmpty(t, events)
	assert.Equal(t, -1, events[0].Orientation)
	assert.Greater(t, events[0].Amplitude, 2.0)
}

func TestDetectNothingOnFlatResidual(t *testing.T) {
	res := residualWith(60, nil)
	assert.Empty(t, Detect(res, DefaultConfig()))
}

func TestDetectRespectsAmplitudeThreshold(t *testing.T) {
	res := residualWith(60, map[float64]float64{30: 1.0})

	cfg := DefaultConfig()
	cfg.MinAmplitude = 0.2
	require.NotEmpty(t, Detect(res, cfg))

	cfg.MinAmplitude = 50.0
	assert.Empty(t, Detect(res, cfg))
}

func TestDetectAcceptanceMonotonicInThresholds(t *testing.T) {
	res := residualWith(120, map[float64]float64{
		20: 3.0, 45: -2.0, 70: 5.0, 100: 1.5,
	})
	base := DefaultConfig()
	base.MinAmplitude = 0.2
	baseCount := len(Detect(res, base))

	tighten := []Config{
		{MinAmplitude: base.MinAmplitude * 4, MinWidth: base.MinWidth, MinProbability: base.MinProbability},
		{MinAmplitude: base.MinAmplitude, MinWidth: base.MinWidth * 3, MinProbability: base.MinProbability},
		{MinAmplitude: base.MinAmplitude, MinWidth: base.MinWidth, MinProbability: 0.95},
	}
	for _, cfg := range tighten {
		assert.LessOrEqual(t, len(Detect(res, cfg)), baseCount,
			"raising a threshold must never accept more events")
	}
}

func TestDetectEmptyInput(t *testing.T) {
	assert.Empty(t, Detect(denoise.Result{}, DefaultConfig()))
}

func TestSummarize(t *testing.T) {
	events := []Event{
		{Probability: 0.8},
		{Probability: 0.6},
	}
	// One hour of samples.
	times := []float64{0, 3600}

	st := Summarize(events, times)
	assert.Equal(t, 2, st.EventCount)
	assert.InDelta(t, 2.0, st.EventsPerHour, 1e-9)
	assert.InDelta(t, 0.7, st.MeanProbability, 1e-12)
}

func TestSummarizeNoEvents(t *testing.T) {
	st := Summarize(nil, []float64{0, 1800})
	assert.Equal(t, 0, st.EventCount)
	assert.Equal(t, 0.0, st.EventsPerHour)
	assert.Equal(t, 0.0, st.MeanProbability, "mean probability is 0 when nothing was accepted")
}

func TestSummarizeShortSeriesClampsDuration(t *testing.T) {
	// A one-second series must not produce absurd per-hour rates from a
	// near-zero duration: the divisor is clamped to one second.
	st := Summarize([]Event{{Probability: 1}}, []float64{0, 0.001})
	assert.LessOrEqual(t, st.EventsPerHour, 3600.0)
}

func TestGaussianTemplateShape(t *testing.T) {
	tmpl := gaussianTemplate(21)
	require.Len(t, tmpl, 21)
	assert.InDelta(t, 1.0, tmpl[10], 1e-12, "peak at center")
	assert.Equal(t, tmpl[0], tmpl[20], "symmetric tails")
	assert.Less(t, tmpl[0], 0.01)
}

func TestTemplateScorePerfectMatch(t *testing.T) {
	tmpl := gaussianTemplate(31)
	assert.InDelta(t, 1.0, templateScore(tmpl, tmpl, +1), 1e-9)
	neg := make([]float64, len(tmpl))
	for i, v := range tmpl {
		neg[i] = -v
	}
	assert.InDelta(t, 1.0, templateScore(neg, tmpl, -1), 1e-9)
}
