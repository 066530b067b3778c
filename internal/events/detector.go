// Package events scans a denoised residual for localized bell-curve
// excursions (short spikes with a Gaussian shape) and aggregates
// per-channel spike statistics.
package events

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/photonworks/lampnoise/internal/catalog"
	"github.com/photonworks/lampnoise/internal/denoise"
)

// Event is one accepted bell-curve excursion.
type Event struct {
	Channel    catalog.Channel `json:"channel"`
	Start      float64         `json:"start_s"`
	End        float64         `json:"end_s"`
	CenterTime float64         `json:"center_s"`
	Amplitude  float64         `json:"amplitude"`
	Width      float64         `json:"width_s"`
	// Orientation is +1 for an upward excursion, -1 for downward.
	Orientation int     `json:"orientation"`
	Probability float64 `json:"probability"`
}

// ChannelStats aggregates a channel's accepted events.
type ChannelStats struct {
	EventCount      int     `json:"event_count"`
	EventsPerHour   float64 `json:"events_per_hour"`
	MeanProbability float64 `json:"mean_probability"`
}

// Config holds the three independent acceptance thresholds. An event
// failing any one of them is dropped, so raising any threshold can only
// shrink the accepted set.
type Config struct {
	MinAmplitude   float64 `json:"min_amplitude"`
	MinWidth       float64 `json:"min_width_s"`
	MinProbability float64 `json:"min_probability"`
}

// DefaultConfig returns the standard acceptance thresholds.
func DefaultConfig() Config {
	return Config{
		MinAmplitude:   0.5,
		MinWidth:       1.0,
		MinProbability: 0.5,
	}
}

// candidateWidths are the template durations tried at each position, in
// seconds; the configured minimum width joins the sweep when it is not
// already present.
var candidateWidths = []float64{0.5, 1.0, 2.0, 4.0}

// Detect scans the decomposition's residual for bell-curve events. Each
// candidate width sweeps the series with a Gaussian template; a segment is
// scored by normalized cross-correlation against the template in both
// orientations, and the better score maps through a logistic to a
// probability in [0,1]. Accepted spans are masked so overlapping
// candidates at other widths are suppressed.
func Detect(res denoise.Result, cfg Config) []Event {
	signal := res.Residual
	times := res.Time
	n := len(signal)
	if n == 0 || len(times) != n {
		return nil
	}

	duration := 0.0
	dtMean := 1.0
	if n > 1 {
		duration = times[n-1] - times[0]
		dtMean = duration / float64(n-1)
	}

	minAmplitude := math.Max(cfg.MinAmplitude, 0)
	minWidth := math.Max(cfg.MinWidth, 0.01)
	minProbability := math.Min(math.Max(cfg.MinProbability, 0), 1)

	widths := sweepWidths(minWidth, duration)
	mask := make([]bool, n)
	var events []Event

	for _, width := range widths {
		winSamples := int(math.Round(width / (dtMean + 1e-9)))
		if winSamples < 3 {
			winSamples = 3
		}
		if winSamples > n {
			winSamples = n
		}
		step := max(1, winSamples/3)
		tmpl := gaussianTemplate(winSamples)

		for start := 0; start+winSamples <= n; start += step {
			end := start + winSamples
			if anyMasked(mask[start:end]) {
				continue
			}
			segment := signal[start:end]

			scorePos := templateScore(segment, tmpl, +1)
			scoreNeg := templateScore(segment, tmpl, -1)
			orientation := 1
			score := scorePos
			if scoreNeg > scorePos {
				orientation = -1
				score = scoreNeg
			}

			prob := logistic((score - 0.65) * 6.0)
			if prob <= 0.5 || prob < minProbability {
				continue
			}

			amplitude := eventAmplitude(segment, orientation)
			if amplitude < minAmplitude {
				continue
			}

			actualWidth := width
			if end-start > 1 {
				actualWidth = times[end-1] - times[start]
			}
			if actualWidth < minWidth {
				continue
			}

			events = append(events, Event{
				Channel:     res.Channel,
				Start:       times[start],
				End:         times[end-1],
				CenterTime:  (times[start] + times[end-1]) / 2,
				Amplitude:   amplitude,
				Width:       actualWidth,
				Orientation: orientation,
				Probability: prob,
			})
			for i := start; i < end; i++ {
				mask[i] = true
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})
	return events
}

// Summarize aggregates accepted events over the series duration.
func Summarize(events []Event, times []float64) ChannelStats {
	st := ChannelStats{EventCount: len(events)}

	duration := 0.0
	if len(times) > 1 {
		duration = times[len(times)-1] - times[0]
	}
	durationHours := math.Max(duration/3600.0, 1.0/3600.0)
	st.EventsPerHour = float64(len(events)) / durationHours

	if len(events) > 0 {
		probs := make([]float64, len(events))
		for i, ev := range events {
			probs[i] = ev.Probability
		}
		st.MeanProbability = stat.Mean(probs, nil)
	}
	return st
}

func sweepWidths(minWidth, duration float64) []float64 {
	widths := append([]float64{}, candidateWidths...)
	present := false
	for _, w := range widths {
		if w == minWidth {
			present = true
			break
		}
	}
	if !present {
		widths = append(widths, minWidth)
	}
	sort.Float64s(widths)

	maxAllowed := math.Max(1.0, duration)
	out := widths[:0]
	for _, w := range widths {
		if w <= maxAllowed {
			out = append(out, w)
		}
	}
	return out
}

// gaussianTemplate samples exp(-0.5 (x/0.3)^2) on x in [-1,1].
func gaussianTemplate(length int) []float64 {
	if length <= 0 {
		return []float64{0}
	}
	tmpl := make([]float64, length)
	for i := range tmpl {
		x := -1.0
		if length > 1 {
			x = -1.0 + 2.0*float64(i)/float64(length-1)
		}
		tmpl[i] = math.Exp(-0.5 * math.Pow(x/0.3, 2))
	}
	return tmpl
}

// templateScore is the normalized cross-correlation between the
// mean-removed segment (optionally negated) and the mean-removed template.
func templateScore(segment, tmpl []float64, sign float64) float64 {
	if len(segment) == 0 || len(tmpl) != len(segment) {
		return 0
	}
	segMean := stat.Mean(segment, nil)
	tmplMean := stat.Mean(tmpl, nil)

	var dot, segNorm, tmplNorm float64
	for i := range segment {
		s := sign*segment[i] - sign*segMean
		tv := tmpl[i] - tmplMean
		dot += s * tv
		segNorm += s * s
		tmplNorm += tv * tv
	}
	denom := math.Sqrt(segNorm) * math.Sqrt(tmplNorm)
	if denom <= 0 {
		return 0
	}
	return dot / denom
}

// eventAmplitude measures the peak deviation from the segment's median,
// oriented by the excursion direction.
func eventAmplitude(segment []float64, orientation int) float64 {
	med := median(segment)
	var amp float64
	if orientation == 1 {
		amp = floats.Max(segment) - med
	} else {
		amp = med - floats.Min(segment)
	}
	return math.Max(amp, 0)
}

func median(values []float64) float64 {
	buf := make([]float64, len(values))
	copy(buf, values)
	sort.Float64s(buf)
	n := len(buf)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return buf[n/2]
	}
	return (buf[n/2-1] + buf[n/2]) / 2
}

func anyMasked(mask []bool) bool {
	for _, m := range mask {
		if m {
			return true
		}
	}
	return false
}

func logistic(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
