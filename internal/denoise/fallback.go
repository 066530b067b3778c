package denoise

import (
	"sort"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// fallback is the deterministic safety net: a centered moving-median trend
// estimate. The median kernel tracks the slow lamp-decay trend while
// leaving short spikes in the residual for the event detector. It is total
// for any non-empty series and involves no training step.
func fallback(channel catalog.Channel, times, values []float64, cfg Config) Result {
	processed := movingMedian(values, cfg.SmoothWindow)
	residual := make([]float64, len(values))
	for i := range values {
		residual[i] = values[i] - processed[i]
	}
	return Result{
		Channel:   channel,
		Time:      times,
		Original:  values,
		Processed: processed,
		Residual:  residual,
	}
}

// movingMedian applies a centered median filter of the given window size.
// The window shrinks near the edges so every output index is defined.
func movingMedian(values []float64, window int) []float64 {
	n := len(values)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	if window < 3 {
		copy(out, values)
		return out
	}
	if window%2 == 0 {
		window++
	}
	half := window / 2

	buf := make([]float64, 0, window)
	for i := range values {
		lo := max(0, i-half)
		hi := min(n, i+half+1)
		buf = append(buf[:0], values[lo:hi]...)
		sort.Float64s(buf)
		m := len(buf)
		if m%2 == 1 {
			out[i] = buf[m/2]
		} else {
			out[i] = (buf[m/2-1] + buf[m/2]) / 2
		}
	}
	return out
}
