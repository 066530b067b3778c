package noise

import (
	"github.com/photonworks/lampnoise/internal/catalog"
)

// ExtractWindows partitions one file's channel samples into consecutive
// windows of the target duration, measured on the time column rather than
// by sample count so irregular sampling rates still yield ~D-second
// windows. A window is valid iff it has at least 3 samples and its span is
// within [0.5D, 1.5D]; sensor gaps and the trailing remainder produce
// degenerate windows that are dropped silently.
func ExtractWindows(file *catalog.DataFile, channel catalog.Channel, windowSeconds float64) []Window {
	samples := file.Samples(channel)
	if len(samples) == 0 || windowSeconds <= 0 {
		return nil
	}

	t0 := samples[0].Time
	var windows []Window

	start := 0
	bucket := 0
	for i := 1; i <= len(samples); i++ {
		b := -1
		if i < len(samples) {
			b = int((samples[i].Time - t0) / windowSeconds)
		}
		if b == bucket {
			continue
		}

		if w, ok := makeWindow(samples[start:i], channel, file.Index, windowSeconds); ok {
			windows = append(windows, w)
		}
		start = i
		bucket = b
	}

	return windows
}

func makeWindow(samples []catalog.Sample, channel catalog.Channel, fileIndex int, windowSeconds float64) (Window, bool) {
	if len(samples) < 3 {
		return Window{}, false
	}
	span := samples[len(samples)-1].Time - samples[0].Time
	if span < 0.5*windowSeconds || span > 1.5*windowSeconds {
		return Window{}, false
	}
	return Window{
		Channel:   channel,
		FileIndex: fileIndex,
		StartTime: samples[0].Time,
		EndTime:   samples[len(samples)-1].Time,
		Samples:   samples,
	}, true
}
