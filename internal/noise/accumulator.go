package noise

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// FileSpan records where one consumed file sits on the global stitched
// time axis, for interval padding and reporting.
type FileSpan struct {
	Name  string
	Start float64
	End   float64
}

// AccumulatorState is the full result of quota-driven ingestion. It is an
// explicit value, not shared module state, so runs are deterministic and
// restartable: the same file set and seed always produce the same state.
type AccumulatorState struct {
	Series map[catalog.Channel][]NoiseSample

	// Stitched raw series for the complete-dataset view and the
	// denoising pipeline. Times are on the global axis.
	RawTime   []float64
	RawSeries map[catalog.Channel][]float64

	// Files maps catalog file index to the file's global-axis span.
	// Skipped files leave no entry.
	Files        map[int]FileSpan
	SkippedFiles []string
	TimeOffset   float64
	Quota        int
}

// UnderQuota reports whether ingestion exhausted the file set before either
// channel reached its quota. Consumers must tolerate short series; the
// engine surfaces this so a short run never looks like a silently empty
// success.
func (s *AccumulatorState) UnderQuota() bool {
	for _, c := range catalog.Channels {
		if len(s.Series[c]) < s.Quota {
			return true
		}
	}
	return false
}

// Stats computes the channel's summary mean and max over the collected
// noise series. Zero-valued stats are returned for an empty series.
func (s *AccumulatorState) Stats(c catalog.Channel) SeriesStats {
	series := s.Series[c]
	st := SeriesStats{Channel: c.String(), Count: len(series)}
	if len(series) == 0 {
		return st
	}
	values := make([]float64, len(series))
	for i, ns := range series {
		values[i] = ns.Value
	}
	st.Mean = stat.Mean(values, nil)
	st.Max = floats.Max(values)
	return st
}

// FileSpanFor returns the global-axis span of the file a noise sample came
// from, for clamping interval padding.
func (s *AccumulatorState) FileSpanFor(fileIndex int) (FileSpan, bool) {
	span, ok := s.Files[fileIndex]
	return span, ok
}

// Accumulate drives chronological ingestion: for each file in catalog
// order it extracts windows per channel, computes the hull-noise value for
// each, and appends to the per-channel series until both channels reach
// the quota or the file set is exhausted. Running out of files is not an
// error; the caller checks UnderQuota. Unreadable or corrupt files are
// skipped with a warning and stitching continues.
func Accumulate(files []*catalog.DataFile, cfg Config) *AccumulatorState {
	state := &AccumulatorState{
		Series:    map[catalog.Channel][]NoiseSample{},
		RawSeries: map[catalog.Channel][]float64{},
		Files:     map[int]FileSpan{},
		Quota:     cfg.Quota,
	}

	for _, file := range files {
		if state.quotaMet() {
			fmt.Printf("Target of %d noise samples reached for both channels, stopping before file %d\n",
				cfg.Quota, file.Index+1)
			break
		}

		if err := file.Load(); err != nil {
			fmt.Printf("  ⚠️  Skipping unreadable file: %v\n", err)
			state.SkippedFiles = append(state.SkippedFiles, file.Path)
			continue
		}

		state.consumeFile(file, cfg)
		file.Release()
	}

	fmt.Printf("Data collection complete: Main %d, Reference %d noise samples (%d files, %d skipped)\n",
		len(state.Series[catalog.Main]), len(state.Series[catalog.Reference]),
		len(state.Files), len(state.SkippedFiles))

	return state
}

func (s *AccumulatorState) quotaMet() bool {
	for _, c := range catalog.Channels {
		if len(s.Series[c]) < s.Quota {
			return false
		}
	}
	return true
}

// consumeFile stitches one loaded file onto the global axis and harvests
// its windows. The per-channel quota gate sits in front of the hull
// computation, so windows past the quota are never computed.
func (s *AccumulatorState) consumeFile(file *catalog.DataFile, cfg Config) {
	offset := s.TimeOffset

	mainSamples := file.Samples(catalog.Main)
	fileStart := mainSamples[0].Time
	fileEnd := mainSamples[len(mainSamples)-1].Time

	fmt.Printf("Processing file %d: %s\n", file.Index+1, file.Path)

	for _, c := range catalog.Channels {
		samples := file.Samples(c)
		raw := s.RawSeries[c]
		for _, smp := range samples {
			raw = append(raw, smp.Value)
		}
		s.RawSeries[c] = raw

		collected := 0
		for _, w := range ExtractWindows(file, c, cfg.WindowSeconds) {
			if len(s.Series[c]) >= cfg.Quota {
				break
			}
			s.Series[c] = append(s.Series[c], NoiseSample{
				Channel:     c,
				FileIndex:   file.Index,
				WindowStart: w.StartTime + offset,
				WindowEnd:   w.EndTime + offset,
				Value:       HullNoise(w.Samples),
			})
			collected++
		}
		fmt.Printf("  %s: %d windows, %d total\n", c, collected, len(s.Series[c]))
	}

	for _, smp := range mainSamples {
		s.RawTime = append(s.RawTime, smp.Time+offset)
	}

	s.Files[file.Index] = FileSpan{
		Name:  file.Path,
		Start: fileStart + offset,
		End:   fileEnd + offset,
	}
	s.TimeOffset = offset + fileEnd
}
