package noise

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// writeRunFile writes one instrument export with n samples at 1 Hz. A sine
// wobble keeps the hull noise nonzero without changing window counts.
func writeRunFile(t *testing.T, dir, name string, n int) string {
	t.Helper()
	content := "Time\tA\tMain\tB\tReference\n(s)\t-\t(cts)\t-\t(cts)\n"
	for i := 0; i < n; i++ {
		tv := float64(i)
		main := 1000.0 + 5.0*math.Sin(tv/3.0)
		ref := 500.0 + 2.0*math.Sin(tv/5.0)
		content += fmt.Sprintf("%.2f\tx\t%.2f\tx\t%.2f\n", tv, main, ref)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func discoverRun(t *testing.T, seed string) []*catalog.DataFile {
	t.Helper()
	files, err := catalog.Discover(seed)
	require.NoError(t, err)
	return files
}

func TestAccumulateStopsAtQuota(t *testing.T) {
	dir := t.TempDir()
	// Three files, 1500 samples each: 50 thirty-second windows per
	// channel per file. The quota of 120 is reached 20 windows into
	// the third file.
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 1500)
	writeRunFile(t, dir, "2024-01-01_11-00-00_DataCollection.txt", 1500)
	writeRunFile(t, dir, "2024-01-01_12-00-00_DataCollection.txt", 1500)

	cfg := DefaultConfig()
	state := Accumulate(discoverRun(t, seed), cfg)

	for _, c := range catalog.Channels {
		series := state.Series[c]
		require.Len(t, series, 120, "%s series must cap at quota", c)

		// The last collected window comes from early in the third
		// file; windows past the quota are never computed.
		last := series[len(series)-1]
		assert.Equal(t, 2, last.FileIndex)
		span, ok := state.FileSpanFor(2)
		require.True(t, ok)
		assert.Less(t, last.WindowEnd, span.Start+640.0,
			"collection must stop 20 windows into the third file")
	}
	assert.False(t, state.UnderQuota())
}

func TestAccumulateSeriesNeverExceedsQuota(t *testing.T) {
	dir := t.TempDir()
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 1500)

	cfg := DefaultConfig()
	cfg.Quota = 7
	state := Accumulate(discoverRun(t, seed), cfg)

	for _, c := range catalog.Channels {
		assert.LessOrEqual(t, len(state.Series[c]), cfg.Quota)
	}
}

func TestAccumulateStitchedTimesMonotonic(t *testing.T) {
	dir := t.TempDir()
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 300)
	writeRunFile(t, dir, "2024-01-01_11-00-00_DataCollection.txt", 300)

	state := Accumulate(discoverRun(t, seed), DefaultConfig())

	for i := 1; i < len(state.RawTime); i++ {
		require.GreaterOrEqual(t, state.RawTime[i], state.RawTime[i-1],
			"stitched raw time axis must be non-decreasing")
	}
	for _, c := range catalog.Channels {
		series := state.Series[c]
		for i := 1; i < len(series); i++ {
			require.GreaterOrEqual(t, series[i].WindowStart, series[i-1].WindowStart,
				"noise series must be time-ascending across files")
		}
	}
}

func TestAccumulateExhaustionIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	// One short file: 10 windows, far below the quota.
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 300)

	state := Accumulate(discoverRun(t, seed), DefaultConfig())

	assert.True(t, state.UnderQuota())
	for _, c := range catalog.Channels {
		assert.Len(t, state.Series[c], 10)
	}
}

func TestAccumulateSkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 300)
	bad := filepath.Join(dir, "2024-01-01_11-00-00_DataCollection.txt")
	require.NoError(t, os.WriteFile(bad, []byte("h1\nh2\ngarbage row\n"), 0o644))
	writeRunFile(t, dir, "2024-01-01_12-00-00_DataCollection.txt", 300)

	state := Accumulate(discoverRun(t, seed), DefaultConfig())

	require.Len(t, state.SkippedFiles, 1)
	assert.Equal(t, bad, state.SkippedFiles[0])
	// Stitching continued into the third file.
	for _, c := range catalog.Channels {
		assert.Len(t, state.Series[c], 20)
	}
	_, ok := state.FileSpanFor(1)
	assert.False(t, ok, "skipped file leaves no span entry")
}

func TestAccumulateDeterministic(t *testing.T) {
	dir := t.TempDir()
	seed := writeRunFile(t, dir, "2024-01-01_10-00-00_DataCollection.txt", 600)
	writeRunFile(t, dir, "2024-01-01_11-00-00_DataCollection.txt", 600)

	a := Accumulate(discoverRun(t, seed), DefaultConfig())
	b := Accumulate(discoverRun(t, seed), DefaultConfig())

	require.Equal(t, a.Series, b.Series)
	require.Equal(t, a.RawTime, b.RawTime)
}

func TestStats(t *testing.T) {
	state := &AccumulatorState{
		Series: map[catalog.Channel][]NoiseSample{
			catalog.Main: {
				{Value: 2.0}, {Value: 4.0}, {Value: 9.0},
			},
		},
		Quota: 120,
	}

	st := state.Stats(catalog.Main)
	assert.Equal(t, 3, st.Count)
	assert.InDelta(t, 5.0, st.Mean, 1e-12)
	assert.Equal(t, 9.0, st.Max)

	empty := state.Stats(catalog.Reference)
	assert.Equal(t, 0, empty.Count)
	assert.Equal(t, 0.0, empty.Mean)
}
