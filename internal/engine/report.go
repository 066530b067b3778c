package engine

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/photonworks/lampnoise/internal/catalog"
)

// ReportFilename is the fixed name of the per-run results table.
const ReportFilename = "noise_analysis_results.csv"

// WriteReport exports the noise statistics table into the given directory,
// one row per channel with its mean and max noise.
func WriteReport(dir string, result *Result) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no output directory specified")
	}
	path := filepath.Join(dir, ReportFilename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Channel", "Mean", "Max"}); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, c := range catalog.Channels {
		st := result.Channels[c].Noise
		row := []string{
			st.Channel,
			strconv.FormatFloat(st.Mean, 'f', 3, 64),
			strconv.FormatFloat(st.Max, 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("failed to write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}

	return path, nil
}
