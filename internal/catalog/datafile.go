package catalog

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Channel tags which intensity column a sample came from.
type Channel int

const (
	Main Channel = iota
	Reference
)

func (c Channel) String() string {
	switch c {
	case Main:
		return "Main"
	case Reference:
		return "Reference"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// Channels lists both instrument channels in reporting order.
var Channels = []Channel{Main, Reference}

// Sample is one (time, intensity) measurement within a file. Times are
// seconds relative to the file's own start.
type Sample struct {
	Time  float64
	Value float64
}

// DataFile is one instrument export. Samples are nil until Load is called
// and can be released with Release once windows have been extracted, so a
// long stitched run never holds more than one file's data.
type DataFile struct {
	Path      string
	Timestamp string
	Index     int

	samples map[Channel][]Sample
}

// Column layout of the tab-delimited export. Two header rows precede the
// data; the time column and the two intensity columns sit at fixed offsets.
const (
	headerRows    = 2
	timeColumn    = 0
	mainColumn    = 2
	refColumn     = 4
	minDataColumn = 5
)

// Load parses the file's sample rows. Parse failures are recoverable: the
// caller is expected to skip the file with a warning and keep stitching.
func (f *DataFile) Load() error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	main := []Sample{}
	ref := []Sample{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if line <= headerRows {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < minDataColumn {
			return fmt.Errorf("%s line %d: expected at least %d columns, got %d",
				f.Path, line, minDataColumn, len(fields))
		}

		t, err := strconv.ParseFloat(strings.TrimSpace(fields[timeColumn]), 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad time value %q: %w", f.Path, line, fields[timeColumn], err)
		}
		mv, err := strconv.ParseFloat(strings.TrimSpace(fields[mainColumn]), 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad main intensity %q: %w", f.Path, line, fields[mainColumn], err)
		}
		rv, err := strconv.ParseFloat(strings.TrimSpace(fields[refColumn]), 64)
		if err != nil {
			return fmt.Errorf("%s line %d: bad reference intensity %q: %w", f.Path, line, fields[refColumn], err)
		}

		main = append(main, Sample{Time: t, Value: mv})
		ref = append(ref, Sample{Time: t, Value: rv})
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Path, err)
	}
	if len(main) == 0 {
		return fmt.Errorf("%s: no data rows after %d header rows", f.Path, headerRows)
	}

	f.samples = map[Channel][]Sample{
		Main:      main,
		Reference: ref,
	}
	return nil
}

// NewLoaded builds an already-loaded DataFile from in-memory samples, for
// callers that source measurements outside the file catalog.
func NewLoaded(path string, index int, main, ref []Sample) *DataFile {
	return &DataFile{
		Path:  path,
		Index: index,
		samples: map[Channel][]Sample{
			Main:      main,
			Reference: ref,
		},
	}
}

// Loaded reports whether sample data is currently in memory.
func (f *DataFile) Loaded() bool {
	return f.samples != nil
}

// Samples returns the channel's measurements in file order. Load must have
// succeeded first.
func (f *DataFile) Samples(c Channel) []Sample {
	return f.samples[c]
}

// Duration is the time span covered by the file's samples, in seconds.
func (f *DataFile) Duration() float64 {
	s := f.samples[Main]
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Time - s[0].Time
}

// Release drops the parsed samples so the accumulator can bound memory
// while stitching across many files.
func (f *DataFile) Release() {
	f.samples = nil
}
