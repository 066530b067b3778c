// Package catalog discovers lamp-instrument data files and orders them
// chronologically by the timestamp embedded in each filename, so that
// downstream analysis can stitch them into one continuous time axis.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// Instrument files are named like 2024-03-18_09-15-42_DataCollection.txt.
// The looser second pattern catches variants that swap '_' and '-'.
var (
	timestampPrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2})`)
	timestampLoose  = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}[_-]\d{2}[_-]\d{2}[_-]\d{2})`)
)

// CatalogError is fatal: without a parsable seed timestamp the chronological
// stitching order is undefined and the whole analysis run must abort.
type CatalogError struct {
	Path   string
	Reason string
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("catalog: %s: %s", e.Path, e.Reason)
}

// ExtractTimestamp pulls the sortable timestamp out of a data filename.
// The second return value reports whether a real timestamp pattern matched;
// when it did not, the whole basename is returned so sorting stays total.
func ExtractTimestamp(filename string) (string, bool) {
	base := filepath.Base(filename)
	if m := timestampPrefix.FindStringSubmatch(base); m != nil {
		return m[1], true
	}
	if m := timestampLoose.FindStringSubmatch(base); m != nil {
		return m[1], true
	}
	return base, false
}

// Discover enumerates data files in the seed file's directory and returns
// them in stitching order: the seed first, then every file whose embedded
// timestamp is strictly after the seed's, ascending. Files recorded before
// the seed are excluded on purpose; the operator picks the run start.
func Discover(seedPath string) ([]*DataFile, error) {
	seedTS, ok := ExtractTimestamp(seedPath)
	if !ok {
		return nil, &CatalogError{Path: seedPath, Reason: "filename has no parsable timestamp"}
	}
	if _, err := os.Stat(seedPath); err != nil {
		return nil, &CatalogError{Path: seedPath, Reason: err.Error()}
	}

	dir := filepath.Dir(seedPath)

	// Prefer the instrument's naming convention; fall back to any .txt so
	// renamed exports still participate.
	candidates, err := filepath.Glob(filepath.Join(dir, "*_*_DataCollection.txt"))
	if err != nil {
		return nil, &CatalogError{Path: dir, Reason: err.Error()}
	}
	if len(candidates) == 0 {
		candidates, err = filepath.Glob(filepath.Join(dir, "*.txt"))
		if err != nil {
			return nil, &CatalogError{Path: dir, Reason: err.Error()}
		}
	}

	type entry struct {
		path string
		ts   string
	}
	entries := make([]entry, 0, len(candidates))
	for _, p := range candidates {
		ts, _ := ExtractTimestamp(p)
		entries = append(entries, entry{path: p, ts: ts})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ts != entries[j].ts {
			return entries[i].ts < entries[j].ts
		}
		return filepath.Base(entries[i].path) < filepath.Base(entries[j].path)
	})

	files := []*DataFile{{Path: seedPath, Timestamp: seedTS, Index: 0}}
	seedAbs, _ := filepath.Abs(seedPath)
	for _, e := range entries {
		abs, _ := filepath.Abs(e.path)
		if abs == seedAbs {
			continue
		}
		if e.ts > seedTS {
			files = append(files, &DataFile{Path: e.path, Timestamp: e.ts, Index: len(files)})
		}
	}

	return files, nil
}
