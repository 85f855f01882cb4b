package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Report summarizes a dataset directory.
type Report struct {
	Rows      int      // Manifest rows read.
	EmptyText int      // Rows whose transcript is empty (failed or silent segments).
	Missing   []string // Audio paths listed but not found.
}

// Verify checks that dataDir holds the manifest csvName and an audio directory,
// and that every manifest row points at an existing audio file.
// csvName may be absolute; a relative name is taken from dataDir.
// The report is returned even when audio is missing.
func Verify(dataDir, csvName string) (Report, error) {
	csvPath := csvName
	if !filepath.IsAbs(csvPath) {
		csvPath = filepath.Join(dataDir, csvName)
	}
	if _, err := os.Stat(csvPath); err != nil {
		return Report{}, fmt.Errorf("%w: missing %s", ErrInvalidDataset, csvPath)
	}
	if info, err := os.Stat(filepath.Join(dataDir, AudioDir)); err != nil || !info.IsDir() {
		return Report{}, fmt.Errorf("%w: missing %s directory in %s", ErrInvalidDataset, AudioDir, dataDir)
	}

	records, err := Read(csvPath, dataDir)
	if err != nil {
		return Report{}, err
	}

	report := Report{Rows: len(records)}
	for _, r := range records {
		if r.Text == "" {
			report.EmptyText++
		}
		if _, err := os.Stat(filepath.Join(dataDir, filepath.FromSlash(r.AudioPath))); errors.Is(err, os.ErrNotExist) {
			report.Missing = append(report.Missing, r.AudioPath)
		}
	}

	if len(report.Missing) > 0 {
		return report, fmt.Errorf("%w: %d of %d rows (first: %s)",
			ErrMissingAudio, len(report.Missing), report.Rows, report.Missing[0])
	}
	return report, nil
}
