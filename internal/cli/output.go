package cli

import (
	"fmt"
	"io"

	"github.com/alnah/go-voicedata/internal/manifest"
	"github.com/alnah/go-voicedata/internal/transcribe"
)

// maxListedMissing caps how many missing audio paths check prints.
const maxListedMissing = 10

// countFailed returns how many results carry an error.
func countFailed(results []transcribe.Result) int {
	n := 0
	for _, r := range results {
		if r.Failed() {
			n++
		}
	}
	return n
}

// writeReport prints a dataset report to w.
func writeReport(w io.Writer, csvPath string, report manifest.Report) {
	_, _ = fmt.Fprintf(w, "%s: %d rows, %d empty transcripts\n", csvPath, report.Rows, report.EmptyText)
	if len(report.Missing) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "Missing audio (%d):\n", len(report.Missing))
	for i, p := range report.Missing {
		if i == maxListedMissing {
			_, _ = fmt.Fprintf(w, "  ... and %d more\n", len(report.Missing)-maxListedMissing)
			break
		}
		_, _ = fmt.Fprintf(w, "  %s\n", p)
	}
}
