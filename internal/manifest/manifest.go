// Package manifest renders and reads metadata.csv, the pipe-delimited
// index pairing each audio segment with its transcript.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-voicedata/internal/transcribe"
)

const (
	// FileName is the manifest's name inside a dataset directory.
	FileName = "metadata.csv"

	// AudioDir is the segment directory inside a dataset directory.
	AudioDir = "wavs"

	// Delimiter separates the audio path from the transcript.
	Delimiter = "|"

	// DelimiterSubstitute replaces Delimiter inside transcripts.
	DelimiterSubstitute = "/"
)

// filePerm is the permission mode for written manifests.
const filePerm = 0644

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Sanitize makes text safe for a single manifest field: every line break
// (\r\n, \r, \n) becomes one space, the delimiter becomes DelimiterSubstitute,
// and surrounding whitespace is trimmed. Sanitize is idempotent.
func Sanitize(text string) string {
	text = lineBreaks.Replace(text)
	text = strings.ReplaceAll(text, Delimiter, DelimiterSubstitute)
	return strings.TrimSpace(text)
}

// Record is one manifest row.
type Record struct {
	AudioPath string // Slash-separated, relative to the dataset root.
	Text      string
}

// Line renders the record as "audio|text", sanitizing the text.
func (r Record) Line() string {
	return r.AudioPath + Delimiter + Sanitize(r.Text)
}

// FromResults builds one record per result, in order.
// Failed results keep their row with an empty transcript.
func FromResults(results []transcribe.Result, audioDir string) []Record {
	records := make([]Record, len(results))
	for i, r := range results {
		text := ""
		if !r.Failed() {
			text = r.Text
		}
		records[i] = Record{
			AudioPath: path.Join(filepath.ToSlash(audioDir), r.Segment.Name),
			Text:      text,
		}
	}
	return records
}

// Render joins the records' lines with newlines, without a trailing newline.
func Render(records []Record) string {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = r.Line()
	}
	return strings.Join(lines, "\n")
}

// Write replaces the file at path with the rendered records.
// The content goes to a temporary file in the same directory first,
// then is renamed over path, so readers never see a partial manifest.
func Write(path string, records []Record) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("cannot create manifest: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.WriteString(Render(records)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Chmod(filePerm); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}

// Read parses a manifest the way dataset builders consume it.
// Blank lines and lines without a delimiter are skipped; each line splits at
// the first delimiter; both fields are trimmed. Absolute audio paths are made
// relative to dataRoot, and all paths use forward slashes.
// Returns ErrEmptyManifest when no row is found.
func Read(manifestPath, dataRoot string) ([]Record, error) {
	f, err := os.Open(manifestPath) // #nosec G304 -- user-specified dataset directory
	if err != nil {
		return nil, fmt.Errorf("cannot open manifest: %w", err)
	}
	defer func() { _ = f.Close() }()

	root, err := filepath.Abs(dataRoot)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve dataset root: %w", err)
	}

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		audio, text, ok := strings.Cut(line, Delimiter)
		if line == "" || !ok {
			continue
		}
		records = append(records, Record{
			AudioPath: relativeAudioPath(strings.TrimSpace(audio), root),
			Text:      strings.TrimSpace(text),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s (expected lines like 'wavs/0001.wav|transcript')", ErrEmptyManifest, manifestPath)
	}
	return records, nil
}

// relativeAudioPath expresses p relative to root with forward slashes.
// Paths that cannot be made relative fall back to their base name.
func relativeAudioPath(p, root string) string {
	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, filepath.FromSlash(p))
	}
	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		rel = filepath.Base(abs)
	}
	return filepath.ToSlash(rel)
}
