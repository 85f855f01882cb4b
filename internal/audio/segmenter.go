package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/alnah/go-voicedata/internal/format"
)

// Compile-time interface implementation check.
var _ Segmenter = (*TimeSegmenter)(nil)

// Segment is a contiguous slice of a source waveform, written as its own WAV file.
type Segment struct {
	Ordinal    int    // One-based position in the source.
	Name       string // File name, e.g. "0001.wav".
	Path       string // Path of the written file.
	StartFrame int64  // Offset of the first frame in the source.
	Frames     int64  // Frame count.
	Format     Format // Inherited from the source.
}

// StartTime returns the segment's start timestamp in the source audio.
func (s Segment) StartTime() time.Duration {
	return framesToDuration(s.StartFrame, s.Format.FrameRate)
}

// Duration returns the length of this segment.
func (s Segment) Duration() time.Duration {
	return framesToDuration(s.Frames, s.Format.FrameRate)
}

// String returns a human-readable representation for logging.
func (s Segment) String() string {
	return fmt.Sprintf("segment %s: %s-%s",
		s.Name,
		format.Duration(s.StartTime()),
		format.Duration(s.StartTime()+s.Duration()))
}

// Segmenter splits a waveform into standalone segment files.
type Segmenter interface {
	// Segment splits inputPath into files written to outDir.
	// Returns segments in ascending ordinal order.
	Segment(ctx context.Context, inputPath, outDir string) ([]Segment, error)
}

// outputDirPerm is the permission mode for created output directories.
const outputDirPerm = 0750

// segmentNamePattern matches files previously written by a TimeSegmenter.
var segmentNamePattern = regexp.MustCompile(`^(\d{4,})\.wav$`)

// SegmentName returns the file name for a one-based ordinal: 1 -> "0001.wav".
func SegmentName(ordinal int) string {
	return fmt.Sprintf("%04d.wav", ordinal)
}

// TimeSegmenter splits PCM audio into fixed-duration segments without re-encoding.
// Sample bytes are copied verbatim, so identical input always yields identical files.
type TimeSegmenter struct {
	chunkSeconds float64

	// Injectable dependencies (defaults to OS implementations).
	files fileSystem
}

// TimeSegmenterOption configures a TimeSegmenter.
type TimeSegmenterOption func(*TimeSegmenter)

// WithFileSystem sets the filesystem used for output.
func WithFileSystem(fs fileSystem) TimeSegmenterOption {
	return func(ts *TimeSegmenter) {
		ts.files = fs
	}
}

// NewTimeSegmenter creates a TimeSegmenter producing chunkSeconds-long segments.
func NewTimeSegmenter(chunkSeconds float64, opts ...TimeSegmenterOption) (*TimeSegmenter, error) {
	if math.IsNaN(chunkSeconds) || math.IsInf(chunkSeconds, 0) || chunkSeconds <= 0 {
		return nil, fmt.Errorf("%w: %v seconds (must be > 0)", ErrInvalidChunkDuration, chunkSeconds)
	}

	ts := &TimeSegmenter{
		chunkSeconds: chunkSeconds,
		files:        osFileSystem{},
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// ChunkSeconds returns the configured segment duration.
func (ts *TimeSegmenter) ChunkSeconds() float64 {
	return ts.chunkSeconds
}

// FramesPerSegment returns floor(frameRate * chunkSeconds).
func (ts *TimeSegmenter) FramesPerSegment(frameRate int) int64 {
	return int64(math.Floor(float64(frameRate) * ts.chunkSeconds))
}

// Segment splits inputPath into NNNN.wav files in outDir.
// The input is validated before anything is written: compressed input fails with
// ErrUnsupportedEncoding and input without frames fails with ErrEmptyInput.
// Files left over from an earlier, longer run are removed.
func (ts *TimeSegmenter) Segment(ctx context.Context, inputPath, outDir string) ([]Segment, error) {
	src, err := openPCM(inputPath)
	if err != nil {
		return nil, err
	}
	defer func() { _ = src.Close() }()

	perSegment := ts.FramesPerSegment(src.FrameRate)
	if perSegment <= 0 {
		return nil, fmt.Errorf("%w: %v seconds is shorter than one frame at %d Hz",
			ErrInvalidChunkDuration, ts.chunkSeconds, src.FrameRate)
	}
	if src.Frames == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInput, inputPath)
	}

	if err := ts.files.MkdirAll(outDir, outputDirPerm); err != nil {
		return nil, fmt.Errorf("cannot create output directory: %w", err)
	}

	count := int((src.Frames + perSegment - 1) / perSegment)
	segments := make([]Segment, 0, count)
	for i := range count {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := int64(i) * perSegment
		seg := Segment{
			Ordinal:    i + 1,
			Name:       SegmentName(i + 1),
			StartFrame: start,
			Frames:     min(perSegment, src.Frames-start),
			Format:     src.Format,
		}
		seg.Path = filepath.Join(outDir, seg.Name)

		if err := ts.writeSegment(seg, src.data); err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}

	if err := ts.removeStale(outDir, count); err != nil {
		return nil, err
	}

	return segments, nil
}

// writeSegment copies the segment's frames from data into a new WAV file.
// data must be positioned at seg.StartFrame.
func (ts *TimeSegmenter) writeSegment(seg Segment, data io.Reader) (err error) {
	size := seg.Frames * int64(seg.Format.FrameSize())

	w, err := ts.files.Create(seg.Path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", seg.Name, err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("cannot write %s: %w", seg.Name, cerr)
		}
		if err != nil {
			_ = ts.files.Remove(seg.Path)
		}
	}()

	if err := writeHeader(w, wavFormatPCM, seg.Format, size); err != nil {
		return fmt.Errorf("cannot write %s: %w", seg.Name, err)
	}
	if _, err := io.CopyN(w, data, size); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: audio data ends inside %s", ErrInvalidWAV, seg.Name)
		}
		return fmt.Errorf("cannot write %s: %w", seg.Name, err)
	}
	return nil
}

// removeStale deletes NNNN.wav files whose ordinal exceeds count,
// so a rerun with fewer segments leaves no orphans behind.
func (ts *TimeSegmenter) removeStale(outDir string, count int) error {
	entries, err := ts.files.ReadDir(outDir)
	if err != nil {
		return fmt.Errorf("cannot list output directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := segmentNamePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= count {
			continue
		}
		if err := ts.files.Remove(filepath.Join(outDir, e.Name())); err != nil {
			return fmt.Errorf("cannot remove stale segment %s: %w", e.Name(), err)
		}
	}
	return nil
}
