package audio

import "io"

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// FileSystem exports fileSystem interface for testing.
type FileSystem = fileSystem

// WriteHeaderWithTag writes a WAV header with an arbitrary format tag.
// Used to build non-PCM fixtures.
func WriteHeaderWithTag(w io.Writer, tag uint16, f Format, dataSize int64) error {
	return writeHeader(w, tag, f, dataSize)
}

// WAVHeaderSize exports wavHeaderSize for testing.
const WAVHeaderSize = wavHeaderSize
