package audio

import "errors"

// ErrUnsupportedEncoding indicates the input is not uncompressed linear PCM.
// Compressed input cannot be chunked without re-encoding.
var ErrUnsupportedEncoding = errors.New("unsupported audio encoding")

// ErrInvalidChunkDuration indicates a non-positive segment duration, or one too
// short to hold a single frame at the input's frame rate.
var ErrInvalidChunkDuration = errors.New("invalid chunk duration")

// ErrEmptyInput indicates the input waveform holds no frames.
var ErrEmptyInput = errors.New("input audio is empty")

// ErrInvalidWAV indicates the input is not a readable RIFF/WAVE container,
// or its header declares more audio data than the file holds.
var ErrInvalidWAV = errors.New("invalid WAV file")

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")
