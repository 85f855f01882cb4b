package whisper

import "errors"

// ErrNotFound indicates the whisper.cpp binary could not be located.
var ErrNotFound = errors.New("whisper.cpp binary not found")

// ErrModelNotFound indicates the ggml model file is missing or empty.
var ErrModelNotFound = errors.New("whisper model not found")
