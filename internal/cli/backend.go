package cli

import (
	"errors"
	"fmt"

	"github.com/alnah/go-voicedata/internal/config"
)

// Backend represents a validated transcription backend.
// Zero value is invalid and must not be used.
// Use ParseBackend to create from user input, or the pre-parsed values.
type Backend struct {
	name string
}

// Compile-time interface compliance check.
var _ fmt.Stringer = Backend{}

// ErrInvalidBackend indicates an unknown backend name was specified.
var ErrInvalidBackend = errors.New("invalid backend")

// Pre-parsed backends.
var (
	OpenAIBackend     = Backend{name: config.BackendOpenAI}
	WhisperCPPBackend = Backend{name: config.BackendWhisperCPP}
)

// ParseBackend validates and parses a backend name.
// Empty string is an error; callers apply config.DefaultBackend beforehand.
func ParseBackend(s string) (Backend, error) {
	switch s {
	case config.BackendOpenAI:
		return OpenAIBackend, nil
	case config.BackendWhisperCPP:
		return WhisperCPPBackend, nil
	case "":
		return Backend{}, fmt.Errorf("backend cannot be empty: %w", ErrInvalidBackend)
	default:
		return Backend{}, fmt.Errorf("unknown backend %q (use '%s' or '%s'): %w",
			s, config.BackendOpenAI, config.BackendWhisperCPP, ErrInvalidBackend)
	}
}

// String returns the backend name.
func (b Backend) String() string {
	return b.name
}

// IsZero reports whether b is the unset zero value.
func (b Backend) IsZero() bool {
	return b.name == ""
}

// IsWhisperCPP reports whether b runs the local whisper.cpp CLI.
func (b Backend) IsWhisperCPP() bool {
	return b.name == config.BackendWhisperCPP
}
