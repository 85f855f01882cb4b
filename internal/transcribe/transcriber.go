package transcribe

import (
	"context"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/lang"
)

// Options configures transcription behavior.
type Options struct {
	// Language specifies the spoken language.
	// Zero value means auto-detect: no hint is sent to the backend.
	Language lang.Language
}

// Transcriber transcribes one audio segment to text.
// Implementations: OpenAITranscriber (hosted), WhisperCPPTranscriber (local subprocess).
type Transcriber interface {
	// Transcribe converts the audio file at audioPath to raw text.
	Transcribe(ctx context.Context, audioPath string, opts Options) (string, error)
}

// Result is the outcome of one segment's transcription.
// Err is nil on success; otherwise Text is empty and Err wraps ErrTranscriptionFailed.
type Result struct {
	Segment audio.Segment
	Text    string
	Err     error
}

// Failed reports whether the segment's transcription failed.
func (r Result) Failed() bool {
	return r.Err != nil
}
