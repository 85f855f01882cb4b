package transcribe

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTranscriptionFailed marks a segment whose transcription failed.
// The orchestrator records it per segment and keeps going.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrNoTranscript indicates a backend finished without producing text output.
var ErrNoTranscript = errors.New("no transcript produced")

// CommandError describes a whisper.cpp invocation that left no sidecar file.
// It carries everything needed to reproduce the failure by hand.
type CommandError struct {
	Command  string // Full command line as invoked.
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error // Start failure, if the process never ran.
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: command %s exited with code %d", ErrNoTranscript, e.Command, e.ExitCode)
	if e.Err != nil {
		fmt.Fprintf(&b, " (%v)", e.Err)
	}
	if s := strings.TrimSpace(e.Stdout); s != "" {
		fmt.Fprintf(&b, "\nstdout: %s", s)
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		fmt.Fprintf(&b, "\nstderr: %s", s)
	}
	return b.String()
}

// Unwrap exposes ErrNoTranscript and the start failure to errors.Is.
func (e *CommandError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNoTranscript, e.Err}
	}
	return []error{ErrNoTranscript}
}
