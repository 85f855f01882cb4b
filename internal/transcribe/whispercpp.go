package transcribe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alnah/go-voicedata/internal/whisper"
)

// commandRunner runs a process and captures its output.
// *whisper.Executor implements this.
type commandRunner interface {
	Run(ctx context.Context, binPath string, args []string) (whisper.Result, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber   = (*WhisperCPPTranscriber)(nil)
	_ commandRunner = (*whisper.Executor)(nil)
)

// WhisperCPPTranscriber transcribes segments by running the whisper.cpp CLI.
// The transcript is read from the .txt sidecar the CLI writes: if the sidecar
// exists its content is used even when the process exits non-zero.
type WhisperCPPTranscriber struct {
	binPath   string
	modelPath string
	runner    commandRunner
	logger    *slog.Logger
	tempDir   string // parent for per-call sidecar directories; "" = os.TempDir()
}

// WhisperCPPOption configures a WhisperCPPTranscriber.
type WhisperCPPOption func(*WhisperCPPTranscriber)

// WithRunner sets the process runner (for testing).
func WithRunner(r commandRunner) WhisperCPPOption {
	return func(t *WhisperCPPTranscriber) { t.runner = r }
}

// WithWhisperLogger sets the logger used for exit-code warnings.
func WithWhisperLogger(l *slog.Logger) WhisperCPPOption {
	return func(t *WhisperCPPTranscriber) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithTempDir sets where sidecar directories are created.
func WithTempDir(dir string) WhisperCPPOption {
	return func(t *WhisperCPPTranscriber) { t.tempDir = dir }
}

// NewWhisperCPPTranscriber creates a transcriber for the given binary and ggml model.
// Both paths are expected to be validated by whisper.Resolver beforehand.
func NewWhisperCPPTranscriber(binPath, modelPath string, opts ...WhisperCPPOption) *WhisperCPPTranscriber {
	t := &WhisperCPPTranscriber{
		binPath:   binPath,
		modelPath: modelPath,
		runner:    whisper.NewExecutor(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Args returns the argument list for one invocation.
// Auto-detect passes no -l flag, so whisper-cli falls back to its built-in
// default (en) rather than detecting the language.
func (t *WhisperCPPTranscriber) Args(audioPath, outputPrefix string, opts Options) []string {
	args := []string{"-m", t.modelPath, "-f", audioPath}
	if !opts.Language.IsZero() {
		args = append(args, "-l", opts.Language.BaseCode())
	}
	return append(args, "-of", outputPrefix, "-otxt")
}

// Transcribe runs whisper.cpp on audioPath and returns the sidecar content.
// A missing sidecar yields a *CommandError wrapping ErrNoTranscript.
func (t *WhisperCPPTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (string, error) {
	dir, err := os.MkdirTemp(t.tempDir, "voicedata-whisper-")
	if err != nil {
		return "", fmt.Errorf("create sidecar directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	prefix := filepath.Join(dir, name)
	args := t.Args(audioPath, prefix, opts)

	res, runErr := t.runner.Run(ctx, t.binPath, args)
	if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
		return "", runErr
	}

	text, readErr := os.ReadFile(prefix + ".txt") // #nosec G304 -- path built from our temp dir
	if readErr == nil {
		if res.ExitCode != 0 || runErr != nil {
			t.logger.Warn("whisper.cpp reported failure but wrote a transcript, keeping it",
				"file", filepath.Base(audioPath), "exit_code", res.ExitCode)
		}
		return string(text), nil
	}

	return "", &CommandError{
		Command:  whisper.CommandLine(t.binPath, args),
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		Err:      runErr,
	}
}
