package cli

import (
	"io"
	"log/slog"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/transcribe"
	"github.com/alnah/go-voicedata/internal/whisper"
)

// Environment variables read directly by the CLI.
const (
	EnvOpenAIAPIKey  = "OPENAI_API_KEY"
	EnvOpenAIBaseURL = "OPENAI_BASE_URL"
	EnvNoColor       = "NO_COLOR"
)

// Env holds injectable dependencies for CLI commands.
// This is the central injection point for testing CLI commands in isolation.
//
// All fields have sensible defaults via DefaultEnv(). Tests can override
// specific fields using the With* options or by creating a custom Env.
//
// Env must not be nil when passed to command functions. Use DefaultEnv()
// or NewEnv() to create a valid instance.
type Env struct {
	// I/O and environment
	Stderr io.Writer
	Stdout io.Writer
	Getenv func(string) string
	Now    func() time.Time

	// Factories for domain objects
	ConfigLoader       ConfigLoader
	WhisperResolver    WhisperResolver
	SegmenterFactory   SegmenterFactory
	TranscriberFactory TranscriberFactory
}

// ConfigLoader loads the layered configuration.
type ConfigLoader interface {
	Load() (config.Config, error)
}

// WhisperResolver locates the whisper.cpp binary and validates model files.
type WhisperResolver interface {
	Resolve(explicit string) (string, error)
	CheckModel(path string) error
}

// SegmenterFactory creates segmenters for a chunk duration.
type SegmenterFactory interface {
	NewSegmenter(chunkSeconds float64) (audio.Segmenter, error)
}

// OpenAISettings configures the hosted backend.
type OpenAISettings struct {
	APIKey  string
	BaseURL string // Empty means the official endpoint.
	Model   string
	Logger  *slog.Logger
}

// WhisperCPPSettings configures the local whisper.cpp backend.
type WhisperCPPSettings struct {
	BinPath   string
	ModelPath string
	Logger    *slog.Logger
}

// TranscriberFactory creates the backend transcribers.
type TranscriberFactory interface {
	NewOpenAITranscriber(s OpenAISettings) transcribe.Transcriber
	NewWhisperCPPTranscriber(s WhisperCPPSettings) transcribe.Transcriber
}

// EnvOption configures an Env.
type EnvOption func(*Env)

// WithStderr sets the stderr writer.
func WithStderr(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stderr = w
	}
}

// WithStdout sets the stdout writer.
func WithStdout(w io.Writer) EnvOption {
	return func(e *Env) {
		e.Stdout = w
	}
}

// WithGetenv sets the environment variable getter.
func WithGetenv(fn func(string) string) EnvOption {
	return func(e *Env) {
		e.Getenv = fn
	}
}

// WithNow sets the time provider.
func WithNow(fn func() time.Time) EnvOption {
	return func(e *Env) {
		e.Now = fn
	}
}

// WithConfigLoader sets the config loader.
func WithConfigLoader(l ConfigLoader) EnvOption {
	return func(e *Env) {
		e.ConfigLoader = l
	}
}

// WithWhisperResolver sets the whisper.cpp resolver.
func WithWhisperResolver(r WhisperResolver) EnvOption {
	return func(e *Env) {
		e.WhisperResolver = r
	}
}

// WithSegmenterFactory sets the segmenter factory.
func WithSegmenterFactory(f SegmenterFactory) EnvOption {
	return func(e *Env) {
		e.SegmenterFactory = f
	}
}

// WithTranscriberFactory sets the transcriber factory.
func WithTranscriberFactory(f TranscriberFactory) EnvOption {
	return func(e *Env) {
		e.TranscriberFactory = f
	}
}

// DefaultEnv returns an Env with production defaults.
func DefaultEnv() *Env {
	return &Env{
		Stderr:             os.Stderr,
		Stdout:             os.Stdout,
		Getenv:             os.Getenv,
		Now:                time.Now,
		ConfigLoader:       &defaultConfigLoader{},
		WhisperResolver:    whisper.NewResolver(),
		SegmenterFactory:   &defaultSegmenterFactory{},
		TranscriberFactory: &defaultTranscriberFactory{},
	}
}

// NewEnv creates an Env with the given options applied to defaults.
func NewEnv(opts ...EnvOption) *Env {
	env := DefaultEnv()
	for _, opt := range opts {
		opt(env)
	}
	return env
}

// ---------------------------------------------------------------------------
// Default implementations - delegate to real packages
// ---------------------------------------------------------------------------

// defaultConfigLoader implements ConfigLoader using the config package.
type defaultConfigLoader struct{}

func (defaultConfigLoader) Load() (config.Config, error) {
	return config.Load()
}

// defaultSegmenterFactory implements SegmenterFactory with audio.TimeSegmenter.
type defaultSegmenterFactory struct{}

func (defaultSegmenterFactory) NewSegmenter(chunkSeconds float64) (audio.Segmenter, error) {
	return audio.NewTimeSegmenter(chunkSeconds)
}

// defaultTranscriberFactory implements TranscriberFactory with the real backends.
type defaultTranscriberFactory struct{}

func (defaultTranscriberFactory) NewOpenAITranscriber(s OpenAISettings) transcribe.Transcriber {
	cfg := openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	return transcribe.NewOpenAITranscriber(openai.NewClientWithConfig(cfg),
		transcribe.WithModel(s.Model),
		transcribe.WithOpenAILogger(s.Logger),
	)
}

func (defaultTranscriberFactory) NewWhisperCPPTranscriber(s WhisperCPPSettings) transcribe.Transcriber {
	return transcribe.NewWhisperCPPTranscriber(s.BinPath, s.ModelPath,
		transcribe.WithWhisperLogger(s.Logger),
	)
}

// Compile-time interface verification.
var (
	_ ConfigLoader       = (*defaultConfigLoader)(nil)
	_ WhisperResolver    = (*whisper.Resolver)(nil)
	_ SegmenterFactory   = (*defaultSegmenterFactory)(nil)
	_ TranscriberFactory = (*defaultTranscriberFactory)(nil)
)
