package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	openai "github.com/sashabaranov/go-openai"

	"github.com/alnah/go-voicedata/internal/apierr"
)

const (
	// DefaultOpenAIModel is the hosted model used when none is configured.
	DefaultOpenAIModel = openai.Whisper1

	// uploadFilename is sent for every segment; the API infers the container from it.
	uploadFilename = "chunk.wav"

	// uploadContentType is the MIME type of the uploaded file part.
	uploadContentType = "audio/wav"
)

// audioTranscriber is an internal interface for OpenAI audio transcription.
// *openai.Client implements this implicitly.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes segments with an OpenAI-compatible transcription API.
// Transient errors (rate limits, timeouts, 5xx) are retried with exponential backoff.
type OpenAITranscriber struct {
	client   audioTranscriber
	model    string
	retry    apierr.RetryConfig
	logger   *slog.Logger
	readFile func(name string) ([]byte, error)
}

// OpenAIOption configures an OpenAITranscriber.
type OpenAIOption func(*OpenAITranscriber)

// WithModel sets the transcription model name.
func WithModel(model string) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if model != "" {
			t.model = model
		}
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if n >= 0 {
			t.retry.MaxRetries = n
		}
	}
}

// WithRetryDelays sets the base and max delays for exponential backoff.
func WithRetryDelays(base, max time.Duration) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if base > 0 {
			t.retry.BaseDelay = base
		}
		if max > 0 {
			t.retry.MaxDelay = max
		}
	}
}

// WithOpenAILogger sets the logger used to report retries.
func WithOpenAILogger(l *slog.Logger) OpenAIOption {
	return func(t *OpenAITranscriber) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewOpenAITranscriber creates a new OpenAITranscriber.
// The client is injected so callers control credentials and base URL.
func NewOpenAITranscriber(client *openai.Client, opts ...OpenAIOption) *OpenAITranscriber {
	return newOpenAITranscriber(client, opts...)
}

func newOpenAITranscriber(client audioTranscriber, opts ...OpenAIOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:   client,
		model:    DefaultOpenAIModel,
		retry:    apierr.DefaultRetry,
		logger:   slog.New(slog.DiscardHandler),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Model returns the configured model name.
func (t *OpenAITranscriber) Model() string {
	return t.model
}

// Transcribe uploads the segment's raw bytes and returns the plain-text response.
// The file is read once; every retry resends the same bytes.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (string, error) {
	data, err := t.readFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("read segment: %w", err)
	}

	cfg := t.retry
	cfg.OnRetry = func(attempt int, delay time.Duration, err error) {
		t.logger.Warn("retrying transcription request",
			"file", audioPath, "attempt", attempt, "delay", delay, tint.Err(err))
	}

	return apierr.RetryWithBackoff(ctx, cfg, func() (string, error) {
		resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
			Model:    t.model,
			FilePath: uploadFilename,
			Reader:   wavReader{bytes.NewReader(data)},
			Format:   openai.AudioResponseFormatText,
			Language: opts.Language.BaseCode(), // API only accepts ISO 639-1 base codes
		})
		if err != nil {
			return "", classifyError(err)
		}
		return resp.Text, nil
	}, apierr.IsRetryable)
}

// wavReader tags the upload with a fixed MIME type.
type wavReader struct {
	*bytes.Reader
}

func (wavReader) ContentType() string {
	return uploadContentType
}

// classifyError maps go-openai errors to apierr sentinels.
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apierr.FromStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		msg := string(bytes.TrimSpace(reqErr.Body))
		if msg == "" && reqErr.Err != nil {
			msg = reqErr.Err.Error()
		}
		return apierr.FromStatus(reqErr.HTTPStatusCode, msg)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", apierr.ErrTimeout)
	}

	return err
}
