package transcribe

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/format"
)

// MaxRecommendedParallel is the upper limit for concurrent backend calls.
// Higher values trigger rate limiting on hosted APIs.
const MaxRecommendedParallel = 10

// previewRunes is the transcript length shown in per-segment log lines.
const previewRunes = 60

// Orchestrator transcribes segments one by one, isolating failures.
// A failed segment yields an empty transcript; the batch always continues.
type Orchestrator struct {
	transcriber Transcriber
	logger      *slog.Logger
	parallel    int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the logger for per-segment outcome lines.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallel sets how many segments are transcribed concurrently,
// clamped to 1..MaxRecommendedParallel. Results stay in segment order.
func WithParallel(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		o.parallel = max(1, min(n, MaxRecommendedParallel))
	}
}

// NewOrchestrator creates an Orchestrator. The default is strictly sequential.
func NewOrchestrator(t Transcriber, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		transcriber: t,
		logger:      slog.New(slog.DiscardHandler),
		parallel:    1,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Parallel returns the effective concurrency.
func (o *Orchestrator) Parallel() int {
	return o.parallel
}

// TranscribeAll returns exactly one Result per segment, in segment order.
// Backend failures are logged and recorded in Result.Err; they never abort the batch.
// The only error returned is the context's, when the run is interrupted.
func (o *Orchestrator) TranscribeAll(ctx context.Context, segments []audio.Segment, opts Options) ([]Result, error) {
	results := make([]Result, len(segments))

	var g errgroup.Group
	g.SetLimit(o.parallel)

	for i, seg := range segments {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = o.transcribeOne(ctx, seg, opts)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) transcribeOne(ctx context.Context, seg audio.Segment, opts Options) Result {
	text, err := o.transcriber.Transcribe(ctx, seg.Path, opts)
	if err != nil {
		if ctx.Err() == nil {
			o.logger.Error("segment transcription failed", "segment", seg.Name, tint.Err(err))
		}
		return Result{
			Segment: seg,
			Err:     fmt.Errorf("%w: %s: %w", ErrTranscriptionFailed, seg.Name, err),
		}
	}

	preview := format.Preview(strings.Join(strings.Fields(text), " "), previewRunes)
	if preview == "" {
		preview = "(no text)"
	}
	o.logger.Info("segment transcribed", "segment", seg.Name, "text", preview)
	return Result{Segment: seg, Text: text}
}
