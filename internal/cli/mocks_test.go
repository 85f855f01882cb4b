package cli

import (
	"context"
	"sync"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/transcribe"
)

// ---------------------------------------------------------------------------
// Mock ConfigLoader
// ---------------------------------------------------------------------------

type mockConfigLoader struct {
	LoadFunc func() (config.Config, error)

	mu        sync.Mutex
	loadCalls int
}

func (m *mockConfigLoader) Load() (config.Config, error) {
	m.mu.Lock()
	m.loadCalls++
	m.mu.Unlock()

	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return config.Defaults(), nil
}

func (m *mockConfigLoader) LoadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadCalls
}

// ---------------------------------------------------------------------------
// Mock WhisperResolver
// ---------------------------------------------------------------------------

type mockWhisperResolver struct {
	ResolveFunc    func(explicit string) (string, error)
	CheckModelFunc func(path string) error

	mu              sync.Mutex
	resolveCalls    []string
	checkModelCalls []string
}

func (m *mockWhisperResolver) Resolve(explicit string) (string, error) {
	m.mu.Lock()
	m.resolveCalls = append(m.resolveCalls, explicit)
	m.mu.Unlock()

	if m.ResolveFunc != nil {
		return m.ResolveFunc(explicit)
	}
	return "/usr/local/bin/whisper-cli", nil
}

func (m *mockWhisperResolver) CheckModel(path string) error {
	m.mu.Lock()
	m.checkModelCalls = append(m.checkModelCalls, path)
	m.mu.Unlock()

	if m.CheckModelFunc != nil {
		return m.CheckModelFunc(path)
	}
	return nil
}

func (m *mockWhisperResolver) ResolveCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.resolveCalls...)
}

func (m *mockWhisperResolver) CheckModelCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.checkModelCalls...)
}

// ---------------------------------------------------------------------------
// Mock SegmenterFactory + Segmenter
// ---------------------------------------------------------------------------

type mockSegmenterFactory struct {
	NewSegmenterFunc func(chunkSeconds float64) (audio.Segmenter, error)

	mu    sync.Mutex
	calls []float64
}

func (m *mockSegmenterFactory) NewSegmenter(chunkSeconds float64) (audio.Segmenter, error) {
	m.mu.Lock()
	m.calls = append(m.calls, chunkSeconds)
	m.mu.Unlock()

	if m.NewSegmenterFunc != nil {
		return m.NewSegmenterFunc(chunkSeconds)
	}
	return audio.NewTimeSegmenter(chunkSeconds)
}

func (m *mockSegmenterFactory) Calls() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.calls...)
}

type mockSegmenter struct {
	SegmentFunc func(ctx context.Context, inputPath, outDir string) ([]audio.Segment, error)
}

func (m *mockSegmenter) Segment(ctx context.Context, inputPath, outDir string) ([]audio.Segment, error) {
	if m.SegmentFunc != nil {
		return m.SegmentFunc(ctx, inputPath, outDir)
	}
	return nil, nil
}

// ---------------------------------------------------------------------------
// Mock TranscriberFactory + Transcriber
// ---------------------------------------------------------------------------

type mockTranscriberFactory struct {
	transcriber *mockTranscriber

	mu              sync.Mutex
	openAICalls     []OpenAISettings
	whisperCPPCalls []WhisperCPPSettings
}

func (m *mockTranscriberFactory) NewOpenAITranscriber(s OpenAISettings) transcribe.Transcriber {
	m.mu.Lock()
	m.openAICalls = append(m.openAICalls, s)
	m.mu.Unlock()
	return m.get()
}

func (m *mockTranscriberFactory) NewWhisperCPPTranscriber(s WhisperCPPSettings) transcribe.Transcriber {
	m.mu.Lock()
	m.whisperCPPCalls = append(m.whisperCPPCalls, s)
	m.mu.Unlock()
	return m.get()
}

func (m *mockTranscriberFactory) get() *mockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.transcriber == nil {
		m.transcriber = &mockTranscriber{}
	}
	return m.transcriber
}

func (m *mockTranscriberFactory) OpenAICalls() []OpenAISettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]OpenAISettings(nil), m.openAICalls...)
}

func (m *mockTranscriberFactory) WhisperCPPCalls() []WhisperCPPSettings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WhisperCPPSettings(nil), m.whisperCPPCalls...)
}

type mockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audioPath string, opts transcribe.Options) (string, error)

	mu              sync.Mutex
	transcribeCalls []transcribeCall
}

type transcribeCall struct {
	AudioPath string
	Opts      transcribe.Options
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (string, error) {
	m.mu.Lock()
	m.transcribeCalls = append(m.transcribeCalls, transcribeCall{AudioPath: audioPath, Opts: opts})
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audioPath, opts)
	}
	return "transcribed text", nil
}

func (m *mockTranscriber) TranscribeCalls() []transcribeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]transcribeCall, len(m.transcribeCalls))
	copy(result, m.transcribeCalls)
	return result
}

// Compile-time interface verification.
var (
	_ ConfigLoader           = (*mockConfigLoader)(nil)
	_ WhisperResolver        = (*mockWhisperResolver)(nil)
	_ SegmenterFactory       = (*mockSegmenterFactory)(nil)
	_ audio.Segmenter        = (*mockSegmenter)(nil)
	_ TranscriberFactory     = (*mockTranscriberFactory)(nil)
	_ transcribe.Transcriber = (*mockTranscriber)(nil)
)
