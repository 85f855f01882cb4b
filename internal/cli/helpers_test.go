package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/config"
)

// ---------------------------------------------------------------------------
// syncBuffer - thread-safe bytes.Buffer for concurrent test output
// ---------------------------------------------------------------------------

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (n int, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Compile-time check that syncBuffer implements io.Writer.
var _ io.Writer = (*syncBuffer)(nil)

// ---------------------------------------------------------------------------
// testMocks - convenience struct for grouping all mocks
// ---------------------------------------------------------------------------

type testMocks struct {
	configLoader *mockConfigLoader
	resolver     *mockWhisperResolver
	segmenter    *mockSegmenterFactory
	transcriber  *mockTranscriberFactory
	stderr       *syncBuffer
	stdout       *syncBuffer
}

// testEnvOption configures testEnv.
type testEnvOption func(*Env, *testMocks)

// withEnvVars replaces the environment getter.
func withEnvVars(vars map[string]string) testEnvOption {
	return func(e *Env, _ *testMocks) {
		e.Getenv = staticEnv(vars)
	}
}

// withConfig makes the config loader return cfg.
func withConfig(cfg config.Config) testEnvOption {
	return func(_ *Env, m *testMocks) {
		m.configLoader.LoadFunc = func() (config.Config, error) { return cfg, nil }
	}
}

// testEnv creates a test Env with all dependencies mocked.
// Returns the Env and the mocks for assertions.
func testEnv(opts ...testEnvOption) (*Env, *testMocks) {
	mocks := &testMocks{
		configLoader: &mockConfigLoader{},
		resolver:     &mockWhisperResolver{},
		segmenter:    &mockSegmenterFactory{},
		transcriber:  &mockTranscriberFactory{},
		stderr:       &syncBuffer{},
		stdout:       &syncBuffer{},
	}

	env := &Env{
		Stderr:             mocks.stderr,
		Stdout:             mocks.stdout,
		Getenv:             staticEnv(map[string]string{EnvOpenAIAPIKey: "test-openai-key", EnvNoColor: "1"}),
		Now:                fixedTime(time.Date(2026, 1, 26, 14, 30, 52, 0, time.UTC)),
		ConfigLoader:       mocks.configLoader,
		WhisperResolver:    mocks.resolver,
		SegmenterFactory:   mocks.segmenter,
		TranscriberFactory: mocks.transcriber,
	}

	for _, opt := range opts {
		opt(env, mocks)
	}
	return env, mocks
}

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

// fixedTime returns a function that always returns the given time.
func fixedTime(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// staticEnv returns a getenv function that returns values from the given map.
func staticEnv(env map[string]string) func(string) string {
	return func(key string) string {
		return env[key]
	}
}

// noFlagsChanged reports every flag as left at its default.
func noFlagsChanged(string) bool { return false }

// flagsChanged reports the given flag names as set on the command line.
func flagsChanged(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

// createTestWAV writes a 16-bit mono 8 kHz WAV of the given length in seconds.
func createTestWAV(t *testing.T, name string, seconds float64) string {
	t.Helper()
	f := audio.Format{Channels: 1, SampleWidth: 2, FrameRate: 8000}
	frames := int(seconds * float64(f.FrameRate))
	pcm := make([]byte, frames*f.FrameSize())
	for i := range pcm {
		pcm[i] = byte(i % 251)
	}

	var buf bytes.Buffer
	if err := audio.WriteWAV(&buf, f, pcm); err != nil {
		t.Fatalf("WriteWAV() error = %v", err)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to create test WAV: %v", err)
	}
	return path
}

// readFile reads a file or fails the test.
func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", path, err)
	}
	return string(data)
}

// writeTestFile writes content to path, creating parent directories.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		t.Fatalf("MkdirAll(%q) error = %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile(%q) error = %v", path, err)
	}
}

// dirExists reports whether path is an existing directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
