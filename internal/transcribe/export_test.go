package transcribe

// Exports for testing. These allow black-box tests to inject dependencies
// without modifying the public API.

// AudioTranscriber mirrors the unexported client interface for mocks.
type AudioTranscriber = audioTranscriber

// NewTestOpenAITranscriber creates an OpenAITranscriber with a mock client.
func NewTestOpenAITranscriber(client audioTranscriber, opts ...OpenAIOption) *OpenAITranscriber {
	return newOpenAITranscriber(client, opts...)
}

// WithReadFile replaces the segment reader (for testing read failures).
func WithReadFile(fn func(string) ([]byte, error)) OpenAIOption {
	return func(t *OpenAITranscriber) { t.readFile = fn }
}

// Function exports for unit testing internal logic.
var ClassifyError = classifyError
