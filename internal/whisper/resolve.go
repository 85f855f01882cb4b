package whisper

import (
	"fmt"
	"runtime"
)

// EnvBinaryPath overrides PATH lookup of the whisper.cpp binary.
const EnvBinaryPath = "WHISPER_CPP_PATH"

// binaryNames are the executable names whisper.cpp has shipped under,
// newest first.
var binaryNames = []string{"whisper-cli", "whisper-cpp"}

// Resolver locates the whisper.cpp binary and validates model files.
type Resolver struct {
	reader fileReader
	env    envProvider
	goos   string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithFileReader sets the file reader implementation.
func WithFileReader(r fileReader) ResolverOption {
	return func(res *Resolver) { res.reader = r }
}

// WithEnvProvider sets the environment provider implementation.
func WithEnvProvider(e envProvider) ResolverOption {
	return func(res *Resolver) { res.env = e }
}

// WithPlatform sets the target OS used for install hints (for testing).
func WithPlatform(goos string) ResolverOption {
	return func(res *Resolver) { res.goos = goos }
}

// NewResolver creates a Resolver with the given options.
// Uses production defaults if no options are provided.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{
		reader: osFileReader{},
		env:    osEnvProvider{},
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds whisper.cpp using the following precedence:
//  1. explicit path (flag or config file), error if set but missing
//  2. WHISPER_CPP_PATH environment variable, error if set but missing
//  3. System PATH (whisper-cli, then whisper-cpp)
func (r *Resolver) Resolve(explicit string) (string, error) {
	if explicit != "" {
		if err := r.checkExecutable(explicit); err != nil {
			return "", fmt.Errorf("%w: %q: %v", ErrNotFound, explicit, err)
		}
		return explicit, nil
	}

	if envPath := r.env.Getenv(EnvBinaryPath); envPath != "" {
		if err := r.checkExecutable(envPath); err != nil {
			return "", fmt.Errorf("%w: %s is set to %q: %v", ErrNotFound, EnvBinaryPath, envPath, err)
		}
		return envPath, nil
	}

	for _, name := range binaryNames {
		if path, err := r.env.LookPath(name); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w in PATH\n\n%s", ErrNotFound, r.manualInstallInstructions())
}

// CheckModel verifies that path names a non-empty regular file.
func (r *Resolver) CheckModel(path string) error {
	if path == "" {
		return fmt.Errorf("%w: no model path given (set --model or WHISPER_MODEL_PATH)", ErrModelNotFound)
	}
	info, err := r.reader.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrModelNotFound, path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrModelNotFound, path)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: %s is empty", ErrModelNotFound, path)
	}
	return nil
}

func (r *Resolver) checkExecutable(path string) error {
	info, err := r.reader.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("is a directory")
	}
	return nil
}

// manualInstallInstructions returns platform-specific instructions.
func (r *Resolver) manualInstallInstructions() string {
	switch r.goos {
	case "darwin":
		return `To install whisper.cpp:
  brew install whisper-cpp

Or set WHISPER_CPP_PATH to your whisper-cli binary.`
	case "linux":
		return `To install whisper.cpp, build it from source:
  git clone https://github.com/ggml-org/whisper.cpp
  cmake -B build && cmake --build build --config Release

Then add build/bin to PATH or set WHISPER_CPP_PATH to build/bin/whisper-cli.`
	case "windows":
		return `To install whisper.cpp, download a release from
https://github.com/ggml-org/whisper.cpp/releases

Then set WHISPER_CPP_PATH to whisper-cli.exe.`
	default:
		return `To install whisper.cpp, see https://github.com/ggml-org/whisper.cpp
Or set WHISPER_CPP_PATH to your whisper-cli binary.`
	}
}
