package config

import (
	"bufio"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/alnah/go-voicedata/internal/lang"
)

// Config keys.
const (
	KeyOutputDir    = "output-dir"
	KeyChunkSeconds = "chunk-seconds"
	KeyLanguage     = "language"
	KeyBackend      = "backend"
	KeyWhisperModel = "whisper-model"
	KeyOpenAIModel  = "openai-model"
)

// Defaults applied when neither the environment nor the config file sets a value.
const (
	DefaultOutputDir    = "dataset_out"
	DefaultChunkSeconds = 10.0
	DefaultLanguage     = "en"
	DefaultBackend      = "openai"
	DefaultOpenAIModel  = "whisper-1"
)

// Backend names accepted by the backend key.
const (
	BackendOpenAI     = "openai"
	BackendWhisperCPP = "whisper-cpp"
)

// Config holds user configuration.
// Precedence: defaults, then environment variables, then ~/.config/go-voicedata/config.
// Command-line flags are applied on top by the CLI.
type Config struct {
	OutputDir    string  `env:"VOICEDATA_OUTPUT_DIR" envDefault:"dataset_out"`
	ChunkSeconds float64 `env:"VOICEDATA_CHUNK_SECONDS" envDefault:"10"`
	Language     string  `env:"VOICEDATA_LANGUAGE" envDefault:"en"`
	Backend      string  `env:"VOICEDATA_BACKEND" envDefault:"openai"`
	WhisperModel string  `env:"WHISPER_MODEL_PATH"`
	OpenAIModel  string  `env:"OPENAI_TRANSCRIBE_MODEL" envDefault:"whisper-1"`
}

// Defaults returns the configuration used when nothing else is set.
func Defaults() Config {
	return Config{
		OutputDir:    DefaultOutputDir,
		ChunkSeconds: DefaultChunkSeconds,
		Language:     DefaultLanguage,
		Backend:      DefaultBackend,
		OpenAIModel:  DefaultOpenAIModel,
	}
}

// Keys returns every recognized config key in display order.
func Keys() []string {
	return []string{
		KeyOutputDir,
		KeyChunkSeconds,
		KeyLanguage,
		KeyBackend,
		KeyWhisperModel,
		KeyOpenAIModel,
	}
}

// envVars maps each key to the environment variable that sets it.
var envVars = map[string]string{
	KeyOutputDir:    "VOICEDATA_OUTPUT_DIR",
	KeyChunkSeconds: "VOICEDATA_CHUNK_SECONDS",
	KeyLanguage:     "VOICEDATA_LANGUAGE",
	KeyBackend:      "VOICEDATA_BACKEND",
	KeyWhisperModel: "WHISPER_MODEL_PATH",
	KeyOpenAIModel:  "OPENAI_TRANSCRIBE_MODEL",
}

// EnvVar returns the environment variable for key, or "" for unknown keys.
func EnvVar(key string) string {
	return envVars[key]
}

// Value returns the string form of the field behind key.
func (c Config) Value(key string) string {
	switch key {
	case KeyOutputDir:
		return c.OutputDir
	case KeyChunkSeconds:
		return strconv.FormatFloat(c.ChunkSeconds, 'g', -1, 64)
	case KeyLanguage:
		return c.Language
	case KeyBackend:
		return c.Backend
	case KeyWhisperModel:
		return c.WhisperModel
	case KeyOpenAIModel:
		return c.OpenAIModel
	default:
		return ""
	}
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	environ map[string]string
}

// WithEnvironment replaces the process environment for the environment layer.
func WithEnvironment(environ map[string]string) LoadOption {
	return func(o *loadOptions) {
		o.environ = environ
	}
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/go-voicedata.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "go-voicedata"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "go-voicedata"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load builds the configuration from defaults, environment variables and the config file.
// A missing config file is not an error.
func Load(opts ...LoadOption) (Config, error) {
	o := loadOptions{environ: env.ToMap(os.Environ())}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: o.environ}); err != nil {
		return cfg, fmt.Errorf("failed to read environment: %w", err)
	}

	p, err := path()
	if err != nil {
		return cfg, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.apply(data); err != nil {
		return cfg, fmt.Errorf("config %s: %w", p, err)
	}
	return cfg, nil
}

// apply overrides fields with the non-empty values of a parsed config file.
// Unknown keys are ignored so that older binaries tolerate newer files.
func (c *Config) apply(data map[string]string) error {
	for key, value := range data {
		if value == "" {
			continue
		}
		switch key {
		case KeyOutputDir:
			c.OutputDir = value
		case KeyChunkSeconds:
			secs, err := parseChunkSeconds(value)
			if err != nil {
				return err
			}
			c.ChunkSeconds = secs
		case KeyLanguage:
			c.Language = value
		case KeyBackend:
			c.Backend = value
		case KeyWhisperModel:
			c.WhisperModel = value
		case KeyOpenAIModel:
			c.OpenAIModel = value
		}
	}
	return nil
}

// ValidateValue checks that value is acceptable for key.
func ValidateValue(key, value string) error {
	switch key {
	case KeyOutputDir:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	case KeyChunkSeconds:
		if _, err := parseChunkSeconds(value); err != nil {
			return err
		}
	case KeyLanguage:
		if _, err := lang.Parse(value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
	case KeyBackend:
		if value != BackendOpenAI && value != BackendWhisperCPP {
			return fmt.Errorf("%w: backend %q (expected %s or %s)",
				ErrInvalidValue, value, BackendOpenAI, BackendWhisperCPP)
		}
	case KeyWhisperModel, KeyOpenAIModel:
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, key)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return nil
}

func parseChunkSeconds(value string) (float64, error) {
	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || secs <= 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", ErrInvalidValue, KeyChunkSeconds, value)
	}
	return secs, nil
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}
		data[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// Save validates and writes a single key=value to the config file.
// Creates the config directory and file if they don't exist.
// Preserves existing key=value pairs but discards comments.
func Save(key, value string) error {
	if err := ValidateValue(key, value); err != nil {
		return err
	}

	p, err := path()
	if err != nil {
		return err
	}

	d := filepath.Dir(p)
	if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	existing, err := parseFile(p)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if existing == nil {
		existing = make(map[string]string)
	}
	existing[key] = value

	return writeFile(p, existing)
}

// writeFile writes the config map to a file, keys sorted.
func writeFile(p string, data map[string]string) error {
	// #nosec G302 G304 -- config file with standard permissions, path from home dir
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}

	for _, key := range slices.Sorted(maps.Keys(data)) {
		if _, err := fmt.Fprintf(f, "%s=%s\n", key, data[key]); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Get reads a single value from the config file.
// Returns empty string if the key doesn't exist.
func Get(key string) (string, error) {
	p, err := path()
	if err != nil {
		return "", err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}

	return data[key], nil
}

// List returns all config file values as a map.
func List() (map[string]string, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}

	data, err := parseFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, err
	}

	return data, nil
}

// ResolvePath resolves a file path relative to baseDir:
//  1. If name is absolute, use it as-is
//  2. If name is relative, join it with baseDir
//  3. If name is empty, use defaultName in baseDir
//
// All paths are cleaned using filepath.Clean.
func ResolvePath(name, baseDir, defaultName string) string {
	if name != "" && filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	if name == "" {
		name = defaultName
	}
	if baseDir != "" {
		return filepath.Clean(filepath.Join(baseDir, name))
	}
	return filepath.Clean(name)
}

// EnsureOutputDir expands d and creates it if needed, then checks it is a writable directory.
// Returns the expanded path.
func EnsureOutputDir(d string) (string, error) {
	if d == "" {
		return "", fmt.Errorf("%w: %s cannot be empty", ErrInvalidValue, KeyOutputDir)
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return "", fmt.Errorf("cannot create directory: %w", err)
		}
		return d, nil
	}

	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", d)
	}

	testFile := filepath.Join(d, ".go-voicedata-write-test")
	f, err := os.Create(testFile) // #nosec G304 -- path is constructed from validated dir
	if err != nil {
		return "", fmt.Errorf("directory is not writable: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(testFile)
		return "", fmt.Errorf("directory is not writable: %w", err)
	}
	_ = os.Remove(testFile)

	return d, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}

// Dir returns the configuration directory path.
func Dir() (string, error) {
	return dir()
}

// ParseFile reads a key=value config file (exported for testing).
func ParseFile(p string) (map[string]string, error) {
	return parseFile(p)
}
