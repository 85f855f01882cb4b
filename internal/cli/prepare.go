package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/format"
	"github.com/alnah/go-voicedata/internal/lang"
	"github.com/alnah/go-voicedata/internal/logging"
	"github.com/alnah/go-voicedata/internal/manifest"
	"github.com/alnah/go-voicedata/internal/transcribe"
)

// supportedExtensions lists the accepted input extensions.
// Only PCM WAV can be split losslessly without re-encoding.
var supportedExtensions = map[string]bool{
	".wav":  true,
	".wave": true,
}

// prepareOptions holds the effective settings of one prepare run.
type prepareOptions struct {
	outputDir    string
	chunkSeconds float64
	language     string
	backend      string
	modelPath    string
	whisperBin   string
	openaiModel  string
	parallel     int
	verbose      bool
	noColor      bool
}

// Flag names shared by PrepareCmd and mergeConfig.
const (
	flagOutputDir    = "output-dir"
	flagChunkSeconds = "chunk-seconds"
	flagLanguage     = "language"
	flagBackend      = "backend"
	flagModel        = "model"
	flagWhisperBin   = "whisper-bin"
	flagOpenAIModel  = "openai-model"
)

// mergeConfig starts from cfg and applies the flags the user actually set.
func mergeConfig(cfg config.Config, flags prepareOptions, changed func(string) bool) prepareOptions {
	opts := flags
	opts.outputDir = cfg.OutputDir
	opts.chunkSeconds = cfg.ChunkSeconds
	opts.language = cfg.Language
	opts.backend = cfg.Backend
	opts.modelPath = cfg.WhisperModel
	opts.openaiModel = cfg.OpenAIModel
	opts.whisperBin = ""

	if changed(flagOutputDir) {
		opts.outputDir = flags.outputDir
	}
	if changed(flagChunkSeconds) {
		opts.chunkSeconds = flags.chunkSeconds
	}
	if changed(flagLanguage) {
		opts.language = flags.language
	}
	if changed(flagBackend) {
		opts.backend = flags.backend
	}
	if changed(flagModel) {
		opts.modelPath = flags.modelPath
	}
	if changed(flagWhisperBin) {
		opts.whisperBin = flags.whisperBin
	}
	if changed(flagOpenAIModel) {
		opts.openaiModel = flags.openaiModel
	}
	return opts
}

// PrepareCmd creates the prepare command.
// The env parameter provides injectable dependencies for testing.
func PrepareCmd(env *Env) *cobra.Command {
	var flags prepareOptions

	cmd := &cobra.Command{
		Use:   "prepare <input.wav>",
		Short: "Split a recording and build a speech dataset",
		Long: `Split a PCM WAV recording into fixed-length segments, transcribe each
segment, and write a pipe-delimited manifest.

Output layout:
  <output-dir>/wavs/0001.wav, 0002.wav, ...
  <output-dir>/metadata.csv   (wavs/0001.wav|transcript)

Segments are copied byte for byte; nothing is resampled or re-encoded.
A segment whose transcription fails keeps its row with an empty transcript.

Backends:
  openai       Hosted transcription API (needs OPENAI_API_KEY, honours OPENAI_BASE_URL)
  whisper-cpp  Local whisper.cpp CLI (needs --model; binary from --whisper-bin,
               WHISPER_CPP_PATH or PATH)

Flags override the config file, which overrides environment variables.`,
		Example: `  voicedata prepare interview.wav
  voicedata prepare interview.wav -o corpus -c 8 -l fr
  voicedata prepare lecture.wav -b whisper-cpp -m ~/models/ggml-base.en.bin
  voicedata prepare podcast.wav -l auto -p 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrepare(cmd.Context(), env, args[0], flags, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&flags.outputDir, flagOutputDir, "o", config.DefaultOutputDir, "Dataset output directory")
	cmd.Flags().Float64VarP(&flags.chunkSeconds, flagChunkSeconds, "c", config.DefaultChunkSeconds, "Segment length in seconds")
	cmd.Flags().StringVarP(&flags.language, flagLanguage, "l", config.DefaultLanguage, "Spoken language (ISO 639-1 code, or 'auto')")
	cmd.Flags().StringVarP(&flags.backend, flagBackend, "b", config.DefaultBackend, "Transcription backend: openai, whisper-cpp")
	cmd.Flags().StringVarP(&flags.modelPath, flagModel, "m", "", "whisper.cpp ggml model file (whisper-cpp backend)")
	cmd.Flags().StringVar(&flags.whisperBin, flagWhisperBin, "", "whisper.cpp executable (default: WHISPER_CPP_PATH, then PATH)")
	cmd.Flags().StringVar(&flags.openaiModel, flagOpenAIModel, config.DefaultOpenAIModel, "Hosted transcription model")
	cmd.Flags().IntVarP(&flags.parallel, "parallel", "p", 1, "Concurrent transcriptions (1-10)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Debug logging")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "Disable colored log output")

	return cmd
}

// runPrepare executes the dataset pipeline.
// Validation order: file exists -> format -> language -> backend -> chunk duration -> backend setup.
// Nothing is written before validation succeeds.
func runPrepare(ctx context.Context, env *Env, inputPath string, flags prepareOptions, changed func(string) bool) error {
	// === CONFIGURATION ===

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		fmt.Fprintf(env.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Defaults()
	}
	opts := mergeConfig(cfg, flags, changed)

	logger := logging.New(env.Stderr, logging.Options{
		Verbose: opts.verbose,
		NoColor: opts.noColor || env.Getenv(EnvNoColor) != "",
	})

	// === VALIDATION (fail-fast) ===

	// 1. File exists
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, inputPath)
		}
		return fmt.Errorf("cannot access input file: %w", err)
	}
	logger.Debug("input file", "path", inputPath, "size", format.Size(info.Size()))

	// 2. Format supported
	ext := strings.ToLower(filepath.Ext(inputPath))
	if !supportedExtensions[ext] {
		return fmt.Errorf("unsupported format %q (expected a .wav file): %w", ext, ErrUnsupportedFormat)
	}

	// 3. Language
	language, err := lang.Parse(opts.language)
	if err != nil {
		return err
	}
	logger.Debug("language", "code", language, "name", language.DisplayName())

	// 4. Backend
	backend, err := ParseBackend(opts.backend)
	if err != nil {
		return err
	}

	// 5. Chunk duration
	segmenter, err := env.SegmenterFactory.NewSegmenter(opts.chunkSeconds)
	if err != nil {
		return err
	}

	// 6. Backend setup (credentials, binary, model)
	transcriber, err := newTranscriber(env, backend, opts, logger)
	if err != nil {
		return err
	}

	// === SEGMENTATION ===

	start := env.Now()
	outDir := config.ExpandPath(opts.outputDir)
	wavDir := filepath.Join(outDir, manifest.AudioDir)

	chunk := time.Duration(opts.chunkSeconds * float64(time.Second))
	fmt.Fprintf(env.Stderr, "Splitting %s into %s segments...\n", filepath.Base(inputPath), format.DurationHuman(chunk))

	segments, err := segmenter.Segment(ctx, inputPath, wavDir)
	if err != nil {
		return err
	}

	var total time.Duration
	for _, seg := range segments {
		total += seg.Duration()
	}
	fmt.Fprintf(env.Stderr, "Split %s of audio into %d segments\n", format.DurationHuman(total), len(segments))

	// === TRANSCRIPTION ===

	orchestrator := transcribe.NewOrchestrator(transcriber,
		transcribe.WithLogger(logger),
		transcribe.WithParallel(opts.parallel),
	)

	fmt.Fprintf(env.Stderr, "Transcribing with %s...\n", backend)
	results, err := orchestrator.TranscribeAll(ctx, segments, transcribe.Options{Language: language})
	if err != nil {
		return err
	}

	// === MANIFEST ===

	records := manifest.FromResults(results, manifest.AudioDir)
	csvPath := filepath.Join(outDir, manifest.FileName)
	if err := manifest.Write(csvPath, records); err != nil {
		return err
	}

	failed := countFailed(results)
	if failed > 0 {
		logger.Warn("segments kept with empty transcripts", "failed", failed, "total", len(results))
	}

	fmt.Fprintf(env.Stderr, "Done: %s (%d segments, %d failed, %s)\n",
		csvPath, len(records), failed, format.DurationHuman(env.Now().Sub(start)))
	return nil
}

// newTranscriber validates the backend's prerequisites and builds it.
func newTranscriber(env *Env, backend Backend, opts prepareOptions, logger *slog.Logger) (transcribe.Transcriber, error) {
	if !backend.IsWhisperCPP() {
		apiKey := env.Getenv(EnvOpenAIAPIKey)
		if apiKey == "" {
			return nil, fmt.Errorf("%w (set it with: export %s=sk-...)", ErrAPIKeyMissing, EnvOpenAIAPIKey)
		}
		return env.TranscriberFactory.NewOpenAITranscriber(OpenAISettings{
			APIKey:  apiKey,
			BaseURL: env.Getenv(EnvOpenAIBaseURL),
			Model:   opts.openaiModel,
			Logger:  logger,
		}), nil
	}

	binPath, err := env.WhisperResolver.Resolve(config.ExpandPath(opts.whisperBin))
	if err != nil {
		return nil, err
	}
	modelPath := config.ExpandPath(opts.modelPath)
	if err := env.WhisperResolver.CheckModel(modelPath); err != nil {
		return nil, err
	}
	logger.Debug("using whisper.cpp", "bin", binPath, "model", modelPath)

	return env.TranscriberFactory.NewWhisperCPPTranscriber(WhisperCPPSettings{
		BinPath:   binPath,
		ModelPath: modelPath,
		Logger:    logger,
	}), nil
}
