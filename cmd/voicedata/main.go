package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/cli"
	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/lang"
	"github.com/alnah/go-voicedata/internal/manifest"
	"github.com/alnah/go-voicedata/internal/whisper"
)

// Injected at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

// Exit codes.
const (
	ExitOK         = 0
	ExitGeneral    = 1
	ExitUsage      = 2
	ExitSetup      = 3
	ExitValidation = 4
	ExitDataset    = 5
	ExitInterrupt  = 130
)

func main() {
	// Load .env file if present (ignore error if missing).
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	env := cli.DefaultEnv()

	rootCmd := &cobra.Command{
		Use:     "voicedata",
		Short:   "Build speech datasets from long WAV recordings",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		// Errors are printed once below with the mapped exit code.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(cli.PrepareCmd(env))
	rootCmd.AddCommand(cli.CheckCmd(env))
	rootCmd.AddCommand(cli.ConfigCmd(env))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps errors to process exit codes.
func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	if isCobraUsageError(err) {
		return ExitUsage
	}

	// Setup errors: the selected backend cannot run.
	if errors.Is(err, cli.ErrAPIKeyMissing) || errors.Is(err, whisper.ErrNotFound) ||
		errors.Is(err, whisper.ErrModelNotFound) {
		return ExitSetup
	}

	// Validation errors: bad input or settings.
	if errors.Is(err, cli.ErrUnsupportedFormat) || errors.Is(err, cli.ErrFileNotFound) ||
		errors.Is(err, cli.ErrInvalidBackend) || errors.Is(err, lang.ErrInvalid) ||
		errors.Is(err, audio.ErrUnsupportedEncoding) || errors.Is(err, audio.ErrInvalidChunkDuration) ||
		errors.Is(err, audio.ErrEmptyInput) || errors.Is(err, audio.ErrInvalidWAV) ||
		errors.Is(err, audio.ErrFileNotFound) ||
		errors.Is(err, config.ErrInvalidValue) || errors.Is(err, config.ErrUnknownKey) {
		return ExitValidation
	}

	// Dataset errors reported by check.
	if errors.Is(err, manifest.ErrMissingAudio) || errors.Is(err, manifest.ErrEmptyManifest) ||
		errors.Is(err, manifest.ErrInvalidDataset) {
		return ExitDataset
	}

	return ExitGeneral
}

// cobraUsageErrorPatterns contains error message substrings that indicate Cobra usage errors.
// Cobra doesn't expose typed errors, so string matching is the only reliable approach.
var cobraUsageErrorPatterns = []string{
	"required flag",          // Missing required flag
	"unknown flag",           // Flag doesn't exist
	"unknown shorthand",      // Short flag doesn't exist
	"unknown command",        // Subcommand doesn't exist
	"flag needs an argument", // Flag provided without value
	"invalid argument",       // Invalid flag value type
	"accepts ",               // Wrong number of arguments (e.g., "accepts 1 arg(s)")
	"requires at least",      // Too few arguments
	"requires at most",       // Too many arguments
}

// isCobraUsageError checks if an error is a Cobra usage/parsing error.
func isCobraUsageError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	for _, pattern := range cobraUsageErrorPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
