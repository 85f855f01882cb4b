package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicedata/internal/apierr"
	"github.com/alnah/go-voicedata/internal/audio"
	"github.com/alnah/go-voicedata/internal/cli"
	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/lang"
	"github.com/alnah/go-voicedata/internal/manifest"
	"github.com/alnah/go-voicedata/internal/transcribe"
	"github.com/alnah/go-voicedata/internal/whisper"
)

// allSentinelErrors lists every sentinel that surfaces from a command with its exit code.
var allSentinelErrors = []struct {
	err      error
	name     string
	exitCode int
}{
	// Setup errors (ExitSetup = 3)
	{cli.ErrAPIKeyMissing, "ErrAPIKeyMissing", ExitSetup},
	{whisper.ErrNotFound, "whisper.ErrNotFound", ExitSetup},
	{whisper.ErrModelNotFound, "whisper.ErrModelNotFound", ExitSetup},

	// Validation errors (ExitValidation = 4)
	{cli.ErrUnsupportedFormat, "ErrUnsupportedFormat", ExitValidation},
	{cli.ErrFileNotFound, "ErrFileNotFound", ExitValidation},
	{cli.ErrInvalidBackend, "ErrInvalidBackend", ExitValidation},
	{lang.ErrInvalid, "lang.ErrInvalid", ExitValidation},
	{audio.ErrUnsupportedEncoding, "audio.ErrUnsupportedEncoding", ExitValidation},
	{audio.ErrInvalidChunkDuration, "audio.ErrInvalidChunkDuration", ExitValidation},
	{audio.ErrEmptyInput, "audio.ErrEmptyInput", ExitValidation},
	{audio.ErrInvalidWAV, "audio.ErrInvalidWAV", ExitValidation},
	{audio.ErrFileNotFound, "audio.ErrFileNotFound", ExitValidation},
	{config.ErrInvalidValue, "config.ErrInvalidValue", ExitValidation},
	{config.ErrUnknownKey, "config.ErrUnknownKey", ExitValidation},

	// Dataset errors (ExitDataset = 5)
	{manifest.ErrMissingAudio, "manifest.ErrMissingAudio", ExitDataset},
	{manifest.ErrEmptyManifest, "manifest.ErrEmptyManifest", ExitDataset},
	{manifest.ErrInvalidDataset, "manifest.ErrInvalidDataset", ExitDataset},
}

func TestExitCode_MapsAllErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range allSentinelErrors {
		t.Run(tc.name+"_direct", func(t *testing.T) {
			t.Parallel()
			if got := exitCode(tc.err); got != tc.exitCode {
				t.Errorf("exitCode(%s) = %d, want %d", tc.name, got, tc.exitCode)
			}
		})

		t.Run(tc.name+"_wrapped", func(t *testing.T) {
			t.Parallel()
			wrapped := fmt.Errorf("wrapped: %w", tc.err)
			if got := exitCode(wrapped); got != tc.exitCode {
				t.Errorf("exitCode(wrapped %s) = %d, want %d", tc.name, got, tc.exitCode)
			}
		})
	}

	t.Run("nil_error", func(t *testing.T) {
		t.Parallel()
		if got := exitCode(nil); got != ExitOK {
			t.Errorf("exitCode(nil) = %d, want %d (ExitOK)", got, ExitOK)
		}
	})

	t.Run("unknown_error", func(t *testing.T) {
		t.Parallel()
		if got := exitCode(errors.New("some unexpected error")); got != ExitGeneral {
			t.Errorf("exitCode(unknown) = %d, want %d (ExitGeneral)", got, ExitGeneral)
		}
	})

	t.Run("context_canceled_wrapped", func(t *testing.T) {
		t.Parallel()
		wrapped := fmt.Errorf("segmentation interrupted: %w", context.Canceled)
		if got := exitCode(wrapped); got != ExitInterrupt {
			t.Errorf("exitCode(wrapped context.Canceled) = %d, want %d (ExitInterrupt)", got, ExitInterrupt)
		}
	})

	// Per-segment failures are isolated by the orchestrator and never end a run.
	t.Run("backend_errors_are_general", func(t *testing.T) {
		t.Parallel()
		for _, err := range []error{apierr.ErrRateLimit, transcribe.ErrTranscriptionFailed} {
			if got := exitCode(err); got != ExitGeneral {
				t.Errorf("exitCode(%v) = %d, want %d (ExitGeneral)", err, got, ExitGeneral)
			}
		}
	})
}

func TestExitCode_CobraErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(cmd *cobra.Command)
		args  []string
	}{
		{
			name:  "unknown_flag",
			setup: func(cmd *cobra.Command) {},
			args:  []string{"--nonexistent"},
		},
		{
			name:  "unknown_shorthand",
			setup: func(cmd *cobra.Command) {},
			args:  []string{"-x"},
		},
		{
			name: "flag_needs_argument",
			setup: func(cmd *cobra.Command) {
				cmd.Flags().String("output-dir", "", "a flag requiring value")
			},
			args: []string{"--output-dir"},
		},
		{
			name: "invalid_argument_type",
			setup: func(cmd *cobra.Command) {
				cmd.Flags().Float64("chunk-seconds", 10, "a float flag")
			},
			args: []string{"--chunk-seconds", "ten"},
		},
		{
			name: "wrong_arg_count",
			setup: func(cmd *cobra.Command) {
				cmd.Args = cobra.ExactArgs(1)
			},
			args: []string{"a.wav", "b.wav"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cmd := &cobra.Command{
				Use:           "test",
				SilenceErrors: true,
				SilenceUsage:  true,
				RunE: func(cmd *cobra.Command, args []string) error {
					return nil
				},
			}
			tc.setup(cmd)
			cmd.SetArgs(tc.args)

			err := cmd.Execute()
			if err == nil {
				t.Fatal("Execute() expected error, got nil")
			}
			if got := exitCode(err); got != ExitUsage {
				t.Errorf("exitCode(%q) = %d, want %d (ExitUsage)", err, got, ExitUsage)
			}
		})
	}
}

func TestExitCode_UnknownSubcommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "voicedata", SilenceErrors: true, SilenceUsage: true}
	root.AddCommand(&cobra.Command{Use: "check", RunE: func(*cobra.Command, []string) error { return nil }})
	root.SetArgs([]string{"prepar"})

	err := root.Execute()
	if err == nil {
		t.Fatal("Execute() expected error, got nil")
	}
	if got := exitCode(err); got != ExitUsage {
		t.Errorf("exitCode(%q) = %d, want %d (ExitUsage)", err, got, ExitUsage)
	}
}

func TestIsCobraUsageError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"arg count", errors.New(`accepts 1 arg(s), received 0`), true},
		{"unknown flag", errors.New("unknown flag: --csvv"), true},
		{"domain error", cli.ErrFileNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := isCobraUsageError(tt.err); got != tt.want {
				t.Errorf("isCobraUsageError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
