package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicedata/internal/config"
)

// ConfigCmd creates the config command with subcommands.
// The env parameter provides injectable dependencies for testing.
func ConfigCmd(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration settings",
		Long: `Manage persistent configuration settings.

Configuration is stored in ~/.config/go-voicedata/config.
Config file values override environment variables; flags override both.

Supported settings:
  output-dir      Dataset output directory       (env: VOICEDATA_OUTPUT_DIR, default: dataset_out)
  chunk-seconds   Segment length in seconds      (env: VOICEDATA_CHUNK_SECONDS, default: 10)
  language        Spoken language or 'auto'      (env: VOICEDATA_LANGUAGE, default: en)
  backend         openai or whisper-cpp          (env: VOICEDATA_BACKEND, default: openai)
  whisper-model   whisper.cpp ggml model file    (env: WHISPER_MODEL_PATH)
  openai-model    Hosted transcription model     (env: OPENAI_TRANSCRIBE_MODEL, default: whisper-1)`,
		Example: `  voicedata config set backend whisper-cpp
  voicedata config set whisper-model ~/models/ggml-base.en.bin
  voicedata config get language
  voicedata config list`,
	}

	cmd.AddCommand(configSetCmd(env))
	cmd.AddCommand(configGetCmd(env))
	cmd.AddCommand(configListCmd(env))

	return cmd
}

// configSetCmd creates the "config set" subcommand.
func configSetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration value.

Values are validated per key. For output-dir, the directory is created if it
doesn't exist; paths starting with ~/ are expanded.`,
		Example: `  voicedata config set output-dir ~/datasets/interviews
  voicedata config set chunk-seconds 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(env, args[0], args[1])
		},
	}
}

// configGetCmd creates the "config get" subcommand.
func configGetCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Long: `Get the effective value of a configuration key.

Prints the value to stdout, or nothing if not set.`,
		Example: `  voicedata config get backend`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigGet(env, args[0])
		},
	}
}

// configListCmd creates the "config list" subcommand.
func configListCmd(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List all configuration values",
		Long:    `List the effective value of every configuration key with its source.`,
		Example: `  voicedata config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigList(env)
		},
	}
}

// runConfigSet handles the "config set" command.
func runConfigSet(env *Env, key, value string) error {
	if err := config.ValidateValue(key, value); err != nil {
		return fmt.Errorf("%w (valid keys: %s)", err, strings.Join(config.Keys(), ", "))
	}

	switch key {
	case config.KeyOutputDir:
		expanded, err := config.EnsureOutputDir(value)
		if err != nil {
			return fmt.Errorf("invalid output-dir: %w", err)
		}
		value = expanded
	case config.KeyWhisperModel:
		value = config.ExpandPath(value)
	}

	if err := config.Save(key, value); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(env.Stderr, "Set %s = %s\n", key, value)
	return nil
}

// runConfigGet handles the "config get" command.
func runConfigGet(env *Env, key string) error {
	if config.EnvVar(key) == "" {
		return fmt.Errorf("%w: %q (valid keys: %s)", config.ErrUnknownKey, key, strings.Join(config.Keys(), ", "))
	}

	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	if value := cfg.Value(key); value != "" {
		_, _ = fmt.Fprintln(env.Stdout, value)
	}
	return nil
}

// runConfigList handles the "config list" command.
func runConfigList(env *Env) error {
	file, err := config.List()
	if err != nil {
		return err
	}
	cfg, err := env.ConfigLoader.Load()
	if err != nil {
		return err
	}

	for _, key := range config.Keys() {
		value := cfg.Value(key)
		var source string
		switch {
		case file[key] != "":
			source = "config"
		case env.Getenv(config.EnvVar(key)) != "":
			source = "env"
		case value != "":
			source = "default"
		default:
			source = "unset"
		}
		_, _ = fmt.Fprintf(env.Stdout, "%s=%s (%s)\n", key, value, source)
	}
	return nil
}
