package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alnah/go-voicedata/internal/config"
	"github.com/alnah/go-voicedata/internal/manifest"
)

// CheckCmd creates the check command.
// The env parameter provides injectable dependencies for testing.
func CheckCmd(env *Env) *cobra.Command {
	var csvName string

	cmd := &cobra.Command{
		Use:   "check <data-dir>",
		Short: "Verify a dataset directory",
		Long: `Verify that a dataset directory is ready for training.

Checks that the manifest and the wavs/ directory exist, that the manifest has
at least one row, and that every row points at an existing audio file.
Rows with empty transcripts are counted but accepted.`,
		Example: `  voicedata check dataset_out
  voicedata check corpus --csv train.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(env, args[0], csvName)
		},
	}

	cmd.Flags().StringVar(&csvName, "csv", manifest.FileName, "Manifest file, relative to the data directory")

	return cmd
}

// runCheck verifies dataDir and prints a report.
func runCheck(env *Env, dataDir, csvName string) error {
	dataDir = config.ExpandPath(dataDir)
	csvPath, err := filepath.Abs(config.ResolvePath(csvName, dataDir, manifest.FileName))
	if err != nil {
		return fmt.Errorf("cannot resolve manifest path: %w", err)
	}

	report, err := manifest.Verify(dataDir, csvPath)
	if report.Rows > 0 {
		writeReport(env.Stdout, csvPath, report)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(env.Stdout, "Dataset OK")
	return nil
}
