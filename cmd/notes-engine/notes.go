// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notes-engine/internal/pipeline"
	"github.com/pdiddy/notes-engine/pkg/types"
)

var notesCmd = &cobra.Command{
	Use:   "notes [files...]",
	Short: "Generate meeting notes from PDFs, recordings, or transcripts",
	Long: `Notes extracts text from each PDF (or transcribes each audio file), asks
the model for meeting notes, and splits the reply into SUMMARY, KEY POINTS,
DECISIONS, and ACTION ITEMS. Sections the model leaves out read
"No information detected.".

Notes are printed to stdout and saved as <name>-notes.txt next to each
source (or .yaml/.json with --format). Status lines go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, types.ModeNotes)
	},
}

func runPipeline(cmd *cobra.Command, args []string, mode types.Mode) error {
	cfg, err := pipelineConfig(cmd, mode)
	if err != nil {
		return err
	}

	pattern, _ := cmd.Flags().GetString("batch")
	paths, err := pipeline.ExpandInputs(args, pattern)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no input files: pass file paths or --batch <glob>")
	}

	ctx := cmd.Context()
	runner, err := pipeline.New(ctx, cfg, pipeline.Deps{Out: cmd.OutOrStdout(), Logger: logger})
	if err != nil {
		return err
	}
	defer runner.Close()

	summary, err := runner.RunBatch(ctx, paths, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d of %d file(s) failed", summary.Failed, summary.Total())
	}
	return nil
}

func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().String("batch", "", `process every file matching a glob, e.g. "inbox/**/*.pdf"`)
	cmd.Flags().Int("concurrency", 1, "files processed at once in a batch")
	cmd.Flags().Int("rpm", 0, "maximum model requests per minute (0 = unlimited)")
}

func init() {
	addPipelineFlags(notesCmd)
	addBatchFlags(notesCmd)
	rootCmd.AddCommand(notesCmd)
}
