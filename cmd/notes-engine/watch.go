// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notes-engine/internal/pipeline"
	"github.com/pdiddy/notes-engine/pkg/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Generate notes for every file dropped into an inbox directory",
	Long: `Watch monitors a directory tree and runs each new or rewritten file that
matches --pattern through the notes pipeline once writes to it settle. Files
named *-notes.* or *-summary.* are skipped. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", args[0])
		}

		mode := types.ModeNotes
		if summary, _ := cmd.Flags().GetBool("summary"); summary {
			mode = types.ModeSummary
		}
		cfg, err := pipelineConfig(cmd, mode)
		if err != nil {
			return err
		}
		if cfg.Output != "" {
			return fmt.Errorf("--output cannot be used with watch")
		}

		ctx := cmd.Context()
		runner, err := pipeline.New(ctx, cfg, pipeline.Deps{Out: cmd.OutOrStdout(), Logger: logger})
		if err != nil {
			return err
		}
		defer runner.Close()

		patterns, _ := cmd.Flags().GetStringSlice("pattern")
		debounce, _ := cmd.Flags().GetDuration("debounce")
		w := &pipeline.Watcher{
			Dir:       args[0],
			Processor: runner,
			Patterns:  patterns,
			Debounce:  debounce,
			Out:       cmd.ErrOrStderr(),
			Logger:    logger,
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "watching %s (Ctrl-C to stop)\n", args[0])
		return w.Watch(ctx)
	},
}

func init() {
	addPipelineFlags(watchCmd)
	watchCmd.Flags().StringSlice("pattern", []string{pipeline.DefaultWatchPattern}, "doublestar patterns, relative to <dir>, of files to process")
	watchCmd.Flags().Duration("debounce", 0, "quiet period before a changed file is processed (default 500ms)")
	watchCmd.Flags().Bool("summary", false, "produce plain summaries instead of meeting notes")
	rootCmd.AddCommand(watchCmd)
}
