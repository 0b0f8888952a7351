// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/notes-engine/pkg/types"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [files...]",
	Short: "Summarize documents in simple and clear language",
	Long: `Summarize asks the model for a plain-language summary of each input and
prints it under an "AI GENERATED SUMMARY" banner. The reply is saved verbatim
as <name>-summary.txt; it is not split into sections.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPipeline(cmd, args, types.ModeSummary)
	},
}

func init() {
	addPipelineFlags(summarizeCmd)
	addBatchFlags(summarizeCmd)
	rootCmd.AddCommand(summarizeCmd)
}
