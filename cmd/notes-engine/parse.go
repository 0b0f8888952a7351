// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Split saved model output into note sections without calling the model",
	Long: `Parse reads text that already follows the meeting-notes heading template
(from a file, or stdin with "-" or no argument) and prints the sections in
fixed order. No credential is needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		s, _ := cmd.Flags().GetString("format")
		format, err := types.ParseOutputFormat(s)
		if err != nil {
			return err
		}
		noFallback, _ := cmd.Flags().GetBool("no-fallback")
		return runParse(in, cmd.OutOrStdout(), format, !noFallback)
	},
}

func runParse(in io.Reader, out io.Writer, format types.OutputFormat, fallback bool) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	n := notes.Parser{Fallback: fallback}.Parse(string(raw))
	return notes.Encode(out, n, format)
}

func init() {
	parseCmd.Flags().String("format", "text", "output format: text, yaml, or json")
	parseCmd.Flags().Bool("no-fallback", false, `leave empty sections empty instead of "No information detected."`)
	rootCmd.AddCommand(parseCmd)
}
