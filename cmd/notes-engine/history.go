// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/notes-engine/internal/archive"
	"github.com/pdiddy/notes-engine/internal/notes"
	"github.com/pdiddy/notes-engine/internal/pipeline"
	"github.com/pdiddy/notes-engine/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, search, and export past notes runs",
	Long: `History reads the local SQLite database that records every notes and
summary run. Section bodies are indexed for full-text search.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, runs)
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}
		fmt.Fprintf(out, "%-12s  %-20s  %-7s  %s\n", "ID", "Created", "Mode", "Source")
		fmt.Fprintln(out, strings.Repeat("-", 80))
		for _, r := range runs {
			fmt.Fprintf(out, "%-12s  %-20s  %-7s  %s\n",
				r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Mode, r.Source)
		}
		return nil
	},
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over archived section bodies",
	Long: `Search matches archived section bodies with SQLite FTS5 query syntax
("billing AND migration", "launch*"). Use --section to restrict hits to one
section, e.g. --section "action items".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := archive.QueryOptions{Query: strings.Join(args, " ")}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		if name, _ := cmd.Flags().GetString("section"); name != "" {
			sec, ok := notes.ParseSection(name)
			if !ok {
				return fmt.Errorf("unknown section %q: use summary, key points, decisions, or action items", name)
			}
			opts.Section = sec.String()
		}
		if opts.Query == "" && opts.Section == "" {
			return fmt.Errorf("query or --section required")
		}

		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		hits, err := store.Search(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(out, hits)
		}
		if len(hits) == 0 {
			fmt.Fprintln(out, "No results found.")
			return nil
		}
		for _, h := range hits {
			snippet := strings.Join(strings.Fields(h.Snippet), " ")
			fmt.Fprintf(out, "%s  %-12s  %s\n    %s\n", h.RunID, h.Section, h.Source, snippet)
		}
		fmt.Fprintf(out, "\n%d results\n", len(hits))
		return nil
	},
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print an archived run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		rec, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "source:  %s\ncreated: %s\nsaved:   %s\n\n",
			rec.Source, rec.CreatedAt.Local().Format(time.DateTime), rec.Destination)
		if rec.Mode == types.ModeSummary {
			_, err := fmt.Fprintf(out, "%s\n%s\n", pipeline.SummaryBanner, rec.Summary)
			return err
		}
		return notes.Render(out, rec.Notes)
	},
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every archived run to YAML or JSON on stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")

		store, err := openArchive()
		if err != nil {
			return err
		}
		defer store.Close()

		switch format {
		case "yaml", "":
			return store.ExportYAML(cmd.Context(), cmd.OutOrStdout())
		case "json":
			return store.ExportJSON(cmd.Context(), cmd.OutOrStdout())
		default:
			return fmt.Errorf("unsupported format %q: use yaml or json", format)
		}
	},
}

// --- shared helpers ---

// openArchive opens the history database. It needs no credential.
func openArchive() (*archive.Store, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	return archive.Open(cfg.Archive)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = archive.max_results)")
	historyListCmd.Flags().Bool("json", false, "output as JSON")

	historySearchCmd.Flags().String("section", "", "restrict hits to one section")
	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = archive.max_results)")
	historySearchCmd.Flags().Bool("json", false, "output as JSON")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
