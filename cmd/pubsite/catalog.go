// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubsite/internal/bibtex"
	"github.com/pdiddy/pubsite/internal/catalog"
	"github.com/pdiddy/pubsite/internal/source"
	"github.com/pdiddy/pubsite/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the publication catalog (index, search, export)",
	Long: `Catalog keeps the parsed bibliography in a local SQLite database so it
can be searched by text, type, year, and author, and exported as YAML or
JSON.`,
}

// --- index subcommand ---

var catalogIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Parse the bibliography and store it in the catalog",
	Long: `Index parses the configured bibliography and makes the catalog match
it: new entries are added, changed entries updated, and entries no longer in
the bibliography removed. Unchanged entries are left alone.`,
	RunE: runCatalogIndex,
}

func runCatalogIndex(cmd *cobra.Command, args []string) error {
	cfg := loadSiteConfig()
	opts, err := passOptions(cfg)
	if err != nil {
		return err
	}

	text, origin, err := source.LoadCitationText(context.Background(), opts.Client, cfg.Sources, opts.Secrets)
	if err != nil {
		return err
	}
	parsed := bibtex.ParseWithStats(text)
	fmt.Fprintf(os.Stdout, "parsed %d entries from %s", len(parsed.Records), origin)
	if parsed.Skipped > 0 {
		fmt.Fprintf(os.Stdout, " (%d malformed skipped)", parsed.Skipped)
	}
	fmt.Fprintln(os.Stdout)

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Ingest(context.Background(), parsed.Records, os.Stdout)
	return err
}

// --- search subcommand ---

var catalogSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalog by text and filters",
	Long: `Search matches the query text against titles, authors, abstracts, and
keywords, combined with optional --type, --year-from, --year-to and --author
filters. Results keep the bibliography's newest-first order.`,
	RunE: runCatalogSearch,
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide search text, --type, --year-from, --year-to, or --author")
	}

	results, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []catalog.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-24s  %-10s  %-4s  %s\n", "Key", "Type", "Year", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, r := range results {
		year := r.Field("year")
		fmt.Fprintf(os.Stdout, "%-24s  %-10s  %-4s  %s\n",
			truncate(r.Key, 24), truncate(r.EntryType, 10), year, truncate(r.DisplayTitle(), 46))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- export subcommand ---

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes the catalog (or a filtered subset) to export.yaml or
export.json in the catalog directory. Supports the same filters as search.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := catalog.NewStore(catalogConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	opts := queryOptsFromFlags(cmd, args)

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background(), opts)
	case "json":
		path, err = store.ExportJSON(context.Background(), opts)
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func catalogConfig(cmd *cobra.Command) types.CatalogConfig {
	cfg := loadSiteConfig().Catalog
	if cmd.Flags().Changed("catalog-dir") {
		cfg.Dir, _ = cmd.Flags().GetString("catalog-dir")
	}
	if cmd.Flags().Changed("max-results") {
		cfg.MaxResults, _ = cmd.Flags().GetInt("max-results")
	}
	return cfg
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) catalog.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}
	entryType, _ := cmd.Flags().GetString("type")
	yearFrom, _ := cmd.Flags().GetInt("year-from")
	yearTo, _ := cmd.Flags().GetInt("year-to")
	author, _ := cmd.Flags().GetString("author")
	limit, _ := cmd.Flags().GetInt("limit")

	return catalog.QueryOptions{
		Query:      queryText,
		Type:       entryType,
		YearFrom:   yearFrom,
		YearTo:     yearTo,
		Author:     author,
		MaxResults: limit,
	}
}

func addFilterFlags(cmd *cobra.Command, purpose string) {
	cmd.Flags().String("query", "", "text to match"+purpose)
	cmd.Flags().String("type", "", "filter by entry type, e.g. article"+purpose)
	cmd.Flags().Int("year-from", 0, "earliest year, inclusive"+purpose)
	cmd.Flags().Int("year-to", 0, "latest year, inclusive"+purpose)
	cmd.Flags().String("author", "", "filter by author substring"+purpose)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("catalog-dir", "", "catalog directory (default catalog)")
	catalogCmd.PersistentFlags().Int("max-results", 20, "maximum number of search results")

	// Search flags.
	addFilterFlags(catalogSearchCmd, "")
	catalogSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogSearchCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	addFilterFlags(catalogExportCmd, " for partial export")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogIndexCmd)
	catalogCmd.AddCommand(catalogSearchCmd)
	catalogCmd.AddCommand(catalogExportCmd)

	rootCmd.AddCommand(catalogCmd)
}
