package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubsite/internal/render"
	"github.com/pdiddy/pubsite/internal/site"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print upcoming and past conferences and publications",
	Long: `List performs the same render pass as build but prints the result to
the terminal. Use --json for the page model as JSON.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().Bool("json", false, "output the page as JSON")
	listCmd.Flags().Int("recent", 0, "publications shown before the older section (default 10)")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadSiteConfig()
	if n, _ := cmd.Flags().GetInt("recent"); n > 0 {
		cfg.Render.RecentLimit = n
	}
	opts, err := passOptions(cfg)
	if err != nil {
		return err
	}

	res, err := site.Pass(context.Background(), opts, time.Now())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Page)
	}
	return render.WriteTerminal(os.Stdout, res.Page)
}
