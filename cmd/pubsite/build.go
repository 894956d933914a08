// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubsite/internal/render"
	"github.com/pdiddy/pubsite/internal/site"
	"github.com/pdiddy/pubsite/internal/watch"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the page to an HTML file",
	Long: `Build loads the conference list and the bibliography, classifies each
conference as upcoming or past against the current time, and writes the page
to --out.

With --watch, build stays running and rewrites the page whenever the local
conference or bibliography file changes.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringP("out", "o", "", "output HTML file (default site/index.html)")
	buildCmd.Flags().Int("recent", 0, "publications shown before the older section (default 10)")
	buildCmd.Flags().Bool("watch", false, "rebuild when input files change")

	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg := loadSiteConfig()
	out := stringFlagOr(cmd, "out", "render.output_path")
	if n, _ := cmd.Flags().GetInt("recent"); n > 0 {
		cfg.Render.RecentLimit = n
	}

	opts, err := passOptions(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rebuild := func() error {
		return buildPage(ctx, opts, out, os.Stdout)
	}
	if err := rebuild(); err != nil {
		return err
	}

	watchMode, _ := cmd.Flags().GetBool("watch")
	if !watchMode {
		return nil
	}

	w, err := watch.New([]string{cfg.Sources.ConferencesPath, cfg.Sources.BibliographyPath}, 0)
	if err != nil {
		return err
	}
	if w.Empty() {
		return fmt.Errorf("--watch needs --conferences or --bib pointing at a local file")
	}
	fmt.Fprintln(os.Stdout, "watching for changes (Ctrl-C to stop)")
	return w.Run(ctx, rebuild)
}

// buildPage runs one render pass and writes the HTML file.
func buildPage(ctx context.Context, opts site.Options, out string, w io.Writer) error {
	res, err := site.Pass(ctx, opts, time.Now())
	if err != nil {
		return err
	}

	if dir := filepath.Dir(out); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := render.WriteHTML(f, res.Page); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}

	page := res.Page
	fmt.Fprintf(w, "wrote %s: %d upcoming, %d past conferences; %d publications\n",
		out, len(page.Upcoming), len(page.Past), len(page.Recent)+len(page.Older))
	return nil
}

// stringFlagOr returns the flag value when it was set on the command line,
// otherwise the configured value of key.
func stringFlagOr(cmd *cobra.Command, name, key string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return viper.GetString(key)
}
