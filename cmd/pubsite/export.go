package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pubsite/internal/bibtex"
	"github.com/pdiddy/pubsite/internal/schedule"
	"github.com/pdiddy/pubsite/internal/site"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export citations as CSL-YAML or conferences as iCalendar",
}

var exportCSLCmd = &cobra.Command{
	Use:   "csl",
	Short: "Write the bibliography as CSL-YAML",
	Long: `CSL writes every parsed citation as a CSL-YAML item, newest first, for
use with pandoc and other citation processors.`,
	RunE: runExportCSL,
}

var exportICSCmd = &cobra.Command{
	Use:   "ics",
	Short: "Write the conferences as an iCalendar feed",
	Long: `ICS writes one all-day event per conference whose date can be
resolved. Use --upcoming to leave out past conferences.`,
	RunE: runExportICS,
}

func init() {
	exportCmd.PersistentFlags().StringP("out", "o", "", "output file (default stdout)")
	exportICSCmd.Flags().Bool("upcoming", false, "only export conferences that have not ended")

	exportCmd.AddCommand(exportCSLCmd)
	exportCmd.AddCommand(exportICSCmd)
	rootCmd.AddCommand(exportCmd)
}

func runExportCSL(cmd *cobra.Command, args []string) error {
	res, err := exportPass()
	if err != nil {
		return err
	}
	if res.Dataset.CitationErr != nil {
		return res.Dataset.CitationErr
	}
	return withOutput(cmd, func(w io.Writer) error {
		return bibtex.FormatCSL(res.Citations, w)
	})
}

func runExportICS(cmd *cobra.Command, args []string) error {
	res, err := exportPass()
	if err != nil {
		return err
	}

	confs := res.Dataset.Conferences
	if upcoming, _ := cmd.Flags().GetBool("upcoming"); upcoming {
		confs = confs[:0:0]
		for _, c := range res.Conferences {
			if !c.Past {
				confs = append(confs, c.ConferenceRecord)
			}
		}
	}

	return withOutput(cmd, func(w io.Writer) error {
		n, err := schedule.WriteICS(w, confs, res.Page.GeneratedAt)
		if err != nil {
			return err
		}
		if skipped := len(confs) - n; skipped > 0 {
			fmt.Fprintf(os.Stderr, "%d conference(s) without a recognizable date left out\n", skipped)
		}
		return nil
	})
}

func exportPass() (site.Result, error) {
	opts, err := passOptions(loadSiteConfig())
	if err != nil {
		return site.Result{}, err
	}
	return site.Pass(context.Background(), opts, time.Now())
}

// withOutput runs write against --out, or stdout when it is unset.
func withOutput(cmd *cobra.Command, write func(io.Writer) error) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	return nil
}
