// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/pdiddy/pubsite/internal/logger"
	"github.com/pdiddy/pubsite/internal/render"
	"github.com/pdiddy/pubsite/internal/schedule"
	"github.com/pdiddy/pubsite/internal/site"
)

const (
	shutdownTimeout = 5 * time.Second
	defaultRate     = 5
	defaultBurst    = 10
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a live preview of the page",
	Long: `Serve starts an HTTP server that renders the page on every request,
so the upcoming/past split always reflects the moment of the request.

Routes:
  /                  the page
  /biblio.bib        the raw bibliography text
  /conferences.ics   the conferences as an iCalendar feed`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default 127.0.0.1:8080)")
	serveCmd.Flags().Float64("rate", 0, "requests per second before answering 429 (default 5)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadSiteConfig()
	addr := stringFlagOr(cmd, "addr", "serve.addr")
	opts, err := passOptions(cfg)
	if err != nil {
		return err
	}

	rps := cfg.Serve.RequestsPerSecond
	if cmd.Flags().Changed("rate") {
		rps, _ = cmd.Flags().GetFloat64("rate")
	}
	if rps <= 0 {
		rps = defaultRate
	}
	burst := cfg.Serve.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           throttle(newServeMux(opts, time.Now), rate.NewLimiter(rate.Limit(rps), burst)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stdout, "serving on http://%s\n", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServeMux returns the preview routes. Each request runs its own pass
// with its own reference instant taken from clock.
func newServeMux(opts site.Options, clock func() time.Time) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		res, err := site.Pass(r.Context(), opts, clock())
		if err != nil {
			logger.Warn("render: %v", err)
			http.Error(w, "could not load conferences", http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if err := render.WriteHTML(&buf, res.Page); err != nil {
			logger.Warn("render: %v", err)
			http.Error(w, "could not render page", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		io.Copy(w, &buf)
	})

	mux.HandleFunc("GET /biblio.bib", func(w http.ResponseWriter, r *http.Request) {
		res, err := site.Pass(r.Context(), opts, clock())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if res.Dataset.CitationErr != nil {
			http.Error(w, render.MsgPublicationsError, http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/x-bibtex; charset=utf-8")
		io.WriteString(w, res.Dataset.CitationText)
	})

	mux.HandleFunc("GET /conferences.ics", func(w http.ResponseWriter, r *http.Request) {
		res, err := site.Pass(r.Context(), opts, clock())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var buf bytes.Buffer
		if _, err := schedule.WriteICS(&buf, res.Dataset.Conferences, res.Page.GeneratedAt); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		io.Copy(w, &buf)
	})

	return mux
}

// throttle answers 429 once l is exhausted. Every page request is a full
// pass and may refetch a remote bibliography.
func throttle(next http.Handler, l *rate.Limiter) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
