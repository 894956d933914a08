// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pubsite CLI. It renders the
// conferences and publications page, lists it in the terminal, serves a
// live preview, exports citations and events, and manages the catalog.
package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pubsite/internal/logger"
	"github.com/pdiddy/pubsite/internal/secrets"
	"github.com/pdiddy/pubsite/internal/site"
	"github.com/pdiddy/pubsite/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout    = 30 * time.Second
	defaultOutput     = "site/index.html"
	defaultCatalogDir = "catalog"
	defaultAddr       = "127.0.0.1:8080"
	defaultSecretsDir = ".secrets/"
)

// loadedSecrets holds credentials loaded from the secrets directory at startup.
var loadedSecrets secrets.Secrets

var rootCmd = &cobra.Command{
	Use:   "pubsite",
	Short: "Render a researcher's conferences and publications page",
	Long: `pubsite turns a conference list and a BibTeX bibliography into a
static page. Conferences are split into upcoming and past by comparing the
end of their last day with the current time; publications are listed newest
first.

Both datasets have built-in defaults. Point --conferences and --bib (or
--bib-url) at your own files to replace them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(viper.GetBool("verbose"))

		s, err := secrets.Load(viper.GetString("sources.secrets_dir"), os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Info("loaded secrets: %v", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./pubsite.yaml or ~/.config/pubsite/pubsite.yaml)")
	pf.BoolP("verbose", "v", false, "print diagnostic detail")
	pf.String("conferences", "", "conference list (.yaml, .json, .toml); empty uses the built-in list")
	pf.String("bib", "", "BibTeX file; empty uses the built-in bibliography")
	pf.String("bib-url", "", "fetch the BibTeX text from this URL (overrides --bib)")
	pf.String("timezone", "", "timezone for end-of-day checks, e.g. Europe/Rome (default: local)")

	bindFlag("verbose", rootCmd, "verbose")
	bindFlag("sources.conferences_path", rootCmd, "conferences")
	bindFlag("sources.bibliography_path", rootCmd, "bib")
	bindFlag("sources.bibliography_url", rootCmd, "bib-url")
	bindFlag("render.timezone", rootCmd, "timezone")

	viper.SetDefault("sources.timeout", defaultTimeout)
	viper.SetDefault("sources.user_agent", "pubsite/"+version)
	viper.SetDefault("sources.secrets_dir", defaultSecretsDir)
	viper.SetDefault("render.output_path", defaultOutput)
	viper.SetDefault("catalog.dir", defaultCatalogDir)
	viper.SetDefault("serve.addr", defaultAddr)
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("pubsite")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "pubsite"))
		}
	}

	viper.SetEnvPrefix("PUBSITE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlag ties a config key to a local or persistent flag of cmd. A
// missing flag is a programming error.
func bindFlag(key string, cmd *cobra.Command, name string) {
	f := cmd.Flags().Lookup(name)
	if f == nil {
		f = cmd.PersistentFlags().Lookup(name)
	}
	if err := viper.BindPFlag(key, f); err != nil {
		panic(err)
	}
}

// loadSiteConfig assembles the configuration from flags, environment, the
// config file, and defaults, in that order of precedence.
func loadSiteConfig() types.SiteConfig {
	return types.SiteConfig{
		Sources: types.SourceConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:    viper.GetDuration("sources.timeout"),
				UserAgent:  viper.GetString("sources.user_agent"),
				MaxRetries: viper.GetInt("sources.max_retries"),
			},
			ConferencesPath:  viper.GetString("sources.conferences_path"),
			BibliographyPath: viper.GetString("sources.bibliography_path"),
			BibliographyURL:  viper.GetString("sources.bibliography_url"),
			SecretsDir:       viper.GetString("sources.secrets_dir"),
		},
		Render: types.RenderConfig{
			RecentLimit: viper.GetInt("render.recent_limit"),
			Timezone:    viper.GetString("render.timezone"),
			OutputPath:  viper.GetString("render.output_path"),
		},
		Catalog: types.CatalogConfig{
			Dir:        viper.GetString("catalog.dir"),
			MaxResults: viper.GetInt("catalog.max_results"),
		},
		Serve: types.ServeConfig{
			Addr:              viper.GetString("serve.addr"),
			RequestsPerSecond: viper.GetFloat64("serve.requests_per_second"),
			Burst:             viper.GetInt("serve.burst"),
		},
	}
}

// passOptions turns the configuration into render pass options.
func passOptions(cfg types.SiteConfig) (site.Options, error) {
	loc, err := site.LoadLocation(cfg.Render.Timezone)
	if err != nil {
		return site.Options{}, err
	}
	return site.Options{
		Sources:     cfg.Sources,
		Secrets:     loadedSecrets,
		Client:      &http.Client{Timeout: cfg.Sources.Timeout},
		Location:    loc,
		RecentLimit: cfg.Render.RecentLimit,
	}, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
