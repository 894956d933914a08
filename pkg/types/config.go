package types

import "time"

// HTTPConfig holds shared HTTP settings used when fetching remote resources.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubsite/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// MaxRetries bounds retries on rate-limited or unavailable responses.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// SourceConfig locates the two input datasets. Empty paths select the
// embedded defaults.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// ConferencesPath is a YAML, JSON, or TOML file of conference records.
	ConferencesPath string `json:"conferences_path" yaml:"conferences_path"`

	// BibliographyPath is a local citation markup file (e.g. "biblio.bib").
	BibliographyPath string `json:"bibliography_path" yaml:"bibliography_path"`

	// BibliographyURL fetches the citation text over HTTP. Takes precedence
	// over BibliographyPath.
	BibliographyURL string `json:"bibliography_url,omitempty" yaml:"bibliography_url,omitempty"`

	// SecretsDir holds plain-text credentials (bib-token).
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir"`
}

// RenderConfig holds presentation settings.
type RenderConfig struct {
	// RecentLimit is how many publications appear in the main list before
	// the rest move to the "older" section (default 10).
	RecentLimit int `json:"recent_limit" yaml:"recent_limit"`

	// Timezone names the location used to resolve end-of-day for conference
	// dates (e.g. "Europe/Rome"). Empty uses the local zone.
	Timezone string `json:"timezone" yaml:"timezone"`

	// OutputPath is where build writes the HTML page.
	OutputPath string `json:"output_path" yaml:"output_path"`
}

// CatalogConfig holds settings for the publication catalog.
type CatalogConfig struct {
	// Dir contains catalog.db and the export files.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// ServeConfig holds settings for the preview server.
type ServeConfig struct {
	// Addr is the listen address (default "127.0.0.1:8080").
	Addr string `json:"addr" yaml:"addr"`

	// RequestsPerSecond and Burst throttle the server (defaults 5 and 10).
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `json:"burst" yaml:"burst"`
}

// SiteConfig groups all configuration sections.
type SiteConfig struct {
	Sources SourceConfig  `json:"sources" yaml:"sources"`
	Render  RenderConfig  `json:"render" yaml:"render"`
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
	Serve   ServeConfig   `json:"serve" yaml:"serve"`
}
