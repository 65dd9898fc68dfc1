package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-docs2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the YAML file.
type envConfig struct {
	ConfigPath     string        // DOCS2PDF_CONFIG: config file path
	SiteDir        string        // DOCS2PDF_SITE_DIR: site root
	BuildDir       string        // DOCS2PDF_BUILD_DIR: rendered site directory
	Timeout        time.Duration // DOCS2PDF_TIMEOUT: render timeout per document
	Workers        int           // DOCS2PDF_WORKERS: units rendered at once
	Author         string        // DOCS2PDF_AUTHOR: author printed on covers and footers
	ProductVersion string        // DOCS2PDF_PRODUCT_VERSION: version printed instead of the docs label
	Versions       []string      // DOCS2PDF_VERSIONS: comma-separated version labels
}

// knownEnvVars lists valid DOCS2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DOCS2PDF_CONFIG":          true,
	"DOCS2PDF_SITE_DIR":        true,
	"DOCS2PDF_BUILD_DIR":       true,
	"DOCS2PDF_TIMEOUT":         true,
	"DOCS2PDF_WORKERS":         true,
	"DOCS2PDF_AUTHOR":          true,
	"DOCS2PDF_PRODUCT_VERSION": true,
	"DOCS2PDF_VERSIONS":        true,
	"DOCS2PDF_CONTAINER":       true, // read by doctor and the browser hint
}

// loadEnvConfig reads configuration from environment variables.
// Malformed numbers and durations are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:     getenv("DOCS2PDF_CONFIG"),
		SiteDir:        getenv("DOCS2PDF_SITE_DIR"),
		BuildDir:       getenv("DOCS2PDF_BUILD_DIR"),
		Author:         getenv("DOCS2PDF_AUTHOR"),
		ProductVersion: getenv("DOCS2PDF_PRODUCT_VERSION"),
		Versions:       splitList(getenv("DOCS2PDF_VERSIONS")),
	}

	if timeout := getenv("DOCS2PDF_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("DOCS2PDF_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized DOCS2PDF_* variables.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, env := range environ {
		if strings.HasPrefix(env, "DOCS2PDF_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig overrides config file values with the variables that are set.
// Priority: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.SiteDir != "" {
		cfg.Site.Dir = env.SiteDir
	}
	if env.BuildDir != "" {
		cfg.Site.BuildDir = env.BuildDir
	}
	if env.Timeout > 0 {
		cfg.Timeouts.Render = env.Timeout
	}
	if env.Workers > 0 {
		cfg.Workers = env.Workers
	}
	if env.Author != "" {
		cfg.Author = env.Author
	}
	if env.ProductVersion != "" {
		cfg.ProductVersion = env.ProductVersion
	}
	if len(env.Versions) > 0 {
		cfg.Versions = env.Versions
	}
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
