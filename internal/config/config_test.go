package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-docs2pdf/internal/pagination"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "docs2pdf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if !cfg.AddDownloadButton || !cfg.AutoBuildPDFs || !cfg.NumberHeadings {
		t.Error("addDownloadButton, autoBuildPdfs and numberHeadings must default to true")
	}
	if cfg.DownloadButtonText != DefaultButtonText {
		t.Errorf("DownloadButtonText = %q, want %q", cfg.DownloadButtonText, DefaultButtonText)
	}
	if cfg.Margins != (Margins{Top: "5cm", Right: "2cm", Bottom: "2.3cm", Left: "2cm"}) {
		t.Errorf("Margins = %+v", cfg.Margins)
	}
	if cfg.CoverMargins.Top != "10cm" || cfg.CoverMargins.Bottom != "3cm" {
		t.Errorf("CoverMargins = %+v", cfg.CoverMargins)
	}
	if cfg.Workers != 1 {
		t.Errorf("Workers = %d, want 1 (sequential)", cfg.Workers)
	}
	if cfg.PageNumberOffset != pagination.DefaultOffset {
		t.Errorf("PageNumberOffset = %d, want %d", cfg.PageNumberOffset, pagination.DefaultOffset)
	}
	if cfg.Timeouts.Render != 60*time.Second {
		t.Errorf("Timeouts.Render = %v, want 60s", cfg.Timeouts.Render)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     string
		maxLength int
		wantErr   bool
	}{
		{"empty value is valid", "", 10, false},
		{"value at limit is valid", "1234567890", 10, false},
		{"value over limit returns error", "12345678901", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.maxLength)
			if tt.wantErr && !errors.Is(err, ErrFieldTooLong) {
				t.Errorf("error = %v, want ErrFieldTooLong", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
		field   string
	}{
		{"defaults", func(*Config) {}, nil, ""},
		{"author too long", func(c *Config) { c.Author = strings.Repeat("a", MaxNameLength+1) }, ErrFieldTooLong, "author"},
		{"bad fileNames", func(c *Config) { c.FileNames = "slug" }, ErrInvalidValue, "fileNames"},
		{"title fileNames", func(c *Config) { c.FileNames = "title" }, nil, ""},
		{"bad footer regex", func(c *Config) { c.FooterParser = "Page (" }, pagination.ErrInvalidFooterPattern, "footerParser"},
		{"empty-matching footer", func(c *Config) { c.FooterParser = `\d*` }, pagination.ErrInvalidFooterPattern, "footerParser"},
		{"bad selector", func(c *Config) { c.IgnoreCSSSelectors = StringList{"div[["} }, ErrInvalidValue, "ignoreCssSelectors"},
		{"bad margin", func(c *Config) { c.Margins.Top = "wide" }, ErrInvalidValue, "margins"},
		{"bad cover margin", func(c *Config) { c.CoverMargins.Left = "-1cm" }, ErrInvalidValue, "coverMargins"},
		{"relative jQuery URL", func(c *Config) { c.JQueryURL = "js/jquery.js" }, ErrInvalidValue, "jQueryUrl"},
		{"site jQuery URL", func(c *Config) { c.JQueryURL = "/js/jquery.js" }, nil, ""},
		{"bad date format", func(c *Config) { c.DateFormat = "" }, ErrInvalidValue, "dateFormat"},
		{"incomplete extra path", func(c *Config) { c.UseExtraPaths = []ExtraPath{{ServerPath: "/img"}} }, ErrInvalidValue, "useExtraPaths[0]"},
		{"no sidebars", func(c *Config) { c.SidebarNames = nil }, ErrInvalidValue, "sidebarNames"},
		{"negative workers", func(c *Config) { c.Workers = -1 }, ErrInvalidValue, "workers"},
		{"negative timeout", func(c *Config) { c.Timeouts.PDFRead = -time.Second }, ErrInvalidValue, "timeouts.pdfRead"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %q", err, tt.field)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("overrides keep unset defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `
site:
  projectName: Guide
  url: https://docs.example.com
author: Jane Doe
sidebarNames: [docs, api]
productTitles: ["User Guide", "API Reference"]
ignoreDocs: licenses
margins:
  top: 4cm
  right: 2cm
  bottom: 2cm
  left: 2cm
rootDocIds:
  - version: default
    rootDocId: welcome
  - version: "2.0"
    rootDocId: start
timeouts:
  render: 90s
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}

		if cfg.Site.ProjectName != "Guide" || cfg.Author != "Jane Doe" {
			t.Errorf("site/author not loaded: %+v", cfg.Site)
		}
		if cfg.Site.BaseURL != DefaultBaseURL {
			t.Errorf("Site.BaseURL = %q, want default %q", cfg.Site.BaseURL, DefaultBaseURL)
		}
		if got := strings.Join(cfg.SidebarNames, ","); got != "docs,api" {
			t.Errorf("SidebarNames = %q", got)
		}
		if cfg.ProductTitles.At(1) != "API Reference" || cfg.ProductTitles.At(5) != "" {
			t.Errorf("ProductTitles = %v", cfg.ProductTitles)
		}
		if len(cfg.IgnoreDocs) != 1 || cfg.IgnoreDocs[0] != "licenses" {
			t.Errorf("IgnoreDocs = %v, want single string promoted to list", cfg.IgnoreDocs)
		}
		if cfg.Margins.Top != "4cm" {
			t.Errorf("Margins.Top = %q", cfg.Margins.Top)
		}
		if !cfg.AddDownloadButton {
			t.Error("AddDownloadButton default lost")
		}
		if cfg.Timeouts.Render != 90*time.Second || cfg.Timeouts.Server != 10*time.Second {
			t.Errorf("Timeouts = %+v", cfg.Timeouts)
		}
		if cfg.RootDocFor("2.0") != "start" || cfg.RootDocFor("1.0") != "welcome" {
			t.Errorf("RootDocFor: 2.0=%q 1.0=%q", cfg.RootDocFor("2.0"), cfg.RootDocFor("1.0"))
		}
	})

	t.Run("unknown key is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "puppeteerTimeout: 5\n"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value is rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(writeConfig(t, "fileNames: slug\n"))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("unknown name lists searched paths", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("definitely-not-a-config-name")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "definitely-not-a-config-name.yaml") {
			t.Errorf("error should list tried paths: %v", err)
		}
	})
}

func TestConfig_BuildPath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Site.Dir = "site"
	if got := cfg.BuildPath(); got != filepath.Join("site", "build") {
		t.Errorf("BuildPath() = %q", got)
	}

	abs := filepath.Join(t.TempDir(), "out")
	cfg.Site.BuildDir = abs
	if got := cfg.BuildPath(); got != abs {
		t.Errorf("BuildPath() = %q, want %q", got, abs)
	}
}
