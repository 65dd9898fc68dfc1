package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-docs2pdf/internal/dateutil"
	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/pagination"
	"github.com/alnah/go-docs2pdf/internal/pipeline"
	"github.com/alnah/go-docs2pdf/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxNameLength   = 100  // project name, author
	MaxTextLength   = 500  // tagline, button label
	MaxURLLength    = 2048 // Browser limit
	MaxNotesLength  = 4000 // cover notes (Markdown)
	MaxFormatLength = 30   // "YYYY-MM-DD", "MMMM D, YYYY"
)

// Defaults.
const (
	DefaultBaseURL            = "/"
	DefaultBuildDir           = "build"
	DefaultButtonText         = "Download as PDF"
	DefaultDateFormat         = "YYYY-MM-DD"
	DefaultSidebarName        = "docs"
	DefaultJQueryURL          = "https://code.jquery.com/jquery-3.6.0.min.js"
	DefaultVersionFallbackKey = "default"
)

// Config holds all configuration for PDF generation.
type Config struct {
	Site                    SiteConfig     `yaml:"site"`
	AddDownloadButton       bool           `yaml:"addDownloadButton"`
	DownloadButtonText      string         `yaml:"downloadButtonText"`
	AutoBuildPDFs           bool           `yaml:"autoBuildPdfs"`
	IgnoreDocs              StringList     `yaml:"ignoreDocs"`
	Stylesheets             StringList     `yaml:"stylesheets"`
	Scripts                 StringList     `yaml:"scripts"`
	AlwaysIncludeSiteStyles bool           `yaml:"alwaysIncludeSiteStyles"`
	IgnoreCSSSelectors      StringList     `yaml:"ignoreCssSelectors"`
	Margins                 Margins        `yaml:"margins"`
	CoverMargins            Margins        `yaml:"coverMargins"`
	Author                  string         `yaml:"author"`
	DateFormat              string         `yaml:"dateFormat"`
	FooterParser            string         `yaml:"footerParser"` // empty = derived from author and dateFormat
	KeepDebugHTMLs          bool           `yaml:"keepDebugHtmls"`
	SidebarNames            StringList     `yaml:"sidebarNames"`
	Versions                StringList     `yaml:"versions"` // empty = every discovered version
	ProductVersion          string         `yaml:"productVersion"`
	Subfolders              StringList     `yaml:"subfolders"`    // per sidebar, same order as sidebarNames
	ProductTitles           StringList     `yaml:"productTitles"` // per sidebar, same order as sidebarNames
	UseExtraPaths           []ExtraPath    `yaml:"useExtraPaths"`
	JQueryURL               string         `yaml:"jQueryUrl"`
	RootDocIDs              []RootDoc      `yaml:"rootDocIds"`
	FileNames               string         `yaml:"fileNames"` // "id" or "title"
	NumberHeadings          bool           `yaml:"numberHeadings"`
	PageNumberOffset        int            `yaml:"pageNumberOffset"`
	CoverNotes              string         `yaml:"coverNotes"` // Markdown
	Assets                  AssetsConfig   `yaml:"assets"`
	Workers                 int            `yaml:"workers"` // 0 = auto
	Timeouts                TimeoutsConfig `yaml:"timeouts"`
	Navigation              string         `yaml:"navigation"` // sidebar file used for every version
}

// SiteConfig describes the documentation site being printed.
type SiteConfig struct {
	Dir         string `yaml:"dir"`      // site root holding versions.json and sidebars
	BuildDir    string `yaml:"buildDir"` // relative to Dir unless absolute
	ProjectName string `yaml:"projectName"`
	URL         string `yaml:"url"`
	BaseURL     string `yaml:"baseURL"`
	Tagline     string `yaml:"tagline"`
}

// ExtraPath serves a local directory under a server path during rendering.
type ExtraPath struct {
	ServerPath string `yaml:"serverPath"`
	LocalPath  string `yaml:"localPath"`
}

// RootDoc names the doc served at the root of a version. Version
// "default" applies to versions without their own entry.
type RootDoc struct {
	Version   string `yaml:"version"`
	RootDocID string `yaml:"rootDocId"`
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
}

// TimeoutsConfig bounds each blocking stage.
type TimeoutsConfig struct {
	Server  time.Duration `yaml:"server"`
	Browser time.Duration `yaml:"browser"`
	Render  time.Duration `yaml:"render"`
	PDFRead time.Duration `yaml:"pdfRead"`
}

// StringList accepts either a single string or a list of strings.
type StringList []string

// UnmarshalYAML implements the goccy/go-yaml InterfaceUnmarshaler.
func (l *StringList) UnmarshalYAML(unmarshal func(any) error) error {
	var many []string
	if err := unmarshal(&many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := unmarshal(&one); err != nil {
		return fmt.Errorf("expected a string or a list of strings: %w", err)
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = StringList{one}
	return nil
}

// At returns the i-th element, or "" when the list is shorter.
func (l StringList) At(i int) string {
	if i < 0 || i >= len(l) {
		return ""
	}
	return l[i]
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Dir:      ".",
			BuildDir: DefaultBuildDir,
			BaseURL:  DefaultBaseURL,
		},
		AddDownloadButton:  true,
		DownloadButtonText: DefaultButtonText,
		AutoBuildPDFs:      true,
		Margins:            Margins{Top: "5cm", Right: "2cm", Bottom: "2.3cm", Left: "2cm"},
		CoverMargins:       Margins{Top: "10cm", Right: "0", Bottom: "3cm", Left: "0"},
		DateFormat:         DefaultDateFormat,
		SidebarNames:       StringList{DefaultSidebarName},
		JQueryURL:          DefaultJQueryURL,
		FileNames:          pipeline.FileNamesID,
		NumberHeadings:     true,
		PageNumberOffset:   pagination.DefaultOffset,
		Workers:            1,
		Timeouts: TimeoutsConfig{
			Server:  10 * time.Second,
			Browser: 60 * time.Second,
			Render:  60 * time.Second,
			PDFRead: 30 * time.Second,
		},
	}
}

// BuildPath returns the rendered site directory.
func (c *Config) BuildPath() string {
	if filepath.IsAbs(c.Site.BuildDir) {
		return c.Site.BuildDir
	}
	return filepath.Join(c.Site.Dir, c.Site.BuildDir)
}

// RootDocFor returns the root doc id of version, falling back to the
// "default" entry.
func (c *Config) RootDocFor(version string) string {
	fallback := ""
	for _, r := range c.RootDocIDs {
		if r.Version == version {
			return r.RootDocID
		}
		if r.Version == DefaultVersionFallbackKey && fallback == "" {
			fallback = r.RootDocID
		}
	}
	return fallback
}

// Validate checks values that would otherwise fail deep inside a run.
// Called automatically by LoadConfig, but available for library users
// who construct Config manually.
func (c *Config) Validate() error {
	if err := validateFieldLength("site.projectName", c.Site.ProjectName, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.tagline", c.Site.Tagline, MaxTextLength); err != nil {
		return err
	}
	if err := validateFieldLength("site.url", c.Site.URL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("author", c.Author, MaxNameLength); err != nil {
		return err
	}
	if err := validateFieldLength("downloadButtonText", c.DownloadButtonText, MaxTextLength); err != nil {
		return err
	}
	if err := validateFieldLength("jQueryUrl", c.JQueryURL, MaxURLLength); err != nil {
		return err
	}
	if err := validateFieldLength("coverNotes", c.CoverNotes, MaxNotesLength); err != nil {
		return err
	}
	if err := validateFieldLength("dateFormat", c.DateFormat, MaxFormatLength); err != nil {
		return err
	}

	if c.JQueryURL != "" && !fileutil.IsURL(c.JQueryURL) && !strings.HasPrefix(c.JQueryURL, "/") {
		return fmt.Errorf("%w: jQueryUrl: %q (must be an absolute URL or start with /)", ErrInvalidValue, c.JQueryURL)
	}

	if _, err := dateutil.FormatPattern(c.DateFormat); err != nil {
		return fmt.Errorf("%w: dateFormat: %v", ErrInvalidValue, err)
	}

	switch c.FileNames {
	case "", pipeline.FileNamesID, pipeline.FileNamesTitle:
	default:
		return fmt.Errorf("%w: fileNames: %q (must be id or title)", ErrInvalidValue, c.FileNames)
	}

	if c.FooterParser != "" {
		if _, err := pagination.CompileFooter(c.FooterParser); err != nil {
			return fmt.Errorf("footerParser: %w", err)
		}
	}

	if _, err := pipeline.CompileSelectors(c.IgnoreCSSSelectors); err != nil {
		return fmt.Errorf("%w: ignoreCssSelectors: %v", ErrInvalidValue, err)
	}

	if _, err := c.Margins.Inches(); err != nil {
		return fmt.Errorf("%w: margins: %v", ErrInvalidValue, err)
	}
	if _, err := c.CoverMargins.Inches(); err != nil {
		return fmt.Errorf("%w: coverMargins: %v", ErrInvalidValue, err)
	}

	for i, p := range c.UseExtraPaths {
		if p.ServerPath == "" || p.LocalPath == "" {
			return fmt.Errorf("%w: useExtraPaths[%d]: serverPath and localPath are required", ErrInvalidValue, i)
		}
	}

	if len(c.SidebarNames) == 0 {
		return fmt.Errorf("%w: sidebarNames: at least one sidebar is required", ErrInvalidValue)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%w: workers: must be >= 0, got %d", ErrInvalidValue, c.Workers)
	}

	for name, d := range map[string]time.Duration{
		"timeouts.server":  c.Timeouts.Server,
		"timeouts.browser": c.Timeouts.Browser,
		"timeouts.render":  c.Timeouts.Render,
		"timeouts.pdfRead": c.Timeouts.PDFRead,
	} {
		if d < 0 {
			return fmt.Errorf("%w: %s: must not be negative", ErrInvalidValue, name)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Keys absent from the file keep their DefaultConfig value.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if isFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-docs2pdf/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-docs2pdf", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
