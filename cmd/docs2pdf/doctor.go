package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/alnah/go-docs2pdf/internal/config"
	"github.com/alnah/go-docs2pdf/internal/fileutil"
	"github.com/alnah/go-docs2pdf/internal/hints"
	"github.com/alnah/go-docs2pdf/internal/nav"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"` // "ready", "warnings", "errors"
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	Site     siteInfo   `json:"site"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// chromeInfo holds Chrome/Chromium detection results.
type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// siteInfo holds the documentation site checks.
type siteInfo struct {
	Dir         string   `json:"dir"`
	BuildDir    string   `json:"build_dir"`
	BuildFound  bool     `json:"build_found"`
	SidebarFile string   `json:"sidebar_file,omitempty"`
	Versions    []string `json:"versions,omitempty"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// doctorFlags holds the flags of the doctor command.
type doctorFlags struct {
	config   string
	siteDir  string
	buildDir string
	json     bool

	changed map[string]bool
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f := doctorFlags{changed: make(map[string]bool)}
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.BoolVar(&f.json, "json", false, "machine-readable output")
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.StringVarP(&f.siteDir, "site", "s", "", "site root to check")
	fs.StringVar(&f.buildDir, "build-dir", "", "rendered site directory (default <site>/build)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	result := runDoctor(env, f)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment, f doctorFlags) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(result)
	checkEnvironment(result, env.Getenv)
	if cfg, err := doctorConfig(env, f); err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else {
		checkSite(result, cfg)
	}
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// doctorConfig resolves the site the way build does: config file, then
// environment, then flags.
func doctorConfig(env *Environment, f doctorFlags) (*config.Config, error) {
	envCfg := loadEnvConfig(env.Getenv)
	cfg, err := loadConfig(f.config, envCfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	applyEnvConfig(envCfg, cfg)
	if f.changed["site"] {
		cfg.Site.Dir = f.siteDir
	}
	if f.changed["build-dir"] {
		cfg.Site.BuildDir = f.buildDir
	}
	return cfg, nil
}

// checkChrome detects Chrome/Chromium installation.
func checkChrome(result *doctorResult) {
	chromePath := result.Env.BrowserBin

	if chromePath == "" {
		var found bool
		chromePath, found = launcher.LookPath()
		if !found {
			result.Warnings = append(result.Warnings,
				"Chrome/Chromium not found; rod will download one on first run. Set ROD_BROWSER_BIN to use an installed browser")
			return
		}
	}

	if _, err := os.Stat(chromePath); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Chrome not found at %s", chromePath))
		return
	}

	result.Chrome.Found = true
	result.Chrome.Path = chromePath

	out, err := exec.Command(chromePath, "--version").Output() // #nosec G204 -- browser path from env or rod lookup
	if err == nil {
		result.Chrome.Version = strings.TrimSpace(string(out))
	} else {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Chrome version: %v", err))
	}
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, getenv func(string) string) {
	result.Env.Container, result.Env.ContainerHint = hints.Container(getenv)
	result.Env.CI = hints.CI(getenv)
}

// checkSite verifies the documentation site can be printed.
func checkSite(result *doctorResult, cfg *config.Config) {
	result.Site.Dir = cfg.Site.Dir
	buildDir := cfg.BuildPath()
	result.Site.BuildDir = buildDir

	result.Site.BuildFound = fileutil.FileExists(filepath.Join(buildDir, "index.html")) &&
		fileutil.FileExists(filepath.Join(buildDir, "404.html"))
	if !result.Site.BuildFound {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("No finished site build in %s; build the site before generating PDFs", buildDir))
	}

	versions, err := nav.DiscoverVersions(cfg.Site.Dir, buildDir, cfg.Navigation)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		return
	}
	for _, v := range nav.FilterVersions(versions, cfg.Versions) {
		result.Site.Versions = append(result.Site.Versions, v.Label)
		if result.Site.SidebarFile == "" || v.Label == nav.NextVersion {
			result.Site.SidebarFile = v.SidebarFile
		}
		if v.SidebarFile == "" || !fileutil.FileExists(v.SidebarFile) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Version %s has no sidebar file and will be skipped", v.Label))
		}
	}
}

// checkSystem verifies system requirements.
func checkSystem(result *doctorResult) {
	f, err := os.CreateTemp("", "docs2pdf-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "docs2pdf doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Chrome/Chromium")
	if r.Chrome.Found {
		fmt.Fprintf(w, "  [OK] Found at %s\n", r.Chrome.Path)
		if r.Chrome.Version != "" {
			fmt.Fprintf(w, "  [OK] Version: %s\n", r.Chrome.Version)
		}
	} else {
		fmt.Fprintln(w, "  [WARN] Not found")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Site")
	if r.Site.BuildFound {
		fmt.Fprintf(w, "  [OK] Build: %s\n", r.Site.BuildDir)
	} else {
		fmt.Fprintln(w, "  [WARN] Build: not found")
	}
	if len(r.Site.Versions) > 0 {
		fmt.Fprintf(w, "  [OK] Versions: %s\n", strings.Join(r.Site.Versions, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintln(w, "  [OK] Temp directory: writable")
	} else {
		fmt.Fprintln(w, "  [ERROR] Temp directory: not writable")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case "ready":
		fmt.Fprintln(w, "Status: Ready to generate")
	case "warnings":
		fmt.Fprintln(w, "Status: Ready with warnings")
	case "errors":
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
