package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	docs2pdf "github.com/alnah/go-docs2pdf"
	"github.com/alnah/go-docs2pdf/internal/config"
)

// defaultConfigName is looked up in the working directory and the user
// config directory when neither --config nor DOCS2PDF_CONFIG is given.
const defaultConfigName = "docs2pdf"

// ErrUsage wraps command-line errors.
var ErrUsage = errors.New("invalid usage")

// runBuild generates the PDFs. As postbuild it honors autoBuildPdfs, so it
// can be chained after the site build unconditionally.
func runBuild(ctx context.Context, args []string, env *Environment, postbuild bool) error {
	name := "build"
	if postbuild {
		name = "postbuild"
	}

	flags, positional, err := parseBuildFlags(name, args, env.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: expected at most one site directory, got %d", ErrUsage, len(positional))
	}
	if len(positional) == 1 && !flags.changed["site"] {
		flags.siteDir = positional[0]
		flags.changed["site"] = true
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}

	if postbuild && !cfg.AutoBuildPDFs {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "autoBuildPdfs is off, skipping PDF generation")
		}
		return nil
	}

	logger := newLogger(env, flags.common)
	gen, err := env.NewGenerator(cfg, logger, env.Now)
	if err != nil {
		return err
	}

	start := env.Now()
	res, err := gen.Run(ctx)
	if err != nil {
		return err
	}

	printResult(env, flags.common, res, env.Now().Sub(start))
	return nil
}

// loadConfig resolves the configuration file. An explicit name that cannot
// be found is an error; the default name silently falls back to defaults.
func loadConfig(flagConfig, envConfig string) (*config.Config, error) {
	switch {
	case flagConfig != "":
		return docs2pdf.LoadConfig(flagConfig)
	case envConfig != "":
		return docs2pdf.LoadConfig(envConfig)
	}

	cfg, err := docs2pdf.LoadConfig(defaultConfigName)
	if errors.Is(err, config.ErrConfigNotFound) {
		return docs2pdf.DefaultConfig(), nil
	}
	return cfg, err
}

// mergeFlags applies command-line values on top of cfg.
func mergeFlags(flags *buildFlags, cfg *config.Config) error {
	if flags.changed["site"] {
		cfg.Site.Dir = flags.siteDir
	}
	if flags.changed["build-dir"] {
		cfg.Site.BuildDir = flags.buildDir
	}
	if flags.changed["workers"] {
		if flags.workers < 0 {
			return fmt.Errorf("%w: --workers must be >= 0, got %d", ErrUsage, flags.workers)
		}
		cfg.Workers = flags.workers
	}
	if flags.changed["timeout"] {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q: expected a positive duration like 60s or 2m", ErrUsage, flags.timeout)
		}
		cfg.Timeouts.Render = d
	}
	if flags.changed["versions"] {
		cfg.Versions = flags.versions
	}
	if flags.changed["keep-html"] {
		cfg.KeepDebugHTMLs = flags.keepHTML
	}
	if flags.changed["asset-path"] {
		cfg.Assets.BasePath = flags.assetPath
	}
	return nil
}

// newLogger writes text logs to stderr: debug with -v, errors only with -q.
func newLogger(env *Environment, f commonFlags) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case f.verbose:
		level = slog.LevelDebug
	case f.quiet:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(env.Stderr, &slog.HandlerOptions{Level: level}))
}

func printResult(env *Environment, f commonFlags, res *docs2pdf.Result, elapsed time.Duration) {
	if f.quiet {
		return
	}
	fmt.Fprintf(env.Stdout, "%d PDF(s) for version(s) %s in %s\n",
		len(res.Files), strings.Join(res.Versions, ", "), elapsed.Round(time.Millisecond))
	if f.verbose {
		for _, file := range res.Files {
			fmt.Fprintf(env.Stdout, "  %s\n", file)
		}
	}
	fmt.Fprintf(env.Stdout, "manifest: %s\n", res.Manifest)
}
