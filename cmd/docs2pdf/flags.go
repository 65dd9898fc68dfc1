package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// buildFlags holds all flags for the build and postbuild commands.
type buildFlags struct {
	common    commonFlags
	siteDir   string
	buildDir  string
	workers   int
	timeout   string
	versions  []string
	keepHTML  bool
	assetPath string

	// changed records which flags were set on the command line.
	changed map[string]bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs")
}

// newBuildFlagSet registers the build flags on a fresh FlagSet.
func newBuildFlagSet(name string, f *buildFlags) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)

	fs.StringVarP(&f.siteDir, "site", "s", "", "site root holding sidebars and versions.json")
	fs.StringVar(&f.buildDir, "build-dir", "", "rendered site directory (default <site>/build)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "units rendered at once (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "render timeout per document (e.g., 60s, 2m)")
	fs.StringSliceVar(&f.versions, "versions", nil, "only these version labels (comma-separated)")
	fs.BoolVar(&f.keepHTML, "keep-html", false, "keep the reconciled HTML next to each PDF")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom print stylesheet and templates directory")
	addCommonFlags(fs, &f.common)

	return fs
}

// parseBuildFlags parses build command flags and returns positional args.
func parseBuildFlags(name string, args []string, usage io.Writer) (*buildFlags, []string, error) {
	f := &buildFlags{changed: make(map[string]bool)}
	fs := newBuildFlagSet(name, f)
	fs.SetOutput(usage)
	fs.Usage = func() { printBuildUsage(usage, name) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	fs.Visit(func(fl *flag.Flag) { f.changed[fl.Name] = true })

	return f, fs.Args(), nil
}
